package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHandoffAlertTemplate(t *testing.T) {
	content, err := renderEmailTemplate("handoff_alert.html", handoffAlertEmailData{
		baseEmailData: baseEmailData{Title: "Handoff requested", Heading: "A caller needs a human agent"},
		LeadName:      "Dana Reyes",
		Phone:         "+15550001234",
		Reasoning:     "caller asked for a human agent",
	})

	require.NoError(t, err)
	assert.Contains(t, content, "Dana Reyes")
	assert.Contains(t, content, "+15550001234")
	assert.Contains(t, content, "Premier Realty")
}

func TestRenderAllTemplates(t *testing.T) {
	cases := map[string]any{
		"handoff_alert.html":      handoffAlertEmailData{},
		"lead_qualified.html":     leadQualifiedEmailData{},
		"appointment_notice.html": appointmentNoticeEmailData{},
		"follow_up.html":          followUpDueEmailData{},
	}

	for name, data := range cases {
		_, err := renderEmailTemplate(name, data)
		assert.NoError(t, err, name)
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	content, err := renderEmailTemplate("follow_up.html", followUpDueEmailData{
		baseEmailData: baseEmailData{Title: "Follow-up due", Heading: "Time to reconnect"},
		LeadName:      "Ira Blum",
		Note:          `<script>alert("x")</script>`,
	})

	require.NoError(t, err)
	assert.NotContains(t, content, "<script>")
}
