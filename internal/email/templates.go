package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title   string
	Heading string
}

type handoffAlertEmailData struct {
	baseEmailData
	LeadName  string
	Phone     string
	Reasoning string
}

type leadQualifiedEmailData struct {
	baseEmailData
	LeadName       string
	ReadinessScore int
	NextAction     string
}

type appointmentNoticeEmailData struct {
	baseEmailData
	LeadName string
	Date     string
	TimeSlot string
	Address  string
}

type followUpDueEmailData struct {
	baseEmailData
	LeadName string
	Note     string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
