package voice

import "encoding/json"

// webhookEnvelope is the payload the voice provider posts. Only the fields
// this service consumes are decoded; unknown message types are acknowledged
// and dropped.
type webhookEnvelope struct {
	Message *webhookMessage `json:"message"`
}

type webhookMessage struct {
	Type            string        `json:"type"`
	Call            *webhookCall  `json:"call"`
	FunctionCall    *functionCall `json:"functionCall"`
	Status          string        `json:"status"`
	Role            string        `json:"role"`
	Transcript      string        `json:"transcript"`
	DurationSeconds float64       `json:"durationSeconds"`
	RecordingURL    string        `json:"recordingUrl"`
}

type webhookCall struct {
	ID       string           `json:"id"`
	Customer *webhookCustomer `json:"customer"`
}

type webhookCustomer struct {
	Number string `json:"number"`
}

type functionCall struct {
	Name       string          `json:"name"`
	Parameters json.RawMessage `json:"parameters"`
}

type processLeadInputParams struct {
	UserInput           string `json:"user_input"`
	LeadID              string `json:"lead_id"`
	CallID              string `json:"call_id"`
	ConversationHistory []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"conversation_history"`
}

type bookAppointmentParams struct {
	LeadID          string `json:"lead_id"`
	Date            string `json:"date"`
	TimeSlot        string `json:"time_slot"`
	PropertyAddress string `json:"property_address"`
}

type availableSlotsParams struct {
	Date string `json:"date"`
}
