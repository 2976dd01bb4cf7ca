package models

// FieldType enumerates the input widgets a conversational form may render.
type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeEmail  FieldType = "email"
	FieldTypePhone  FieldType = "phone"
	FieldTypeNumber FieldType = "number"
	FieldTypeDate   FieldType = "date"
	FieldTypeSelect FieldType = "select"
)

// KnownFieldTypes is the closed set of accepted field types.
var KnownFieldTypes = map[FieldType]bool{
	FieldTypeText:   true,
	FieldTypeEmail:  true,
	FieldTypePhone:  true,
	FieldTypeNumber: true,
	FieldTypeDate:   true,
	FieldTypeSelect: true,
}

// FormField is a single ordered question within a conversational form.
// Select fields carry their options and may gate eligibility on specific
// option values; the failure message is shown when the gate disqualifies.
type FormField struct {
	ID              string    `json:"id"       validate:"required"`
	Type            FieldType `json:"type"     validate:"required"`
	Label           string    `json:"label"    validate:"required"`
	Prompt          string    `json:"prompt"`
	Required        bool      `json:"required"`
	Options         []string  `json:"options,omitempty"`
	EligibilityGate []string  `json:"eligibility_gate,omitempty"`
	FailureMessage  string    `json:"failure_message,omitempty"`
}

// PostSubmission configures what happens after the final field is answered.
type PostSubmission struct {
	Message           string `json:"message,omitempty"`
	NotificationEmail string `json:"notification_email,omitempty"`
}

// ConversationalForm is an ordered questionnaire attached to a program. The
// bot walks the fields in sequence and submits the collected answers.
type ConversationalForm struct {
	FormID         string          `json:"form_id"     validate:"required"`
	Title          string          `json:"title"       validate:"required"`
	Description    string          `json:"description,omitempty"`
	Program        string          `json:"program"     validate:"required"`
	Enabled        bool            `json:"enabled"`
	Fields         []FormField     `json:"fields"`
	PostSubmission *PostSubmission `json:"post_submission,omitempty"`
}

func (f ConversationalForm) EntityID() string { return f.FormID }

func (f ConversationalForm) DisplayName() string { return f.Title }
