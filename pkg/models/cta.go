package models

// CTAAction enumerates what pressing a call-to-action button does.
type CTAAction string

const (
	CTAActionStartForm    CTAAction = "start_form"
	CTAActionExternalLink CTAAction = "external_link"
	CTAActionSendQuery    CTAAction = "send_query"
	CTAActionShowInfo     CTAAction = "show_info"
)

// KnownCTAActions is the closed set of accepted CTA actions.
var KnownCTAActions = map[CTAAction]bool{
	CTAActionStartForm:    true,
	CTAActionExternalLink: true,
	CTAActionSendQuery:    true,
	CTAActionShowInfo:     true,
}

// CTADefinition is a labeled button. The action determines which payload
// field must be set: start_form needs FormID, external_link needs URL,
// send_query needs Query, show_info needs Prompt. TargetBranch optionally
// routes the conversation after the action completes.
//
// The id is the key of the ctas section and is not serialized on the record.
type CTADefinition struct {
	ID           string    `json:"-"`
	Label        string    `json:"label"  validate:"required"`
	Action       CTAAction `json:"action" validate:"required"`
	Type         string    `json:"type,omitempty"`
	FormID       string    `json:"formId,omitempty"`
	URL          string    `json:"url,omitempty"`
	Query        string    `json:"query,omitempty"`
	Prompt       string    `json:"prompt,omitempty"`
	TargetBranch string    `json:"target_branch,omitempty"`
}

func (c CTADefinition) EntityID() string { return c.ID }

func (c CTADefinition) DisplayName() string { return c.Label }

// PayloadField returns the name of the payload field the action requires,
// along with its current value.
func (c CTADefinition) PayloadField() (string, string) {
	switch c.Action {
	case CTAActionStartForm:
		return "formId", c.FormID
	case CTAActionExternalLink:
		return "url", c.URL
	case CTAActionSendQuery:
		return "query", c.Query
	case CTAActionShowInfo:
		return "prompt", c.Prompt
	default:
		return "", ""
	}
}
