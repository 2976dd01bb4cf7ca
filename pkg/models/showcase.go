package models

// ShowcaseActionType enumerates what clicking a showcase card does.
type ShowcaseActionType string

const (
	ShowcaseActionPrompt ShowcaseActionType = "prompt"
	ShowcaseActionURL    ShowcaseActionType = "url"
	ShowcaseActionCTA    ShowcaseActionType = "cta"
)

// KnownShowcaseActionTypes is the closed set of accepted showcase actions.
var KnownShowcaseActionTypes = map[ShowcaseActionType]bool{
	ShowcaseActionPrompt: true,
	ShowcaseActionURL:    true,
	ShowcaseActionCTA:    true,
}

// ShowcaseAction is the optional click behavior of a showcase card. The type
// determines which payload field must be set.
type ShowcaseAction struct {
	Type   ShowcaseActionType `json:"type"`
	Label  string             `json:"label"`
	Prompt string             `json:"prompt,omitempty"`
	URL    string             `json:"url,omitempty"`
	CTAID  string             `json:"cta_id,omitempty"`
}

// ShowcaseItem is a promotional content card: a program, event, initiative,
// or campaign surfaced in the chat's content showcase. Unlike the id-keyed
// sections, showcase items are stored as an array and carry their own id.
type ShowcaseItem struct {
	ID          string          `json:"id"   validate:"required"`
	Type        string          `json:"type"`
	Enabled     bool            `json:"enabled"`
	Name        string          `json:"name" validate:"required"`
	Tagline     string          `json:"tagline,omitempty"`
	Description string          `json:"description,omitempty"`
	Keywords    []string        `json:"keywords,omitempty"`
	Action      *ShowcaseAction `json:"action,omitempty"`
	Highlights  []string        `json:"highlights,omitempty"`
	Stats       map[string]any  `json:"stats,omitempty"`
	Testimonial string          `json:"testimonial,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	ProgramID   string          `json:"program_id,omitempty"`
}

func (s ShowcaseItem) EntityID() string { return s.ID }

func (s ShowcaseItem) DisplayName() string { return s.Name }
