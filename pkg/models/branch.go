package models

// AvailableCTAs declares which call-to-action buttons a branch offers: one
// primary and up to MaxSecondaryCTAs secondary buttons.
type AvailableCTAs struct {
	Primary   string   `json:"primary"`
	Secondary []string `json:"secondary,omitempty"`
}

// MaxSecondaryCTAs caps the secondary button list on a branch.
const MaxSecondaryCTAs = 2

// MaxBranchCTAs is the advisory ceiling on total buttons per branch;
// exceeding it degrades the chat layout but does not block deployment.
const MaxBranchCTAs = 3

// ConversationBranch is a routing node. When a user utterance matches one of
// the detection keywords the branch's CTAs become available. Branches declare
// which CTAs are offered here; CTAs declare where to route afterward via
// their target_branch, which is why the two reference each other in opposite
// directions.
//
// The id is the key of the conversation_branches section and is not
// serialized on the record.
type ConversationBranch struct {
	ID                string        `json:"-"`
	DetectionKeywords []string      `json:"detection_keywords" validate:"required,min=1"`
	AvailableCTAs     AvailableCTAs `json:"available_ctas"`
}

func (b ConversationBranch) EntityID() string { return b.ID }

func (b ConversationBranch) DisplayName() string {
	if len(b.DetectionKeywords) > 0 {
		return b.DetectionKeywords[0]
	}

	return b.ID
}

// TotalCTAs counts the primary plus secondary buttons the branch offers.
func (b ConversationBranch) TotalCTAs() int {
	total := len(b.AvailableCTAs.Secondary)
	if b.AvailableCTAs.Primary != "" {
		total++
	}

	return total
}
