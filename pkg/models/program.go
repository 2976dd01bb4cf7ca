package models

// Program is a leaf entity describing a service the chatbot can talk about.
// Forms attach to exactly one program; branches, chips, and showcase items
// may reference one optionally.
type Program struct {
	ProgramID   string `json:"program_id"   validate:"required"`
	ProgramName string `json:"program_name" validate:"required"`
	Description string `json:"description,omitempty"`
}

func (p Program) EntityID() string { return p.ProgramID }

func (p Program) DisplayName() string { return p.ProgramName }
