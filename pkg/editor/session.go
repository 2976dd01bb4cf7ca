package editor

import (
	"log/slog"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
	"github.com/longhornrumble/picasso-config-builder/pkg/store"
	"github.com/longhornrumble/picasso-config-builder/pkg/validation"
)

// Session groups the six entity editors over one tenant's store. Editing is
// single-user and synchronous; the busy flag is the only concurrency guard,
// raised while a save or deployment is in flight so that submits, deletes,
// and further deployments are rejected instead of queued.
type Session struct {
	TenantID string

	store  *store.Store
	logger *slog.Logger
	busy   bool

	programs *Editor[models.Program]
	forms    *Editor[models.ConversationalForm]
	ctas     *Editor[models.CTADefinition]
	branches *Editor[models.ConversationBranch]
	chips    *Editor[models.ActionChip]
	showcase *Editor[models.ShowcaseItem]
}

// NewSession builds a session over an already-populated store.
func NewSession(tenantID string, st *store.Store, logger *slog.Logger) *Session {
	s := &Session{
		TenantID: tenantID,
		store:    st,
		logger:   logger,
	}

	s.programs = newEditor(s, st.Programs(),
		func() models.Program { return models.Program{} },
		validation.ValidateProgram)

	s.forms = newEditor(s, st.Forms(),
		func() models.ConversationalForm {
			return models.ConversationalForm{Enabled: true, Fields: []models.FormField{}}
		},
		validation.ValidateForm)

	s.ctas = newEditor(s, st.CTAs(),
		func() models.CTADefinition { return models.CTADefinition{Action: models.CTAActionStartForm} },
		validation.ValidateCTA)

	s.branches = newEditor(s, st.Branches(),
		func() models.ConversationBranch { return models.ConversationBranch{} },
		validation.ValidateBranch)

	s.chips = newEditor(s, st.Chips(),
		func() models.ActionChip { return models.ActionChip{} },
		validation.ValidateChip)

	s.showcase = newEditor(s, st.Showcase(),
		func() models.ShowcaseItem { return models.ShowcaseItem{Enabled: true, Type: "program"} },
		validation.ValidateShowcase)

	return s
}

// Store returns the session's entity store.
func (s *Session) Store() *store.Store {
	return s.store
}

// Programs returns the program editor.
func (s *Session) Programs() *Editor[models.Program] { return s.programs }

// Forms returns the conversational form editor.
func (s *Session) Forms() *Editor[models.ConversationalForm] { return s.forms }

// CTAs returns the call-to-action editor.
func (s *Session) CTAs() *Editor[models.CTADefinition] { return s.ctas }

// Branches returns the conversation branch editor.
func (s *Session) Branches() *Editor[models.ConversationBranch] { return s.branches }

// Chips returns the action chip editor.
func (s *Session) Chips() *Editor[models.ActionChip] { return s.chips }

// Showcase returns the showcase item editor.
func (s *Session) Showcase() *Editor[models.ShowcaseItem] { return s.showcase }

// Validation runs the whole-document validator and returns the snapshot
// consumed by summary badges and the deployment gate.
func (s *Session) Validation() validation.Snapshot {
	return validation.ValidateDocument(s.store.Collections()).Snapshot()
}

// Busy reports whether a storage operation is in flight.
func (s *Session) Busy() bool {
	return s.busy
}

// BeginIO raises the busy flag for the duration of a save or deployment.
// It fails with ErrBusy when an operation is already in flight: a fresh
// request issued before the previous one resolves is rejected, not queued.
func (s *Session) BeginIO(op string) error {
	if s.busy {
		return &OperationError{Op: op, Kind: "session", Err: ErrBusy}
	}

	s.busy = true

	return nil
}

// EndIO lowers the busy flag.
func (s *Session) EndIO() {
	s.busy = false
}
