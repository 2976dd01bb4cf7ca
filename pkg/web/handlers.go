package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/longhornrumble/picasso-config-builder/pkg/deploy"
	"github.com/longhornrumble/picasso-config-builder/pkg/deps"
	"github.com/longhornrumble/picasso-config-builder/pkg/editor"
	"github.com/longhornrumble/picasso-config-builder/pkg/events"
	"github.com/longhornrumble/picasso-config-builder/pkg/models"
	"github.com/longhornrumble/picasso-config-builder/pkg/store"
)

type APIHandlers struct {
	manager   *SessionManager
	deployer  *deploy.Service
	validator *validator.Validate
	logger    *slog.Logger
}

func NewAPIHandlers(
	manager *SessionManager,
	deployer *deploy.Service,
	validator *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		manager:   manager,
		deployer:  deployer,
		validator: validator,
		logger:    logger,
	}
}

// RegisterRoutes mounts all tenant-scoped endpoints on the app.
func (h *APIHandlers) RegisterRoutes(app *fiber.App) {
	tenants := app.Group("/tenants/:tenantId")

	registerCollection(tenants, h, "/programs",
		func(s *editor.Session) store.Collection[models.Program] { return s.Store().Programs() },
		(*editor.Session).Programs,
		decodeBody[models.Program])

	registerCollection(tenants, h, "/forms",
		func(s *editor.Session) store.Collection[models.ConversationalForm] { return s.Store().Forms() },
		(*editor.Session).Forms,
		decodeBody[models.ConversationalForm])

	registerCollection(tenants, h, "/ctas",
		func(s *editor.Session) store.Collection[models.CTADefinition] { return s.Store().CTAs() },
		(*editor.Session).CTAs,
		decodeWrapped[models.CTADefinition, CTARequest])

	registerCollection(tenants, h, "/branches",
		func(s *editor.Session) store.Collection[models.ConversationBranch] { return s.Store().Branches() },
		(*editor.Session).Branches,
		decodeWrapped[models.ConversationBranch, BranchRequest])

	registerCollection(tenants, h, "/chips",
		func(s *editor.Session) store.Collection[models.ActionChip] { return s.Store().Chips() },
		(*editor.Session).Chips,
		decodeWrapped[models.ActionChip, ChipRequest])

	registerCollection(tenants, h, "/showcase",
		func(s *editor.Session) store.Collection[models.ShowcaseItem] { return s.Store().Showcase() },
		(*editor.Session).Showcase,
		decodeBody[models.ShowcaseItem])

	tenants.Get("/session", h.GetSession)
	tenants.Delete("/session", h.DiscardSession)
	tenants.Get("/settings/cta", h.GetCTASettings)
	tenants.Put("/settings/cta", h.UpdateCTASettings)
	tenants.Get("/settings/bedrock", h.GetBedrockInstructions)
	tenants.Put("/settings/bedrock", h.UpdateBedrockInstructions)
	tenants.Get("/validation", h.GetValidation)
	tenants.Post("/save", h.SaveConfig)
	tenants.Post("/deploy", h.DeployConfig)
	tenants.Get("/backups", h.ListBackups)

	app.Get("/health", h.HealthCheck)
}

// entityRequest converts a decoded request body into its entity model.
type entityRequest[T models.Entity] interface {
	toModel() T
}

// decodeBody decodes entities whose id travels inside their own JSON shape.
func decodeBody[T models.Entity](h *APIHandlers, c fiber.Ctx) (T, error) {
	var entity T
	if err := c.Bind().JSON(&entity); err != nil {
		return entity, err
	}

	return entity, nil
}

// decodeWrapped decodes entities whose id is stripped from their stored JSON
// and therefore carried by a request wrapper.
func decodeWrapped[T models.Entity, R entityRequest[T]](h *APIHandlers, c fiber.Ctx) (T, error) {
	var (
		req  R
		zero T
	)

	if err := c.Bind().JSON(&req); err != nil {
		return zero, err
	}

	if err := h.validator.Struct(req); err != nil {
		return zero, err
	}

	return req.toModel(), nil
}

type collectionRoutes[T models.Entity] struct {
	h      *APIHandlers
	col    func(*editor.Session) store.Collection[T]
	ed     func(*editor.Session) *editor.Editor[T]
	decode func(*APIHandlers, fiber.Ctx) (T, error)
}

func registerCollection[T models.Entity](
	group fiber.Router,
	h *APIHandlers,
	path string,
	col func(*editor.Session) store.Collection[T],
	ed func(*editor.Session) *editor.Editor[T],
	decode func(*APIHandlers, fiber.Ctx) (T, error),
) {
	r := &collectionRoutes[T]{h: h, col: col, ed: ed, decode: decode}

	g := group.Group(path)
	g.Get("/", r.List)
	g.Get("/:id", r.Get)
	g.Post("/", r.Create)
	g.Put("/:id", r.Update)
	g.Delete("/:id", r.Delete)
	g.Get("/:id/impact", r.Impact)
}

func (r *collectionRoutes[T]) session(c fiber.Ctx) (*editor.Session, error) {
	tenantID := c.Params("tenantId")
	if tenantID == "" {
		return nil, badRequest(c, "Tenant ID is required")
	}

	session, err := r.h.manager.Session(c.Context(), tenantID)
	if err != nil {
		return nil, handleDeployError(c, err)
	}

	return session, nil
}

func (r *collectionRoutes[T]) List(c fiber.Ctx) error {
	session, err := r.session(c)
	if session == nil {
		return err
	}

	return c.JSON(r.col(session).List())
}

func (r *collectionRoutes[T]) Get(c fiber.Ctx) error {
	session, err := r.session(c)
	if session == nil {
		return err
	}

	entity, ok := r.col(session).Get(c.Params("id"))
	if !ok {
		return notFound(c, "entity not found")
	}

	return c.JSON(entity)
}

func (r *collectionRoutes[T]) Create(c fiber.Ctx) error {
	session, err := r.session(c)
	if session == nil {
		return err
	}

	entity, err := r.decode(r.h, c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ed := r.ed(session)
	ed.OpenCreate()

	// Warnings are collected before Submit resets the form.
	_, warns, _ := ed.Change(entity)

	if err := ed.Submit(entity); err != nil {
		return r.submitError(c, ed, err)
	}

	r.h.manager.publishEntityChanged(c.Context(), events.EntityCreatedEvent,
		session.TenantID, r.col(session).Kind(), entity.EntityID())

	return c.Status(fiber.StatusCreated).JSON(EntityResponse{
		ID:       entity.EntityID(),
		Entity:   entity,
		Warnings: warns,
	})
}

func (r *collectionRoutes[T]) Update(c fiber.Ctx) error {
	session, err := r.session(c)
	if session == nil {
		return err
	}

	id := c.Params("id")

	entity, err := r.decode(r.h, c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	if entity.EntityID() != id {
		return badRequest(c, "entity id cannot be changed")
	}

	ed := r.ed(session)
	if _, err := ed.OpenEdit(id); err != nil {
		return handleEditorError(c, err)
	}

	_, warns, _ := ed.Change(entity)

	if err := ed.Submit(entity); err != nil {
		return r.submitError(c, ed, err)
	}

	r.h.manager.publishEntityChanged(c.Context(), events.EntityUpdatedEvent,
		session.TenantID, r.col(session).Kind(), id)

	return c.JSON(EntityResponse{
		ID:       id,
		Entity:   entity,
		Warnings: warns,
	})
}

// submitError turns a failed Submit into a response. Validation failures get
// the issue lists; the editor form is abandoned either way because each HTTP
// request is a complete open-submit cycle.
func (r *collectionRoutes[T]) submitError(c fiber.Ctx, ed *editor.Editor[T], err error) error {
	if editor.IsValidationFailed(err) {
		errs, warns := ed.Issues()
		ed.Cancel()

		return c.Status(fiber.StatusUnprocessableEntity).JSON(IssuesResponse{
			Errors:   errs,
			Warnings: warns,
		})
	}

	ed.Cancel()

	return handleEditorError(c, err)
}

func (r *collectionRoutes[T]) Delete(c fiber.Ctx) error {
	session, err := r.session(c)
	if session == nil {
		return err
	}

	id := c.Params("id")

	ed := r.ed(session)

	impact, err := ed.OpenDelete(id)
	if err != nil {
		return handleEditorError(c, err)
	}

	if !impact.CanDelete {
		ed.Cancel()

		return c.Status(fiber.StatusConflict).JSON(impactResponse(impact))
	}

	if err := ed.ConfirmDelete(); err != nil {
		ed.Cancel()

		return handleEditorError(c, err)
	}

	r.h.manager.publishEntityChanged(c.Context(), events.EntityDeletedEvent,
		session.TenantID, r.col(session).Kind(), id)

	return c.SendStatus(fiber.StatusNoContent)
}

func (r *collectionRoutes[T]) Impact(c fiber.Ctx) error {
	session, err := r.session(c)
	if session == nil {
		return err
	}

	id := c.Params("id")

	col := r.col(session)
	if _, ok := col.Get(id); !ok {
		return notFound(c, "entity not found")
	}

	resolver := deps.NewResolver(session.Store().Collections())
	impact := resolver.DependentsOf(col.Kind(), id)

	return c.JSON(impactResponse(&impact))
}

func (h *APIHandlers) session(c fiber.Ctx) (*editor.Session, error) {
	tenantID := c.Params("tenantId")
	if tenantID == "" {
		return nil, badRequest(c, "Tenant ID is required")
	}

	session, err := h.manager.Session(c.Context(), tenantID)
	if err != nil {
		return nil, handleDeployError(c, err)
	}

	return session, nil
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	session, err := h.session(c)
	if session == nil {
		return err
	}

	st := session.Store()
	collections := st.Collections()

	return c.JSON(SessionResponse{
		TenantID: session.TenantID,
		Dirty:    st.Dirty(),
		Busy:     session.Busy(),
		Counts: map[string]int{
			string(models.KindProgram):  len(collections.Programs),
			string(models.KindForm):     len(collections.Forms),
			string(models.KindCTA):      len(collections.CTAs),
			string(models.KindBranch):   len(collections.Branches),
			string(models.KindChip):     len(collections.Chips),
			string(models.KindShowcase): len(collections.Showcase),
		},
		Version:  documentVersion(st.Baseline()),
		Snapshot: session.Validation(),
	})
}

func (h *APIHandlers) DiscardSession(c fiber.Ctx) error {
	tenantID := c.Params("tenantId")
	if tenantID == "" {
		return badRequest(c, "Tenant ID is required")
	}

	h.manager.Discard(tenantID)

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetCTASettings(c fiber.Ctx) error {
	session, err := h.session(c)
	if session == nil {
		return err
	}

	return c.JSON(session.Store().Collections().CTASettings)
}

// UpdateCTASettings replaces the opaque cta_settings section wholesale. The
// section has no entity structure, so it bypasses the per-entity editors.
func (h *APIHandlers) UpdateCTASettings(c fiber.Ctx) error {
	session, err := h.session(c)
	if session == nil {
		return err
	}

	var settings map[string]any
	if err := c.Bind().JSON(&settings); err != nil {
		return badRequest(c, err.Error())
	}

	session.Store().SetCTASettings(settings)

	return c.JSON(fiber.Map{
		"tenant_id": session.TenantID,
		"dirty":     session.Store().Dirty(),
	})
}

func (h *APIHandlers) GetBedrockInstructions(c fiber.Ctx) error {
	session, err := h.session(c)
	if session == nil {
		return err
	}

	return c.JSON(session.Store().Collections().BedrockInstructions)
}

// UpdateBedrockInstructions replaces the opaque bedrock_instructions section.
func (h *APIHandlers) UpdateBedrockInstructions(c fiber.Ctx) error {
	session, err := h.session(c)
	if session == nil {
		return err
	}

	var instructions map[string]any
	if err := c.Bind().JSON(&instructions); err != nil {
		return badRequest(c, err.Error())
	}

	session.Store().SetBedrockInstructions(instructions)

	return c.JSON(fiber.Map{
		"tenant_id": session.TenantID,
		"dirty":     session.Store().Dirty(),
	})
}

func (h *APIHandlers) GetValidation(c fiber.Ctx) error {
	session, err := h.session(c)
	if session == nil {
		return err
	}

	return c.JSON(session.Validation())
}

func (h *APIHandlers) SaveConfig(c fiber.Ctx) error {
	session, err := h.session(c)
	if session == nil {
		return err
	}

	if err := h.deployer.Save(c.Context(), session); err != nil {
		return handleDeployError(c, err)
	}

	return c.JSON(fiber.Map{
		"tenant_id": session.TenantID,
		"dirty":     session.Store().Dirty(),
	})
}

func (h *APIHandlers) DeployConfig(c fiber.Ctx) error {
	session, err := h.session(c)
	if session == nil {
		return err
	}

	deployed, err := h.deployer.Deploy(c.Context(), session)
	if err != nil {
		if errors.Is(err, deploy.ErrDocumentInvalid) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(session.Validation())
		}

		return handleDeployError(c, err)
	}

	meta := documentMetadata(deployed)

	return c.JSON(DeployResponse{
		TenantID:     session.TenantID,
		DeploymentID: meta.DeploymentID,
		Version:      meta.Version,
		DeployedAt:   time.Now().UTC(),
	})
}

func (h *APIHandlers) ListBackups(c fiber.Ctx) error {
	tenantID := c.Params("tenantId")
	if tenantID == "" {
		return badRequest(c, "Tenant ID is required")
	}

	backups, err := h.manager.storage.ListBackups(c.Context(), tenantID)
	if err != nil {
		return handleDeployError(c, err)
	}

	resp := make([]BackupResponse, 0, len(backups))
	for _, b := range backups {
		resp = append(resp, BackupResponse{Key: b.Key, TenantID: b.TenantID, CreatedAt: b.CreatedAt})
	}

	return c.JSON(resp)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	httpStatus := http.StatusOK

	checkErr := h.manager.storage.HealthCheck(c.Context())
	if checkErr != nil {
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
	})
}

func documentVersion(doc models.Document) int {
	return documentMetadata(doc).Version
}

func documentMetadata(doc models.Document) models.Metadata {
	var meta models.Metadata
	if raw, ok := doc[models.SectionMetadata]; ok {
		_ = json.Unmarshal(raw, &meta)
	}

	return meta
}
