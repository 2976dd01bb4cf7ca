package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/longhornrumble/picasso-config-builder/pkg/deploy"
	"github.com/longhornrumble/picasso-config-builder/pkg/editor"
	"github.com/longhornrumble/picasso-config-builder/pkg/storage"
	"github.com/longhornrumble/picasso-config-builder/pkg/store"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("bad_request").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleEditorError maps editor and store errors onto problem responses.
// Validation failures are handled by the callers, which attach the issue
// lists; everything that lands here is a plain status mapping.
func handleEditorError(c fiber.Ctx, err error) error {
	switch {
	case store.IsNotFound(err):
		return notFound(c, "entity not found")

	case store.IsDuplicateID(err):
		return conflict(c, "duplicate_id", err.Error())

	case editor.IsBusy(err):
		return conflict(c, "busy", "a save or deployment is in progress")

	case editor.IsDeleteBlocked(err):
		return conflict(c, "delete_blocked", err.Error())

	default:
		return internalError(c, err)
	}
}

// handleDeployError maps save and deployment failures onto problem responses.
func handleDeployError(c fiber.Ctx, err error) error {
	switch {
	case editor.IsBusy(err):
		return conflict(c, "busy", "a save or deployment is in progress")

	case deploy.IsProtectedSection(err):
		return conflict(c, "protected_section", err.Error())

	case errors.Is(err, deploy.ErrNoBaseline):
		return conflict(c, "no_baseline", "no server document loaded for this tenant")

	case storage.IsTenantNotFound(err):
		return notFound(c, "tenant not found")

	default:
		return internalError(c, err)
	}
}
