package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// UnknownRegistry interface for the unknown sighting registry
type UnknownRegistry interface {
	List(ctx context.Context, limit, offset int) ([]domain.UnknownSighting, int, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.UnknownSighting, error)
	Discard(ctx context.Context, id uuid.UUID) error
	Migrate(ctx context.Context, sightingID uuid.UUID, target domain.MigrationTarget) (*domain.Identity, error)
}

type UnknownHandler struct {
	registry UnknownRegistry
	logger   *slog.Logger
}

func NewUnknownHandler(registry UnknownRegistry, logger *slog.Logger) *UnknownHandler {
	return &UnknownHandler{
		registry: registry,
		logger:   logger,
	}
}

// List GET /v1/unknown-faces?limit=&offset=
func (h *UnknownHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	sightings, total, err := h.registry.List(c.Context(), limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"sightings": sightings,
		"total":     total,
	})
}

// GetImage GET /v1/unknown-faces/:id/image - recorte JPEG da face
func (h *UnknownHandler) GetImage(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	sighting, err := h.registry.Get(c.Context(), id)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(sighting.Image)
}

// MigrateRequest request for migrating a sighting into an identity
type MigrateRequest struct {
	IdentityID string `json:"identity_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Identifier string `json:"identifier,omitempty"`
}

// Migrate POST /v1/unknown-faces/:id/migrate - promove o avistamento para
// uma identidade nova ou existente. Uso único: a segunda chamada falha com
// SIGHTING_NOT_FOUND.
func (h *UnknownHandler) Migrate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req MigrateRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	target := domain.MigrationTarget{
		Name:       strings.TrimSpace(req.Name),
		Identifier: strings.TrimSpace(req.Identifier),
	}
	if req.IdentityID != "" {
		identityID, perr := uuid.Parse(req.IdentityID)
		if perr != nil {
			return domain.ErrValidationFailed.WithError(perr)
		}
		target.IdentityID = &identityID
	} else if target.Name == "" || target.Identifier == "" {
		return domain.ErrValidationFailed.WithError(errors.New("either identity_id or name and identifier are required"))
	}

	identity, err := h.registry.Migrate(c.Context(), id, target)
	if err != nil {
		return err
	}

	h.logger.Info("sighting migrated",
		slog.String("sighting_id", id.String()),
		slog.String("identity_id", identity.ID.String()),
	)

	return c.Status(fiber.StatusCreated).JSON(toPersonResponse(identity))
}

// Discard DELETE /v1/unknown-faces/:id
func (h *UnknownHandler) Discard(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.registry.Discard(c.Context(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
