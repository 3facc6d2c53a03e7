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

// PeopleService interface for the enrollment service
type PeopleService interface {
	Enroll(ctx context.Context, name, identifier string, image []byte) (*domain.Identity, error)
	List(ctx context.Context) ([]domain.Identity, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Identity, error)
	GetImage(ctx context.Context, id uuid.UUID) ([]byte, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (*domain.Identity, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PeopleHandler struct {
	service PeopleService
	logger  *slog.Logger
}

func NewPeopleHandler(service PeopleService, logger *slog.Logger) *PeopleHandler {
	return &PeopleHandler{
		service: service,
		logger:  logger,
	}
}

// PersonResponse response for enrollment and listing endpoints
type PersonResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	CreatedAt  string `json:"created_at"`
}

func toPersonResponse(identity *domain.Identity) PersonResponse {
	return PersonResponse{
		ID:         identity.ID.String(),
		Name:       identity.Name,
		Identifier: identity.Identifier,
		CreatedAt:  identity.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// Enroll POST /v1/people - cadastra uma pessoa a partir de uma foto
func (h *PeopleHandler) Enroll(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	identifier := strings.TrimSpace(c.FormValue("identifier"))
	if name == "" || identifier == "" {
		return domain.ErrValidationFailed.WithError(errors.New("name and identifier are required"))
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	identity, err := h.service.Enroll(c.Context(), name, identifier, imageBytes)
	if err != nil {
		return err
	}

	h.logger.Info("person enrolled",
		slog.String("identity_id", identity.ID.String()),
		slog.String("identifier", identity.Identifier),
	)

	return c.Status(fiber.StatusCreated).JSON(toPersonResponse(identity))
}

// List GET /v1/people
func (h *PeopleHandler) List(c *fiber.Ctx) error {
	identities, err := h.service.List(c.Context())
	if err != nil {
		return err
	}

	people := make([]PersonResponse, 0, len(identities))
	for i := range identities {
		people = append(people, toPersonResponse(&identities[i]))
	}

	return c.JSON(fiber.Map{
		"people": people,
		"total":  len(people),
	})
}

// Get GET /v1/people/:id
func (h *PeopleHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	identity, err := h.service.Get(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(toPersonResponse(identity))
}

// GetImage GET /v1/people/:id/image - foto de cadastro
func (h *PeopleHandler) GetImage(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	image, err := h.service.GetImage(c.Context(), id)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(image)
}

// RenameRequest request for the rename endpoint
type RenameRequest struct {
	Name string `json:"name"`
}

// Rename PATCH /v1/people/:id
func (h *PeopleHandler) Rename(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req RenameRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	if strings.TrimSpace(req.Name) == "" {
		return domain.ErrValidationFailed.WithError(errors.New("name is required"))
	}

	identity, err := h.service.Rename(c.Context(), id, strings.TrimSpace(req.Name))
	if err != nil {
		return err
	}

	return c.JSON(toPersonResponse(identity))
}

// Delete DELETE /v1/people/:id - soft delete, libera o identifier
func (h *PeopleHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, domain.ErrValidationFailed.WithError(err)
	}
	return id, nil
}
