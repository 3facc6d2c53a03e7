package handler

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/presenca/internal/camera"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

type CameraHandler struct {
	broker *camera.Broker
	logger *slog.Logger
}

func NewCameraHandler(broker *camera.Broker, logger *slog.Logger) *CameraHandler {
	return &CameraHandler{
		broker: broker,
		logger: logger,
	}
}

// AddCameraRequest request to register a camera
type AddCameraRequest struct {
	CameraID    string `json:"camera_id"`
	SourceURI   string `json:"source_uri,omitempty"`
	CameraType  string `json:"camera_type"`
	DeviceIndex int    `json:"device_index,omitempty"`
}

// Add POST /v1/cameras - o probe de alcance roda antes do registro, então
// uma câmera inalcançável nunca chega a existir.
func (h *CameraHandler) Add(c *fiber.Ctx) error {
	var req AddCameraRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	req.CameraID = strings.TrimSpace(req.CameraID)
	if req.CameraID == "" {
		return domain.ErrValidationFailed.WithError(errors.New("camera_id is required"))
	}

	kind := camera.Kind(req.CameraType)
	switch kind {
	case camera.KindStream, camera.KindPull:
		if req.SourceURI == "" {
			return domain.ErrValidationFailed.WithError(errors.New("source_uri is required"))
		}
	case camera.KindLocal:
	default:
		return domain.ErrValidationFailed.WithError(errors.New("camera_type must be stream, pull or local"))
	}

	desc := camera.Descriptor{
		CameraID:    req.CameraID,
		SourceURI:   req.SourceURI,
		Kind:        kind,
		DeviceIndex: req.DeviceIndex,
	}

	if err := h.broker.AddCamera(c.Context(), desc); err != nil {
		return err
	}

	status, err := h.broker.CameraStatus(req.CameraID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(status)
}

// List GET /v1/cameras
func (h *CameraHandler) List(c *fiber.Ctx) error {
	cameras := h.broker.Cameras()
	return c.JSON(fiber.Map{
		"cameras": cameras,
		"total":   len(cameras),
	})
}

// Status GET /v1/cameras/:id
func (h *CameraHandler) Status(c *fiber.Ctx) error {
	status, err := h.broker.CameraStatus(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(status)
}

// Remove DELETE /v1/cameras/:id - idempotente, remover duas vezes é 204 nas duas
func (h *CameraHandler) Remove(c *fiber.Ctx) error {
	h.broker.RemoveCamera(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

// Frame GET /v1/cameras/:id/frame - último frame, reencodado para exibição
func (h *CameraHandler) Frame(c *fiber.Ctx) error {
	frame, err := h.broker.LatestFrame(c.Params("id"))
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(frame)
}

// SetModeRequest request to switch the session mode
type SetModeRequest struct {
	Mode string `json:"mode"`
}

// SetMode POST /v1/cameras/:id/mode
func (h *CameraHandler) SetMode(c *fiber.Ctx) error {
	var req SetModeRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	mode := camera.Mode(req.Mode)
	switch mode {
	case camera.ModeDisplay, camera.ModeRecognition, camera.ModeStopped:
	default:
		return domain.ErrValidationFailed.WithError(errors.New("mode must be display, recognition or stopped"))
	}

	if err := h.broker.SetMode(c.Params("id"), mode); err != nil {
		return err
	}

	status, err := h.broker.CameraStatus(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(status)
}

// Discover GET /v1/cameras/discover - enumera /dev/video*. Nunca falha,
// uma máquina sem dispositivos devolve lista vazia.
func (h *CameraHandler) Discover(c *fiber.Ctx) error {
	devices := camera.DiscoverLocalDevices()
	if devices == nil {
		devices = []int{}
	}
	return c.JSON(fiber.Map{
		"devices": devices,
	})
}
