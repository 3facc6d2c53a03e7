package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// apiCameraID identifica frames enviados pela API em vez de uma câmera
const apiCameraID = "api"

// FrameProcessor interface for the recognition pipeline
type FrameProcessor interface {
	Process(ctx context.Context, cameraID string, frame []byte) []domain.FaceMatch
}

type ProcessHandler struct {
	processor FrameProcessor
	logger    *slog.Logger
}

func NewProcessHandler(processor FrameProcessor, logger *slog.Logger) *ProcessHandler {
	return &ProcessHandler{
		processor: processor,
		logger:    logger,
	}
}

// ProcessFrame POST /v1/process-frame - roda o pipeline completo sobre uma
// imagem avulsa: matching, ledger de presença e registro de desconhecidos.
func (h *ProcessHandler) ProcessFrame(c *fiber.Ctx) error {
	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	matches := h.processor.Process(c.Context(), apiCameraID, imageBytes)

	return c.JSON(fiber.Map{
		"faces": matches,
		"total": len(matches),
	})
}
