package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

type SettingsHandler struct {
	settings *config.Settings
	logger   *slog.Logger
}

func NewSettingsHandler(settings *config.Settings, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger,
	}
}

// SettingsResponse runtime settings in API units
type SettingsResponse struct {
	SimilarityThreshold    float64 `json:"similarity_threshold"`
	DedupWindowSeconds     int     `json:"dedup_window_seconds"`
	DisplayIntervalMs      int     `json:"display_interval_ms"`
	FrameSkip              int     `json:"frame_skip"`
	MaxFrameWidth          int     `json:"max_frame_width"`
	JPEGQuality            int     `json:"jpeg_quality"`
	UnknownPrefilter       bool    `json:"unknown_prefilter"`
	UnknownRecentThreshold float64 `json:"unknown_recent_threshold"`
	UnknownGlobalThreshold float64 `json:"unknown_global_threshold"`
}

func toSettingsResponse(r config.Runtime) SettingsResponse {
	return SettingsResponse{
		SimilarityThreshold:    r.SimilarityThreshold,
		DedupWindowSeconds:     int(r.DedupWindow / time.Second),
		DisplayIntervalMs:      int(r.DisplayInterval / time.Millisecond),
		FrameSkip:              r.FrameSkip,
		MaxFrameWidth:          r.MaxFrameWidth,
		JPEGQuality:            r.JPEGQuality,
		UnknownPrefilter:       r.UnknownPrefilter,
		UnknownRecentThreshold: r.UnknownRecentThreshold,
		UnknownGlobalThreshold: r.UnknownGlobalThreshold,
	}
}

// Get GET /v1/settings
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	return c.JSON(toSettingsResponse(h.settings.Snapshot()))
}

// UpdateSettingsRequest partial update, omitted fields keep their value
type UpdateSettingsRequest struct {
	SimilarityThreshold    *float64 `json:"similarity_threshold,omitempty"`
	DedupWindowSeconds     *int     `json:"dedup_window_seconds,omitempty"`
	DisplayIntervalMs      *int     `json:"display_interval_ms,omitempty"`
	FrameSkip              *int     `json:"frame_skip,omitempty"`
	MaxFrameWidth          *int     `json:"max_frame_width,omitempty"`
	JPEGQuality            *int     `json:"jpeg_quality,omitempty"`
	UnknownPrefilter       *bool    `json:"unknown_prefilter,omitempty"`
	UnknownRecentThreshold *float64 `json:"unknown_recent_threshold,omitempty"`
	UnknownGlobalThreshold *float64 `json:"unknown_global_threshold,omitempty"`
}

// Update PUT /v1/settings - vale só para ticks e chamadas futuras, frames já
// processados nunca são reclassificados.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var req UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	runtime := h.settings.Snapshot()
	if req.SimilarityThreshold != nil {
		runtime.SimilarityThreshold = *req.SimilarityThreshold
	}
	if req.DedupWindowSeconds != nil {
		runtime.DedupWindow = time.Duration(*req.DedupWindowSeconds) * time.Second
	}
	if req.DisplayIntervalMs != nil {
		runtime.DisplayInterval = time.Duration(*req.DisplayIntervalMs) * time.Millisecond
	}
	if req.FrameSkip != nil {
		runtime.FrameSkip = *req.FrameSkip
	}
	if req.MaxFrameWidth != nil {
		runtime.MaxFrameWidth = *req.MaxFrameWidth
	}
	if req.JPEGQuality != nil {
		runtime.JPEGQuality = *req.JPEGQuality
	}
	if req.UnknownPrefilter != nil {
		runtime.UnknownPrefilter = *req.UnknownPrefilter
	}
	if req.UnknownRecentThreshold != nil {
		runtime.UnknownRecentThreshold = *req.UnknownRecentThreshold
	}
	if req.UnknownGlobalThreshold != nil {
		runtime.UnknownGlobalThreshold = *req.UnknownGlobalThreshold
	}

	if err := h.settings.Update(runtime); err != nil {
		if errors.Is(err, config.ErrThresholdOutOfRange) {
			return domain.ErrInvalidThreshold.WithError(err)
		}
		return domain.ErrValidationFailed.WithError(err)
	}

	h.logger.Info("runtime settings updated",
		slog.Float64("similarity_threshold", runtime.SimilarityThreshold),
		slog.Duration("dedup_window", runtime.DedupWindow),
		slog.Duration("display_interval", runtime.DisplayInterval),
	)

	return c.JSON(toSettingsResponse(h.settings.Snapshot()))
}
