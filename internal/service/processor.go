package service

import (
	"context"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/presenca/internal/attendance"
	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/imaging"
	"github.com/saturnino-fabrica-de-software/presenca/internal/recognition"
	"github.com/saturnino-fabrica-de-software/presenca/internal/unknown"
)

// Processor conecta o reconhecimento às consequências de cada frame:
// faces conhecidas viram eventos de presença, desconhecidas viram
// avistamentos persistidos.
type Processor struct {
	engine   *recognition.Engine
	ledger   *attendance.Ledger
	registry *unknown.Registry
	settings *config.Settings
	logger   *slog.Logger
}

func NewProcessor(
	engine *recognition.Engine,
	ledger *attendance.Ledger,
	registry *unknown.Registry,
	settings *config.Settings,
	logger *slog.Logger,
) *Processor {
	return &Processor{
		engine:   engine,
		ledger:   ledger,
		registry: registry,
		settings: settings,
		logger:   logger,
	}
}

// Process classifica as faces do frame e aplica as consequências.
// Nunca retorna erro: falhas de persistência são registradas em log e o
// frame seguinte segue normalmente.
func (p *Processor) Process(ctx context.Context, cameraID string, frame []byte) []domain.FaceMatch {
	matches := p.engine.Match(ctx, frame)

	for _, match := range matches {
		if match.Known {
			p.handleKnown(ctx, cameraID, match)
		} else if len(match.Embedding) > 0 {
			p.handleUnknown(ctx, cameraID, frame, match)
		}
	}

	return matches
}

func (p *Processor) handleKnown(ctx context.Context, cameraID string, match domain.FaceMatch) {
	event, created, err := p.ledger.RecordSighting(ctx, match.Identity)
	if err != nil {
		p.logger.Error("failed to record attendance",
			slog.String("camera_id", cameraID),
			slog.String("identity_id", match.Identity.ID.String()),
			slog.Any("error", err),
		)
		return
	}

	if created {
		p.logger.Info("arrival registered",
			slog.String("camera_id", cameraID),
			slog.String("identifier", match.Identity.Identifier),
			slog.String("event_id", event.ID.String()),
		)
	}
}

func (p *Processor) handleUnknown(ctx context.Context, cameraID string, frame []byte, match domain.FaceMatch) {
	quality := p.settings.Snapshot().JPEGQuality

	crop, err := imaging.CropEncode(frame, match.Box, quality)
	if err != nil {
		p.logger.Warn("failed to crop unknown face",
			slog.String("camera_id", cameraID),
			slog.Any("error", err),
		)
		crop = nil
	}

	if _, _, err := p.registry.Record(ctx, match.Embedding, crop); err != nil {
		p.logger.Error("failed to record unknown sighting",
			slog.String("camera_id", cameraID),
			slog.Any("error", err),
		)
	}
}
