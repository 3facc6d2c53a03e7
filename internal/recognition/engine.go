// Package recognition classifica faces de um frame contra a galeria.
package recognition

import (
	"context"
	"errors"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/gallery"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

type Engine struct {
	provider provider.EmbeddingProvider
	gallery  *gallery.Gallery
	settings *config.Settings
	logger   *slog.Logger
}

func NewEngine(p provider.EmbeddingProvider, g *gallery.Gallery, settings *config.Settings, logger *slog.Logger) *Engine {
	return &Engine{
		provider: p,
		gallery:  g,
		settings: settings,
		logger:   logger,
	}
}

// Match detecta as faces do frame e classifica cada uma contra a galeria.
// Falhas do serviço de embeddings viram um resultado vazio, não um erro:
// o pipeline de frames segue rodando sem o provedor.
func (e *Engine) Match(ctx context.Context, frame []byte) []domain.FaceMatch {
	faces, err := e.provider.Detect(ctx, frame)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		e.logger.Warn("face detection failed", slog.Any("error", err))
		return nil
	}

	threshold := e.settings.Snapshot().SimilarityThreshold

	matches := make([]domain.FaceMatch, 0, len(faces))
	for _, face := range faces {
		match := domain.FaceMatch{
			Box: domain.BoundingBox{
				X:      face.Box.X,
				Y:      face.Box.Y,
				Width:  face.Box.Width,
				Height: face.Box.Height,
			},
			Embedding: face.Embedding,
		}

		if nearest, ok := e.gallery.Nearest(face.Embedding); ok && nearest.Score >= threshold {
			identity := nearest.Identity
			match.Known = true
			match.Identity = &identity
			match.Score = nearest.Score
		} else if ok {
			match.Score = nearest.Score
		}

		matches = append(matches, match)
	}

	return matches
}
