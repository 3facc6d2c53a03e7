// Package unknown persiste avistamentos de faces não reconhecidas e
// permite promovê-los a identidades cadastradas.
package unknown

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/gallery"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository"
	"github.com/saturnino-fabrica-de-software/presenca/internal/vector"
)

// recentWindow limita a consulta do pré-filtro aos avistamentos das
// últimas horas de operação.
const recentWindow = 5 * time.Minute

type Registry struct {
	sightings  repository.SightingRepositoryInterface
	identities repository.IdentityRepositoryInterface
	gallery    *gallery.Gallery
	settings   *config.Settings
	logger     *slog.Logger

	// serializa migrações para garantir exatamente uma promoção por avistamento
	migrateMu sync.Mutex
}

func NewRegistry(
	sightings repository.SightingRepositoryInterface,
	identities repository.IdentityRepositoryInterface,
	g *gallery.Gallery,
	settings *config.Settings,
	logger *slog.Logger,
) *Registry {
	return &Registry{
		sightings:  sightings,
		identities: identities,
		gallery:    g,
		settings:   settings,
		logger:     logger,
	}
}

// Record persiste um avistamento de face desconhecida. Com o pré-filtro
// habilitado, avistamentos muito parecidos com um recente são descartados.
// Retorna o avistamento e true quando persistiu.
func (r *Registry) Record(ctx context.Context, embedding []float64, image []byte) (*domain.UnknownSighting, bool, error) {
	runtime := r.settings.Snapshot()

	if runtime.UnknownPrefilter {
		duplicate, err := r.isDuplicate(ctx, embedding, runtime)
		if err != nil {
			// falha do pré-filtro não descarta o avistamento
			r.logger.Warn("unknown prefilter failed", slog.Any("error", err))
		} else if duplicate {
			return nil, false, nil
		}
	}

	sighting := &domain.UnknownSighting{
		Embedding: embedding,
		Image:     image,
	}

	if err := r.sightings.Create(ctx, sighting); err != nil {
		return nil, false, fmt.Errorf("record unknown sighting: %w", err)
	}

	r.logger.Info("unknown sighting recorded", slog.String("sighting_id", sighting.ID.String()))
	return sighting, true, nil
}

// isDuplicate compara o embedding com avistamentos recentes e, com limiar
// mais rígido, com todos os persistidos na janela consultada.
func (r *Registry) isDuplicate(ctx context.Context, embedding []float64, runtime config.Runtime) (bool, error) {
	recent, err := r.sightings.ListSince(ctx, time.Now().Add(-recentWindow))
	if err != nil {
		return false, err
	}

	for _, sighting := range recent {
		score := vector.Cosine(embedding, sighting.Embedding)
		if score >= runtime.UnknownRecentThreshold {
			return true, nil
		}
	}

	all, err := r.sightings.ListSince(ctx, time.Time{})
	if err != nil {
		return false, err
	}

	for _, sighting := range all {
		if vector.Cosine(embedding, sighting.Embedding) >= runtime.UnknownGlobalThreshold {
			return true, nil
		}
	}

	return false, nil
}

// List retorna avistamentos paginados, mais recentes primeiro
func (r *Registry) List(ctx context.Context, limit, offset int) ([]domain.UnknownSighting, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	sightings, err := r.sightings.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.sightings.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return sightings, total, nil
}

// Get retorna um avistamento pelo id, com embedding e imagem
func (r *Registry) Get(ctx context.Context, id uuid.UUID) (*domain.UnknownSighting, error) {
	return r.sightings.GetByID(ctx, id)
}

// Discard remove um avistamento sem promovê-lo
func (r *Registry) Discard(ctx context.Context, id uuid.UUID) error {
	return r.sightings.Delete(ctx, id)
}

// Migrate promove um avistamento a identidade cadastrada. Com IdentityID
// no alvo, o embedding passa a pertencer à pessoa existente; sem, uma nova
// identidade é criada. O avistamento é removido ao final, e chamadas
// concorrentes para o mesmo avistamento promovem exatamente uma vez.
func (r *Registry) Migrate(ctx context.Context, sightingID uuid.UUID, target domain.MigrationTarget) (*domain.Identity, error) {
	r.migrateMu.Lock()
	defer r.migrateMu.Unlock()

	sighting, err := r.sightings.GetByID(ctx, sightingID)
	if err != nil {
		return nil, err
	}

	var identity *domain.Identity
	if target.IsNew() {
		identity = &domain.Identity{
			Name:       target.Name,
			Identifier: target.Identifier,
			Embedding:  sighting.Embedding,
			Image:      sighting.Image,
		}
		if err := r.identities.Create(ctx, identity); err != nil {
			return nil, err
		}
		r.gallery.Add(*identity)
	} else {
		identity, err = r.identities.GetByID(ctx, *target.IdentityID)
		if err != nil {
			return nil, err
		}
		if identity.Deleted {
			return nil, domain.ErrIdentityNotFound
		}
	}

	if err := r.sightings.Delete(ctx, sightingID); err != nil {
		return nil, fmt.Errorf("remove migrated sighting: %w", err)
	}

	r.logger.Info("unknown sighting migrated",
		slog.String("sighting_id", sightingID.String()),
		slog.String("identity_id", identity.ID.String()),
		slog.Bool("new_identity", target.IsNew()),
	)

	return identity, nil
}
