package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

type SightingRepository struct {
	pool PgxPool
}

func NewSightingRepository(pool PgxPool) *SightingRepository {
	return &SightingRepository{pool: pool}
}

func (r *SightingRepository) Create(ctx context.Context, sighting *domain.UnknownSighting) error {
	query := `
		INSERT INTO unknown_sightings (id, embedding, image, detected_at)
		VALUES ($1, $2, $3, $4)
		RETURNING detected_at
	`

	if sighting.ID == uuid.Nil {
		sighting.ID = uuid.New()
	}
	if sighting.DetectedAt.IsZero() {
		sighting.DetectedAt = time.Now()
	}

	err := r.pool.QueryRow(ctx, query,
		sighting.ID,
		toVector(sighting.Embedding),
		sighting.Image,
		sighting.DetectedAt,
	).Scan(&sighting.DetectedAt)

	if err != nil {
		return fmt.Errorf("create sighting: %w", err)
	}

	return nil
}

func (r *SightingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UnknownSighting, error) {
	query := `
		SELECT id, embedding, image, detected_at
		FROM unknown_sightings
		WHERE id = $1
	`

	var sighting domain.UnknownSighting
	var embedding *pgvector.Vector

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&sighting.ID,
		&embedding,
		&sighting.Image,
		&sighting.DetectedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSightingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sighting by id: %w", err)
	}

	sighting.Embedding = fromVector(embedding)

	return &sighting, nil
}

func (r *SightingRepository) List(ctx context.Context, limit, offset int) ([]domain.UnknownSighting, error) {
	query := `
		SELECT id, image, detected_at
		FROM unknown_sightings
		ORDER BY detected_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sightings: %w", err)
	}
	defer rows.Close()

	var sightings []domain.UnknownSighting
	for rows.Next() {
		var sighting domain.UnknownSighting
		if err := rows.Scan(&sighting.ID, &sighting.Image, &sighting.DetectedAt); err != nil {
			return nil, fmt.Errorf("scan sighting: %w", err)
		}
		sightings = append(sightings, sighting)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sightings: %w", err)
	}

	return sightings, nil
}

// ListSince retorna avistamentos recentes com embeddings, mais novos primeiro.
// Usado pelo pré-filtro de duplicatas do registro de desconhecidos.
func (r *SightingRepository) ListSince(ctx context.Context, since time.Time) ([]domain.UnknownSighting, error) {
	query := `
		SELECT id, embedding, detected_at
		FROM unknown_sightings
		WHERE detected_at >= $1
		ORDER BY detected_at DESC
	`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("list sightings since: %w", err)
	}
	defer rows.Close()

	var sightings []domain.UnknownSighting
	for rows.Next() {
		var sighting domain.UnknownSighting
		var embedding *pgvector.Vector
		if err := rows.Scan(&sighting.ID, &embedding, &sighting.DetectedAt); err != nil {
			return nil, fmt.Errorf("scan sighting: %w", err)
		}
		sighting.Embedding = fromVector(embedding)
		sightings = append(sightings, sighting)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sightings: %w", err)
	}

	return sightings, nil
}

func (r *SightingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM unknown_sightings
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete sighting: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSightingNotFound
	}

	return nil
}

func (r *SightingRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM unknown_sightings`

	var count int
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sightings: %w", err)
	}

	return count, nil
}

var _ SightingRepositoryInterface = (*SightingRepository)(nil)
