package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

type IdentityRepository struct {
	pool PgxPool
}

func NewIdentityRepository(pool PgxPool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	query := `
		INSERT INTO identities (id, name, identifier, embedding, image, deleted, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW())
		RETURNING created_at
	`

	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		identity.ID,
		identity.Name,
		identity.Identifier,
		toVector(identity.Embedding),
		identity.Image,
	).Scan(&identity.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateIdentifier
		}
		return fmt.Errorf("create identity: %w", err)
	}

	return nil
}

func (r *IdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	query := `
		SELECT id, name, identifier, embedding, deleted, created_at
		FROM identities
		WHERE id = $1
	`

	var identity domain.Identity
	var embedding *pgvector.Vector

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&identity.ID,
		&identity.Name,
		&identity.Identifier,
		&embedding,
		&identity.Deleted,
		&identity.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get identity by id: %w", err)
	}

	identity.Embedding = fromVector(embedding)

	return &identity, nil
}

func (r *IdentityRepository) GetImage(ctx context.Context, id uuid.UUID) ([]byte, error) {
	query := `
		SELECT image
		FROM identities
		WHERE id = $1 AND NOT deleted
	`

	var image []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(&image)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get identity image: %w", err)
	}

	return image, nil
}

// ListActive retorna todas as identidades não removidas, com embeddings,
// na ordem de criação. Usada para carregar a galeria em memória.
func (r *IdentityRepository) ListActive(ctx context.Context) ([]domain.Identity, error) {
	query := `
		SELECT id, name, identifier, embedding, created_at
		FROM identities
		WHERE NOT deleted
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var identities []domain.Identity
	for rows.Next() {
		var identity domain.Identity
		var embedding *pgvector.Vector

		if err := rows.Scan(
			&identity.ID,
			&identity.Name,
			&identity.Identifier,
			&embedding,
			&identity.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}

		identity.Embedding = fromVector(embedding)
		identities = append(identities, identity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}

	return identities, nil
}

func (r *IdentityRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	query := `
		UPDATE identities
		SET name = $2
		WHERE id = $1 AND NOT deleted
	`

	result, err := r.pool.Exec(ctx, query, id, name)
	if err != nil {
		return fmt.Errorf("update identity name: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrIdentityNotFound
	}

	return nil
}

// SoftDelete marca a identidade como removida sem apagar o histórico.
// O identificador fica livre para um novo cadastro.
func (r *IdentityRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE identities
		SET deleted = TRUE
		WHERE id = $1 AND NOT deleted
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete identity: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrIdentityNotFound
	}

	return nil
}

var _ IdentityRepositoryInterface = (*IdentityRepository)(nil)
