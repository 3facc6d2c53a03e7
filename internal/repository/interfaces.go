package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// PgxPool abstrai o pool de conexões pgx para permitir mocks nos testes
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// IdentityRepositoryInterface defines operations for identity data access
type IdentityRepositoryInterface interface {
	Create(ctx context.Context, identity *domain.Identity) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error)
	GetImage(ctx context.Context, id uuid.UUID) ([]byte, error)
	ListActive(ctx context.Context) ([]domain.Identity, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// AttendanceRepositoryInterface defines operations for attendance event data access
type AttendanceRepositoryInterface interface {
	Create(ctx context.Context, event *domain.AttendanceEvent) error
	SetDeparture(ctx context.Context, id uuid.UUID, departure time.Time) error
	ListByRange(ctx context.Context, from, to time.Time) ([]domain.AttendanceEvent, error)
	LatestArrivals(ctx context.Context) (map[uuid.UUID]time.Time, error)
}

// SightingRepositoryInterface defines operations for unknown sighting data access
type SightingRepositoryInterface interface {
	Create(ctx context.Context, sighting *domain.UnknownSighting) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UnknownSighting, error)
	List(ctx context.Context, limit, offset int) ([]domain.UnknownSighting, error)
	ListSince(ctx context.Context, since time.Time) ([]domain.UnknownSighting, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}
