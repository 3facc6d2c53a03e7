//go:build integration

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saturnino-fabrica-de-software/presenca/internal/database"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

func setupIntegrationTest(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "presenca_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/presenca_test?sslmode=disable", host, port.Port())

	// o esquema sobe pelo migrator real, o mesmo caminho do cmd/migrate
	sqlDB, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	migrator, err := database.NewMigrator(sqlDB, "presenca_test")
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	db, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

func testIdentity(identifier string) *domain.Identity {
	embedding := make([]float64, 512)
	embedding[0] = 1
	return &domain.Identity{
		Name:       "Maria Silva",
		Identifier: identifier,
		Embedding:  embedding,
		Image:      []byte{0xff, 0xd8, 0xff, 0xd9},
	}
}

func TestIdentityRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewIdentityRepository(db)

	t.Run("create and load with embedding", func(t *testing.T) {
		identity := testIdentity("mat-1")
		require.NoError(t, repo.Create(ctx, identity))
		require.NotEqual(t, uuid.Nil, identity.ID)

		got, err := repo.GetByID(ctx, identity.ID)
		require.NoError(t, err)
		assert.Equal(t, "mat-1", got.Identifier)
		require.Len(t, got.Embedding, 512)
		assert.InDelta(t, 1.0, got.Embedding[0], 1e-6)
	})

	t.Run("duplicate identifier is rejected", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, testIdentity("mat-2")))
		assert.ErrorIs(t, repo.Create(ctx, testIdentity("mat-2")), domain.ErrDuplicateIdentifier)
	})

	t.Run("soft delete frees the identifier", func(t *testing.T) {
		first := testIdentity("mat-3")
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.SoftDelete(ctx, first.ID))

		// o índice parcial só cobre linhas não deletadas
		require.NoError(t, repo.Create(ctx, testIdentity("mat-3")))

		active, err := repo.ListActive(ctx)
		require.NoError(t, err)
		for _, identity := range active {
			assert.NotEqual(t, first.ID, identity.ID)
		}
	})
}

func TestAttendanceRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	identities := NewIdentityRepository(db)
	repo := NewAttendanceRepository(db)

	identity := testIdentity("mat-10")
	require.NoError(t, identities.Create(ctx, identity))

	first := &domain.AttendanceEvent{
		IdentityID:  identity.ID,
		Name:        identity.Name,
		Identifier:  identity.Identifier,
		ArrivalTime: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		Auto:        true,
	}
	require.NoError(t, repo.Create(ctx, first))

	second := &domain.AttendanceEvent{
		IdentityID:  identity.ID,
		Name:        identity.Name,
		Identifier:  identity.Identifier,
		ArrivalTime: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Auto:        true,
	}
	require.NoError(t, repo.Create(ctx, second))

	t.Run("latest arrivals keeps only the newest per identity", func(t *testing.T) {
		arrivals, err := repo.LatestArrivals(ctx)
		require.NoError(t, err)
		require.Contains(t, arrivals, identity.ID)
		assert.Equal(t, second.ArrivalTime, arrivals[identity.ID].UTC())
	})

	t.Run("departure updates only open events", func(t *testing.T) {
		departure := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
		require.NoError(t, repo.SetDeparture(ctx, second.ID, departure))
		assert.ErrorIs(t, repo.SetDeparture(ctx, second.ID, departure), domain.ErrEventNotFound)
	})

	t.Run("range listing is bounded", func(t *testing.T) {
		events, err := repo.ListByRange(ctx,
			time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})
}
