package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

type AttendanceRepository struct {
	pool PgxPool
}

func NewAttendanceRepository(pool PgxPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

func (r *AttendanceRepository) Create(ctx context.Context, event *domain.AttendanceEvent) error {
	query := `
		INSERT INTO attendance_events (id, identity_id, name, identifier, arrival_time, departure_time, auto, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.ArrivalTime.IsZero() {
		event.ArrivalTime = time.Now()
	}

	err := r.pool.QueryRow(ctx, query,
		event.ID,
		event.IdentityID,
		event.Name,
		event.Identifier,
		event.ArrivalTime,
		event.DepartureTime,
		event.Auto,
	).Scan(&event.CreatedAt)

	if err != nil {
		return fmt.Errorf("create attendance event: %w", err)
	}

	return nil
}

func (r *AttendanceRepository) SetDeparture(ctx context.Context, id uuid.UUID, departure time.Time) error {
	query := `
		UPDATE attendance_events
		SET departure_time = $2
		WHERE id = $1 AND departure_time IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id, departure)
	if err != nil {
		return fmt.Errorf("set departure: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}

	return nil
}

func (r *AttendanceRepository) ListByRange(ctx context.Context, from, to time.Time) ([]domain.AttendanceEvent, error) {
	query := `
		SELECT id, identity_id, name, identifier, arrival_time, departure_time, auto, created_at
		FROM attendance_events
		WHERE arrival_time >= $1 AND arrival_time < $2
		ORDER BY arrival_time DESC
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list attendance events: %w", err)
	}
	defer rows.Close()

	var events []domain.AttendanceEvent
	for rows.Next() {
		var event domain.AttendanceEvent
		if err := rows.Scan(
			&event.ID,
			&event.IdentityID,
			&event.Name,
			&event.Identifier,
			&event.ArrivalTime,
			&event.DepartureTime,
			&event.Auto,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attendance event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance events: %w", err)
	}

	return events, nil
}

// LatestArrivals retorna o horário da última chegada de cada identidade.
// Usado para reidratar a janela de deduplicação após reinício.
func (r *AttendanceRepository) LatestArrivals(ctx context.Context) (map[uuid.UUID]time.Time, error) {
	query := `
		SELECT identity_id, MAX(arrival_time)
		FROM attendance_events
		GROUP BY identity_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("latest arrivals: %w", err)
	}
	defer rows.Close()

	arrivals := make(map[uuid.UUID]time.Time)
	for rows.Next() {
		var identityID uuid.UUID
		var arrival time.Time
		if err := rows.Scan(&identityID, &arrival); err != nil {
			return nil, fmt.Errorf("scan latest arrival: %w", err)
		}
		arrivals[identityID] = arrival
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate latest arrivals: %w", err)
	}

	return arrivals, nil
}

var _ AttendanceRepositoryInterface = (*AttendanceRepository)(nil)
