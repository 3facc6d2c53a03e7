// Package attendance registra chegadas e saídas com deduplicação por janela.
package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository"
)

// Ledger decide se uma identidade reconhecida gera um novo evento de
// presença. Duas observações da mesma pessoa dentro da janela de
// deduplicação contam uma vez só.
type Ledger struct {
	repo     repository.AttendanceRepositoryInterface
	settings *config.Settings
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	last  map[uuid.UUID]time.Time
	locks map[uuid.UUID]*sync.Mutex
}

func NewLedger(repo repository.AttendanceRepositoryInterface, settings *config.Settings, logger *slog.Logger) *Ledger {
	return &Ledger{
		repo:     repo,
		settings: settings,
		logger:   logger,
		now:      time.Now,
		last:     make(map[uuid.UUID]time.Time),
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// SetClock troca a fonte de tempo do ledger. Usado em testes.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

// Rehydrate carrega a última chegada de cada identidade do banco para que
// a janela de deduplicação sobreviva a reinícios do serviço.
func (l *Ledger) Rehydrate(ctx context.Context) error {
	arrivals, err := l.repo.LatestArrivals(ctx)
	if err != nil {
		return fmt.Errorf("rehydrate ledger: %w", err)
	}

	l.mu.Lock()
	l.last = arrivals
	l.mu.Unlock()

	l.logger.Info("attendance ledger rehydrated", slog.Int("identities", len(arrivals)))
	return nil
}

// RecordSighting registra a chegada de uma identidade reconhecida.
// Retorna o evento criado e true, ou nil e false quando a observação cai
// dentro da janela de deduplicação. Observações concorrentes da mesma
// identidade são serializadas.
func (l *Ledger) RecordSighting(ctx context.Context, identity *domain.Identity) (*domain.AttendanceEvent, bool, error) {
	lock := l.identityLock(identity.ID)
	lock.Lock()
	defer lock.Unlock()

	now := l.now()
	window := l.settings.Snapshot().DedupWindow

	l.mu.Lock()
	lastSeen, seen := l.last[identity.ID]
	l.mu.Unlock()

	if seen && now.Sub(lastSeen) < window {
		return nil, false, nil
	}

	event := &domain.AttendanceEvent{
		IdentityID:  identity.ID,
		Name:        identity.Name,
		Identifier:  identity.Identifier,
		ArrivalTime: now,
		Auto:        true,
	}

	if err := l.repo.Create(ctx, event); err != nil {
		return nil, false, fmt.Errorf("record sighting: %w", err)
	}

	l.mu.Lock()
	l.last[identity.ID] = now
	l.mu.Unlock()

	l.logger.Info("attendance recorded",
		slog.String("identity_id", identity.ID.String()),
		slog.String("identifier", identity.Identifier),
	)

	return event, true, nil
}

// RecordManual registra uma chegada lançada por um operador. Ignora a
// janela de deduplicação mas a rearma para as observações automáticas
// seguintes.
func (l *Ledger) RecordManual(ctx context.Context, identity *domain.Identity, arrival time.Time) (*domain.AttendanceEvent, error) {
	lock := l.identityLock(identity.ID)
	lock.Lock()
	defer lock.Unlock()

	if arrival.IsZero() {
		arrival = l.now()
	}

	event := &domain.AttendanceEvent{
		IdentityID:  identity.ID,
		Name:        identity.Name,
		Identifier:  identity.Identifier,
		ArrivalTime: arrival,
		Auto:        false,
	}

	if err := l.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("record manual attendance: %w", err)
	}

	l.mu.Lock()
	if arrival.After(l.last[identity.ID]) {
		l.last[identity.ID] = arrival
	}
	l.mu.Unlock()

	return event, nil
}

// Depart fecha um evento de presença em aberto
func (l *Ledger) Depart(ctx context.Context, eventID uuid.UUID, departure time.Time) error {
	if departure.IsZero() {
		departure = l.now()
	}
	return l.repo.SetDeparture(ctx, eventID, departure)
}

// ListByDay retorna os eventos cuja chegada cai no dia informado
func (l *Ledger) ListByDay(ctx context.Context, day time.Time) ([]domain.AttendanceEvent, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return l.repo.ListByRange(ctx, from, from.Add(24*time.Hour))
}

// ListByRange retorna os eventos com chegada dentro do intervalo
func (l *Ledger) ListByRange(ctx context.Context, from, to time.Time) ([]domain.AttendanceEvent, error) {
	return l.repo.ListByRange(ctx, from, to)
}

// Forget descarta o estado de deduplicação de uma identidade removida
func (l *Ledger) Forget(id uuid.UUID) {
	l.mu.Lock()
	delete(l.last, id)
	delete(l.locks, id)
	l.mu.Unlock()
}

func (l *Ledger) identityLock(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	return lock
}
