package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// AttendanceLedger interface for the attendance ledger
type AttendanceLedger interface {
	RecordManual(ctx context.Context, identity *domain.Identity, arrival time.Time) (*domain.AttendanceEvent, error)
	Depart(ctx context.Context, eventID uuid.UUID, departure time.Time) error
	ListByDay(ctx context.Context, day time.Time) ([]domain.AttendanceEvent, error)
	ListByRange(ctx context.Context, from, to time.Time) ([]domain.AttendanceEvent, error)
}

type AttendanceHandler struct {
	ledger AttendanceLedger
	people PeopleService
	logger *slog.Logger
}

func NewAttendanceHandler(ledger AttendanceLedger, people PeopleService, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		ledger: ledger,
		people: people,
		logger: logger,
	}
}

// List GET /v1/attendance?day=2026-03-10 ou ?from=...&to=... (RFC 3339).
// Sem filtros, devolve o dia corrente.
func (h *AttendanceHandler) List(c *fiber.Ctx) error {
	var (
		events []domain.AttendanceEvent
		err    error
	)

	switch {
	case c.Query("from") != "" || c.Query("to") != "":
		from, to, perr := parseRange(c.Query("from"), c.Query("to"))
		if perr != nil {
			return domain.ErrValidationFailed.WithError(perr)
		}
		events, err = h.ledger.ListByRange(c.Context(), from, to)
	case c.Query("day") != "":
		day, perr := time.Parse("2006-01-02", c.Query("day"))
		if perr != nil {
			return domain.ErrValidationFailed.WithError(perr)
		}
		events, err = h.ledger.ListByDay(c.Context(), day)
	default:
		events, err = h.ledger.ListByDay(c.Context(), time.Now().UTC())
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"events": events,
		"total":  len(events),
	})
}

// ManualEntryRequest request for manual attendance entries
type ManualEntryRequest struct {
	IdentityID  string     `json:"identity_id"`
	ArrivalTime *time.Time `json:"arrival_time,omitempty"`
}

// Create POST /v1/attendance - registro manual, ignora a janela de deduplicação
func (h *AttendanceHandler) Create(c *fiber.Ctx) error {
	var req ManualEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	identityID, err := uuid.Parse(req.IdentityID)
	if err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	identity, err := h.people.Get(c.Context(), identityID)
	if err != nil {
		return err
	}

	arrival := time.Now().UTC()
	if req.ArrivalTime != nil {
		arrival = *req.ArrivalTime
	}

	event, err := h.ledger.RecordManual(c.Context(), identity, arrival)
	if err != nil {
		return err
	}

	h.logger.Info("manual attendance recorded",
		slog.String("identity_id", identityID.String()),
		slog.Time("arrival", arrival),
	)

	return c.Status(fiber.StatusCreated).JSON(event)
}

// DepartureRequest request for the departure endpoint
type DepartureRequest struct {
	DepartureTime *time.Time `json:"departure_time,omitempty"`
}

// Depart POST /v1/attendance/:id/departure
func (h *AttendanceHandler) Depart(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req DepartureRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.ErrBadRequest.WithError(err)
		}
	}

	departure := time.Now().UTC()
	if req.DepartureTime != nil {
		departure = *req.DepartureTime
	}

	if err := h.ledger.Depart(c.Context(), id, departure); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func parseRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	from := time.Now().UTC().Truncate(24 * time.Hour)
	to := from.Add(24 * time.Hour)

	var err error
	if fromRaw != "" {
		if from, err = time.Parse(time.RFC3339, fromRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toRaw != "" {
		if to, err = time.Parse(time.RFC3339, toRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}
