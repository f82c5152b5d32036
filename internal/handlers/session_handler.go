package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/hadi-makki/gymleb-api/internal/models"
	"github.com/hadi-makki/gymleb-api/internal/repository"
	"github.com/hadi-makki/gymleb-api/internal/schedule"
	"github.com/hadi-makki/gymleb-api/internal/services"
)

type sessionSchedulingService interface {
	CheckAvailability(ctx context.Context, trainerID int64, start time.Time, durationHours int, excludeSessionID *int64) (*services.AvailabilityResult, error)
	BookSession(ctx context.Context, input services.BookSessionInput) (*models.Session, error)
	RescheduleSession(ctx context.Context, sessionID int64, newStart time.Time) (*models.Session, error)
	CancelSession(ctx context.Context, sessionID int64, reason string) (*models.Session, error)
	DeleteSession(ctx context.Context, sessionID int64) error
	PurchasePackage(ctx context.Context, input services.PurchasePackageInput) (*services.PurchasePackageResult, error)
	BulkAssignWeekly(ctx context.Context, sessionIDs []int64, weekdayName, clock, timezone string) ([]models.Session, error)
}

type SessionHandler struct {
	service sessionSchedulingService
}

func NewSessionHandler(service *services.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

type bookSessionRequest struct {
	TrainerID     int64   `json:"trainer_id"`
	GymID         int64   `json:"gym_id"`
	MemberIDs     []int64 `json:"member_ids"`
	Start         string  `json:"start"`
	DurationHours int     `json:"duration_hours"`
	Price         float64 `json:"price"`
	PurchaseID    *int64  `json:"purchase_id"`
}

func (h *SessionHandler) BookSession(c *fiber.Ctx) error {
	var req bookSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	start, ok := schedule.UTC().ToInstant(req.Start)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start must be a valid timestamp"})
	}
	if len(req.MemberIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "member_ids must not be empty"})
	}

	session, err := h.service.BookSession(c.Context(), services.BookSessionInput{
		TrainerID:     req.TrainerID,
		GymID:         req.GymID,
		MemberIDs:     req.MemberIDs,
		Start:         start,
		DurationHours: req.DurationHours,
		Price:         req.Price,
		PurchaseID:    req.PurchaseID,
	})
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) CheckAvailability(c *fiber.Ctx) error {
	trainerID, err := strconv.ParseInt(c.Query("trainer_id"), 10, 64)
	if err != nil || trainerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer id"})
	}

	start, ok := schedule.UTC().ToInstant(c.Query("start"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start must be a valid timestamp"})
	}

	durationHours := 0
	if raw := strings.TrimSpace(c.Query("duration_hours")); raw != "" {
		durationHours, err = strconv.Atoi(raw)
		if err != nil || durationHours <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duration_hours must be a positive integer"})
		}
	}

	var excludeSessionID *int64
	if raw := strings.TrimSpace(c.Query("exclude_session_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid exclude_session_id"})
		}
		excludeSessionID = &id
	}

	result, err := h.service.CheckAvailability(c.Context(), trainerID, start, durationHours, excludeSessionID)
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"availability": result})
}

type rescheduleSessionRequest struct {
	Start string `json:"start"`
}

func (h *SessionHandler) RescheduleSession(c *fiber.Ctx) error {
	sessionID, err := parseSessionID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req rescheduleSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	start, ok := schedule.UTC().ToInstant(req.Start)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start must be a valid timestamp"})
	}

	session, err := h.service.RescheduleSession(c.Context(), sessionID, start)
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

type cancelSessionRequest struct {
	Reason string `json:"reason"`
}

func (h *SessionHandler) CancelSession(c *fiber.Ctx) error {
	sessionID, err := parseSessionID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req cancelSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Reason) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "reason must not be empty"})
	}

	session, err := h.service.CancelSession(c.Context(), sessionID, strings.TrimSpace(req.Reason))
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	sessionID, err := parseSessionID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	if err := h.service.DeleteSession(c.Context(), sessionID); err != nil {
		return mapSessionError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type purchasePackageRequest struct {
	MemberID        int64   `json:"member_id"`
	TrainerID       int64   `json:"trainer_id"`
	GymID           int64   `json:"gym_id"`
	SessionCount    int     `json:"session_count"`
	PricePerSession float64 `json:"price_per_session"`
	StartsAt        string  `json:"starts_at"`
	EndsAt          string  `json:"ends_at"`
}

func (h *SessionHandler) PurchasePackage(c *fiber.Ctx) error {
	var req purchasePackageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	startsAt, ok := schedule.UTC().ToInstant(req.StartsAt)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "starts_at must be a valid timestamp"})
	}
	endsAt, ok := schedule.UTC().ToInstant(req.EndsAt)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ends_at must be a valid timestamp"})
	}

	result, err := h.service.PurchasePackage(c.Context(), services.PurchasePackageInput{
		MemberID:        req.MemberID,
		TrainerID:       req.TrainerID,
		GymID:           req.GymID,
		SessionCount:    req.SessionCount,
		PricePerSession: req.PricePerSession,
		StartsAt:        startsAt,
		EndsAt:          endsAt,
	})
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

type bulkAssignRequest struct {
	SessionIDs []int64 `json:"session_ids"`
	Weekday    string  `json:"weekday"`
	Time       string  `json:"time"`
	Timezone   string  `json:"timezone"`
}

func (h *SessionHandler) BulkAssignWeekly(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "manager" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var req bulkAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sessions, err := h.service.BulkAssignWeekly(c.Context(), req.SessionIDs, req.Weekday, req.Time, req.Timezone)
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

func parseSessionID(c *fiber.Ctx) (int64, error) {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return 0, errors.New("invalid session id")
	}
	return sessionID, nil
}

func parseSessionFilter(c *fiber.Ctx) (repository.SessionFilter, error) {
	filter := repository.SessionFilter{
		OnlyDated:        c.QueryBool("only_dated"),
		IncludeCancelled: c.QueryBool("include_cancelled"),
	}

	timeframe := strings.TrimSpace(c.Query("timeframe"))
	if timeframe != "" && timeframe != "upcoming" && timeframe != "past" {
		return filter, errors.New("timeframe must be upcoming or past")
	}
	filter.Timeframe = timeframe

	for param, target := range map[string]**int64{
		"trainer_id": &filter.TrainerID,
		"gym_id":     &filter.GymID,
		"member_id":  &filter.MemberID,
	} {
		raw := strings.TrimSpace(c.Query(param))
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, errors.New("invalid " + param)
		}
		*target = &id
	}
	return filter, nil
}

func mapSessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrSlotUnavailable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrSessionCancelled):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrTrainerNotFound),
		errors.Is(err, services.ErrGymNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrPurchaseNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process session request"})
	}
}
