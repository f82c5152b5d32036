package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/hadi-makki/gymleb-api/internal/models"
	"github.com/hadi-makki/gymleb-api/internal/repository"
	"github.com/hadi-makki/gymleb-api/internal/schedule"
	"github.com/hadi-makki/gymleb-api/internal/services"
)

type sessionCalendarService interface {
	ListSessions(ctx context.Context, filter repository.SessionFilter, timezone string) ([]models.SessionDetail, error)
	CalendarView(ctx context.Context, filter repository.SessionFilter, groupBy, timezone string) ([]services.CalendarBucket, error)
	ClientGroups(ctx context.Context, trainerID int64, timezone string) ([]schedule.ClientGroup, error)
	ExportRows(ctx context.Context, filter repository.SessionFilter, timezone string) ([]services.ExportRow, error)
}

// CalendarHandler serves the read-only listing, calendar, and export
// endpoints. The timezone for display formatting comes from the tz query
// parameter and falls back to the server default.
type CalendarHandler struct {
	service         sessionCalendarService
	defaultTimezone string
}

func NewCalendarHandler(service *services.CalendarService, defaultTimezone string) *CalendarHandler {
	return &CalendarHandler{service: service, defaultTimezone: defaultTimezone}
}

func (h *CalendarHandler) displayZone(c *fiber.Ctx) string {
	if tz := c.Query("tz"); tz != "" {
		return tz
	}
	return h.defaultTimezone
}

func (h *CalendarHandler) ListSessions(c *fiber.Ctx) error {
	filter, err := parseSessionFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	sessions, err := h.service.ListSessions(c.Context(), filter, h.displayZone(c))
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *CalendarHandler) CalendarView(c *fiber.Ctx) error {
	filter, err := parseSessionFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	buckets, err := h.service.CalendarView(c.Context(), filter, c.Query("group_by"), h.displayZone(c))
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"calendar": buckets})
}

func (h *CalendarHandler) ClientGroups(c *fiber.Ctx) error {
	filter, err := parseSessionFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if filter.TrainerID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "trainer_id is required"})
	}

	groups, err := h.service.ClientGroups(c.Context(), *filter.TrainerID, h.displayZone(c))
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"client_groups": groups})
}

func (h *CalendarHandler) ExportSessions(c *fiber.Ctx) error {
	filter, err := parseSessionFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rows, err := h.service.ExportRows(c.Context(), filter, h.displayZone(c))
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"rows": rows})
}
