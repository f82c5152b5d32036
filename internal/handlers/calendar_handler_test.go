package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/hadi-makki/gymleb-api/internal/models"
	"github.com/hadi-makki/gymleb-api/internal/repository"
	"github.com/hadi-makki/gymleb-api/internal/schedule"
	"github.com/hadi-makki/gymleb-api/internal/services"
)

type stubCalendarService struct {
	sessions []models.SessionDetail
	buckets  []services.CalendarBucket
	groups   []schedule.ClientGroup
	rows     []services.ExportRow
	err      error

	lastFilter    repository.SessionFilter
	lastGroupBy   string
	lastTimezone  string
	lastTrainerID int64
}

func (s *stubCalendarService) ListSessions(_ context.Context, filter repository.SessionFilter, timezone string) ([]models.SessionDetail, error) {
	s.lastFilter = filter
	s.lastTimezone = timezone
	return s.sessions, s.err
}

func (s *stubCalendarService) CalendarView(_ context.Context, filter repository.SessionFilter, groupBy, timezone string) ([]services.CalendarBucket, error) {
	s.lastFilter = filter
	s.lastGroupBy = groupBy
	s.lastTimezone = timezone
	return s.buckets, s.err
}

func (s *stubCalendarService) ClientGroups(_ context.Context, trainerID int64, timezone string) ([]schedule.ClientGroup, error) {
	s.lastTrainerID = trainerID
	s.lastTimezone = timezone
	return s.groups, s.err
}

func (s *stubCalendarService) ExportRows(_ context.Context, filter repository.SessionFilter, timezone string) ([]services.ExportRow, error) {
	s.lastFilter = filter
	s.lastTimezone = timezone
	return s.rows, s.err
}

func newCalendarApp(service sessionCalendarService) *fiber.App {
	handler := &CalendarHandler{service: service, defaultTimezone: "Asia/Beirut"}
	app := fiber.New()
	app.Get("/api/v1/sessions", handler.ListSessions)
	app.Get("/api/v1/sessions/calendar", handler.CalendarView)
	app.Get("/api/v1/sessions/client-groups", handler.ClientGroups)
	app.Get("/api/v1/sessions/export", handler.ExportSessions)
	return app
}

func TestListSessionsForwardsFilterAndZone(t *testing.T) {
	service := &stubCalendarService{
		sessions: []models.SessionDetail{{Session: models.Session{ID: 4}, Status: "Upcoming"}},
	}
	app := newCalendarApp(service)

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/sessions?trainer_id=7&only_dated=true&timeframe=upcoming&tz=Europe/London",
		nil,
	)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastFilter.TrainerID == nil || *service.lastFilter.TrainerID != 7 {
		t.Fatalf("expected trainer filter 7, got %v", service.lastFilter.TrainerID)
	}
	if !service.lastFilter.OnlyDated || service.lastFilter.Timeframe != "upcoming" {
		t.Fatalf("unexpected filter %+v", service.lastFilter)
	}
	if service.lastTimezone != "Europe/London" {
		t.Fatalf("expected tz query to win, got %q", service.lastTimezone)
	}

	var body struct {
		Sessions []models.SessionDetail `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Sessions) != 1 || body.Sessions[0].Status != "Upcoming" {
		t.Fatalf("unexpected body %+v", body.Sessions)
	}
}

func TestListSessionsDefaultsTimezone(t *testing.T) {
	service := &stubCalendarService{}
	app := newCalendarApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if service.lastTimezone != "Asia/Beirut" {
		t.Fatalf("expected default timezone, got %q", service.lastTimezone)
	}
}

func TestListSessionsRejectsBadTimeframe(t *testing.T) {
	app := newCalendarApp(&stubCalendarService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?timeframe=yesterday", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCalendarViewForwardsGroupBy(t *testing.T) {
	service := &stubCalendarService{
		buckets: []services.CalendarBucket{{Label: "09:00"}},
	}
	app := newCalendarApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/calendar?group_by=time", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastGroupBy != "time" {
		t.Fatalf("expected group_by forwarded, got %q", service.lastGroupBy)
	}
}

func TestCalendarViewUnknownGroupByMapsToBadRequest(t *testing.T) {
	service := &stubCalendarService{err: services.ErrInvalidInput}
	app := newCalendarApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/calendar?group_by=color", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestClientGroupsRequiresTrainerID(t *testing.T) {
	app := newCalendarApp(&stubCalendarService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/client-groups", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestClientGroupsForwardsTrainerID(t *testing.T) {
	service := &stubCalendarService{
		groups: []schedule.ClientGroup{{MemberIDs: []int64{1, 2}, Total: 3}},
	}
	app := newCalendarApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/client-groups?trainer_id=7", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastTrainerID != 7 {
		t.Fatalf("expected trainer 7, got %d", service.lastTrainerID)
	}
}

func TestExportSessionsReturnsRows(t *testing.T) {
	service := &stubCalendarService{
		rows: []services.ExportRow{{Date: "2026-04-06", Time: "10:00", Trainer: "Rami"}},
	}
	app := newCalendarApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/export", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Rows []services.ExportRow `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Rows) != 1 || body.Rows[0].Trainer != "Rami" {
		t.Fatalf("unexpected rows %+v", body.Rows)
	}
}
