package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hadi-makki/gymleb-api/internal/config"
	"github.com/hadi-makki/gymleb-api/internal/handlers"
	"github.com/hadi-makki/gymleb-api/internal/middleware"
	"github.com/hadi-makki/gymleb-api/internal/repository"
	"github.com/hadi-makki/gymleb-api/internal/services"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	gymRepo := repository.NewGymRepository(db)
	trainerRepo := repository.NewTrainerRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)

	sessionService := services.NewSessionService(db, sessionRepo, purchaseRepo, trainerRepo, gymRepo, memberRepo)
	calendarService := services.NewCalendarService(sessionRepo, purchaseRepo, trainerRepo, memberRepo)

	sessionHandler := handlers.NewSessionHandler(sessionService)
	calendarHandler := handlers.NewCalendarHandler(calendarService, cfg.DefaultTimezone)

	api := app.Group("/api/v1", middleware.AuthRequired(cfg.JWTSecret))

	sessions := api.Group("/sessions")
	sessions.Post("/book", sessionHandler.BookSession)
	sessions.Get("/availability", sessionHandler.CheckAvailability)
	sessions.Get("/calendar", calendarHandler.CalendarView)
	sessions.Get("/client-groups", calendarHandler.ClientGroups)
	sessions.Get("/export", calendarHandler.ExportSessions)
	sessions.Get("", calendarHandler.ListSessions)
	sessions.Put("/bulk-dates", sessionHandler.BulkAssignWeekly)
	sessions.Put("/:id/date", sessionHandler.RescheduleSession)
	sessions.Put("/:id/cancel", sessionHandler.CancelSession)
	sessions.Delete("/:id", sessionHandler.DeleteSession)

	packages := api.Group("/packages")
	packages.Post("/purchase", sessionHandler.PurchasePackage)
}
