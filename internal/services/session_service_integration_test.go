package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/hadi-makki/gymleb-api/internal/repository"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func TestSessionServiceBookAndCapacityFlow(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationSessionService(pool)

	gymID := createTestGym(t, ctx, pool)
	trainerID := createTestTrainer(t, ctx, pool, gymID, 1)
	firstMember := createTestMember(t, ctx, pool, gymID)
	secondMember := createTestMember(t, ctx, pool, gymID)
	t.Cleanup(func() { cleanupTestGym(t, ctx, pool, gymID) })

	start := time.Date(2030, 3, 11, 10, 0, 0, 0, time.UTC)
	session, err := service.BookSession(ctx, BookSessionInput{
		TrainerID:     trainerID,
		GymID:         gymID,
		MemberIDs:     []int64{firstMember},
		Start:         start,
		DurationHours: 1,
		Price:         50,
	})
	if err != nil {
		t.Fatalf("BookSession: %v", err)
	}
	if session.SessionDate == nil || !session.SessionDate.Equal(start) {
		t.Fatalf("expected session at %v, got %+v", start, session.SessionDate)
	}

	_, err = service.BookSession(ctx, BookSessionInput{
		TrainerID:     trainerID,
		GymID:         gymID,
		MemberIDs:     []int64{secondMember},
		Start:         start.Add(30 * time.Minute),
		DurationHours: 1,
		Price:         50,
	})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}

	// Back to back is fine once the first hour ends.
	if _, err := service.BookSession(ctx, BookSessionInput{
		TrainerID:     trainerID,
		GymID:         gymID,
		MemberIDs:     []int64{secondMember},
		Start:         start.Add(time.Hour),
		DurationHours: 1,
		Price:         50,
	}); err != nil {
		t.Fatalf("back to back BookSession: %v", err)
	}
}

func TestSessionServiceRescheduleIgnoresOwnSlot(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationSessionService(pool)

	gymID := createTestGym(t, ctx, pool)
	trainerID := createTestTrainer(t, ctx, pool, gymID, 1)
	memberID := createTestMember(t, ctx, pool, gymID)
	t.Cleanup(func() { cleanupTestGym(t, ctx, pool, gymID) })

	start := time.Date(2030, 6, 4, 9, 0, 0, 0, time.UTC)
	session, err := service.BookSession(ctx, BookSessionInput{
		TrainerID:     trainerID,
		GymID:         gymID,
		MemberIDs:     []int64{memberID},
		Start:         start,
		DurationHours: 2,
		Price:         80,
	})
	if err != nil {
		t.Fatalf("BookSession: %v", err)
	}

	// Moving inside its own window must not collide with itself.
	moved, err := service.RescheduleSession(ctx, session.ID, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("RescheduleSession: %v", err)
	}
	if moved.SessionDate == nil || !moved.SessionDate.Equal(start.Add(time.Hour)) {
		t.Fatalf("expected moved session, got %+v", moved.SessionDate)
	}
}

func TestSessionServicePackageAndBulkAssign(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationSessionService(pool)

	gymID := createTestGym(t, ctx, pool)
	trainerID := createTestTrainer(t, ctx, pool, gymID, 2)
	memberID := createTestMember(t, ctx, pool, gymID)
	t.Cleanup(func() { cleanupTestGym(t, ctx, pool, gymID) })

	result, err := service.PurchasePackage(ctx, PurchasePackageInput{
		MemberID:        memberID,
		TrainerID:       trainerID,
		GymID:           gymID,
		SessionCount:    3,
		PricePerSession: 40,
		StartsAt:        time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:          time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("PurchasePackage: %v", err)
	}
	if len(result.Sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(result.Sessions))
	}
	for i, s := range result.Sessions {
		if s.SessionDate != nil {
			t.Fatalf("expected unscheduled session, got %+v", s.SessionDate)
		}
		if s.PtSessionNumber != i+1 {
			t.Fatalf("expected pt number %d, got %d", i+1, s.PtSessionNumber)
		}
	}

	ids := make([]int64, 0, len(result.Sessions))
	for _, s := range result.Sessions {
		ids = append(ids, s.ID)
	}

	assigned, err := service.BulkAssignWeekly(ctx, ids, "monday", "09:00", "UTC")
	if err != nil {
		t.Fatalf("BulkAssignWeekly: %v", err)
	}
	if len(assigned) != 3 {
		t.Fatalf("expected 3 assigned sessions, got %d", len(assigned))
	}

	groupID := assigned[0].RecurringGroupID
	if groupID == nil {
		t.Fatal("expected recurring group id on first session")
	}
	for i, s := range assigned {
		if s.SessionDate == nil {
			t.Fatalf("session %d still unscheduled", s.ID)
		}
		if s.SessionDate.UTC().Weekday() != time.Monday {
			t.Fatalf("expected Monday, got %v", s.SessionDate.UTC().Weekday())
		}
		if s.RecurringGroupID == nil || *s.RecurringGroupID != *groupID {
			t.Fatalf("expected shared group id, got %+v", s.RecurringGroupID)
		}
		if i > 0 {
			gap := s.SessionDate.Sub(*assigned[i-1].SessionDate)
			if gap != 7*24*time.Hour {
				t.Fatalf("expected one week between sessions, got %v", gap)
			}
		}
	}
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func newIntegrationSessionService(pool *pgxpool.Pool) *SessionService {
	return NewSessionService(
		pool,
		repository.NewSessionRepository(pool),
		repository.NewPurchaseRepository(pool),
		repository.NewTrainerRepository(pool),
		repository.NewGymRepository(pool),
		repository.NewMemberRepository(pool),
	)
}

func createTestGym(t *testing.T, ctx context.Context, pool *pgxpool.Pool) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(ctx,
		"INSERT INTO gyms (name, timezone) VALUES ($1, 'UTC') RETURNING id",
		fmt.Sprintf("test-gym-%d", time.Now().UnixNano()),
	).Scan(&id)
	if err != nil {
		t.Fatalf("create gym: %v", err)
	}
	return id
}

func createTestTrainer(t *testing.T, ctx context.Context, pool *pgxpool.Pool, gymID int64, maxMembers int) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(ctx,
		`INSERT INTO trainers (gym_id, full_name, max_members_per_session, working_days, shift_start, shift_end, default_session_hours)
		 VALUES ($1, 'Test Trainer', $2, ARRAY['monday','tuesday','wednesday','thursday','friday','saturday','sunday'], '06:00', '22:00', 1)
		 RETURNING id`,
		gymID, maxMembers,
	).Scan(&id)
	if err != nil {
		t.Fatalf("create trainer: %v", err)
	}
	return id
}

func createTestMember(t *testing.T, ctx context.Context, pool *pgxpool.Pool, gymID int64) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(ctx,
		"INSERT INTO members (gym_id, full_name, email) VALUES ($1, 'Test Member', $2) RETURNING id",
		gymID, fmt.Sprintf("member-%d@example.com", time.Now().UnixNano()),
	).Scan(&id)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return id
}

func cleanupTestGym(t *testing.T, ctx context.Context, pool *pgxpool.Pool, gymID int64) {
	t.Helper()

	if _, err := pool.Exec(ctx, "DELETE FROM transactions WHERE session_id IN (SELECT id FROM sessions WHERE gym_id = $1)", gymID); err != nil {
		t.Fatalf("cleanup transactions: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM sessions WHERE gym_id = $1", gymID); err != nil {
		t.Fatalf("cleanup sessions: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM gyms WHERE id = $1", gymID); err != nil {
		t.Fatalf("cleanup gym: %v", err)
	}
}
