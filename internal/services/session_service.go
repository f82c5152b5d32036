package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hadi-makki/gymleb-api/internal/models"
	"github.com/hadi-makki/gymleb-api/internal/repository"
	"github.com/hadi-makki/gymleb-api/internal/schedule"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrTrainerNotFound  = errors.New("trainer not found")
	ErrGymNotFound      = errors.New("gym not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrSlotUnavailable  = errors.New("slot unavailable")
	ErrSessionCancelled = errors.New("session already cancelled")
)

// AvailabilityResult is the structured verdict of a booking check. An
// unavailable slot is not an error: callers must be able to tell the
// member why, not merely that the booking failed.
type AvailabilityResult struct {
	IsAvailable     bool   `json:"is_available"`
	CurrentCapacity int    `json:"current_capacity"`
	MaxCapacity     int    `json:"max_capacity"`
	Reason          string `json:"reason,omitempty"`
}

type trainerReader interface {
	GetByID(ctx context.Context, trainerID int64) (*models.Trainer, error)
}

type gymChecker interface {
	Exists(ctx context.Context, gymID int64) (bool, error)
}

type memberChecker interface {
	MissingIDs(ctx context.Context, memberIDs []int64) ([]int64, error)
}

type purchaseReader interface {
	GetByID(ctx context.Context, purchaseID int64) (*models.SubscriptionPurchase, error)
}

type datedSessionLister interface {
	ListDatedByTrainer(ctx context.Context, trainerID int64, excludeSessionID *int64) ([]models.Session, error)
}

type SessionService struct {
	db           *pgxpool.Pool
	sessionRepo  *repository.SessionRepository
	purchaseRepo purchaseReader
	trainerRepo  trainerReader
	gymRepo      gymChecker
	memberRepo   memberChecker
}

func NewSessionService(
	db *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	purchaseRepo purchaseReader,
	trainerRepo trainerReader,
	gymRepo gymChecker,
	memberRepo memberChecker,
) *SessionService {
	return &SessionService{
		db:           db,
		sessionRepo:  sessionRepo,
		purchaseRepo: purchaseRepo,
		trainerRepo:  trainerRepo,
		gymRepo:      gymRepo,
		memberRepo:   memberRepo,
	}
}

// CheckAvailability answers whether the trainer can take a session in
// [start, start+hours). Read-only; the booking write happens separately.
func (s *SessionService) CheckAvailability(
	ctx context.Context,
	trainerID int64,
	start time.Time,
	durationHours int,
	excludeSessionID *int64,
) (*AvailabilityResult, error) {
	result, _, err := checkAvailability(
		ctx,
		s.trainerRepo,
		s.sessionRepo,
		trainerID,
		start,
		durationHours,
		excludeSessionID,
	)
	return result, err
}

// checkAvailability runs against whatever repositories it is handed so
// the booking path can re-run it inside a transaction.
func checkAvailability(
	ctx context.Context,
	trainers trainerReader,
	sessions datedSessionLister,
	trainerID int64,
	start time.Time,
	durationHours int,
	excludeSessionID *int64,
) (*AvailabilityResult, *models.Trainer, error) {
	trainer, err := trainers.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrTrainerNotFound
		}
		return nil, nil, err
	}

	if durationHours <= 0 {
		durationHours = trainer.DefaultSessionHours
	}
	if durationHours <= 0 {
		durationHours = 1
	}

	zone, err := schedule.LoadZone(trainer.Timezone)
	if err != nil {
		// A gym with a broken timezone row still gets UTC semantics.
		zone = schedule.UTC()
	}

	result := &AvailabilityResult{MaxCapacity: trainer.MaxMembersPerSession}

	if ok, day := schedule.OnWorkingDay(start, trainer.WorkingDays, zone); !ok {
		result.Reason = fmt.Sprintf("not available on %s", day)
		return result, trainer, nil
	}
	if !schedule.WithinShift(start, durationHours, trainer.ShiftStart, trainer.ShiftEnd, zone) {
		result.Reason = fmt.Sprintf("outside shift hours (%s-%s)", trainer.ShiftStart, trainer.ShiftEnd)
		return result, trainer, nil
	}

	existing, err := sessions.ListDatedByTrainer(ctx, trainerID, excludeSessionID)
	if err != nil {
		return nil, nil, err
	}

	overlapping := make([]schedule.Entry, 0, len(existing))
	for _, session := range existing {
		if session.SessionDate == nil {
			continue
		}
		if schedule.Overlaps(start, durationHours, *session.SessionDate, session.DurationHours) {
			overlapping = append(overlapping, schedule.Entry{MemberIDs: session.MemberIDs})
		}
	}

	result.CurrentCapacity = schedule.DistinctMembers(overlapping)
	result.IsAvailable = result.CurrentCapacity < trainer.MaxMembersPerSession
	if !result.IsAvailable {
		result.Reason = "trainer is at full capacity for this time"
	}
	return result, trainer, nil
}

type BookSessionInput struct {
	TrainerID     int64
	GymID         int64
	MemberIDs     []int64
	Start         time.Time
	DurationHours int
	Price         float64
	PurchaseID    *int64
}

// BookSession validates every referenced entity, re-checks availability
// under the trainer's advisory lock, then creates the session plus one
// ledger transaction per member, all in one transaction.
func (s *SessionService) BookSession(
	ctx context.Context,
	input BookSessionInput,
) (*models.Session, error) {
	if input.TrainerID <= 0 || input.GymID <= 0 || len(input.MemberIDs) == 0 {
		return nil, ErrInvalidInput
	}
	if input.Start.IsZero() {
		return nil, ErrInvalidInput
	}

	memberIDs := dedupeIDs(input.MemberIDs)

	exists, err := s.gymRepo.Exists(ctx, input.GymID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrGymNotFound
	}

	missing, err := s.memberRepo.MissingIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMemberNotFound, missing)
	}

	if input.PurchaseID != nil {
		if _, err := s.purchaseRepo.GetByID(ctx, *input.PurchaseID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrPurchaseNotFound
			}
			return nil, err
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.TrainerID); err != nil {
		return nil, err
	}

	txSessionRepo := repository.NewSessionRepository(tx)
	availability, trainer, err := checkAvailability(
		ctx,
		s.trainerRepo,
		txSessionRepo,
		input.TrainerID,
		input.Start,
		input.DurationHours,
		nil,
	)
	if err != nil {
		return nil, err
	}
	if !availability.IsAvailable {
		return nil, fmt.Errorf("%w: %s", ErrSlotUnavailable, availability.Reason)
	}

	durationHours := input.DurationHours
	if durationHours <= 0 {
		durationHours = trainer.DefaultSessionHours
	}
	if durationHours <= 0 {
		durationHours = 1
	}

	start := input.Start.UTC()
	session, err := txSessionRepo.Create(ctx, repository.CreateSessionInput{
		TrainerID:     input.TrainerID,
		GymID:         input.GymID,
		PurchaseID:    input.PurchaseID,
		MemberIDs:     memberIDs,
		SessionDate:   &start,
		DurationHours: durationHours,
		Price:         input.Price,
	})
	if err != nil {
		return nil, err
	}

	txTransactionRepo := repository.NewTransactionRepository(tx)
	share := input.Price / float64(len(memberIDs))
	for _, memberID := range memberIDs {
		if _, err := txTransactionRepo.Create(ctx, repository.CreateTransactionInput{
			SessionID: session.ID,
			MemberID:  memberID,
			Amount:    share,
		}); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// RescheduleSession moves a session to a new start after re-checking
// availability with the session itself excluded from the overlap set.
func (s *SessionService) RescheduleSession(
	ctx context.Context,
	sessionID int64,
	newStart time.Time,
) (*models.Session, error) {
	if sessionID <= 0 || newStart.IsZero() {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.IsCancelled {
		return nil, ErrSessionCancelled
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", session.TrainerID); err != nil {
		return nil, err
	}

	txSessionRepo := repository.NewSessionRepository(tx)
	availability, _, err := checkAvailability(
		ctx,
		s.trainerRepo,
		txSessionRepo,
		session.TrainerID,
		newStart,
		session.DurationHours,
		&sessionID,
	)
	if err != nil {
		return nil, err
	}
	if !availability.IsAvailable {
		return nil, fmt.Errorf("%w: %s", ErrSlotUnavailable, availability.Reason)
	}

	updated, err := txSessionRepo.UpdateDate(ctx, sessionID, newStart.UTC())
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *SessionService) CancelSession(
	ctx context.Context,
	sessionID int64,
	reason string,
) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.IsCancelled {
		return nil, ErrSessionCancelled
	}
	return s.sessionRepo.Cancel(ctx, sessionID, reason)
}

// DeleteSession removes a session and its ledger transactions together.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID int64) error {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSessionNotFound
		}
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := repository.NewTransactionRepository(tx).DeleteBySessionID(ctx, sessionID); err != nil {
		return err
	}
	if err := repository.NewSessionRepository(tx).Delete(ctx, sessionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSessionNotFound
		}
		return err
	}
	return tx.Commit(ctx)
}

type PurchasePackageInput struct {
	MemberID        int64
	TrainerID       int64
	GymID           int64
	SessionCount    int
	PricePerSession float64
	StartsAt        time.Time
	EndsAt          time.Time
}

type PurchasePackageResult struct {
	Purchase *models.SubscriptionPurchase `json:"purchase"`
	Sessions []models.Session             `json:"sessions"`
}

// PurchasePackage records a training-package purchase and creates one
// unscheduled session per paid unit, numbered 1..N.
func (s *SessionService) PurchasePackage(
	ctx context.Context,
	input PurchasePackageInput,
) (*PurchasePackageResult, error) {
	if input.MemberID <= 0 || input.TrainerID <= 0 || input.GymID <= 0 {
		return nil, ErrInvalidInput
	}
	if input.SessionCount <= 0 || !input.EndsAt.After(input.StartsAt) {
		return nil, ErrInvalidInput
	}

	if _, err := s.trainerRepo.GetByID(ctx, input.TrainerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	exists, err := s.gymRepo.Exists(ctx, input.GymID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrGymNotFound
	}
	missing, err := s.memberRepo.MissingIDs(ctx, []int64{input.MemberID})
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, ErrMemberNotFound
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	purchase, err := repository.NewPurchaseRepository(tx).Create(ctx, repository.CreatePurchaseInput{
		MemberID:     input.MemberID,
		TrainerID:    input.TrainerID,
		GymID:        input.GymID,
		SessionCount: input.SessionCount,
		StartsAt:     input.StartsAt.UTC(),
		EndsAt:       input.EndsAt.UTC(),
		Price:        input.PricePerSession * float64(input.SessionCount),
	})
	if err != nil {
		return nil, err
	}

	txSessionRepo := repository.NewSessionRepository(tx)
	sessions := make([]models.Session, 0, input.SessionCount)
	for number := 1; number <= input.SessionCount; number++ {
		session, err := txSessionRepo.Create(ctx, repository.CreateSessionInput{
			TrainerID:       input.TrainerID,
			GymID:           input.GymID,
			PurchaseID:      &purchase.ID,
			MemberIDs:       []int64{input.MemberID},
			DurationHours:   1,
			Price:           input.PricePerSession,
			PtSessionNumber: number,
		})
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &PurchasePackageResult{Purchase: purchase, Sessions: sessions}, nil
}

// BulkAssignWeekly stamps the ordered sessions with successive weekly
// slots starting from the next occurrence of the target weekday and
// local time. This is the administrative override path: capacity and
// shift hours are deliberately not re-validated.
func (s *SessionService) BulkAssignWeekly(
	ctx context.Context,
	sessionIDs []int64,
	weekdayName string,
	clock string,
	timezone string,
) ([]models.Session, error) {
	if len(sessionIDs) == 0 {
		return nil, fmt.Errorf("%w: empty session id list", ErrInvalidInput)
	}
	weekday, ok := schedule.ParseWeekday(weekdayName)
	if !ok {
		return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidInput, weekdayName)
	}
	zone, err := schedule.LoadZone(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, timezone)
	}

	slots, ok := weeklySlots(time.Now(), weekday, clock, zone, len(sessionIDs))
	if !ok {
		return nil, fmt.Errorf("%w: malformed time %q", ErrInvalidInput, clock)
	}

	loaded, err := s.sessionRepo.ListByIDs(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}
	if len(loaded) != len(dedupeIDs(sessionIDs)) {
		found := make(map[int64]struct{}, len(loaded))
		for _, session := range loaded {
			found[session.ID] = struct{}{}
		}
		for _, id := range sessionIDs {
			if _, ok := found[id]; !ok {
				return nil, fmt.Errorf("%w: id %d", ErrSessionNotFound, id)
			}
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	groupID := uuid.New()
	for i, sessionID := range sessionIDs {
		if err := txSessionRepo.AssignDate(ctx, sessionID, slots[i].UTC(), groupID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: id %d", ErrSessionNotFound, sessionID)
			}
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return s.sessionRepo.ListByIDs(ctx, sessionIDs)
}

// weeklySlots expands (weekday, clock) into n successive weekly instants
// starting at the next occurrence, each one calendar week apart in zone.
func weeklySlots(
	now time.Time,
	weekday time.Weekday,
	clock string,
	zone schedule.Zone,
	n int,
) ([]time.Time, bool) {
	first, ok := schedule.NextOccurrence(now, weekday, clock, zone)
	if !ok {
		return nil, false
	}
	slots := make([]time.Time, n)
	current := first
	for i := 0; i < n; i++ {
		slots[i] = current
		current = schedule.AddWeek(current, zone)
	}
	return slots, true
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
