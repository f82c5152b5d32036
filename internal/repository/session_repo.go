package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hadi-makki/gymleb-api/internal/models"
)

type CreateSessionInput struct {
	TrainerID       int64
	GymID           int64
	PurchaseID      *int64
	MemberIDs       []int64
	SessionDate     *time.Time
	DurationHours   int
	Price           float64
	PtSessionNumber int
}

// SessionFilter describes which sessions a listing should return.
// Every predicate is typed and optional; nothing about the generated SQL
// depends on which combination the caller happened to supply.
type SessionFilter struct {
	TrainerID        *int64
	GymID            *int64
	MemberID         *int64
	OnlyDated        bool
	IncludeCancelled bool
	ExcludeSessionID *int64
	Timeframe        string // "", "upcoming", "past"
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionSelect = `
	SELECT s.id, s.trainer_id, s.gym_id, s.purchase_id, s.session_date,
	       s.duration_hours, s.price, s.pt_session_number,
	       s.is_cancelled, s.cancelled_reason, s.cancelled_at,
	       s.recurring_group_id, s.created_at, s.updated_at,
	       COALESCE(m.member_ids, '{}')
	FROM sessions s
	LEFT JOIN (
		SELECT session_id, array_agg(member_id ORDER BY member_id) AS member_ids
		FROM session_members
		GROUP BY session_id
	) m ON m.session_id = s.id
`

func scanSession(row interface{ Scan(dest ...any) error }) (*models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.TrainerID,
		&session.GymID,
		&session.PurchaseID,
		&session.SessionDate,
		&session.DurationHours,
		&session.Price,
		&session.PtSessionNumber,
		&session.IsCancelled,
		&session.CancelledReason,
		&session.CancelledAt,
		&session.RecurringGroupID,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.MemberIDs,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Create(
	ctx context.Context,
	input CreateSessionInput,
) (*models.Session, error) {
	query := `
		INSERT INTO sessions (trainer_id, gym_id, purchase_id, session_date, duration_hours, price, pt_session_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, trainer_id, gym_id, purchase_id, session_date, duration_hours, price,
		          pt_session_number, is_cancelled, cancelled_reason, cancelled_at,
		          recurring_group_id, created_at, updated_at
	`

	var session models.Session
	err := r.db.QueryRow(
		ctx,
		query,
		input.TrainerID,
		input.GymID,
		input.PurchaseID,
		input.SessionDate,
		input.DurationHours,
		input.Price,
		input.PtSessionNumber,
	).Scan(
		&session.ID,
		&session.TrainerID,
		&session.GymID,
		&session.PurchaseID,
		&session.SessionDate,
		&session.DurationHours,
		&session.Price,
		&session.PtSessionNumber,
		&session.IsCancelled,
		&session.CancelledReason,
		&session.CancelledAt,
		&session.RecurringGroupID,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, memberID := range input.MemberIDs {
		if _, err := r.db.Exec(
			ctx,
			"INSERT INTO session_members (session_id, member_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			session.ID,
			memberID,
		); err != nil {
			return nil, err
		}
	}
	session.MemberIDs = append([]int64(nil), input.MemberIDs...)
	return &session, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	return scanSession(r.db.QueryRow(ctx, sessionSelect+" WHERE s.id = $1", sessionID))
}

// ListDatedByTrainer loads every non-cancelled session with a date for
// the trainer, the set the overlap and capacity checks run against. The
// session being rescheduled, when any, is left out.
func (r *SessionRepository) ListDatedByTrainer(
	ctx context.Context,
	trainerID int64,
	excludeSessionID *int64,
) ([]models.Session, error) {
	args := []any{trainerID}
	query := sessionSelect + `
		WHERE s.trainer_id = $1
		  AND NOT s.is_cancelled
		  AND s.session_date IS NOT NULL
	`
	if excludeSessionID != nil {
		args = append(args, *excludeSessionID)
		query += fmt.Sprintf(" AND s.id <> $%d", len(args))
	}
	query += " ORDER BY s.session_date ASC, s.id ASC"

	return r.querySessions(ctx, query, args...)
}

func (r *SessionRepository) List(ctx context.Context, filter SessionFilter) ([]models.Session, error) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if filter.TrainerID != nil {
		args = append(args, *filter.TrainerID)
		whereParts = append(whereParts, fmt.Sprintf("s.trainer_id = $%d", len(args)))
	}
	if filter.GymID != nil {
		args = append(args, *filter.GymID)
		whereParts = append(whereParts, fmt.Sprintf("s.gym_id = $%d", len(args)))
	}
	if filter.MemberID != nil {
		args = append(args, *filter.MemberID)
		whereParts = append(
			whereParts,
			fmt.Sprintf("EXISTS (SELECT 1 FROM session_members sm WHERE sm.session_id = s.id AND sm.member_id = $%d)", len(args)),
		)
	}
	if filter.ExcludeSessionID != nil {
		args = append(args, *filter.ExcludeSessionID)
		whereParts = append(whereParts, fmt.Sprintf("s.id <> $%d", len(args)))
	}
	if filter.OnlyDated {
		whereParts = append(whereParts, "s.session_date IS NOT NULL")
	}
	if !filter.IncludeCancelled {
		whereParts = append(whereParts, "NOT s.is_cancelled")
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(
			whereParts,
			"s.session_date IS NOT NULL AND (s.session_date + (s.duration_hours * INTERVAL '1 hour')) > NOW()",
		)
	case "past":
		whereParts = append(
			whereParts,
			"s.session_date IS NOT NULL AND (s.session_date + (s.duration_hours * INTERVAL '1 hour')) <= NOW()",
		)
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY s.id ASC", sessionSelect, strings.Join(whereParts, " AND "))
	return r.querySessions(ctx, query, args...)
}

// ListByIDs loads sessions preserving the caller-supplied id order. Ids
// that match nothing are simply absent from the result; the caller
// decides whether that is an error.
func (r *SessionRepository) ListByIDs(ctx context.Context, sessionIDs []int64) ([]models.Session, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}

	loaded, err := r.querySessions(ctx, sessionSelect+" WHERE s.id = ANY($1)", sessionIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Session, len(loaded))
	for _, session := range loaded {
		byID[session.ID] = session
	}

	ordered := make([]models.Session, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		if session, ok := byID[id]; ok {
			ordered = append(ordered, session)
		}
	}
	return ordered, nil
}

func (r *SessionRepository) UpdateDate(
	ctx context.Context,
	sessionID int64,
	date time.Time,
) (*models.Session, error) {
	tag, err := r.db.Exec(
		ctx,
		"UPDATE sessions SET session_date = $2, updated_at = NOW() WHERE id = $1",
		sessionID,
		date,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, sessionID)
}

// AssignDate sets a session date as part of a bulk weekly assignment and
// stamps the batch id linking the touched sessions together.
func (r *SessionRepository) AssignDate(
	ctx context.Context,
	sessionID int64,
	date time.Time,
	groupID uuid.UUID,
) error {
	tag, err := r.db.Exec(
		ctx,
		"UPDATE sessions SET session_date = $2, recurring_group_id = $3, updated_at = NOW() WHERE id = $1",
		sessionID,
		date,
		groupID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *SessionRepository) Cancel(
	ctx context.Context,
	sessionID int64,
	reason string,
) (*models.Session, error) {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE sessions
		 SET is_cancelled = TRUE, cancelled_reason = $2, cancelled_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND NOT is_cancelled`,
		sessionID,
		reason,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, sessionID)
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID int64) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM session_members WHERE session_id = $1", sessionID); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, "DELETE FROM sessions WHERE id = $1", sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *SessionRepository) querySessions(ctx context.Context, query string, args ...any) ([]models.Session, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
