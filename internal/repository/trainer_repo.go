package repository

import (
	"context"

	"github.com/hadi-makki/gymleb-api/internal/models"
)

type TrainerRepository struct {
	db DBTX
}

func NewTrainerRepository(db DBTX) *TrainerRepository {
	return &TrainerRepository{db: db}
}

const trainerColumns = `
	t.id, t.gym_id, t.full_name, t.max_members_per_session, t.working_days,
	t.shift_start, t.shift_end, t.default_session_hours, g.timezone,
	t.created_at, t.updated_at
`

func scanTrainer(row interface{ Scan(dest ...any) error }) (*models.Trainer, error) {
	var trainer models.Trainer
	err := row.Scan(
		&trainer.ID,
		&trainer.GymID,
		&trainer.FullName,
		&trainer.MaxMembersPerSession,
		&trainer.WorkingDays,
		&trainer.ShiftStart,
		&trainer.ShiftEnd,
		&trainer.DefaultSessionHours,
		&trainer.Timezone,
		&trainer.CreatedAt,
		&trainer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &trainer, nil
}

// GetByID loads a trainer together with its gym's timezone, which the
// availability checker needs for wall-clock shift comparisons.
func (r *TrainerRepository) GetByID(ctx context.Context, trainerID int64) (*models.Trainer, error) {
	query := `
		SELECT ` + trainerColumns + `
		FROM trainers t
		JOIN gyms g ON g.id = t.gym_id
		WHERE t.id = $1
	`
	return scanTrainer(r.db.QueryRow(ctx, query, trainerID))
}

// NamesByIDs returns the full names for a trainer id set, used to label
// trainer-grouped calendar buckets.
func (r *TrainerRepository) NamesByIDs(ctx context.Context, trainerIDs []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(trainerIDs))
	if len(trainerIDs) == 0 {
		return names, nil
	}

	rows, err := r.db.Query(ctx, "SELECT id, full_name FROM trainers WHERE id = ANY($1)", trainerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
