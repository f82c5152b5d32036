package repository

import (
	"context"

	"github.com/hadi-makki/gymleb-api/internal/models"
)

type GymRepository struct {
	db DBTX
}

func NewGymRepository(db DBTX) *GymRepository {
	return &GymRepository{db: db}
}

func (r *GymRepository) GetByID(ctx context.Context, gymID int64) (*models.Gym, error) {
	query := `
		SELECT id, name, timezone, created_at, updated_at
		FROM gyms
		WHERE id = $1
	`
	var gym models.Gym
	err := r.db.QueryRow(ctx, query, gymID).Scan(
		&gym.ID,
		&gym.Name,
		&gym.Timezone,
		&gym.CreatedAt,
		&gym.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &gym, nil
}

func (r *GymRepository) Exists(ctx context.Context, gymID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM gyms WHERE id = $1)", gymID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
