package repository

import (
	"context"
	"time"

	"github.com/hadi-makki/gymleb-api/internal/models"
)

type CreatePurchaseInput struct {
	MemberID     int64
	TrainerID    int64
	GymID        int64
	SessionCount int
	StartsAt     time.Time
	EndsAt       time.Time
	Price        float64
}

type PurchaseRepository struct {
	db DBTX
}

func NewPurchaseRepository(db DBTX) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) Create(
	ctx context.Context,
	input CreatePurchaseInput,
) (*models.SubscriptionPurchase, error) {
	query := `
		INSERT INTO subscription_purchases (member_id, trainer_id, gym_id, session_count, starts_at, ends_at, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, member_id, trainer_id, gym_id, session_count, starts_at, ends_at, price, created_at
	`
	var purchase models.SubscriptionPurchase
	err := r.db.QueryRow(
		ctx,
		query,
		input.MemberID,
		input.TrainerID,
		input.GymID,
		input.SessionCount,
		input.StartsAt,
		input.EndsAt,
		input.Price,
	).Scan(
		&purchase.ID,
		&purchase.MemberID,
		&purchase.TrainerID,
		&purchase.GymID,
		&purchase.SessionCount,
		&purchase.StartsAt,
		&purchase.EndsAt,
		&purchase.Price,
		&purchase.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) GetByID(ctx context.Context, purchaseID int64) (*models.SubscriptionPurchase, error) {
	query := `
		SELECT id, member_id, trainer_id, gym_id, session_count, starts_at, ends_at, price, created_at
		FROM subscription_purchases
		WHERE id = $1
	`
	var purchase models.SubscriptionPurchase
	err := r.db.QueryRow(ctx, query, purchaseID).Scan(
		&purchase.ID,
		&purchase.MemberID,
		&purchase.TrainerID,
		&purchase.GymID,
		&purchase.SessionCount,
		&purchase.StartsAt,
		&purchase.EndsAt,
		&purchase.Price,
		&purchase.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// ListByIDs returns purchases keyed by id, used to attach purchase
// windows to unscheduled sessions before sorting and exporting.
func (r *PurchaseRepository) ListByIDs(
	ctx context.Context,
	purchaseIDs []int64,
) (map[int64]models.SubscriptionPurchase, error) {
	purchases := make(map[int64]models.SubscriptionPurchase, len(purchaseIDs))
	if len(purchaseIDs) == 0 {
		return purchases, nil
	}

	query := `
		SELECT id, member_id, trainer_id, gym_id, session_count, starts_at, ends_at, price, created_at
		FROM subscription_purchases
		WHERE id = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, purchaseIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var purchase models.SubscriptionPurchase
		if err := rows.Scan(
			&purchase.ID,
			&purchase.MemberID,
			&purchase.TrainerID,
			&purchase.GymID,
			&purchase.SessionCount,
			&purchase.StartsAt,
			&purchase.EndsAt,
			&purchase.Price,
			&purchase.CreatedAt,
		); err != nil {
			return nil, err
		}
		purchases[purchase.ID] = purchase
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return purchases, nil
}
