package repository

import (
	"context"

	"github.com/hadi-makki/gymleb-api/internal/models"
)

type CreateTransactionInput struct {
	SessionID int64
	MemberID  int64
	Amount    float64
}

// TransactionRepository is the payment-transaction ledger boundary: one
// row per member per booked session, deleted when the session goes away.
type TransactionRepository struct {
	db DBTX
}

func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(
	ctx context.Context,
	input CreateTransactionInput,
) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (session_id, member_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id, session_id, member_id, amount, created_at
	`
	var transaction models.Transaction
	err := r.db.QueryRow(ctx, query, input.SessionID, input.MemberID, input.Amount).Scan(
		&transaction.ID,
		&transaction.SessionID,
		&transaction.MemberID,
		&transaction.Amount,
		&transaction.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *TransactionRepository) DeleteBySessionID(ctx context.Context, sessionID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM transactions WHERE session_id = $1", sessionID)
	return err
}
