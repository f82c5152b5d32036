package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is one personal-training appointment unit. A nil SessionDate
// means the session is unscheduled: it still counts against its package
// allotment but is excluded from overlap and capacity checks.
type Session struct {
	ID               int64      `json:"id"`
	TrainerID        int64      `json:"trainer_id"`
	GymID            int64      `json:"gym_id"`
	PurchaseID       *int64     `json:"purchase_id"`
	MemberIDs        []int64    `json:"member_ids"`
	SessionDate      *time.Time `json:"session_date"`
	DurationHours    int        `json:"duration_hours"`
	Price            float64    `json:"price"`
	PtSessionNumber  int        `json:"pt_session_number"`
	IsCancelled      bool       `json:"is_cancelled"`
	CancelledReason  *string    `json:"cancelled_reason"`
	CancelledAt      *time.Time `json:"cancelled_at"`
	RecurringGroupID *uuid.UUID `json:"recurring_group_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// SessionDetail decorates a session for presentation. DisplayDate is the
// session instant rendered in the caller's timezone; it is never persisted.
type SessionDetail struct {
	Session
	DisplayDate *string               `json:"display_date,omitempty"`
	Status      string                `json:"status"`
	Purchase    *SubscriptionPurchase `json:"purchase,omitempty"`
}

type Transaction struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	MemberID  int64     `json:"member_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
