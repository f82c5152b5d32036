package models

import "time"

// SubscriptionPurchase is one paid training package. Buying a package of N
// sessions creates N unscheduled session records numbered 1..N against it.
type SubscriptionPurchase struct {
	ID           int64     `json:"id"`
	MemberID     int64     `json:"member_id"`
	TrainerID    int64     `json:"trainer_id"`
	GymID        int64     `json:"gym_id"`
	SessionCount int       `json:"session_count"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	Price        float64   `json:"price"`
	CreatedAt    time.Time `json:"created_at"`
}
