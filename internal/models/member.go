package models

import "time"

type Member struct {
	ID        int64     `json:"id"`
	GymID     int64     `json:"gym_id"`
	FullName  string    `json:"full_name"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
