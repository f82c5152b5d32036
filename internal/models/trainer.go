package models

import "time"

// Trainer carries the capacity profile the scheduler reasons about:
// how many distinct members may share an overlapping window, which
// weekdays the trainer works, and the local shift hours.
type Trainer struct {
	ID                   int64     `json:"id"`
	GymID                int64     `json:"gym_id"`
	FullName             string    `json:"full_name"`
	MaxMembersPerSession int       `json:"max_members_per_session"`
	WorkingDays          []string  `json:"working_days"`
	ShiftStart           string    `json:"shift_start"`
	ShiftEnd             string    `json:"shift_end"`
	DefaultSessionHours  int       `json:"default_session_hours"`
	Timezone             string    `json:"timezone"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
