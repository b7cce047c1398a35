package domain

import "time"

// ============================================================
// User Profile
// ============================================================

// UserProfile holds per-driver settings. MonthlyGoal is the income target
// the dashboard tracks against; 0 means "no goal set".
type UserProfile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	MonthlyGoal  float64   `json:"monthly_goal"`
	LicensePlate string    `json:"license_plate,omitempty"`
	HasAccess    bool      `json:"has_access"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// ProfileUpdate is a partial profile update. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name         *string  `json:"name,omitempty"`
	MonthlyGoal  *float64 `json:"monthly_goal,omitempty"`
	LicensePlate *string  `json:"license_plate,omitempty"`
}
