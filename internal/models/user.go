package models

import "time"

// User is a household member. Level is always derived from XP, never set
// independently; gold_balance can never go negative.
type User struct {
	ID                 int64      `json:"id"`
	HomeID             int64      `json:"home_id"`
	Username           string     `json:"username"`
	Level              int        `json:"level"`
	XP                 int64      `json:"xp"`
	GoldBalance        int        `json:"gold_balance"`
	ActiveXPBoostCount int        `json:"active_xp_boost_count"`
	ActiveShieldExpiry *time.Time `json:"active_shield_expiry,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
}

type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Exactly one of these: HomeName creates a new home, InviteCode joins one.
	HomeName   string `json:"home_name,omitempty"`
	InviteCode string `json:"invite_code,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	HomeID   int64  `json:"home_id"`
}

type AuthResponse struct {
	Token  string `json:"access_token"`
	UserID int64  `json:"user_id"`
	HomeID int64  `json:"home_id"`
}
