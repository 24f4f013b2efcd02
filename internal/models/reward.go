package models

import "time"

// Consumable effects a reward can carry. Empty effect means a plain
// redeemable (screen time, treat, etc.) with no mechanical side effect.
const (
	EffectXPBoost = "xp_boost" // 2x XP for the next 3 completed quests
	EffectShield  = "shield"   // suppress corruption debuff for 24 hours
)

// Reward is something a user can spend gold on.
type Reward struct {
	ID          int64     `json:"id"`
	HomeID      int64     `json:"home_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Cost        int       `json:"cost"`
	Effect      *string   `json:"effect,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserRewardClaim records a single redemption.
type UserRewardClaim struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	RewardID  int64     `json:"reward_id"`
	ClaimedAt time.Time `json:"claimed_at"`
}

type CreateRewardRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Cost        int     `json:"cost"`
	Effect      *string `json:"effect,omitempty"`
}

type ClaimRewardRequest struct {
	RewardID int64 `json:"reward_id"`
}

type ClaimRewardResponse struct {
	Claim         *UserRewardClaim `json:"claim"`
	GoldRemaining int              `json:"gold_remaining"`
}
