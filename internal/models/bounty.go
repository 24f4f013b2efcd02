package models

import "time"

// Daily bounty decision states. A row is terminal for its date once written.
const (
	BountyStatusAssigned     = "assigned"
	BountyStatusNoneEligible = "none_eligible"
)

// DailyBounty is the locked per-(home, user, date) bounty decision.
type DailyBounty struct {
	ID         int64     `json:"id"`
	HomeID     int64     `json:"home_id"`
	UserID     int64     `json:"user_id"`
	QuestID    *int64    `json:"quest_id,omitempty"`
	BountyDate string    `json:"bounty_date"` // YYYY-MM-DD in the home's timezone
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type BountyResponse struct {
	Bounty          *DailyBounty `json:"bounty"`
	Quest           *Quest       `json:"quest,omitempty"`
	BonusMultiplier int          `json:"bonus_multiplier"`
}
