package models

import "time"

// Achievement criteria kinds.
const (
	CriteriaQuestsCompleted   = "quests_completed"
	CriteriaLevelReached      = "level_reached"
	CriteriaGoldEarned        = "gold_earned"
	CriteriaXPEarned          = "xp_earned"
	CriteriaBountiesCompleted = "bounties_completed"
)

// Achievement is an unlockable badge. System achievements (home_id null)
// are shared by every home.
type Achievement struct {
	ID            int64     `json:"id"`
	HomeID        *int64    `json:"home_id,omitempty"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	CriteriaType  string    `json:"criteria_type"`
	CriteriaValue int       `json:"criteria_value"`
	Icon          *string   `json:"icon,omitempty"`
	IsSystem      bool      `json:"is_system"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserAchievement records when a user unlocked an achievement.
type UserAchievement struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	AchievementID int64     `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

type CreateAchievementRequest struct {
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	CriteriaType  string  `json:"criteria_type"`
	CriteriaValue int     `json:"criteria_value"`
	Icon          *string `json:"icon,omitempty"`
}
