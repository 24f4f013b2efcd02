package models

import "time"

// Quest type states.
const (
	QuestTypeStandard  = "standard"
	QuestTypeBounty    = "bounty"
	QuestTypeCorrupted = "corrupted"
)

// Recurrence kinds.
const (
	RecurrenceOneOff  = "one-off"
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

// QuestTemplate is a reusable quest blueprint. Instances snapshot its fields
// at creation time, so later edits never change an in-flight quest's payout.
type QuestTemplate struct {
	ID              int64      `json:"id"`
	HomeID          int64      `json:"home_id"`
	Title           string     `json:"title"`
	DisplayName     *string    `json:"display_name,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Tags            *string    `json:"tags,omitempty"`
	XPReward        int        `json:"xp_reward"`
	GoldReward      int        `json:"gold_reward"`
	QuestType       string     `json:"quest_type"`
	Recurrence      string     `json:"recurrence"`
	Schedule        *string    `json:"schedule,omitempty"`
	DueInHours      *int       `json:"due_in_hours,omitempty"`
	LastGeneratedAt *time.Time `json:"last_generated_at,omitempty"`
	IsSystem        bool       `json:"is_system"`
	CreatedBy       int64      `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Quest is a materialized instance owned by exactly one user.
type Quest struct {
	ID              int64      `json:"id"`
	HomeID          int64      `json:"home_id"`
	UserID          int64      `json:"user_id"`
	QuestTemplateID *int64     `json:"quest_template_id,omitempty"`
	Title           string     `json:"title"`
	DisplayName     *string    `json:"display_name,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Tags            *string    `json:"tags,omitempty"`
	XPReward        int        `json:"xp_reward"`
	GoldReward      int        `json:"gold_reward"`
	QuestType       string     `json:"quest_type"`
	Completed       bool       `json:"completed"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	CorruptedAt     *time.Time `json:"corrupted_at,omitempty"`
}

// UserTemplateSubscription is a user's personalized recurrence for a shared
// template. At most one per (user, template).
type UserTemplateSubscription struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	QuestTemplateID int64      `json:"quest_template_id"`
	Recurrence      string     `json:"recurrence"`
	Schedule        *string    `json:"schedule,omitempty"`
	DueInHours      *int       `json:"due_in_hours,omitempty"`
	LastGeneratedAt *time.Time `json:"last_generated_at,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CreateTemplateRequest struct {
	Title       string  `json:"title"`
	DisplayName *string `json:"display_name,omitempty"`
	Description *string `json:"description,omitempty"`
	Tags        *string `json:"tags,omitempty"`
	XPReward    int     `json:"xp_reward"`
	GoldReward  int     `json:"gold_reward"`
	Recurrence  string  `json:"recurrence"`
	Schedule    *string `json:"schedule,omitempty"`
	DueInHours  *int    `json:"due_in_hours,omitempty"`
}

type UpdateTemplateRequest struct {
	Title       *string `json:"title,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Description *string `json:"description,omitempty"`
	Tags        *string `json:"tags,omitempty"`
	XPReward    *int    `json:"xp_reward,omitempty"`
	GoldReward  *int    `json:"gold_reward,omitempty"`
	Recurrence  *string `json:"recurrence,omitempty"`
	Schedule    *string `json:"schedule,omitempty"`
	DueInHours  *int    `json:"due_in_hours,omitempty"`
}

type CreateQuestRequest struct {
	QuestTemplateID int64      `json:"quest_template_id"`
	DueDate         *time.Time `json:"due_date,omitempty"`
}

type CreateStandaloneQuestRequest struct {
	Title       string     `json:"title"`
	DisplayName *string    `json:"display_name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Tags        *string    `json:"tags,omitempty"`
	XPReward    int        `json:"xp_reward"`
	GoldReward  int        `json:"gold_reward"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type UpdateQuestRequest struct {
	Title       *string    `json:"title,omitempty"`
	DisplayName *string    `json:"display_name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Tags        *string    `json:"tags,omitempty"`
	XPReward    *int       `json:"xp_reward,omitempty"`
	GoldReward  *int       `json:"gold_reward,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type CreateSubscriptionRequest struct {
	QuestTemplateID int64   `json:"quest_template_id"`
	Recurrence      string  `json:"recurrence"`
	Schedule        *string `json:"schedule,omitempty"`
	DueInHours      *int    `json:"due_in_hours,omitempty"`
}

type UpdateSubscriptionRequest struct {
	Recurrence *string `json:"recurrence,omitempty"`
	Schedule   *string `json:"schedule,omitempty"`
	DueInHours *int    `json:"due_in_hours,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

// RewardBreakdown itemizes every modifier applied at completion, for
// auditability and UI display.
type RewardBreakdown struct {
	XP               int     `json:"xp"`
	Gold             int     `json:"gold"`
	BaseXP           int     `json:"base_xp"`
	BaseGold         int     `json:"base_gold"`
	IsDailyBounty    bool    `json:"is_daily_bounty"`
	IsCorrupted      bool    `json:"is_corrupted"`
	CorruptionDebuff float64 `json:"corruption_debuff"`
	BountyMultiplier int     `json:"bounty_multiplier"`
	XPBoostActive    bool    `json:"xp_boost_active"`
	XPBoostRemaining int     `json:"xp_boost_remaining"`
}

type CompleteQuestResponse struct {
	Quest        *Quest            `json:"quest"`
	Rewards      RewardBreakdown   `json:"rewards"`
	Achievements []UserAchievement `json:"achievements"`
}

type CorruptionCheckResponse struct {
	CorruptedCount    int     `json:"corrupted_count"`
	CorruptedQuestIDs []int64 `json:"corrupted_quest_ids"`
}

// UpcomingSubscription is a subscription annotated with its computed next
// spawn instant.
type UpcomingSubscription struct {
	UserTemplateSubscription
	NextSpawnAt time.Time      `json:"next_spawn_at"`
	Template    *QuestTemplate `json:"template"`
}
