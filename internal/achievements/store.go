package achievements

import (
	"database/sql"
	"fmt"

	"github.com/ini272/majordomo/internal/apperr"
	"github.com/ini272/majordomo/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const achievementColumns = `id, home_id, name, description, criteria_type, criteria_value, icon, is_system, created_at`

func scanAchievement(row interface{ Scan(...interface{}) error }) (*models.Achievement, error) {
	a := &models.Achievement{}
	err := row.Scan(&a.ID, &a.HomeID, &a.Name, &a.Description, &a.CriteriaType,
		&a.CriteriaValue, &a.Icon, &a.IsSystem, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) Create(homeID int64, req *models.CreateAchievementRequest) (*models.Achievement, error) {
	row := s.db.QueryRow(`
		INSERT INTO achievements (home_id, name, description, criteria_type, criteria_value, icon)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+achievementColumns,
		homeID, req.Name, req.Description, req.CriteriaType, req.CriteriaValue, req.Icon)

	ach, err := scanAchievement(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create achievement: %w", err)
	}
	return ach, nil
}

func (s *Store) Get(id, homeID int64) (*models.Achievement, error) {
	row := s.db.QueryRow(`
		SELECT `+achievementColumns+`
		FROM achievements WHERE id = $1 AND (home_id = $2 OR home_id IS NULL)`, id, homeID)

	ach, err := scanAchievement(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.CodeAchievementNotFound, fmt.Sprintf("Achievement %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get achievement: %w", err)
	}
	return ach, nil
}

// ListForHome returns the home's achievements plus the shared system set.
func (s *Store) ListForHome(homeID int64) ([]models.Achievement, error) {
	rows, err := s.db.Query(`
		SELECT `+achievementColumns+`
		FROM achievements WHERE home_id = $1 OR home_id IS NULL ORDER BY id`, homeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	achievements := []models.Achievement{}
	for rows.Next() {
		ach, err := scanAchievement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, *ach)
	}
	return achievements, rows.Err()
}

func (s *Store) ListUnlocked(userID int64) ([]models.UserAchievement, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, achievement_id, unlocked_at
		FROM user_achievements WHERE user_id = $1 ORDER BY unlocked_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocked achievements: %w", err)
	}
	defer rows.Close()

	unlocked := []models.UserAchievement{}
	for rows.Next() {
		ua := models.UserAchievement{}
		if err := rows.Scan(&ua.ID, &ua.UserID, &ua.AchievementID, &ua.UnlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unlocked achievement: %w", err)
		}
		unlocked = append(unlocked, ua)
	}
	return unlocked, rows.Err()
}

// Unlock awards an achievement, idempotently: a repeat unlock inserts nothing
// and returns nil.
func (s *Store) Unlock(userID, achievementID int64) (*models.UserAchievement, error) {
	ua := &models.UserAchievement{}
	err := s.db.QueryRow(`
		INSERT INTO user_achievements (user_id, achievement_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
		RETURNING id, user_id, achievement_id, unlocked_at`,
		userID, achievementID,
	).Scan(&ua.ID, &ua.UserID, &ua.AchievementID, &ua.UnlockedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unlock achievement: %w", err)
	}
	return ua, nil
}

// UserStats is the snapshot each criteria kind is evaluated against.
type UserStats struct {
	QuestsCompleted   int
	Level             int
	XP                int64
	GoldEarned        int
	BountiesCompleted int
}

// Stats gathers the user's lifetime numbers in one pass. Gold earned counts
// completed quest payouts, not the current spendable balance.
func (s *Store) Stats(userID int64) (*UserStats, error) {
	stats := &UserStats{}

	err := s.db.QueryRow(`SELECT level, xp FROM users WHERE id = $1`, userID).
		Scan(&stats.Level, &stats.XP)
	if err != nil {
		return nil, fmt.Errorf("failed to load user stats: %w", err)
	}

	err = s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(gold_reward), 0)
		FROM quests WHERE user_id = $1 AND completed = TRUE`, userID).
		Scan(&stats.QuestsCompleted, &stats.GoldEarned)
	if err != nil {
		return nil, fmt.Errorf("failed to load quest stats: %w", err)
	}

	err = s.db.QueryRow(`
		SELECT COUNT(*)
		FROM daily_bounties b
		JOIN quests q ON q.id = b.quest_id
		WHERE b.user_id = $1 AND b.status = $2 AND q.completed = TRUE`,
		userID, models.BountyStatusAssigned).
		Scan(&stats.BountiesCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to load bounty stats: %w", err)
	}

	return stats, nil
}

// SeedDefaults installs the shared system achievements. ON CONFLICT keeps it
// idempotent across restarts.
func (s *Store) SeedDefaults() error {
	_, err := s.db.Exec(`
		INSERT INTO achievements (home_id, name, description, criteria_type, criteria_value, icon, is_system)
		VALUES
			(NULL, 'First Steps', 'Complete your first quest', 'quests_completed', 1, 'boot', TRUE),
			(NULL, 'Seasoned Adventurer', 'Complete 10 quests', 'quests_completed', 10, 'sword', TRUE),
			(NULL, 'Household Legend', 'Complete 100 quests', 'quests_completed', 100, 'crown', TRUE),
			(NULL, 'Apprentice', 'Reach level 2', 'level_reached', 2, 'star', TRUE),
			(NULL, 'Veteran', 'Reach level 5', 'level_reached', 5, 'shield', TRUE),
			(NULL, 'Grandmaster', 'Reach level 10', 'level_reached', 10, 'gem', TRUE),
			(NULL, 'Pocket Money', 'Earn 100 gold', 'gold_earned', 100, 'coin', TRUE),
			(NULL, 'Dragon''s Hoard', 'Earn 1000 gold', 'gold_earned', 1000, 'chest', TRUE),
			(NULL, 'Bounty Hunter', 'Complete 5 daily bounties', 'bounties_completed', 5, 'target', TRUE)
		ON CONFLICT (name) WHERE home_id IS NULL DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to seed achievements: %w", err)
	}
	return nil
}
