package quests

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ini272/majordomo/internal/apperr"
	"github.com/ini272/majordomo/internal/models"
	"github.com/ini272/majordomo/internal/progression"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const templateColumns = `id, home_id, title, display_name, description, tags,
	xp_reward, gold_reward, quest_type, recurrence, schedule, due_in_hours,
	last_generated_at, is_system, created_by, created_at`

const questColumns = `id, home_id, user_id, quest_template_id, title, display_name,
	description, tags, xp_reward, gold_reward, quest_type, completed,
	created_at, completed_at, due_date, corrupted_at`

const subscriptionColumns = `id, user_id, quest_template_id, recurrence, schedule,
	due_in_hours, last_generated_at, is_active, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(row rowScanner) (*models.QuestTemplate, error) {
	t := &models.QuestTemplate{}
	err := row.Scan(&t.ID, &t.HomeID, &t.Title, &t.DisplayName, &t.Description, &t.Tags,
		&t.XPReward, &t.GoldReward, &t.QuestType, &t.Recurrence, &t.Schedule, &t.DueInHours,
		&t.LastGeneratedAt, &t.IsSystem, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func scanQuest(row rowScanner) (*models.Quest, error) {
	q := &models.Quest{}
	err := row.Scan(&q.ID, &q.HomeID, &q.UserID, &q.QuestTemplateID, &q.Title, &q.DisplayName,
		&q.Description, &q.Tags, &q.XPReward, &q.GoldReward, &q.QuestType, &q.Completed,
		&q.CreatedAt, &q.CompletedAt, &q.DueDate, &q.CorruptedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func scanSubscription(row rowScanner) (*models.UserTemplateSubscription, error) {
	s := &models.UserTemplateSubscription{}
	err := row.Scan(&s.ID, &s.UserID, &s.QuestTemplateID, &s.Recurrence, &s.Schedule,
		&s.DueInHours, &s.LastGeneratedAt, &s.IsActive, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Templates

func (s *Store) CreateTemplate(homeID, createdBy int64, req *models.CreateTemplateRequest) (*models.QuestTemplate, error) {
	row := s.db.QueryRow(`
		INSERT INTO quest_templates
			(home_id, title, display_name, description, tags, xp_reward, gold_reward,
			 quest_type, recurrence, schedule, due_in_hours, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+templateColumns,
		homeID, req.Title, req.DisplayName, req.Description, req.Tags,
		req.XPReward, req.GoldReward, models.QuestTypeStandard, req.Recurrence,
		req.Schedule, req.DueInHours, createdBy)

	tmpl, err := scanTemplate(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return tmpl, nil
}

func (s *Store) GetTemplate(id, homeID int64) (*models.QuestTemplate, error) {
	row := s.db.QueryRow(`
		SELECT `+templateColumns+`
		FROM quest_templates WHERE id = $1 AND home_id = $2`, id, homeID)

	tmpl, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.CodeTemplateNotFound, fmt.Sprintf("Template %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return tmpl, nil
}

func (s *Store) ListTemplates(homeID int64) ([]models.QuestTemplate, error) {
	rows, err := s.db.Query(`
		SELECT `+templateColumns+`
		FROM quest_templates WHERE home_id = $1 ORDER BY id`, homeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	templates := []models.QuestTemplate{}
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, *tmpl)
	}
	return templates, rows.Err()
}

func (s *Store) SaveTemplate(t *models.QuestTemplate) error {
	_, err := s.db.Exec(`
		UPDATE quest_templates
		SET title = $1, display_name = $2, description = $3, tags = $4,
		    xp_reward = $5, gold_reward = $6, recurrence = $7, schedule = $8,
		    due_in_hours = $9
		WHERE id = $10`,
		t.Title, t.DisplayName, t.Description, t.Tags, t.XPReward, t.GoldReward,
		t.Recurrence, t.Schedule, t.DueInHours, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	return nil
}

func (s *Store) DeleteTemplate(id, homeID int64) error {
	res, err := s.db.Exec(`DELETE FROM quest_templates WHERE id = $1 AND home_id = $2 AND is_system = FALSE`, id, homeID)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if n == 0 {
		return apperr.NotFound(apperr.CodeTemplateNotFound, fmt.Sprintf("Template %d not found", id))
	}
	return nil
}

// AdvanceTemplateGeneration moves last_generated_at forward. It never moves
// it backwards, which keeps concurrent sweeps convergent.
func (s *Store) AdvanceTemplateGeneration(id int64, now time.Time) error {
	_, err := s.db.Exec(`
		UPDATE quest_templates SET last_generated_at = $1
		WHERE id = $2 AND (last_generated_at IS NULL OR last_generated_at < $1)`,
		now, id)
	if err != nil {
		return fmt.Errorf("failed to advance template generation: %w", err)
	}
	return nil
}

// DueRecurringTemplates returns home-wide recurring templates that have not
// generated within the cooldown window.
func (s *Store) DueRecurringTemplates(homeID int64, cooldownCutoff time.Time) ([]models.QuestTemplate, error) {
	rows, err := s.db.Query(`
		SELECT `+templateColumns+`
		FROM quest_templates
		WHERE home_id = $1 AND recurrence != $2 AND schedule IS NOT NULL
		  AND (last_generated_at IS NULL OR last_generated_at < $3)
		ORDER BY id`,
		homeID, models.RecurrenceOneOff, cooldownCutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list due templates: %w", err)
	}
	defer rows.Close()

	templates := []models.QuestTemplate{}
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, *tmpl)
	}
	return templates, rows.Err()
}

// HasIncompleteInstance reports whether any user still has an open quest
// from this template.
func (s *Store) HasIncompleteInstance(templateID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM quests WHERE quest_template_id = $1 AND completed = FALSE
		)`, templateID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check incomplete instances: %w", err)
	}
	return exists, nil
}

func (s *Store) HasIncompleteInstanceForUser(templateID, userID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM quests
			WHERE quest_template_id = $1 AND user_id = $2 AND completed = FALSE
		)`, templateID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check incomplete instances: %w", err)
	}
	return exists, nil
}

// Quests

func (s *Store) CreateQuest(q *models.Quest) (*models.Quest, error) {
	row := s.db.QueryRow(`
		INSERT INTO quests
			(home_id, user_id, quest_template_id, title, display_name, description,
			 tags, xp_reward, gold_reward, quest_type, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+questColumns,
		q.HomeID, q.UserID, q.QuestTemplateID, q.Title, q.DisplayName, q.Description,
		q.Tags, q.XPReward, q.GoldReward, q.QuestType, q.DueDate)

	quest, err := scanQuest(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create quest: %w", err)
	}
	return quest, nil
}

func (s *Store) GetQuest(id, homeID int64) (*models.Quest, error) {
	row := s.db.QueryRow(`
		SELECT `+questColumns+`
		FROM quests WHERE id = $1 AND home_id = $2`, id, homeID)

	quest, err := scanQuest(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.CodeQuestNotFound, fmt.Sprintf("Quest %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quest: %w", err)
	}
	return quest, nil
}

// ListQuests returns the home's quests, optionally narrowed to one user
// and/or completion state.
func (s *Store) ListQuests(homeID int64, userID *int64, completed *bool) ([]models.Quest, error) {
	query := `SELECT ` + questColumns + ` FROM quests WHERE home_id = $1`
	args := []interface{}{homeID}

	if userID != nil {
		args = append(args, *userID)
		query += fmt.Sprintf(` AND user_id = $%d`, len(args))
	}
	if completed != nil {
		args = append(args, *completed)
		query += fmt.Sprintf(` AND completed = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	defer rows.Close()

	quests := []models.Quest{}
	for rows.Next() {
		quest, err := scanQuest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quest: %w", err)
		}
		quests = append(quests, *quest)
	}
	return quests, rows.Err()
}

// SaveQuest persists pre-completion field edits. Completed quests are
// terminal and never updated through here.
func (s *Store) SaveQuest(q *models.Quest) error {
	res, err := s.db.Exec(`
		UPDATE quests
		SET title = $1, display_name = $2, description = $3, tags = $4,
		    xp_reward = $5, gold_reward = $6, due_date = $7
		WHERE id = $8 AND completed = FALSE`,
		q.Title, q.DisplayName, q.Description, q.Tags, q.XPReward, q.GoldReward,
		q.DueDate, q.ID)
	if err != nil {
		return fmt.Errorf("failed to update quest: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update quest: %w", err)
	}
	if n == 0 {
		return apperr.Conflict(apperr.CodeQuestAlreadyCompleted, "Completed quests cannot be edited")
	}
	return nil
}

func (s *Store) DeleteQuest(id, homeID int64) error {
	res, err := s.db.Exec(`DELETE FROM quests WHERE id = $1 AND home_id = $2`, id, homeID)
	if err != nil {
		return fmt.Errorf("failed to delete quest: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete quest: %w", err)
	}
	if n == 0 {
		return apperr.NotFound(apperr.CodeQuestNotFound, fmt.Sprintf("Quest %d not found", id))
	}
	return nil
}

// CorruptOverdue flips every overdue active quest in the home to corrupted
// in one batch. Safe to re-run: the quest_type filter makes it a no-op the
// second time.
func (s *Store) CorruptOverdue(homeID int64, now time.Time) ([]int64, error) {
	rows, err := s.db.Query(`
		UPDATE quests
		SET quest_type = $1, corrupted_at = $2
		WHERE home_id = $3 AND completed = FALSE AND due_date IS NOT NULL
		  AND due_date < $2 AND quest_type != $1
		RETURNING id`,
		models.QuestTypeCorrupted, now, homeID)
	if err != nil {
		return nil, fmt.Errorf("failed to corrupt overdue quests: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan corrupted quest id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountActiveCorrupted counts the home's corrupted quests that are still open.
// This number drives the reward debuff.
func (s *Store) CountActiveCorrupted(homeID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM quests
		WHERE home_id = $1 AND quest_type = $2 AND completed = FALSE`,
		homeID, models.QuestTypeCorrupted).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count corrupted quests: %w", err)
	}
	return count, nil
}

// CompleteQuest atomically marks the quest completed with its final computed
// rewards and applies the XP, level, gold and boost-counter changes to the
// user. The completed flag check-then-set guards against double completion.
func (s *Store) CompleteQuest(questID, userID int64, now time.Time, rewards models.RewardBreakdown, decrementBoost bool) (*models.Quest, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin completion: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		UPDATE quests
		SET completed = TRUE, completed_at = $1, xp_reward = $2, gold_reward = $3
		WHERE id = $4 AND completed = FALSE
		RETURNING `+questColumns,
		now, rewards.XP, rewards.Gold, questID)

	quest, err := scanQuest(row)
	if err == sql.ErrNoRows {
		return nil, apperr.Conflict(apperr.CodeQuestAlreadyCompleted, "Quest is already completed")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to complete quest: %w", err)
	}

	var xp int64
	if err := tx.QueryRow(`SELECT xp FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&xp); err != nil {
		return nil, fmt.Errorf("failed to lock user for completion: %w", err)
	}
	newXP := xp + int64(rewards.XP)

	boostDelta := 0
	if decrementBoost {
		boostDelta = 1
	}

	res, err := tx.Exec(`
		UPDATE users
		SET xp = $1, level = $2,
		    gold_balance = gold_balance + $3,
		    active_xp_boost_count = GREATEST(active_xp_boost_count - $4, 0)
		WHERE id = $5 AND gold_balance + $3 >= 0`,
		newXP, progression.LevelForXP(newXP), rewards.Gold, boostDelta, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to apply completion rewards: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to apply completion rewards: %w", err)
	}
	if n == 0 {
		return nil, apperr.ResourceExhausted(apperr.CodeInsufficientGold, "Not enough gold")
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit completion: %w", err)
	}
	return quest, nil
}

// Subscriptions

func (s *Store) CreateSubscription(userID int64, req *models.CreateSubscriptionRequest) (*models.UserTemplateSubscription, error) {
	row := s.db.QueryRow(`
		INSERT INTO user_template_subscriptions
			(user_id, quest_template_id, recurrence, schedule, due_in_hours)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+subscriptionColumns,
		userID, req.QuestTemplateID, req.Recurrence, req.Schedule, req.DueInHours)

	sub, err := scanSubscription(row)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, apperr.Conflict(apperr.CodeDuplicateSubscription,
				"You are already subscribed to this template")
		}
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	return sub, nil
}

func (s *Store) GetSubscription(id, userID int64) (*models.UserTemplateSubscription, error) {
	row := s.db.QueryRow(`
		SELECT `+subscriptionColumns+`
		FROM user_template_subscriptions WHERE id = $1 AND user_id = $2`, id, userID)

	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.CodeSubscriptionNotFound, fmt.Sprintf("Subscription %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

func (s *Store) ListSubscriptions(userID int64) ([]models.UserTemplateSubscription, error) {
	rows, err := s.db.Query(`
		SELECT `+subscriptionColumns+`
		FROM user_template_subscriptions WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []models.UserTemplateSubscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (s *Store) SaveSubscription(sub *models.UserTemplateSubscription) error {
	_, err := s.db.Exec(`
		UPDATE user_template_subscriptions
		SET recurrence = $1, schedule = $2, due_in_hours = $3, is_active = $4
		WHERE id = $5`,
		sub.Recurrence, sub.Schedule, sub.DueInHours, sub.IsActive, sub.ID)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return nil
}

func (s *Store) DeleteSubscription(id, userID int64) error {
	res, err := s.db.Exec(`
		DELETE FROM user_template_subscriptions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if n == 0 {
		return apperr.NotFound(apperr.CodeSubscriptionNotFound, fmt.Sprintf("Subscription %d not found", id))
	}
	return nil
}

// AdvanceSubscriptionGeneration mirrors AdvanceTemplateGeneration for
// per-user subscriptions.
func (s *Store) AdvanceSubscriptionGeneration(id int64, now time.Time) error {
	_, err := s.db.Exec(`
		UPDATE user_template_subscriptions SET last_generated_at = $1
		WHERE id = $2 AND (last_generated_at IS NULL OR last_generated_at < $1)`,
		now, id)
	if err != nil {
		return fmt.Errorf("failed to advance subscription generation: %w", err)
	}
	return nil
}

// DueSubscription pairs a due subscription with its template snapshot.
type DueSubscription struct {
	Subscription models.UserTemplateSubscription
	Template     models.QuestTemplate
}

// DueActiveSubscriptions returns the home's active recurring subscriptions
// outside the cooldown window, each joined with its template.
func (s *Store) DueActiveSubscriptions(homeID int64, cooldownCutoff time.Time) ([]DueSubscription, error) {
	rows, err := s.db.Query(`
		SELECT s.id, s.user_id, s.quest_template_id, s.recurrence, s.schedule,
		       s.due_in_hours, s.last_generated_at, s.is_active, s.created_at,
		       t.id, t.home_id, t.title, t.display_name, t.description, t.tags,
		       t.xp_reward, t.gold_reward, t.quest_type, t.recurrence, t.schedule,
		       t.due_in_hours, t.last_generated_at, t.is_system, t.created_by, t.created_at
		FROM user_template_subscriptions s
		JOIN quest_templates t ON t.id = s.quest_template_id
		WHERE t.home_id = $1 AND s.is_active = TRUE AND s.recurrence != $2
		  AND (s.last_generated_at IS NULL OR s.last_generated_at < $3)
		ORDER BY s.id`,
		homeID, models.RecurrenceOneOff, cooldownCutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list due subscriptions: %w", err)
	}
	defer rows.Close()

	due := []DueSubscription{}
	for rows.Next() {
		var d DueSubscription
		sub, tmpl := &d.Subscription, &d.Template
		err := rows.Scan(&sub.ID, &sub.UserID, &sub.QuestTemplateID, &sub.Recurrence, &sub.Schedule,
			&sub.DueInHours, &sub.LastGeneratedAt, &sub.IsActive, &sub.CreatedAt,
			&tmpl.ID, &tmpl.HomeID, &tmpl.Title, &tmpl.DisplayName, &tmpl.Description, &tmpl.Tags,
			&tmpl.XPReward, &tmpl.GoldReward, &tmpl.QuestType, &tmpl.Recurrence, &tmpl.Schedule,
			&tmpl.DueInHours, &tmpl.LastGeneratedAt, &tmpl.IsSystem, &tmpl.CreatedBy, &tmpl.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due subscription: %w", err)
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// HomeUserIDs lists the ids of every member, for home-wide template fanout.
func (s *Store) HomeUserIDs(homeID int64) ([]int64, error) {
	rows, err := s.db.Query(`SELECT id FROM users WHERE home_id = $1 ORDER BY id`, homeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list home users: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UnsubscribedHomeUserIDs lists members without a subscription to the
// template. Subscribed users get instances from their own schedule instead,
// so the home-wide fanout must not double up on them.
func (s *Store) UnsubscribedHomeUserIDs(homeID, templateID int64) ([]int64, error) {
	rows, err := s.db.Query(`
		SELECT id FROM users
		WHERE home_id = $1 AND id NOT IN (
			SELECT user_id FROM user_template_subscriptions WHERE quest_template_id = $2
		)
		ORDER BY id`, homeID, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list home users: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
