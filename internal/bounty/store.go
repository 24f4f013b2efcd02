package bounty

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ini272/majordomo/internal/models"
)

// ErrDuplicate signals that today's decision row was inserted concurrently.
// Callers resolve it by re-fetching, never by failing the request.
var ErrDuplicate = errors.New("bounty already decided for this date")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const bountyColumns = `id, home_id, user_id, quest_id, bounty_date, status, created_at`

func scanBounty(row *sql.Row) (*models.DailyBounty, error) {
	b := &models.DailyBounty{}
	var date time.Time
	err := row.Scan(&b.ID, &b.HomeID, &b.UserID, &b.QuestID, &date, &b.Status, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.BountyDate = date.Format("2006-01-02")
	return b, nil
}

// Get returns the decision row for (home, user, date), or nil if none exists.
func (s *Store) Get(homeID, userID int64, date string) (*models.DailyBounty, error) {
	row := s.db.QueryRow(`
		SELECT `+bountyColumns+`
		FROM daily_bounties WHERE home_id = $1 AND user_id = $2 AND bounty_date = $3`,
		homeID, userID, date)

	b, err := scanBounty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bounty: %w", err)
	}
	return b, nil
}

func (s *Store) Insert(homeID, userID int64, questID *int64, date, status string) (*models.DailyBounty, error) {
	row := s.db.QueryRow(`
		INSERT INTO daily_bounties (home_id, user_id, quest_id, bounty_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+bountyColumns,
		homeID, userID, questID, date, status)

	b, err := scanBounty(row)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert bounty: %w", err)
	}
	return b, nil
}

func (s *Store) Delete(homeID, userID int64, date string) error {
	_, err := s.db.Exec(`
		DELETE FROM daily_bounties WHERE home_id = $1 AND user_id = $2 AND bounty_date = $3`,
		homeID, userID, date)
	if err != nil {
		return fmt.Errorf("failed to delete bounty: %w", err)
	}
	return nil
}

// EligibleQuestIDs lists the user's open quests old enough to be bounty
// candidates. The age gate is strict: a quest created 47 hours ago is out.
func (s *Store) EligibleQuestIDs(homeID, userID int64, createdBefore time.Time) ([]int64, error) {
	rows, err := s.db.Query(`
		SELECT id FROM quests
		WHERE home_id = $1 AND user_id = $2 AND completed = FALSE AND created_at <= $3
		ORDER BY id`,
		homeID, userID, createdBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible quests: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan quest id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Quest fetches the minimal quest view for bounty responses.
func (s *Store) Quest(id int64) (*models.Quest, error) {
	q := &models.Quest{}
	err := s.db.QueryRow(`
		SELECT id, home_id, user_id, quest_template_id, title, display_name, description,
		       tags, xp_reward, gold_reward, quest_type, completed, created_at,
		       completed_at, due_date, corrupted_at
		FROM quests WHERE id = $1`, id,
	).Scan(&q.ID, &q.HomeID, &q.UserID, &q.QuestTemplateID, &q.Title, &q.DisplayName,
		&q.Description, &q.Tags, &q.XPReward, &q.GoldReward, &q.QuestType, &q.Completed,
		&q.CreatedAt, &q.CompletedAt, &q.DueDate, &q.CorruptedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bounty quest: %w", err)
	}
	return q, nil
}

// HomeTimezone returns the home's configured IANA timezone name.
func (s *Store) HomeTimezone(homeID int64) (string, error) {
	var tz string
	err := s.db.QueryRow(`SELECT timezone FROM homes WHERE id = $1`, homeID).Scan(&tz)
	if err != nil {
		return "", fmt.Errorf("failed to get home timezone: %w", err)
	}
	return tz, nil
}
