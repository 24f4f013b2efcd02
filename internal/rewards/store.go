package rewards

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

const rewardColumns = `id, home_id, name, description, cost, effect, created_at`

func (s *Store) Create(homeID int64, req *models.CreateRewardRequest) (*models.Reward, error) {
	reward := &models.Reward{}
	err := s.db.QueryRow(`
		INSERT INTO rewards (home_id, name, description, cost, effect)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+rewardColumns,
		homeID, req.Name, req.Description, req.Cost, req.Effect,
	).Scan(&reward.ID, &reward.HomeID, &reward.Name, &reward.Description,
		&reward.Cost, &reward.Effect, &reward.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create reward: %w", err)
	}
	return reward, nil
}

func (s *Store) Get(id, homeID int64) (*models.Reward, error) {
	reward := &models.Reward{}
	err := s.db.QueryRow(`
		SELECT `+rewardColumns+`
		FROM rewards WHERE id = $1 AND home_id = $2`, id, homeID,
	).Scan(&reward.ID, &reward.HomeID, &reward.Name, &reward.Description,
		&reward.Cost, &reward.Effect, &reward.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.CodeRewardNotFound, fmt.Sprintf("Reward %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}
	return reward, nil
}

func (s *Store) ListByHome(homeID int64) ([]models.Reward, error) {
	rows, err := s.db.Query(`
		SELECT `+rewardColumns+`
		FROM rewards WHERE home_id = $1 ORDER BY cost, id`, homeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	defer rows.Close()

	rewards := []models.Reward{}
	for rows.Next() {
		reward := models.Reward{}
		err := rows.Scan(&reward.ID, &reward.HomeID, &reward.Name, &reward.Description,
			&reward.Cost, &reward.Effect, &reward.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, reward)
	}
	return rewards, rows.Err()
}

func (s *Store) InsertClaim(userID, rewardID int64) (*models.UserRewardClaim, error) {
	claim := &models.UserRewardClaim{}
	err := s.db.QueryRow(`
		INSERT INTO user_reward_claims (user_id, reward_id)
		VALUES ($1, $2)
		RETURNING id, user_id, reward_id, claimed_at`,
		userID, rewardID,
	).Scan(&claim.ID, &claim.UserID, &claim.RewardID, &claim.ClaimedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record claim: %w", err)
	}
	return claim, nil
}

func (s *Store) ListClaims(userID int64) ([]models.UserRewardClaim, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, reward_id, claimed_at
		FROM user_reward_claims WHERE user_id = $1 ORDER BY claimed_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	claims := []models.UserRewardClaim{}
	for rows.Next() {
		claim := models.UserRewardClaim{}
		if err := rows.Scan(&claim.ID, &claim.UserID, &claim.RewardID, &claim.ClaimedAt); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}
