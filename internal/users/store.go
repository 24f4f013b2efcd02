package users

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

const userColumns = `id, home_id, username, level, xp, gold_balance, active_xp_boost_count, active_shield_expiry, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.HomeID, &u.Username, &u.Level, &u.XP,
		&u.GoldBalance, &u.ActiveXPBoostCount, &u.ActiveShieldExpiry, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) Create(homeID int64, username, passwordHash string) (*models.User, error) {
	row := s.db.QueryRow(`
		INSERT INTO users (home_id, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		homeID, username, passwordHash)

	user, err := scanUser(row)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, apperr.Conflict(apperr.CodeDuplicateUsername,
				fmt.Sprintf("Username %q is already taken in this home", username))
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *Store) Get(id int64) (*models.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.CodeUserNotFound, fmt.Sprintf("User %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetInHome fetches a user scoped to a home. A user from another home is
// indistinguishable from one that does not exist.
func (s *Store) GetInHome(id, homeID int64) (*models.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1 AND home_id = $2`, id, homeID)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.CodeUserNotFound, fmt.Sprintf("User %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByUsername returns the user plus their password hash for login checks.
func (s *Store) GetByUsername(homeID int64, username string) (*models.User, string, error) {
	u := &models.User{}
	var hash string
	err := s.db.QueryRow(`
		SELECT `+userColumns+`, password_hash
		FROM users WHERE home_id = $1 AND username = $2`,
		homeID, username,
	).Scan(&u.ID, &u.HomeID, &u.Username, &u.Level, &u.XP,
		&u.GoldBalance, &u.ActiveXPBoostCount, &u.ActiveShieldExpiry, &u.CreatedAt, &hash)
	if err == sql.ErrNoRows {
		return nil, "", apperr.NotFound(apperr.CodeUserNotFound, fmt.Sprintf("User %q not found", username))
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user by username: %w", err)
	}

	return u, hash, nil
}

func (s *Store) ListByHome(homeID int64) ([]models.User, error) {
	rows, err := s.db.Query(`SELECT `+userColumns+` FROM users WHERE home_id = $1 ORDER BY id`, homeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u := models.User{}
		err := rows.Scan(&u.ID, &u.HomeID, &u.Username, &u.Level, &u.XP,
			&u.GoldBalance, &u.ActiveXPBoostCount, &u.ActiveShieldExpiry, &u.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (s *Store) UpdateUsername(id, homeID int64, username string) (*models.User, error) {
	row := s.db.QueryRow(`
		UPDATE users SET username = $1 WHERE id = $2 AND home_id = $3
		RETURNING `+userColumns,
		username, id, homeID)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.CodeUserNotFound, fmt.Sprintf("User %d not found", id))
	}
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, apperr.Conflict(apperr.CodeDuplicateUsername,
				fmt.Sprintf("Username %q is already taken in this home", username))
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

func (s *Store) Delete(id, homeID int64) error {
	res, err := s.db.Exec(`DELETE FROM users WHERE id = $1 AND home_id = $2`, id, homeID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n == 0 {
		return apperr.NotFound(apperr.CodeUserNotFound, fmt.Sprintf("User %d not found", id))
	}
	return nil
}

// AddXP adjusts lifetime XP and recomputes the level in one statement.
// XP can never go negative.
func (s *Store) AddXP(id int64, delta int64) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	newXP := user.XP + delta
	if newXP < 0 {
		return nil, apperr.Validation(apperr.CodeNegativeXP,
			"XP adjustment would make lifetime XP negative").WithDetails(map[string]interface{}{
			"current": user.XP,
			"delta":   delta,
		})
	}

	row := s.db.QueryRow(`
		UPDATE users SET xp = $1, level = $2 WHERE id = $3
		RETURNING `+userColumns,
		newXP, progression.LevelForXP(newXP), id)

	updated, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to add xp: %w", err)
	}

	return updated, nil
}

// AddGold adjusts the gold balance. The WHERE clause is the overdraft guard:
// a debit that would go negative matches zero rows and the balance is untouched.
func (s *Store) AddGold(id int64, delta int) (*models.User, error) {
	row := s.db.QueryRow(`
		UPDATE users SET gold_balance = gold_balance + $1
		WHERE id = $2 AND gold_balance + $1 >= 0
		RETURNING `+userColumns,
		delta, id)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		current, getErr := s.Get(id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, apperr.ResourceExhausted(apperr.CodeInsufficientGold,
			"Not enough gold").WithDetails(map[string]interface{}{
			"required":  -delta,
			"available": current.GoldBalance,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust gold: %w", err)
	}

	return user, nil
}

// SetXPBoost arms the XP boost consumable. Fails if one is already active
// so charges never stack.
func (s *Store) SetXPBoost(id int64, charges int) error {
	res, err := s.db.Exec(`
		UPDATE users SET active_xp_boost_count = $1
		WHERE id = $2 AND active_xp_boost_count = 0`,
		charges, id)
	if err != nil {
		return fmt.Errorf("failed to set xp boost: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set xp boost: %w", err)
	}
	if n == 0 {
		return apperr.Conflict(apperr.CodeConsumableAlreadyActive, "An XP boost is already active")
	}

	return nil
}

// SetShield arms the purification shield until expiry. Fails if an unexpired
// shield is already active.
func (s *Store) SetShield(id int64, expiry time.Time) error {
	res, err := s.db.Exec(`
		UPDATE users SET active_shield_expiry = $1
		WHERE id = $2 AND (active_shield_expiry IS NULL OR active_shield_expiry < NOW())`,
		expiry, id)
	if err != nil {
		return fmt.Errorf("failed to set shield: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set shield: %w", err)
	}
	if n == 0 {
		return apperr.Conflict(apperr.CodeConsumableAlreadyActive, "A shield is already active")
	}

	return nil
}
