package homes

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ini272/majordomo/internal/apperr"
	"github.com/ini272/majordomo/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(name, timezone string) (*models.Home, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	inviteCode := uuid.NewString()

	home := &models.Home{}
	err := s.db.QueryRow(`
		INSERT INTO homes (name, invite_code, timezone)
		VALUES ($1, $2, $3)
		RETURNING id, name, invite_code, timezone, created_at`,
		name, inviteCode, timezone,
	).Scan(&home.ID, &home.Name, &home.InviteCode, &home.Timezone, &home.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create home: %w", err)
	}

	return home, nil
}

func (s *Store) Get(id int64) (*models.Home, error) {
	home := &models.Home{}
	err := s.db.QueryRow(`
		SELECT id, name, invite_code, timezone, created_at
		FROM homes WHERE id = $1`,
		id,
	).Scan(&home.ID, &home.Name, &home.InviteCode, &home.Timezone, &home.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.CodeHomeNotFound, fmt.Sprintf("Home %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get home: %w", err)
	}

	return home, nil
}

func (s *Store) GetByInviteCode(code string) (*models.Home, error) {
	home := &models.Home{}
	err := s.db.QueryRow(`
		SELECT id, name, invite_code, timezone, created_at
		FROM homes WHERE invite_code = $1`,
		code,
	).Scan(&home.ID, &home.Name, &home.InviteCode, &home.Timezone, &home.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound(apperr.CodeHomeNotFound, "Invalid invite code")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get home by invite code: %w", err)
	}

	return home, nil
}

func (s *Store) Update(id int64, req *models.UpdateHomeRequest) (*models.Home, error) {
	home, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		home.Name = *req.Name
	}
	if req.Timezone != nil {
		home.Timezone = *req.Timezone
	}

	_, err = s.db.Exec(`UPDATE homes SET name = $1, timezone = $2 WHERE id = $3`,
		home.Name, home.Timezone, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update home: %w", err)
	}

	return home, nil
}

// Timezone returns the home's IANA timezone name.
func (s *Store) Timezone(id int64) (string, error) {
	var tz string
	err := s.db.QueryRow(`SELECT timezone FROM homes WHERE id = $1`, id).Scan(&tz)
	if err == sql.ErrNoRows {
		return "", apperr.NotFound(apperr.CodeHomeNotFound, fmt.Sprintf("Home %d not found", id))
	}
	if err != nil {
		return "", fmt.Errorf("failed to get home timezone: %w", err)
	}
	return tz, nil
}
