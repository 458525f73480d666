package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"noteserver/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user registered through the email flow. The freshly
// generated OTP is stored in the same insert so the row never exists without
// a pending code. The unique constraint on email is the authoritative
// duplicate check; callers map ErrDuplicate to "already exists".
func (r *UserRepository) Create(email, name string, dob time.Time, otp string) (*models.User, error) {
	id, err := generateID("usr")
	if err != nil {
		return nil, fmt.Errorf("generating user ID: %w", err)
	}
	now := time.Now().UTC()

	_, err = r.db.Exec(
		`INSERT INTO users (id, email, name, dob, pending_otp, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, email, name, dob.UTC(), otp, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &models.User{
		ID:          id,
		Email:       email,
		Name:        name,
		DateOfBirth: dob.UTC(),
		PendingOTP:  &otp,
		CreatedAt:   now,
	}, nil
}

// CreateFromGoogle inserts a user first seen through the Google sign-in
// path. No OTP is involved; dob is the account creation time since the
// provider supplies no birth date.
func (r *UserRepository) CreateFromGoogle(googleID, email, name string, avatarURL *string) (*models.User, error) {
	id, err := generateID("usr")
	if err != nil {
		return nil, fmt.Errorf("generating user ID: %w", err)
	}
	now := time.Now().UTC()

	_, err = r.db.Exec(
		`INSERT INTO users (id, email, google_id, name, avatar_url, dob, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, email, googleID, name, avatarURL, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &models.User{
		ID:          id,
		Email:       email,
		GoogleID:    &googleID,
		Name:        name,
		AvatarURL:   avatarURL,
		DateOfBirth: now,
		CreatedAt:   now,
	}, nil
}

func (r *UserRepository) FindByID(id string) (*models.User, error) {
	return r.findOne(`SELECT id, email, google_id, name, avatar_url, dob, pending_otp, created_at, updated_at FROM users WHERE id = ?`, id)
}

func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	return r.findOne(`SELECT id, email, google_id, name, avatar_url, dob, pending_otp, created_at, updated_at FROM users WHERE email = ?`, email)
}

func (r *UserRepository) FindByGoogleID(googleID string) (*models.User, error) {
	return r.findOne(`SELECT id, email, google_id, name, avatar_url, dob, pending_otp, created_at, updated_at FROM users WHERE google_id = ?`, googleID)
}

// UpdatePendingOTP overwrites the user's single OTP slot. Last writer wins;
// the previous code becomes unusable the moment this commits.
func (r *UserRepository) UpdatePendingOTP(email, code string) error {
	result, err := r.db.Exec(
		`UPDATE users SET pending_otp = ?, updated_at = ? WHERE email = ?`,
		code, time.Now().UTC(), email,
	)
	if err != nil {
		return fmt.Errorf("updating pending otp: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *UserRepository) findOne(query string, args ...any) (*models.User, error) {
	var u models.User
	var googleID, avatarURL, pendingOTP sql.NullString
	var updatedAt sql.NullTime

	err := r.db.QueryRow(query, args...).Scan(
		&u.ID,
		&u.Email,
		&googleID,
		&u.Name,
		&avatarURL,
		&u.DateOfBirth,
		&pendingOTP,
		&u.CreatedAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	u.GoogleID = nullStringToPtr(googleID)
	u.AvatarURL = nullStringToPtr(avatarURL)
	u.PendingOTP = nullStringToPtr(pendingOTP)
	u.UpdatedAt = nullTimeToPtr(updatedAt)

	return &u, nil
}
