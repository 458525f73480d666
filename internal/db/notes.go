package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"noteserver/internal/models"
)

type NoteRepository struct {
	db *DB
}

func NewNoteRepository(db *DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(userID, title, content string) (*models.Note, error) {
	id, err := generateID("note")
	if err != nil {
		return nil, fmt.Errorf("generating note ID: %w", err)
	}
	now := time.Now().UTC()

	_, err = r.db.Exec(
		`INSERT INTO notes (id, user_id, title, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, userID, title, content, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}

	return &models.Note{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
	}, nil
}

func (r *NoteRepository) FindByID(id string) (*models.Note, error) {
	var n models.Note
	var updatedAt sql.NullTime

	err := r.db.QueryRow(
		`SELECT id, user_id, title, content, created_at, updated_at FROM notes WHERE id = ?`,
		id,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying note: %w", err)
	}

	n.UpdatedAt = nullTimeToPtr(updatedAt)

	return &n, nil
}

func (r *NoteRepository) ListByUser(userID string) ([]*models.Note, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, title, content, created_at, updated_at FROM notes WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	notes := []*models.Note{}
	for rows.Next() {
		var n models.Note
		var updatedAt sql.NullTime

		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}

		n.UpdatedAt = nullTimeToPtr(updatedAt)
		notes = append(notes, &n)
	}

	return notes, rows.Err()
}

func (r *NoteRepository) Update(id, title, content string) error {
	result, err := r.db.Exec(
		`UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		title, content, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating note: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *NoteRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	return checkRowsAffected(result)
}
