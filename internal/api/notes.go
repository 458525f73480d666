package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"noteserver/internal/db"
)

type NoteHandler struct {
	notes     *db.NoteRepository
	sanitizer *bluemonday.Policy
}

func NewNoteHandler(notes *db.NoteRepository) *NoteHandler {
	return &NoteHandler{
		notes: notes,
		// Notes are plain text; strip all markup before it reaches the store.
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// GET /api/notes
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r)
	if !ok {
		unauthorized(w, "User not found in context")
		return
	}

	notes, err := h.notes.ListByUser(identity.UserID)
	if err != nil {
		slog.Error("error listing notes", "error", err, "user_id", identity.UserID)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, notes)
}

type NoteRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=20000"`
}

// POST /api/notes
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r)
	if !ok {
		unauthorized(w, "User not found in context")
		return
	}

	var req NoteRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	title, content := h.sanitize(req.Title), h.sanitize(req.Content)
	if title == "" || content == "" {
		badRequest(w, "Title and content are required")
		return
	}

	note, err := h.notes.Create(identity.UserID, title, content)
	if err != nil {
		slog.Error("error creating note", "error", err, "user_id", identity.UserID)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

// PUT /api/notes/{id}
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r)
	if !ok {
		unauthorized(w, "User not found in context")
		return
	}

	noteID := chi.URLParam(r, "id")
	var req NoteRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	title, content := h.sanitize(req.Title), h.sanitize(req.Content)
	if title == "" || content == "" {
		badRequest(w, "Title and content are required")
		return
	}

	if !h.ownsNote(w, noteID, identity.UserID) {
		return
	}

	if err := h.notes.Update(noteID, title, content); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			notFound(w, "Note not found")
			return
		}
		slog.Error("error updating note", "error", err, "note_id", noteID)
		internalError(w)
		return
	}

	note, err := h.notes.FindByID(noteID)
	if err != nil {
		slog.Error("error loading updated note", "error", err, "note_id", noteID)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// DELETE /api/notes/{id}
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r)
	if !ok {
		unauthorized(w, "User not found in context")
		return
	}

	noteID := chi.URLParam(r, "id")
	if !h.ownsNote(w, noteID, identity.UserID) {
		return
	}

	if err := h.notes.Delete(noteID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			notFound(w, "Note not found")
			return
		}
		slog.Error("error deleting note", "error", err, "note_id", noteID)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": noteID})
}

// ownsNote checks existence and ownership, answering 404 for both a missing
// note and another user's note so note IDs are not probeable.
func (h *NoteHandler) ownsNote(w http.ResponseWriter, noteID, userID string) bool {
	note, err := h.notes.FindByID(noteID)
	if errors.Is(err, db.ErrNotFound) {
		notFound(w, "Note not found")
		return false
	}
	if err != nil {
		slog.Error("error finding note", "error", err, "note_id", noteID)
		internalError(w)
		return false
	}
	if note.UserID != userID {
		notFound(w, "Note not found")
		return false
	}
	return true
}

func (h *NoteHandler) sanitize(s string) string {
	return strings.TrimSpace(h.sanitizer.Sanitize(s))
}
