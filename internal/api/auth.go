package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"noteserver/internal/auth"
	"noteserver/internal/db"
	"noteserver/internal/metrics"
	"noteserver/internal/models"
	"noteserver/internal/otp"
)

// Notifier delivers a one-time code out of band. A delivery failure fails
// the whole operation; the already-stored code is left in place since the
// next issuance overwrites it anyway.
type Notifier interface {
	SendOTP(to, code string) error
}

type AuthHandler struct {
	users     *db.UserRepository
	tokens    *auth.TokenService
	verifier  auth.IdentityVerifier
	notifier  Notifier
	cookies   *cookieWriter
	collector *metrics.Collector
}

func NewAuthHandler(
	users *db.UserRepository,
	tokens *auth.TokenService,
	verifier auth.IdentityVerifier,
	notifier Notifier,
	cookies *cookieWriter,
	collector *metrics.Collector,
) *AuthHandler {
	return &AuthHandler{
		users:     users,
		tokens:    tokens,
		verifier:  verifier,
		notifier:  notifier,
		cookies:   cookies,
		collector: collector,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

// SessionUser is the user payload returned alongside a fresh session token.
type SessionUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	DOB       time.Time `json:"dob"`
	CreatedAt time.Time `json:"createdAt"`
	Token     string    `json:"token"`
}

type SessionResponse struct {
	Message string      `json:"message"`
	User    SessionUser `json:"user"`
}

func sessionUserFrom(user *models.User, token string) SessionUser {
	return SessionUser{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Avatar:    user.GetAvatarURL(),
		DOB:       user.DateOfBirth,
		CreatedAt: user.CreatedAt,
		Token:     token,
	}
}

type RegisterRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	DOB   string `json:"dob" validate:"required,datetime=2006-01-02"`
	Email string `json:"email" validate:"required,email,max=254"`
	// Accepted so a resubmitted registration form is not rejected as an
	// unknown field. Registration never verifies it; the first gated step
	// is the login call.
	OTP string `json:"otp" validate:"omitempty"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	email := strings.TrimSpace(req.Email)
	dob, err := time.Parse("2006-01-02", req.DOB)
	if err != nil {
		badRequest(w, "dob must be a date in YYYY-MM-DD form")
		return
	}

	code, err := otp.Generate()
	if err != nil {
		slog.Error("error generating otp", "error", err)
		internalError(w)
		return
	}

	// The insert decides whether the email is taken. A pre-check would race
	// with a concurrent registration; the unique constraint cannot.
	if _, err := h.users.Create(email, strings.TrimSpace(req.Name), dob, code); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, ErrCodeUserExists, "User already exists")
			return
		}
		slog.Error("error creating user", "error", err)
		internalError(w)
		return
	}

	if err := h.notifier.SendOTP(email, code); err != nil {
		slog.Error("error sending otp email", "error", err)
		writeError(w, http.StatusInternalServerError, ErrCodeNotificationFailed, "Failed to send code")
		return
	}
	h.collector.RecordOTPIssued()

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "User created, please enter the code sent to your email",
	})
}

type LoginRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
	OTP   string `json:"otp" validate:"omitempty,len=6,numeric"`
}

// POST /api/auth/login
//
// Without an otp field this issues a fresh code, overwriting the user's
// single pending slot. With one it verifies and opens a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	email := strings.TrimSpace(req.Email)
	user, err := h.users.FindByEmail(email)
	if errors.Is(err, db.ErrNotFound) {
		h.collector.RecordLoginFailure("user_not_found")
		writeError(w, http.StatusBadRequest, ErrCodeUserNotFound, "User does not exist")
		return
	}
	if err != nil {
		slog.Error("error finding user", "error", err)
		internalError(w)
		return
	}

	if req.OTP == "" {
		if err := h.issueOTP(email); err != nil {
			slog.Error("error issuing otp", "error", err)
			writeError(w, http.StatusInternalServerError, ErrCodeNotificationFailed, "Failed to send code")
			return
		}
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Login code sent to your email"})
		return
	}

	if user.PendingOTP == nil || !otp.Matches(req.OTP, *user.PendingOTP) {
		h.collector.RecordLoginFailure("invalid_otp")
		writeError(w, http.StatusBadRequest, ErrCodeInvalidOTP, "Invalid OTP")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		slog.Error("error issuing session token", "error", err, "user_id", user.ID)
		internalError(w)
		return
	}

	h.collector.RecordLoginSuccess()
	h.cookies.setToken(w, token)
	writeJSON(w, http.StatusOK, SessionResponse{
		Message: "Login successful",
		User:    sessionUserFrom(user, token),
	})
}

type ResendRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// POST /api/auth/resend
func (h *AuthHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req ResendRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	email := strings.TrimSpace(req.Email)
	if _, err := h.users.FindByEmail(email); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusBadRequest, ErrCodeUserNotFound, "User does not exist")
			return
		}
		slog.Error("error finding user", "error", err)
		internalError(w)
		return
	}

	if err := h.issueOTP(email); err != nil {
		slog.Error("error resending otp", "error", err)
		writeError(w, http.StatusInternalServerError, ErrCodeNotificationFailed, "Failed to send code")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Code resent to your email"})
}

// issueOTP generates a fresh code, overwrites the user's pending slot, and
// dispatches it. The store write is not rolled back on a failed send; a
// retry simply overwrites the slot again.
func (h *AuthHandler) issueOTP(email string) error {
	code, err := otp.Generate()
	if err != nil {
		return err
	}

	if err := h.users.UpdatePendingOTP(email, code); err != nil {
		return err
	}

	if err := h.notifier.SendOTP(email, code); err != nil {
		return err
	}

	h.collector.RecordOTPIssued()
	return nil
}

type GoogleLoginRequest struct {
	Token string `json:"token" validate:"required"`
}

// POST /api/auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req GoogleLoginRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if h.verifier == nil {
		slog.Error("google login requested but no client id configured")
		internalError(w)
		return
	}

	identity, err := h.verifier.Verify(r.Context(), req.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidAssertion, "Invalid Google token")
		return
	}

	user, err := h.users.FindByGoogleID(identity.Subject)
	if errors.Is(err, db.ErrNotFound) {
		user, err = h.createGoogleUser(identity)
		if err != nil {
			slog.Error("error creating google user", "error", err)
			internalError(w)
			return
		}
	} else if err != nil {
		slog.Error("error finding user", "error", err)
		internalError(w)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		slog.Error("error issuing session token", "error", err, "user_id", user.ID)
		internalError(w)
		return
	}

	h.collector.RecordGoogleLogin()
	h.cookies.setToken(w, token)
	writeJSON(w, http.StatusOK, SessionResponse{
		Message: "Google login successful",
		User:    sessionUserFrom(user, token),
	})
}

func (h *AuthHandler) createGoogleUser(identity *auth.Identity) (*models.User, error) {
	name := identity.Name
	if name == "" {
		name = "No Name"
	}

	var avatarURL *string
	if identity.AvatarURL != "" {
		avatarURL = &identity.AvatarURL
	}

	return h.users.CreateFromGoogle(identity.Subject, identity.Email, name, avatarURL)
}

// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r)
	if !ok {
		unauthorized(w, "User not found in context")
		return
	}

	user, err := h.users.FindByID(identity.UserID)
	if errors.Is(err, db.ErrNotFound) {
		notFound(w, "User not found")
		return
	}
	if err != nil {
		slog.Error("error finding user", "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// GET|POST /api/auth/logout
//
// Clears the session cookie unconditionally. With stateless tokens there is
// nothing server-side to revoke.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.clearToken(w)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}
