// Package http provides the JSON HTTP handlers and router of the
// FeedlinerX service.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/indranuj17/FeedlinerX/internal/auth"
	"github.com/indranuj17/FeedlinerX/internal/common"
	"github.com/indranuj17/FeedlinerX/internal/middleware"
	"github.com/indranuj17/FeedlinerX/internal/models"
	"go.uber.org/zap"
)

// AuthService defines the interface for account operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates or refreshes a pending account and sends a code.
	Register(ctx context.Context, username, email, password string) error
	// VerifyCode confirms the account of username.
	VerifyCode(ctx context.Context, username, code string) error
	// Authenticate checks credentials and returns the session user.
	Authenticate(ctx context.Context, identifier, password string) (models.SessionUser, error)
	// CheckUsernameUnique reports whether username is free.
	CheckUsernameUnique(ctx context.Context, username string) (bool, error)
	// CurrentUser reloads the session user with the given id.
	CurrentUser(ctx context.Context, id string) (models.SessionUser, error)
}

// AuthHandler handles HTTP requests for signup, verification and sessions.
type AuthHandler struct {
	// AuthService performs the underlying account operations.
	AuthService AuthService
	// Secret signs session tokens.
	Secret []byte
	// CookieName is the session cookie name.
	CookieName string
	// CookieSecure marks the session cookie Secure.
	CookieSecure bool
	// SessionTTL is the token and cookie lifetime.
	SessionTTL time.Duration
	// Log receives unexpected failures.
	Log *zap.Logger
}

// SignUpRequest represents the JSON payload for registration.
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyRequest represents the JSON payload for code verification.
type VerifyRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

// SignInRequest represents the JSON payload for credential sign-in.
// Identifier is either a username or an email address.
type SignInRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// SignUp handles POST /api/sign-up.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := h.AuthService.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeOK(w, "User registered successfully. Please verify your email", nil)
}

// VerifyCode handles POST /api/verify-code.
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := h.AuthService.VerifyCode(r.Context(), req.Username, req.Code); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeOK(w, "Account verified successfully", nil)
}

// CheckUsernameUnique handles GET /api/check-username-unique?username=.
// A taken username is a normal answer, not an error status.
func (h *AuthHandler) CheckUsernameUnique(w http.ResponseWriter, r *http.Request) {
	unique, err := h.AuthService.CheckUsernameUnique(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if !unique {
		writeJSON(w, http.StatusOK, envelope{"success": false, "message": "Username is already taken"})
		return
	}
	writeOK(w, "Username is unique", nil)
}

// SignIn handles POST /api/auth/sign-in. On success it sets the session
// cookie and also returns the token for non-browser clients.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if req.Identifier == "" || req.Password == "" {
		writeError(w, h.Log, common.Invalid("identifier", "Identifier and password are required"))
		return
	}

	user, err := h.AuthService.Authenticate(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	token, err := auth.IssueToken(user, h.Secret, h.SessionTTL)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	http.SetCookie(w, h.cookie(token, int(h.SessionTTL.Seconds())))
	writeOK(w, "Signed in successfully", envelope{"token": token, "user": user})
}

// SignOut handles POST /api/auth/sign-out by expiring the session cookie.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.cookie("", -1))
	writeOK(w, "Signed out successfully", nil)
}

// Session handles GET /api/auth/session and returns the current user as
// stored, not as captured in the token.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, h.Log, common.ErrUnauthenticated)
		return
	}
	user, err := h.AuthService.CurrentUser(r.Context(), session.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "user": user})
}

func (h *AuthHandler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
