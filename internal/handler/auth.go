package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gatekeep/gatekeep/internal/auth"
	"github.com/gatekeep/gatekeep/internal/handler/dto"
	"github.com/gatekeep/gatekeep/internal/middleware"
	"github.com/gatekeep/gatekeep/internal/service"
)

// AuthHandler handles the signup, login, logout and profile endpoints.
type AuthHandler struct {
	logger       *slog.Logger
	users        *service.UserService
	sessions     *service.SessionService
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(logger *slog.Logger, users *service.UserService, sessions *service.SessionService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		users:        users,
		sessions:     sessions,
		secureCookie: secureCookie,
	}
}

// Signup handles POST /auth/signup.
// Registers a new account and issues a session for it.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthFailure(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", "")
		return
	}

	email := middleware.NormalizeEmail(req.Email)
	if violations := middleware.ValidateSignup(email, req.Password); len(violations) > 0 {
		// The first violation is reported, with the submitted email echoed
		// back so the client can re-render the form.
		writeAuthFailure(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", violations[0], email)
		return
	}

	user, err := h.users.CreateUser(ctx, email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			writeAuthFailure(w, http.StatusConflict, "EMAIL_TAKEN", "email already registered", "")
		default:
			writeAuthFailure(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not create account", "")
		}
		return
	}

	session, err := h.sessions.Create(ctx, user)
	if err != nil {
		// The account exists but the session could not be issued. The
		// client can still log in, so report the failure honestly.
		h.logger.Error("session issue failed after signup",
			slog.Int64("user_id", user.ID),
			slog.String("request_id", middleware.GetRequestID(ctx)),
		)
		writeAuthFailure(w, http.StatusInternalServerError, "INTERNAL_ERROR", "account created but login failed, please log in", "")
		return
	}

	h.logger.Info("user signed up",
		slog.Int64("user_id", user.ID),
		slog.String("request_id", middleware.GetRequestID(ctx)),
	)

	h.setSessionCookie(w, session.Token, h.sessions.TTL())
	writeJSON(w, http.StatusCreated, dto.ToSessionResponse(user, session))
}

// Login handles POST /auth/login.
// Verifies credentials and issues a fresh session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthFailure(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", "")
		return
	}

	email := middleware.NormalizeEmail(req.Email)
	if violations := middleware.ValidateLogin(email, req.Password); len(violations) > 0 {
		writeAuthFailure(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", violations[0], email)
		return
	}

	user, err := h.users.VerifyCredentials(ctx, email, req.Password)
	if err != nil {
		// Unknown email and wrong password produce the same response so
		// callers cannot probe which addresses are registered.
		writeAuthFailure(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password", "")
		return
	}

	session, err := h.sessions.Create(ctx, user)
	if err != nil {
		writeAuthFailure(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not create session", "")
		return
	}

	h.logger.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("request_id", middleware.GetRequestID(ctx)),
	)

	h.setSessionCookie(w, session.Token, h.sessions.TTL())
	writeJSON(w, http.StatusOK, dto.ToSessionResponse(user, session))
}

// Logout handles POST /auth/logout.
// Destroys the current session and clears the cookie. Runs behind the
// session middleware, so an unauthenticated call never reaches here.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if token := middleware.ExtractSessionToken(r); token != "" {
		if err := h.sessions.Destroy(ctx, token); err != nil {
			h.logger.Error("session destroy failed",
				slog.String("request_id", middleware.GetRequestID(ctx)),
			)
			writeAuthFailure(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not log out", "")
			return
		}
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/me.
// Returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess := auth.SessionFromContext(ctx)
	if sess == nil {
		writeAuthFailure(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", "")
		return
	}

	user, err := h.users.FindByID(ctx, sess.UserID)
	if err != nil {
		// The session outlived the account.
		writeAuthFailure(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeAuthFailure(w http.ResponseWriter, status int, code, message, email string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
		Email: email,
	})
}
