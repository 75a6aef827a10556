package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/services"
	"marketplace/internal/session"

	"github.com/rs/zerolog"
)

type AuthHandler struct {
	userService *services.UserService
	sessions    *session.Registry
	logger      zerolog.Logger
}

func NewAuthHandler(db *sql.DB, sessions *session.Registry, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: services.NewUserService(db, logger),
		sessions:    sessions,
		logger:      logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	user, err := h.userService.Register(&req)
	if err != nil {
		h.logger.Warn().Err(err).Str("username", req.Username).Msg("Registration failed")
		respondWithServiceError(w, err)
		return
	}

	token := h.sessions.Create(user.ID)
	setSessionCookie(w, token)

	h.respondWithJSON(w, http.StatusCreated, models.AuthResponse{
		User:  user,
		Token: token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	user, err := h.userService.Authenticate(&req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	token := h.sessions.Create(user.ID)
	setSessionCookie(w, token)

	h.respondWithJSON(w, http.StatusOK, models.AuthResponse{
		User:  user,
		Token: token,
	})
}

// Logout revokes the current session. Revoking an already-dead token is a
// no-op, so logging out twice succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := middleware.GetSessionToken(r); ok {
		h.sessions.Revoke(token)
	}
	clearSessionCookie(w)

	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out",
	})
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (h *AuthHandler) respondWithError(w http.ResponseWriter, code int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

func (h *AuthHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
