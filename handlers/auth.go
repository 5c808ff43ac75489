package handlers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"fuelstation/audit"
	"fuelstation/auth"
	"fuelstation/db"
	"fuelstation/models"
)

type AuthHandler struct {
	store      *db.Store
	jwtManager *auth.JWTManager
	audit      *audit.Recorder
	log        *logrus.Logger
}

func NewAuthHandler(store *db.Store, jwtManager *auth.JWTManager, rec *audit.Recorder, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		store:      store,
		jwtManager: jwtManager,
		audit:      rec,
		log:        log,
	}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// Login handles user authentication.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		h.log.WithField("username", req.Username).Info("login failed: user not found")
		writeError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}
	if !user.Active {
		writeError(w, "Account is disabled", http.StatusForbidden)
		return
	}

	passwordHash, err := h.store.GetPasswordHash(r.Context(), user.UserID)
	if err != nil {
		h.log.WithField("username", req.Username).Info("login failed: password hash not found")
		writeError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	if err := auth.CheckPassword(req.Password, passwordHash); err != nil {
		h.log.WithField("username", req.Username).Info("login failed: invalid password")
		writeError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	user.LastLogin = time.Now()
	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		h.log.WithField("username", req.Username).Warnf("failed to update last login: %v", err)
	}

	token, err := h.jwtManager.GenerateToken(user)
	if err != nil {
		h.log.Errorf("failed to generate token for %s: %v", req.Username, err)
		writeError(w, "Failed to generate authentication token", http.StatusInternalServerError)
		return
	}
	refreshToken, err := h.jwtManager.GenerateRefreshToken(user)
	if err != nil {
		h.log.Errorf("failed to generate refresh token for %s: %v", req.Username, err)
		writeError(w, "Failed to generate refresh token", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), user.UserID, "LOGIN", "user logged in")

	writeJSON(w, LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         user,
	})
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RefreshTokenResponse struct {
	Token string `json:"token"`
}

// RefreshToken exchanges a valid refresh token for a fresh access token.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims, err := h.jwtManager.ValidateToken(req.RefreshToken)
	if err != nil {
		writeError(w, "Invalid or expired refresh token", http.StatusUnauthorized)
		return
	}

	user, err := h.store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, "User not found", http.StatusUnauthorized)
		return
	}
	if !user.Active {
		writeError(w, "Account is disabled", http.StatusForbidden)
		return
	}

	token, err := h.jwtManager.GenerateToken(user)
	if err != nil {
		h.log.Errorf("failed to generate token for %s: %v", user.Username, err)
		writeError(w, "Failed to generate authentication token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, RefreshTokenResponse{Token: token})
}
