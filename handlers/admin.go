package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"fuelstation/audit"
	"fuelstation/auth"
	"fuelstation/db"
	"fuelstation/middleware"
	"fuelstation/models"
)

// AdminHandler covers user management and the company settings document.
type AdminHandler struct {
	store *db.Store
	audit *audit.Recorder
	log   *logrus.Logger
}

func NewAdminHandler(store *db.Store, rec *audit.Recorder, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{store: store, audit: rec, log: log}
}

// --- User Management ---

type CreateUserRequest struct {
	Username string          `json:"username" validate:"required,min=3"`
	Password string          `json:"password" validate:"required"`
	FullName string          `json:"full_name"`
	Role     models.UserRole `json:"role" validate:"required,oneof=ADMIN MANAGER ATTENDANT"`
}

type UpdateUserRequest struct {
	UserID   string          `json:"user_id" validate:"required"`
	FullName string          `json:"full_name"`
	Role     models.UserRole `json:"role" validate:"omitempty,oneof=ADMIN MANAGER ATTENDANT"`
	Password string          `json:"password"`
	Active   *bool           `json:"active"`
}

type DeleteUserRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// GetUsers returns all users.
func (h *AdminHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	users, err := h.store.GetAllUsers(r.Context())
	if err != nil {
		h.log.Errorf("failed to get users: %v", err)
		writeError(w, "Failed to retrieve users", http.StatusInternalServerError)
		return
	}
	writeJSON(w, users)
}

// CreateUser creates a user and stores its password hash.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	adminUser, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing, _ := h.store.GetUserByUsername(r.Context(), req.Username)
	if existing != nil {
		writeError(w, "Username already exists", http.StatusConflict)
		return
	}

	// hash before any document is written so a hash failure cannot leave
	// an account that exists but can never log in
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Errorf("failed to hash password: %v", err)
		writeError(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		UserID:    fmt.Sprintf("user-%s", req.Username),
		Username:  req.Username,
		FullName:  req.FullName,
		Role:      req.Role,
		Active:    true,
		CreatedAt: time.Now(),
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		h.log.Errorf("failed to create user: %v", err)
		writeError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	if err := h.store.StorePasswordHash(r.Context(), user.UserID, passwordHash); err != nil {
		h.log.Errorf("failed to store password: %v", err)
		writeError(w, "Failed to store password", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), adminUser.UserID, "USER_CREATE",
		fmt.Sprintf("user %s (role %s)", user.Username, user.Role))
	writeJSON(w, user)
}

// UpdateUser changes a user's profile, role, active flag or password.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	adminUser, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.store.GetUser(r.Context(), req.UserID)
	if err != nil {
		writeError(w, "User not found", http.StatusNotFound)
		return
	}

	// Demoting or deactivating yourself locks you out of this endpoint.
	if req.UserID == adminUser.UserID {
		if req.Role != "" && req.Role != models.RoleAdmin {
			writeError(w, "Cannot change your own role", http.StatusBadRequest)
			return
		}
		if req.Active != nil && !*req.Active {
			writeError(w, "Cannot deactivate your own account", http.StatusBadRequest)
			return
		}
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		h.log.Errorf("failed to update user: %v", err)
		writeError(w, "Failed to update user", http.StatusInternalServerError)
		return
	}

	if req.Password != "" {
		if err := auth.ValidatePasswordStrength(req.Password); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		passwordHash, err := auth.HashPassword(req.Password)
		if err != nil {
			h.log.Errorf("failed to hash password: %v", err)
			writeError(w, "Failed to hash password", http.StatusInternalServerError)
			return
		}
		if err := h.store.StorePasswordHash(r.Context(), user.UserID, passwordHash); err != nil {
			h.log.Errorf("failed to store password: %v", err)
			writeError(w, "Failed to store password", http.StatusInternalServerError)
			return
		}
	}

	h.audit.Event(r.Context(), adminUser.UserID, "USER_UPDATE", fmt.Sprintf("user %s", user.Username))
	writeJSON(w, user)
}

// DeleteUser removes a user. Self-deletion is rejected.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	adminUser, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req DeleteUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if req.UserID == adminUser.UserID {
		writeError(w, "Cannot delete your own account", http.StatusBadRequest)
		return
	}

	user, err := h.store.GetUser(r.Context(), req.UserID)
	if err != nil {
		writeError(w, "User not found", http.StatusNotFound)
		return
	}

	if err := h.store.DeleteUser(r.Context(), req.UserID); err != nil {
		h.log.Errorf("failed to delete user: %v", err)
		writeError(w, "Failed to delete user", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), adminUser.UserID, "USER_DELETE", fmt.Sprintf("user %s", user.Username))
	writeJSON(w, map[string]string{"message": "User deleted successfully"})
}

// --- Settings ---

type SettingsRequest struct {
	CompanyName string `json:"company_name" validate:"required"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email" validate:"omitempty,email"`
	LogoURL     string `json:"logo_url"`
	Currency    string `json:"currency"`
}

// GetSettings returns the company profile, defaulting to an empty profile
// when none has been saved yet.
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		settings = &models.Settings{}
	}
	writeJSON(w, settings)
}

// SaveSettings replaces the company profile document.
func (h *AdminHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	adminUser, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req SettingsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	settings := &models.Settings{
		CompanyName: req.CompanyName,
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       req.Email,
		LogoURL:     req.LogoURL,
		Currency:    req.Currency,
	}
	if err := h.store.SaveSettings(r.Context(), settings); err != nil {
		h.log.Errorf("failed to save settings: %v", err)
		writeError(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), adminUser.UserID, "SETTINGS_SAVE",
		fmt.Sprintf("company profile %q", settings.CompanyName))
	writeJSON(w, settings)
}
