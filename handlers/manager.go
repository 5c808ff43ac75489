package handlers

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"fuelstation/audit"
	"fuelstation/auth"
	"fuelstation/db"
	"fuelstation/middleware"
	"fuelstation/models"
)

// ManagerHandler covers the shift-supervision surface: resetting attendant
// passwords and watching tank stock against alert thresholds.
type ManagerHandler struct {
	store *db.Store
	audit *audit.Recorder
	log   *logrus.Logger
}

func NewManagerHandler(store *db.Store, rec *audit.Recorder, log *logrus.Logger) *ManagerHandler {
	return &ManagerHandler{store: store, audit: rec, log: log}
}

type ResetPasswordRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// ResetPassword sets a new password for another user. Managers may only
// reset attendant passwords; admins may reset anyone's.
func (h *ManagerHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := auth.ValidatePasswordStrength(req.NewPassword); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	target, err := h.store.GetUser(r.Context(), req.UserID)
	if err != nil {
		writeError(w, "User not found", http.StatusNotFound)
		return
	}

	if actor.Role == models.RoleManager && target.Role != models.RoleAttendant {
		writeError(w, "Managers can only reset attendant passwords", http.StatusForbidden)
		return
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.log.Errorf("failed to hash password: %v", err)
		writeError(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}
	if err := h.store.StorePasswordHash(r.Context(), req.UserID, passwordHash); err != nil {
		h.log.Errorf("failed to store password: %v", err)
		writeError(w, "Failed to update password", http.StatusInternalServerError)
		return
	}

	h.audit.Event(r.Context(), actor.UserID, "PASSWORD_RESET", fmt.Sprintf("user %s", target.Username))
	writeJSON(w, map[string]string{"message": "Password reset successfully"})
}

// TankAlert is one tank whose book stock has fallen to or below its alert
// threshold.
type TankAlert struct {
	TankID         string  `json:"tank_id"`
	Name           string  `json:"name"`
	ProductID      string  `json:"product_id"`
	RemainingStock float64 `json:"remaining_stock"`
	AlertThreshold float64 `json:"alert_threshold"`
	Capacity       float64 `json:"capacity"`
}

// LowStockTanks lists tanks at or below their alert threshold. Tanks with
// no threshold configured are skipped.
func (h *ManagerHandler) LowStockTanks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tanks, err := h.store.GetAllTanks(r.Context())
	if err != nil {
		h.log.Errorf("failed to get tanks: %v", err)
		writeError(w, "Failed to retrieve tanks", http.StatusInternalServerError)
		return
	}

	alerts := []TankAlert{}
	for _, t := range tanks {
		if t.AlertThreshold <= 0 || t.RemainingStock > t.AlertThreshold {
			continue
		}
		alerts = append(alerts, TankAlert{
			TankID:         t.TankID,
			Name:           t.Name,
			ProductID:      t.ProductID,
			RemainingStock: t.RemainingStock,
			AlertThreshold: t.AlertThreshold,
			Capacity:       t.Capacity,
		})
	}

	writeJSON(w, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}
