package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fuelstation/audit"
	"fuelstation/db"
	"fuelstation/dipchart"
	"fuelstation/ledger"
	"fuelstation/middleware"
	"fuelstation/models"
)

// StockHandler covers the physical-stock side: dip measurements, tank
// reconciliation and fuel deliveries.
type StockHandler struct {
	store       *db.Store
	workflow    *ledger.Workflow
	calibration *dipchart.Table
	audit       *audit.Recorder
	log         *logrus.Logger
}

func NewStockHandler(store *db.Store, workflow *ledger.Workflow, calibration *dipchart.Table, rec *audit.Recorder, log *logrus.Logger) *StockHandler {
	return &StockHandler{
		store:       store,
		workflow:    workflow,
		calibration: calibration,
		audit:       rec,
		log:         log,
	}
}

type RecordDipRequest struct {
	TankID    string  `json:"tank_id" validate:"required"`
	DipMM     float64 `json:"dip_mm" validate:"gte=0"`
	Reconcile bool    `json:"reconcile"` // also set book stock to the measured volume
}

type RecordDipResponse struct {
	Entry       models.DipChartEntry `json:"entry"`
	Tank        *models.Tank         `json:"tank,omitempty"`
	Discrepancy *float64             `json:"discrepancy,omitempty"`
}

// RecordDip converts a dipstick depth to liters via the calibration table
// and appends a dip entry; with reconcile set it also aligns the tank's
// book stock to the measurement.
func (h *StockHandler) RecordDip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req RecordDipRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.store.GetTank(r.Context(), req.TankID); err != nil {
		writeLedgerError(w, err)
		return
	}

	liters := h.calibration.VolumeAt(req.DipMM)
	entry := models.DipChartEntry{
		EntryID:    "DIP-" + uuid.NewString(),
		TankID:     req.TankID,
		DipMM:      req.DipMM,
		DipInches:  req.DipMM / dipchart.MMPerInch,
		DipLiters:  liters,
		RecordedBy: user.UserID,
		RecordedAt: time.Now(),
	}
	if err := h.store.CreateDipEntry(r.Context(), &entry); err != nil {
		h.log.Errorf("failed to create dip entry: %v", err)
		writeError(w, "Failed to record dip entry", http.StatusInternalServerError)
		return
	}

	resp := RecordDipResponse{Entry: entry}
	if req.Reconcile {
		tank, discrepancy, err := h.workflow.ReconcileTank(r.Context(), req.TankID, liters)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		resp.Tank = tank
		resp.Discrepancy = &discrepancy
		h.audit.Event(r.Context(), user.UserID, "TANK_RECONCILE",
			fmt.Sprintf("tank %s reconciled to %.1f ltr (discrepancy %.1f)", req.TankID, tank.RemainingStock, discrepancy))
	} else {
		h.audit.Event(r.Context(), user.UserID, "DIP_RECORD",
			fmt.Sprintf("tank %s dipped at %.0f mm = %.1f ltr", req.TankID, req.DipMM, liters))
	}

	writeJSON(w, resp)
}

// ListDips returns the dip history of one tank (tank query param) or all
// tanks.
func (h *StockHandler) ListDips(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		entries []models.DipChartEntry
		err     error
	)
	if tankID := r.URL.Query().Get("tank"); tankID != "" {
		entries, err = h.store.GetDipEntriesByTank(r.Context(), tankID)
	} else {
		entries, err = h.store.GetAllDipEntries(r.Context())
	}
	if err != nil {
		h.log.Errorf("failed to get dip entries: %v", err)
		writeError(w, "Failed to retrieve dip entries", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

type RecordDeliveryRequest struct {
	TankID   string  `json:"tank_id" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
}

// RecordDelivery adds delivered fuel to a tank's book stock.
func (h *StockHandler) RecordDelivery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req RecordDeliveryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tank, err := h.workflow.RecordDelivery(r.Context(), req.TankID, req.Quantity)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	h.audit.Event(r.Context(), user.UserID, "TANK_DELIVERY",
		fmt.Sprintf("tank %s filled with %.1f ltr, now %.1f ltr", req.TankID, req.Quantity, tank.RemainingStock))

	writeJSON(w, tank)
}
