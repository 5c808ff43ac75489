package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"fuelstation/audit"
	"fuelstation/db"
	"fuelstation/ledger"
	"fuelstation/middleware"
)

type ReadingHandler struct {
	store    *db.Store
	workflow *ledger.Workflow
	audit    *audit.Recorder
	log      *logrus.Logger
}

func NewReadingHandler(store *db.Store, workflow *ledger.Workflow, rec *audit.Recorder, log *logrus.Logger) *ReadingHandler {
	return &ReadingHandler{
		store:    store,
		workflow: workflow,
		audit:    rec,
		log:      log,
	}
}

type SubmitReadingRequest struct {
	NozzleID       string   `json:"nozzle_id" validate:"required"`
	CurrentReading float64  `json:"current_reading" validate:"gte=0"`
	NewSalesPrice  *float64 `json:"new_sales_price,omitempty"`
}

// Submit records a nozzle meter reading through the stock ledger workflow.
func (h *ReadingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req SubmitReadingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	reading, err := h.workflow.SubmitReading(r.Context(), ledger.Submission{
		NozzleID:       req.NozzleID,
		CurrentReading: req.CurrentReading,
		NewSalesPrice:  req.NewSalesPrice,
		RecordedBy:     user.UserID,
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	h.audit.Event(r.Context(), user.UserID, "READING_SUBMIT",
		fmt.Sprintf("nozzle %s sold %.1f ltr for %.2f", reading.NozzleID, reading.SalesVolume, reading.SalesAmount))

	writeJSON(w, reading)
}

// parseWindow reads from/to query params (YYYY-MM-DD, inclusive). Defaults
// to the current day.
func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	const layout = "2006-01-02"
	now := time.Now()
	// end of day is the next calendar midnight minus a nanosecond; DST-safe
	// unlike start+24h
	endOfDay := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location()).Add(-time.Nanosecond)
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := endOfDay(now)

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.ParseInLocation(layout, from, now.Location())
		if err != nil {
			return start, end, fmt.Errorf("invalid from date: %s", from)
		}
		start = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.ParseInLocation(layout, to, now.Location())
		if err != nil {
			return start, end, fmt.Errorf("invalid to date: %s", to)
		}
		end = endOfDay(t)
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("to date precedes from date")
	}
	return start, end, nil
}

// List returns readings in the requested window.
func (h *ReadingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	readings, err := h.store.GetReadingsBetween(r.Context(), start, end)
	if err != nil {
		h.log.Errorf("failed to get readings: %v", err)
		writeError(w, "Failed to retrieve readings", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"readings": readings,
		"count":    len(readings),
	})
}

// ExportCSV streams the window's readings as a CSV download.
func (h *ReadingHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	readings, err := h.store.GetReadingsBetween(r.Context(), start, end)
	if err != nil {
		h.log.Errorf("failed to get readings: %v", err)
		writeError(w, "Failed to retrieve readings", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("readings_%s.csv", time.Now().Format("2006-01-02_15-04-05"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{
		"Reading ID",
		"Nozzle",
		"Product",
		"Tank",
		"Previous",
		"Current",
		"Volume (ltr)",
		"Unit Price",
		"Amount",
		"Recorded By",
		"Timestamp",
	}
	if err := writer.Write(header); err != nil {
		h.log.Errorf("failed to write CSV header: %v", err)
		return
	}

	for _, rd := range readings {
		row := []string{
			rd.ReadingID,
			rd.NozzleID,
			rd.ProductID,
			rd.TankID,
			fmt.Sprintf("%.3f", rd.PreviousReading),
			fmt.Sprintf("%.3f", rd.CurrentReading),
			fmt.Sprintf("%.1f", rd.SalesVolume),
			fmt.Sprintf("%.2f", rd.UnitPrice),
			fmt.Sprintf("%.2f", rd.SalesAmount),
			rd.RecordedBy,
			rd.Timestamp.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			h.log.Errorf("failed to write CSV row: %v", err)
			return
		}
	}

	h.audit.Event(r.Context(), user.UserID, "READINGS_EXPORT",
		fmt.Sprintf("exported %d readings", len(readings)))
}
