package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"fuelstation/audit"
	"fuelstation/db"
	"fuelstation/middleware"
	"fuelstation/models"
	"fuelstation/report"
)

// ReportHandler serves the aggregated sales summaries, the daily report
// with its day-over-day comparison, the dip reconciliation table and the
// Excel rendering of all three.
type ReportHandler struct {
	store *db.Store
	audit *audit.Recorder
	log   *logrus.Logger
}

func NewReportHandler(store *db.Store, rec *audit.Recorder, log *logrus.Logger) *ReportHandler {
	return &ReportHandler{store: store, audit: rec, log: log}
}

func (h *ReportHandler) buildSummary(r *http.Request, window report.Window) (report.SalesSummary, error) {
	readings, err := h.store.GetReadingsBetween(r.Context(), window.Start, window.End)
	if err != nil {
		return report.SalesSummary{}, fmt.Errorf("failed to get readings: %w", err)
	}
	products, err := h.store.GetAllProducts(r.Context())
	if err != nil {
		return report.SalesSummary{}, fmt.Errorf("failed to get products: %w", err)
	}
	return report.BuildSalesSummary(readings, products, window), nil
}

// Sales returns the grouped sales summary for an arbitrary from/to window.
func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.buildSummary(r, report.Window{Start: start, End: end})
	if err != nil {
		h.log.Errorf("sales report failed: %v", err)
		writeError(w, "Failed to build sales report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, summary)
}

// Daily returns a single day's summary with the comparison against the
// previous day. The day defaults to today and can be overridden with
// ?date=YYYY-MM-DD.
func (h *ReportHandler) Daily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	day := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, day.Location())
		if err != nil {
			writeError(w, "invalid date: "+d, http.StatusBadRequest)
			return
		}
		day = parsed
	}

	today := report.DayWindow(day)
	yesterday := report.DayWindow(day.AddDate(0, 0, -1))

	// One fetch covers both days.
	readings, err := h.store.GetReadingsBetween(r.Context(), yesterday.Start, today.End)
	if err != nil {
		h.log.Errorf("daily report failed: %v", err)
		writeError(w, "Failed to build daily report", http.StatusInternalServerError)
		return
	}
	products, err := h.store.GetAllProducts(r.Context())
	if err != nil {
		h.log.Errorf("daily report failed: %v", err)
		writeError(w, "Failed to build daily report", http.StatusInternalServerError)
		return
	}

	summary := report.BuildSalesSummary(readings, products, today)
	previous := report.BuildSalesSummary(readings, products, yesterday)
	cmp := report.Compare(summary.GrandTotalAmount, previous.GrandTotalAmount)
	summary.Comparison = &cmp

	writeJSON(w, summary)
}

// Reconciliation returns the gain/loss table built from each tank's book
// stock and its most recent dip reading.
func (h *ReportHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tanks, err := h.store.GetAllTanks(r.Context())
	if err != nil {
		h.log.Errorf("reconciliation report failed: %v", err)
		writeError(w, "Failed to build reconciliation report", http.StatusInternalServerError)
		return
	}
	entries, err := h.store.GetAllDipEntries(r.Context())
	if err != nil {
		h.log.Errorf("reconciliation report failed: %v", err)
		writeError(w, "Failed to build reconciliation report", http.StatusInternalServerError)
		return
	}

	writeJSON(w, report.BuildStockReconciliation(tanks, entries))
}

// ExportExcel streams the sales summary and the reconciliation table as a
// single .xlsx workbook.
func (h *ReportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
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
	window := report.Window{Start: start, End: end}

	summary, err := h.buildSummary(r, window)
	if err != nil {
		h.log.Errorf("excel export failed: %v", err)
		writeError(w, "Failed to build sales report", http.StatusInternalServerError)
		return
	}

	tanks, err := h.store.GetAllTanks(r.Context())
	if err != nil {
		h.log.Errorf("excel export failed: %v", err)
		writeError(w, "Failed to build reconciliation report", http.StatusInternalServerError)
		return
	}
	entries, err := h.store.GetAllDipEntries(r.Context())
	if err != nil {
		h.log.Errorf("excel export failed: %v", err)
		writeError(w, "Failed to build reconciliation report", http.StatusInternalServerError)
		return
	}
	recon := report.BuildStockReconciliation(tanks, entries)

	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		settings = &models.Settings{CompanyName: "Fuel Station"}
	}

	f, err := report.RenderSalesExcel(summary, recon, settings)
	if err != nil {
		h.log.Errorf("excel render failed: %v", err)
		writeError(w, "Failed to render report", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("sales_report_%s_%s.xlsx",
		window.Start.Format("20060102"), window.End.Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if err := f.Write(w); err != nil {
		h.log.Errorf("excel write failed: %v", err)
		return
	}

	h.audit.Event(r.Context(), user.UserID, "REPORT_EXPORT",
		fmt.Sprintf("sales report %s (%s to %s)", summary.ReportID,
			window.Start.Format("2006-01-02"), window.End.Format("2006-01-02")))
}
