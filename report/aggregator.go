// Package report builds the grouped sales summaries and the dip-chart
// stock reconciliation over snapshots of the station's collections. All
// builders are read-only over their inputs.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fuelstation/models"
)

// Window is an inclusive timestamp range compared against Reading.Timestamp.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether ts falls inside the window, bounds included.
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.Start) && !ts.After(w.End)
}

// DayWindow is the inclusive window covering one calendar day. The end is
// anchored to the next calendar midnight, not start+24h, so days shortened
// or stretched by a DST transition are still covered exactly.
func DayWindow(day time.Time) Window {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, day.Location()).Add(-time.Nanosecond)
	return Window{Start: start, End: end}
}

// ProductRow is the per-product aggregation of the filtered readings.
// The summed meter readings are diagnostic only.
type ProductRow struct {
	ProductID           string                 `json:"product_id"`
	ProductName         string                 `json:"product_name"`
	Category            models.ProductCategory `json:"category"`
	ReadingCount        int                    `json:"reading_count"`
	TotalVolume         float64                `json:"total_volume"`
	TotalAmount         float64                `json:"total_amount"`
	SumPreviousReadings float64                `json:"sum_previous_readings"`
	SumCurrentReadings  float64                `json:"sum_current_readings"`
}

// CategoryGroup buckets product rows by category with subtotals.
type CategoryGroup struct {
	Category       models.ProductCategory `json:"category"`
	Products       []ProductRow           `json:"products"`
	SubtotalVolume float64                `json:"subtotal_volume"`
	SubtotalAmount float64                `json:"subtotal_amount"`
}

// Comparison is the day-over-day block of a daily report.
type Comparison struct {
	PreviousTotal float64 `json:"previous_total"`
	Difference    float64 `json:"difference"`
	PercentChange float64 `json:"percent_change"`
}

// SalesSummary is the nested report structure handed to the renderers.
type SalesSummary struct {
	ReportID         string         `json:"report_id"`
	Window           Window         `json:"window"`
	Categories       []CategoryGroup `json:"categories"`
	GrandTotalVolume float64        `json:"grand_total_volume"`
	GrandTotalAmount float64        `json:"grand_total_amount"`
	Comparison       *Comparison    `json:"comparison,omitempty"`
}

// NewReportID composes a report identifier from a date stamp and a random
// suffix, e.g. RPT-20260314-9f86d081.
func NewReportID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("RPT-%s-%s", now.Format("20060102"), suffix)
}

// BuildSalesSummary filters readings to the window, groups them by product,
// buckets products by category, and totals everything up.
func BuildSalesSummary(readings []models.Reading, products []models.Product, w Window) SalesSummary {
	productByID := make(map[string]models.Product, len(products))
	for _, p := range products {
		productByID[p.ProductID] = p
	}

	type acc struct {
		row    ProductRow
		volume decimal.Decimal
		amount decimal.Decimal
	}
	rows := make(map[string]*acc)

	for _, r := range readings {
		if !w.Contains(r.Timestamp) {
			continue
		}
		a, ok := rows[r.ProductID]
		if !ok {
			row := ProductRow{ProductID: r.ProductID}
			if p, known := productByID[r.ProductID]; known {
				row.ProductName = p.Name
				row.Category = p.Category
			} else {
				row.ProductName = r.ProductID
				row.Category = models.CategoryOther
			}
			a = &acc{row: row}
			rows[r.ProductID] = a
		}
		a.row.ReadingCount++
		a.row.SumPreviousReadings += r.PreviousReading
		a.row.SumCurrentReadings += r.CurrentReading
		a.volume = a.volume.Add(decimal.NewFromFloat(r.SalesVolume))
		a.amount = a.amount.Add(decimal.NewFromFloat(r.SalesAmount))
	}

	groups := make(map[models.ProductCategory]*CategoryGroup)
	for _, a := range rows {
		a.row.TotalVolume = a.volume.InexactFloat64()
		a.row.TotalAmount = a.amount.Round(2).InexactFloat64()

		g, ok := groups[a.row.Category]
		if !ok {
			g = &CategoryGroup{Category: a.row.Category}
			groups[a.row.Category] = g
		}
		g.Products = append(g.Products, a.row)
	}

	summary := SalesSummary{
		ReportID: NewReportID(time.Now()),
		Window:   w,
	}

	// Subtotals and grand totals sum the rounded row totals, so the grand
	// total always equals the sum of the category subtotals.
	grandVolume := decimal.Zero
	grandAmount := decimal.Zero
	for _, g := range groups {
		sort.Slice(g.Products, func(i, j int) bool {
			return g.Products[i].ProductName < g.Products[j].ProductName
		})
		subVolume := decimal.Zero
		subAmount := decimal.Zero
		for _, row := range g.Products {
			subVolume = subVolume.Add(decimal.NewFromFloat(row.TotalVolume))
			subAmount = subAmount.Add(decimal.NewFromFloat(row.TotalAmount))
		}
		g.SubtotalVolume = subVolume.InexactFloat64()
		g.SubtotalAmount = subAmount.Round(2).InexactFloat64()
		grandVolume = grandVolume.Add(subVolume)
		grandAmount = grandAmount.Add(subAmount)
		summary.Categories = append(summary.Categories, *g)
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		return summary.Categories[i].Category < summary.Categories[j].Category
	})
	summary.GrandTotalVolume = grandVolume.InexactFloat64()
	summary.GrandTotalAmount = grandAmount.Round(2).InexactFloat64()

	return summary
}

// Compare builds the day-over-day block. When the prior day's total is
// zero the percent change is reported as zero rather than dividing by it.
func Compare(todayTotal, yesterdayTotal float64) Comparison {
	diff := decimal.NewFromFloat(todayTotal).
		Sub(decimal.NewFromFloat(yesterdayTotal)).
		Round(2).
		InexactFloat64()
	c := Comparison{PreviousTotal: yesterdayTotal, Difference: diff}
	if yesterdayTotal != 0 {
		c.PercentChange = decimal.NewFromFloat(diff).
			Div(decimal.NewFromFloat(yesterdayTotal)).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			InexactFloat64()
	}
	return c
}

// TankReconciliationRow compares a tank's book stock against its most
// recent dip measurement.
type TankReconciliationRow struct {
	TankID        string    `json:"tank_id"`
	TankName      string    `json:"tank_name"`
	BookStock     float64   `json:"book_stock"`
	DipLiters     float64   `json:"dip_liters"`
	DipRecordedAt time.Time `json:"dip_recorded_at"`
	Discrepancy   float64   `json:"discrepancy"` // book minus physical
	Loss          float64   `json:"loss"`        // max(discrepancy, 0)
}

// StockReconciliation is the gain/loss table across all dipped tanks.
type StockReconciliation struct {
	Rows      []TankReconciliationRow `json:"rows"`
	TotalLoss float64                 `json:"total_loss"`
}

// BuildStockReconciliation matches each tank with its latest dip entry and
// totals the losses. Book stock above the physical measurement counts as
// loss; an unreported gain (physical above book) is listed but excluded
// from the total. Tanks that have never been dipped are skipped.
func BuildStockReconciliation(tanks []models.Tank, entries []models.DipChartEntry) StockReconciliation {
	latest := make(map[string]models.DipChartEntry)
	for _, e := range entries {
		cur, ok := latest[e.TankID]
		if !ok || e.RecordedAt.After(cur.RecordedAt) {
			latest[e.TankID] = e
		}
	}

	var recon StockReconciliation
	totalLoss := decimal.Zero
	for _, tank := range tanks {
		dip, ok := latest[tank.TankID]
		if !ok {
			continue
		}
		discrepancy := decimal.NewFromFloat(tank.RemainingStock).
			Sub(decimal.NewFromFloat(dip.DipLiters)).
			Round(1).
			InexactFloat64()
		loss := discrepancy
		if loss < 0 {
			loss = 0
		}
		recon.Rows = append(recon.Rows, TankReconciliationRow{
			TankID:        tank.TankID,
			TankName:      tank.Name,
			BookStock:     tank.RemainingStock,
			DipLiters:     dip.DipLiters,
			DipRecordedAt: dip.RecordedAt,
			Discrepancy:   discrepancy,
			Loss:          loss,
		})
		totalLoss = totalLoss.Add(decimal.NewFromFloat(loss))
	}
	sort.Slice(recon.Rows, func(i, j int) bool {
		return recon.Rows[i].TankID < recon.Rows[j].TankID
	})
	recon.TotalLoss = totalLoss.InexactFloat64()
	return recon
}
