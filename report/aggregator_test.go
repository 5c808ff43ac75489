package report

import (
	"strings"
	"testing"
	"time"

	"fuelstation/models"
)

var testProducts = []models.Product{
	{ProductID: "PRD-DIESEL", Name: "Diesel", Category: models.CategoryFuel},
	{ProductID: "PRD-PETROL", Name: "Petrol", Category: models.CategoryFuel},
	{ProductID: "PRD-2T", Name: "2T Oil", Category: models.CategoryLubricant},
}

func reading(productID string, ts time.Time, volume, amount float64) models.Reading {
	return models.Reading{
		ProductID:   productID,
		Timestamp:   ts,
		SalesVolume: volume,
		SalesAmount: amount,
	}
}

func TestBuildSalesSummaryGrouping(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	w := DayWindow(day)

	readings := []models.Reading{
		reading("PRD-DIESEL", day.Add(8*time.Hour), 100, 250),
		reading("PRD-DIESEL", day.Add(16*time.Hour), 50, 125),
		reading("PRD-PETROL", day.Add(9*time.Hour), 80, 280),
		reading("PRD-2T", day.Add(10*time.Hour), 2, 30),
		// outside the window, must be ignored
		reading("PRD-DIESEL", day.Add(-time.Hour), 999, 9999),
		reading("PRD-DIESEL", day.Add(25*time.Hour), 999, 9999),
	}

	s := BuildSalesSummary(readings, testProducts, w)

	if len(s.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(s.Categories))
	}
	fuel := s.Categories[0]
	if fuel.Category != models.CategoryFuel {
		t.Fatalf("expected FUEL first, got %s", fuel.Category)
	}
	if len(fuel.Products) != 2 {
		t.Fatalf("expected 2 fuel products, got %d", len(fuel.Products))
	}
	diesel := fuel.Products[0]
	if diesel.ProductName != "Diesel" {
		t.Fatalf("expected Diesel first in fuel group, got %s", diesel.ProductName)
	}
	if diesel.TotalVolume != 150 || diesel.TotalAmount != 375 {
		t.Fatalf("diesel totals wrong: volume %v amount %v", diesel.TotalVolume, diesel.TotalAmount)
	}
	if diesel.ReadingCount != 2 {
		t.Fatalf("expected 2 diesel readings, got %d", diesel.ReadingCount)
	}
	if fuel.SubtotalVolume != 230 || fuel.SubtotalAmount != 655 {
		t.Fatalf("fuel subtotals wrong: volume %v amount %v", fuel.SubtotalVolume, fuel.SubtotalAmount)
	}

	if s.GrandTotalAmount != 685 {
		t.Fatalf("expected grand total 685, got %v", s.GrandTotalAmount)
	}

	// the grand total must equal the sum of category subtotals
	var subtotals float64
	for _, g := range s.Categories {
		subtotals += g.SubtotalAmount
	}
	if subtotals != s.GrandTotalAmount {
		t.Fatalf("grand total %v != sum of subtotals %v", s.GrandTotalAmount, subtotals)
	}
}

func TestDayWindowCoversDSTTransitions(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}

	days := []time.Time{
		time.Date(2026, time.March, 8, 12, 0, 0, 0, loc),    // 23h day
		time.Date(2026, time.November, 1, 12, 0, 0, 0, loc), // 25h day
	}
	for _, day := range days {
		w := DayWindow(day)
		nextMidnight := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, loc)
		if !w.End.Add(time.Nanosecond).Equal(nextMidnight) {
			t.Fatalf("window for %v ends at %v, want just before %v", day, w.End, nextMidnight)
		}
		if w.End.Day() != day.Day() {
			t.Fatalf("window for %v spills into %v", day, w.End)
		}
		if w.Contains(nextMidnight) {
			t.Fatalf("window for %v must not contain the next midnight", day)
		}
	}
}

func TestBuildSalesSummarySubCentRounding(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	w := DayWindow(day)

	// sub-cent amounts in two categories round up per product row; the
	// grand total must follow the rounded rows, not the raw sum
	readings := []models.Reading{
		reading("PRD-DIESEL", day.Add(8*time.Hour), 1, 0.005),
		reading("PRD-2T", day.Add(9*time.Hour), 1, 0.005),
	}

	s := BuildSalesSummary(readings, testProducts, w)

	var subtotals float64
	for _, g := range s.Categories {
		subtotals += g.SubtotalAmount
	}
	if subtotals != s.GrandTotalAmount {
		t.Fatalf("grand total %v != sum of subtotals %v", s.GrandTotalAmount, subtotals)
	}
	if s.GrandTotalAmount != 0.02 {
		t.Fatalf("expected grand total 0.02 from rounded rows, got %v", s.GrandTotalAmount)
	}
}

func TestBuildSalesSummaryInclusiveBounds(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	w := DayWindow(day)

	readings := []models.Reading{
		reading("PRD-DIESEL", w.Start, 10, 25),
		reading("PRD-DIESEL", w.End, 10, 25),
	}
	s := BuildSalesSummary(readings, testProducts, w)
	if s.GrandTotalVolume != 20 {
		t.Fatalf("window bounds must be inclusive, got volume %v", s.GrandTotalVolume)
	}
}

func TestBuildSalesSummaryUnknownProduct(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	readings := []models.Reading{
		reading("PRD-GONE", day.Add(time.Hour), 5, 10),
	}
	s := BuildSalesSummary(readings, testProducts, DayWindow(day))
	if len(s.Categories) != 1 || s.Categories[0].Category != models.CategoryOther {
		t.Fatalf("unknown products must land in OTHER, got %+v", s.Categories)
	}
}

func TestCompare(t *testing.T) {
	c := Compare(1500, 1200)
	if c.Difference != 300 {
		t.Fatalf("expected difference 300, got %v", c.Difference)
	}
	if c.PercentChange != 25 {
		t.Fatalf("expected 25%% change, got %v", c.PercentChange)
	}

	// zero prior total must not divide
	c = Compare(1500, 0)
	if c.PercentChange != 0 {
		t.Fatalf("expected 0%% change for zero prior total, got %v", c.PercentChange)
	}
	if c.Difference != 1500 {
		t.Fatalf("expected difference 1500, got %v", c.Difference)
	}

	c = Compare(900, 1200)
	if c.Difference != -300 || c.PercentChange != -25 {
		t.Fatalf("expected -300 / -25%%, got %v / %v", c.Difference, c.PercentChange)
	}
}

func TestNewReportID(t *testing.T) {
	id := NewReportID(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	if !strings.HasPrefix(id, "RPT-20260314-") {
		t.Fatalf("unexpected report id: %s", id)
	}
	if len(id) != len("RPT-20260314-")+8 {
		t.Fatalf("unexpected report id length: %s", id)
	}
	if id == NewReportID(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)) {
		t.Fatal("report ids must carry a random suffix")
	}
}

func TestBuildStockReconciliation(t *testing.T) {
	tanks := []models.Tank{
		{TankID: "TNK-1", Name: "Diesel Main", RemainingStock: 5000},
		{TankID: "TNK-2", Name: "Petrol Main", RemainingStock: 3000},
		{TankID: "TNK-3", Name: "Never Dipped", RemainingStock: 800},
	}
	base := time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)
	entries := []models.DipChartEntry{
		// stale measurement, must lose to the later one
		{TankID: "TNK-1", DipLiters: 5100, RecordedAt: base.Add(-24 * time.Hour)},
		{TankID: "TNK-1", DipLiters: 4940, RecordedAt: base},
		// physical above book: a gain, excluded from total loss
		{TankID: "TNK-2", DipLiters: 3050, RecordedAt: base},
	}

	recon := BuildStockReconciliation(tanks, entries)

	if len(recon.Rows) != 2 {
		t.Fatalf("tanks without dips must be excluded, got %d rows", len(recon.Rows))
	}
	r1 := recon.Rows[0]
	if r1.TankID != "TNK-1" || r1.DipLiters != 4940 {
		t.Fatalf("expected latest dip for TNK-1, got %+v", r1)
	}
	if r1.Discrepancy != 60 || r1.Loss != 60 {
		t.Fatalf("expected discrepancy/loss 60, got %v/%v", r1.Discrepancy, r1.Loss)
	}
	r2 := recon.Rows[1]
	if r2.Discrepancy != -50 || r2.Loss != 0 {
		t.Fatalf("gain must report zero loss, got %v/%v", r2.Discrepancy, r2.Loss)
	}
	if recon.TotalLoss != 60 {
		t.Fatalf("expected total loss 60, got %v", recon.TotalLoss)
	}
}

func TestBuildStockReconciliationEmpty(t *testing.T) {
	recon := BuildStockReconciliation(nil, nil)
	if len(recon.Rows) != 0 || recon.TotalLoss != 0 {
		t.Fatalf("expected empty reconciliation, got %+v", recon)
	}
}

func TestRenderSalesExcel(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	readings := []models.Reading{
		reading("PRD-DIESEL", day.Add(8*time.Hour), 100, 250),
	}
	summary := BuildSalesSummary(readings, testProducts, DayWindow(day))
	cmp := Compare(summary.GrandTotalAmount, 0)
	summary.Comparison = &cmp

	settings := &models.Settings{CompanyName: "Test Filling Station", Address: "1 Pump Road"}
	f, err := RenderSalesExcel(summary, StockReconciliation{}, settings)
	if err != nil {
		t.Fatalf("RenderSalesExcel error: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue(salesSheet, "A1")
	if err != nil {
		t.Fatalf("GetCellValue error: %v", err)
	}
	if got != "Test Filling Station" {
		t.Fatalf("expected company header, got %q", got)
	}

	rows, err := f.GetRows(salesSheet)
	if err != nil {
		t.Fatalf("GetRows error: %v", err)
	}
	foundGrandTotal := false
	for _, r := range rows {
		if len(r) > 0 && r[0] == "Grand Total" {
			foundGrandTotal = true
		}
	}
	if !foundGrandTotal {
		t.Fatal("rendered sheet is missing the grand total row")
	}
}
