package ledger

import (
	"errors"
	"testing"
	"time"

	"fuelstation/models"
)

func fixtures() (models.Nozzle, models.Product, models.Tank) {
	nozzle := models.Nozzle{
		NozzleID:    "NZ-1",
		DispenserID: "DSP-1",
		ProductID:   "PRD-DIESEL",
		TankID:      "TNK-1",
		LastReading: 1000,
		TotalSales:  50000,
	}
	product := models.Product{
		ProductID:  "PRD-DIESEL",
		Name:       "Diesel",
		Category:   models.CategoryFuel,
		SalesPrice: 2.5,
	}
	tank := models.Tank{
		TankID:         "TNK-1",
		ProductID:      "PRD-DIESEL",
		Capacity:       10000,
		RemainingStock: 400,
	}
	return nozzle, product, tank
}

func TestPrepareComputesSale(t *testing.T) {
	nozzle, product, tank := fixtures()
	now := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	res, err := Prepare(Submission{
		NozzleID:       "NZ-1",
		CurrentReading: 1120,
		RecordedBy:     "user-anna",
	}, nozzle, product, tank, now)
	if err != nil {
		t.Fatalf("Prepare error: %v", err)
	}

	r := res.Reading
	if r.PreviousReading != 1000 || r.CurrentReading != 1120 {
		t.Fatalf("unexpected reading bounds: %v..%v", r.PreviousReading, r.CurrentReading)
	}
	if r.SalesVolume != 120 {
		t.Fatalf("expected sales volume 120, got %v", r.SalesVolume)
	}
	if r.UnitPrice != 2.5 {
		t.Fatalf("expected effective price 2.5, got %v", r.UnitPrice)
	}
	if r.SalesAmount != 300 {
		t.Fatalf("expected sales amount 300, got %v", r.SalesAmount)
	}
	if r.TankID != "TNK-1" || r.DispenserID != "DSP-1" || r.ProductID != "PRD-DIESEL" {
		t.Fatalf("reading lost nozzle linkage: %+v", r)
	}
	if !r.Timestamp.Equal(now) {
		t.Fatalf("expected timestamp %v, got %v", now, r.Timestamp)
	}

	// exactly-once effects on the dependent documents
	if res.Tank.RemainingStock != 400-120 {
		t.Fatalf("expected tank stock 280, got %v", res.Tank.RemainingStock)
	}
	if res.Nozzle.LastReading != 1120 {
		t.Fatalf("expected nozzle last reading 1120, got %v", res.Nozzle.LastReading)
	}
	if res.Nozzle.TotalSales != 50300 {
		t.Fatalf("expected nozzle total sales 50300, got %v", res.Nozzle.TotalSales)
	}
	if res.Product != nil {
		t.Fatalf("expected no product update without price override, got %+v", res.Product)
	}
}

func TestPrepareDecimalAmount(t *testing.T) {
	nozzle, product, tank := fixtures()
	product.SalesPrice = 1.13
	// 30.1 ltr * 1.13 = 34.013 -> 34.01 at 2dp
	res, err := Prepare(Submission{NozzleID: "NZ-1", CurrentReading: 1030.1}, nozzle, product, tank, time.Now())
	if err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	if res.Reading.SalesAmount != 34.01 {
		t.Fatalf("expected amount 34.01, got %v", res.Reading.SalesAmount)
	}
}

func TestPrepareRejectsReadingOrder(t *testing.T) {
	nozzle, product, tank := fixtures()

	_, err := Prepare(Submission{NozzleID: "NZ-1", CurrentReading: 999.9}, nozzle, product, tank, time.Now())
	var orderErr *InvalidReadingOrderError
	if !errors.As(err, &orderErr) {
		t.Fatalf("expected InvalidReadingOrderError, got %v", err)
	}
	if orderErr.Previous != 1000 || orderErr.Current != 999.9 {
		t.Fatalf("unexpected error detail: %+v", orderErr)
	}
}

func TestPrepareAllowsEqualReading(t *testing.T) {
	nozzle, product, tank := fixtures()

	res, err := Prepare(Submission{NozzleID: "NZ-1", CurrentReading: 1000}, nozzle, product, tank, time.Now())
	if err != nil {
		t.Fatalf("Prepare error for zero-volume reading: %v", err)
	}
	if res.Reading.SalesVolume != 0 || res.Reading.SalesAmount != 0 {
		t.Fatalf("expected zero sale, got %+v", res.Reading)
	}
	if res.Tank.RemainingStock != tank.RemainingStock {
		t.Fatalf("zero-volume reading must not move stock: %v", res.Tank.RemainingStock)
	}
}

func TestPrepareRejectsInsufficientStock(t *testing.T) {
	nozzle, product, tank := fixtures()
	tank.RemainingStock = 100

	_, err := Prepare(Submission{NozzleID: "NZ-1", CurrentReading: 1150}, nozzle, product, tank, time.Now())
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 100 || stockErr.Required != 150 {
		t.Fatalf("expected available 100 / required 150, got %+v", stockErr)
	}
	if stockErr.TankID != "TNK-1" {
		t.Fatalf("error lost tank id: %+v", stockErr)
	}
}

func TestPreparePriceOverride(t *testing.T) {
	nozzle, product, tank := fixtures()
	newPrice := 2.75

	res, err := Prepare(Submission{
		NozzleID:       "NZ-1",
		CurrentReading: 1100,
		NewSalesPrice:  &newPrice,
	}, nozzle, product, tank, time.Now())
	if err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	if res.Reading.UnitPrice != 2.75 {
		t.Fatalf("expected override price 2.75, got %v", res.Reading.UnitPrice)
	}
	if res.Reading.SalesAmount != 275 {
		t.Fatalf("expected amount 275, got %v", res.Reading.SalesAmount)
	}
	if res.Product == nil || res.Product.SalesPrice != 2.75 {
		t.Fatalf("expected product price update to 2.75, got %+v", res.Product)
	}
}

func TestPrepareSamePriceOverrideSkipsProductWrite(t *testing.T) {
	nozzle, product, tank := fixtures()
	samePrice := product.SalesPrice

	res, err := Prepare(Submission{
		NozzleID:       "NZ-1",
		CurrentReading: 1100,
		NewSalesPrice:  &samePrice,
	}, nozzle, product, tank, time.Now())
	if err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	if res.Product != nil {
		t.Fatalf("override equal to current price should not rewrite the product")
	}
}

func TestPrepareRejectsNonPositiveOverride(t *testing.T) {
	nozzle, product, tank := fixtures()
	zero := 0.0

	_, err := Prepare(Submission{
		NozzleID:       "NZ-1",
		CurrentReading: 1100,
		NewSalesPrice:  &zero,
	}, nozzle, product, tank, time.Now())
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
