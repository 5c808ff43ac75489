// Package ledger implements the stock ledger: the nozzle-reading workflow
// that turns a meter reading into a sale event and a tank stock decrement,
// plus tank deliveries and dip reconciliation. All multi-document updates
// run inside a single Firestore transaction so that concurrent submissions
// against the same tank or nozzle cannot double-spend stock.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"fuelstation/models"
)

// Submission is one nozzle meter reading entered by an attendant.
// NewSalesPrice, when set, overrides the product's current price for this
// sale and updates the product document in the same transaction.
type Submission struct {
	NozzleID       string
	CurrentReading float64
	NewSalesPrice  *float64
	RecordedBy     string
}

// Result carries the updated document states computed from a submission.
// Product is nil unless a price override was supplied.
type Result struct {
	Reading models.Reading
	Nozzle  models.Nozzle
	Tank    models.Tank
	Product *models.Product
}

// Prepare validates a submission against current nozzle/product/tank state
// and computes the derived sale. It performs no I/O; the workflow calls it
// inside the transaction so the checks hold at commit time.
func Prepare(sub Submission, nozzle models.Nozzle, product models.Product, tank models.Tank, now time.Time) (*Result, error) {
	if sub.CurrentReading < nozzle.LastReading {
		return nil, &InvalidReadingOrderError{Previous: nozzle.LastReading, Current: sub.CurrentReading}
	}
	if sub.NewSalesPrice != nil && *sub.NewSalesPrice <= 0 {
		return nil, &ValidationError{Field: "new_sales_price", Message: "price override must be positive"}
	}

	salesVolume := sub.CurrentReading - nozzle.LastReading
	if salesVolume > tank.RemainingStock {
		return nil, &InsufficientStockError{
			TankID:    tank.TankID,
			Available: tank.RemainingStock,
			Required:  salesVolume,
		}
	}

	effectivePrice := product.SalesPrice
	if sub.NewSalesPrice != nil {
		effectivePrice = *sub.NewSalesPrice
	}

	// Money math goes through decimal so 12.345 ltr at odd prices does not
	// accumulate binary float drift across the cumulative totals.
	salesAmount := decimal.NewFromFloat(salesVolume).
		Mul(decimal.NewFromFloat(effectivePrice)).
		Round(2).
		InexactFloat64()

	res := &Result{
		Reading: models.Reading{
			NozzleID:        nozzle.NozzleID,
			DispenserID:     nozzle.DispenserID,
			ProductID:       nozzle.ProductID,
			TankID:          nozzle.TankID,
			PreviousReading: nozzle.LastReading,
			CurrentReading:  sub.CurrentReading,
			SalesVolume:     salesVolume,
			UnitPrice:       effectivePrice,
			SalesAmount:     salesAmount,
			RecordedBy:      sub.RecordedBy,
			Timestamp:       now,
		},
		Nozzle: nozzle,
		Tank:   tank,
	}

	res.Nozzle.LastReading = sub.CurrentReading
	res.Nozzle.TotalSales = decimal.NewFromFloat(nozzle.TotalSales).
		Add(decimal.NewFromFloat(salesAmount)).
		Round(2).
		InexactFloat64()
	res.Nozzle.UpdatedAt = now

	res.Tank.RemainingStock = tank.RemainingStock - salesVolume
	res.Tank.UpdatedAt = now

	if sub.NewSalesPrice != nil && *sub.NewSalesPrice != product.SalesPrice {
		updated := product
		updated.SalesPrice = *sub.NewSalesPrice
		updated.UpdatedAt = now
		res.Product = &updated
	}

	return res, nil
}
