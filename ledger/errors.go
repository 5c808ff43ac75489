package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound wraps missing nozzle/product/tank references so handlers can
// map them to 404s.
var ErrNotFound = errors.New("referenced document not found")

// ValidationError rejects a submission before any write is attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// InvalidReadingOrderError reports a meter reading below the nozzle's last
// recorded value.
type InvalidReadingOrderError struct {
	Previous float64
	Current  float64
}

func (e *InvalidReadingOrderError) Error() string {
	return fmt.Sprintf("current reading %.3f is below previous reading %.3f", e.Current, e.Previous)
}

// InsufficientStockError reports a sale volume exceeding the tank's book
// stock, carrying both sides so the caller can show available vs required.
type InsufficientStockError struct {
	TankID    string
	Available float64
	Required  float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock in tank %s: available %.1f ltr, required %.1f ltr", e.TankID, e.Available, e.Required)
}

// OverfillError reports a delivery that would push a tank past capacity.
type OverfillError struct {
	TankID   string
	Capacity float64
	Would    float64
}

func (e *OverfillError) Error() string {
	return fmt.Sprintf("delivery would overfill tank %s: %.1f ltr against capacity %.1f ltr", e.TankID, e.Would, e.Capacity)
}
