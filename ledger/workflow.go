package ledger

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fuelstation/db"
	"fuelstation/models"
)

// Workflow runs the stock ledger's transactional updates against Firestore.
type Workflow struct {
	store *db.Store
	log   *logrus.Logger
}

// NewWorkflow creates a stock ledger workflow.
func NewWorkflow(store *db.Store, log *logrus.Logger) *Workflow {
	return &Workflow{store: store, log: log}
}

func txGet(tx *firestore.Transaction, ref *firestore.DocumentRef, entity string, out interface{}) error {
	doc, err := tx.Get(ref)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%s %s: %w", entity, ref.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to get %s %s: %w", entity, ref.ID, err)
	}
	if err := doc.DataTo(out); err != nil {
		return fmt.Errorf("failed to parse %s %s: %w", entity, ref.ID, err)
	}
	return nil
}

// SubmitReading records a nozzle meter reading: it appends the immutable
// Reading event, advances the nozzle meter and cumulative sales, optionally
// updates the product price, and decrements the source tank's book stock.
//
// All four writes commit atomically. The preconditions (reading order,
// stock sufficiency) are evaluated against the in-transaction snapshots, so
// a concurrent submission that consumed the same stock forces a retry and
// the sufficiency check runs again against the committed state.
func (w *Workflow) SubmitReading(ctx context.Context, sub Submission) (*models.Reading, error) {
	client := w.store.Client()
	readingID := "RDG-" + uuid.NewString()

	var committed models.Reading
	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		nozzleRef := client.Collection(db.ColNozzles).Doc(sub.NozzleID)
		var nozzle models.Nozzle
		if err := txGet(tx, nozzleRef, "nozzle", &nozzle); err != nil {
			return err
		}

		productRef := client.Collection(db.ColProducts).Doc(nozzle.ProductID)
		var product models.Product
		if err := txGet(tx, productRef, "product", &product); err != nil {
			return err
		}

		tankRef := client.Collection(db.ColTanks).Doc(nozzle.TankID)
		var tank models.Tank
		if err := txGet(tx, tankRef, "tank", &tank); err != nil {
			return err
		}

		res, err := Prepare(sub, nozzle, product, tank, time.Now())
		if err != nil {
			return err
		}
		res.Reading.ReadingID = readingID

		if err := tx.Set(nozzleRef, res.Nozzle); err != nil {
			return fmt.Errorf("failed to update nozzle: %w", err)
		}
		readingRef := client.Collection(db.ColReadings).Doc(readingID)
		if err := tx.Set(readingRef, res.Reading); err != nil {
			return fmt.Errorf("failed to append reading: %w", err)
		}
		if res.Product != nil {
			if err := tx.Set(productRef, *res.Product); err != nil {
				return fmt.Errorf("failed to update product price: %w", err)
			}
		}
		if err := tx.Set(tankRef, res.Tank); err != nil {
			return fmt.Errorf("failed to update tank stock: %w", err)
		}

		committed = res.Reading
		return nil
	})
	if err != nil {
		w.log.WithFields(logrus.Fields{
			"workflow": "submit_reading",
			"nozzle":   sub.NozzleID,
			"reading":  sub.CurrentReading,
			"user":     sub.RecordedBy,
		}).Error(err)
		return nil, err
	}

	w.log.WithFields(logrus.Fields{
		"workflow": "submit_reading",
		"reading":  committed.ReadingID,
		"nozzle":   committed.NozzleID,
		"volume":   committed.SalesVolume,
		"amount":   committed.SalesAmount,
	}).Info("reading committed")
	return &committed, nil
}

// RecordDelivery increments a tank's book stock for a fuel delivery,
// rejecting quantities that are not positive or would exceed capacity.
func (w *Workflow) RecordDelivery(ctx context.Context, tankID string, quantity float64) (*models.Tank, error) {
	if quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Message: "delivery quantity must be positive"}
	}

	client := w.store.Client()
	var updated models.Tank
	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		tankRef := client.Collection(db.ColTanks).Doc(tankID)
		var tank models.Tank
		if err := txGet(tx, tankRef, "tank", &tank); err != nil {
			return err
		}

		would := tank.RemainingStock + quantity
		if would > tank.Capacity {
			return &OverfillError{TankID: tank.TankID, Capacity: tank.Capacity, Would: would}
		}

		tank.RemainingStock = would
		tank.UpdatedAt = time.Now()
		if err := tx.Set(tankRef, tank); err != nil {
			return fmt.Errorf("failed to update tank stock: %w", err)
		}
		updated = tank
		return nil
	})
	if err != nil {
		w.log.WithFields(logrus.Fields{
			"workflow": "record_delivery",
			"tank":     tankID,
			"quantity": quantity,
		}).Error(err)
		return nil, err
	}
	return &updated, nil
}

// ReconcileTank sets a tank's book stock to the physically measured dip
// volume, clamped to capacity. Returns the discrepancy that was absorbed
// (book minus physical; positive means loss).
func (w *Workflow) ReconcileTank(ctx context.Context, tankID string, measuredLiters float64) (*models.Tank, float64, error) {
	if measuredLiters < 0 {
		return nil, 0, &ValidationError{Field: "measured_liters", Message: "measured volume cannot be negative"}
	}

	client := w.store.Client()
	var updated models.Tank
	var discrepancy float64
	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		tankRef := client.Collection(db.ColTanks).Doc(tankID)
		var tank models.Tank
		if err := txGet(tx, tankRef, "tank", &tank); err != nil {
			return err
		}

		physical := measuredLiters
		if physical > tank.Capacity {
			physical = tank.Capacity
		}
		discrepancy = tank.RemainingStock - physical

		tank.RemainingStock = physical
		tank.UpdatedAt = time.Now()
		if err := tx.Set(tankRef, tank); err != nil {
			return fmt.Errorf("failed to reconcile tank stock: %w", err)
		}
		updated = tank
		return nil
	})
	if err != nil {
		w.log.WithFields(logrus.Fields{
			"workflow": "reconcile_tank",
			"tank":     tankID,
			"measured": measuredLiters,
		}).Error(err)
		return nil, 0, err
	}

	w.log.WithFields(logrus.Fields{
		"workflow":    "reconcile_tank",
		"tank":        tankID,
		"discrepancy": discrepancy,
	}).Info("tank reconciled against dip measurement")
	return &updated, discrepancy, nil
}
