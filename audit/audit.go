// Package audit records privileged operations to the audit_logs collection
// and to the structured log, so partial failures and rejected operations
// stay visible operationally.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"fuelstation/db"
	"fuelstation/models"
)

// Recorder writes audit events. It is injected into handlers explicitly;
// there is no ambient global state.
type Recorder struct {
	store *db.Store
	log   *logrus.Logger
}

// NewRecorder creates an audit recorder.
func NewRecorder(store *db.Store, log *logrus.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

// Event records one audit entry. A failed write to the audit collection is
// logged but does not fail the business operation.
func (r *Recorder) Event(ctx context.Context, userID, action, details string) {
	entry := &models.AuditLog{
		LogID:     fmt.Sprintf("log-%d", time.Now().UnixNano()),
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		Action:    action,
		Details:   details,
	}

	r.log.WithFields(logrus.Fields{
		"audit":  true,
		"user":   userID,
		"action": action,
	}).Info(details)

	if err := r.store.AppendAuditLog(ctx, entry); err != nil {
		r.log.WithField("action", action).Warnf("failed to persist audit log: %v", err)
	}
}
