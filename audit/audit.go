// Package audit writes the append-only audit trail.
//
// Two write modes exist and call sites pick one deliberately. Record is a
// best-effort follow-up to a committed mutation: failures are logged and
// swallowed. RecordTx runs inside the caller's transaction and returns its
// error so that a failed audit write aborts the mutation it documents.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/metrics"
	"github.com/meinhoongagan/maternity-app/models"
)

// Action tags in use. The set is open; any non-empty tag is accepted.
const (
	ActionCreate           = "CREATE"
	ActionUpdate           = "UPDATE"
	ActionLogin            = "LOGIN"
	ActionLogout           = "LOGOUT"
	ActionPermissionDenied = "PERMISSION_DENIED"
	ActionDischarge        = "ALTA"
)

type Entry struct {
	ActorID   *uint
	RoleLabel string
	Entity    string
	EntityID  string
	Action    string
	Before    interface{}
	After     interface{}
	IP        string
	UserAgent string
}

type Recorder struct {
	log logrus.FieldLogger
	now func() time.Time
}

func NewRecorder(log logrus.FieldLogger) *Recorder {
	return &Recorder{log: log, now: time.Now}
}

// Record writes e and never fails the caller.
func (r *Recorder) Record(db *gorm.DB, e Entry) {
	if err := r.write(db, e); err != nil {
		r.log.WithFields(logrus.Fields{
			"entity":    e.Entity,
			"entity_id": e.EntityID,
			"action":    e.Action,
		}).WithError(err).Error("Failed to write audit entry")
	}
}

// RecordTx writes e with tx and reports failure to the caller.
func (r *Recorder) RecordTx(tx *gorm.DB, e Entry) error {
	return r.write(tx, e)
}

func (r *Recorder) write(db *gorm.DB, e Entry) error {
	row, err := r.build(e)
	if err == nil {
		err = db.Create(row).Error
	}
	if err != nil {
		metrics.AuditWrites.WithLabelValues(e.Action, "error").Inc()
		return fmt.Errorf("audit %s %s: %w", e.Action, e.Entity, err)
	}
	metrics.AuditWrites.WithLabelValues(e.Action, "ok").Inc()
	return nil
}

func (r *Recorder) build(e Entry) (*models.AuditEntry, error) {
	if e.Entity == "" || e.Action == "" {
		return nil, fmt.Errorf("entity and action are required")
	}
	before, err := Snapshot(e.Before)
	if err != nil {
		return nil, fmt.Errorf("before snapshot: %w", err)
	}
	after, err := Snapshot(e.After)
	if err != nil {
		return nil, fmt.Errorf("after snapshot: %w", err)
	}

	return &models.AuditEntry{
		UserID:    e.ActorID,
		RoleLabel: e.RoleLabel,
		Entity:    e.Entity,
		EntityID:  e.EntityID,
		Action:    e.Action,
		Before:    before,
		After:     after,
		IP:        e.IP,
		UserAgent: e.UserAgent,
		CreatedAt: r.now().UTC(),
	}, nil
}

// Snapshot converts v into the JSON object stored on an audit row, using the
// entity's own JSON field names.
func Snapshot(v interface{}) (models.JSONMap, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case models.JSONMap:
		return s, nil
	case map[string]interface{}:
		return models.JSONMap(s), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	var out models.JSONMap
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("snapshot of %T is not a JSON object: %w", v, err)
	}
	return out, nil
}
