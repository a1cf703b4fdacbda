// Package platform implements the notification platform on top of the store:
// registered triggers are rows, and permission is a stored flag granted once the
// delivery channel proves reachable.
package platform

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/logger"
	"github.com/julianstephens/dayquote/internal/models"
	"github.com/julianstephens/dayquote/internal/storage"
)

// Prober checks that a delivery channel can reach the user.
type Prober interface {
	Probe(ctx context.Context) error
}

// ProbeFunc adapts a function to Prober
type ProbeFunc func(ctx context.Context) error

func (f ProbeFunc) Probe(ctx context.Context) error { return f(ctx) }

type Local struct {
	store storage.Provider
	probe Prober
	now   func() time.Time
}

// NewLocal returns a platform backed by store. A nil probe always grants permission.
func NewLocal(store storage.Provider, probe Prober) *Local {
	return &Local{store: store, probe: probe, now: time.Now}
}

// RequestPermission probes the delivery channel and records the outcome.
// A failed probe is a denial, not an error.
func (l *Local) RequestPermission(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	status := constants.PermissionGranted
	if l.probe != nil {
		if err := l.probe.Probe(ctx); err != nil {
			logger.Info("Delivery channel unreachable, permission denied", "error", err)
			status = constants.PermissionDenied
		}
	}
	if err := l.SetPermissionStatus(status); err != nil {
		return false, err
	}
	return status == constants.PermissionGranted, nil
}

func (l *Local) PermissionStatus(ctx context.Context) (constants.PermissionStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var status constants.PermissionStatus
	ok, err := storage.GetJSON(l.store, constants.KeyNotificationPermission, &status)
	if err != nil {
		return "", err
	}
	if !ok || status == "" {
		return constants.PermissionUndetermined, nil
	}
	return status, nil
}

// SetPermissionStatus stores status directly, e.g. when the user revokes access.
func (l *Local) SetPermissionStatus(status constants.PermissionStatus) error {
	return storage.SetJSON(l.store, constants.KeyNotificationPermission, status)
}

func (l *Local) CancelAllScheduled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := l.store.DeleteAllTriggers()
	if err != nil {
		return err
	}
	logger.Debug("Cancelled scheduled triggers", "count", n)
	return nil
}

func (l *Local) ScheduleRecurringDaily(ctx context.Context, req models.TriggerRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t := models.Trigger{
		ID:        uuid.NewString(),
		Hour:      req.Hour,
		Minute:    req.Minute,
		Repeats:   true,
		Title:     req.Title,
		Body:      req.Body,
		Data:      req.Data,
		CreatedAt: l.now(),
	}
	if err := l.store.AddTrigger(t); err != nil {
		return "", err
	}
	return t.ID, nil
}

func (l *Local) ListAllScheduled(ctx context.Context) ([]models.Trigger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.store.GetAllTriggers()
}
