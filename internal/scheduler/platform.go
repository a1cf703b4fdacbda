package scheduler

import (
	"context"

	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/models"
)

// Platform is the notification subsystem triggers are registered with.
type Platform interface {
	// RequestPermission asks for notification rights and reports whether they were granted.
	RequestPermission(ctx context.Context) (bool, error)
	PermissionStatus(ctx context.Context) (constants.PermissionStatus, error)
	CancelAllScheduled(ctx context.Context) error
	// ScheduleRecurringDaily registers a trigger that repeats every day and returns its id.
	ScheduleRecurringDaily(ctx context.Context, req models.TriggerRequest) (string, error)
	ListAllScheduled(ctx context.Context) ([]models.Trigger, error)
}
