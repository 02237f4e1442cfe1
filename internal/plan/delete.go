package plan

import (
	"context"
	"errors"
	"sync"

	"github.com/claude/weeklyplan/internal/planapi"
)

var (
	// ErrNotArmed is returned when a delete is confirmed for a day that is
	// not the one awaiting confirmation.
	ErrNotArmed = errors.New("plan: delete not armed for this day")
	// ErrBusy is returned when an action is already in flight.
	ErrBusy = errors.New("plan: request already in flight")
)

// Alert texts shown when a delete fails.
const (
	AlertDeleteFailed = "Failed to delete workout"
	AlertDeleteError  = "Error deleting workout"
)

// AlertError carries the blocking alert text for a failed user action.
type AlertError struct {
	Message string
	Err     error
}

func (e *AlertError) Error() string { return e.Message + ": " + e.Err.Error() }
func (e *AlertError) Unwrap() error { return e.Err }

// WorkoutDeleter removes a workout day on the plan service.
type WorkoutDeleter interface {
	DeleteWorkout(ctx context.Context, workoutID int64) error
}

// DeleteFlow is the two-step delete confirmation. At most one day is armed
// at a time.
type DeleteFlow struct {
	deleter WorkoutDeleter
	reload  func(ctx context.Context)

	mu       sync.Mutex
	armed    int64
	isArmed  bool
	inFlight bool
}

// NewDeleteFlow creates a DeleteFlow. reload is invoked after a successful
// delete to re-read the program.
func NewDeleteFlow(deleter WorkoutDeleter, reload func(ctx context.Context)) *DeleteFlow {
	return &DeleteFlow{deleter: deleter, reload: reload}
}

// Arm asks for confirmation on dayID, disarming any other day.
func (d *DeleteFlow) Arm(dayID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.armed = dayID
	d.isArmed = true
}

// Cancel disarms the pending confirmation.
func (d *DeleteFlow) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disarm()
}

// Armed returns the day awaiting confirmation.
func (d *DeleteFlow) Armed() (int64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed, d.isArmed
}

// IsArmed reports whether dayID is awaiting confirmation.
func (d *DeleteFlow) IsArmed(dayID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isArmed && d.armed == dayID
}

// Confirm deletes the armed day. On success the confirmation is cleared and
// the program reloaded. On failure the confirmation is also cleared and an
// *AlertError describes what to show the user.
func (d *DeleteFlow) Confirm(ctx context.Context, dayID int64) error {
	d.mu.Lock()
	if !d.isArmed || d.armed != dayID {
		d.mu.Unlock()
		return ErrNotArmed
	}
	if d.inFlight {
		d.mu.Unlock()
		return ErrBusy
	}
	d.inFlight = true
	d.mu.Unlock()

	err := d.deleter.DeleteWorkout(ctx, dayID)

	d.mu.Lock()
	d.inFlight = false
	if d.armed == dayID {
		d.disarm()
	}
	d.mu.Unlock()

	if err != nil {
		msg := AlertDeleteError
		if planapi.IsStatus(err) {
			msg = AlertDeleteFailed
		}
		return &AlertError{Message: msg, Err: err}
	}

	if d.reload != nil {
		d.reload(ctx)
	}
	return nil
}

func (d *DeleteFlow) disarm() {
	d.armed = 0
	d.isArmed = false
}
