package command

import "errors"

var (
	// ErrConcurrentGenerationInProgress is returned when the lock map is
	// already held for a user.
	ErrConcurrentGenerationInProgress = errors.New("command: meal plan generation already in progress")

	ErrForbidden          = errors.New("command: caller does not own this resource")
	ErrWeekLocked         = errors.New("command: week is locked")
	ErrWeekAlreadyStarted = errors.New("command: week has already started")
	ErrWeekNotFound       = errors.New("command: week not found")

	// ErrNotificationUnavailable is returned for both "not found" and
	// "not owned by this caller" alike — a distinguishable response would
	// let one user enumerate another's notification ids.
	ErrNotificationUnavailable = errors.New("command: notification not available")

	// ErrInvalidTransition is returned when the requested status change
	// is not reachable from the notification's current status per
	// aggregate.Notification.CanTransition.
	ErrInvalidTransition = errors.New("command: notification cannot transition to requested status")

	ErrEmailAlreadyRegistered = errors.New("command: email already registered")

	// ErrInvalidInput is returned when a command's own validation of its
	// arguments fails, independent of any HTTP-layer binding check.
	ErrInvalidInput = errors.New("command: invalid input")
)
