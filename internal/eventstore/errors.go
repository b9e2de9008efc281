package eventstore

import "errors"

// Sentinel failure modes of the store.
var (
	// ErrNotFound is returned by Load when the aggregate has no events.
	ErrNotFound = errors.New("eventstore: aggregate not found")

	// ErrDecode is returned when a stored event payload cannot be parsed.
	// It is fatal: callers must not silently drop the event.
	ErrDecode = errors.New("eventstore: payload decode failed")

	// ErrConcurrentUpdate is returned by Append when expected_version does
	// not match the aggregate's current version. Callers retry once with
	// a fresh Load.
	ErrConcurrentUpdate = errors.New("eventstore: concurrent update")
)
