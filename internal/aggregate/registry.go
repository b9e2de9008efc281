// Package aggregate rebuilds aggregate state by replaying events. Each
// aggregate type is a closed set of event names folded by a pure
// function over an initial state plus an event iterator,
// dispatched through an event_name -> handler table.
package aggregate

import (
	"context"
	"fmt"

	"github.com/imkitchen/imkitchen/internal/eventstore"
)

// Applier folds one stored event into aggregate state. Implementations
// must be pure — no I/O, no side effects beyond mutating the receiver.
type Applier interface {
	Apply(event eventstore.Event) error
}

// SnapshotRestorer is implemented by states that support snapshot-
// accelerated rebuild. It must be indistinguishable from full replay.
type SnapshotRestorer interface {
	SnapshotState() ([]byte, error)
	RestoreSnapshot(state []byte) error
}

// Rebuild replays an aggregate's full history into state, accelerated by
// a snapshot when the store has one. Returns the stream's current
// version. Returns eventstore.ErrNotFound if the stream has no events.
func Rebuild(ctx context.Context, store eventstore.Store, aggregateID string, state Applier) (int, error) {
	startVersion := 0
	if restorer, ok := state.(SnapshotRestorer); ok {
		snapVersion, snapState, found, err := store.LoadSnapshot(ctx, aggregateID)
		if err != nil {
			return 0, fmt.Errorf("aggregate: load snapshot: %w", err)
		}
		if found {
			if err := restorer.RestoreSnapshot(snapState); err != nil {
				return 0, fmt.Errorf("aggregate: restore snapshot: %w", err)
			}
			startVersion = snapVersion
		}
	}

	loaded, err := store.Load(ctx, aggregateID)
	if err != nil {
		return 0, err
	}

	for _, ev := range loaded.Events {
		if ev.Version <= startVersion {
			continue
		}
		if err := state.Apply(ev); err != nil {
			return 0, fmt.Errorf("aggregate: apply %s v%d: %w", ev.EventName, ev.Version, err)
		}
	}

	return loaded.CurrentVersion, nil
}

// MaybeSnapshot asks the store to persist an accelerator every
// snapshotEvery versions. Safe to call after every append; it is purely
// an optimization and never required for correctness.
func MaybeSnapshot(ctx context.Context, store eventstore.Store, aggregateID string, version, snapshotEvery int, state Applier) error {
	if snapshotEvery <= 0 || version%snapshotEvery != 0 {
		return nil
	}
	restorer, ok := state.(SnapshotRestorer)
	if !ok {
		return nil
	}
	blob, err := restorer.SnapshotState()
	if err != nil {
		return fmt.Errorf("aggregate: snapshot state: %w", err)
	}
	return store.SaveSnapshot(ctx, aggregateID, version, blob)
}
