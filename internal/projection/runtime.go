/*
 * ImKitchen - Self-Hosted Meal Planning Application
 * Copyright (C) 2025 RGH Software
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published
 * by the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

// Package projection implements the subscription-driven read-model
// runtime: named subscriptions bind ordered
// (event_name -> handler) tables, each tracking its own cursor so a
// projection can be added, rebuilt, or replayed without touching the
// write model.
package projection

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/store"
)

// Handler applies one event to a projection's read tables. Handlers must
// be idempotent — the runtime may redeliver an event after a crash
// between handler commit and cursor advance.
type Handler func(ctx context.Context, tx *store.Tx, event eventstore.Event) error

// Subscription is a named, ordered binding of event names to handlers.
// Event names with no registered handler are either explicitly skipped
// via Skip, documenting the omission in code, or left genuinely
// unhandled, which the runtime logs a warning for instead of silently
// cursor-advancing past them — a skip is a declaration, not an
// accident.
type Subscription struct {
	Name     string
	handlers map[string]Handler
	skipped  map[string]bool
	order    []string
}

// NewSubscription creates an empty subscription under name.
func NewSubscription(name string) *Subscription {
	return &Subscription{Name: name, handlers: map[string]Handler{}, skipped: map[string]bool{}}
}

// On registers handler for eventName. Panics on duplicate registration
// within the same subscription — a programmer error, not a runtime one.
func (s *Subscription) On(eventName string, h Handler) *Subscription {
	if _, exists := s.handlers[eventName]; exists {
		panic(fmt.Sprintf("projection: subscription %q already handles %q", s.Name, eventName))
	}
	s.handlers[eventName] = h
	s.order = append(s.order, eventName)
	return s
}

// Skip declares that eventName is intentionally ignored by this
// subscription. Skipped events still advance the cursor, but unlike a
// truly unhandled event name they never produce the ApplyOne warning —
// this is how a subscription documents "I looked at this event and
// decided it doesn't apply to my read model."
func (s *Subscription) Skip(eventName string) *Subscription {
	s.skipped[eventName] = true
	return s
}

// handles reports whether eventName has either a registered handler or
// an explicit skip declaration.
func (s *Subscription) handles(eventName string) bool {
	if _, ok := s.handlers[eventName]; ok {
		return true
	}
	return s.skipped[eventName]
}

// allEventNames enumerates every event name any aggregate in this
// system produces. Each RegisterXxx function calls SkipUnhandled after
// its own On() registrations so its subscription totally covers this
// list — handled or explicitly skipped — and Runtime.ApplyOne's
// unhandled-event warning fires only for a name missing from both,
// which means it is new to the whole system, not merely foreign to one
// subscription's domain.
var allEventNames = []string{
	events.UserRegistered, events.UserRegistrationSucceeded, events.UserRegistrationFailed,
	events.UserLoggedIn, events.UserProfileUpdated, events.UserSuspended, events.UserActivated,
	events.UserPremiumBypassToggled, events.UserPromotedToAdmin, events.UserDemotedFromAdmin,
	events.UserMealPlanningPreferencesUpdated,

	events.RecipeCreated, events.RecipeUpdated, events.RecipeFavorited, events.RecipeUnfavorited,
	events.RecipeSharingToggled, events.RecipeDeleted,

	events.MultiWeekMealPlanGenerated, events.SingleWeekRegenerated,

	events.ReminderScheduled, events.ReminderSent, events.ReminderCompleted, events.ReminderDismissed,
	events.ReminderSnoozed, events.ReminderUnsnoozed, events.ReminderCarriedOver, events.ReminderExpired,

	events.PushSubscriptionCreated, events.PushSubscriptionRemoved,

	events.ContactMessageSubmitted, events.ContactMessageRead, events.ContactMessageResolved,
}

// SkipUnhandled marks every name in allEventNames that sub has not
// already registered a handler for as explicitly skipped.
func SkipUnhandled(sub *Subscription) *Subscription {
	for _, name := range allEventNames {
		if _, ok := sub.handlers[name]; !ok {
			sub.Skip(name)
		}
	}
	return sub
}

// Runtime drives one or more subscriptions against the event store,
// persisting a per-subscription cursor so each catches up independently.
type Runtime struct {
	store eventstore.Store
	db    *store.DB
	log   zerolog.Logger

	mu   sync.Mutex
	subs []*Subscription
}

// NewRuntime wires a projection runtime against the event store's read
// pool (for cursor bookkeeping) and write pool (for handler writes,
// since projections write to the same database as the event log).
func NewRuntime(es eventstore.Store, db *store.DB, log zerolog.Logger) *Runtime {
	return &Runtime{store: es, db: db, log: log.With().Str("component", "projection").Logger()}
}

// Register adds a subscription. Must be called before Drain/Start.
func (r *Runtime) Register(sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, sub)
}

// cursor returns the last-processed global sequence for sub, 0 if none.
func (r *Runtime) cursor(ctx context.Context, subName string) (int64, error) {
	var seq int64
	err := r.db.QueryRowContext(ctx, `SELECT last_sequence FROM projection_cursor WHERE subscription_name = ?`, subName).Scan(&seq)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return seq, err
}

func (r *Runtime) advanceCursor(ctx context.Context, tx *store.Tx, subName string, seq int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO projection_cursor (subscription_name, last_sequence)
		VALUES (?, ?)
		ON CONFLICT (subscription_name) DO UPDATE SET last_sequence = excluded.last_sequence
	`, subName, seq)
	return err
}

// ApplyOne runs sub's handler (if any) for event inside its own
// transaction, advancing the subscription's cursor atomically with the
// handler's writes. An event name with no registered handler still
// advances the cursor, but only counts as skipped — silently, no
// warning — when sub declared it via Skip; a name neither handled nor
// skipped logs a warning, since that means the event vocabulary grew
// without this subscription's coverage being updated to match.
func (r *Runtime) ApplyOne(ctx context.Context, sub *Subscription, event eventstore.Event, seq int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("projection %s: begin: %w", sub.Name, err)
	}
	defer tx.Rollback()

	if h, ok := sub.handlers[event.EventName]; ok {
		if err := h(ctx, tx, event); err != nil {
			return fmt.Errorf("projection %s: handle %s v%d: %w", sub.Name, event.EventName, event.Version, err)
		}
	} else if !sub.skipped[event.EventName] {
		r.log.Warn().
			Str("subscription", sub.Name).
			Str("event_name", event.EventName).
			Msg("unhandled event: no handler and no Skip declaration")
	}

	if err := r.advanceCursor(ctx, tx, sub.Name, seq); err != nil {
		return fmt.Errorf("projection %s: advance cursor: %w", sub.Name, err)
	}

	return tx.Commit()
}

// Drain synchronously processes every undelivered event for every
// registered subscription, in global sequence order, and returns once
// all subscriptions are caught up. Tests use this instead of waiting on
// a background poll loop.
func (r *Runtime) Drain(ctx context.Context, feed eventstore.Feed) error {
	r.mu.Lock()
	subs := append([]*Subscription(nil), r.subs...)
	r.mu.Unlock()

	for _, sub := range subs {
		cursor, err := r.cursor(ctx, sub.Name)
		if err != nil {
			return fmt.Errorf("projection %s: read cursor: %w", sub.Name, err)
		}

		events, err := feed.Since(ctx, cursor)
		if err != nil {
			return fmt.Errorf("projection %s: fetch feed: %w", sub.Name, err)
		}

		for _, fe := range events {
			if err := r.ApplyOne(ctx, sub, fe.Event, fe.Sequence); err != nil {
				return err
			}
		}

		if len(events) > 0 {
			r.log.Debug().Str("subscription", sub.Name).Int("count", len(events)).Msg("drained")
		}
	}

	return nil
}
