// Package store implements the live transaction store: it owns the one
// active subscription against the remote collection, mirrors its snapshots
// into an in-memory cache and writes through for create/update/delete.
//
// The cache is replaced wholesale on every snapshot and is never updated
// optimistically: a write becomes visible only when the feed delivers a
// snapshot reflecting it.
package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"catatuang/internal/core"
	"catatuang/internal/docstore"
	"catatuang/internal/session"
)

// State of the subscription lifecycle.
type State string

const (
	StateIdle         State = "idle"
	StateSubscribing  State = "subscribing"
	StateActive       State = "active"
	StateRecovering   State = "recovering"
	StateError        State = "error"
	StateUnsubscribed State = "unsubscribed"
)

// EventPublisher receives a fire-and-forget notification after each
// successful write. Publish failures are logged, never surfaced.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, op, id, ownerID string) error
}

type Option func(*LiveStore)

// WithEventPublisher wires an optional mutation event sink.
func WithEventPublisher(pub EventPublisher) Option {
	return func(s *LiveStore) { s.events = pub }
}

// WithClock overrides the time source used for date defaults and the
// fallback sort.
func WithClock(clock func() time.Time) Option {
	return func(s *LiveStore) { s.clock = clock }
}

// LiveStore mirrors the owner-filtered remote collection.
type LiveStore struct {
	col    docstore.Collection
	events EventPublisher
	clock  func() time.Time

	mu       sync.Mutex
	state    State
	identity *session.Identity
	sub      docstore.Subscription
	gen      uint64 // bumped on every bind/unbind; stale loops check it
	cache    []core.Transaction
	err      error
}

func New(col docstore.Collection, opts ...Option) *LiveStore {
	s := &LiveStore{
		col:   col,
		clock: time.Now,
		state: StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current subscription state.
func (s *LiveStore) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the terminal subscription error, if the store is in the
// error state. Retry is the caller's decision; the store never retries on
// its own except for the permission-denied fallback.
func (s *LiveStore) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Snapshot returns a copy of the current cache. The copy is safe to hand
// to the aggregation and report functions, which never mutate their input.
func (s *LiveStore) Snapshot() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.cache))
	copy(out, s.cache)
	return out
}

// Bind tears down any previous subscription and subscribes for the given
// identity. Exactly one remote subscription is live at a time.
//
// A permission-denied rejection of the primary query is recovered here by
// reissuing the filter-only fallback query; any other failure puts the
// store in the error state and is returned.
func (s *LiveStore) Bind(ctx context.Context, ident session.Identity) error {
	s.mu.Lock()
	s.teardownLocked()
	s.gen++
	gen := s.gen
	s.identity = &ident
	s.state = StateSubscribing
	s.mu.Unlock()

	sub, fallback, err := s.subscribe(ctx, ident.UID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// identity changed while we were subscribing
		if sub != nil {
			sub.Cancel()
		}
		return nil
	}
	if err != nil {
		s.state = StateError
		s.err = err
		return err
	}

	s.sub = sub
	if fallback {
		s.state = StateRecovering
	}
	go s.applyLoop(gen, ident.UID, sub, fallback)
	return nil
}

// Unbind releases the subscription and clears the cache. It is not an
// error: logging out of an idle store is a no-op. Cancellation is
// synchronous; a snapshot from the torn-down subscription can never reach
// the cache afterwards.
func (s *LiveStore) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
	s.gen++
	s.state = StateUnsubscribed
}

func (s *LiveStore) teardownLocked() {
	if s.sub != nil {
		s.sub.Cancel()
		s.sub = nil
	}
	s.identity = nil
	s.cache = nil
	s.err = nil
}

func (s *LiveStore) subscribe(ctx context.Context, ownerID string) (docstore.Subscription, bool, error) {
	sub, err := s.col.Subscribe(ctx, PrimaryQuery(ownerID))
	if err == nil {
		return sub, false, nil
	}
	if docstore.CodeOf(err) != docstore.CodePermissionDenied {
		return nil, false, err
	}

	slog.WarnContext(ctx, "Primary query rejected, retrying without order clause",
		"owner_id", ownerID,
		"error", err)

	sub, err = s.col.Subscribe(ctx, FallbackQuery(ownerID))
	if err != nil {
		return nil, false, err
	}
	return sub, true, nil
}

// applyLoop mirrors feed snapshots into the cache until the subscription
// ends. Snapshots are applied in delivery order; a loop from a stale
// generation never touches the cache.
func (s *LiveStore) applyLoop(gen uint64, ownerID string, sub docstore.Subscription, fallback bool) {
	for snap := range sub.Snapshots() {
		if fallback {
			SortCreatedDesc(snap, s.clock())
		}
		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		s.cache = snap
		s.state = StateActive
		s.mu.Unlock()
	}

	err := sub.Err()
	if err == nil {
		return // cancelled
	}

	if !fallback && docstore.CodeOf(err) == docstore.CodePermissionDenied {
		s.recoverFallback(gen, ownerID, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.sub = nil
	s.state = StateError
	s.err = err
	slog.Error("Subscription failed", "owner_id", ownerID, "error", err)
}

// recoverFallback handles a permission failure arriving mid-stream rather
// than at subscribe time.
func (s *LiveStore) recoverFallback(gen uint64, ownerID string, cause error) {
	ctx := context.Background()
	slog.WarnContext(ctx, "Subscription lost to permission failure, recovering with fallback query",
		"owner_id", ownerID,
		"error", cause)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.state = StateRecovering
	s.mu.Unlock()

	sub, err := s.col.Subscribe(ctx, FallbackQuery(ownerID))

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		if sub != nil {
			sub.Cancel()
		}
		return
	}
	if err != nil {
		s.sub = nil
		s.state = StateError
		s.err = err
		return
	}
	s.sub = sub
	go s.applyLoop(gen, ownerID, sub, true)
}
