// Package memory implements the document store boundary in-process. It is
// the default backend for local runs and the workhorse of the test suite.
//
// Every mutation fans a fresh, complete snapshot out to all matching
// subscriptions, matching the hosted backend's snapshot-per-change feed.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"catatuang/internal/core"
	"catatuang/internal/docstore"
)

type Option func(*Collection)

// WithDenyOrderedQueries makes Subscribe reject filter+order queries with a
// permission-denied error while still accepting filter-only queries. This
// mirrors the access-control behavior of the hosted backend that motivates
// the live store's fallback path.
func WithDenyOrderedQueries() Option {
	return func(c *Collection) { c.denyOrdered = true }
}

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(c *Collection) { c.clock = clock }
}

type Collection struct {
	mu          sync.Mutex
	seq         int64
	docs        []core.Transaction // insertion order
	subs        map[int64]*subscription
	nextSub     int64
	denyOrdered bool
	clock       func() time.Time
}

var _ docstore.Collection = (*Collection)(nil)

func NewCollection(opts ...Option) *Collection {
	c := &Collection{
		subs:  make(map[int64]*subscription),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe implements docstore.Collection. The initial snapshot is
// delivered immediately.
func (c *Collection) Subscribe(_ context.Context, q docstore.Query) (docstore.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.denyOrdered && q.OrderByCreatedDesc {
		return nil, &docstore.Error{
			Code:    docstore.CodePermissionDenied,
			Op:      "subscribe",
			Message: "composite filter+order query rejected by access policy",
		}
	}

	c.nextSub++
	sub := &subscription{
		id:    c.nextSub,
		query: q,
		col:   c,
		ch:    make(chan []core.Transaction, 16),
	}
	c.subs[sub.id] = sub
	sub.push(c.resultLocked(q))
	return sub, nil
}

// Add implements docstore.Collection. The collection assigns the id and
// both timestamps, like the hosted backend does.
func (c *Collection) Add(_ context.Context, tx core.Transaction) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	tx.ID = fmt.Sprintf("tx-%06d", c.seq)
	now := c.clock()
	tx.CreatedAt = &now
	tx.UpdatedAt = &now
	c.docs = append(c.docs, tx)
	c.broadcastLocked()
	return tx.ID, nil
}

// Update implements docstore.Collection.
func (c *Collection) Update(_ context.Context, id, ownerID string, u docstore.Update) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return &docstore.Error{Code: docstore.CodeNotFound, Op: "update", Message: "no document " + id}
	}
	doc := &c.docs[i]
	if doc.OwnerID != ownerID {
		return &docstore.Error{Code: docstore.CodePermissionDenied, Op: "update", Message: "document " + id + " owned by another identity"}
	}
	if u.Amount != nil {
		doc.Amount = *u.Amount
	}
	if u.Date != nil {
		doc.Date = *u.Date
	}
	if u.Category != nil {
		doc.Category = *u.Category
	}
	if u.Name != nil {
		doc.Name = *u.Name
	}
	if u.Note != nil {
		doc.Note = *u.Note
	}
	if u.Kind != nil {
		doc.Kind = *u.Kind
	}
	doc.UpdatedAt = docstore.ServerTime(c.clock)
	c.broadcastLocked()
	return nil
}

// Delete implements docstore.Collection.
func (c *Collection) Delete(_ context.Context, id, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return &docstore.Error{Code: docstore.CodeNotFound, Op: "delete", Message: "no document " + id}
	}
	if c.docs[i].OwnerID != ownerID {
		return &docstore.Error{Code: docstore.CodePermissionDenied, Op: "delete", Message: "document " + id + " owned by another identity"}
	}
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	c.broadcastLocked()
	return nil
}

func (c *Collection) indexLocked(id string) int {
	for i := range c.docs {
		if c.docs[i].ID == id {
			return i
		}
	}
	return -1
}

// resultLocked evaluates a query against the current documents. Without
// server-side ordering the insertion order is returned, so clients that
// need recency must sort for themselves.
func (c *Collection) resultLocked(q docstore.Query) []core.Transaction {
	out := make([]core.Transaction, 0, len(c.docs))
	for _, doc := range c.docs {
		if doc.OwnerID == q.OwnerID {
			out = append(out, doc)
		}
	}
	if q.OrderByCreatedDesc {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(*out[j].CreatedAt)
		})
	}
	return out
}

func (c *Collection) broadcastLocked() {
	for _, sub := range c.subs {
		sub.push(c.resultLocked(sub.query))
	}
}

type subscription struct {
	id    int64
	query docstore.Query
	col   *Collection
	ch    chan []core.Transaction

	once sync.Once
	err  error
}

func (s *subscription) Snapshots() <-chan []core.Transaction { return s.ch }

func (s *subscription) Err() error { return s.err }

// Cancel removes the subscription under the collection lock, so no snapshot
// can be pushed once it returns.
func (s *subscription) Cancel() {
	s.once.Do(func() {
		s.col.mu.Lock()
		delete(s.col.subs, s.id)
		close(s.ch)
		s.col.mu.Unlock()
	})
}

// push delivers a snapshot without blocking the collection lock. If the
// consumer lags, the oldest buffered snapshot is dropped: only the latest
// state matters (last-snapshot-wins).
func (s *subscription) push(snap []core.Transaction) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}
