// Package sqlite implements the document store boundary on a local SQLite
// file. It stands in for the hosted backend during development: writes go
// through this process, so the subscription feed is driven by re-querying
// after each local mutation.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"catatuang/internal/core"
	"catatuang/internal/docstore"
)

type Collection struct {
	db    *sql.DB
	clock func() time.Time

	mu      sync.Mutex
	subs    map[int64]*subscription
	nextSub int64
}

var _ docstore.Collection = (*Collection)(nil)

func NewCollection(dbPath string) (*Collection, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Collection{
		db:    db,
		clock: time.Now,
		subs:  make(map[int64]*subscription),
	}, nil
}

func (c *Collection) Close() error {
	c.mu.Lock()
	for id, sub := range c.subs {
		delete(c.subs, id)
		close(sub.ch)
	}
	c.mu.Unlock()
	return c.db.Close()
}

// Subscribe implements docstore.Collection.
func (c *Collection) Subscribe(ctx context.Context, q docstore.Query) (docstore.Subscription, error) {
	snap, err := c.query(ctx, q)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSub++
	sub := &subscription{
		id:    c.nextSub,
		query: q,
		col:   c,
		ch:    make(chan []core.Transaction, 16),
	}
	c.subs[sub.id] = sub
	sub.push(snap)
	return sub, nil
}

// Add implements docstore.Collection.
func (c *Collection) Add(ctx context.Context, tx core.Transaction) (string, error) {
	id, err := newDocID()
	if err != nil {
		return "", &docstore.Error{Code: docstore.CodeUnknown, Op: "add", Err: err}
	}
	now := c.clock().UTC()

	// amounts are stored in decimal string form so no precision is lost
	// on the round trip
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO transactions (id, owner_id, amount, date, category, name, note, kind, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, tx.OwnerID, tx.Amount.String(), tx.Date.String(), tx.Category, tx.Name, tx.Note, string(tx.Kind), now, now)
	if err != nil {
		return "", &docstore.Error{Code: docstore.CodeUnavailable, Op: "add", Err: err}
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"owner_id", tx.OwnerID,
		"kind", string(tx.Kind),
		"amount", tx.Amount.String())

	c.notify(ctx)
	return id, nil
}

// Update implements docstore.Collection. Only the mutable fields can be
// set; updated_at is always refreshed.
func (c *Collection) Update(ctx context.Context, id, ownerID string, u docstore.Update) error {
	if err := c.checkOwner(ctx, "update", id, ownerID); err != nil {
		return err
	}

	set := "updated_at = ?"
	args := []any{c.clock().UTC()}
	if u.Amount != nil {
		set += ", amount = ?"
		args = append(args, u.Amount.String())
	}
	if u.Date != nil {
		set += ", date = ?"
		args = append(args, u.Date.String())
	}
	if u.Category != nil {
		set += ", category = ?"
		args = append(args, *u.Category)
	}
	if u.Name != nil {
		set += ", name = ?"
		args = append(args, *u.Name)
	}
	if u.Note != nil {
		set += ", note = ?"
		args = append(args, *u.Note)
	}
	if u.Kind != nil {
		set += ", kind = ?"
		args = append(args, string(*u.Kind))
	}
	args = append(args, id, ownerID)

	_, err := c.db.ExecContext(ctx, "UPDATE transactions SET "+set+" WHERE id = ? AND owner_id = ?", args...)
	if err != nil {
		return &docstore.Error{Code: docstore.CodeUnavailable, Op: "update", Err: err}
	}
	c.notify(ctx)
	return nil
}

// Delete implements docstore.Collection.
func (c *Collection) Delete(ctx context.Context, id, ownerID string) error {
	if err := c.checkOwner(ctx, "delete", id, ownerID); err != nil {
		return err
	}

	_, err := c.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return &docstore.Error{Code: docstore.CodeUnavailable, Op: "delete", Err: err}
	}
	c.notify(ctx)
	return nil
}

// checkOwner distinguishes a missing document from one owned by another
// identity, so callers get not-found vs permission-denied.
func (c *Collection) checkOwner(ctx context.Context, op, id, ownerID string) error {
	var owner string
	err := c.db.QueryRowContext(ctx, "SELECT owner_id FROM transactions WHERE id = ?", id).Scan(&owner)
	switch {
	case err == sql.ErrNoRows:
		return &docstore.Error{Code: docstore.CodeNotFound, Op: op, Message: "no document " + id}
	case err != nil:
		return &docstore.Error{Code: docstore.CodeUnavailable, Op: op, Err: err}
	case owner != ownerID:
		return &docstore.Error{Code: docstore.CodePermissionDenied, Op: op, Message: "document " + id + " owned by another identity"}
	}
	return nil
}

func (c *Collection) query(ctx context.Context, q docstore.Query) ([]core.Transaction, error) {
	stmt := `
		SELECT id, owner_id, amount, date, category, name, note, kind, created_at, updated_at
		FROM transactions WHERE owner_id = ?`
	if q.OrderByCreatedDesc {
		stmt += " ORDER BY created_at DESC"
	} else {
		stmt += " ORDER BY rowid ASC"
	}

	rows, err := c.db.QueryContext(ctx, stmt, q.OwnerID)
	if err != nil {
		return nil, &docstore.Error{Code: docstore.CodeUnavailable, Op: "subscribe", Err: err}
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx                   core.Transaction
			amount               string
			date, kind           string
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&tx.ID, &tx.OwnerID, &amount, &date, &tx.Category, &tx.Name, &tx.Note, &kind, &createdAt, &updatedAt); err != nil {
			return nil, &docstore.Error{Code: docstore.CodeUnknown, Op: "subscribe", Err: err}
		}
		tx.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, &docstore.Error{Code: docstore.CodeUnknown, Op: "subscribe", Err: fmt.Errorf("parse amount of %s: %w", tx.ID, err)}
		}
		if d, err := core.ParseDate(date); err == nil {
			tx.Date = d
		}
		tx.Kind = core.Kind(kind)
		tx.CreatedAt = &createdAt
		tx.UpdatedAt = &updatedAt
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, &docstore.Error{Code: docstore.CodeUnknown, Op: "subscribe", Err: err}
	}
	return out, nil
}

// notify re-runs every live query and pushes fresh snapshots. Only local
// writes can change this backend, so re-query-on-write gives the same feed
// the hosted backend delivers on its change stream.
func (c *Collection) notify(ctx context.Context) {
	c.mu.Lock()
	subs := make([]*subscription, 0, len(c.subs))
	for _, sub := range c.subs {
		subs = append(subs, sub)
	}
	c.mu.Unlock()

	for _, sub := range subs {
		snap, err := c.query(ctx, sub.query)
		if err != nil {
			slog.WarnContext(ctx, "Failed to refresh subscription snapshot", "error", err)
			continue
		}
		c.mu.Lock()
		if _, live := c.subs[sub.id]; live {
			sub.push(snap)
		}
		c.mu.Unlock()
	}
}

type subscription struct {
	id    int64
	query docstore.Query
	col   *Collection
	ch    chan []core.Transaction
	once  sync.Once
}

func (s *subscription) Snapshots() <-chan []core.Transaction { return s.ch }

func (s *subscription) Err() error { return nil }

func (s *subscription) Cancel() {
	s.once.Do(func() {
		s.col.mu.Lock()
		delete(s.col.subs, s.id)
		close(s.ch)
		s.col.mu.Unlock()
	})
}

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

func newDocID() (string, error) {
	var b [10]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return "tx-" + hex.EncodeToString(b[:]), nil
}
