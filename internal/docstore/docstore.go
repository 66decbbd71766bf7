// Package docstore defines the document store boundary: a collection of
// transaction documents supporting equality filters, optional server-side
// ordering, live subscriptions and owner-scoped writes by id.
//
// The application core only talks to these ports; the memory and sqlite
// subpackages provide the local implementations, the production backend is
// the hosted document database.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"catatuang/internal/core"
)

// Code classifies a store error. The fallback path in the live store keys
// off CodePermissionDenied; everything else propagates to the caller.
type Code string

const (
	CodePermissionDenied Code = "permission-denied"
	CodeNotFound         Code = "not-found"
	CodeUnauthenticated  Code = "unauthenticated"
	CodeUnavailable      Code = "unavailable"
	CodeUnknown          Code = "unknown"
)

// Error is a classified store error. Message carries backend detail that is
// logged but never shown to end users verbatim.
type Error struct {
	Code    Code
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("docstore: %s: %s (%s)", e.Op, msg, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the error code, or CodeUnknown for foreign errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeUnknown
}

// Query describes a live query against the transaction collection.
// A filter-only query (OrderByCreatedDesc false) is a strict subset of the
// filter+order query and may be accepted where the ordered one is rejected
// by the backend's access-control policy.
type Query struct {
	OwnerID            string
	OrderByCreatedDesc bool
}

// Update carries the mutable fields of a transaction. ID, OwnerID and
// CreatedAt have no representation here, so they cannot be changed through
// an update. Nil fields are left untouched; UpdatedAt is always refreshed
// by the store.
type Update struct {
	Amount   *decimal.Decimal
	Date     *core.Date
	Category *string
	Name     *string
	Note     *string
	Kind     *core.Kind
}

// Subscription is a cancellable handle on a live query. Snapshots delivers
// complete collection states in feed order; the channel is closed when the
// subscription ends, after which Err reports the terminal error, if any.
//
// Cancel is synchronous: once it returns, no further snapshot is delivered.
// Cancelling twice is safe.
type Subscription interface {
	Snapshots() <-chan []core.Transaction
	Err() error
	Cancel()
}

// Collection is the document store port for transaction documents.
type Collection interface {
	// Subscribe opens a live subscription for the query. A rejected query
	// surfaces as an *Error; permission-denied rejections are recoverable
	// via a filter-only query.
	Subscribe(ctx context.Context, q Query) (Subscription, error)

	// Add stores a new document. The store assigns the id and the
	// created/updated timestamps; the returned id is stable thereafter.
	Add(ctx context.Context, tx core.Transaction) (string, error)

	// Update applies the non-nil fields of u to the document and
	// refreshes its updated timestamp. A document owned by another
	// identity is rejected with permission-denied.
	Update(ctx context.Context, id, ownerID string, u Update) error

	// Delete removes the document. Hard delete, no tombstone. A
	// document owned by another identity is rejected with
	// permission-denied.
	Delete(ctx context.Context, id, ownerID string) error
}

// ServerTime is a convenience for backends assigning timestamps.
func ServerTime(clock func() time.Time) *time.Time {
	t := clock()
	return &t
}
