package store

import (
	"sort"
	"time"

	"catatuang/internal/core"
	"catatuang/internal/docstore"
)

// PrimaryQuery is the preferred live query: owner filter plus server-side
// ordering by creation time, newest first.
func PrimaryQuery(ownerID string) docstore.Query {
	return docstore.Query{OwnerID: ownerID, OrderByCreatedDesc: true}
}

// FallbackQuery drops the order clause. The backend's access-control
// policy can reject the composite filter+order query while still accepting
// the plain filter, so this is always a strict subset of PrimaryQuery.
func FallbackQuery(ownerID string) docstore.Query {
	return docstore.Query{OwnerID: ownerID}
}

// LessCreatedDesc is the client-side comparator matching PrimaryQuery's
// order clause. A missing createdAt is treated as now, so pending writes
// the server has not timestamped yet float to the top.
func LessCreatedDesc(now time.Time) func(a, b core.Transaction) bool {
	at := func(tx core.Transaction) time.Time {
		if tx.CreatedAt == nil {
			return now
		}
		return *tx.CreatedAt
	}
	return func(a, b core.Transaction) bool {
		return at(a).After(at(b))
	}
}

// SortCreatedDesc orders a fallback snapshot the way the primary query
// would have, in place.
func SortCreatedDesc(txs []core.Transaction, now time.Time) {
	less := LessCreatedDesc(now)
	sort.SliceStable(txs, func(i, j int) bool { return less(txs[i], txs[j]) })
}
