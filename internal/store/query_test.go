package store

import (
	"testing"
	"time"

	"catatuang/internal/core"
)

func ts(t time.Time) *time.Time { return &t }

func TestLessCreatedDescTreatsMissingAsNow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-time.Hour)

	pending := core.Transaction{ID: "pending"}
	synced := core.Transaction{ID: "synced", CreatedAt: ts(old)}

	less := LessCreatedDesc(now)
	if !less(pending, synced) {
		t.Fatal("a pending write with no createdAt must sort before older synced writes")
	}
	if less(synced, pending) {
		t.Fatal("ordering must be consistent")
	}
}

func TestSortCreatedDesc(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		{ID: "a", CreatedAt: ts(now.Add(-3 * time.Hour))},
		{ID: "b", CreatedAt: ts(now.Add(-1 * time.Hour))},
		{ID: "pending"},
		{ID: "c", CreatedAt: ts(now.Add(-2 * time.Hour))},
	}

	SortCreatedDesc(txs, now)

	want := []string{"pending", "b", "c", "a"}
	for i, id := range want {
		if txs[i].ID != id {
			t.Fatalf("position %d: got %s, want %s (full: %v)", i, txs[i].ID, id, ids(txs))
		}
	}
}

func TestSortCreatedDescIsStableForEqualTimestamps(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	same := now.Add(-time.Hour)
	txs := []core.Transaction{
		{ID: "first", CreatedAt: ts(same)},
		{ID: "second", CreatedAt: ts(same)},
	}

	SortCreatedDesc(txs, now)

	if txs[0].ID != "first" || txs[1].ID != "second" {
		t.Fatalf("equal timestamps must keep input order, got %v", ids(txs))
	}
}

func TestQueryDescriptors(t *testing.T) {
	p := PrimaryQuery("u1")
	if p.OwnerID != "u1" || !p.OrderByCreatedDesc {
		t.Fatalf("unexpected primary query: %+v", p)
	}
	f := FallbackQuery("u1")
	if f.OwnerID != "u1" || f.OrderByCreatedDesc {
		t.Fatalf("fallback must keep the owner filter and drop the order clause: %+v", f)
	}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i := range txs {
		out[i] = txs[i].ID
	}
	return out
}
