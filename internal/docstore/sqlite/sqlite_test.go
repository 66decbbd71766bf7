package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"catatuang/internal/core"
	"catatuang/internal/docstore"
)

func openTestCollection(t *testing.T) *Collection {
	t.Helper()
	col, err := NewCollection(filepath.Join(t.TempDir(), "catatuang.db"))
	if err != nil {
		t.Fatalf("open collection: %v", err)
	}
	t.Cleanup(func() { col.Close() })
	return col
}

func TestAddQueryRoundTrip(t *testing.T) {
	ctx := context.Background()
	col := openTestCollection(t)

	id, err := col.Add(ctx, core.Transaction{
		OwnerID:  "u1",
		Amount:   decimal.NewFromInt(50000),
		Date:     core.NewDate(2025, 6, 1),
		Category: "Gaji",
		Name:     "Gaji bulanan",
		Kind:     core.KindIncome,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	sub, err := col.Subscribe(ctx, docstore.Query{OwnerID: "u1", OrderByCreatedDesc: true})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Cancel()

	snap := <-sub.Snapshots()
	if len(snap) != 1 {
		t.Fatalf("expected 1 doc, got %d", len(snap))
	}
	got := snap[0]
	if got.ID != id || got.OwnerID != "u1" || got.Kind != core.KindIncome {
		t.Fatalf("unexpected doc: %+v", got)
	}
	if !got.Amount.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("amount = %s, want 50000", got.Amount)
	}
	if got.Date.String() != "2025-06-01" {
		t.Fatalf("date = %s, want 2025-06-01", got.Date)
	}
	if got.CreatedAt == nil || got.UpdatedAt == nil {
		t.Fatal("timestamps must be assigned on add")
	}
}

func TestSubscriptionSeesLocalWrites(t *testing.T) {
	ctx := context.Background()
	col := openTestCollection(t)

	sub, err := col.Subscribe(ctx, docstore.Query{OwnerID: "u1"})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Cancel()
	if snap := <-sub.Snapshots(); len(snap) != 0 {
		t.Fatalf("initial snapshot should be empty, got %d", len(snap))
	}

	id, err := col.Add(ctx, core.Transaction{
		OwnerID:  "u1",
		Amount:   decimal.NewFromInt(1000),
		Date:     core.NewDate(2025, 6, 2),
		Category: "Makanan",
		Name:     "kopi",
		Kind:     core.KindExpense,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if snap := waitSnapshot(t, sub); len(snap) != 1 {
		t.Fatalf("expected 1 doc after add, got %d", len(snap))
	}

	amount := decimal.NewFromInt(2500)
	if err := col.Update(ctx, id, "u1", docstore.Update{Amount: &amount}); err != nil {
		t.Fatalf("update: %v", err)
	}
	snap := waitSnapshot(t, sub)
	if len(snap) != 1 || !snap[0].Amount.Equal(amount) {
		t.Fatalf("expected updated amount 2500, got %+v", snap)
	}

	if err := col.Delete(ctx, id, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if snap := waitSnapshot(t, sub); len(snap) != 0 {
		t.Fatalf("expected empty snapshot after delete, got %d", len(snap))
	}
}

func TestWritesOnMissingDocument(t *testing.T) {
	ctx := context.Background()
	col := openTestCollection(t)

	amount := decimal.NewFromInt(1)
	if err := col.Update(ctx, "tx-missing", "u1", docstore.Update{Amount: &amount}); docstore.CodeOf(err) != docstore.CodeNotFound {
		t.Fatalf("update: expected not-found, got %v", err)
	}
	if err := col.Delete(ctx, "tx-missing", "u1"); docstore.CodeOf(err) != docstore.CodeNotFound {
		t.Fatalf("delete: expected not-found, got %v", err)
	}
}

func TestWritesRejectOwnerMismatch(t *testing.T) {
	ctx := context.Background()
	col := openTestCollection(t)

	id, err := col.Add(ctx, core.Transaction{
		OwnerID:  "u1",
		Amount:   decimal.NewFromInt(1000),
		Date:     core.NewDate(2025, 6, 2),
		Category: "Makanan",
		Name:     "kopi",
		Kind:     core.KindExpense,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	amount := decimal.NewFromInt(1)
	if err := col.Update(ctx, id, "u2", docstore.Update{Amount: &amount}); docstore.CodeOf(err) != docstore.CodePermissionDenied {
		t.Fatalf("update: expected permission-denied, got %v", err)
	}
	if err := col.Delete(ctx, id, "u2"); docstore.CodeOf(err) != docstore.CodePermissionDenied {
		t.Fatalf("delete: expected permission-denied, got %v", err)
	}
	if err := col.Delete(ctx, id, "u1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestAmountPrecisionSurvivesRoundTrip(t *testing.T) {
	ctx := context.Background()
	col := openTestCollection(t)

	amount, err := decimal.NewFromString("123456789.123456789")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := col.Add(ctx, core.Transaction{
		OwnerID:  "u1",
		Amount:   amount,
		Date:     core.NewDate(2025, 6, 3),
		Category: "Investasi",
		Name:     "saham",
		Kind:     core.KindIncome,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	sub, err := col.Subscribe(ctx, docstore.Query{OwnerID: "u1"})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Cancel()

	snap := waitSnapshot(t, sub)
	if len(snap) != 1 {
		t.Fatalf("expected 1 doc, got %d", len(snap))
	}
	if got := snap[0].Amount; !got.Equal(amount) {
		t.Fatalf("amount = %s, want %s", got, amount)
	}
}

func waitSnapshot(t *testing.T, sub docstore.Subscription) []core.Transaction {
	t.Helper()
	select {
	case snap, ok := <-sub.Snapshots():
		if !ok {
			t.Fatal("snapshot channel closed unexpectedly")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}
