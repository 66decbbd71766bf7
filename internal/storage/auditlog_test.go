package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestLog(t *testing.T) *AuditLog {
	t.Helper()
	log, err := NewAuditLog(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	log := newTestLog(t)
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []Entry{
		{Op: "created", TransactionID: "tx-1", OwnerID: "u1", OccurredAt: when},
		{Op: "updated", TransactionID: "tx-1", OwnerID: "u1", OccurredAt: when.Add(time.Minute)},
		{Op: "deleted", TransactionID: "tx-1", OwnerID: "u1", OccurredAt: when.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if err := log.Record(ctx, e); err != nil {
			t.Fatalf("record %s: %v", e.Op, err)
		}
	}

	got, err := log.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	if got[0].Op != "deleted" || got[2].Op != "created" {
		t.Fatalf("entries must come back newest first, got %s..%s", got[0].Op, got[2].Op)
	}
	if !got[0].OccurredAt.Equal(when.Add(2 * time.Minute)) {
		t.Fatalf("occurred_at round trip failed: %v", got[0].OccurredAt)
	}
	if got[0].RecordedAt.IsZero() {
		t.Fatal("recorded_at must be stamped on insert")
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	ctx := context.Background()
	log := newTestLog(t)

	for i := 0; i < 5; i++ {
		if err := log.Record(ctx, Entry{Op: "created", TransactionID: "tx-1", OwnerID: "u1", OccurredAt: time.Now()}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := log.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
}

func TestRecordRejectsUnknownOp(t *testing.T) {
	ctx := context.Background()
	log := newTestLog(t)

	err := log.Record(ctx, Entry{Op: "renamed", TransactionID: "tx-1", OwnerID: "u1", OccurredAt: time.Now()})
	if err == nil {
		t.Fatal("the op check constraint must reject unknown operations")
	}
}
