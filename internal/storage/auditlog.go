// Package storage keeps the mutation audit trail: one append-only sqlite
// table fed by the worker from transaction events.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded mutation.
type Entry struct {
	ID            int64
	Op            string
	TransactionID string
	OwnerID       string
	OccurredAt    time.Time
	RecordedAt    time.Time
}

type AuditLog struct {
	db *sql.DB
}

func NewAuditLog(dbPath string) (*AuditLog, error) {
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

	return &AuditLog{db: db}, nil
}

func (l *AuditLog) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// Record appends one entry. RecordedAt is assigned here.
func (l *AuditLog) Record(ctx context.Context, e Entry) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_log (op, transaction_id, owner_id, occurred_at, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Op, e.TransactionID, e.OwnerID,
		e.OccurredAt.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}

	slog.InfoContext(ctx, "Audit entry recorded",
		"operation", e.Op,
		"transaction_id", e.TransactionID,
		"owner_id", e.OwnerID)
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *AuditLog) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, op, transaction_id, owner_id, occurred_at, recorded_at
		 FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var occurred, recorded string
		if err := rows.Scan(&e.ID, &e.Op, &e.TransactionID, &e.OwnerID, &occurred, &recorded); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if e.OccurredAt, err = time.Parse(time.RFC3339Nano, occurred); err != nil {
			return nil, fmt.Errorf("parse occurred_at: %w", err)
		}
		if e.RecordedAt, err = time.Parse(time.RFC3339Nano, recorded); err != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
