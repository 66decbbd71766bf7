package store

import (
	"context"
	"log/slog"

	"catatuang/internal/core"
	"catatuang/internal/docstore"
	"catatuang/internal/session"
)

// CreateInput carries the user-controlled fields of a new transaction.
// Amount arrives as text and is coerced to a numeric value before the
// write; Date defaults to today and Note to the empty string.
type CreateInput struct {
	Amount   string
	Date     string
	Category string
	Name     string
	Note     string
	Kind     core.Kind
}

// UpdateInput carries the fields an update may change. ID, owner and
// creation timestamp are not expressible here and therefore immutable.
type UpdateInput struct {
	Amount   *string
	Date     *string
	Category *string
	Name     *string
	Note     *string
	Kind     *core.Kind
}

// Create validates and writes a new transaction stamped with the bound
// identity. The cache is not touched; the result arrives with the next
// snapshot.
func (s *LiveStore) Create(ctx context.Context, in CreateInput) (string, error) {
	ident, err := s.requireIdentity("create")
	if err != nil {
		return "", err
	}

	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return "", err
	}

	date := core.DateOf(s.clock())
	if in.Date != "" {
		date, err = core.ParseDate(in.Date)
		if err != nil {
			return "", err
		}
	}

	tx := core.Transaction{
		OwnerID:  ident.UID,
		Amount:   amount,
		Date:     date,
		Category: in.Category,
		Name:     in.Name,
		Note:     in.Note,
		Kind:     in.Kind,
	}
	if err := tx.Validate(); err != nil {
		return "", err
	}

	id, err := s.col.Add(ctx, tx)
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", id,
		"owner_id", ident.UID,
		"kind", string(tx.Kind),
		"category", tx.Category)
	s.publish(ctx, "created", id, ident.UID)
	return id, nil
}

// Update applies the set fields of in to the transaction. The write is
// scoped to the bound identity's documents; the update timestamp is
// refreshed by the backend.
func (s *LiveStore) Update(ctx context.Context, id string, in UpdateInput) error {
	ident, err := s.requireIdentity("update")
	if err != nil {
		return err
	}

	var u docstore.Update
	if in.Amount != nil {
		amount, err := core.ParseAmount(*in.Amount)
		if err != nil {
			return err
		}
		u.Amount = &amount
	}
	if in.Date != nil {
		date, err := core.ParseDate(*in.Date)
		if err != nil {
			return err
		}
		u.Date = &date
	}
	if in.Kind != nil {
		if !in.Kind.IsValid() {
			return core.ErrInvalidKind
		}
		u.Kind = in.Kind
	}
	u.Category = in.Category
	u.Name = in.Name
	u.Note = in.Note

	if err := s.col.Update(ctx, id, ident.UID, u); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction updated", "id", id, "owner_id", ident.UID)
	s.publish(ctx, "updated", id, ident.UID)
	return nil
}

// Delete removes the transaction. Hard delete, scoped to the bound
// identity's documents.
func (s *LiveStore) Delete(ctx context.Context, id string) error {
	ident, err := s.requireIdentity("delete")
	if err != nil {
		return err
	}

	if err := s.col.Delete(ctx, id, ident.UID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "owner_id", ident.UID)
	s.publish(ctx, "deleted", id, ident.UID)
	return nil
}

// requireIdentity fails fast when no identity is bound, before any remote
// call is attempted.
func (s *LiveStore) requireIdentity(op string) (session.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return session.Identity{}, &docstore.Error{
			Code:    docstore.CodeUnauthenticated,
			Op:      op,
			Message: "no identity bound",
		}
	}
	return *s.identity, nil
}

func (s *LiveStore) publish(ctx context.Context, op, id, ownerID string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, op, id, ownerID); err != nil {
		slog.WarnContext(ctx, "Failed to publish transaction event",
			"operation", op,
			"id", id,
			"error", err)
	}
}
