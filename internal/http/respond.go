package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"catatuang/internal/core"
	"catatuang/internal/docstore"
	"catatuang/internal/session"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeMappedError translates domain errors into HTTP responses. Auth
// errors carry their localized message; everything else gets a generic
// one so raw provider detail stays in the log.
func writeMappedError(w http.ResponseWriter, err error) {
	var ae *session.AuthError
	if errors.As(err, &ae) {
		writeError(w, authStatus(ae.Code), ae.Message)
		return
	}

	switch docstore.CodeOf(err) {
	case docstore.CodeUnauthenticated:
		writeError(w, http.StatusUnauthorized, "Silakan login terlebih dahulu")
		return
	case docstore.CodeNotFound:
		writeError(w, http.StatusNotFound, "Transaksi tidak ditemukan")
		return
	case docstore.CodePermissionDenied:
		writeError(w, http.StatusForbidden, "Akses ditolak")
		return
	}

	if status, msg, ok := validationStatus(err); ok {
		writeError(w, status, msg)
		return
	}

	slog.Error("Unhandled request error", "error", err)
	writeError(w, http.StatusInternalServerError, "Terjadi kesalahan. Silakan coba lagi")
}

func authStatus(code session.Code) int {
	switch code {
	case session.CodeUserNotFound, session.CodeWrongSecret, session.CodeInvalidCredential:
		return http.StatusUnauthorized
	case session.CodeInvalidEmail, session.CodeWeakSecret:
		return http.StatusUnprocessableEntity
	case session.CodeDisabled:
		return http.StatusForbidden
	case session.CodeRateLimited:
		return http.StatusTooManyRequests
	case session.CodeAlreadyInUse:
		return http.StatusConflict
	case session.CodeNetworkFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func validationStatus(err error) (int, string, bool) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, "Nominal tidak valid", true
	case errors.Is(err, core.ErrNegativeAmount):
		return http.StatusUnprocessableEntity, "Nominal tidak boleh negatif", true
	case errors.Is(err, core.ErrInvalidDate):
		return http.StatusUnprocessableEntity, "Tanggal tidak valid", true
	case errors.Is(err, core.ErrEmptyName):
		return http.StatusUnprocessableEntity, "Nama transaksi harus diisi", true
	case errors.Is(err, core.ErrEmptyCategory):
		return http.StatusUnprocessableEntity, "Kategori harus diisi", true
	case errors.Is(err, core.ErrInvalidKind):
		return http.StatusUnprocessableEntity, "Tipe transaksi tidak valid", true
	}
	return 0, "", false
}

// transactionJSON is the wire form of a transaction. Amount travels as a
// decimal string.
type transactionJSON struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Amount    string     `json:"amount"`
	Date      string     `json:"date"`
	Category  string     `json:"category"`
	Name      string     `json:"name"`
	Note      string     `json:"note,omitempty"`
	Kind      string     `json:"kind"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toTransactionJSON(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:        tx.ID,
		OwnerID:   tx.OwnerID,
		Amount:    tx.Amount.String(),
		Date:      tx.Date.String(),
		Category:  tx.Category,
		Name:      tx.Name,
		Note:      tx.Note,
		Kind:      string(tx.Kind),
		CreatedAt: tx.CreatedAt,
		UpdatedAt: tx.UpdatedAt,
	}
}
