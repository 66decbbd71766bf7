package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"catatuang/internal/core"
	"catatuang/internal/report"
	"catatuang/internal/store"
)

type credentialRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type identityResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Format permintaan tidak valid")
		return
	}

	ident, err := s.provider.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	if err := s.store.Bind(r.Context(), ident); err != nil {
		slog.ErrorContext(r.Context(), "Subscription failed after login", "uid", ident.UID, "error", err)
		writeError(w, http.StatusBadGateway, "Koneksi internet bermasalah")
		return
	}

	writeJSON(w, http.StatusOK, identityResponse{UID: ident.UID, Email: ident.Email})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Format permintaan tidak valid")
		return
	}

	ident, err := s.provider.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	if err := s.store.Bind(r.Context(), ident); err != nil {
		slog.ErrorContext(r.Context(), "Subscription failed after registration", "uid", ident.UID, "error", err)
		writeError(w, http.StatusBadGateway, "Koneksi internet bermasalah")
		return
	}

	writeJSON(w, http.StatusCreated, identityResponse{UID: ident.UID, Email: ident.Email})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.provider.Logout(r.Context()); err != nil {
		writeMappedError(w, err)
		return
	}
	s.store.Unbind()
	w.WriteHeader(http.StatusNoContent)
}

// requireSession guards handlers that read the bound user's data. The
// store's own fail-fast check only covers writes.
func (s *Server) requireSession(w http.ResponseWriter) bool {
	if _, ok := s.provider.Current(); !ok {
		writeError(w, http.StatusUnauthorized, "Silakan login terlebih dahulu")
		return false
	}
	return true
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	if !s.requireSession(w) {
		return
	}
	snap := s.store.Snapshot()
	out := make([]transactionJSON, 0, len(snap))
	for _, tx := range snap {
		out = append(out, toTransactionJSON(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

type createTransactionRequest struct {
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Note     string `json:"note"`
	Kind     string `json:"kind"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Format permintaan tidak valid")
		return
	}

	id, err := s.store.Create(r.Context(), store.CreateInput{
		Amount:   req.Amount,
		Date:     req.Date,
		Category: req.Category,
		Name:     req.Name,
		Note:     req.Note,
		Kind:     core.Kind(req.Kind),
	})
	if err != nil {
		writeMappedError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type updateTransactionRequest struct {
	Amount   *string `json:"amount"`
	Date     *string `json:"date"`
	Category *string `json:"category"`
	Name     *string `json:"name"`
	Note     *string `json:"note"`
	Kind     *string `json:"kind"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Format permintaan tidak valid")
		return
	}

	in := store.UpdateInput{
		Amount:   req.Amount,
		Date:     req.Date,
		Category: req.Category,
		Name:     req.Name,
		Note:     req.Note,
	}
	if req.Kind != nil {
		kind := core.Kind(*req.Kind)
		in.Kind = &kind
	}

	if err := s.store.Update(r.Context(), r.PathValue("id"), in); err != nil {
		writeMappedError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeMappedError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categorySumJSON struct {
	Amount string `json:"amount"`
	Kind   string `json:"kind"`
}

type summaryResponse struct {
	Income     string                     `json:"income"`
	Expense    string                     `json:"expense"`
	Balance    string                     `json:"balance"`
	ByCategory map[string]categorySumJSON `json:"by_category"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !s.requireSession(w) {
		return
	}
	snap := s.store.Snapshot()
	totals := core.Totals(snap)

	byCategory := make(map[string]categorySumJSON)
	for category, sum := range core.ByCategory(snap) {
		byCategory[category] = categorySumJSON{Amount: sum.Amount.String(), Kind: string(sum.Kind)}
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Income:     totals.Income.String(),
		Expense:    totals.Expense.String(),
		Balance:    totals.Balance.String(),
		ByCategory: byCategory,
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.provider.Current()
	if !ok {
		writeError(w, http.StatusUnauthorized, "Silakan login terlebih dahulu")
		return
	}
	writeJSON(w, http.StatusOK, identityResponse{UID: ident.UID, Email: ident.Email})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !s.requireSession(w) {
		return
	}
	if s.reporter == nil {
		writeError(w, http.StatusServiceUnavailable, "Ekspor laporan tidak tersedia")
		return
	}

	period, err := report.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Periode tidak valid")
		return
	}

	now := s.clock()
	filtered := report.FilterByPeriod(s.store.Snapshot(), period, now)
	rep := report.Build(filtered, period)
	filename := report.Filename(period, now)

	var buf bytes.Buffer
	if err := s.reporter.Write(&buf, rep); err != nil {
		slog.ErrorContext(r.Context(), "Report export failed", "period", string(period), "error", err)
		writeError(w, http.StatusInternalServerError, "Terjadi kesalahan. Silakan coba lagi")
		return
	}

	// keep a copy on disk when an export directory is configured;
	// failure to archive never fails the download
	if s.exportDir != "" {
		path := filepath.Join(s.exportDir, filename)
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			slog.WarnContext(r.Context(), "Failed to archive export", "path", path, "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := buf.WriteTo(w); err != nil {
		slog.WarnContext(r.Context(), "Failed to stream export", "error", err)
	}
}
