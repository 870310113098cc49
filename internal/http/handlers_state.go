package http

import (
	"bytes"
	"net/http"

	"moneypaz/internal/core"
	"moneypaz/internal/log"
	"moneypaz/internal/services"
)

type stateResponse struct {
	Revision uint64            `json:"revision"`
	State    core.FinanceState `json:"state"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, rev := s.store.Snapshot()
	writeJSON(w, r, http.StatusOK, stateResponse{Revision: rev, State: st})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.summary(r.Context()))
}

type balanceRequest struct {
	Amount amountField `json:"amount"`
}

// handleSetBalance sets the starting balance. Negative values are allowed.
func (s *Server) handleSetBalance(w http.ResponseWriter, r *http.Request) {
	var req balanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := req.Amount.Any()
	if err != nil {
		writeFieldError(w, r, "amount", "amount must be a number")
		return
	}
	s.store.SetInitialBalance(r.Context(), amount)
	writeJSON(w, r, http.StatusOK, s.store.Summary())
}

type userRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSetUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	name := sanitizeInput(req.Name)
	if len(name) > 100 {
		writeFieldError(w, r, "name", "name is too long")
		return
	}
	s.store.SetUserName(r.Context(), name)
	writeJSON(w, r, http.StatusOK, map[string]string{"userName": name})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).InfoContext(r.Context(), "Reset requested", log.FieldOperation, log.OpReset)
	s.store.ResetAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleExportJSON downloads the full backup document.
func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	st, now := s.store.State(), s.store.Now()
	var buf bytes.Buffer
	if err := services.WriteJSONExport(&buf, st, now, s.store.Location()); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "JSON export failed",
			log.FieldOperation, log.OpExport, log.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "export failed")
		return
	}
	attachment(w, "application/json; charset=utf-8", services.BackupFileName(now))
	_, _ = w.Write(buf.Bytes())
}

// handleExportCSV downloads the movements as a spreadsheet friendly CSV.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	st, now := s.store.State(), s.store.Now()
	var buf bytes.Buffer
	if err := services.WriteCSVExport(&buf, st, s.store.Location()); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "CSV export failed",
			log.FieldOperation, log.OpExport, log.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "export failed")
		return
	}
	attachment(w, "text/csv; charset=utf-8", services.CSVFileName(now))
	_, _ = w.Write(buf.Bytes())
}
