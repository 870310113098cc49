package http

import (
	"net/http"

	"moneypaz/internal/core"
	"moneypaz/internal/services"
)

type createCategoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type categoryResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// handleCreateCategory stores a custom category. Income names get the
// income prefix so they are listed under the income type.
func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	typ, err := parseTypeParam(req.Type)
	if err != nil {
		writeFieldError(w, r, "type", err.Error())
		return
	}
	id := core.CustomCategoryID(typ, sanitizeInput(req.Name))
	if id == "" {
		writeFieldError(w, r, "name", "name is required")
		return
	}
	id = s.store.AddCustomCategory(r.Context(), id)
	writeJSON(w, r, http.StatusCreated, categoryResponse{ID: id, Label: core.NewCustomCategory(id).Label()})
}

type categoriesResponse struct {
	Type       core.MovementType         `json:"type"`
	Categories []services.CategoryOption `json:"categories"`
	CanCreate  bool                      `json:"canCreate"`
}

// handleListCategories lists every category of a type, or searches them
// when q is given.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	typ, err := parseTypeParam(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, r, http.StatusOK, categoriesResponse{Type: typ, Categories: s.store.CategoriesFor(typ)})
		return
	}
	writeJSON(w, r, http.StatusOK, categoriesResponse{
		Type:       typ,
		Categories: s.store.SearchCategories(typ, q),
		CanCreate:  services.CanCreateCategory(s.store.State(), typ, q),
	})
}

func (s *Server) handleQuickCategories(w http.ResponseWriter, r *http.Request) {
	typ, err := parseTypeParam(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	picks := s.store.QuickPickCategories(typ)
	out := make([]services.CategoryOption, 0, len(picks))
	for _, c := range picks {
		out = append(out, services.CategoryOption{Category: c, Label: c.Label()})
	}
	writeJSON(w, r, http.StatusOK, categoriesResponse{Type: typ, Categories: out})
}

func (s *Server) handleConcepts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, map[string][]string{
		"concepts": s.store.MatchConcepts(r.URL.Query().Get("q"), limit),
	})
}

// handleCompareRecurring previews how a recurring expense compares with the
// last one recorded for the same concept or category.
func (s *Server) handleCompareRecurring(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := core.ParseAmount(q.Get("amount"))
	if err != nil {
		writeFieldError(w, r, "amount", err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, s.store.CompareRecurringExpense(amount, q.Get("concept"), q.Get("category")))
}

func (s *Server) handleRelativeDate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if _, err := core.ParseMovementDate(date); err != nil {
		writeFieldError(w, r, "date", "date must be an RFC 3339 timestamp")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"date": date, "label": s.store.FormatRelativeDate(date)})
}
