package http

import (
	"net/http"
	"strings"

	"moneypaz/internal/core"
	"moneypaz/internal/services"
)

type createMovementRequest struct {
	Type        string      `json:"type"`
	Amount      amountField `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Concept     string      `json:"concept"`
	IsRecurring bool        `json:"isRecurring"`
}

// toNewMovement validates the request. The returned field names the first
// invalid input.
func (req createMovementRequest) toNewMovement() (services.NewMovement, string, error) {
	typ, err := core.ParseMovementType(req.Type)
	if err != nil {
		return services.NewMovement{}, "type", err
	}
	amount, err := req.Amount.Positive()
	if err != nil {
		return services.NewMovement{}, "amount", err
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return services.NewMovement{}, "category", core.ErrEmptyCategory
	}
	concept := sanitizeInput(req.Concept)
	description := core.DefaultDescription(sanitizeInput(req.Description), concept, category)
	return services.NewMovement{
		Type:        typ,
		Amount:      amount,
		Category:    category,
		Description: description,
		Concept:     concept,
		IsRecurring: req.IsRecurring,
	}, "", nil
}

func (s *Server) handleCreateMovement(w http.ResponseWriter, r *http.Request) {
	var req createMovementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	in, field, err := req.toNewMovement()
	if err != nil {
		writeFieldError(w, r, field, err.Error())
		return
	}
	m := s.store.AddMovement(r.Context(), in)
	writeJSON(w, r, http.StatusCreated, m)
}

type movementsResponse struct {
	Period    services.Period `json:"period"`
	Movements []core.Movement `json:"movements"`
}

func (s *Server) handleListMovements(w http.ResponseWriter, r *http.Request) {
	period, err := services.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ms, err := s.store.Movements(period)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, movementsResponse{Period: period, Movements: ms})
}

// handleDeleteMovement answers 204 whether or not the id existed.
func (s *Server) handleDeleteMovement(w http.ResponseWriter, r *http.Request) {
	s.store.DeleteMovement(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}
