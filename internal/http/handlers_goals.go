package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"savesmart/internal/core"
	"savesmart/internal/storage"
)

type goalRequest struct {
	Name         *string          `json:"name"`
	TargetAmount *decimal.Decimal `json:"target_amount"`
	StartDate    *core.Date       `json:"start_date"`
	EndDate      *core.Date       `json:"end_date"`
	Description  *string          `json:"description"`
	UserID       *int64           `json:"user_id"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	switch {
	case req.Name == nil || strings.TrimSpace(*req.Name) == "":
		respondError(w, r, core.Validation("name is required"))
		return
	case req.TargetAmount == nil || !req.TargetAmount.IsPositive():
		respondError(w, r, core.Validation("target_amount must be greater than 0"))
		return
	case req.StartDate == nil || req.StartDate.IsZero() || req.EndDate == nil || req.EndDate.IsZero():
		respondError(w, r, core.Validation("start_date and end_date are required"))
		return
	case req.StartDate.After(req.EndDate.Time):
		respondError(w, r, core.Validation("start_date must be before or equal to end_date"))
		return
	}

	user, _ := userFromContext(r.Context())
	userID := user.ID
	if req.UserID != nil {
		userID = *req.UserID
	}

	goal, err := s.store.Goals.Create(r.Context(), core.Goal{
		UserID:       userID,
		Name:         strings.TrimSpace(*req.Name),
		TargetAmount: *req.TargetAmount,
		StartDate:    *req.StartDate,
		EndDate:      *req.EndDate,
		Description:  req.Description,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, goal)
}

// handleListGoals pages through the authenticated user's goals.
func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	page := parsePage(r)
	goals, total, err := s.store.Goals.ListByUser(r.Context(), user.ID, page)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, goals, page, total)
}

func (s *Server) handleListUserGoals(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}

	page := parsePage(r)
	goals, total, err := s.store.Goals.ListByUser(r.Context(), userID, page)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, goals, page, total)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	goal, err := s.store.Goals.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, goal)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	current, err := s.store.Goals.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	start, end := current.StartDate, current.EndDate
	if req.StartDate != nil && !req.StartDate.IsZero() {
		start = *req.StartDate
	}
	if req.EndDate != nil && !req.EndDate.IsZero() {
		end = *req.EndDate
	}
	if start.After(end.Time) {
		respondError(w, r, core.Validation("start_date must be before or equal to end_date"))
		return
	}

	var assigns []storage.Assign
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			respondError(w, r, core.Validation("name cannot be empty"))
			return
		}
		assigns = append(assigns, storage.Set("name", name))
	}
	if req.TargetAmount != nil {
		if !req.TargetAmount.IsPositive() {
			respondError(w, r, core.Validation("target_amount must be greater than 0"))
			return
		}
		assigns = append(assigns, storage.Set("target_amount", *req.TargetAmount))
	}
	if req.StartDate != nil && !req.StartDate.IsZero() {
		assigns = append(assigns, storage.Set("start_date", req.StartDate.Time))
	}
	if req.EndDate != nil && !req.EndDate.IsZero() {
		assigns = append(assigns, storage.Set("end_date", req.EndDate.Time))
	}
	if req.Description != nil {
		assigns = append(assigns, storage.Set("description", *req.Description))
	}

	if err := s.store.Goals.Update(r.Context(), id, assigns); err != nil {
		respondError(w, r, err)
		return
	}

	goal, err := s.store.Goals.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, goal)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if _, err := s.store.Goals.GetByID(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.store.Goals.HardDelete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "goal deleted")
}
