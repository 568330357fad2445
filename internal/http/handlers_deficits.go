package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"savesmart/internal/core"
	"savesmart/internal/storage"
)

type deficitRequest struct {
	Name        *string          `json:"name"`
	Amount      *decimal.Decimal `json:"amount"`
	StartDate   *core.Date       `json:"start_date"`
	EndDate     *core.Date       `json:"end_date"`
	Description *string          `json:"description"`
	UserID      *int64           `json:"user_id"`
}

func (s *Server) handleCreateDeficit(w http.ResponseWriter, r *http.Request) {
	var req deficitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	switch {
	case req.Name == nil || strings.TrimSpace(*req.Name) == "":
		respondError(w, r, core.Validation("name is required"))
		return
	case req.Amount == nil || !req.Amount.IsPositive():
		respondError(w, r, core.Validation("amount must be greater than 0"))
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

	deficit, err := s.store.Deficits.Create(r.Context(), core.Deficit{
		UserID:      userID,
		Name:        strings.TrimSpace(*req.Name),
		Amount:      *req.Amount,
		StartDate:   *req.StartDate,
		EndDate:     *req.EndDate,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, deficit)
}

func (s *Server) handleListDeficits(w http.ResponseWriter, r *http.Request) {
	var (
		f   storage.DeficitFilters
		err error
	)
	if f.UserID, err = queryInt64(r, "userId"); err != nil {
		respondError(w, r, err)
		return
	}
	if f.StartDate, err = queryDate(r, "startDate"); err != nil {
		respondError(w, r, err)
		return
	}
	if f.EndDate, err = queryDate(r, "endDate"); err != nil {
		respondError(w, r, err)
		return
	}
	f.Search = strings.TrimSpace(r.URL.Query().Get("search"))

	page := parsePage(r)
	deficits, total, err := s.store.Deficits.List(r.Context(), f, page)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, deficits, page, total)
}

func (s *Server) handleGetDeficit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	deficit, err := s.store.Deficits.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, deficit)
}

func (s *Server) handleUpdateDeficit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	current, err := s.store.Deficits.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req deficitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	// Date ordering is checked against the merged interval so a partial
	// update cannot invert it.
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
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			respondError(w, r, core.Validation("amount must be greater than 0"))
			return
		}
		assigns = append(assigns, storage.Set("amount", *req.Amount))
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

	if err := s.store.Deficits.Update(r.Context(), id, assigns); err != nil {
		respondError(w, r, err)
		return
	}

	deficit, err := s.store.Deficits.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, deficit)
}

func (s *Server) handleDeleteDeficit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if _, err := s.store.Deficits.GetByID(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.store.Deficits.HardDelete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "deficit deleted")
}

func (s *Server) handleListUserDeficits(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}

	page := parsePage(r)
	deficits, total, err := s.store.Deficits.ListByUser(r.Context(), userID, page)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, deficits, page, total)
}

// handleActiveDeficits lists deficits whose interval contains the given
// date (today when absent).
func (s *Server) handleActiveDeficits(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}

	at, err := queryDate(r, "date")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if at == nil {
		now := time.Now().UTC()
		today := core.NewDate(now.Year(), int(now.Month()), now.Day())
		at = &today
	}

	deficits, err := s.store.Deficits.ListActiveAt(r.Context(), userID, *at)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if deficits == nil {
		deficits = []core.Deficit{}
	}
	respondData(w, http.StatusOK, deficits)
}

func (s *Server) handleDeficitsByDateRange(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}

	start, err := queryDate(r, "startDate")
	if err != nil {
		respondError(w, r, err)
		return
	}
	end, err := queryDate(r, "endDate")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if start == nil || end == nil {
		respondError(w, r, core.Validation("startDate and endDate are required"))
		return
	}
	if start.After(end.Time) {
		respondError(w, r, core.Validation("startDate must be before or equal to endDate"))
		return
	}

	deficits, err := s.store.Deficits.ListOverlapping(r.Context(), userID, *start, *end)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if deficits == nil {
		deficits = []core.Deficit{}
	}
	respondData(w, http.StatusOK, deficits)
}

func (s *Server) handleDeficitUserStats(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}

	now := time.Now().UTC()
	today := core.NewDate(now.Year(), int(now.Month()), now.Day())
	stats, err := s.store.Deficits.UserStats(r.Context(), userID, today)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, stats)
}
