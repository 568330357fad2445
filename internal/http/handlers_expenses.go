package http

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"savesmart/internal/core"
	"savesmart/internal/storage"
)

type expenseRequest struct {
	Name        *string          `json:"name"`
	Amount      *decimal.Decimal `json:"amount"`
	CategoryID  *int64           `json:"category_id"`
	TypeID      *int64           `json:"type_id"`
	ExpenseDate *core.Date       `json:"expense_date"`
	Description *string          `json:"description"`
	UserID      *int64           `json:"user_id"`
}

// checkExpenseRefs verifies the optional category/type references exist.
func (s *Server) checkExpenseRefs(r *http.Request, categoryID, typeID *int64) error {
	if categoryID != nil {
		if _, err := s.store.Categories.GetByID(r.Context(), *categoryID); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.Validation("category does not exist")
			}
			return err
		}
	}
	if typeID != nil {
		if _, err := s.store.Types.GetByID(r.Context(), *typeID); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.Validation("type does not exist")
			}
			return err
		}
	}
	return nil
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
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
	case req.ExpenseDate == nil || req.ExpenseDate.IsZero():
		respondError(w, r, core.Validation("expense_date is required"))
		return
	}

	if err := s.checkExpenseRefs(r, req.CategoryID, req.TypeID); err != nil {
		respondError(w, r, err)
		return
	}

	user, _ := userFromContext(r.Context())
	userID := user.ID
	if req.UserID != nil {
		userID = *req.UserID
	}

	expense, err := s.store.Expenses.Create(r.Context(), core.AvoidedExpense{
		UserID:      userID,
		Name:        strings.TrimSpace(*req.Name),
		Amount:      *req.Amount,
		CategoryID:  req.CategoryID,
		TypeID:      req.TypeID,
		ExpenseDate: *req.ExpenseDate,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, expense)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filters, err := expenseFiltersFromQuery(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	page := parsePage(r)
	expenses, total, err := s.store.Expenses.List(r.Context(), filters, page)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, expenses, page, total)
}

func expenseFiltersFromQuery(r *http.Request) (storage.ExpenseFilters, error) {
	var (
		f   storage.ExpenseFilters
		err error
	)
	if f.UserID, err = queryInt64(r, "userId"); err != nil {
		return f, err
	}
	if f.CategoryID, err = queryInt64(r, "categoryId"); err != nil {
		return f, err
	}
	if f.TypeID, err = queryInt64(r, "typeId"); err != nil {
		return f, err
	}
	if f.StartDate, err = queryDate(r, "startDate"); err != nil {
		return f, err
	}
	if f.EndDate, err = queryDate(r, "endDate"); err != nil {
		return f, err
	}
	f.Search = strings.TrimSpace(r.URL.Query().Get("search"))
	return f, nil
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	expense, err := s.store.Expenses.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, expense)
}

func (s *Server) handleGetExpenseWithRelations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	expense, err := s.store.Expenses.GetWithRelations(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, expense)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if _, err := s.store.Expenses.GetByID(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
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
	if err := s.checkExpenseRefs(r, req.CategoryID, req.TypeID); err != nil {
		respondError(w, r, err)
		return
	}
	if req.CategoryID != nil {
		assigns = append(assigns, storage.Set("category_id", *req.CategoryID))
	}
	if req.TypeID != nil {
		assigns = append(assigns, storage.Set("type_id", *req.TypeID))
	}
	if req.ExpenseDate != nil && !req.ExpenseDate.IsZero() {
		assigns = append(assigns, storage.Set("expense_date", req.ExpenseDate.Time))
	}
	if req.Description != nil {
		assigns = append(assigns, storage.Set("description", *req.Description))
	}

	if err := s.store.Expenses.Update(r.Context(), id, assigns); err != nil {
		respondError(w, r, err)
		return
	}

	expense, err := s.store.Expenses.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if _, err := s.store.Expenses.GetByID(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.store.Expenses.HardDelete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "avoided expense deleted")
}

// handleExportExpenses streams the authenticated user's avoided expenses
// as a CSV attachment.
func (s *Server) handleExportExpenses(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	expenses, err := s.store.Expenses.ListAllByUser(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="avoided-expenses.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "name", "amount", "expense_date", "category_id", "type_id", "description"})
	for _, e := range expenses {
		var categoryID, typeID, description string
		if e.CategoryID != nil {
			categoryID = strconv.FormatInt(*e.CategoryID, 10)
		}
		if e.TypeID != nil {
			typeID = strconv.FormatInt(*e.TypeID, 10)
		}
		if e.Description != nil {
			description = *e.Description
		}
		_ = cw.Write([]string{
			strconv.FormatInt(e.ID, 10),
			e.Name,
			e.Amount.String(),
			e.ExpenseDate.String(),
			categoryID,
			typeID,
			description,
		})
	}
	cw.Flush()
}

func (s *Server) handleExpenseUserStats(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}

	stats, err := s.store.Expenses.UserStats(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, stats)
}

func (s *Server) handleMonthlySavings(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	year, err := queryInt(r, "year")
	if err != nil {
		respondError(w, r, err)
		return
	}
	month, err := queryInt(r, "month")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if month < 0 || month > 12 {
		respondError(w, r, core.Validation("month must be between 1 and 12"))
		return
	}

	savings, err := s.store.Expenses.MonthlySavings(r.Context(), userID, year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if savings == nil {
		savings = []core.MonthlySavings{}
	}
	respondData(w, http.StatusOK, savings)
}

func (s *Server) handleSavingsByCategory(w http.ResponseWriter, r *http.Request) {
	s.handleGroupedSavings(w, r, "category")
}

func (s *Server) handleSavingsByType(w http.ResponseWriter, r *http.Request) {
	s.handleGroupedSavings(w, r, "type")
}

func (s *Server) handleGroupedSavings(w http.ResponseWriter, r *http.Request, relation string) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}

	groups, err := s.store.Expenses.SavingsGroupedBy(r.Context(), userID, relation)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if groups == nil {
		groups = []core.GroupedSavings{}
	}
	respondData(w, http.StatusOK, groups)
}
