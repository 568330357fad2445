package storage

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"savesmart/internal/core"
)

var deficitColumns = []string{
	"id", "user_id", "name", "amount", "start_date", "end_date",
	"description", "created_at", "updated_at",
}

func scanDeficit(row RowScanner) (core.Deficit, error) {
	var d core.Deficit
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Amount, &d.StartDate, &d.EndDate,
		&d.Description, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// DeficitFilters narrows deficit listings; zero fields are ignored.
type DeficitFilters struct {
	UserID    *int64
	StartDate *core.Date
	EndDate   *core.Date
	Search    string
}

func (f DeficitFilters) conds() []Cond {
	var conds []Cond
	if f.UserID != nil {
		conds = append(conds, Eq("user_id", *f.UserID))
	}
	if f.StartDate != nil {
		conds = append(conds, Gte("start_date", f.StartDate.Time))
	}
	if f.EndDate != nil {
		conds = append(conds, Lte("end_date", f.EndDate.Time))
	}
	if f.Search != "" {
		conds = append(conds, Contains("name", f.Search))
	}
	return conds
}

// DeficitStore persists budget deficits.
type DeficitStore struct {
	*Repo[core.Deficit]
}

func NewDeficitStore(db *sql.DB) *DeficitStore {
	return &DeficitStore{Repo: NewRepo(db, Descriptor{
		Table:   "deficits",
		Columns: deficitColumns,
	}, scanDeficit)}
}

// Create inserts the deficit and returns the stored row.
func (s *DeficitStore) Create(ctx context.Context, d core.Deficit) (core.Deficit, error) {
	id, err := s.Insert(ctx,
		[]string{"user_id", "name", "amount", "start_date", "end_date", "description"},
		[]any{d.UserID, d.Name, d.Amount, d.StartDate.Time, d.EndDate.Time, d.Description})
	if err != nil {
		return core.Deficit{}, err
	}
	return s.GetByID(ctx, id)
}

// List applies the filters over one pagination window.
func (s *DeficitStore) List(ctx context.Context, f DeficitFilters, page Page) ([]core.Deficit, int64, error) {
	return s.Repo.List(ctx, f.conds(), "created_at DESC, id DESC", page)
}

// ListByUser returns one user's deficits over a pagination window.
func (s *DeficitStore) ListByUser(ctx context.Context, userID int64, page Page) ([]core.Deficit, int64, error) {
	return s.Repo.List(ctx, []Cond{Eq("user_id", userID)}, "created_at DESC, id DESC", page)
}

// ListAllByUser returns every deficit of one user.
func (s *DeficitStore) ListAllByUser(ctx context.Context, userID int64) ([]core.Deficit, error) {
	return s.Select(ctx, []Cond{Eq("user_id", userID)}, "start_date")
}

// ListActiveAt returns deficits whose interval contains the given date.
func (s *DeficitStore) ListActiveAt(ctx context.Context, userID int64, at core.Date) ([]core.Deficit, error) {
	return s.Select(ctx, []Cond{
		Eq("user_id", userID),
		Lte("start_date", at.Time),
		Gte("end_date", at.Time),
	}, "start_date")
}

// UserStats aggregates one user's deficits. Sums are computed over the
// fetched rows so decimal arithmetic stays exact; active means the
// interval contains today's date.
func (s *DeficitStore) UserStats(ctx context.Context, userID int64, today core.Date) (core.DeficitStats, error) {
	deficits, err := s.ListAllByUser(ctx, userID)
	if err != nil {
		return core.DeficitStats{}, err
	}

	var stats core.DeficitStats
	for _, d := range deficits {
		stats.TotalDeficits++
		stats.TotalAmount = stats.TotalAmount.Add(d.Amount)
		if !d.StartDate.After(today.Time) && !d.EndDate.Before(today.Time) {
			stats.ActiveDeficits++
		}
	}
	if stats.TotalDeficits > 0 {
		stats.AverageAmount = stats.TotalAmount.DivRound(decimal.NewFromInt(stats.TotalDeficits), 2)
	}
	return stats, nil
}

// ListOverlapping returns deficits whose interval intersects [start, end]:
// either endpoint falls inside the range, or the deficit contains it.
func (s *DeficitStore) ListOverlapping(ctx context.Context, userID int64, start, end core.Date) ([]core.Deficit, error) {
	overlap := Cond{
		Expr: "((start_date BETWEEN ? AND ?) OR (end_date BETWEEN ? AND ?) OR (start_date <= ? AND end_date >= ?))",
		Args: []any{start.Time, end.Time, start.Time, end.Time, start.Time, end.Time},
	}
	return s.Select(ctx, []Cond{Eq("user_id", userID), overlap}, "start_date")
}
