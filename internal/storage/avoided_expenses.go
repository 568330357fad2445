package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"savesmart/internal/core"
)

var expenseColumns = []string{
	"id", "user_id", "name", "amount", "category_id", "type_id",
	"expense_date", "description", "created_at", "updated_at",
}

func scanExpense(row RowScanner) (core.AvoidedExpense, error) {
	var e core.AvoidedExpense
	err := row.Scan(&e.ID, &e.UserID, &e.Name, &e.Amount, &e.CategoryID, &e.TypeID,
		&e.ExpenseDate, &e.Description, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// ExpenseFilters narrows avoided-expense listings; zero fields are ignored.
type ExpenseFilters struct {
	UserID     *int64
	CategoryID *int64
	TypeID     *int64
	StartDate  *core.Date
	EndDate    *core.Date
	Search     string
}

func (f ExpenseFilters) conds() []Cond {
	var conds []Cond
	if f.UserID != nil {
		conds = append(conds, Eq("user_id", *f.UserID))
	}
	if f.CategoryID != nil {
		conds = append(conds, Eq("category_id", *f.CategoryID))
	}
	if f.TypeID != nil {
		conds = append(conds, Eq("type_id", *f.TypeID))
	}
	if f.StartDate != nil {
		conds = append(conds, Gte("expense_date", f.StartDate.Time))
	}
	if f.EndDate != nil {
		conds = append(conds, Lte("expense_date", f.EndDate.Time))
	}
	if f.Search != "" {
		conds = append(conds, Contains("name", f.Search))
	}
	return conds
}

// AvoidedExpenseStore persists avoided expenses (savings events).
type AvoidedExpenseStore struct {
	*Repo[core.AvoidedExpense]
	db *sql.DB
}

func NewAvoidedExpenseStore(db *sql.DB) *AvoidedExpenseStore {
	return &AvoidedExpenseStore{
		Repo: NewRepo(db, Descriptor{
			Table:   "avoided_expenses",
			Columns: expenseColumns,
		}, scanExpense),
		db: db,
	}
}

// Create inserts the expense and returns the stored row.
func (s *AvoidedExpenseStore) Create(ctx context.Context, e core.AvoidedExpense) (core.AvoidedExpense, error) {
	id, err := s.Insert(ctx,
		[]string{"user_id", "name", "amount", "category_id", "type_id", "expense_date", "description"},
		[]any{e.UserID, e.Name, e.Amount, e.CategoryID, e.TypeID, e.ExpenseDate.Time, e.Description})
	if err != nil {
		return core.AvoidedExpense{}, err
	}
	return s.GetByID(ctx, id)
}

// List applies the filters over one pagination window.
func (s *AvoidedExpenseStore) List(ctx context.Context, f ExpenseFilters, page Page) ([]core.AvoidedExpense, int64, error) {
	return s.Repo.List(ctx, f.conds(), "expense_date DESC, id DESC", page)
}

// ListAllByUser returns every expense of one user ordered by date.
func (s *AvoidedExpenseStore) ListAllByUser(ctx context.Context, userID int64) ([]core.AvoidedExpense, error) {
	return s.Select(ctx, []Cond{Eq("user_id", userID)}, "expense_date DESC, id DESC")
}

// GetWithRelations joins the owning user and the optional category/type.
func (s *AvoidedExpenseStore) GetWithRelations(ctx context.Context, id int64) (core.AvoidedExpenseWithRelations, error) {
	const query = `SELECT e.id, e.user_id, e.name, e.amount, e.category_id, e.type_id,
        e.expense_date, e.description, e.created_at, e.updated_at,
        u.username, c.name, t.name
    FROM avoided_expenses e
    JOIN users u ON u.id = e.user_id
    LEFT JOIN categories c ON c.id = e.category_id
    LEFT JOIN types t ON t.id = e.type_id
    WHERE e.id = ?`

	var r core.AvoidedExpenseWithRelations
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.UserID, &r.Name, &r.Amount, &r.CategoryID, &r.TypeID,
		&r.ExpenseDate, &r.Description, &r.CreatedAt, &r.UpdatedAt,
		&r.Username, &r.CategoryName, &r.TypeName)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AvoidedExpenseWithRelations{}, core.ErrNotFound
	}
	if err != nil {
		return core.AvoidedExpenseWithRelations{}, fmt.Errorf("select expense with relations: %w", err)
	}
	return r, nil
}

// UserStats aggregates one user's savings with independent sum and count
// queries run concurrently.
func (s *AvoidedExpenseStore) UserStats(ctx context.Context, userID int64) (core.SavingsStats, error) {
	var (
		total decimal.Decimal
		count int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.QueryRowContext(gctx,
			"SELECT COALESCE(SUM(amount), 0) FROM avoided_expenses WHERE user_id = ?", userID).Scan(&total)
	})
	g.Go(func() error {
		return s.db.QueryRowContext(gctx,
			"SELECT COUNT(*) FROM avoided_expenses WHERE user_id = ?", userID).Scan(&count)
	})
	if err := g.Wait(); err != nil {
		return core.SavingsStats{}, fmt.Errorf("aggregate user savings: %w", err)
	}

	stats := core.SavingsStats{TotalSavings: total, Count: count}
	if count > 0 {
		stats.AverageAmount = total.DivRound(decimal.NewFromInt(count), 2)
	}
	return stats, nil
}

// MonthlySavings groups one user's savings per calendar month, most
// recent first. Grouping happens over the fetched rows; expense dates
// are normalized to UTC midnight so bucketing by year/month is stable.
// Year and month are optional narrowing filters (0 means all).
func (s *AvoidedExpenseStore) MonthlySavings(ctx context.Context, userID int64, year, month int) ([]core.MonthlySavings, error) {
	expenses, err := s.ListAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	type bucket struct{ year, month int }
	totals := make(map[bucket]*core.MonthlySavings)
	var order []bucket
	for _, e := range expenses {
		b := bucket{e.ExpenseDate.Year(), int(e.ExpenseDate.Month())}
		if year != 0 && b.year != year {
			continue
		}
		if month != 0 && b.month != month {
			continue
		}
		m, ok := totals[b]
		if !ok {
			m = &core.MonthlySavings{Year: b.year, Month: b.month}
			totals[b] = m
			order = append(order, b)
		}
		m.Total = m.Total.Add(e.Amount)
		m.Count++
	}

	// Rows arrive ordered by expense_date DESC, so first appearance of a
	// bucket already yields newest-month-first output.
	result := make([]core.MonthlySavings, 0, len(order))
	for _, b := range order {
		result = append(result, *totals[b])
	}
	return result, nil
}

// SavingsGroupedBy sums one user's savings per category or per type. The
// name column is NULL for rows whose reference was cleared.
func (s *AvoidedExpenseStore) SavingsGroupedBy(ctx context.Context, userID int64, relation string) ([]core.GroupedSavings, error) {
	var query string
	switch relation {
	case "category":
		query = `SELECT c.name, COALESCE(SUM(e.amount), 0), COUNT(*)
            FROM avoided_expenses e
            LEFT JOIN categories c ON c.id = e.category_id
            WHERE e.user_id = ?
            GROUP BY e.category_id, c.name
            ORDER BY SUM(e.amount) DESC`
	case "type":
		query = `SELECT t.name, COALESCE(SUM(e.amount), 0), COUNT(*)
            FROM avoided_expenses e
            LEFT JOIN types t ON t.id = e.type_id
            WHERE e.user_id = ?
            GROUP BY e.type_id, t.name
            ORDER BY SUM(e.amount) DESC`
	default:
		return nil, fmt.Errorf("unsupported savings grouping: %s", relation)
	}

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("group savings by %s: %w", relation, err)
	}
	defer rows.Close()

	var groups []core.GroupedSavings
	for rows.Next() {
		var g core.GroupedSavings
		if err := rows.Scan(&g.Name, &g.Total, &g.Count); err != nil {
			return nil, fmt.Errorf("scan grouped savings: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
