package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"savesmart/internal/core"
)

// Descriptor configures a generic entity repository: the table it reads,
// the select column list (id first), and whether rows carry an is_active
// soft-delete flag.
type Descriptor struct {
	Table      string
	Columns    []string
	SoftDelete bool
}

// RowScanner is satisfied by both *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// Repo implements the shared insert/select/update/delete surface over one
// table. Entity stores embed it and add their table-specific queries.
type Repo[T any] struct {
	db   *sql.DB
	desc Descriptor
	scan func(RowScanner) (T, error)
}

func NewRepo[T any](db *sql.DB, desc Descriptor, scan func(RowScanner) (T, error)) *Repo[T] {
	return &Repo[T]{db: db, desc: desc, scan: scan}
}

// Cond is one WHERE predicate; predicates combine with AND.
type Cond struct {
	Expr string
	Args []any
}

func Eq(column string, v any) Cond {
	return Cond{Expr: column + " = ?", Args: []any{v}}
}

func Gte(column string, v any) Cond {
	return Cond{Expr: column + " >= ?", Args: []any{v}}
}

func Lte(column string, v any) Cond {
	return Cond{Expr: column + " <= ?", Args: []any{v}}
}

// Contains matches rows whose column contains needle. instr() keeps the
// match case-sensitive; sqlite's LIKE folds ASCII case.
func Contains(column, needle string) Cond {
	return Cond{Expr: "instr(" + column + ", ?) > 0", Args: []any{needle}}
}

// Assign is one SET clause of an update.
type Assign struct {
	Column string
	Value  any
}

func Set(column string, v any) Assign {
	return Assign{Column: column, Value: v}
}

// Page is an offset-based pagination window.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

func whereClause(conds []Cond) (string, []any) {
	if len(conds) == 0 {
		return "", nil
	}
	exprs := make([]string, len(conds))
	var args []any
	for i, c := range conds {
		exprs[i] = c.Expr
		args = append(args, c.Args...)
	}
	return " WHERE " + strings.Join(exprs, " AND "), args
}

// Insert writes a row and returns its generated id atomically via
// RETURNING, so concurrent creates cannot observe each other's rows.
func (r *Repo[T]) Insert(ctx context.Context, columns []string, values []any) (int64, error) {
	now := time.Now().UTC()
	columns = append(columns, "created_at", "updated_at")
	values = append(values, now, now)

	query := "INSERT INTO " + r.desc.Table + " (" + strings.Join(columns, ", ") + ") VALUES (" +
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ") RETURNING id"

	var id int64
	if err := r.db.QueryRowContext(ctx, query, values...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert into %s: %w", r.desc.Table, err)
	}
	return id, nil
}

// GetByID returns the row with the given id, or core.ErrNotFound.
func (r *Repo[T]) GetByID(ctx context.Context, id int64) (T, error) {
	return r.GetBy(ctx, "id", id)
}

// GetBy returns the first row whose column equals v, or core.ErrNotFound.
func (r *Repo[T]) GetBy(ctx context.Context, column string, v any) (T, error) {
	var zero T
	query := "SELECT " + strings.Join(r.desc.Columns, ", ") + " FROM " + r.desc.Table +
		" WHERE " + column + " = ? LIMIT 1"
	row := r.db.QueryRowContext(ctx, query, v)
	entity, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, core.ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("select %s by %s: %w", r.desc.Table, column, err)
	}
	return entity, nil
}

// List returns one pagination window plus the total count of all rows
// matching conds. The two queries are independent and run concurrently.
func (r *Repo[T]) List(ctx context.Context, conds []Cond, orderBy string, page Page) ([]T, int64, error) {
	where, args := whereClause(conds)

	var (
		items []T
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query := "SELECT " + strings.Join(r.desc.Columns, ", ") + " FROM " + r.desc.Table + where +
			" ORDER BY " + orderBy + " LIMIT ? OFFSET ?"
		rows, err := r.db.QueryContext(gctx, query, append(append([]any{}, args...), page.Limit, page.Offset())...)
		if err != nil {
			return fmt.Errorf("list %s: %w", r.desc.Table, err)
		}
		defer rows.Close()
		for rows.Next() {
			entity, err := r.scan(rows)
			if err != nil {
				return fmt.Errorf("scan %s row: %w", r.desc.Table, err)
			}
			items = append(items, entity)
		}
		return rows.Err()
	})
	g.Go(func() error {
		query := "SELECT COUNT(*) FROM " + r.desc.Table + where
		if err := r.db.QueryRowContext(gctx, query, args...).Scan(&total); err != nil {
			return fmt.Errorf("count %s: %w", r.desc.Table, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// Select returns all rows matching conds, unpaginated.
func (r *Repo[T]) Select(ctx context.Context, conds []Cond, orderBy string) ([]T, error) {
	where, args := whereClause(conds)
	query := "SELECT " + strings.Join(r.desc.Columns, ", ") + " FROM " + r.desc.Table + where +
		" ORDER BY " + orderBy
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", r.desc.Table, err)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		entity, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", r.desc.Table, err)
		}
		items = append(items, entity)
	}
	return items, rows.Err()
}

// Update applies the given assignments and stamps updated_at.
func (r *Repo[T]) Update(ctx context.Context, id int64, assigns []Assign) error {
	if len(assigns) == 0 {
		return nil
	}
	assigns = append(assigns, Set("updated_at", time.Now().UTC()))

	sets := make([]string, len(assigns))
	args := make([]any, 0, len(assigns)+1)
	for i, a := range assigns {
		sets[i] = a.Column + " = ?"
		args = append(args, a.Value)
	}
	args = append(args, id)

	query := "UPDATE " + r.desc.Table + " SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s: %w", r.desc.Table, err)
	}
	return nil
}

// SoftDelete flags the row inactive. Callers check existence beforehand;
// a zero-row update is not an error.
func (r *Repo[T]) SoftDelete(ctx context.Context, id int64) error {
	return r.Update(ctx, id, []Assign{Set("is_active", false)})
}

// Activate reverses a soft delete.
func (r *Repo[T]) Activate(ctx context.Context, id int64) error {
	return r.Update(ctx, id, []Assign{Set("is_active", true)})
}

// HardDelete removes the row permanently.
func (r *Repo[T]) HardDelete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM "+r.desc.Table+" WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete from %s: %w", r.desc.Table, err)
	}
	return nil
}

// Stats counts total and active rows with two independent queries.
func (r *Repo[T]) Stats(ctx context.Context) (core.EntityStats, error) {
	var stats core.EntityStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.db.QueryRowContext(gctx, "SELECT COUNT(*) FROM "+r.desc.Table).Scan(&stats.Total)
	})
	g.Go(func() error {
		return r.db.QueryRowContext(gctx, "SELECT COUNT(*) FROM "+r.desc.Table+" WHERE is_active = 1").Scan(&stats.Active)
	})
	if err := g.Wait(); err != nil {
		return core.EntityStats{}, fmt.Errorf("count %s stats: %w", r.desc.Table, err)
	}

	stats.Inactive = stats.Total - stats.Active
	return stats, nil
}
