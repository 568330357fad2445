package storage

import (
	"context"
	"database/sql"

	"savesmart/internal/core"
)

// Categories and types are structurally identical lookup tables, so one
// generic store serves both.

var catalogColumns = []string{
	"id", "name", "image_link", "description", "is_active", "created_at", "updated_at",
}

func scanCategory(row RowScanner) (core.Category, error) {
	var c core.Category
	err := row.Scan(&c.ID, &c.Name, &c.ImageLink, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanType(row RowScanner) (core.Type, error) {
	var t core.Type
	err := row.Scan(&t.ID, &t.Name, &t.ImageLink, &t.Description, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// CatalogStore persists one of the shared name/description lookup tables.
type CatalogStore[T any] struct {
	*Repo[T]
}

func NewCatalogStore[T any](db *sql.DB, table string, scan func(RowScanner) (T, error)) *CatalogStore[T] {
	return &CatalogStore[T]{Repo: NewRepo(db, Descriptor{
		Table:      table,
		Columns:    catalogColumns,
		SoftDelete: true,
	}, scan)}
}

// Create inserts a row and returns it.
func (s *CatalogStore[T]) Create(ctx context.Context, name string, imageLink, description *string) (T, error) {
	var zero T
	id, err := s.Insert(ctx,
		[]string{"name", "image_link", "description", "is_active"},
		[]any{name, imageLink, description, true})
	if err != nil {
		return zero, err
	}
	return s.GetByID(ctx, id)
}

func (s *CatalogStore[T]) GetByName(ctx context.Context, name string) (T, error) {
	return s.GetBy(ctx, "name", name)
}

// List returns active rows, optionally filtered by a name substring.
func (s *CatalogStore[T]) List(ctx context.Context, search string, page Page) ([]T, int64, error) {
	conds := []Cond{Eq("is_active", true)}
	if search != "" {
		conds = append(conds, Contains("name", search))
	}
	return s.Repo.List(ctx, conds, "created_at DESC", page)
}

// ListActive returns every active row ordered by name.
func (s *CatalogStore[T]) ListActive(ctx context.Context) ([]T, error) {
	return s.Select(ctx, []Cond{Eq("is_active", true)}, "name")
}
