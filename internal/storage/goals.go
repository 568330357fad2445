package storage

import (
	"context"
	"database/sql"

	"savesmart/internal/core"
)

var goalColumns = []string{
	"id", "user_id", "name", "target_amount", "start_date", "end_date",
	"description", "created_at", "updated_at",
}

func scanGoal(row RowScanner) (core.Goal, error) {
	var g core.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.StartDate, &g.EndDate,
		&g.Description, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

// GoalStore persists savings goals.
type GoalStore struct {
	*Repo[core.Goal]
}

func NewGoalStore(db *sql.DB) *GoalStore {
	return &GoalStore{Repo: NewRepo(db, Descriptor{
		Table:   "goals",
		Columns: goalColumns,
	}, scanGoal)}
}

// Create inserts the goal and returns the stored row.
func (s *GoalStore) Create(ctx context.Context, g core.Goal) (core.Goal, error) {
	id, err := s.Insert(ctx,
		[]string{"user_id", "name", "target_amount", "start_date", "end_date", "description"},
		[]any{g.UserID, g.Name, g.TargetAmount, g.StartDate.Time, g.EndDate.Time, g.Description})
	if err != nil {
		return core.Goal{}, err
	}
	return s.GetByID(ctx, id)
}

// ListByUser returns one user's goals over a pagination window.
func (s *GoalStore) ListByUser(ctx context.Context, userID int64, page Page) ([]core.Goal, int64, error) {
	return s.Repo.List(ctx, []Cond{Eq("user_id", userID)}, "created_at DESC, id DESC", page)
}
