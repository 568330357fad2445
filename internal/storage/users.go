package storage

import (
	"context"
	"database/sql"

	"savesmart/internal/core"
)

var userColumns = []string{
	"id", "username", "password", "email", "google_id", "avatar_url",
	"provider", "is_active", "created_at", "updated_at",
}

func scanUser(row RowScanner) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Email, &u.GoogleID,
		&u.AvatarURL, &u.Provider, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// UserStore persists users.
type UserStore struct {
	*Repo[core.User]
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{Repo: NewRepo(db, Descriptor{
		Table:      "users",
		Columns:    userColumns,
		SoftDelete: true,
	}, scanUser)}
}

// Create inserts the user and returns the stored row.
func (s *UserStore) Create(ctx context.Context, u core.User) (core.User, error) {
	id, err := s.Insert(ctx,
		[]string{"username", "password", "email", "google_id", "avatar_url", "provider", "is_active"},
		[]any{u.Username, u.Password, u.Email, u.GoogleID, u.AvatarURL, u.Provider, u.IsActive})
	if err != nil {
		return core.User{}, err
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (core.User, error) {
	return s.GetBy(ctx, "username", username)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (core.User, error) {
	return s.GetBy(ctx, "email", email)
}

func (s *UserStore) GetByGoogleID(ctx context.Context, googleID string) (core.User, error) {
	return s.GetBy(ctx, "google_id", googleID)
}

// List returns active users, optionally filtered by a username substring.
func (s *UserStore) List(ctx context.Context, search string, page Page) ([]core.User, int64, error) {
	conds := []Cond{Eq("is_active", true)}
	if search != "" {
		conds = append(conds, Contains("username", search))
	}
	return s.Repo.List(ctx, conds, "created_at DESC", page)
}
