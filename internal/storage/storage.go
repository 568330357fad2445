package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"savesmart/internal/core"
)

// Store owns the database handle shared by all entity stores.
type Store struct {
	db *sql.DB

	Users      *UserStore
	Categories *CatalogStore[core.Category]
	Types      *CatalogStore[core.Type]
	Expenses   *AvoidedExpenseStore
	Deficits   *DeficitStore
	Goals      *GoalStore
}

// Open opens (creating if needed) the sqlite database at path and runs
// migrations. Pass ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// Single connection: sqlite has one writer anyway, and this keeps
	// :memory: databases from being split across pool connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{db: db}
	s.Users = NewUserStore(db)
	s.Categories = NewCatalogStore(db, "categories", scanCategory)
	s.Types = NewCatalogStore(db, "types", scanType)
	s.Expenses = NewAvoidedExpenseStore(db)
	s.Deficits = NewDeficitStore(db)
	s.Goals = NewGoalStore(db)
	return s, nil
}

// DB exposes the underlying handle for entity stores and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
