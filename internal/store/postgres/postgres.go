// Package postgres implements the store.Archive interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/chemnet/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Archive implements store.Archive backed by a PostgreSQL database.
type Archive struct {
	db  *sql.DB
	now func() time.Time
}

// Compile-time check that Archive implements store.Archive.
var _ store.Archive = (*Archive)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*Archive, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an already migrated database handle.
func NewWithDB(db *sql.DB) *Archive {
	return &Archive{db: db, now: time.Now}
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Write upserts the project file stored under key.
func (a *Archive) Write(ctx context.Context, key string, data []byte) error {
	p, err := describe(key, data, a.now())
	if err != nil {
		return err
	}
	if err := queryUpsertProject(ctx, a.db, p); err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}
	return nil
}

func (a *Archive) Get(ctx context.Context, key string) (*store.ArchivedProject, error) {
	p, err := queryGetProject(ctx, a.db, key)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get %s: %w", key, store.ErrNotFound)
	}
	return p, err
}

func (a *Archive) List(ctx context.Context) ([]*store.ArchivedProject, error) {
	return queryListProjects(ctx, a.db)
}

func (a *Archive) Delete(ctx context.Context, key string) error {
	err := queryDeleteProject(ctx, a.db, key)
	if err == sql.ErrNoRows {
		return fmt.Errorf("delete %s: %w", key, store.ErrNotFound)
	}
	return err
}
