package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open connects to the sqlite database and brings the schema up to date.
// The returned handle is shared by the store and the search index.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, storeError("Open", "", "failed to open database", ErrConnectionFailed)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, storeError("Open", "", "failed to ping database", ErrConnectionFailed)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return storeError("Migrate", "", "failed to load migrations", ErrMigrationFailed)
	}
	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return storeError("Migrate", "", "failed to init migration driver", ErrMigrationFailed)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return storeError("Migrate", "", "failed to init migrator", ErrMigrationFailed)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return storeError("Migrate", "", err.Error(), ErrMigrationFailed)
	}
	return nil
}

// SQLiteStore implements Store on sqlite.
type SQLiteStore struct {
	db *sqlx.DB
}

func NewSQLiteStore(db *sqlx.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type resourceRow struct {
	Version     int       `db:"version"`
	Payload     []byte    `db:"payload"`
	LastUpdated time.Time `db:"last_updated"`
}

// Get returns the current (non-history) version of the resource.
func (s *SQLiteStore) Get(ctx context.Context, key ResourceKey) (*ResourceWrapper, error) {
	var row resourceRow
	err := s.db.GetContext(ctx, &row,
		`SELECT version, payload, last_updated
		   FROM resources
		  WHERE resource_type = ? AND resource_id = ? AND is_history = 0`,
		key.ResourceType, key.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storeError("Get", key.String(), "resource does not exist", ErrNotFound)
	}
	if err != nil {
		return nil, storeError("Get", key.String(), err.Error(), ErrConnectionFailed)
	}
	return &ResourceWrapper{
		ResourceType: key.ResourceType,
		ID:           key.ID,
		Version:      strconv.Itoa(row.Version),
		LastUpdated:  row.LastUpdated,
		Payload:      row.Payload,
	}, nil
}

// Upsert writes a new current version of the resource. The wrapper's version
// is advisory; the store assigns the next sequential version and returns a
// wrapper reflecting what was stored.
func (s *SQLiteStore) Upsert(ctx context.Context, wrapper *ResourceWrapper, expectedVersion string, allowCreate, keepHistory bool) (*ResourceWrapper, error) {
	key := wrapper.Key()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storeError("Upsert", key.String(), err.Error(), ErrConnectionFailed)
	}
	defer tx.Rollback()

	var current int
	err = tx.GetContext(ctx, &current,
		`SELECT version FROM resources
		  WHERE resource_type = ? AND resource_id = ? AND is_history = 0`,
		key.ResourceType, key.ID)
	exists := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storeError("Upsert", key.String(), err.Error(), ErrConnectionFailed)
	}

	if !exists && !allowCreate {
		return nil, storeError("Upsert", key.String(), "resource does not exist and create is not allowed", ErrNotFound)
	}
	if expectedVersion != "" {
		if !exists || expectedVersion != strconv.Itoa(current) {
			return nil, storeError("Upsert", key.String(), "expected version "+expectedVersion+" is stale", ErrVersionConflict)
		}
	}

	next := 1
	if exists {
		next = current + 1
		if keepHistory {
			_, err = tx.ExecContext(ctx,
				`UPDATE resources SET is_history = 1
				  WHERE resource_type = ? AND resource_id = ? AND is_history = 0`,
				key.ResourceType, key.ID)
		} else {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM resources
				  WHERE resource_type = ? AND resource_id = ? AND is_history = 0`,
				key.ResourceType, key.ID)
		}
		if err != nil {
			return nil, storeError("Upsert", key.String(), err.Error(), ErrConnectionFailed)
		}
	}

	stored := &ResourceWrapper{
		ResourceType: wrapper.ResourceType,
		ID:           wrapper.ID,
		Version:      strconv.Itoa(next),
		LastUpdated:  wrapper.LastUpdated,
		Payload:      wrapper.Payload,
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO resources (resource_type, resource_id, version, is_history, payload, last_updated)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		stored.ResourceType, stored.ID, next, []byte(stored.Payload), stored.LastUpdated)
	if err != nil {
		return nil, storeError("Upsert", key.String(), err.Error(), ErrConnectionFailed)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeError("Upsert", key.String(), err.Error(), ErrConnectionFailed)
	}
	return stored, nil
}
