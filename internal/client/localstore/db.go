// Package localstore bootstraps the client's local SQLite database and
// applies the embedded goose migrations.
package localstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/opsdash/internal/client/migrations"
	"github.com/dmitrijs2005/opsdash/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/opsdash/internal/dbx"
	"github.com/dmitrijs2005/opsdash/internal/filex"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

type Repositories struct {
	DB       *sql.DB
	Metadata metadata.Repository
}

// Close releases the underlying database.
func (r *Repositories) Close() error {
	return r.DB.Close()
}

// InTx runs fn against a metadata repository bound to one transaction. It
// commits when fn returns nil and rolls back otherwise.
func (r *Repositories) InTx(ctx context.Context, fn func(ctx context.Context, md metadata.Repository) error) error {
	return dbx.WithTx(ctx, r.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, metadata.NewSQLiteRepository(tx))
	})
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to migrate local store: %w", err)
	}
	return nil
}

// Open opens the SQLite database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if filex.IsFilePath(dsn) {
		if _, err := filex.EnsureParentDir(dsn); err != nil {
			return nil, fmt.Errorf("failed to prepare local store: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	// SQLite serializes writers; one connection also keeps ":memory:" databases
	// shared between calls.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Repositories{
		DB:       db,
		Metadata: metadata.NewSQLiteRepository(db),
	}, nil
}
