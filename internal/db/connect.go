package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// Registered drivers: sqlite3, sqlite, pgx, postgres, mysql.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// DB wraps *sql.DB with the dialect it speaks.
type DB struct {
	SQL     *sql.DB
	Driver  string
	Dialect Dialect
}

// Connect opens a database, tunes the pool for its dialect, verifies
// connectivity and applies SQLite pragmas where relevant.
func Connect(ctx context.Context, driver, dsn string) (*DB, error) {
	driver = normalizeDriver(driver)
	if driver == "" {
		return nil, errors.New("db: driver is required")
	}
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}
	tunePool(dialect, sqlDB)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	if dialect == SQLite {
		if err := applySQLitePragmas(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	return &DB{SQL: sqlDB, Driver: driver, Dialect: dialect}, nil
}

func (d *DB) Close() error {
	if d == nil || d.SQL == nil {
		return nil
	}
	return d.SQL.Close()
}

// WithTx runs fn in a transaction, committing when fn returns nil.
func WithTx(ctx context.Context, d *DB, opts *sql.TxOptions, fn func(*sql.Tx) error) (err error) {
	if d == nil || d.SQL == nil {
		return errors.New("db: DB is nil")
	}
	tx, err := d.SQL.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("db: begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if e := tx.Commit(); e != nil {
			err = fmt.Errorf("db: commit: %w", e)
		}
	}()
	err = fn(tx)
	return
}

func tunePool(dialect Dialect, db *sql.DB) {
	maxOpen, maxIdle := 20, 10
	connLife, idleLife := 45*time.Minute, 15*time.Minute
	if dialect == SQLite {
		// single writer
		maxOpen, maxIdle = 1, 1
		connLife, idleLife = 0, 0
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connLife)
	db.SetConnMaxIdleTime(idleLife)
}

func applySQLitePragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("db: sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}

// normalizeDriver maps aliases to registered driver names.
func normalizeDriver(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	switch d {
	case "pg", "pgsql", "postgresql":
		return "postgres"
	case "modernc":
		return "sqlite"
	case "mariadb":
		return "mysql"
	}
	return d
}
