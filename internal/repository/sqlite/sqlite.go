// Package sqlite stores user documents and secrets in SQLite. Users and
// secrets are expected to live in two different database files.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	username   TEXT NOT NULL UNIQUE,
	email      TEXT UNIQUE,
	document   TEXT NOT NULL,
	created_at TEXT NOT NULL
);`

const rootsSchema = `
CREATE TABLE IF NOT EXISTS roots (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	username   TEXT NOT NULL UNIQUE,
	main       TEXT NOT NULL,
	created_at TEXT NOT NULL
);`

// OpenUsersDB opens the users database and creates its schema.
func OpenUsersDB(ctx context.Context, dsn string) (*sql.DB, error) {
	return open(ctx, dsn, usersSchema)
}

// OpenSecretsDB opens the secrets database and creates its schema.
func OpenSecretsDB(ctx context.Context, dsn string) (*sql.DB, error) {
	return open(ctx, dsn, rootsSchema)
}

func open(ctx context.Context, dsn, schema string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// one writer at a time; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}

// uniqueViolation reports whether err is a UNIQUE constraint failure and,
// if so, which "table.column" it was raised on.
func uniqueViolation(err error) (string, bool) {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return "", false
	}
	msg := sqliteErr.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:], true
	}
	return msg, true
}
