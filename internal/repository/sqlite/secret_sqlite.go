package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tinyavocado/avocado-server/internal/models"
	"github.com/tinyavocado/avocado-server/internal/repository"
)

// SQLiteSecretRepository implements SecretRepository on its own database.
type SQLiteSecretRepository struct {
	db *sql.DB
}

func NewSQLiteSecretRepository(db *sql.DB) repository.SecretRepository {
	return &SQLiteSecretRepository{db: db}
}

func (r *SQLiteSecretRepository) CreateSecret(ctx context.Context, secret *models.SecretRecord) error {
	if secret == nil || secret.Username == "" || secret.Main == "" {
		return errors.New("invalid secret data: username and main must be set")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO roots (username, main, created_at) VALUES (?, ?, ?)`,
		secret.Username, secret.Main, secret.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if _, ok := uniqueViolation(err); ok {
		return repository.ErrSecretExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert secret: %w", err)
	}
	return nil
}

func (r *SQLiteSecretRepository) FindSecrets(ctx context.Context, username string) ([]*models.SecretRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT main, username, created_at FROM roots WHERE username = ?`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query secrets: %w", err)
	}
	defer rows.Close()

	found := []*models.SecretRecord{}
	for rows.Next() {
		var rec models.SecretRecord
		var createdAt string
		if err := rows.Scan(&rec.Main, &rec.Username, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan secret: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
		}
		found = append(found, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate secrets: %w", err)
	}
	return found, nil
}

func (r *SQLiteSecretRepository) DeleteSecrets(ctx context.Context, username string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM roots WHERE username = ?`, username); err != nil {
		return fmt.Errorf("failed to delete secrets: %w", err)
	}
	return nil
}
