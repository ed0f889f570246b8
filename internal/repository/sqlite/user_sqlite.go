package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tinyavocado/avocado-server/internal/models"
	"github.com/tinyavocado/avocado-server/internal/repository"
)

// SQLiteUserRepository implements UserRepository. The full user document is
// kept as JSON; username and email are lifted into indexed UNIQUE columns.
type SQLiteUserRepository struct {
	db *sql.DB
}

func NewSQLiteUserRepository(db *sql.DB) repository.UserRepository {
	return &SQLiteUserRepository{db: db}
}

func (r *SQLiteUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil || user.Username == "" {
		return errors.New("invalid user data: username must be set")
	}

	document, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	var email sql.NullString
	if e := user.PrimaryEmail(); e != "" {
		email = sql.NullString{String: e, Valid: true}
	}

	// The guard and the insert are one statement, so no other writer can claim
	// either identifier in between.
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, document, created_at)
		SELECT ?, ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM users WHERE username IN (?, ?) OR email IN (?, ?)
		)`,
		user.ID, user.Username, email, string(document), user.CreatedAt.UTC().Format(time.RFC3339Nano),
		user.Username, email, user.Username, email,
	)
	if column, ok := uniqueViolation(err); ok {
		if column == "users.email" {
			return repository.ErrEmailExists
		}
		return repository.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	if inserted > 0 {
		return nil
	}

	usernameTaken, _, err := r.UserExists(ctx, user.Username, email.String)
	if err != nil {
		return err
	}
	if usernameTaken {
		return repository.ErrUserExists
	}
	return repository.ErrEmailExists
}

func (r *SQLiteUserRepository) FindUsers(ctx context.Context, target string) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT document FROM users WHERE username = ? OR email = ?`, target, target)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	found := []*models.User{}
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		var user models.User
		if err := json.Unmarshal([]byte(document), &user); err != nil {
			return nil, fmt.Errorf("json unmarshal failed: %w", err)
		}
		found = append(found, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return found, nil
}

func (r *SQLiteUserRepository) UserExists(ctx context.Context, username, email string) (bool, bool, error) {
	var usernameTaken, emailTaken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT
			EXISTS(SELECT 1 FROM users WHERE username = ? OR email = ?),
			EXISTS(SELECT 1 FROM users WHERE username = ? OR email = ?)`,
		username, username, email, email,
	).Scan(&usernameTaken, &emailTaken)
	if err != nil {
		return false, false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return usernameTaken, emailTaken, nil
}
