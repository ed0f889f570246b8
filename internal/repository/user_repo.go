package repository

import (
	"context"
	"fmt"

	"github.com/tinyavocado/avocado-server/internal/models"
)

// UserRepository defines operations for storing/retrieving user documents.
// Usernames and primary emails share one namespace: a username may not equal
// any stored email and an email may not equal any stored username, so a
// login target resolves to at most one user.
type UserRepository interface {
	// CreateUser stores the user document.
	// It should return ErrUserExists if the username is already taken and
	// ErrEmailExists if the primary email is already taken, in either namespace.
	CreateUser(ctx context.Context, user *models.User) error

	// FindUsers returns every user whose username or primary email equals target.
	// An empty slice (not an error) is returned when nothing matches.
	FindUsers(ctx context.Context, target string) ([]*models.User, error)

	// UserExists reports whether the username and the email are already in use,
	// each checked against both usernames and emails.
	UserExists(ctx context.Context, username, email string) (usernameTaken bool, emailTaken bool, err error)
}

// Common errors
var ErrUserNotFound = fmt.Errorf("user not found")
var ErrUserExists = fmt.Errorf("user already exists")
var ErrEmailExists = fmt.Errorf("email already in use")
