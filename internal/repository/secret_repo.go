package repository

import (
	"context"
	"errors"

	"github.com/tinyavocado/avocado-server/internal/models"
)

// ErrSecretExists is returned when a secret is already stored for a username.
var ErrSecretExists = errors.New("secret already exists for username")

// SecretRepository stores the per-user hashing secrets. Implementations keep
// them apart from user documents (separate database, DB index or file).
type SecretRepository interface {
	// CreateSecret stores a new secret. At most one secret may exist per
	// username; a second create returns ErrSecretExists.
	CreateSecret(ctx context.Context, secret *models.SecretRecord) error
	// FindSecrets returns every secret stored for the username. More than one
	// entry means the store has been tampered with; callers decide what to do.
	FindSecrets(ctx context.Context, username string) ([]*models.SecretRecord, error)
	// DeleteSecrets removes all secrets of a username. Deleting nothing is not an error.
	DeleteSecrets(ctx context.Context, username string) error
}
