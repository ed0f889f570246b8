package service

import (
	"context"
	"time"

	"github.com/tinyavocado/avocado-server/internal/models"
)

// SecretStore issues and looks up the per-user secret that keys the credential hash.
type SecretStore interface {
	Create(ctx context.Context, username string) (string, error)
	// Read fails with ErrSecretNotFound, ErrAmbiguous or ErrStorage.
	Read(ctx context.Context, username string) (string, error)
	Delete(ctx context.Context, username string) error
}

type CredentialHasher interface {
	Hash(password, secret string) (string, error)
	// Verify reports a mismatch as (false, nil); only a malformed digest errors.
	Verify(digest, password, secret string) (bool, error)
}

type AuthGenerator interface {
	// Register validates and stores a new user
	Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error)
	// Login checks the credentials of an existing user
	Login(ctx context.Context, req models.LoginRequest) (*models.LoggedUser, error)
}

type SessionGenerator interface {
	Start(ctx context.Context, username, host, userAgent string) (token string, expiry time.Time, err error)
	Verify(ctx context.Context, token string) (*models.Session, error)
	End(ctx context.Context, token string) error
}

// TokenGenerator signs and validates session tokens.
type TokenGenerator interface {
	GenerateToken(username, sessionID string, expiry time.Time) (string, error)
	ValidateToken(tokenString string) (*SessionClaims, error)
}
