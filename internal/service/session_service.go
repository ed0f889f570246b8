package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tinyavocado/avocado-server/internal/models"
	"github.com/tinyavocado/avocado-server/internal/repository"
)

// SessionService binds a signed session token to a server-side session record,
// so a token stops working as soon as its session is deleted.
type SessionService struct {
	sessionRepo repository.SessionRepository
	tokenSvc    TokenGenerator
	duration    time.Duration
}

var _ SessionGenerator = (*SessionService)(nil)

func NewSessionService(sessionRepo repository.SessionRepository, tokenSvc TokenGenerator, duration time.Duration) *SessionService {
	return &SessionService{sessionRepo: sessionRepo, tokenSvc: tokenSvc, duration: duration}
}

// Start stores a new session for username and returns its signed token.
func (s *SessionService) Start(ctx context.Context, username, host, userAgent string) (string, time.Time, error) {
	if username == "" {
		return "", time.Time{}, errors.New("username cannot be empty")
	}

	now := time.Now().UTC()
	session := &models.Session{
		SessionID: uuid.NewString(),
		Username:  username,
		Host:      host,
		UserAgent: userAgent,
		CreatedAt: now,
		Expiry:    now.Add(s.duration),
	}

	if err := s.sessionRepo.StoreSession(ctx, session); err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to store session")
		return "", time.Time{}, fmt.Errorf("failed to store session: %w", err)
	}

	token, err := s.tokenSvc.GenerateToken(username, session.SessionID, session.Expiry)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to sign session token")
		_ = s.sessionRepo.DeleteSession(ctx, session.SessionID)
		return "", time.Time{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	log.Info().Str("username", username).Str("sessionId", session.SessionID).Time("expiry", session.Expiry).Msg("Session started")
	return token, session.Expiry, nil
}

// Verify checks the token signature and that its session is still stored.
func (s *SessionService) Verify(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrInvalidSessionToken
	}

	claims, err := s.tokenSvc.ValidateToken(token)
	if err != nil {
		log.Debug().Err(err).Msg("Session token rejected")
		return nil, fmt.Errorf("%w: %w", ErrInvalidSessionToken, err)
	}

	session, err := s.sessionRepo.GetSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSessionToken, err)
		}
		log.Error().Err(err).Str("sessionId", claims.ID).Msg("Failed to load session")
		return nil, fmt.Errorf("error verifying session: %w", err)
	}

	if session.IsExpired() {
		_ = s.sessionRepo.DeleteSession(ctx, claims.ID)
		return nil, fmt.Errorf("%w: session expired", ErrInvalidSessionToken)
	}
	if session.Username != claims.Subject {
		log.Warn().Str("sessionId", claims.ID).Msg("Session token subject does not match stored session")
		return nil, fmt.Errorf("%w: subject mismatch", ErrInvalidSessionToken)
	}

	return session, nil
}

// End deletes the session behind token. Ending an unknown or already ended
// session succeeds.
func (s *SessionService) End(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("session token cannot be empty")
	}

	claims, err := s.tokenSvc.ValidateToken(token)
	if err != nil {
		log.Debug().Err(err).Msg("Ignoring logout with invalid session token")
		return nil
	}

	if err := s.sessionRepo.DeleteSession(ctx, claims.ID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		log.Error().Err(err).Str("sessionId", claims.ID).Msg("Failed to delete session")
		return fmt.Errorf("failed to sign out: %w", err)
	}

	log.Info().Str("username", claims.Subject).Str("sessionId", claims.ID).Msg("Session ended")
	return nil
}
