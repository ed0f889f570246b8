package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tinyavocado/avocado-server/internal/config"
	"github.com/tinyavocado/avocado-server/internal/models"
	"github.com/tinyavocado/avocado-server/internal/repository"
)

const secretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SecretService stores one random secret per user, apart from the user documents.
type SecretService struct {
	secretRepo repository.SecretRepository
	length     int
	rand       io.Reader
}

var _ SecretStore = (*SecretService)(nil)

func NewSecretService(secretRepo repository.SecretRepository, length int) *SecretService {
	if length < config.MinSecretLength {
		length = config.MinSecretLength
	}
	return &SecretService{secretRepo: secretRepo, length: length, rand: rand.Reader}
}

func (s *SecretService) generate() (string, error) {
	max := big.NewInt(int64(len(secretAlphabet)))
	buf := make([]byte, s.length)
	for i := range buf {
		n, err := rand.Int(s.rand, max)
		if err != nil {
			return "", err
		}
		buf[i] = secretAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// Create generates and persists a new secret for username.
func (s *SecretService) Create(ctx context.Context, username string) (string, error) {
	secret, err := s.generate()
	if err != nil {
		return "", fmt.Errorf("%w: generate secret: %v", ErrStorage, err)
	}

	record := &models.SecretRecord{
		Main:      secret,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.secretRepo.CreateSecret(ctx, record); err != nil {
		if errors.Is(err, repository.ErrSecretExists) {
			log.Warn().Str("username", username).Msg("Secret already exists")
			return "", err
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to store secret")
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}

	log.Debug().Str("username", username).Msg("Secret created")
	return secret, nil
}

// Read returns the single secret stored for username.
func (s *SecretService) Read(ctx context.Context, username string) (string, error) {
	records, err := s.secretRepo.FindSecrets(ctx, username)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to read secret")
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}

	switch len(records) {
	case 0:
		return "", ErrSecretNotFound
	case 1:
		return records[0].Main, nil
	default:
		log.Error().Str("username", username).Int("count", len(records)).Msg("Integrity fault: multiple secrets stored for user")
		return "", ErrAmbiguous
	}
}

func (s *SecretService) Delete(ctx context.Context, username string) error {
	if err := s.secretRepo.DeleteSecrets(ctx, username); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}
