package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/tinyavocado/avocado-server/internal/metrics"
	"github.com/tinyavocado/avocado-server/internal/models"
	"github.com/tinyavocado/avocado-server/internal/repository"
)

// compensationTimeout bounds the secret cleanup after a failed registration,
// which runs even when the request deadline has already passed.
const compensationTimeout = 5 * time.Second

type loginState string

const (
	stateReceived        loginState = "Received"
	stateLookingUpUser   loginState = "LookingUpUser"
	stateLookingUpSecret loginState = "LookingUpSecret"
	stateVerifying       loginState = "Verifying"
	stateAuthenticated   loginState = "Authenticated"
	stateRejected        loginState = "Rejected"
)

// AuthService registers users and checks their credentials.
type AuthService struct {
	userRepo repository.UserRepository
	secrets  SecretStore
	hasher   CredentialHasher
	timeout  time.Duration
}

var _ AuthGenerator = (*AuthService)(nil)

func NewAuthService(userRepo repository.UserRepository, secrets SecretStore, hasher CredentialHasher, timeout time.Duration) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		secrets:  secrets,
		hasher:   hasher,
		timeout:  timeout,
	}
}

func validateRegistration(req *models.RegisterRequest) *Error {
	switch {
	case strings.TrimSpace(req.LastName) == "":
		return validationError(MsgLastNameEmpty)
	case strings.TrimSpace(req.FirstName) == "":
		return validationError(MsgFirstNameEmpty)
	case strings.TrimSpace(req.Username) == "":
		return validationError(MsgUsernameEmpty)
	case strings.TrimSpace(req.Email) == "":
		return validationError(MsgEmailEmpty)
	case strings.TrimSpace(req.Password) == "":
		return validationError(MsgPasswordEmpty)
	case int(PasswordScore(req.Password)) < MinPasswordScore:
		return validationError(MsgPasswordWeak)
	}
	return nil
}

// Register validates req, issues a secret for the user and stores the user
// with a digest keyed by that secret.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	info, err := s.register(ctx, req)
	metrics.RecordRegistration(resultLabel(err))
	return info, err
}

func (s *AuthService) register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	if verr := validateRegistration(&req); verr != nil {
		log.Info().Str("username", req.Username).Str("reason", verr.Message).Msg("Registration rejected")
		return nil, verr
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	usernameTaken, emailTaken, err := s.userRepo.UserExists(ctx, username, email)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to check if user exists")
		return nil, internalError(fmt.Errorf("failed to check if user exists: %w", err))
	}
	if usernameTaken {
		return nil, validationError(MsgUsernameTaken)
	}
	if emailTaken {
		return nil, validationError(MsgEmailTaken)
	}

	secret, err := s.secrets.Create(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrSecretExists) {
			return nil, validationError(MsgUsernameTaken)
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to create secret")
		return nil, internalError(err)
	}

	digest, err := s.hash(ctx, req.Password, secret)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to hash credentials")
		s.discardSecret(ctx, username)
		return nil, internalError(err)
	}

	user := &models.User{
		ID:        ulid.Make().String(),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Emails:    []string{email},
		Username:  username,
		Hash:      digest,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		s.discardSecret(ctx, username)
		switch {
		case errors.Is(err, repository.ErrUserExists):
			return nil, validationError(MsgUsernameTaken)
		case errors.Is(err, repository.ErrEmailExists):
			return nil, validationError(MsgEmailTaken)
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to store user")
		return nil, internalError(fmt.Errorf("failed to register user: %w", err))
	}

	log.Info().Str("username", username).Str("userId", user.ID).Msg("User registered")
	return user.ToUserInfo(), nil
}

// discardSecret removes the secret of a registration that did not complete.
// Failure leaves an orphaned secret that blocks the username; it is logged
// and otherwise ignored.
func (s *AuthService) discardSecret(ctx context.Context, username string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()
	if err := s.secrets.Delete(ctx, username); err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to remove secret of failed registration")
	}
}

// Login authenticates req.Target (username or email) with req.Password. Every
// credential failure returns the same InvalidCredentials error.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoggedUser, error) {
	user, err := s.login(ctx, req)
	metrics.RecordLogin(resultLabel(err))
	return user, err
}

func (s *AuthService) login(ctx context.Context, req models.LoginRequest) (*models.LoggedUser, error) {
	target := strings.TrimSpace(req.Target)
	logger := log.With().Str("target", target).Logger()
	transition := func(state loginState) {
		logger.Debug().Str("state", string(state)).Msg("Login state")
	}
	reject := func(cause error) error {
		transition(stateRejected)
		return invalidCredentials(cause)
	}

	transition(stateReceived)
	if target == "" || req.Password == "" {
		return nil, reject(errors.New("empty target or password"))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	transition(stateLookingUpUser)
	users, err := s.userRepo.FindUsers(ctx, target)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to look up user")
		return nil, internalError(fmt.Errorf("failed to look up user: %w", err))
	}
	switch len(users) {
	case 0:
		return nil, reject(repository.ErrUserNotFound)
	case 1:
	default:
		logger.Error().Int("count", len(users)).Msg("Login target matches more than one user")
		return nil, internalError(fmt.Errorf("target matches %d users", len(users)))
	}
	user := users[0]

	transition(stateLookingUpSecret)
	secret, err := s.secrets.Read(ctx, user.Username)
	if err != nil {
		if errors.Is(err, ErrAmbiguous) {
			logger.Error().Str("username", user.Username).Msg("Refusing login: secret store integrity fault")
		}
		return nil, reject(err)
	}

	transition(stateVerifying)
	ok, err := s.verify(ctx, user.Hash, req.Password, secret)
	if err != nil {
		if ctx.Err() != nil {
			logger.Error().Err(err).Msg("Credential verification did not finish in time")
			return nil, internalError(err)
		}
		logger.Warn().Err(err).Str("username", user.Username).Msg("Stored digest could not be verified")
		return nil, reject(err)
	}
	if !ok {
		return nil, reject(errors.New("password mismatch"))
	}

	transition(stateAuthenticated)
	logger.Info().Str("username", user.Username).Msg("User authenticated")
	return user.ToLoggedUser(), nil
}

// hash and verify run the hasher off the request goroutine so the deadline
// still applies when Argon2 is slow.
func (s *AuthService) hash(ctx context.Context, password, secret string) (string, error) {
	type result struct {
		digest string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		digest, err := s.hasher.Hash(password, secret)
		done <- result{digest, err}
	}()

	select {
	case r := <-done:
		return r.digest, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("hashing aborted: %w", ctx.Err())
	}
}

func (s *AuthService) verify(ctx context.Context, digest, password, secret string) (bool, error) {
	type result struct {
		ok  bool
		err error
	}
	done := make(chan result, 1)
	go func() {
		ok, err := s.hasher.Verify(digest, password, secret)
		done <- result{ok, err}
	}()

	select {
	case r := <-done:
		return r.ok, r.err
	case <-ctx.Done():
		return false, fmt.Errorf("verification aborted: %w", ctx.Err())
	}
}

func resultLabel(err error) string {
	if err == nil {
		return metrics.ResultSuccess
	}
	switch KindOf(err) {
	case KindValidation:
		return metrics.ResultValidation
	case KindInvalidCredentials:
		return metrics.ResultInvalidCredentials
	default:
		return metrics.ResultInternal
	}
}
