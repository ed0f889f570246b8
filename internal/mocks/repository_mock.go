package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tinyavocado/avocado-server/internal/models"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, target string) ([]*models.User, error) {
	args := m.Called(ctx, target)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) UserExists(ctx context.Context, username, email string) (bool, bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

type MockSecretRepository struct {
	mock.Mock
}

func (m *MockSecretRepository) CreateSecret(ctx context.Context, secret *models.SecretRecord) error {
	args := m.Called(ctx, secret)
	return args.Error(0)
}

func (m *MockSecretRepository) FindSecrets(ctx context.Context, username string) ([]*models.SecretRecord, error) {
	args := m.Called(ctx, username)
	secrets, _ := args.Get(0).([]*models.SecretRecord)
	return secrets, args.Error(1)
}

func (m *MockSecretRepository) DeleteSecrets(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of the SessionRepository interface.
type MockSessionRepository struct {
	mock.Mock
}

// StoreSession provides a mock function for storing a session.
func (m *MockSessionRepository) StoreSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// GetSession provides a mock function for retrieving a session.
func (m *MockSessionRepository) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, sessionID)
	session, _ := args.Get(0).(*models.Session) // Handle nil case if Get(0) is not *models.Session
	return session, args.Error(1)
}

// DeleteSession provides a mock function for deleting a session.
func (m *MockSessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}
