package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/tinyavocado/avocado-server/internal/models"
)

type MockSecretStore struct {
	mock.Mock
}

func (m *MockSecretStore) Create(ctx context.Context, username string) (string, error) {
	args := m.Called(ctx, username)
	return args.String(0), args.Error(1)
}

func (m *MockSecretStore) Read(ctx context.Context, username string) (string, error) {
	args := m.Called(ctx, username)
	return args.String(0), args.Error(1)
}

func (m *MockSecretStore) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

type MockCredentialHasher struct {
	mock.Mock
}

func (m *MockCredentialHasher) Hash(password, secret string) (string, error) {
	args := m.Called(password, secret)
	return args.String(0), args.Error(1)
}

func (m *MockCredentialHasher) Verify(digest, password, secret string) (bool, error) {
	args := m.Called(digest, password, secret)
	return args.Bool(0), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	args := m.Called(ctx, req)
	info, _ := args.Get(0).(*models.UserInfo)
	return info, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoggedUser, error) {
	args := m.Called(ctx, req)
	user, _ := args.Get(0).(*models.LoggedUser)
	return user, args.Error(1)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Start(ctx context.Context, username, host, userAgent string) (string, time.Time, error) {
	args := m.Called(ctx, username, host, userAgent)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockSessionService) Verify(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}

func (m *MockSessionService) End(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
