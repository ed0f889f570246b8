package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyavocado/avocado-server/internal/models"
	"github.com/tinyavocado/avocado-server/internal/repository"
	"github.com/tinyavocado/avocado-server/internal/repository/memory"
	redis_repo "github.com/tinyavocado/avocado-server/internal/repository/redis"
	sqlite_repo "github.com/tinyavocado/avocado-server/internal/repository/sqlite"
)

type documentStores struct {
	users   repository.UserRepository
	secrets repository.SecretRepository
}

type storeFactory func(t *testing.T) documentStores

func documentStoreBackends() map[string]storeFactory {
	return map[string]storeFactory{
		"Memory": func(t *testing.T) documentStores {
			return documentStores{
				users:   memory.NewMemoryUserRepository(),
				secrets: memory.NewMemorySecretRepository(),
			}
		},
		"Redis": func(t *testing.T) documentStores {
			mr, err := miniredis.Run()
			require.NoError(t, err)
			t.Cleanup(mr.Close)
			client := func(db int) *redis.Client {
				c := redis.NewClient(&redis.Options{Addr: mr.Addr(), DB: db})
				t.Cleanup(func() { _ = c.Close() })
				return c
			}
			return documentStores{
				users:   redis_repo.NewRedisUserRepository(client(0)),
				secrets: redis_repo.NewRedisSecretRepository(client(1)),
			}
		},
		"SQLite": func(t *testing.T) documentStores {
			ctx := context.Background()
			usersDB, err := sqlite_repo.OpenUsersDB(ctx, ":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { _ = usersDB.Close() })
			secretsDB, err := sqlite_repo.OpenSecretsDB(ctx, ":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { _ = secretsDB.Close() })
			return documentStores{
				users:   sqlite_repo.NewSQLiteUserRepository(usersDB),
				secrets: sqlite_repo.NewSQLiteSecretRepository(secretsDB),
			}
		},
	}
}

func newBackendAuthService(stores documentStores) *AuthService {
	return NewAuthService(stores.users, NewSecretService(stores.secrets, 0), NewArgon2Hasher(testArgon2Params), 10*time.Second)
}

func TestAuthService_IdentifierCollisions(t *testing.T) {
	for name, newStores := range documentStoreBackends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			stores := newStores(t)
			svc := newBackendAuthService(stores)

			_, err := svc.Register(ctx, validRegisterRequest())
			require.NoError(t, err)

			emailIsUsername := validRegisterRequest()
			emailIsUsername.Username = "eve"
			emailIsUsername.Email = "ada"
			_, err = svc.Register(ctx, emailIsUsername)
			requireKind(t, err, KindValidation, MsgEmailTaken)

			usernameIsEmail := validRegisterRequest()
			usernameIsEmail.Username = "ada@example.com"
			usernameIsEmail.Email = "eve@example.com"
			_, err = svc.Register(ctx, usernameIsEmail)
			requireKind(t, err, KindValidation, MsgUsernameTaken)

			for _, target := range []string{"ada", "ada@example.com"} {
				user, err := svc.Login(ctx, models.LoginRequest{Target: target, Password: testPassword})
				require.NoError(t, err, target)
				assert.Equal(t, "ada", user.Username)
			}

			for _, username := range []string{"eve", "ada@example.com"} {
				secrets, err := stores.secrets.FindSecrets(ctx, username)
				require.NoError(t, err)
				assert.Empty(t, secrets, username)
			}
		})
	}
}

func TestAuthService_ConcurrentRegistration(t *testing.T) {
	const workers = 8

	for name, newStores := range documentStoreBackends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			stores := newStores(t)
			svc := newBackendAuthService(stores)

			errs := make(chan error, workers)
			var wg sync.WaitGroup
			for range workers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := svc.Register(ctx, validRegisterRequest())
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			succeeded := 0
			for err := range errs {
				if err == nil {
					succeeded++
					continue
				}
				requireKind(t, err, KindValidation, MsgUsernameTaken)
			}
			assert.Equal(t, 1, succeeded)

			secrets, err := stores.secrets.FindSecrets(ctx, "ada")
			require.NoError(t, err)
			assert.Len(t, secrets, 1)

			users, err := stores.users.FindUsers(ctx, "ada")
			require.NoError(t, err)
			assert.Len(t, users, 1)

			_, err = svc.Login(ctx, models.LoginRequest{Target: "ada", Password: testPassword})
			assert.NoError(t, err)
		})
	}
}
