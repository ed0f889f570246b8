package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/tinyavocado/avocado-server/internal/models"
	"github.com/tinyavocado/avocado-server/internal/repository"
)

// RedisUserRepository implements UserRepository on a Redis logical database.
// Each user is a JSON document under user:<username>; user_email:<email>
// points back to the owning username.
type RedisUserRepository struct {
	client *redis.Client
}

func makeUserKey(username string) string {
	return fmt.Sprintf("user:%s", username)
}

func makeUserEmailKey(email string) string {
	return fmt.Sprintf("user_email:%s", email)
}

func NewRedisUserRepository(client *redis.Client) repository.UserRepository {
	return &RedisUserRepository{
		client: client,
	}
}

// maxTxRetries bounds how often CreateUser re-runs after a watched key changed.
const maxTxRetries = 5

// CreateUser writes the document and the email index in one MULTI/EXEC.
// Both the username and the email are watched as user: and user_email: keys,
// so a concurrent registration claiming either identifier aborts the
// transaction; it is then re-run and reports which identifier was lost.
func (r *RedisUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil || user.Username == "" {
		return errors.New("invalid user data: username must be set")
	}

	jsonData, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	userKey := makeUserKey(user.Username)
	email := user.PrimaryEmail()
	watched := identifierKeys(user.Username)
	if email != "" {
		watched = append(watched, identifierKeys(email)...)
	}

	txf := func(tx *redis.Tx) error {
		if err := checkIdentifier(ctx, tx, user.Username, repository.ErrUserExists); err != nil {
			return err
		}
		if email != "" {
			if err := checkIdentifier(ctx, tx, email, repository.ErrEmailExists); err != nil {
				return err
			}
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, userKey, jsonData, 0)
			if email != "" {
				pipe.Set(ctx, makeUserEmailKey(email), user.Username, 0)
			}
			return nil
		})
		return err
	}

	for range maxTxRetries {
		err = r.client.Watch(ctx, txf, watched...)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUserExists), errors.Is(err, repository.ErrEmailExists):
		return err
	default:
		return fmt.Errorf("failed to execute user create transaction: %w", err)
	}
}

// identifierKeys are the keys under which id would be stored as a username
// and as an email.
func identifierKeys(id string) []string {
	return []string{makeUserKey(id), makeUserEmailKey(id)}
}

func checkIdentifier(ctx context.Context, tx *redis.Tx, id string, taken error) error {
	n, err := tx.Exists(ctx, identifierKeys(id)...).Result()
	if err != nil {
		return fmt.Errorf("redis EXISTS failed: %w", err)
	}
	if n > 0 {
		return taken
	}
	return nil
}

func (r *RedisUserRepository) getUser(ctx context.Context, username string) (*models.User, error) {
	jsonData, err := r.client.Get(ctx, makeUserKey(username)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(jsonData, &user); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}
	return &user, nil
}

// FindUsers looks the target up as a username and as an email.
func (r *RedisUserRepository) FindUsers(ctx context.Context, target string) ([]*models.User, error) {
	found := []*models.User{}

	user, err := r.getUser(ctx, target)
	switch {
	case err == nil:
		found = append(found, user)
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, err
	}

	owner, err := r.client.Get(ctx, makeUserEmailKey(target)).Result()
	if err == redis.Nil {
		return found, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}
	if owner == target {
		return found, nil
	}

	user, err = r.getUser(ctx, owner)
	if errors.Is(err, repository.ErrUserNotFound) {
		// dangling index entry
		return found, nil
	}
	if err != nil {
		return nil, err
	}
	return append(found, user), nil
}

func (r *RedisUserRepository) UserExists(ctx context.Context, username, email string) (bool, bool, error) {
	pipe := r.client.Pipeline()
	userCmd := pipe.Exists(ctx, identifierKeys(username)...)
	emailCmd := pipe.Exists(ctx, identifierKeys(email)...)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, false, fmt.Errorf("failed to execute user exists pipeline: %w", err)
	}
	return userCmd.Val() > 0, emailCmd.Val() > 0, nil
}
