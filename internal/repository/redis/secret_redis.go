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

// RedisSecretRepository implements SecretRepository. It must be given a
// client bound to a different logical database than the user documents.
type RedisSecretRepository struct {
	client *redis.Client
}

// Secrets are kept in a list so that a duplicate written behind our back
// stays visible to readers instead of silently replacing the first one.
func makeRootsKey(username string) string {
	return fmt.Sprintf("roots:%s", username)
}

func NewRedisSecretRepository(client *redis.Client) repository.SecretRepository {
	return &RedisSecretRepository{
		client: client,
	}
}

func (r *RedisSecretRepository) CreateSecret(ctx context.Context, secret *models.SecretRecord) error {
	if secret == nil || secret.Username == "" || secret.Main == "" {
		return errors.New("invalid secret data: username and main must be set")
	}

	jsonData, err := json.Marshal(secret)
	if err != nil {
		return fmt.Errorf("failed to marshal secret: %w", err)
	}

	key := makeRootsKey(secret.Username)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.LLen(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("redis LLEN failed: %w", err)
		}
		if n > 0 {
			return repository.ErrSecretExists
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, key, jsonData)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) || errors.Is(err, repository.ErrSecretExists) {
		return repository.ErrSecretExists
	}
	if err != nil {
		return fmt.Errorf("failed to execute secret create transaction: %w", err)
	}
	return nil
}

func (r *RedisSecretRepository) FindSecrets(ctx context.Context, username string) ([]*models.SecretRecord, error) {
	items, err := r.client.LRange(ctx, makeRootsKey(username), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis LRANGE failed: %w", err)
	}

	found := make([]*models.SecretRecord, 0, len(items))
	for _, item := range items {
		var rec models.SecretRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("json unmarshal failed: %w", err)
		}
		found = append(found, &rec)
	}
	return found, nil
}

func (r *RedisSecretRepository) DeleteSecrets(ctx context.Context, username string) error {
	if err := r.client.Del(ctx, makeRootsKey(username)).Err(); err != nil {
		return fmt.Errorf("redis DEL failed: %w", err)
	}
	return nil
}
