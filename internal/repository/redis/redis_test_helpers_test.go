package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const (
	testUsersDB    = 0
	testSecretsDB  = 1
	testSessionsDB = 2
)

func newTestClient(t *testing.T, mr *miniredis.Miniredis, db int) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
		DB:   db,
	})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}
