package redisclient

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupRedisForTest connects to REDIS_ADDR or skips
func setupRedisForTest(t *testing.T) (*Client, func()) {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		t.Skip("Skipping Redis integration tests: REDIS_ADDR not set")
	}

	client := NewClient(redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
	}))

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err(), "Failed to connect to Redis")

	return client, func() {
		client.Del(ctx, "test:get", "test:set", "test:hash", "test:script", "test:tx")
		client.Close()
	}
}

func TestNewClient(t *testing.T) {
	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	client := NewClient(redisClient)

	require.NotNil(t, client)
	assert.Equal(t, redisClient, client.cmdable, "Client cmdable should be the redis client")
}

func TestNewClusterClient(t *testing.T) {
	clusterClient := redis.NewClusterClient(&redis.ClusterOptions{Addrs: []string{"localhost:6379"}})
	client := NewClusterClient(clusterClient)

	require.NotNil(t, client)
	assert.Equal(t, clusterClient, client.cmdable, "Client cmdable should be the cluster client")
}

// mockCmdable is neither a *redis.Client nor a *redis.ClusterClient
type mockCmdable struct {
	redis.Cmdable
}

func TestClient_PoolStatsUnknownType(t *testing.T) {
	client := &Client{cmdable: &mockCmdable{}}

	stats := client.PoolStats()
	require.NotNil(t, stats)
	assert.Equal(t, uint32(0), stats.Hits)
}

func TestKeySpace(t *testing.T) {
	assert.Equal(t, "otp", keySpace("otp:ana@example.com"))
	assert.Equal(t, "otp", keySpace("otp:cedula:1234567890"))
	assert.Equal(t, "visitor", keySpace("visitor:1234567890"))
	assert.Equal(t, "unscoped", keySpace("plain"))
	assert.Equal(t, "unscoped", keySpace(":leading"))
}

// missCmdable answers every Get with a cache miss
type missCmdable struct {
	redis.Cmdable
}

func (missCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	cmd.SetErr(redis.Nil)
	return cmd
}

func (missCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")
	cmd.SetErr(errors.New("connection reset"))
	return cmd
}

func TestClient_SpansHideKeys(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	client := &Client{cmdable: missCmdable{}}
	ctx := context.Background()

	assert.ErrorIs(t, client.Get(ctx, "otp:ana@example.com").Err(), redis.Nil)
	assert.Error(t, client.Del(ctx, "otp:ana@example.com", "otp:cedula:1234567890", "visitor:1234567890").Err())

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	get, del := spans[0], spans[1]
	assert.Equal(t, "redis.get", get.Name())
	assert.Equal(t, codes.Unset, get.Status().Code, "a miss is not an error")
	assert.Equal(t, codes.Error, del.Status().Code)

	for _, span := range spans {
		for _, kv := range span.Attributes() {
			assert.NotContains(t, kv.Value.Emit(), "ana@example.com")
			assert.NotContains(t, kv.Value.Emit(), "1234567890")
			if kv.Key == "redis.key_space" && span.Name() == "redis.del" {
				assert.Equal(t, []string{"otp", "visitor"}, kv.Value.AsStringSlice())
			}
		}
	}
}

func TestClient_CloseUnknownType(t *testing.T) {
	client := &Client{cmdable: &mockCmdable{}}
	assert.NoError(t, client.Close())
}

func TestClient_GetSetDel(t *testing.T) {
	client, cleanup := setupRedisForTest(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "test:set", "value", 10*time.Second).Err())

	val, err := client.Get(ctx, "test:set").Result()
	require.NoError(t, err)
	assert.Equal(t, "value", val)

	ttl, err := client.TTL(ctx, "test:set").Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= 10*time.Second)

	deleted, err := client.Del(ctx, "test:set").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	assert.Equal(t, redis.Nil, client.Get(ctx, "test:get").Err(), "missing key should return redis.Nil")
}

func TestClient_TxPipelinedAndHash(t *testing.T) {
	client, cleanup := setupRedisForTest(t)
	defer cleanup()
	ctx := context.Background()

	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, "test:hash", "code", "123456", "attempts", 0)
		pipe.Expire(ctx, "test:hash", time.Minute)
		return nil
	})
	require.NoError(t, err)

	fields, err := client.HGetAll(ctx, "test:hash").Result()
	require.NoError(t, err)
	assert.Equal(t, "123456", fields["code"])
	assert.Equal(t, "0", fields["attempts"])
}

func TestClient_RunScript(t *testing.T) {
	client, cleanup := setupRedisForTest(t)
	defer cleanup()
	ctx := context.Background()

	script := redis.NewScript(`return redis.call('SET', KEYS[1], ARGV[1])`)
	require.NoError(t, client.RunScript(ctx, script, []string{"test:script"}, "scripted").Err())

	val, err := client.Get(ctx, "test:script").Result()
	require.NoError(t, err)
	assert.Equal(t, "scripted", val)
}

func TestClient_CancelledContext(t *testing.T) {
	client, cleanup := setupRedisForTest(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, client.Get(ctx, "test:get").Err())
	assert.Error(t, client.Set(ctx, "test:get", "value", 0).Err())
}
