package redisstore

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/redisclient"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

var testClient *redisclient.Client

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, client, err := startRedis(ctx)
	if err != nil {
		fmt.Printf("Redis container not available, store tests will be skipped: %v\n", err)
	}
	testClient = client

	code := m.Run()

	if client != nil {
		_ = client.Close()
	}
	if container != nil {
		_ = testcontainers.TerminateContainer(container)
	}
	os.Exit(code)
}

func startRedis(ctx context.Context) (container *tcredis.RedisContainer, client *redisclient.Client, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docker unavailable: %v", r)
		}
	}()

	container, err = tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		return nil, nil, err
	}
	uri, err := container.ConnectionString(ctx)
	if err != nil {
		return container, nil, err
	}
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return container, nil, err
	}
	client = redisclient.NewClient(redis.NewClient(opts))
	if err := client.Ping(ctx).Err(); err != nil {
		return container, nil, err
	}
	return container, client, nil
}

func requireRedis(t *testing.T) *redisclient.Client {
	t.Helper()
	if testClient == nil {
		t.Skip("Skipping: Redis not available")
	}
	return testClient
}

// uniqueEmail keeps tests independent on the shared container
func uniqueEmail(t *testing.T) string {
	return fmt.Sprintf("%d@%s.test", time.Now().UnixNano(), t.Name())
}

func TestOtps_PutGetAndExpiry(t *testing.T) {
	client := requireRedis(t)
	ctx := context.Background()
	store := NewOtps(client)
	email := uniqueEmail(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	record := &models.OtpRecord{
		Email:     email,
		Cedula:    "1234567890",
		Code:      "482913",
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
	require.NoError(t, store.Put(ctx, record))

	got, err := store.Get(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, "482913", got.Code)
	assert.Equal(t, "1234567890", got.Cedula)
	assert.Equal(t, 0, got.Attempts)
	assert.True(t, got.ExpiresAt.Equal(record.ExpiresAt))

	ttl, err := client.TTL(ctx, otpKey(email)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 10*time.Minute, "store expiry outlives the logical expiry")

	_, err = store.Get(ctx, "missing-"+email)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOtps_PutReplacesPreviousCode(t *testing.T) {
	client := requireRedis(t)
	ctx := context.Background()
	store := NewOtps(client)
	email := uniqueEmail(t)
	now := time.Now()

	require.NoError(t, store.Put(ctx, &models.OtpRecord{Email: email, Code: "111111", Attempts: 0, CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))
	_, err := store.IncrementAttempts(ctx, email)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, &models.OtpRecord{Email: email, Code: "222222", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))

	got, err := store.Get(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, "222222", got.Code)
	assert.Equal(t, 0, got.Attempts)
}

func TestOtps_FindByCedula(t *testing.T) {
	client := requireRedis(t)
	ctx := context.Background()
	store := NewOtps(client)
	email := uniqueEmail(t)
	cedula := fmt.Sprintf("%010d", time.Now().UnixNano()%10000000000)
	now := time.Now()

	require.NoError(t, store.Put(ctx, &models.OtpRecord{Email: email, Cedula: cedula, Code: "111111", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))

	got, err := store.FindByCedula(ctx, cedula)
	require.NoError(t, err)
	assert.Equal(t, email, got.Email)

	// the email is reissued for a different visitor
	require.NoError(t, store.Put(ctx, &models.OtpRecord{Email: email, Cedula: "5555555", Code: "222222", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))
	_, err = store.FindByCedula(ctx, cedula)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOtps_AttemptsAndConsume(t *testing.T) {
	client := requireRedis(t)
	ctx := context.Background()
	store := NewOtps(client)
	email := uniqueEmail(t)
	now := time.Now()

	_, err := store.IncrementAttempts(ctx, email)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, store.Put(ctx, &models.OtpRecord{Email: email, Code: "482913", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))

	n, err := store.IncrementAttempts(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = store.IncrementAttempts(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ok, err := store.Consume(ctx, email, "000000")
	require.NoError(t, err)
	assert.False(t, ok)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Consume(ctx, email, "482913")
			if err == nil && ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	_, err = store.Get(ctx, email)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, store.Delete(ctx, email))
}

func TestVisitorCache(t *testing.T) {
	client := requireRedis(t)
	ctx := context.Background()
	cache := NewVisitorCache(client, time.Minute)
	cedula := fmt.Sprintf("%010d", time.Now().UnixNano()%10000000000)

	miss, err := cache.Get(ctx, cedula)
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, cache.Set(ctx, &models.VisitorProfile{
		Cedula:   cedula,
		FullName: "Ana Gomez",
		Email:    "ana@example.com",
		Minors:   []models.MinorRecord{{FullName: "Sofia Gomez", Relationship: models.RelationshipChild}},
	}))

	hit, err := cache.Get(ctx, cedula)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "Ana Gomez", hit.FullName)
	require.Len(t, hit.Minors, 1)

	require.NoError(t, cache.Invalidate(ctx, cedula))
	gone, err := cache.Get(ctx, cedula)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
