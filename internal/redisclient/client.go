// Package redisclient wraps go-redis so every command the kiosk issues gets a span.
package redisclient

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Client is the subset of go-redis the kiosk stores use, traced
type Client struct {
	cmdable redis.Cmdable
}

// NewClient wraps a single-node client
func NewClient(client *redis.Client) *Client {
	return &Client{cmdable: client}
}

// NewClusterClient wraps a cluster client
func NewClusterClient(client *redis.ClusterClient) *Client {
	return &Client{cmdable: client}
}

// keySpace returns the namespace of a key ("otp", "visitor"). Keys embed
// emails and cedulas, so only the namespace is put on spans.
func keySpace(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unscoped"
}

func keyAttrs(keys ...string) []attribute.KeyValue {
	spaces := make([]string, 0, len(keys))
	for _, key := range keys {
		space := keySpace(key)
		if len(spaces) == 0 || spaces[len(spaces)-1] != space {
			spaces = append(spaces, space)
		}
	}
	return []attribute.KeyValue{
		attribute.StringSlice("redis.key_space", spaces),
		attribute.Int("redis.key_count", len(keys)),
	}
}

func start(ctx context.Context, operation string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.system", "redis"), attribute.String("db.operation", operation))
	return otel.Tracer("kiosk/redis").Start(ctx, "redis."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// finish records err on span. redis.Nil is a cache miss and leaves the span ok.
func finish(span trace.Span, began time.Time, err error) {
	span.SetAttributes(attribute.Int64("redis.duration_ms", time.Since(began).Milliseconds()))
	if err != nil && !errors.Is(err, redis.Nil) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func traced[T interface{ Err() error }](ctx context.Context, operation string, attrs []attribute.KeyValue, run func(context.Context) T) T {
	began := time.Now()
	ctx, span := start(ctx, operation, attrs)
	cmd := run(ctx)
	finish(span, began, cmd.Err())
	return cmd
}

func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	return traced(ctx, "get", keyAttrs(key),
		func(ctx context.Context) *redis.StringCmd { return c.cmdable.Get(ctx, key) })
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	attrs := append(keyAttrs(key), attribute.Int64("redis.expiration_ms", expiration.Milliseconds()))
	return traced(ctx, "set", attrs,
		func(ctx context.Context) *redis.StatusCmd { return c.cmdable.Set(ctx, key, value, expiration) })
}

func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return traced(ctx, "del", keyAttrs(keys...),
		func(ctx context.Context) *redis.IntCmd { return c.cmdable.Del(ctx, keys...) })
}

func (c *Client) Ping(ctx context.Context) *redis.StatusCmd {
	return traced(ctx, "ping", nil,
		func(ctx context.Context) *redis.StatusCmd { return c.cmdable.Ping(ctx) })
}

func (c *Client) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	return traced(ctx, "hgetall", keyAttrs(key),
		func(ctx context.Context) *redis.MapStringStringCmd { return c.cmdable.HGetAll(ctx, key) })
}

func (c *Client) TTL(ctx context.Context, key string) *redis.DurationCmd {
	return traced(ctx, "ttl", keyAttrs(key),
		func(ctx context.Context) *redis.DurationCmd { return c.cmdable.TTL(ctx, key) })
}

// RunScript evaluates script by SHA, loading it on a NOSCRIPT miss
func (c *Client) RunScript(ctx context.Context, script *redis.Script, keys []string, args ...interface{}) *redis.Cmd {
	return traced(ctx, "evalsha", keyAttrs(keys...),
		func(ctx context.Context) *redis.Cmd { return script.Run(ctx, c.cmdable, keys, args...) })
}

// TxPipelined runs fn's commands in MULTI/EXEC. A cluster client splits
// them into one transaction per hash slot.
func (c *Client) TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	began := time.Now()
	ctx, span := start(ctx, "multi", nil)
	cmds, err := c.cmdable.TxPipelined(ctx, fn)
	span.SetAttributes(attribute.Int("redis.command_count", len(cmds)))
	finish(span, began, err)
	return cmds, err
}

// PoolStats reports connection pool counters; unknown clients report zeros
func (c *Client) PoolStats() *redis.PoolStats {
	switch client := c.cmdable.(type) {
	case *redis.Client:
		return client.PoolStats()
	case *redis.ClusterClient:
		return client.PoolStats()
	default:
		return &redis.PoolStats{}
	}
}

func (c *Client) Close() error {
	if closer, ok := c.cmdable.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
