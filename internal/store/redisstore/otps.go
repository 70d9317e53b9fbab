// Package redisstore keeps short-lived kiosk state in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/redisclient"
	"github.com/redis/go-redis/v9"
)

// expiryGrace keeps a record readable after its logical expiry so the
// validator can still report it as expired instead of missing.
const expiryGrace = time.Hour

var incrementAttemptsScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.call("HINCRBY", KEYS[1], "attempts", 1)
end
return -1
`)

var consumeScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "code") == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0
`)

func otpKey(email string) string {
	return "otp:" + email
}

func otpCedulaKey(cedula string) string {
	return "otp:cedula:" + cedula
}

// Otps is an OtpStore holding one hash per email with store-level expiry
type Otps struct {
	client *redisclient.Client
	now    func() time.Time
}

// NewOtps creates a Redis backed OtpStore
func NewOtps(client *redisclient.Client) *Otps {
	return &Otps{client: client, now: time.Now}
}

// Put replaces the record for record.Email
func (s *Otps) Put(ctx context.Context, record *models.OtpRecord) error {
	ttl := record.ExpiresAt.Sub(s.now()) + expiryGrace
	if ttl < expiryGrace {
		ttl = expiryGrace
	}
	key := otpKey(record.Email)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"email", record.Email,
			"cedula", record.Cedula,
			"code", record.Code,
			"attempts", record.Attempts,
			"created_at", record.CreatedAt.UnixMilli(),
			"expires_at", record.ExpiresAt.UnixMilli(),
		)
		pipe.Expire(ctx, key, ttl)
		if record.Cedula != "" {
			pipe.Set(ctx, otpCedulaKey(record.Cedula), record.Email, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}
	return nil
}

// Get loads the record for email
func (s *Otps) Get(ctx context.Context, email string) (*models.OtpRecord, error) {
	fields, err := s.client.HGetAll(ctx, otpKey(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load code: %w", err)
	}
	if len(fields) == 0 {
		return nil, models.ErrNotFound
	}
	return decodeOtp(email, fields)
}

func decodeOtp(email string, fields map[string]string) (*models.OtpRecord, error) {
	attempts, err := strconv.Atoi(fields["attempts"])
	if err != nil {
		return nil, fmt.Errorf("corrupt attempts for code record: %w", err)
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt created_at for code record: %w", err)
	}
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt expires_at for code record: %w", err)
	}
	return &models.OtpRecord{
		Email:     email,
		Cedula:    fields["cedula"],
		Code:      fields["code"],
		Attempts:  attempts,
		CreatedAt: time.UnixMilli(createdAt).UTC(),
		ExpiresAt: time.UnixMilli(expiresAt).UTC(),
	}, nil
}

// FindByCedula follows the cedula index to the latest record
func (s *Otps) FindByCedula(ctx context.Context, cedula string) (*models.OtpRecord, error) {
	email, err := s.client.Get(ctx, otpCedulaKey(cedula)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load cedula index: %w", err)
	}

	record, err := s.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if record.Cedula != cedula {
		// the email was reissued for someone else
		return nil, models.ErrNotFound
	}
	return record, nil
}

// IncrementAttempts bumps the attempt counter of an existing record
func (s *Otps) IncrementAttempts(ctx context.Context, email string) (int, error) {
	n, err := s.client.RunScript(ctx, incrementAttemptsScript, []string{otpKey(email)}).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}
	if n < 0 {
		return 0, models.ErrNotFound
	}
	return n, nil
}

// Consume deletes the record only while it still holds code
func (s *Otps) Consume(ctx context.Context, email, code string) (bool, error) {
	n, err := s.client.RunScript(ctx, consumeScript, []string{otpKey(email)}, code).Int()
	if err != nil {
		return false, fmt.Errorf("failed to consume code: %w", err)
	}
	return n == 1, nil
}

// Delete removes the record for email, if any
func (s *Otps) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, otpKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete code: %w", err)
	}
	return nil
}
