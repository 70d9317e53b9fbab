package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/services/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestOtp_IssueThenValidateSucceedsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, OtpConfig{})
	f.seedVisitor(t, "1234567890", "ana@example.com")

	masked, err := f.issuer.Issue(ctx, models.Destination{Cedula: "1234567890"})
	require.NoError(t, err)
	assert.Equal(t, "a***@example.com", masked)

	code := f.notifier.code("ana@example.com")
	require.Len(t, code, 6)

	record, err := f.otps.Get(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, record.Attempts)
	assert.Equal(t, f.now.Add(10*time.Minute), record.ExpiresAt)

	profile, err := f.validator.Validate(ctx, models.Destination{Cedula: "1234567890"}, code)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Ana Gomez", profile.FullName)

	_, err = f.validator.Validate(ctx, models.Destination{Cedula: "1234567890"}, code)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOtp_WrongCodeKeepsRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, OtpConfig{})
	f.withCodes("482913")
	dest := models.Destination{Email: "ana@example.com"}

	_, err := f.issuer.Issue(ctx, dest)
	require.NoError(t, err)

	_, err = f.validator.Validate(ctx, dest, "000000")
	assert.ErrorIs(t, err, models.ErrIncorrectCode)

	record, err := f.otps.Get(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, record.Attempts)

	_, err = f.validator.Validate(ctx, dest, "482913")
	assert.NoError(t, err)
}

func TestOtp_ExpiredCodeIsRemoved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, OtpConfig{})
	f.withCodes("482913")
	dest := models.Destination{Email: "ana@example.com"}

	_, err := f.issuer.Issue(ctx, dest)
	require.NoError(t, err)

	f.now = f.now.Add(10*time.Minute + time.Millisecond)

	_, err = f.validator.Validate(ctx, dest, "482913")
	assert.ErrorIs(t, err, models.ErrExpired)

	_, err = f.otps.Get(ctx, "ana@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.validator.Validate(ctx, dest, "482913")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOtp_CodeValidAtExpiryInstant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, OtpConfig{})
	f.withCodes("482913")
	dest := models.Destination{Email: "ana@example.com"}

	_, err := f.issuer.Issue(ctx, dest)
	require.NoError(t, err)

	f.now = f.now.Add(10 * time.Minute)

	_, err = f.validator.Validate(ctx, dest, "482913")
	assert.NoError(t, err)
}

func TestOtp_ReissueInvalidatesPreviousCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, OtpConfig{})
	f.withCodes("111111", "222222")
	dest := models.Destination{Email: "ana@example.com"}

	_, err := f.issuer.Issue(ctx, dest)
	require.NoError(t, err)
	_, err = f.issuer.Issue(ctx, dest)
	require.NoError(t, err)

	_, err = f.validator.Validate(ctx, dest, "111111")
	assert.ErrorIs(t, err, models.ErrIncorrectCode)

	_, err = f.validator.Validate(ctx, dest, "222222")
	assert.NoError(t, err)
}

func TestOtp_DestinationResolution(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, OtpConfig{})
	f.seedVisitor(t, "1234567890", "ana@example.com")
	f.seedVisitor(t, "55555555", "")

	tests := []struct {
		name      string
		dest      models.Destination
		wantErr   error
		wantEmail string
	}{
		{name: "nothing given", dest: models.Destination{}, wantErr: models.ErrInvalidPayload},
		{name: "malformed cedula", dest: models.Destination{Cedula: "12ab"}, wantErr: models.ErrInvalidPayload},
		{name: "malformed email", dest: models.Destination{Email: "not-an-email"}, wantErr: models.ErrInvalidPayload},
		{name: "unknown cedula without email", dest: models.Destination{Cedula: "999999"}, wantErr: models.ErrNotFound},
		{name: "known cedula without email on file", dest: models.Destination{Cedula: "55555555"}, wantErr: models.ErrMissingContact},
		{name: "known cedula wins over supplied email", dest: models.Destination{Cedula: "1234567890", Email: "other@example.com"}, wantEmail: "ana@example.com"},
		{name: "profile without email uses supplied email", dest: models.Destination{Cedula: "55555555", Email: "new@example.com"}, wantEmail: "new@example.com"},
		{name: "new visitor", dest: models.Destination{Cedula: "999999", Email: " New.Visitor@Example.com "}, wantEmail: "new.visitor@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.issuer.Issue(ctx, tt.dest)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, f.notifier.code(tt.wantEmail))
		})
	}
}

func TestOtp_NewVisitorValidatesWithCedulaOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, OtpConfig{})
	f.withCodes("654321")

	_, err := f.issuer.Issue(ctx, models.Destination{Cedula: "1234567890", Email: "a@b.com"})
	require.NoError(t, err)

	_, err = f.validator.Validate(ctx, models.Destination{Cedula: "1234567890"}, "000000")
	assert.ErrorIs(t, err, models.ErrIncorrectCode)

	profile, err := f.validator.Validate(ctx, models.Destination{Cedula: "1234567890"}, "654321")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestOtp_ProfileWithoutEmailValidatesLikeIssue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, OtpConfig{})
	f.seedVisitor(t, "55555555", "")
	f.withCodes("654321")

	_, err := f.validator.Validate(ctx, models.Destination{Cedula: "55555555"}, "654321")
	assert.ErrorIs(t, err, models.ErrMissingContact)

	_, err = f.issuer.Issue(ctx, models.Destination{Cedula: "55555555", Email: "new@example.com"})
	require.NoError(t, err)
	require.Equal(t, "654321", f.notifier.code("new@example.com"))

	_, err = f.validator.Validate(ctx, models.Destination{Cedula: "55555555"}, "000000")
	assert.ErrorIs(t, err, models.ErrIncorrectCode)

	profile, err := f.validator.Validate(ctx, models.Destination{Cedula: "55555555"}, "654321")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "55555555", profile.Cedula)
}

func TestOtp_ValidateUnknownCedulaWithoutCode(t *testing.T) {
	f := newFixture(t, OtpConfig{})

	_, err := f.validator.Validate(context.Background(), models.Destination{Cedula: "1234567890"}, "123456")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOtp_MalformedCodeRejected(t *testing.T) {
	f := newFixture(t, OtpConfig{})

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		_, err := f.validator.Validate(context.Background(), models.Destination{Email: "a@b.com"}, code)
		assert.ErrorIs(t, err, models.ErrInvalidPayload, code)
	}
}

func TestOtp_DeliveryFailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().
		SendCode(gomock.Any(), "ana@example.com", "482913", 10*time.Minute).
		Return(errBoom)

	f := newFixture(t, OtpConfig{})
	f.issuer.notifier = notifier
	f.withCodes("482913")

	_, err := f.issuer.Issue(ctx, models.Destination{Email: "ana@example.com"})
	assert.ErrorIs(t, err, models.ErrDelivery)

	record, err := f.otps.Get(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "482913", record.Code)
}

func TestOtp_AttemptLockout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, OtpConfig{MaxAttempts: 2})
	f.withCodes("482913")
	dest := models.Destination{Email: "ana@example.com"}

	_, err := f.issuer.Issue(ctx, dest)
	require.NoError(t, err)

	_, err = f.validator.Validate(ctx, dest, "000000")
	assert.ErrorIs(t, err, models.ErrIncorrectCode)

	_, err = f.validator.Validate(ctx, dest, "000001")
	assert.ErrorIs(t, err, models.ErrTooManyAttempts)

	_, err = f.validator.Validate(ctx, dest, "482913")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOtp_ConcurrentValidationConsumesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, OtpConfig{})
	f.withCodes("482913")
	dest := models.Destination{Email: "ana@example.com"}

	_, err := f.issuer.Issue(ctx, dest)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.validator.Validate(ctx, dest, "482913"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestOtp_AuditTrail(t *testing.T) {
	ctx := WithRequestMeta(context.Background(), RequestMeta{IPAddress: "10.0.0.7", RequestID: "req-1"})
	f := newFixture(t, OtpConfig{})
	f.withCodes("482913")
	dest := models.Destination{Cedula: "1234567890", Email: "ana@example.com"}

	_, err := f.issuer.Issue(ctx, dest)
	require.NoError(t, err)
	_, _ = f.validator.Validate(ctx, dest, "000000")

	entries := f.audit.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, models.AuditActionIssue, entries[0].Action)
	assert.Equal(t, "success", entries[0].Outcome)
	assert.Equal(t, "1234567890", entries[0].Cedula)
	assert.Equal(t, "10.0.0.7", entries[0].IPAddress)
	assert.Equal(t, "req-1", entries[0].RequestID)
	assert.Equal(t, models.AuditActionValidate, entries[1].Action)
	assert.Equal(t, "incorrect_code", entries[1].Outcome)
}
