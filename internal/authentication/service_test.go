package authentication

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tokenworks/todo-auth-service/internal/token"
	"github.com/tokenworks/todo-auth-service/internal/user"
	"go.uber.org/zap"
)

// fakeRecordRepository is an in-memory RecordRepository. MarkUsed performs
// the same compare-and-set the SQL UPDATE does, under a mutex, so the
// rotation race tests exercise the real contract.
type fakeRecordRepository struct {
	mu        sync.Mutex
	records   map[string]*RefreshTokenRecord
	createErr error
}

func newFakeRecordRepository() *fakeRecordRepository {
	return &fakeRecordRepository{records: make(map[string]*RefreshTokenRecord)}
}

func (f *fakeRecordRepository) Create(_ context.Context, record *RefreshTokenRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *record
	f.records[record.Token] = &cp
	return nil
}

func (f *fakeRecordRepository) ReadByToken(_ context.Context, tok string) (*RefreshTokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[tok]
	if !ok {
		return nil, ErrRecordNotFoundByGivenToken
	}
	cp := *record
	return &cp, nil
}

func (f *fakeRecordRepository) MarkUsed(_ context.Context, tok string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[tok]
	if !ok || record.Used {
		return ErrRecordAlreadyUsed
	}
	record.Used = true
	return nil
}

func (f *fakeRecordRepository) Revoke(_ context.Context, tok string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[tok]
	if !ok {
		return ErrRecordNotFoundByGivenToken
	}
	record.Revoked = true
	return nil
}

func (f *fakeRecordRepository) RevokeAllForUser(_ context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.records {
		if record.UserID == userID {
			record.Revoked = true
		}
	}
	return nil
}

func (f *fakeRecordRepository) insert(record *RefreshTokenRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.Token] = record
}

func (f *fakeRecordRepository) get(tok string) *RefreshTokenRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[tok]
}

func (f *fakeRecordRepository) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// fakeUserService serves a single fixed user.
type fakeUserService struct {
	user *user.User
}

func (f *fakeUserService) CreateUser(_ context.Context, email, username, _ string) (*user.User, error) {
	return f.user, nil
}

func (f *fakeUserService) ReadUserByEmail(_ context.Context, email string) (*user.User, error) {
	if f.user == nil || f.user.Email != email {
		return nil, user.ErrUserNotFound
	}
	return f.user, nil
}

func (f *fakeUserService) ReadUserByID(_ context.Context, id uint) (*user.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, user.ErrUserNotFound
	}
	return f.user, nil
}

func (f *fakeUserService) VerifyPassword(_ context.Context, email, password string) (*user.User, error) {
	if f.user == nil || f.user.Email != email || password != "hunter2!aA" {
		return nil, user.ErrInvalidCredentials
	}
	return f.user, nil
}

func (f *fakeUserService) UpdateEmail(context.Context, uint, string) error    { return nil }
func (f *fakeUserService) UpdatePassword(context.Context, uint, string) error { return nil }
func (f *fakeUserService) UpdateLastSeen(context.Context, uint) error         { return nil }
func (f *fakeUserService) DeleteUser(context.Context, uint) error             { return nil }

func testUser() *user.User {
	u := &user.User{
		Email:    "alice@example.com",
		Username: "alice",
		Role:     user.Member,
	}
	u.ID = 7
	return u
}

func newTestService(records RecordRepository) (AuthenticationService, *token.Codec) {
	codec := token.NewCodec("unit-test-secret")
	svc := NewAuthenticationService(
		&fakeUserService{user: testUser()},
		records,
		codec,
		zap.NewNop(),
		10*time.Minute,
		6*30*24*time.Hour,
	)
	return svc, codec
}

// expiredPair issues a pair whose access token is already expired, the way
// one looks after sitting in a client for longer than its TTL.
func expiredPair(t *testing.T, codec *token.Codec, records *fakeRecordRepository) (string, string) {
	t.Helper()
	u := testUser()
	access, jti, err := codec.Issue(u.ID, u.Email, -time.Minute)
	require.NoError(t, err)

	refresh, err := newRefreshTokenValue()
	require.NoError(t, err)

	now := time.Now()
	records.insert(&RefreshTokenRecord{
		UserID:    u.ID,
		Token:     refresh,
		JTI:       jti,
		IssuedAt:  now.Add(-time.Hour),
		ExpiresAt: now.Add(24 * time.Hour),
	})
	return access, refresh
}

func TestLoginIssuesBoundPair(t *testing.T) {
	records := newFakeRecordRepository()
	svc, codec := newTestService(records)

	pair, err := svc.Login(context.Background(), "alice@example.com", "hunter2!aA")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := codec.Verify(pair.AccessToken)
	require.NoError(t, err)

	record := records.get(pair.RefreshToken)
	require.NotNil(t, record, "refresh record must be persisted before the pair is returned")
	assert.Equal(t, claims.ID, record.JTI, "record jti must match the access token jti")
	assert.Equal(t, uint(7), record.UserID)
	assert.False(t, record.Used)
	assert.False(t, record.Revoked)
	assert.WithinDuration(t, time.Now().Add(6*30*24*time.Hour), record.ExpiresAt, time.Minute)
}

func TestLoginFailsWhenRecordNotPersisted(t *testing.T) {
	records := newFakeRecordRepository()
	records.createErr = errors.New("connection refused")
	svc, _ := newTestService(records)

	pair, err := svc.Login(context.Background(), "alice@example.com", "hunter2!aA")
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.Nil(t, pair, "no pair may be returned without a persisted record")
}

func TestRefreshTokenValueUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		value, err := newRefreshTokenValue()
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(value), refreshTokenRandomLength)
		if _, dup := seen[value]; dup {
			t.Fatalf("duplicate refresh token value after %d samples", i)
		}
		seen[value] = struct{}{}
	}
}

func TestRotateRefusesUnexpiredAccessToken(t *testing.T) {
	records := newFakeRecordRepository()
	svc, _ := newTestService(records)

	pair, err := svc.Login(context.Background(), "alice@example.com", "hunter2!aA")
	require.NoError(t, err)

	_, err = svc.Rotate(context.Background(), pair.AccessToken, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenNotExpired)

	record := records.get(pair.RefreshToken)
	assert.False(t, record.Used, "a refused rotation must not consume the record")
}

func TestRotateSucceedsForExpiredAccessToken(t *testing.T) {
	records := newFakeRecordRepository()
	svc, codec := newTestService(records)
	access, refresh := expiredPair(t, codec, records)

	pair, err := svc.Rotate(context.Background(), access, refresh)
	require.NoError(t, err)

	claims, err := codec.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Time.After(time.Now()), "new access token must expire in the future")

	assert.True(t, records.get(refresh).Used, "old record must be consumed")
	newRecord := records.get(pair.RefreshToken)
	require.NotNil(t, newRecord)
	assert.Equal(t, claims.ID, newRecord.JTI)
	assert.False(t, newRecord.Used)
	assert.Equal(t, 2, records.len())
}

func TestRotateConcurrentSingleWinner(t *testing.T) {
	records := newFakeRecordRepository()
	svc, codec := newTestService(records)
	access, refresh := expiredPair(t, codec, records)

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Rotate(context.Background(), access, refresh)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	replayed := 0
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, ErrTokenAlreadyUsed):
			replayed++
		default:
			t.Fatalf("unexpected rotation error: %v", err)
		}
	}

	assert.Equal(t, 1, success, "exactly one rotation may win")
	assert.Equal(t, n-1, replayed)
}

func TestRotateUnknownRefreshToken(t *testing.T) {
	records := newFakeRecordRepository()
	svc, codec := newTestService(records)
	access, _ := expiredPair(t, codec, records)

	_, err := svc.Rotate(context.Background(), access, "no-such-token")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRotateUsedRecord(t *testing.T) {
	records := newFakeRecordRepository()
	svc, codec := newTestService(records)
	access, refresh := expiredPair(t, codec, records)
	records.get(refresh).Used = true

	_, err := svc.Rotate(context.Background(), access, refresh)
	assert.ErrorIs(t, err, ErrTokenAlreadyUsed)
}

func TestRotateRevokedRecord(t *testing.T) {
	records := newFakeRecordRepository()
	svc, codec := newTestService(records)
	access, refresh := expiredPair(t, codec, records)
	records.get(refresh).Revoked = true

	_, err := svc.Rotate(context.Background(), access, refresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRotateJTIMismatch(t *testing.T) {
	records := newFakeRecordRepository()
	svc, codec := newTestService(records)
	access, refresh := expiredPair(t, codec, records)
	records.get(refresh).JTI = "some-other-jti"

	_, err := svc.Rotate(context.Background(), access, refresh)
	assert.ErrorIs(t, err, ErrTokenMismatch)

	assert.False(t, records.get(refresh).Used, "a mismatched rotation must not consume the record")
}

func TestRotateExpiredRecord(t *testing.T) {
	records := newFakeRecordRepository()
	svc, codec := newTestService(records)
	access, refresh := expiredPair(t, codec, records)
	records.get(refresh).ExpiresAt = time.Now().Add(-time.Hour)

	_, err := svc.Rotate(context.Background(), access, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRotateMalformedAccessToken(t *testing.T) {
	records := newFakeRecordRepository()
	svc, _ := newTestService(records)

	for _, input := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Rotate(context.Background(), input, "whatever")
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", input)
	}
}

func TestRotateWrongSecret(t *testing.T) {
	records := newFakeRecordRepository()
	svc, _ := newTestService(records)

	foreign := token.NewCodec("some-other-secret")
	access, _, err := foreign.Issue(7, "alice@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = svc.Rotate(context.Background(), access, "whatever")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeBlocksRotation(t *testing.T) {
	records := newFakeRecordRepository()
	svc, codec := newTestService(records)
	access, refresh := expiredPair(t, codec, records)

	require.NoError(t, svc.Revoke(context.Background(), refresh))

	_, err := svc.Rotate(context.Background(), access, refresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRevokeAllForUser(t *testing.T) {
	records := newFakeRecordRepository()
	svc, codec := newTestService(records)
	access, refresh := expiredPair(t, codec, records)
	_, otherRefresh := expiredPair(t, codec, records)

	require.NoError(t, svc.RevokeAllForUser(context.Background(), 7))

	_, err := svc.Rotate(context.Background(), access, refresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	assert.True(t, records.get(otherRefresh).Revoked)
}
