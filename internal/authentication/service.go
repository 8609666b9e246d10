package authentication

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tokenworks/todo-auth-service/internal/token"
	"github.com/tokenworks/todo-auth-service/internal/user"
	"go.uber.org/zap"
)

// Rotation failure reasons. The messages double as the wire-level reason
// strings returned to clients, so they stay short and stable.
var (
	ErrInvalidToken     = errors.New("invalid_token")
	ErrTokenNotExpired  = errors.New("token_not_expired")
	ErrTokenNotFound    = errors.New("token_not_found")
	ErrTokenAlreadyUsed = errors.New("token_already_used")
	ErrTokenRevoked     = errors.New("token_revoked")
	ErrTokenMismatch    = errors.New("token_mismatch")
	ErrStoreFailure     = errors.New("store_failure")
)

const (
	refreshTokenAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	refreshTokenRandomLength = 35
)

// TokenPair is one issuance: a short-lived signed access token and the
// opaque refresh token that can be redeemed exactly once to replace it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthenticationService interface {
	Register(ctx context.Context, email, username, password string) (*TokenPair, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Rotate(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Revoke(ctx context.Context, refreshToken string) error
	RevokeAllForUser(ctx context.Context, userID uint) error
}

type authenticationService struct {
	users           user.UserService
	records         RecordRepository
	codec           *token.Codec
	logger          *zap.Logger
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewAuthenticationService(
	users user.UserService,
	records RecordRepository,
	codec *token.Codec,
	logger *zap.Logger,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthenticationService {
	return &authenticationService{
		users:           users,
		records:         records,
		codec:           codec,
		logger:          logger,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
	}
}

func (a *authenticationService) Register(ctx context.Context, email, username, password string) (*TokenPair, error) {
	u, err := a.users.CreateUser(ctx, email, username, password)
	if err != nil {
		return nil, err
	}
	return a.issueTokenPair(ctx, u)
}

func (a *authenticationService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	u, err := a.users.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := a.users.UpdateLastSeen(ctx, u.ID); err != nil {
		a.logger.Warn("failed to update last seen", zap.Uint("userID", u.ID), zap.Error(err))
	}
	return a.issueTokenPair(ctx, u)
}

// issueTokenPair mints an access token, generates a fresh opaque refresh
// token and persists the record binding the two through the jti. The pair
// is only returned once the record is stored: an unpersisted refresh token
// could never be redeemed.
func (a *authenticationService) issueTokenPair(ctx context.Context, u *user.User) (*TokenPair, error) {
	access, jti, err := a.codec.Issue(u.ID, u.Email, a.accessTokenTTL)
	if err != nil {
		a.logger.Error("failed to sign access token", zap.Uint("userID", u.ID), zap.Error(err))
		return nil, ErrStoreFailure
	}

	refresh, err := newRefreshTokenValue()
	if err != nil {
		a.logger.Error("failed to generate refresh token", zap.Error(err))
		return nil, ErrStoreFailure
	}

	now := time.Now()
	record := &RefreshTokenRecord{
		UserID:    u.ID,
		Token:     refresh,
		JTI:       jti,
		IssuedAt:  now,
		ExpiresAt: now.Add(a.refreshTokenTTL),
	}
	if err := a.records.Create(ctx, record); err != nil {
		a.logger.Error("failed to persist refresh token record", zap.Uint("userID", u.ID), zap.Error(err))
		return nil, ErrStoreFailure
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Rotate exchanges an expired access token plus its paired refresh token
// for a fresh pair. The validation chain short-circuits on the first
// failure and every failure carries its own reason; anything unexpected
// collapses to ErrInvalidToken after being logged.
func (a *authenticationService) Rotate(ctx context.Context, accessToken, refreshToken string) (pair *TokenPair, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("panic during token rotation", zap.Any("panic", r))
			pair, err = nil, ErrInvalidToken
		}
	}()

	claims, verr := a.codec.Verify(accessToken)
	if verr != nil {
		a.logger.Warn("refresh rejected: access token failed verification", zap.Error(verr))
		return nil, ErrInvalidToken
	}

	// Rotation only makes sense for an already-expired access token. A
	// still-valid one should simply keep being used.
	now := time.Now()
	if !claims.Expired(now) {
		return nil, ErrTokenNotExpired
	}

	record, rerr := a.records.ReadByToken(ctx, refreshToken)
	if rerr != nil {
		if errors.Is(rerr, ErrRecordNotFoundByGivenToken) {
			return nil, ErrTokenNotFound
		}
		a.logger.Error("refresh record lookup failed", zap.Error(rerr))
		return nil, ErrInvalidToken
	}

	if record.Used {
		a.logger.Warn("refresh token replayed", zap.Uint("userID", record.UserID), zap.String("jti", record.JTI))
		return nil, ErrTokenAlreadyUsed
	}
	if record.Revoked {
		a.logger.Warn("revoked refresh token presented", zap.Uint("userID", record.UserID), zap.String("jti", record.JTI))
		return nil, ErrTokenRevoked
	}
	if now.After(record.ExpiresAt) {
		a.logger.Warn("expired refresh record presented", zap.Uint("userID", record.UserID), zap.Time("expiresAt", record.ExpiresAt))
		return nil, ErrInvalidToken
	}
	if record.JTI != claims.ID {
		a.logger.Warn("refresh token jti mismatch", zap.Uint("userID", record.UserID), zap.String("recordJTI", record.JTI), zap.String("claimJTI", claims.ID))
		return nil, ErrTokenMismatch
	}

	// The conditional update is the actual claim on the record: when two
	// rotations race on the same token exactly one wins it.
	if merr := a.records.MarkUsed(ctx, refreshToken); merr != nil {
		if errors.Is(merr, ErrRecordAlreadyUsed) {
			a.logger.Warn("lost rotation race", zap.Uint("userID", record.UserID), zap.String("jti", record.JTI))
			return nil, ErrTokenAlreadyUsed
		}
		a.logger.Error("failed to mark refresh record used", zap.Error(merr))
		return nil, ErrInvalidToken
	}

	u, uerr := a.users.ReadUserByID(ctx, record.UserID)
	if uerr != nil {
		a.logger.Error("failed to load user for rotation", zap.Uint("userID", record.UserID), zap.Error(uerr))
		return nil, ErrInvalidToken
	}

	return a.issueTokenPair(ctx, u)
}

func (a *authenticationService) Revoke(ctx context.Context, refreshToken string) error {
	if err := a.records.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, ErrRecordNotFoundByGivenToken) {
			return ErrTokenNotFound
		}
		a.logger.Error("failed to revoke refresh token", zap.Error(err))
		return ErrStoreFailure
	}
	return nil
}

func (a *authenticationService) RevokeAllForUser(ctx context.Context, userID uint) error {
	if err := a.records.RevokeAllForUser(ctx, userID); err != nil {
		a.logger.Error("failed to revoke refresh tokens for user", zap.Uint("userID", userID), zap.Error(err))
		return ErrStoreFailure
	}
	return nil
}

// newRefreshTokenValue builds the opaque refresh token: 35 characters from
// a CSPRNG plus a uuid suffix to rule out collisions outright.
func newRefreshTokenValue() (string, error) {
	buf := make([]byte, refreshTokenRandomLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = refreshTokenAlphabet[int(b)%len(refreshTokenAlphabet)]
	}
	return string(buf) + "." + uuid.NewString(), nil
}
