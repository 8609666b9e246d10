package token

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid access token")
	ErrUnexpectedMethod = errors.New("unexpected signing method")
)

// Claims is the claim set embedded in every access token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user ID.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// Expired reports whether the expiry claim is in the past relative to now.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Time.Before(now)
}

// Codec signs and verifies access tokens with a single symmetric secret.
type Codec struct {
	secret []byte
	parser *jwt.Parser
}

// NewCodec creates a codec for the given HS256 secret. The parser skips
// claim validation on purpose: the refresh flow has to accept an expired
// access token, so expiry is always the caller's explicit check.
func NewCodec(secret string) *Codec {
	return &Codec{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithoutClaimsValidation()),
	}
}

// Issue signs a fresh access token for the given user and returns the
// compact token string together with its jti.
func (c *Codec) Issue(userID uint, email string, ttl time.Duration) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(int(userID)),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// Verify checks the signature and the signing algorithm identity. It does
// NOT reject expired tokens; use Claims.Expired for that.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	parsed, err := c.parser.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnexpectedMethod
		}
		if !strings.EqualFold(t.Method.Alg(), jwt.SigningMethodHS256.Alg()) {
			return nil, ErrUnexpectedMethod
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
