package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what a verified token says about its bearer.
type Identity struct {
	UserID   int64
	Username string
}

// Claims is the signed token payload.
type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"user"`
	jwt.RegisteredClaims
}

// TokenConfig configures a TokenManager. Secret is required.
type TokenConfig struct {
	Secret string
	// TTL of zero issues tokens without an exp claim.
	TTL    time.Duration
	Issuer string
}

// TokenManager issues and verifies HS256 bearer tokens.
// It holds no mutable state and is safe for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenManager returns a TokenManager or ErrMissingSecret if cfg.Secret is empty.
func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	return &TokenManager{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// Issue signs a token carrying id.
func (m *TokenManager) Issue(id Identity) (string, error) {
	now := m.now()
	claims := Claims{
		UserID:   id.UserID,
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   m.issuer,
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Verify checks the signature and payload of token and returns the identity it carries.
// Errors wrap ErrMalformedToken, ErrInvalidSignature or ErrTokenExpired.
func (m *TokenManager) Verify(token string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, m.parserOptions()...)
	if err != nil {
		return Identity{}, classify(err)
	}
	if claims.UserID <= 0 || claims.Username == "" {
		return Identity{}, fmt.Errorf("%w: missing id or user claim", ErrMalformedToken)
	}
	return Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

func (m *TokenManager) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	return opts
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
}
