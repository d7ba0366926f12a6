package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, cfg TokenConfig) *TokenManager {
	t.Helper()
	if cfg.Secret == "" {
		cfg.Secret = "super-secret"
	}
	m, err := NewTokenManager(cfg)
	require.NoError(t, err)
	return m
}

func TestNewTokenManager_MissingSecret(t *testing.T) {
	t.Parallel()
	_, err := NewTokenManager(TokenConfig{})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, TokenConfig{})

	tests := []Identity{
		{UserID: 1, Username: "alice"},
		{UserID: 42, Username: "bob"},
		{UserID: 1 << 40, Username: "юзер с пробелом"},
	}
	for _, want := range tests {
		tok, err := m.Issue(want)
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(tok, "."))

		got, err := m.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestIssue_NoExpiryByDefault(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, TokenConfig{})

	tok, err := m.Issue(Identity{UserID: 1, Username: "alice"})
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
	assert.NotNil(t, claims.IssuedAt)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, TokenConfig{TTL: time.Minute})
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	tok, err := m.Issue(Identity{UserID: 1, Username: "alice"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_NotYetExpired(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, TokenConfig{TTL: time.Hour})

	tok, err := m.Issue(Identity{UserID: 7, Username: "carol"})
	require.NoError(t, err)
	_, err = m.Verify(tok)
	assert.NoError(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()
	issuer := newTestManager(t, TokenConfig{Secret: "right-secret"})
	verifier := newTestManager(t, TokenConfig{Secret: "wrong-secret"})

	tok, err := issuer.Issue(Identity{UserID: 2, Username: "u2"})
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, TokenConfig{})

	for _, tok := range []string{"", "abc", "a.b", "not.a.jwt", "a.b.c.d", "!!!.???.***"} {
		_, err := m.Verify(tok)
		assert.ErrorIs(t, err, ErrMalformedToken, "token %q", tok)
	}
}

func TestVerify_MissingClaims(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, TokenConfig{})

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"foo": "bar"}).SignedString(m.secret)
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, TokenConfig{})
	claims := Claims{UserID: 1, Username: "alice"}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(m.secret)
	require.NoError(t, err)
	_, err = m.Verify(hs512)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_Issuer(t *testing.T) {
	t.Parallel()
	a := newTestManager(t, TokenConfig{Secret: "s", Issuer: "tasker"})
	b := newTestManager(t, TokenConfig{Secret: "s", Issuer: "someone-else"})

	tok, err := b.Issue(Identity{UserID: 1, Username: "alice"})
	require.NoError(t, err)
	_, err = a.Verify(tok)
	assert.ErrorIs(t, err, ErrMalformedToken)

	tok, err = a.Issue(Identity{UserID: 1, Username: "alice"})
	require.NoError(t, err)
	_, err = a.Verify(tok)
	assert.NoError(t, err)
}

func TestVerify_TamperedByte(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, TokenConfig{})

	tok, err := m.Issue(Identity{UserID: 5, Username: "mallory"})
	require.NoError(t, err)

	for i := 0; i < len(tok); i++ {
		b := []byte(tok)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		_, err := m.Verify(string(b))
		require.Error(t, err, "byte %d", i)
		ok := assert.Condition(t, func() bool {
			return errorsIsAny(err, ErrInvalidSignature, ErrMalformedToken)
		}, "byte %d: unexpected error %v", i, err)
		if !ok {
			return
		}
	}
}

func TestVerify_ForgedPayload(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, TokenConfig{})

	tok, err := m.Issue(Identity{UserID: 5, Username: "mallory"})
	require.NoError(t, err)
	parts := strings.Split(tok, ".")

	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"id":1,"user":"admin"}`))
	_, err = m.Verify(parts[0] + "." + forged + "." + parts[2])
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
