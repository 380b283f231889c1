package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GoArmGo/Weplash/internal/domain"
)

func TestViewer(t *testing.T) {
	anon := Anonymous()
	_, ok := anon.UserID()
	assert.False(t, ok)
	assert.True(t, anon.IsAnonymous())
	assert.False(t, anon.Is(0))

	var zero Viewer
	assert.Equal(t, anon, zero)

	v := Authenticated(7)
	id, ok := v.UserID()
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)
	assert.True(t, v.Is(7))
	assert.False(t, v.Is(8))
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.IssueToken(42)
	require.NoError(t, err)

	userID, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestTokenManager_WithoutExpiry(t *testing.T) {
	m := NewTokenManager("secret", 0)

	token, err := m.IssueToken(5)
	require.NoError(t, err)

	userID, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(5), userID)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	foreign, err := other.IssueToken(1)
	require.NoError(t, err)

	expiredManager := NewTokenManager("secret", time.Minute)
	expiredManager.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredManager.IssueToken(1)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: 1}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong secret", foreign},
		{"expired", expired},
		{"alg none", noneToken},
		{"other algorithm", hs512},
		{"missing user id", noUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ParseToken(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("123456")
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)

	ok, err := h.Compare(hash, "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(hash, "654321")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Compare("not-a-hash", "123456")
	assert.Error(t, err)
}

func TestPasswordHasher_InvalidCostFallsBack(t *testing.T) {
	h := NewPasswordHasher(100)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}
