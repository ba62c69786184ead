package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.GenerateToken(7, "admin")
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	_, err = NewJWTManager("other", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManagerExpired(t *testing.T) {
	m := &JWTManager{secret: []byte("secret"), ttl: -time.Minute, issuer: "test"}
	token, err := m.GenerateToken(1, "staff")
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewSessionToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := NewSessionToken()
		require.NoError(t, err)
		assert.Len(t, token, 43)
		assert.NotContains(t, token, "=")
		assert.False(t, seen[token])
		seen[token] = true
	}
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "10.13", FormatMoney(RoundMoney(decimal.RequireFromString("10.125"))))
	assert.Equal(t, "-10.13", FormatMoney(RoundMoney(decimal.RequireFromString("-10.125"))))
	assert.Equal(t, "30.00", FormatMoney(decimal.NewFromInt(30)))
}

func TestNewLogger(t *testing.T) {
	log := NewLogger("debug", "json")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = NewLogger("bogus", "text")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}
