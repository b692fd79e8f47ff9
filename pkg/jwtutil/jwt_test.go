package jwtutil_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-office-api/pkg/config"
	"legal-office-api/pkg/jwtutil"
)

func TestGenerateAndValidateToken(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	userID := uuid.New()
	token, err := jwtutil.GenerateToken("lawyer@firm.com", userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtutil.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "lawyer@firm.com", claims.Email)
	assert.Equal(t, userID, claims.UserID)
	assert.Empty(t, claims.TenantID)
}

func TestGenerateTokenWithTenant(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	userID := uuid.New()
	tenantID := uuid.NewString()
	token, err := jwtutil.GenerateTokenWithTenant("lawyer@firm.com", userID, tenantID, "Smith & Partners", "owner")
	require.NoError(t, err)

	claims, err := jwtutil.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, tenantID, claims.TenantID)
	assert.Equal(t, "Smith & Partners", claims.TenantName)
	assert.Equal(t, "owner", claims.Role)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	token, err := jwtutil.GenerateToken("lawyer@firm.com", uuid.New())
	require.NoError(t, err)

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = jwtutil.ValidateToken(tampered)
	require.Error(t, err)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "key-one", ExpirationHours: 1})
	token, err := jwtutil.GenerateToken("lawyer@firm.com", uuid.New())
	require.NoError(t, err)

	jwtutil.Initialize(&config.JWTConfig{SigningKey: "key-two", ExpirationHours: 1})
	_, err = jwtutil.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	claims := jwtutil.UserClaims{
		Email:  "lawyer@firm.com",
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = jwtutil.ValidateToken(token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	_, err := jwtutil.ValidateToken("not.a.token")
	require.Error(t, err)
}
