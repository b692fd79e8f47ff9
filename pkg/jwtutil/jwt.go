package jwtutil

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"legal-office-api/pkg/config"
)

var (
	signingKey = []byte("legalofficesecretkey")
	expiration = 24 * time.Hour
)

// Initialize configures the signing key and token lifetime.
func Initialize(cfg *config.JWTConfig) {
	if cfg.SigningKey != "" {
		signingKey = []byte(cfg.SigningKey)
	}
	if cfg.ExpirationHours > 0 {
		expiration = time.Duration(cfg.ExpirationHours) * time.Hour
	}
}

// UserClaims represents the JWT claims for user authentication. The tenant
// identifier is the claim the tenant binder trusts verbatim; it is only
// minted after membership has been verified at login or switch time.
type UserClaims struct {
	Email      string    `json:"email"`
	UserID     uuid.UUID `json:"user_id"`
	TenantID   string    `json:"tenant_id,omitempty"`
	TenantName string    `json:"tenant_name,omitempty"`
	Role       string    `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates a JWT token without a tenant claim. Tenant-scoped
// routes will fail closed until the user selects a firm.
func GenerateToken(email string, userID uuid.UUID) (string, error) {
	return GenerateTokenWithTenant(email, userID, "", "", "")
}

// GenerateTokenWithTenant creates a JWT token carrying the tenant claim.
func GenerateTokenWithTenant(email string, userID uuid.UUID, tenantID, tenantName, role string) (string, error) {
	claims := UserClaims{
		Email:      email,
		UserID:     userID,
		TenantID:   tenantID,
		TenantName: tenantName,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return signingKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
