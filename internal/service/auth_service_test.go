package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/obe-attainment-api/internal/models"
	appErrors "github.com/noah-isme/obe-attainment-api/pkg/errors"
)

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims *models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func facultyClaims(expiresAt time.Time) *models.JWTClaims {
	return &models.JWTClaims{
		UserID: "user-1",
		Role:   models.RoleFaculty,
		Email:  "faculty@example.edu",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
		},
	}
}

func TestAuthServiceValidateToken(t *testing.T) {
	svc := NewAuthService(AuthConfig{AccessTokenSecret: "secret"}, nil)
	token := signToken(t, jwt.SigningMethodHS256, []byte("secret"), facultyClaims(time.Now().Add(time.Hour)))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleFaculty, claims.Role)
}

func TestAuthServiceRejectsInvalidTokens(t *testing.T) {
	svc := NewAuthService(AuthConfig{AccessTokenSecret: "secret"}, nil)

	cases := map[string]string{
		"wrong secret": signToken(t, jwt.SigningMethodHS256, []byte("other"), facultyClaims(time.Now().Add(time.Hour))),
		"expired":      signToken(t, jwt.SigningMethodHS256, []byte("secret"), facultyClaims(time.Now().Add(-time.Hour))),
		"wrong method": signToken(t, jwt.SigningMethodHS512, []byte("secret"), facultyClaims(time.Now().Add(time.Hour))),
		"no role": signToken(t, jwt.SigningMethodHS256, []byte("secret"), &models.JWTClaims{
			UserID:           "user-1",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		}),
		"garbage": "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
		})
	}
}
