package jwt_test

import (
	"errors"
	"testing"
	"time"

	"homecare/config"
	"homecare/infras/jwt"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.Claims, key string, method gojwt.SigningMethod) string {
	t.Helper()

	token, err := gojwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)

	return token
}

func claims(mutate func(c *jwt.Claims)) jwt.Claims {
	c := jwt.Claims{
		UserID: "customer-1",
		Role:   "customer",
		Type:   jwt.AccessToken,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    "homecare-auth",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	if mutate != nil {
		mutate(&c)
	}

	return c
}

func TestValidateToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = secret
	cfg.JWT.Issuer = "homecare-auth"

	service := jwt.New(cfg)

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{
			name:  "valid access token",
			token: func(t *testing.T) string { return sign(t, claims(nil), secret, gojwt.SigningMethodHS256) },
		},
		{
			name: "subject stands in for user id",
			token: func(t *testing.T) string {
				return sign(t, claims(func(c *jwt.Claims) { c.UserID = ""; c.Subject = "customer-1" }), secret, gojwt.SigningMethodHS256)
			},
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				return sign(t, claims(func(c *jwt.Claims) {
					c.ExpiresAt = gojwt.NewNumericDate(time.Now().Add(-time.Minute))
				}), secret, gojwt.SigningMethodHS256)
			},
			wantErr: jwt.ErrExpiredToken,
		},
		{
			name:    "wrong secret",
			token:   func(t *testing.T) string { return sign(t, claims(nil), "other", gojwt.SigningMethodHS256) },
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name:    "wrong algorithm",
			token:   func(t *testing.T) string { return sign(t, claims(nil), secret, gojwt.SigningMethodHS512) },
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name: "foreign issuer",
			token: func(t *testing.T) string {
				return sign(t, claims(func(c *jwt.Claims) { c.Issuer = "elsewhere" }), secret, gojwt.SigningMethodHS256)
			},
			wantErr: jwt.ErrInvalidClaim,
		},
		{
			name: "refresh token",
			token: func(t *testing.T) string {
				return sign(t, claims(func(c *jwt.Claims) { c.Type = jwt.RefreshToken }), secret, gojwt.SigningMethodHS256)
			},
			wantErr: jwt.ErrInvalidClaim,
		},
		{
			name: "no role",
			token: func(t *testing.T) string {
				return sign(t, claims(func(c *jwt.Claims) { c.Role = "" }), secret, gojwt.SigningMethodHS256)
			},
			wantErr: jwt.ErrInvalidClaim,
		},
		{
			name:    "garbage",
			token:   func(_ *testing.T) string { return "not.a.token" },
			wantErr: jwt.ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.ValidateToken(tt.token(t), jwt.AccessToken)

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "customer-1", got.UserID)
			assert.Equal(t, "customer", got.Role)
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := jwt.ExtractTokenFromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	for _, header := range []string{"", "Basic abc", "Bearer ", "bearer abc"} {
		_, err := jwt.ExtractTokenFromHeader(header)
		assert.Error(t, err, header)
	}
}
