package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Orange-Moose/CityInfoAPI/config"
	"github.com/Orange-Moose/CityInfoAPI/internal/types"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		SecretKey:   "test-secret-key",
		Issuer:      "cityinfo-api",
		Audience:    "cityinfo-clients",
		TokenExpiry: 12 * time.Hour,
	}
}

func setupAuthServiceTest() *ServiceImpl {
	return NewServiceImpl(testAuthConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestValidateCredentials(t *testing.T) {
	ctx := context.Background()
	svc := setupAuthServiceTest()

	t.Run("non-empty pair resolves to an identity", func(t *testing.T) {
		user, err := svc.ValidateCredentials(ctx, "jdoe", "secret")
		require.NoError(t, err)
		assert.Equal(t, 1, user.ID)
		assert.Equal(t, "jdoe", user.Username)
		assert.Equal(t, "Vilnius", user.City)
	})

	t.Run("empty username is rejected", func(t *testing.T) {
		_, err := svc.ValidateCredentials(ctx, "", "secret")
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
	})

	t.Run("empty password is rejected", func(t *testing.T) {
		_, err := svc.ValidateCredentials(ctx, "jdoe", "")
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
	})
}

func TestGenerateAccessToken(t *testing.T) {
	svc := setupAuthServiceTest()
	user := &types.CityUser{ID: 1, Username: "jdoe", FirstName: "John", LastName: "Doe", City: "Vilnius"}

	t.Run("token carries the identity claims", func(t *testing.T) {
		signed, err := svc.GenerateAccessToken(user)
		require.NoError(t, err)

		claims := &types.Claims{}
		token, err := jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
			return []byte("test-secret-key"), nil
		})
		require.NoError(t, err)
		require.True(t, token.Valid)

		assert.Equal(t, "1", claims.Subject)
		assert.Equal(t, "John", claims.GivenName)
		assert.Equal(t, "Doe", claims.FamilyName)
		assert.Equal(t, "Vilnius", claims.City)
		assert.Equal(t, "cityinfo-api", claims.Issuer)
		assert.Equal(t, jwt.ClaimStrings{"cityinfo-clients"}, claims.Audience)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("expiry follows the configured window", func(t *testing.T) {
		signed, err := svc.GenerateAccessToken(user)
		require.NoError(t, err)

		claims := &types.Claims{}
		_, err = jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
			return []byte("test-secret-key"), nil
		})
		require.NoError(t, err)

		lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
		assert.Equal(t, 12*time.Hour, lifetime)
	})

	t.Run("unset expiry falls back to twelve hours", func(t *testing.T) {
		cfg := testAuthConfig()
		cfg.TokenExpiry = 0
		fallbackSvc := NewServiceImpl(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

		signed, err := fallbackSvc.GenerateAccessToken(user)
		require.NoError(t, err)

		claims := &types.Claims{}
		_, err = jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
			return []byte("test-secret-key"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, 12*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	})

	t.Run("wrong key fails verification", func(t *testing.T) {
		signed, err := svc.GenerateAccessToken(user)
		require.NoError(t, err)

		_, err = jwt.ParseWithClaims(signed, &types.Claims{}, func(*jwt.Token) (interface{}, error) {
			return []byte("a-different-key"), nil
		})
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("two tokens get distinct ids", func(t *testing.T) {
		first, err := svc.GenerateAccessToken(user)
		require.NoError(t, err)
		second, err := svc.GenerateAccessToken(user)
		require.NoError(t, err)

		parse := func(s string) *types.Claims {
			claims := &types.Claims{}
			_, err := jwt.ParseWithClaims(s, claims, func(*jwt.Token) (interface{}, error) {
				return []byte("test-secret-key"), nil
			})
			require.NoError(t, err)
			return claims
		}
		assert.NotEqual(t, parse(first).ID, parse(second).ID)
	})
}
