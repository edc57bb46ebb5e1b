package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Orange-Moose/CityInfoAPI/config"
	"github.com/Orange-Moose/CityInfoAPI/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// ValidateCredentials resolves a username/password pair to an identity,
	// or ErrUnauthenticated.
	ValidateCredentials(ctx context.Context, username, password string) (*types.CityUser, error)
	// GenerateAccessToken mints a signed, time-limited bearer token carrying
	// the identity claims.
	GenerateAccessToken(user *types.CityUser) (string, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	cfg    config.AuthConfig
}

func NewServiceImpl(cfg config.AuthConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		cfg:    cfg,
	}
}

// ValidateCredentials is a demo stub: it consults no user store and accepts
// any non-empty pair, fabricating a fixed identity. Do not ship as-is.
func (s *ServiceImpl) ValidateCredentials(ctx context.Context, username, password string) (*types.CityUser, error) {
	if username == "" || password == "" {
		return nil, types.ErrUnauthenticated
	}

	return &types.CityUser{
		ID:        1,
		Username:  username,
		FirstName: "John",
		LastName:  "Doe",
		City:      "Vilnius",
	}, nil
}

func (s *ServiceImpl) GenerateAccessToken(user *types.CityUser) (string, error) {
	expiry := s.cfg.TokenExpiry
	if expiry <= 0 {
		expiry = 12 * time.Hour
	}

	now := time.Now()
	claims := types.Claims{
		GivenName:  user.FirstName,
		FamilyName: user.LastName,
		City:       user.City,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}
