package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Orange-Moose/CityInfoAPI/config"
	"github.com/Orange-Moose/CityInfoAPI/internal/api"
	"github.com/Orange-Moose/CityInfoAPI/internal/api/city"
	"github.com/Orange-Moose/CityInfoAPI/internal/types"
)

// Typed context keys
type contextKey string

const SubjectKey contextKey = "subject"
const ClaimCityKey contextKey = "claimCity"

// Authenticate is middleware that validates bearer access tokens and puts
// the subject and city claims on the request context.
func Authenticate(logger *slog.Logger, authCfg config.AuthConfig) func(next http.Handler) http.Handler {
	secretKey := []byte(authCfg.SecretKey)
	if len(secretKey) == 0 {
		logger.Error("FATAL: JWT secret key is not configured")
		panic("JWT secret key cannot be empty")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				l.WarnContext(ctx, "Missing Authorization header")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				l.WarnContext(ctx, "Invalid Authorization header format")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}
			tokenString := headerParts[1]

			claims := &types.Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return secretKey, nil
			})

			if err != nil {
				l.WarnContext(ctx, "Token parsing/validation failed", slog.Any("error", err))
				errMsg := "Invalid or expired token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					errMsg = "Token has expired"
				} else if errors.Is(err, jwt.ErrTokenMalformed) {
					errMsg = "Malformed token"
				} else if errors.Is(err, jwt.ErrSignatureInvalid) {
					errMsg = "Invalid token signature"
				}
				api.ErrorResponse(w, r, http.StatusUnauthorized, errMsg)
				return
			}

			if !token.Valid {
				l.WarnContext(ctx, "Token marked as invalid")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid token")
				return
			}

			if claims.Issuer != authCfg.Issuer {
				l.WarnContext(ctx, "Token issuer mismatch",
					slog.String("expected", authCfg.Issuer), slog.String("actual", claims.Issuer))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid token issuer")
				return
			}

			if authCfg.Audience != "" && !verifyAudience(claims.Audience, authCfg.Audience) {
				l.WarnContext(ctx, "Token audience mismatch",
					slog.String("expected", authCfg.Audience), slog.Any("actual", claims.Audience))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid token audience")
				return
			}

			ctx = context.WithValue(ctx, SubjectKey, claims.Subject)
			ctx = context.WithValue(ctx, ClaimCityKey, claims.City)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubjectFromContext returns the authenticated subject id.
func GetSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectKey).(string)
	return subject, ok
}

// GetCityFromContext returns the home-city claim of the authenticated user.
func GetCityFromContext(ctx context.Context) (string, bool) {
	claimCity, ok := ctx.Value(ClaimCityKey).(string)
	return claimCity, ok
}

// RequireSameCity restricts a route to callers whose city claim names the
// city in the path. A mismatch is forbidden, distinct from not-found.
// Runs AFTER the Authenticate middleware.
func RequireSameCity(logger *slog.Logger, cityRepo city.Repository) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "RequireSameCity"))

			claimCity, ok := GetCityFromContext(ctx)
			if !ok || claimCity == "" {
				l.WarnContext(ctx, "City claim missing from context")
				api.ErrorResponse(w, r, http.StatusForbidden, "Access restricted to your home city")
				return
			}

			cityID, err := strconv.Atoi(chi.URLParam(r, "cityID"))
			if err != nil {
				api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid city ID")
				return
			}

			matches, err := cityRepo.CityNameMatchesID(ctx, claimCity, cityID)
			if err != nil {
				l.ErrorContext(ctx, "City claim check failed", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to verify city access")
				return
			}
			if !matches {
				l.WarnContext(ctx, "City claim does not match path city",
					slog.String("claim_city", claimCity), slog.Int("cityID", cityID))
				api.ErrorResponse(w, r, http.StatusForbidden, "Access restricted to your home city")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func verifyAudience(claimsAudience jwt.ClaimStrings, expectedAudience string) bool {
	if expectedAudience == "" {
		return true
	}
	for _, aud := range claimsAudience {
		if aud == expectedAudience {
			return true
		}
	}
	return false
}
