package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"

	"github.com/Orange-Moose/CityInfoAPI/internal/api"
	"github.com/Orange-Moose/CityInfoAPI/internal/types"
)

type AuthHandler struct {
	logger  *slog.Logger
	service Service
}

func NewAuthHandler(service Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		service: service,
	}
}

// Authenticate handles POST /auth/authenticate: validates the credential
// pair and returns a signed bearer token.
func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Authenticate")
	defer span.End()

	l := h.logger.With(slog.String("handler", "Authenticate"))

	var req types.AuthRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.ValidateCredentials(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			l.WarnContext(ctx, "Credential validation failed", slog.String("username", req.Username))
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		l.ErrorContext(ctx, "Credential validation error", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to validate credentials")
		return
	}

	token, err := h.service.GenerateAccessToken(user)
	if err != nil {
		l.ErrorContext(ctx, "Token generation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	l.InfoContext(ctx, "Token issued", slog.String("subject", user.Username))
	api.Respond(w, r, http.StatusOK, types.AuthResponse{AccessToken: token})
}
