package city

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/Orange-Moose/CityInfoAPI/app/observability/metrics"
	"github.com/Orange-Moose/CityInfoAPI/internal/api"
	"github.com/Orange-Moose/CityInfoAPI/internal/types"
)

// Callers may not fetch more than this many cities per page.
const maxCitiesPageSize = 20

const defaultPageSize = 10

type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewCityHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// GetCities handles GET /cities with optional exact name filter, free-text
// search and pagination. Pagination metadata travels in the X-Pagination
// response header.
func (h *Handler) GetCities(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CityHandler").Start(r.Context(), "GetCities")
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetCities"))

	q := r.URL.Query()
	filter := types.CityFilter{
		Name:   q.Get("nameFilter"),
		Search: q.Get("searchQuery"),
	}

	pageNumber := parseIntOrDefault(q.Get("pageNumber"), 1)
	pageSize := parseIntOrDefault(q.Get("pageSize"), defaultPageSize)
	if pageSize > maxCitiesPageSize {
		pageSize = maxCitiesPageSize
	}

	cities, metadata, err := h.service.GetCitiesPage(ctx, filter, pageNumber, pageSize)
	if err != nil {
		l.ErrorContext(ctx, "Failed to retrieve cities", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve cities")
		return
	}

	metrics.Get().CityListRequestsTotal.Add(ctx, 1)

	paginationJSON, err := json.Marshal(metadata)
	if err != nil {
		l.ErrorContext(ctx, "Failed to marshal pagination metadata", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to build response")
		return
	}
	w.Header().Set("X-Pagination", string(paginationJSON))

	// Listings always ship the reduced shape, POIs are never inlined here.
	result := make([]types.CitySummary, 0, len(cities))
	for i := range cities {
		result = append(result, cities[i].Summary())
	}

	l.InfoContext(ctx, "Returned city page",
		slog.Int("count", len(result)),
		slog.Int("page", metadata.CurrentPage),
		slog.Int("total", metadata.TotalItemCount),
		slog.Bool("filtered", !filter.IsZero()),
	)
	api.Respond(w, r, http.StatusOK, result)
}

// GetCity handles GET /cities/{cityID}. The includePOIs query flag switches
// between the reduced and the full transfer shape.
func (h *Handler) GetCity(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CityHandler").Start(r.Context(), "GetCity")
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetCity"))

	cityID, err := strconv.Atoi(chi.URLParam(r, "cityID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid city ID")
		return
	}

	includePOIs, _ := strconv.ParseBool(r.URL.Query().Get("includePOIs"))

	cityEntity, err := h.service.GetCity(ctx, cityID, includePOIs)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "City not found")
			return
		}
		l.ErrorContext(ctx, "Failed to retrieve city", slog.Any("error", err), slog.Int("cityID", cityID))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve city")
		return
	}

	if includePOIs {
		api.Respond(w, r, http.StatusOK, cityEntity.Response())
		return
	}
	api.Respond(w, r, http.StatusOK, cityEntity.Summary())
}

func parseIntOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
