package poi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Orange-Moose/CityInfoAPI/internal/api"
	"github.com/Orange-Moose/CityInfoAPI/internal/types"
)

type POIHandler struct {
	poiService Service
	logger     *slog.Logger
}

func NewPOIHandler(poiService Service, logger *slog.Logger) *POIHandler {
	return &POIHandler{
		poiService: poiService,
		logger:     logger,
	}
}

// GetPOIs handles GET /cities/{cityID}/pointsofinterest.
func (h *POIHandler) GetPOIs(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "GetPOIs")
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetPOIs"))

	cityID, ok := h.pathID(w, r, "cityID")
	if !ok {
		return
	}

	pois, err := h.poiService.GetPOIsForCity(ctx, cityID)
	if err != nil {
		h.writeServiceError(ctx, w, r, l, span, err, "Failed to retrieve points of interest")
		return
	}

	api.Respond(w, r, http.StatusOK, pois)
}

// GetPOI handles GET /cities/{cityID}/pointsofinterest/{poiID}.
func (h *POIHandler) GetPOI(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "GetPOI")
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetPOI"))

	cityID, ok := h.pathID(w, r, "cityID")
	if !ok {
		return
	}
	poiID, ok := h.pathID(w, r, "poiID")
	if !ok {
		return
	}

	p, err := h.poiService.GetPOIForCity(ctx, cityID, poiID)
	if err != nil {
		h.writeServiceError(ctx, w, r, l, span, err, "Failed to retrieve point of interest")
		return
	}

	api.Respond(w, r, http.StatusOK, p)
}

// CreatePOI handles POST /cities/{cityID}/pointsofinterest. On success the
// Location header points at the new (cityID, poiID) resource so clients can
// immediately re-fetch it.
func (h *POIHandler) CreatePOI(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "CreatePOI")
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreatePOI"))

	cityID, ok := h.pathID(w, r, "cityID")
	if !ok {
		return
	}

	var input types.POIForCreation
	if err := api.DecodeJSONBody(w, r, &input); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.poiService.CreatePOI(ctx, cityID, input)
	if err != nil {
		h.writeServiceError(ctx, w, r, l, span, err, "Failed to create point of interest")
		return
	}

	l.InfoContext(ctx, "Point of interest created",
		slog.Int("cityID", cityID), slog.Int("poiID", created.ID))

	w.Header().Set("Location", fmt.Sprintf("/api/v1/cities/%d/pointsofinterest/%d", cityID, created.ID))
	api.Respond(w, r, http.StatusCreated, created)
}

// UpdatePOI handles PUT. Full replace: fields missing from the body
// overwrite the stored values with their zero value.
func (h *POIHandler) UpdatePOI(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "UpdatePOI")
	defer span.End()

	l := h.logger.With(slog.String("handler", "UpdatePOI"))

	cityID, ok := h.pathID(w, r, "cityID")
	if !ok {
		return
	}
	poiID, ok := h.pathID(w, r, "poiID")
	if !ok {
		return
	}

	var input types.POIForUpdate
	if err := api.DecodeJSONBody(w, r, &input); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.poiService.UpdatePOI(ctx, cityID, poiID, input); err != nil {
		h.writeServiceError(ctx, w, r, l, span, err, "Failed to update point of interest")
		return
	}

	api.Respond(w, r, http.StatusNoContent, nil)
}

// PatchPOI handles PATCH with an RFC 6902 patch document body.
func (h *POIHandler) PatchPOI(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "PatchPOI")
	defer span.End()

	l := h.logger.With(slog.String("handler", "PatchPOI"))

	cityID, ok := h.pathID(w, r, "cityID")
	if !ok {
		return
	}
	poiID, ok := h.pathID(w, r, "poiID")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	patchDoc, err := io.ReadAll(r.Body)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Failed to read patch document")
		return
	}

	if err := h.poiService.PatchPOI(ctx, cityID, poiID, patchDoc); err != nil {
		h.writeServiceError(ctx, w, r, l, span, err, "Failed to patch point of interest")
		return
	}

	api.Respond(w, r, http.StatusNoContent, nil)
}

// DeletePOI handles DELETE and triggers the best-effort deletion
// notification on success.
func (h *POIHandler) DeletePOI(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "DeletePOI")
	defer span.End()

	l := h.logger.With(slog.String("handler", "DeletePOI"))

	cityID, ok := h.pathID(w, r, "cityID")
	if !ok {
		return
	}
	poiID, ok := h.pathID(w, r, "poiID")
	if !ok {
		return
	}

	if err := h.poiService.DeletePOI(ctx, cityID, poiID); err != nil {
		h.writeServiceError(ctx, w, r, l, span, err, "Failed to delete point of interest")
		return
	}

	l.InfoContext(ctx, "Point of interest deleted",
		slog.Int("cityID", cityID), slog.Int("poiID", poiID))
	api.Respond(w, r, http.StatusNoContent, nil)
}

func (h *POIHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return id, true
}

// writeServiceError maps the service error taxonomy onto HTTP statuses:
// not-found and validation failures are routine outcomes, everything else is
// a store failure worth logging.
func (h *POIHandler) writeServiceError(ctx context.Context, w http.ResponseWriter, r *http.Request, l *slog.Logger, span trace.Span, err error, fallback string) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Resource not found")
	case errors.Is(err, types.ErrValidation):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	default:
		l.ErrorContext(ctx, fallback, slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, fallback)
		api.ErrorResponse(w, r, http.StatusInternalServerError, fallback)
	}
}
