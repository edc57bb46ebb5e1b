package poi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Orange-Moose/CityInfoAPI/internal/types"
)

type MockPOIService struct {
	mock.Mock
}

func (m *MockPOIService) GetPOIsForCity(ctx context.Context, cityID int) ([]types.PointOfInterest, error) {
	args := m.Called(ctx, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PointOfInterest), args.Error(1)
}

func (m *MockPOIService) GetPOIForCity(ctx context.Context, cityID, poiID int) (*types.PointOfInterest, error) {
	args := m.Called(ctx, cityID, poiID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PointOfInterest), args.Error(1)
}

func (m *MockPOIService) CreatePOI(ctx context.Context, cityID int, input types.POIForCreation) (*types.PointOfInterest, error) {
	args := m.Called(ctx, cityID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PointOfInterest), args.Error(1)
}

func (m *MockPOIService) UpdatePOI(ctx context.Context, cityID, poiID int, input types.POIForUpdate) error {
	args := m.Called(ctx, cityID, poiID, input)
	return args.Error(0)
}

func (m *MockPOIService) PatchPOI(ctx context.Context, cityID, poiID int, patchDoc []byte) error {
	args := m.Called(ctx, cityID, poiID, patchDoc)
	return args.Error(0)
}

func (m *MockPOIService) DeletePOI(ctx context.Context, cityID, poiID int) error {
	args := m.Called(ctx, cityID, poiID)
	return args.Error(0)
}

func setupPOIHandlerTest() (*chi.Mux, *MockPOIService) {
	svc := new(MockPOIService)
	h := NewPOIHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Route("/cities/{cityID}/pointsofinterest", func(r chi.Router) {
		r.Get("/", h.GetPOIs)
		r.Post("/", h.CreatePOI)
		r.Get("/{poiID}", h.GetPOI)
		r.Put("/{poiID}", h.UpdatePOI)
		r.Patch("/{poiID}", h.PatchPOI)
		r.Delete("/{poiID}", h.DeletePOI)
	})
	return r, svc
}

func TestHandlerGetPOIs(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r, svc := setupPOIHandlerTest()
		svc.On("GetPOIsForCity", mock.Anything, 1).
			Return([]types.PointOfInterest{{ID: 11, Name: "Gediminas Tower", CityID: 1}}, nil)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cities/1/pointsofinterest", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got []types.PointOfInterest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, 11, got[0].ID)
		// The owning city travels in the path, not the body.
		assert.NotContains(t, rec.Body.String(), "cityID")
	})

	t.Run("missing city yields 404", func(t *testing.T) {
		r, svc := setupPOIHandlerTest()
		svc.On("GetPOIsForCity", mock.Anything, 99).Return(nil, types.ErrNotFound)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cities/99/pointsofinterest", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric city id yields 400", func(t *testing.T) {
		r, svc := setupPOIHandlerTest()

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cities/abc/pointsofinterest", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "GetPOIsForCity", mock.Anything, mock.Anything)
	})
}

func TestHandlerCreatePOI(t *testing.T) {
	t.Run("created with location header", func(t *testing.T) {
		r, svc := setupPOIHandlerTest()
		svc.On("CreatePOI", mock.Anything, 1, types.POIForCreation{Name: "Uzupis", Description: "Artists' quarter"}).
			Return(&types.PointOfInterest{ID: 32, Name: "Uzupis", Description: "Artists' quarter", CityID: 1}, nil)

		body := strings.NewReader(`{"name":"Uzupis","description":"Artists' quarter"}`)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cities/1/pointsofinterest", body))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/api/v1/cities/1/pointsofinterest/32", rec.Header().Get("Location"))
		var got types.PointOfInterest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 32, got.ID)
	})

	t.Run("malformed body yields 400", func(t *testing.T) {
		r, svc := setupPOIHandlerTest()

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cities/1/pointsofinterest", strings.NewReader(`{`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "CreatePOI", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown field yields 400", func(t *testing.T) {
		r, svc := setupPOIHandlerTest()

		body := strings.NewReader(`{"name":"x","rating":5}`)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cities/1/pointsofinterest", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "unknown key")
		svc.AssertNotCalled(t, "CreatePOI", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("validation failure yields 400 with a reason", func(t *testing.T) {
		r, svc := setupPOIHandlerTest()
		svc.On("CreatePOI", mock.Anything, 1, mock.Anything).
			Return(nil, fmt.Errorf("%w: name is required", types.ErrValidation))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cities/1/pointsofinterest", strings.NewReader(`{"name":""}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "name is required")
	})
}

func TestHandlerUpdatePOI(t *testing.T) {
	t.Run("full replace returns 204 with empty body", func(t *testing.T) {
		r, svc := setupPOIHandlerTest()
		svc.On("UpdatePOI", mock.Anything, 1, 11, types.POIForUpdate{Name: "Renamed"}).Return(nil)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/cities/1/pointsofinterest/11", strings.NewReader(`{"name":"Renamed"}`)))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("missing target yields 404", func(t *testing.T) {
		r, svc := setupPOIHandlerTest()
		svc.On("UpdatePOI", mock.Anything, 1, 99, mock.Anything).Return(types.ErrNotFound)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/cities/1/pointsofinterest/99", strings.NewReader(`{"name":"x"}`)))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandlerPatchPOI(t *testing.T) {
	t.Run("forwards the raw patch document", func(t *testing.T) {
		r, svc := setupPOIHandlerTest()
		doc := `[{"op":"replace","path":"/name","value":"Renamed"}]`
		svc.On("PatchPOI", mock.Anything, 1, 11, []byte(doc)).Return(nil)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/cities/1/pointsofinterest/11", strings.NewReader(doc)))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("invalid patch yields 400", func(t *testing.T) {
		r, svc := setupPOIHandlerTest()
		svc.On("PatchPOI", mock.Anything, 1, 11, mock.Anything).
			Return(fmt.Errorf("%w: malformed patch document", types.ErrValidation))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/cities/1/pointsofinterest/11", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "malformed patch document")
	})
}

func TestHandlerDeletePOI(t *testing.T) {
	t.Run("success returns 204", func(t *testing.T) {
		r, svc := setupPOIHandlerTest()
		svc.On("DeletePOI", mock.Anything, 1, 11).Return(nil)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cities/1/pointsofinterest/11", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("missing target yields 404", func(t *testing.T) {
		r, svc := setupPOIHandlerTest()
		svc.On("DeletePOI", mock.Anything, 1, 99).Return(types.ErrNotFound)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cities/1/pointsofinterest/99", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("store failure yields 500", func(t *testing.T) {
		r, svc := setupPOIHandlerTest()
		svc.On("DeletePOI", mock.Anything, 1, 11).Return(errors.New("connection reset"))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cities/1/pointsofinterest/11", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to delete point of interest")
	})
}
