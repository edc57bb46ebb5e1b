package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Orange-Moose/CityInfoAPI/config"
	"github.com/Orange-Moose/CityInfoAPI/internal/api/auth"
	"github.com/Orange-Moose/CityInfoAPI/internal/api/city"
	"github.com/Orange-Moose/CityInfoAPI/internal/api/poi"
	"github.com/Orange-Moose/CityInfoAPI/internal/router"
)

// benchmarkSuite wires the full router over the in-memory store so the
// benchmarks measure routing, middleware and handler overhead without a
// database round trip.
type benchmarkSuite struct {
	router    chi.Router
	authToken string
}

func setupBenchmarkSuite(b *testing.B) *benchmarkSuite {
	b.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authCfg := config.AuthConfig{
		SecretKey:   "benchmark-secret",
		Issuer:      "cityinfo-api",
		Audience:    "cityinfo-clients",
		TokenExpiry: time.Hour,
	}

	store := newFakeStore()
	notifier := &recordingNotifier{}

	cityService := city.NewServiceImpl(store, logger)
	poiService := poi.NewServiceImpl(store, store, notifier, logger)
	authService := auth.NewServiceImpl(authCfg, logger)

	r := router.SetupRouter(&router.Config{
		AuthHandler:               auth.NewAuthHandler(authService, logger),
		CityHandler:               city.NewCityHandler(cityService, logger),
		POIHandler:                poi.NewPOIHandler(poiService, logger),
		AuthenticateMiddleware:    auth.Authenticate(logger, authCfg),
		RequireSameCityMiddleware: auth.RequireSameCity(logger, store),
	})

	user, err := authService.ValidateCredentials(b.Context(), "bench", "bench")
	if err != nil {
		b.Fatalf("failed to resolve benchmark identity: %v", err)
	}
	token, err := authService.GenerateAccessToken(user)
	if err != nil {
		b.Fatalf("failed to mint benchmark token: %v", err)
	}

	return &benchmarkSuite{router: r, authToken: token}
}

func (s *benchmarkSuite) do(method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+s.authToken)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func BenchmarkAuthenticate(b *testing.B) {
	s := setupBenchmarkSuite(b)
	body := []byte(`{"username":"bench","password":"bench"}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := s.do(http.MethodPost, "/api/v1/auth/authenticate", body)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}

func BenchmarkListCities(b *testing.B) {
	s := setupBenchmarkSuite(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := s.do(http.MethodGet, "/api/v1/cities?pageSize=10", nil)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}

func BenchmarkGetCityWithPOIs(b *testing.B) {
	s := setupBenchmarkSuite(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := s.do(http.MethodGet, "/api/v1/cities/1?includePOIs=true", nil)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}

func BenchmarkGetPOIsForHomeCity(b *testing.B) {
	s := setupBenchmarkSuite(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := s.do(http.MethodGet, "/api/v1/cities/1/pointsofinterest", nil)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
