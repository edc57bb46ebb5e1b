package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/Orange-Moose/CityInfoAPI/internal/api/auth"
	"github.com/Orange-Moose/CityInfoAPI/internal/api/city"
	"github.com/Orange-Moose/CityInfoAPI/internal/api/poi"
)

// Config contains the dependencies needed for router setup.
type Config struct {
	AuthHandler *auth.AuthHandler
	CityHandler *city.Handler
	POIHandler  *poi.POIHandler

	AuthenticateMiddleware    func(http.Handler) http.Handler
	RequireSameCityMiddleware func(http.Handler) http.Handler
}

// SetupRouter wires the API routes. Server-wide middleware (request IDs,
// logging, recoverer) is applied before mounting this router in main.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Pagination", "Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Public: token issuance
		r.Post("/auth/authenticate", cfg.AuthHandler.Authenticate)

		// Everything under /cities requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Get("/cities", cfg.CityHandler.GetCities)
			r.Get("/cities/{cityID}", cfg.CityHandler.GetCity)

			r.Route("/cities/{cityID}/pointsofinterest", func(r chi.Router) {
				// Listing is additionally restricted to the caller's home city
				r.With(cfg.RequireSameCityMiddleware).Get("/", cfg.POIHandler.GetPOIs)

				r.Post("/", cfg.POIHandler.CreatePOI)
				r.Get("/{poiID}", cfg.POIHandler.GetPOI)
				r.Put("/{poiID}", cfg.POIHandler.UpdatePOI)
				r.Patch("/{poiID}", cfg.POIHandler.PatchPOI)
				r.Delete("/{poiID}", cfg.POIHandler.DeletePOI)
			})
		})
	})

	return r
}
