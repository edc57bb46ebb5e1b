package city

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Orange-Moose/CityInfoAPI/app/observability/metrics"
	"github.com/Orange-Moose/CityInfoAPI/internal/api"
	"github.com/Orange-Moose/CityInfoAPI/internal/types"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

var _ Repository = (*PostgresCityRepository)(nil)

type Repository interface {
	// GetCities returns every city ordered by name ascending. Unpaginated.
	GetCities(ctx context.Context) ([]types.City, error)
	// GetCitiesPage returns one page of the filtered listing ordered by id
	// ascending, plus metadata computed over the unpaginated predicate.
	GetCitiesPage(ctx context.Context, filter types.CityFilter, pageNumber, pageSize int) ([]types.City, *types.PaginationMetadata, error)
	// GetCity loads one city; the POI relation only when includePOIs is set.
	GetCity(ctx context.Context, id int, includePOIs bool) (*types.City, error)
	CityExists(ctx context.Context, id int) (bool, error)
	// CityNameMatchesID reports whether the city with exactly that id has
	// exactly that name. Authorization check, not a search.
	CityNameMatchesID(ctx context.Context, name string, id int) (bool, error)
}

type PostgresCityRepository struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewCityRepository(pgpool api.DBPool, logger *slog.Logger) *PostgresCityRepository {
	return &PostgresCityRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresCityRepository) GetCities(ctx context.Context) ([]types.City, error) {
	query := `
        SELECT id, name, description
        FROM cities
        ORDER BY name ASC
    `
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	return scanCities(rows)
}

func (r *PostgresCityRepository) GetCitiesPage(ctx context.Context, filter types.CityFilter, pageNumber, pageSize int) ([]types.City, *types.PaginationMetadata, error) {
	// Degenerate page inputs are clamped rather than rejected; a page past
	// the end still comes back as an empty page, not an error.
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	start := time.Now()
	defer func() {
		metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(),
			otelmetric.WithAttributes(attribute.String("query", "cities_page")))
	}()

	var conds []string
	var args []any

	// Exact name equality, case-insensitive at the query layer. Case folding
	// belongs here, not in caller-side input mangling.
	if filter.Name != "" {
		args = append(args, strings.TrimSpace(filter.Name))
		conds = append(conds, fmt.Sprintf("lower(name) = lower($%d)", len(args)))
	}

	// Substring search over name or description, store-default collation.
	if filter.Search != "" {
		args = append(args, "%"+strings.TrimSpace(filter.Search)+"%")
		conds = append(conds, fmt.Sprintf("(name LIKE $%d OR description LIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var totalItemCount int
	countQuery := "SELECT count(*) FROM cities" + where
	if err := r.pgpool.QueryRow(ctx, countQuery, args...).Scan(&totalItemCount); err != nil {
		return nil, nil, fmt.Errorf("failed to count cities: %w", err)
	}

	// Pages are ordered by id, not by name; id order keeps page boundaries
	// stable while rows are renamed.
	pageQuery := fmt.Sprintf(
		"SELECT id, name, description FROM cities%s ORDER BY id ASC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2,
	)
	args = append(args, pageSize, pageSize*(pageNumber-1))

	rows, err := r.pgpool.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query cities page: %w", err)
	}
	defer rows.Close()

	cities, err := scanCities(rows)
	if err != nil {
		return nil, nil, err
	}

	metadata := types.NewPaginationMetadata(totalItemCount, pageSize, pageNumber)
	return cities, &metadata, nil
}

func (r *PostgresCityRepository) GetCity(ctx context.Context, id int, includePOIs bool) (*types.City, error) {
	query := `
        SELECT id, name, description
        FROM cities
        WHERE id = $1
    `
	var c types.City
	if err := r.pgpool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query city: %w", err)
	}

	if !includePOIs {
		return &c, nil
	}

	poiQuery := `
        SELECT id, name, description, city_id
        FROM points_of_interest
        WHERE city_id = $1
    `
	rows, err := r.pgpool.Query(ctx, poiQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query points of interest for city: %w", err)
	}
	defer rows.Close()

	// Non-nil even when empty, so callers can tell "loaded, none" apart
	// from "not loaded".
	pois := make([]types.PointOfInterest, 0)
	for rows.Next() {
		var p types.PointOfInterest
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CityID); err != nil {
			return nil, fmt.Errorf("failed to scan point of interest: %w", err)
		}
		pois = append(pois, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading points of interest rows: %w", err)
	}
	c.PointsOfInterest = pois

	return &c, nil
}

func (r *PostgresCityRepository) CityExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.pgpool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM cities WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check city existence: %w", err)
	}
	return exists, nil
}

func (r *PostgresCityRepository) CityNameMatchesID(ctx context.Context, name string, id int) (bool, error) {
	var matches bool
	err := r.pgpool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM cities WHERE id = $1 AND name = $2)", id, name).Scan(&matches)
	if err != nil {
		return false, fmt.Errorf("failed to check city name match: %w", err)
	}
	return matches, nil
}

func scanCities(rows pgx.Rows) ([]types.City, error) {
	cities := make([]types.City, 0)
	for rows.Next() {
		var c types.City
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading city rows: %w", err)
	}
	return cities, nil
}
