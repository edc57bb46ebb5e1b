package poi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Orange-Moose/CityInfoAPI/app/observability/metrics"
	"github.com/Orange-Moose/CityInfoAPI/internal/api"
	"github.com/Orange-Moose/CityInfoAPI/internal/types"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

var _ Repository = (*PostgresPOIRepository)(nil)

type Repository interface {
	// GetPOIsForCity returns the points of interest owned by a city, in
	// store order.
	GetPOIsForCity(ctx context.Context, cityID int) ([]types.PointOfInterest, error)
	// GetPOIForCity looks a point of interest up scoped by BOTH ids, so a
	// POI belonging to another city never leaks through.
	GetPOIForCity(ctx context.Context, cityID, poiID int) (*types.PointOfInterest, error)
	// BeginWork opens a staged mutation scope. Staged changes become durable
	// and visible only on Commit, atomically.
	BeginWork(ctx context.Context) (Work, error)
}

// Work is a stage-then-commit mutation scope backed by one transaction.
// Staging fails fast: a missing parent or target surfaces ErrNotFound at
// stage time instead of silently doing nothing.
type Work interface {
	// StageAddPOI attaches a new point of interest to the city, assigning
	// its server-generated id and stored description on success.
	StageAddPOI(ctx context.Context, cityID int, p *types.PointOfInterest) error
	// StageUpdatePOI fully replaces name and description of the POI
	// identified by p.ID within p.CityID.
	StageUpdatePOI(ctx context.Context, p *types.PointOfInterest) error
	StageDeletePOI(ctx context.Context, cityID, poiID int) error
	// Commit makes all staged changes durable and returns the number of
	// rows changed across the whole scope.
	Commit(ctx context.Context) (int64, error)
	// Rollback discards staged changes; it is a no-op after Commit and safe
	// to defer unconditionally.
	Rollback(ctx context.Context) error
}

type PostgresPOIRepository struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPOIRepository(pgpool api.DBPool, logger *slog.Logger) *PostgresPOIRepository {
	return &PostgresPOIRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresPOIRepository) GetPOIsForCity(ctx context.Context, cityID int) ([]types.PointOfInterest, error) {
	start := time.Now()
	defer func() {
		metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(),
			otelmetric.WithAttributes(attribute.String("query", "pois_for_city")))
	}()

	query := `
        SELECT id, name, description, city_id
        FROM points_of_interest
        WHERE city_id = $1
    `
	rows, err := r.pgpool.Query(ctx, query, cityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query points of interest: %w", err)
	}
	defer rows.Close()

	pois := make([]types.PointOfInterest, 0)
	for rows.Next() {
		var p types.PointOfInterest
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CityID); err != nil {
			return nil, fmt.Errorf("failed to scan point of interest: %w", err)
		}
		pois = append(pois, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading point of interest rows: %w", err)
	}
	return pois, nil
}

func (r *PostgresPOIRepository) GetPOIForCity(ctx context.Context, cityID, poiID int) (*types.PointOfInterest, error) {
	query := `
        SELECT id, name, description, city_id
        FROM points_of_interest
        WHERE city_id = $1 AND id = $2
    `
	var p types.PointOfInterest
	err := r.pgpool.QueryRow(ctx, query, cityID, poiID).Scan(&p.ID, &p.Name, &p.Description, &p.CityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query point of interest: %w", err)
	}
	return &p, nil
}

func (r *PostgresPOIRepository) BeginWork(ctx context.Context) (Work, error) {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	return &pgxWork{tx: tx}, nil
}

type pgxWork struct {
	tx     pgx.Tx
	staged int64
}

func (w *pgxWork) StageAddPOI(ctx context.Context, cityID int, p *types.PointOfInterest) error {
	// Fail fast on a missing parent instead of staging nothing.
	var exists bool
	if err := w.tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM cities WHERE id = $1)", cityID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check parent city: %w", err)
	}
	if !exists {
		return types.ErrNotFound
	}

	query := `
        INSERT INTO points_of_interest (name, description, city_id)
        VALUES ($1, COALESCE(NULLIF($2, ''), 'Description not provided'), $3)
        RETURNING id, description
    `
	if err := w.tx.QueryRow(ctx, query, p.Name, p.Description, cityID).Scan(&p.ID, &p.Description); err != nil {
		return fmt.Errorf("failed to insert point of interest: %w", err)
	}
	p.CityID = cityID
	w.staged++
	return nil
}

func (w *pgxWork) StageUpdatePOI(ctx context.Context, p *types.PointOfInterest) error {
	query := `
        UPDATE points_of_interest
        SET name = $1, description = $2
        WHERE city_id = $3 AND id = $4
    `
	tag, err := w.tx.Exec(ctx, query, p.Name, p.Description, p.CityID, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update point of interest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	w.staged += tag.RowsAffected()
	return nil
}

func (w *pgxWork) StageDeletePOI(ctx context.Context, cityID, poiID int) error {
	tag, err := w.tx.Exec(ctx,
		"DELETE FROM points_of_interest WHERE city_id = $1 AND id = $2", cityID, poiID)
	if err != nil {
		return fmt.Errorf("failed to delete point of interest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	w.staged += tag.RowsAffected()
	return nil
}

func (w *pgxWork) Commit(ctx context.Context) (int64, error) {
	if err := w.tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit staged changes: %w", err)
	}
	return w.staged, nil
}

func (w *pgxWork) Rollback(ctx context.Context) error {
	err := w.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
