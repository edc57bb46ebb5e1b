package city

import (
	"context"
	"log/slog"

	"github.com/Orange-Moose/CityInfoAPI/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetCitiesPage(ctx context.Context, filter types.CityFilter, pageNumber, pageSize int) ([]types.City, *types.PaginationMetadata, error)
	GetCity(ctx context.Context, id int, includePOIs bool) (*types.City, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

// GetCitiesPage passes the page size through untouched; clamping is the
// handler's job.
func (s *ServiceImpl) GetCitiesPage(ctx context.Context, filter types.CityFilter, pageNumber, pageSize int) ([]types.City, *types.PaginationMetadata, error) {
	return s.repo.GetCitiesPage(ctx, filter, pageNumber, pageSize)
}

func (s *ServiceImpl) GetCity(ctx context.Context, id int, includePOIs bool) (*types.City, error) {
	return s.repo.GetCity(ctx, id, includePOIs)
}
