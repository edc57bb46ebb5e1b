package poi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Orange-Moose/CityInfoAPI/app/observability/metrics"
	"github.com/Orange-Moose/CityInfoAPI/internal/api/city"
	"github.com/Orange-Moose/CityInfoAPI/internal/notify"
	"github.com/Orange-Moose/CityInfoAPI/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetPOIsForCity(ctx context.Context, cityID int) ([]types.PointOfInterest, error)
	GetPOIForCity(ctx context.Context, cityID, poiID int) (*types.PointOfInterest, error)
	CreatePOI(ctx context.Context, cityID int, input types.POIForCreation) (*types.PointOfInterest, error)
	UpdatePOI(ctx context.Context, cityID, poiID int, input types.POIForUpdate) error
	PatchPOI(ctx context.Context, cityID, poiID int, patchDoc []byte) error
	DeletePOI(ctx context.Context, cityID, poiID int) error
}

type ServiceImpl struct {
	logger   *slog.Logger
	repo     Repository
	cityRepo city.Repository
	notifier notify.Notifier
	validate *validator.Validate
}

func NewServiceImpl(repo Repository, cityRepo city.Repository, notifier notify.Notifier, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		repo:     repo,
		cityRepo: cityRepo,
		notifier: notifier,
		validate: validator.New(),
	}
}

func (s *ServiceImpl) GetPOIsForCity(ctx context.Context, cityID int) ([]types.PointOfInterest, error) {
	if err := s.requireCity(ctx, cityID); err != nil {
		return nil, err
	}
	return s.repo.GetPOIsForCity(ctx, cityID)
}

func (s *ServiceImpl) GetPOIForCity(ctx context.Context, cityID, poiID int) (*types.PointOfInterest, error) {
	if err := s.requireCity(ctx, cityID); err != nil {
		return nil, err
	}
	return s.repo.GetPOIForCity(ctx, cityID, poiID)
}

// CreatePOI validates the input, stages the addition under the given city and
// commits. A missing city surfaces ErrNotFound before anything is staged.
func (s *ServiceImpl) CreatePOI(ctx context.Context, cityID int, input types.POIForCreation) (*types.PointOfInterest, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrValidation, err)
	}
	if err := s.requireCity(ctx, cityID); err != nil {
		return nil, err
	}

	work, err := s.repo.BeginWork(ctx)
	if err != nil {
		return nil, err
	}
	defer work.Rollback(ctx)

	p := &types.PointOfInterest{
		Name:        input.Name,
		Description: input.Description,
	}
	if err := work.StageAddPOI(ctx, cityID, p); err != nil {
		return nil, err
	}

	changed, err := work.Commit(ctx)
	if err != nil {
		return nil, err
	}
	metrics.Get().POIMutationsTotal.Add(ctx, changed)

	return p, nil
}

// UpdatePOI fully replaces name and description. Fields absent from the
// request overwrite the stored value with their zero value.
func (s *ServiceImpl) UpdatePOI(ctx context.Context, cityID, poiID int, input types.POIForUpdate) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %s", types.ErrValidation, err)
	}
	if err := s.requireCity(ctx, cityID); err != nil {
		return err
	}

	work, err := s.repo.BeginWork(ctx)
	if err != nil {
		return err
	}
	defer work.Rollback(ctx)

	p := &types.PointOfInterest{
		ID:          poiID,
		CityID:      cityID,
		Name:        input.Name,
		Description: input.Description,
	}
	if err := work.StageUpdatePOI(ctx, p); err != nil {
		return err
	}

	changed, err := work.Commit(ctx)
	if err != nil {
		return err
	}
	metrics.Get().POIMutationsTotal.Add(ctx, changed)
	return nil
}

// PatchPOI applies an RFC 6902 patch document to a detached copy of the
// current state, re-validates the result against the creation constraints and
// only then stages the replacement. A failing patch or failing validation
// leaves the stored row untouched.
func (s *ServiceImpl) PatchPOI(ctx context.Context, cityID, poiID int, patchDoc []byte) error {
	if err := s.requireCity(ctx, cityID); err != nil {
		return err
	}
	current, err := s.repo.GetPOIForCity(ctx, cityID, poiID)
	if err != nil {
		return err
	}

	detached := types.POIForUpdate{
		Name:        current.Name,
		Description: current.Description,
	}
	currentJSON, err := json.Marshal(detached)
	if err != nil {
		return fmt.Errorf("failed to marshal current state: %w", err)
	}

	patch, err := jsonpatch.DecodePatch(patchDoc)
	if err != nil {
		return fmt.Errorf("%w: malformed patch document: %s", types.ErrValidation, err)
	}
	patchedJSON, err := patch.Apply(currentJSON)
	if err != nil {
		return fmt.Errorf("%w: patch could not be applied: %s", types.ErrValidation, err)
	}

	var patched types.POIForUpdate
	if err := json.Unmarshal(patchedJSON, &patched); err != nil {
		return fmt.Errorf("%w: patched document has the wrong shape: %s", types.ErrValidation, err)
	}
	if err := s.validate.Struct(patched); err != nil {
		return fmt.Errorf("%w: %s", types.ErrValidation, err)
	}

	work, err := s.repo.BeginWork(ctx)
	if err != nil {
		return err
	}
	defer work.Rollback(ctx)

	p := &types.PointOfInterest{
		ID:          poiID,
		CityID:      cityID,
		Name:        patched.Name,
		Description: patched.Description,
	}
	if err := work.StageUpdatePOI(ctx, p); err != nil {
		return err
	}

	changed, err := work.Commit(ctx)
	if err != nil {
		return err
	}
	metrics.Get().POIMutationsTotal.Add(ctx, changed)
	return nil
}

// DeletePOI stages the removal, commits, and fires exactly one best-effort
// notification after a successful commit. Notification failure is logged and
// swallowed, never rolled into the request outcome.
func (s *ServiceImpl) DeletePOI(ctx context.Context, cityID, poiID int) error {
	if err := s.requireCity(ctx, cityID); err != nil {
		return err
	}
	p, err := s.repo.GetPOIForCity(ctx, cityID, poiID)
	if err != nil {
		return err
	}

	work, err := s.repo.BeginWork(ctx)
	if err != nil {
		return err
	}
	defer work.Rollback(ctx)

	if err := work.StageDeletePOI(ctx, cityID, poiID); err != nil {
		return err
	}
	changed, err := work.Commit(ctx)
	if err != nil {
		return err
	}
	metrics.Get().POIMutationsTotal.Add(ctx, changed)

	// Outside the transaction and the request lifecycle.
	notifyCtx := context.WithoutCancel(ctx)
	go func() {
		subject := "Point of interest was deleted"
		message := fmt.Sprintf("Point of interest %q was removed from city id %d.", p.Name, cityID)
		if err := s.notifier.Notify(notifyCtx, subject, message); err != nil {
			s.logger.WarnContext(notifyCtx, "Deletion notification failed",
				slog.Any("error", err), slog.Int("poiID", poiID))
		}
	}()

	return nil
}

func (s *ServiceImpl) requireCity(ctx context.Context, cityID int) error {
	exists, err := s.cityRepo.CityExists(ctx, cityID)
	if err != nil {
		return err
	}
	if !exists {
		return types.ErrNotFound
	}
	return nil
}
