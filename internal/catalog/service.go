// Package catalog reads package listings and details from the backend,
// keeping the previously shown list around when a refresh fails.
package catalog

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"somgil/internal/models"
)

// API is the slice of the backend client the catalog needs.
type API interface {
	ListPackages(ctx context.Context, packageType models.PackageType) ([]models.Package, error)
	RecommendedPackages(ctx context.Context) ([]models.Package, error)
	PackageDetail(ctx context.Context, packageID int64) (*models.Package, error)
}

// Listing is the result of a list fetch. Empty marks a valid zero-item
// response ("no packages of this type"); Stale marks data carried over from
// an earlier successful fetch after the current one failed.
type Listing struct {
	Packages []models.Package
	Empty    bool
	Stale    bool
}

// Service is the catalog read path.
type Service struct {
	api    API
	logger zerolog.Logger

	mu          sync.Mutex
	lastByType  map[models.PackageType][]models.Package
	recommended []models.Package
	hasRecent   bool
}

// NewService creates a catalog service over the backend client.
func NewService(api API, logger zerolog.Logger) *Service {
	return &Service{
		api:        api,
		logger:     logger.With().Str("component", "catalog").Logger(),
		lastByType: make(map[models.PackageType][]models.Package),
	}
}

// ListByType fetches packages of one type sorted by review rating. A fetch
// failure returns the previous list (if any) marked Stale alongside the
// error, so the screen can show a banner without dropping valid data.
func (s *Service) ListByType(ctx context.Context, packageType models.PackageType) (Listing, error) {
	packages, err := s.api.ListPackages(ctx, packageType)
	if err != nil {
		s.mu.Lock()
		previous, ok := s.lastByType[packageType]
		s.mu.Unlock()
		if ok {
			s.logger.Warn().Err(err).Str("type", string(packageType)).Msg("refresh failed, keeping previous list")
			return Listing{Packages: previous, Empty: len(previous) == 0, Stale: true}, err
		}
		return Listing{}, err
	}

	s.mu.Lock()
	s.lastByType[packageType] = packages
	s.mu.Unlock()

	return Listing{Packages: packages, Empty: len(packages) == 0}, nil
}

// Recommended fetches the home-feed recommendations with the same
// stale-on-failure behavior as ListByType.
func (s *Service) Recommended(ctx context.Context) (Listing, error) {
	packages, err := s.api.RecommendedPackages(ctx)
	if err != nil {
		s.mu.Lock()
		previous, ok := s.recommended, s.hasRecent
		s.mu.Unlock()
		if ok {
			s.logger.Warn().Err(err).Msg("recommended refresh failed, keeping previous list")
			return Listing{Packages: previous, Empty: len(previous) == 0, Stale: true}, err
		}
		return Listing{}, err
	}

	s.mu.Lock()
	s.recommended = packages
	s.hasRecent = true
	s.mu.Unlock()

	return Listing{Packages: packages, Empty: len(packages) == 0}, nil
}

// Detail fetches a single package record.
func (s *Service) Detail(ctx context.Context, packageID int64) (*models.Package, error) {
	return s.api.PackageDetail(ctx, packageID)
}
