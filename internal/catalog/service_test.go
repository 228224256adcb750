package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"somgil/internal/models"
)

type fakeAPI struct {
	packages    []models.Package
	recommended []models.Package
	detail      *models.Package
	err         error
}

func (f *fakeAPI) ListPackages(_ context.Context, _ models.PackageType) ([]models.Package, error) {
	return f.packages, f.err
}

func (f *fakeAPI) RecommendedPackages(_ context.Context) ([]models.Package, error) {
	return f.recommended, f.err
}

func (f *fakeAPI) PackageDetail(_ context.Context, _ int64) (*models.Package, error) {
	return f.detail, f.err
}

func TestListByTypeEmptyIsNotAnError(t *testing.T) {
	api := &fakeAPI{packages: []models.Package{}}
	service := NewService(api, zerolog.Nop())

	listing, err := service.ListByType(context.Background(), models.TypeShip)
	require.NoError(t, err)
	assert.True(t, listing.Empty)
	assert.False(t, listing.Stale)
}

func TestListByTypeKeepsPreviousListOnFailure(t *testing.T) {
	api := &fakeAPI{packages: []models.Package{{ID: 1, Name: "제주의 보석"}}}
	service := NewService(api, zerolog.Nop())

	listing, err := service.ListByType(context.Background(), models.TypeHealing)
	require.NoError(t, err)
	require.Len(t, listing.Packages, 1)

	api.err = errors.New("http 500")
	listing, err = service.ListByType(context.Background(), models.TypeHealing)
	assert.Error(t, err, "the failure is still reported for the banner")
	assert.True(t, listing.Stale)
	require.Len(t, listing.Packages, 1, "previously shown list stays in place")
	assert.Equal(t, "제주의 보석", listing.Packages[0].Name)
}

func TestListByTypeFailureWithoutPreviousData(t *testing.T) {
	api := &fakeAPI{err: errors.New("http 500")}
	service := NewService(api, zerolog.Nop())

	listing, err := service.ListByType(context.Background(), models.TypeCouple)
	assert.Error(t, err)
	assert.Empty(t, listing.Packages)
	assert.False(t, listing.Stale)
}

func TestListByTypeStaleIsPerType(t *testing.T) {
	api := &fakeAPI{packages: []models.Package{{ID: 1}}}
	service := NewService(api, zerolog.Nop())

	_, err := service.ListByType(context.Background(), models.TypeHealing)
	require.NoError(t, err)

	// A different type never saw a successful fetch, so there is nothing
	// to fall back to.
	api.err = errors.New("http 500")
	listing, err := service.ListByType(context.Background(), models.TypeRetro)
	assert.Error(t, err)
	assert.Empty(t, listing.Packages)
}

func TestRecommendedKeepsPreviousListOnFailure(t *testing.T) {
	api := &fakeAPI{recommended: []models.Package{{ID: 7, Name: "속초의 크리스마스"}}}
	service := NewService(api, zerolog.Nop())

	_, err := service.Recommended(context.Background())
	require.NoError(t, err)

	api.err = errors.New("timeout")
	listing, err := service.Recommended(context.Background())
	assert.Error(t, err)
	assert.True(t, listing.Stale)
	require.Len(t, listing.Packages, 1)
}

func TestDetail(t *testing.T) {
	api := &fakeAPI{detail: &models.Package{ID: 42, Name: "제주의 보석", Price: 1_000_000}}
	service := NewService(api, zerolog.Nop())

	pkg, err := service.Detail(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), pkg.Price)
}
