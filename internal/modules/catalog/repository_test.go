package catalog

import (
	"context"
	"errors"
	"testing"

	"studiofinder/internal/database"
	"studiofinder/internal/discovery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.Connect(":memory:", nil)
	require.NoError(t, err)
	repo := NewRepository(db)
	require.NoError(t, repo.AutoMigrate())
	return repo
}

func newSeededRepository(t *testing.T) *Repository {
	t.Helper()
	repo := newTestRepository(t)
	require.NoError(t, NewService(repo).Import(context.Background(), SampleStudios()))
	return repo
}

func studioIDs(studios []*discovery.Studio) []string {
	out := make([]string, len(studios))
	for i, s := range studios {
		out[i] = s.ID
	}
	return out
}

func TestRepository_FetchStudiosKeepsCatalogOrder(t *testing.T) {
	repo := newSeededRepository(t)

	studios, err := repo.FetchStudios(context.Background(), discovery.QueryParams{})

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7", "8"}, studioIDs(studios))
	assert.Equal(t, SampleStudios()[0], studios[0])
}

func TestRepository_FetchStudiosByLocation(t *testing.T) {
	repo := newSeededRepository(t)
	ctx := context.Background()

	studios, err := repo.FetchStudios(ctx, discovery.QueryParams{Location: "brooklyn"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, studioIDs(studios))

	studios, err = repo.FetchStudios(ctx, discovery.QueryParams{Location: "NY", Date: discovery.ParseDate("2026-11-02")})
	require.NoError(t, err)
	assert.Len(t, studios, 8, "the date does not narrow the catalog")

	studios, err = repo.FetchStudios(ctx, discovery.QueryParams{Location: "Boston"})
	require.NoError(t, err)
	assert.Empty(t, studios)
}

func TestRepository_GetAllPaginates(t *testing.T) {
	repo := newSeededRepository(t)

	rows, total, err := repo.GetAll(context.Background(), StudioFilters{Limit: 3, Offset: 3})

	require.NoError(t, err)
	assert.Equal(t, int64(8), total)
	require.Len(t, rows, 3)
	assert.Equal(t, "4", rows[0].ID)
	assert.Equal(t, "6", rows[2].ID)
}

func TestRepository_GetByID(t *testing.T) {
	repo := newSeededRepository(t)

	row, err := repo.GetByID(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "The Loft", row.Name)
	assert.Equal(t, []string{"Neve Console", "U47", "PMC Monitors", "Pro Tools HDX"}, row.ToDiscovery().Equipment)

	_, err = repo.GetByID(context.Background(), "404")
	assert.ErrorIs(t, err, ErrStudioNotFound)
}

func TestRepository_UpsertReplacesEquipment(t *testing.T) {
	repo := newSeededRepository(t)
	ctx := context.Background()

	updated := SampleStudios()[2]
	updated.PricePerHour = 42
	updated.Equipment = []string{"Logic Pro", " ", "Tape Machine"}
	require.NoError(t, repo.Upsert(ctx, FromDiscovery(updated, 2)))

	row, err := repo.GetByID(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, 42.0, row.PricePerHour)
	assert.Equal(t, []string{"Logic Pro", "Tape Machine"}, row.ToDiscovery().Equipment)

	_, total, err := repo.GetAll(ctx, StudioFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)
}

func TestRepository_DeleteHidesStudio(t *testing.T) {
	repo := newSeededRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, "2"))
	assert.ErrorIs(t, repo.Delete(ctx, "2"), ErrStudioNotFound)

	studios, err := repo.FetchStudios(ctx, discovery.QueryParams{})
	require.NoError(t, err)
	assert.NotContains(t, studioIDs(studios), "2")
}

func TestRepository_FetchStudiosClassifiesFailures(t *testing.T) {
	repo := newSeededRepository(t)
	sqlDB, err := repo.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = repo.FetchStudios(context.Background(), discovery.QueryParams{})

	var fe *discovery.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, discovery.FetchUnavailable, fe.Kind)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestStudio_ToDiscoveryDefaultsImages(t *testing.T) {
	s := (&Studio{ID: "x", Longitude: 1, Latitude: 2}).ToDiscovery()

	assert.NotNil(t, s.Images)
	assert.NotNil(t, s.Equipment)
	assert.Equal(t, discovery.Coordinates{Lng: 1, Lat: 2}, s.Coordinates)
}
