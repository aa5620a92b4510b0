package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cat-shelter/internal/domain/cats"
)

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) (*CatsRepo, func() *CatsRepo) {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	seed := cats.DefaultSeed(func() time.Time { return fixedNow })
	repo, err := OpenCatStore(context.Background(), db, seed)
	require.NoError(t, err)

	reopen := func() *CatsRepo {
		again, err := OpenCatStore(context.Background(), db, seed)
		require.NoError(t, err)
		return again
	}
	return repo, reopen
}

func TestOpenCatStore_SeedsOnlyOnFirstCreation(t *testing.T) {
	ctx := context.Background()
	repo, reopen := openTestStore(t)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 9)

	again := reopen()
	all, err = again.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 9)
}

func TestInsert_AssignsFreshID(t *testing.T) {
	ctx := context.Background()
	repo, _ := openTestStore(t)

	before, err := repo.ListAll(ctx)
	require.NoError(t, err)

	saved, err := repo.Insert(ctx, cats.Cat{
		Name:       "Luna",
		Gender:     cats.GenderFemale,
		Breed:      "Siamese",
		DOB:        fixedNow.Add(-400 * 24 * time.Hour),
		AdmittedAt: fixedNow,
		ImagePath:  "blob:luna",
	})
	require.NoError(t, err)
	for _, c := range before {
		require.NotEqual(t, c.ID, saved.ID)
	}

	got, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, "Luna", got.Name)
	require.Equal(t, cats.GenderFemale, got.Gender)
	require.True(t, got.DOB.Equal(saved.DOB))

	_, err = repo.Insert(ctx, cats.Cat{ID: saved.ID, Name: "dup"})
	require.Error(t, err)
}

func TestListBornBetween_IsInclusive(t *testing.T) {
	ctx := context.Background()
	repo, _ := openTestStore(t)

	dob := fixedNow.Add(-500 * 24 * time.Hour)
	saved, err := repo.Insert(ctx, cats.Cat{
		Name: "Edge", Gender: cats.GenderMale, Breed: "Bengal",
		DOB: dob, AdmittedAt: fixedNow, ImagePath: "blob:edge",
	})
	require.NoError(t, err)

	got, err := repo.ListByBreedBornBetween(ctx, "Bengal", dob, dob)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, saved.ID, got[0].ID)

	got, err = repo.ListByBreedGenderBornBetween(ctx, "Bengal", cats.GenderFemale, dob, dob)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestListAdmittedBetween_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo, _ := openTestStore(t)

	got, err := repo.ListAdmittedBetween(ctx, fixedNow.Add(-30*24*time.Hour), fixedNow.Add(365*24*time.Hour))
	require.NoError(t, err)
	// del seed ingresaron "hoy" los dos de hasta un año
	require.Len(t, got, 2)

	later, err := repo.Insert(ctx, cats.Cat{
		Name: "Nuevo", Gender: cats.GenderMale, Breed: "Moggie",
		DOB: fixedNow, AdmittedAt: fixedNow.Add(time.Hour), ImagePath: "blob:nuevo",
	})
	require.NoError(t, err)

	got, err = repo.ListAdmittedBetween(ctx, fixedNow.Add(-30*24*time.Hour), fixedNow.Add(365*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, later.ID, got[0].ID)
}

func TestUpdateDelete_UnknownID(t *testing.T) {
	ctx := context.Background()
	repo, _ := openTestStore(t)

	require.ErrorIs(t, repo.Update(ctx, cats.Cat{ID: 999}), ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, 999), ErrNotFound)

	_, err := repo.GetByID(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, 1))
	_, err = repo.GetByID(ctx, 1)
	require.ErrorIs(t, err, ErrNotFound)
}
