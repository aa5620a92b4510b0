package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cat-shelter/internal/domain/cats"
)

func TestNewCatRepo_RunsSeedOnce(t *testing.T) {
	calls := 0
	seed := func(ctx context.Context, repo cats.Repository) error {
		calls++
		_, err := repo.InsertMany(ctx, cats.SeedCats(time.Now()))
		return err
	}

	repo, err := NewCatRepo(context.Background(), seed)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected seed to run once, got %d", calls)
	}

	all, _ := repo.ListAll(context.Background())
	if len(all) != 9 {
		t.Fatalf("expected 9 seeded cats, got %d", len(all))
	}
	for i, c := range all {
		if c.ID != int64(i+1) {
			t.Fatalf("expected ids in order, got %d at %d", c.ID, i)
		}
	}
}

func TestNewCatRepo_SeedErrorIsReturned(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewCatRepo(context.Background(), func(context.Context, cats.Repository) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected seed error, got %v", err)
	}
}

func TestInsert_ConcurrentGetsUniqueIDs(t *testing.T) {
	repo, _ := NewCatRepo(context.Background(), nil)

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := repo.Insert(context.Background(), cats.Cat{Name: "x", Gender: cats.GenderMale, ImagePath: "p"})
			if err != nil {
				t.Errorf("insert: %v", err)
				return
			}
			ids <- c.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d ids, got %d", n, len(seen))
	}
}

func TestInsertMany_RejectsPresetIDWithoutPartialWrite(t *testing.T) {
	repo, _ := NewCatRepo(context.Background(), nil)

	_, err := repo.InsertMany(context.Background(), []cats.Cat{{Name: "a"}, {ID: 7, Name: "b"}})
	if err == nil {
		t.Fatalf("expected error for preset id")
	}
	all, _ := repo.ListAll(context.Background())
	if len(all) != 0 {
		t.Fatalf("expected no partial insert, got %d", len(all))
	}
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	repo, _ := NewCatRepo(ctx, nil)
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	mustInsert := func(c cats.Cat) cats.Cat {
		t.Helper()
		out, err := repo.Insert(ctx, c)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		return out
	}

	a := mustInsert(cats.Cat{Name: "A", Gender: cats.GenderMale, Breed: "Bengal", DOB: now.AddDate(0, 0, -100), AdmittedAt: now.AddDate(0, 0, -2)})
	b := mustInsert(cats.Cat{Name: "B", Gender: cats.GenderFemale, Breed: "Bengal", DOB: now.AddDate(0, 0, -500), AdmittedAt: now})
	mustInsert(cats.Cat{Name: "C", Gender: cats.GenderFemale, Breed: "Persian", DOB: now.AddDate(0, 0, -500), AdmittedAt: now.AddDate(0, 0, -90)})

	got, _ := repo.ListByBreed(ctx, "Bengal")
	if len(got) != 2 {
		t.Fatalf("expected 2 bengal, got %d", len(got))
	}

	got, _ = repo.ListByBreedAndGender(ctx, "Bengal", cats.GenderFemale)
	if len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("expected only B, got %+v", got)
	}

	got, _ = repo.ListByGenderBornBetween(ctx, cats.GenderMale, a.DOB, a.DOB)
	if len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("expected inclusive window to match A, got %+v", got)
	}

	got, _ = repo.ListAdmittedBetween(ctx, now.AddDate(0, 0, -30), now)
	if len(got) != 2 || got[0].ID != b.ID || got[1].ID != a.ID {
		t.Fatalf("expected B then A, got %+v", got)
	}
}

func TestGetUpdateDelete_NotFound(t *testing.T) {
	ctx := context.Background()
	repo, _ := NewCatRepo(ctx, nil)

	if _, err := repo.GetByID(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Update(ctx, cats.Cat{ID: 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
