package repository_test

import (
	"context"
	"errors"
	"testing"

	"moviedb/internal/models"
	"moviedb/internal/repository"
	"moviedb/internal/testutil"
)

type fixture struct {
	movies    *repository.Repository[models.Movie]
	directors *repository.Repository[models.Director]
	genres    *repository.Repository[models.Genre]
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	return fixture{
		movies:    repository.NewMovieRepository(db),
		directors: repository.NewDirectorRepository(db),
		genres:    repository.NewGenreRepository(db),
	}
}

func mustCreate[T any](t *testing.T, r *repository.Repository[T], rec T) int {
	t.Helper()
	id, err := r.Create(context.Background(), &rec)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return id
}

func mustCount[T any](t *testing.T, r *repository.Repository[T]) int {
	t.Helper()
	n, err := r.Count(context.Background(), nil)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	return n
}

func TestRepository_CreateGet(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()

	dir := mustCreate(t, f.directors, models.Director{Name: "Denis Villeneuve"})
	gen := mustCreate(t, f.genres, models.Genre{Name: "Sci-Fi"})

	in := models.Movie{
		Title:       "Arrival",
		Description: "Linguist meets heptapods",
		Trailer:     "https://example.com/arrival",
		Year:        2016,
		Rating:      7.9,
		DirectorID:  testutil.IntPtr(dir),
		GenreID:     testutil.IntPtr(gen),
	}
	id := mustCreate(t, f.movies, in)

	got, err := f.movies.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != id {
		t.Errorf("ID = %d, want %d", got.ID, id)
	}
	if got.Title != in.Title || got.Description != in.Description || got.Trailer != in.Trailer ||
		got.Year != in.Year || got.Rating != in.Rating {
		t.Errorf("Get() = %+v, want %+v", got, in)
	}
	if got.DirectorID == nil || *got.DirectorID != dir {
		t.Errorf("DirectorID = %v, want %d", got.DirectorID, dir)
	}
	if got.GenreID == nil || *got.GenreID != gen {
		t.Errorf("GenreID = %v, want %d", got.GenreID, gen)
	}
}

func TestRepository_NullReferences(t *testing.T) {
	t.Parallel()
	f := setup(t)

	id := mustCreate(t, f.movies, models.Movie{Title: "Untitled"})
	got, err := f.movies.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.DirectorID != nil || got.GenreID != nil {
		t.Errorf("references = %v/%v, want nil/nil", got.DirectorID, got.GenreID)
	}
}

func TestRepository_GetMissing(t *testing.T) {
	t.Parallel()
	f := setup(t)

	_, err := f.genres.Get(context.Background(), 42)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestRepository_ForeignKeyRejected(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()

	rec := models.Movie{Title: "Ghost", DirectorID: testutil.IntPtr(99)}
	_, err := f.movies.Create(ctx, &rec)
	if !models.IsValidation(err) {
		t.Fatalf("Create() error = %v, want ValidationError", err)
	}
	if n := mustCount(t, f.movies); n != 0 {
		t.Errorf("movie count = %d, want 0", n)
	}

	id := mustCreate(t, f.movies, models.Movie{Title: "Real"})
	err = f.movies.Update(ctx, id, models.Patch{models.FieldGenreID: testutil.IntPtr(77)})
	if !models.IsValidation(err) {
		t.Fatalf("Update() error = %v, want ValidationError", err)
	}
}

func TestRepository_List(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()

	d1 := mustCreate(t, f.directors, models.Director{Name: "Nolan"})
	d2 := mustCreate(t, f.directors, models.Director{Name: "Bigelow"})
	d3 := mustCreate(t, f.directors, models.Director{Name: "Nobody"})
	g1 := mustCreate(t, f.genres, models.Genre{Name: "Thriller"})
	g2 := mustCreate(t, f.genres, models.Genre{Name: "War"})

	m1 := mustCreate(t, f.movies, models.Movie{Title: "Memento", DirectorID: testutil.IntPtr(d1), GenreID: testutil.IntPtr(g1)})
	m2 := mustCreate(t, f.movies, models.Movie{Title: "Dunkirk", DirectorID: testutil.IntPtr(d1), GenreID: testutil.IntPtr(g2)})
	m3 := mustCreate(t, f.movies, models.Movie{Title: "The Hurt Locker", DirectorID: testutil.IntPtr(d2), GenreID: testutil.IntPtr(g2)})
	m4 := mustCreate(t, f.movies, models.Movie{Title: "Orphan"})

	ids := func(ms []models.Movie) []int {
		out := make([]int, len(ms))
		for i, m := range ms {
			out[i] = m.ID
		}
		return out
	}

	tests := []struct {
		name   string
		filter repository.Filter
		want   []int
	}{
		{"no filter returns all", nil, []int{m1, m2, m3, m4}},
		{"by director", repository.Eq(models.FieldDirectorID, d1), []int{m1, m2}},
		{"by genre", repository.Eq(models.FieldGenreID, g2), []int{m2, m3}},
		{"director and genre intersect", repository.Filter{
			{Column: models.FieldDirectorID, Value: d1},
			{Column: models.FieldGenreID, Value: g2},
		}, []int{m2}},
		{"director without movies", repository.Eq(models.FieldDirectorID, d3), []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.movies.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if got == nil {
				t.Fatal("List() = nil, want empty slice")
			}
			gotIDs := ids(got)
			if len(gotIDs) != len(tt.want) {
				t.Fatalf("List() ids = %v, want %v", gotIDs, tt.want)
			}
			for i := range gotIDs {
				if gotIDs[i] != tt.want[i] {
					t.Errorf("List() ids = %v, want %v", gotIDs, tt.want)
					break
				}
			}
		})
	}

	t.Run("unknown column rejected", func(t *testing.T) {
		if _, err := f.movies.List(ctx, repository.Eq("title; DROP TABLE movie", 1)); err == nil {
			t.Fatal("List() error = nil, want error")
		}
	})
}

func TestRepository_PartialUpdate(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()

	dir := mustCreate(t, f.directors, models.Director{Name: "Mann"})
	id := mustCreate(t, f.movies, models.Movie{
		Title: "Heat", Description: "Crime", Trailer: "t", Year: 1995, Rating: 8.0, DirectorID: testutil.IntPtr(dir),
	})

	if err := f.movies.Update(ctx, id, models.Patch{"rating": 8.3}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := f.movies.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Rating != 8.3 {
		t.Errorf("Rating = %v, want 8.3", got.Rating)
	}
	if got.Title != "Heat" || got.Description != "Crime" || got.Trailer != "t" || got.Year != 1995 {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if got.DirectorID == nil || *got.DirectorID != dir {
		t.Errorf("DirectorID = %v, want %d", got.DirectorID, dir)
	}

	t.Run("null clears a reference", func(t *testing.T) {
		if err := f.movies.Update(ctx, id, models.Patch{models.FieldDirectorID: (*int)(nil)}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		got, _ := f.movies.Get(ctx, id)
		if got.DirectorID != nil {
			t.Errorf("DirectorID = %d, want nil", *got.DirectorID)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		err := f.movies.Update(ctx, id+100, models.Patch{"title": "x"})
		if !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("Update() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("empty patch checks existence", func(t *testing.T) {
		if err := f.movies.Update(ctx, id, models.Patch{}); err != nil {
			t.Errorf("Update(existing) error = %v", err)
		}
		if err := f.movies.Update(ctx, id+100, models.Patch{}); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		if err := f.movies.Update(ctx, id, models.Patch{"budget": 1}); !models.IsValidation(err) {
			t.Errorf("Update() error = %v, want ValidationError", err)
		}
	})
}

func TestRepository_Delete(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()

	id := mustCreate(t, f.genres, models.Genre{Name: "Noir"})
	mustCreate(t, f.genres, models.Genre{Name: "Western"})

	if err := f.genres.Delete(ctx, id+100); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Delete(missing) error = %v, want ErrNotFound", err)
	}
	if n := mustCount(t, f.genres); n != 2 {
		t.Errorf("genre count = %d, want 2", n)
	}

	if err := f.genres.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if ok, _ := f.genres.Exists(ctx, id); ok {
		t.Error("Exists() = true after delete")
	}

	t.Run("referenced row is restricted", func(t *testing.T) {
		g := mustCreate(t, f.genres, models.Genre{Name: "Horror"})
		mustCreate(t, f.movies, models.Movie{Title: "Alien", GenreID: testutil.IntPtr(g)})

		if err := f.genres.Delete(ctx, g); !errors.Is(err, models.ErrInUse) {
			t.Fatalf("Delete() error = %v, want ErrInUse", err)
		}
		if ok, _ := f.genres.Exists(ctx, g); !ok {
			t.Error("Exists() = false, want referenced genre kept")
		}
	})

	t.Run("referenced director is restricted", func(t *testing.T) {
		d := mustCreate(t, f.directors, models.Director{Name: "Ridley Scott"})
		mustCreate(t, f.movies, models.Movie{Title: "Blade Runner", DirectorID: testutil.IntPtr(d)})

		if err := f.directors.Delete(ctx, d); !errors.Is(err, models.ErrInUse) {
			t.Fatalf("Delete() error = %v, want ErrInUse", err)
		}
		if ok, _ := f.directors.Exists(ctx, d); !ok {
			t.Error("Exists() = false, want referenced director kept")
		}
	})
}

func TestParseFilter(t *testing.T) {
	t.Parallel()

	t.Run("both criteria in column order", func(t *testing.T) {
		f, err := repository.ParseFilter(models.MovieFields, repository.MovieFilters,
			map[string]string{"genre_id": "3", "director_id": "1", "sort": "title"})
		if err != nil {
			t.Fatalf("ParseFilter() error = %v", err)
		}
		where, args := f.Where(1)
		if want := "WHERE 1=1 AND director_id = $1 AND genre_id = $2"; where != want {
			t.Errorf("Where() = %q, want %q", where, want)
		}
		if len(args) != 2 || args[0] != 1 || args[1] != 3 {
			t.Errorf("args = %v, want [1 3]", args)
		}
	})

	t.Run("absent and empty criteria", func(t *testing.T) {
		f, err := repository.ParseFilter(models.MovieFields, repository.MovieFilters,
			map[string]string{"director_id": ""})
		if err != nil {
			t.Fatalf("ParseFilter() error = %v", err)
		}
		if len(f) != 0 {
			t.Errorf("len(filter) = %d, want 0", len(f))
		}
		if where, _ := f.Where(1); where != "WHERE 1=1" {
			t.Errorf("Where() = %q", where)
		}
	})

	t.Run("non integer id", func(t *testing.T) {
		_, err := repository.ParseFilter(models.MovieFields, repository.MovieFilters,
			map[string]string{"director_id": "abc"})
		var ve *models.ValidationError
		if !errors.As(err, &ve) || ve.Field != "director_id" {
			t.Fatalf("ParseFilter() error = %v, want ValidationError on director_id", err)
		}
	})

	t.Run("id outside integer column range", func(t *testing.T) {
		_, err := repository.ParseFilter(models.MovieFields, repository.MovieFilters,
			map[string]string{"genre_id": "99999999999"})
		var ve *models.ValidationError
		if !errors.As(err, &ve) || ve.Field != "genre_id" {
			t.Fatalf("ParseFilter() error = %v, want ValidationError on genre_id", err)
		}
	})
}
