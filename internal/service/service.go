package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"moviedb/internal/models"
	"moviedb/internal/repository"
)

// Store is the persistence contract a Service needs. *repository.Repository
// implements it.
type Store[T any] interface {
	Table() string
	Fields() models.Fields
	Create(ctx context.Context, rec *T) (int, error)
	Get(ctx context.Context, id int) (*T, error)
	List(ctx context.Context, f repository.Filter) ([]T, error)
	Count(ctx context.Context, f repository.Filter) (int, error)
	Exists(ctx context.Context, id int) (bool, error)
	Update(ctx context.Context, id int, p models.Patch) error
	Delete(ctx context.Context, id int) error
}

// Record is satisfied by pointers to entities that can absorb a Patch.
type Record[T any] interface {
	*T
	Apply(p models.Patch)
}

// Service handles business logic shared by all entity types.
type Service[T any, PT Record[T]] struct {
	store        Store[T]
	filters      []string
	beforeWrite  func(ctx context.Context, p models.Patch) error
	beforeDelete func(ctx context.Context, id int) error
}

type (
	MovieService    = Service[models.Movie, *models.Movie]
	DirectorService = Service[models.Director, *models.Director]
	GenreService    = Service[models.Genre, *models.Genre]
)

// NewMovieService creates the movie service. Director and genre references
// are checked against the given stores before every write.
func NewMovieService(movies Store[models.Movie], directors Store[models.Director], genres Store[models.Genre]) *MovieService {
	v := NewReferenceValidator(directors, genres)
	return &MovieService{
		store:       movies,
		filters:     repository.MovieFilters,
		beforeWrite: v.Validate,
	}
}

// NewDirectorService creates the director service. Directors still
// referenced by movies cannot be deleted.
func NewDirectorService(directors Store[models.Director], movies Store[models.Movie]) *DirectorService {
	return &DirectorService{
		store:        directors,
		beforeDelete: rejectReferenced(movies, models.FieldDirectorID),
	}
}

// NewGenreService creates the genre service. Genres still referenced by
// movies cannot be deleted.
func NewGenreService(genres Store[models.Genre], movies Store[models.Movie]) *GenreService {
	return &GenreService{
		store:        genres,
		beforeDelete: rejectReferenced(movies, models.FieldGenreID),
	}
}

// Fields returns the writable field schema of the entity.
func (s *Service[T, PT]) Fields() models.Fields {
	return s.store.Fields()
}

// List returns records matching the raw filter params. Params the entity
// cannot be filtered by are ignored.
func (s *Service[T, PT]) List(ctx context.Context, params map[string]string) ([]T, error) {
	f, err := repository.ParseFilter(s.store.Fields(), s.filters, params)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, f)
}

// Get returns a record by id.
func (s *Service[T, PT]) Get(ctx context.Context, id int) (*T, error) {
	return s.store.Get(ctx, id)
}

// Create validates p as a complete record and persists it.
func (s *Service[T, PT]) Create(ctx context.Context, p models.Patch) (int, error) {
	if err := s.store.Fields().Validate(p, false); err != nil {
		return 0, err
	}
	if s.beforeWrite != nil {
		if err := s.beforeWrite(ctx, p); err != nil {
			return 0, err
		}
	}

	var rec T
	PT(&rec).Apply(p)

	id, err := s.store.Create(ctx, &rec)
	if err != nil {
		return 0, err
	}
	slog.Debug("record created", "table", s.store.Table(), "id", id)
	return id, nil
}

// Update applies the fields present in p to the record.
func (s *Service[T, PT]) Update(ctx context.Context, id int, p models.Patch) error {
	if err := s.store.Fields().Validate(p, true); err != nil {
		return err
	}
	if s.beforeWrite != nil {
		if err := s.beforeWrite(ctx, p); err != nil {
			return err
		}
	}
	if err := s.store.Update(ctx, id, p); err != nil {
		return err
	}
	slog.Debug("record updated", "table", s.store.Table(), "id", id, "fields", len(p))
	return nil
}

// Delete removes the record.
func (s *Service[T, PT]) Delete(ctx context.Context, id int) error {
	if s.beforeDelete != nil {
		if err := s.beforeDelete(ctx, id); err != nil {
			return err
		}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	slog.Debug("record deleted", "table", s.store.Table(), "id", id)
	return nil
}

// MovieLister lists movies by raw filter params.
type MovieLister interface {
	List(ctx context.Context, params map[string]string) ([]models.Movie, error)
}

// Movies returns the movies whose field references the record with the
// given id. The record itself must exist.
func (s *Service[T, PT]) Movies(ctx context.Context, id int, movies MovieLister, field string) ([]models.Movie, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	return movies.List(ctx, map[string]string{field: strconv.Itoa(id)})
}

func rejectReferenced(movies Store[models.Movie], field string) func(context.Context, int) error {
	return func(ctx context.Context, id int) error {
		n, err := movies.Count(ctx, repository.Eq(field, id))
		if err != nil {
			return fmt.Errorf("count referencing movies: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%d movies reference %s %d: %w", n, field, id, models.ErrInUse)
		}
		return nil
	}
}
