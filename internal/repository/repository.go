package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"moviedb/internal/models"
)

// Repository handles database operations for one entity type.
type Repository[T any] struct {
	db     *sql.DB
	schema Schema[T]
	cols   string
}

// New creates a Repository for the given schema.
func New[T any](db *sql.DB, schema Schema[T]) *Repository[T] {
	return &Repository[T]{
		db:     db,
		schema: schema,
		cols:   strings.Join(schema.Fields.Names(), ", "),
	}
}

// NewMovieRepository creates the movie repository.
func NewMovieRepository(db *sql.DB) *Repository[models.Movie] {
	return New(db, MovieSchema)
}

// NewDirectorRepository creates the director repository.
func NewDirectorRepository(db *sql.DB) *Repository[models.Director] {
	return New(db, DirectorSchema)
}

// NewGenreRepository creates the genre repository.
func NewGenreRepository(db *sql.DB) *Repository[models.Genre] {
	return New(db, GenreSchema)
}

// Table returns the backing table name.
func (r *Repository[T]) Table() string {
	return r.schema.Table
}

// Fields returns the writable field schema.
func (r *Repository[T]) Fields() models.Fields {
	return r.schema.Fields
}

// Create inserts rec and returns the id assigned by the store.
func (r *Repository[T]) Create(ctx context.Context, rec *T) (int, error) {
	values := r.schema.Values(rec)
	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		r.schema.Table, r.cols, strings.Join(placeholders, ", "),
	)

	var id int
	if err := r.db.QueryRowContext(ctx, query, values...).Scan(&id); err != nil {
		return 0, r.writeErr("insert", err)
	}
	return id, nil
}

// Get returns the row with the given id, or models.ErrNotFound.
func (r *Repository[T]) Get(ctx context.Context, id int) (*T, error) {
	query := fmt.Sprintf("SELECT id, %s FROM %s WHERE id = $1", r.cols, r.schema.Table)

	var rec T
	err := r.db.QueryRowContext(ctx, query, id).Scan(r.schema.Dest(&rec)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %d: %w", r.schema.Table, id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.schema.Table, err)
	}
	return &rec, nil
}

// List returns every row matching f, ordered by id.
func (r *Repository[T]) List(ctx context.Context, f Filter) ([]T, error) {
	if err := r.checkFilter(f); err != nil {
		return nil, err
	}
	where, args := f.Where(1)
	query := fmt.Sprintf("SELECT id, %s FROM %s %s ORDER BY id", r.cols, r.schema.Table, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.schema.Table, err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		var rec T
		if err := rows.Scan(r.schema.Dest(&rec)...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.schema.Table, err)
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

// Count returns the number of rows matching f.
func (r *Repository[T]) Count(ctx context.Context, f Filter) (int, error) {
	if err := r.checkFilter(f); err != nil {
		return 0, err
	}
	where, args := f.Where(1)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", r.schema.Table, where)

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.schema.Table, err)
	}
	return n, nil
}

// Exists reports whether a row with the given id exists.
func (r *Repository[T]) Exists(ctx context.Context, id int) (bool, error) {
	n, err := r.Count(ctx, Eq("id", id))
	return n > 0, err
}

// Update writes only the columns present in p. An empty patch only checks
// that the row exists.
func (r *Repository[T]) Update(ctx context.Context, id int, p models.Patch) error {
	sets := make([]string, 0, len(p))
	args := make([]any, 0, len(p)+1)
	argIdx := 1

	for _, f := range r.schema.Fields {
		v, ok := p[f.Name]
		if !ok {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", f.Name, argIdx))
		args = append(args, v)
		argIdx++
	}
	if len(sets) != len(p) {
		for name := range p {
			if _, ok := r.schema.Fields.Lookup(name); !ok {
				return models.Invalid(name, "unknown field")
			}
		}
	}

	if len(sets) == 0 {
		ok, err := r.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s %d: %w", r.schema.Table, id, models.ErrNotFound)
		}
		return nil
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", r.schema.Table, strings.Join(sets, ", "), argIdx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return r.writeErr("update", err)
	}
	return r.affected(res, id)
}

// Delete removes the row with the given id.
func (r *Repository[T]) Delete(ctx context.Context, id int) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.schema.Table)

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%s %d: %w", r.schema.Table, id, models.ErrInUse)
		}
		return fmt.Errorf("delete %s: %w", r.schema.Table, err)
	}
	return r.affected(res, id)
}

func (r *Repository[T]) affected(res sql.Result, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", r.schema.Table, id, models.ErrNotFound)
	}
	return nil
}

// checkFilter keeps filter columns to known names since they are
// interpolated into SQL.
func (r *Repository[T]) checkFilter(f Filter) error {
	for _, c := range f {
		if c.Column == "id" {
			continue
		}
		if _, ok := r.schema.Fields.Lookup(c.Column); !ok {
			return fmt.Errorf("filter %s on unknown column %q", r.schema.Table, c.Column)
		}
	}
	return nil
}

func (r *Repository[T]) writeErr(op string, err error) error {
	if isForeignKeyViolation(err) {
		return &models.ValidationError{Msg: "referenced director or genre does not exist"}
	}
	return fmt.Errorf("%s %s: %w", op, r.schema.Table, err)
}
