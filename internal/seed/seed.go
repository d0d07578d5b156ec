// Package seed loads catalogue fixtures from a TOML file.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/BurntSushi/toml"

	"moviedb/internal/models"
)

// Fixture is the on-disk seed format. Movies refer to directors and genres
// by name.
type Fixture struct {
	Directors []NamedRow   `toml:"directors"`
	Genres    []NamedRow   `toml:"genres"`
	Movies    []MovieEntry `toml:"movies"`
}

// NamedRow is a director or genre entry.
type NamedRow struct {
	Name string `toml:"name"`
}

// MovieEntry is a movie entry. Director and Genre are optional names.
type MovieEntry struct {
	Title       string  `toml:"title"`
	Description string  `toml:"description"`
	Trailer     string  `toml:"trailer"`
	Year        int     `toml:"year"`
	Rating      float64 `toml:"rating"`
	Director    string  `toml:"director"`
	Genre       string  `toml:"genre"`
}

// Creator persists a record built from a patch.
type Creator interface {
	Create(ctx context.Context, p models.Patch) (int, error)
}

// Targets are the services rows are written through.
type Targets struct {
	Movies    Creator
	Directors Creator
	Genres    Creator
}

// Result counts created rows.
type Result struct {
	Directors int
	Genres    int
	Movies    int
}

// LoadFile reads a fixture file.
func LoadFile(path string) (*Fixture, error) {
	var f Fixture
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &f, nil
}

// Load reads a fixture from r.
func Load(r io.Reader) (*Fixture, error) {
	var f Fixture
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding fixture: %w", err)
	}
	return &f, nil
}

// Apply creates directors and genres first, then movies with their names
// resolved to the new ids. It stops at the first failure; rows created
// before it are kept.
func (f *Fixture) Apply(ctx context.Context, t Targets) (Result, error) {
	var res Result

	directors, err := createNamed(ctx, t.Directors, "director", f.Directors)
	if err != nil {
		return res, err
	}
	res.Directors = len(directors)

	genres, err := createNamed(ctx, t.Genres, "genre", f.Genres)
	if err != nil {
		return res, err
	}
	res.Genres = len(genres)

	for i, m := range f.Movies {
		p := models.Patch{
			"title":       m.Title,
			"description": m.Description,
			"trailer":     m.Trailer,
			"year":        m.Year,
			"rating":      m.Rating,
		}
		if m.Director != "" {
			id, ok := directors[m.Director]
			if !ok {
				return res, fmt.Errorf("movie %q: unknown director %q", m.Title, m.Director)
			}
			p[models.FieldDirectorID] = &id
		}
		if m.Genre != "" {
			id, ok := genres[m.Genre]
			if !ok {
				return res, fmt.Errorf("movie %q: unknown genre %q", m.Title, m.Genre)
			}
			p[models.FieldGenreID] = &id
		}

		if _, err := t.Movies.Create(ctx, p); err != nil {
			return res, fmt.Errorf("movie #%d %q: %w", i+1, m.Title, err)
		}
		res.Movies++
	}

	slog.Info("seed applied", "directors", res.Directors, "genres", res.Genres, "movies", res.Movies)
	return res, nil
}

func createNamed(ctx context.Context, c Creator, kind string, rows []NamedRow) (map[string]int, error) {
	ids := make(map[string]int, len(rows))
	for _, r := range rows {
		if r.Name == "" {
			return nil, fmt.Errorf("%s: name is required", kind)
		}
		if _, dup := ids[r.Name]; dup {
			return nil, fmt.Errorf("%s %q listed twice", kind, r.Name)
		}
		id, err := c.Create(ctx, models.Patch{"name": r.Name})
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", kind, r.Name, err)
		}
		ids[r.Name] = id
	}
	return ids, nil
}
