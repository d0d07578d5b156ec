package repository

import "moviedb/internal/models"

// Schema binds an entity type to its table. Column names equal the field
// names in Fields.
type Schema[T any] struct {
	Table  string
	Fields models.Fields
	// Values returns the column values of rec in Fields order.
	Values func(rec *T) []any
	// Dest returns scan targets for id followed by Fields order.
	Dest func(rec *T) []any
}

// MovieSchema maps Movie to the movie table.
var MovieSchema = Schema[models.Movie]{
	Table:  "movie",
	Fields: models.MovieFields,
	Values: func(m *models.Movie) []any {
		return []any{m.Title, m.Description, m.Trailer, m.Year, m.Rating, m.GenreID, m.DirectorID}
	},
	Dest: func(m *models.Movie) []any {
		return []any{&m.ID, &m.Title, &m.Description, &m.Trailer, &m.Year, &m.Rating, &m.GenreID, &m.DirectorID}
	},
}

// DirectorSchema maps Director to the director table.
var DirectorSchema = Schema[models.Director]{
	Table:  "director",
	Fields: models.DirectorFields,
	Values: func(d *models.Director) []any { return []any{d.Name} },
	Dest:   func(d *models.Director) []any { return []any{&d.ID, &d.Name} },
}

// GenreSchema maps Genre to the genre table.
var GenreSchema = Schema[models.Genre]{
	Table:  "genre",
	Fields: models.GenreFields,
	Values: func(g *models.Genre) []any { return []any{g.Name} },
	Dest:   func(g *models.Genre) []any { return []any{&g.ID, &g.Name} },
}

// MovieFilters lists the movie columns a listing may be narrowed by.
var MovieFilters = []string{models.FieldDirectorID, models.FieldGenreID}
