package models

// Movie represents a movie stored in our database.
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Trailer     string  `json:"trailer"`
	Year        int     `json:"year"`
	Rating      float64 `json:"rating"`
	GenreID     *int    `json:"genre_id"`
	DirectorID  *int    `json:"director_id"`
}

// Director represents a film director.
type Director struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Genre represents a movie genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Reference field names on Movie.
const (
	FieldDirectorID = "director_id"
	FieldGenreID    = "genre_id"
)

// MovieFields is the writable field schema for movies.
var MovieFields = Fields{
	{Name: "title", Kind: KindString, Required: true},
	{Name: "description", Kind: KindString},
	{Name: "trailer", Kind: KindString},
	{Name: "year", Kind: KindInt, Check: checkYear},
	{Name: "rating", Kind: KindFloat, Check: checkRating},
	{Name: FieldGenreID, Kind: KindRef},
	{Name: FieldDirectorID, Kind: KindRef},
}

// DirectorFields is the writable field schema for directors.
var DirectorFields = Fields{
	{Name: "name", Kind: KindString, Required: true},
}

// GenreFields is the writable field schema for genres.
var GenreFields = Fields{
	{Name: "name", Kind: KindString, Required: true},
}

// MaxRating is the top of the rating scale.
const MaxRating = 10

func checkYear(v any) error {
	if v.(int) < 0 {
		return Invalid("year", "must not be negative")
	}
	return nil
}

func checkRating(v any) error {
	if r := v.(float64); r < 0 || r > MaxRating {
		return Invalid("rating", "must be between 0 and %d", MaxRating)
	}
	return nil
}

// Apply copies the patched values onto m.
func (m *Movie) Apply(p Patch) {
	if v, ok := p["title"]; ok {
		m.Title = v.(string)
	}
	if v, ok := p["description"]; ok {
		m.Description = v.(string)
	}
	if v, ok := p["trailer"]; ok {
		m.Trailer = v.(string)
	}
	if v, ok := p["year"]; ok {
		m.Year = v.(int)
	}
	if v, ok := p["rating"]; ok {
		m.Rating = v.(float64)
	}
	if v, ok := p[FieldGenreID]; ok {
		m.GenreID = v.(*int)
	}
	if v, ok := p[FieldDirectorID]; ok {
		m.DirectorID = v.(*int)
	}
}

// Apply copies the patched values onto d.
func (d *Director) Apply(p Patch) {
	if v, ok := p["name"]; ok {
		d.Name = v.(string)
	}
}

// Apply copies the patched values onto g.
func (g *Genre) Apply(p Patch) {
	if v, ok := p["name"]; ok {
		g.Name = v.(string)
	}
}
