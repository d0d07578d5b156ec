package repository

import (
	"fmt"
	"strconv"
	"strings"

	"moviedb/internal/models"
)

// Criterion is an equality constraint on one column.
type Criterion struct {
	Column string
	Value  any
}

// Filter is a conjunction of criteria. The zero value matches every row.
type Filter []Criterion

// Eq returns a single-criterion filter.
func Eq(column string, value any) Filter {
	return Filter{{Column: column, Value: value}}
}

// ParseFilter builds a Filter from raw query parameters. Only names in
// allowed are considered; missing or empty values impose no constraint.
func ParseFilter(fields models.Fields, allowed []string, params map[string]string) (Filter, error) {
	var f Filter
	for _, name := range allowed {
		raw := strings.TrimSpace(params[name])
		if raw == "" {
			continue
		}
		field, ok := fields.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("filter on unknown column %q", name)
		}

		var v any
		switch field.Kind {
		case models.KindInt, models.KindRef:
			n, err := strconv.ParseInt(raw, 10, 32)
			if err != nil {
				return nil, models.Invalid(name, "must be an integer")
			}
			v = int(n)
		case models.KindFloat:
			x, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, models.Invalid(name, "must be a number")
			}
			v = x
		default:
			v = raw
		}
		f = append(f, Criterion{Column: name, Value: v})
	}
	return f, nil
}

// Where renders the filter as a WHERE clause with placeholders starting at
// $argIdx, and returns the matching args.
func (f Filter) Where(argIdx int) (string, []any) {
	conditions := []string{"1=1"}
	args := make([]any, 0, len(f))

	for _, c := range f {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", c.Column, argIdx))
		args = append(args, c.Value)
		argIdx++
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}
