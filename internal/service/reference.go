package service

import (
	"context"
	"fmt"

	"moviedb/internal/models"
)

// Exister looks up whether a row exists.
type Exister interface {
	Exists(ctx context.Context, id int) (bool, error)
}

type reference struct {
	field  string
	entity string
	store  Exister
}

// ReferenceValidator guards movie writes against dangling director and
// genre references.
type ReferenceValidator struct {
	refs []reference
}

// NewReferenceValidator creates a validator over the director and genre
// stores.
func NewReferenceValidator(directors, genres Exister) *ReferenceValidator {
	return &ReferenceValidator{refs: []reference{
		{field: models.FieldDirectorID, entity: "director", store: directors},
		{field: models.FieldGenreID, entity: "genre", store: genres},
	}}
}

// Validate checks every non-null reference present in p. The first one that
// does not resolve rejects the whole write.
func (v *ReferenceValidator) Validate(ctx context.Context, p models.Patch) error {
	for _, ref := range v.refs {
		raw, ok := p[ref.field]
		if !ok {
			continue
		}
		id, _ := raw.(*int)
		if id == nil {
			continue
		}

		exists, err := ref.store.Exists(ctx, *id)
		if err != nil {
			return fmt.Errorf("check %s reference: %w", ref.entity, err)
		}
		if !exists {
			return models.Invalid(ref.field, "%s %d does not exist", ref.entity, *id)
		}
	}
	return nil
}
