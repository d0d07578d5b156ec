package models

import (
	"bytes"
	"encoding/json"
	"maps"
	"math"
	"slices"
)

// FieldKind is the semantic type of a writable column.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt
	KindFloat
	// KindRef is a nullable integer id pointing at another table.
	KindRef
)

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindRef:
		return "integer id or null"
	}
	return "unknown"
}

// Field describes one writable column of an entity. Name is both the JSON
// key and the column name.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
	// Check, when set, validates an already typed value.
	Check func(v any) error
}

// Fields is the fixed writable schema of an entity, in column order.
type Fields []Field

// Patch maps field names to typed values: string, int, float64, or *int
// for references (nil meaning NULL). Only present keys are written.
type Patch map[string]any

// Lookup returns the field called name.
func (fs Fields) Lookup(name string) (Field, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns the field names in column order.
func (fs Fields) Names() []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// Parse decodes a JSON object into a Patch. When partial is false every
// required field must be present.
func (fs Fields) Parse(body []byte, partial bool) (Patch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, &ValidationError{Msg: "request body must be a JSON object"}
	}

	patch := make(Patch, len(raw))
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		if name == "id" {
			return nil, Invalid("id", "is assigned by the store and cannot be written")
		}
		f, ok := fs.Lookup(name)
		if !ok {
			return nil, Invalid(name, "unknown field")
		}
		v, err := f.decode(raw[name])
		if err != nil {
			return nil, err
		}
		patch[name] = v
	}

	if !partial {
		for _, f := range fs {
			if _, ok := patch[f.Name]; f.Required && !ok {
				return nil, Invalid(f.Name, "is required")
			}
		}
	}
	return patch, nil
}

// Validate runs the field checks over an already typed patch, as Parse
// would for the equivalent JSON.
func (fs Fields) Validate(p Patch, partial bool) error {
	for _, f := range fs {
		v, ok := p[f.Name]
		if !ok {
			if f.Required && !partial {
				return Invalid(f.Name, "is required")
			}
			continue
		}
		if !f.holds(v) {
			return Invalid(f.Name, "must be a %s", f.Kind)
		}
		if s, isString := v.(string); isString && f.Required && s == "" {
			return Invalid(f.Name, "must not be empty")
		}
		if f.Check != nil {
			if err := f.Check(v); err != nil {
				return err
			}
		}
	}
	for name := range p {
		if _, ok := fs.Lookup(name); !ok {
			return Invalid(name, "unknown field")
		}
	}
	return nil
}

func (f Field) holds(v any) bool {
	switch f.Kind {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindInt:
		_, ok := v.(int)
		return ok
	case KindFloat:
		_, ok := v.(float64)
		return ok
	case KindRef:
		_, ok := v.(*int)
		return ok
	}
	return false
}

func (f Field) decode(raw json.RawMessage) (any, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if f.Kind == KindRef {
			return (*int)(nil), nil
		}
		return nil, Invalid(f.Name, "must not be null")
	}

	var v any
	switch f.Kind {
	case KindString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, Invalid(f.Name, "must be a %s", f.Kind)
		}
		if f.Required && s == "" {
			return nil, Invalid(f.Name, "must not be empty")
		}
		v = s
	case KindInt, KindRef:
		n, ok := decodeInt(raw)
		if !ok {
			return nil, Invalid(f.Name, "must be an %s", f.Kind)
		}
		if f.Kind == KindRef {
			v = &n
		} else {
			v = n
		}
	case KindFloat:
		var x float64
		if err := json.Unmarshal(raw, &x); err != nil {
			return nil, Invalid(f.Name, "must be a %s", f.Kind)
		}
		v = x
	}

	if f.Check != nil {
		if err := f.Check(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func decodeInt(raw json.RawMessage) (int, bool) {
	var x float64
	if err := json.Unmarshal(raw, &x); err != nil {
		return 0, false
	}
	if x != math.Trunc(x) || x > math.MaxInt32 || x < math.MinInt32 {
		return 0, false
	}
	return int(x), true
}
