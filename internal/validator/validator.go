// Package validator checks decoded JSON request bodies against per-operation
// rules and reports the first violation as a structured *apperror.Error.
//
// Bodies are decoded into a generic map rather than a typed struct so that
// absent fields, explicit nulls and wrongly typed values can be told apart.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/iliyamo/noteful-api/internal/apperror"
)

// Body is a decoded JSON object.
type Body map[string]any

// ErrNotObject is returned by Decode when the payload is not a JSON object.
var ErrNotObject = errors.New("request body must be a JSON object")

// Decode reads a JSON object.  An empty payload decodes to an empty Body.
func Decode(r io.Reader) (Body, error) {
	var raw any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return Body{}, nil
		}
		return nil, err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return Body(obj), nil
}

// Size bounds the length of a string field.  Min and Max count characters,
// MaxBytes counts UTF-8 bytes.  Zero means no bound.
type Size struct {
	Field    string
	Min      int
	Max      int
	MaxBytes int
}

// Rules describes what a body must satisfy.  Checks run in the order the
// fields are declared here and the first failure wins.
type Rules struct {
	Code     int      // HTTP status for violations (400 or 422)
	Required []string // present and not null
	Strings  []string // string-typed when present
	Nullable []string // may be null (Strings and IDs fields)
	NonEmpty []string // when present, not blank
	Trimmed  []string // no leading or trailing whitespace
	Sized    []Size
	IDs      []string // when present and not null, a well-formed id
	IDLists  []string // when present, an array of well-formed ids
}

// Check applies r to b.
func (b Body) Check(r Rules) error {
	nullable := make(map[string]bool, len(r.Nullable))
	for _, f := range r.Nullable {
		nullable[f] = true
	}

	for _, f := range r.Required {
		if v, ok := b[f]; !ok || v == nil {
			return missing(r.Code, f)
		}
	}
	for _, f := range append(append([]string{}, r.Strings...), r.IDs...) {
		v, ok := b[f]
		if !ok || (v == nil && nullable[f]) {
			continue
		}
		if _, isStr := v.(string); !isStr {
			return apperror.Validation(r.Code, "Incorrect field type: expected string", f)
		}
	}
	for _, f := range r.IDLists {
		v, ok := b[f]
		if !ok {
			continue
		}
		if _, isArr := v.([]any); !isArr {
			return apperror.Validation(r.Code, "Incorrect field type: expected array", f)
		}
	}
	for _, f := range r.NonEmpty {
		v, ok := b[f]
		if !ok {
			continue
		}
		if s, _ := v.(string); strings.TrimSpace(s) == "" {
			return missing(r.Code, f)
		}
	}
	for _, f := range r.Trimmed {
		if s, ok := b[f].(string); ok && strings.TrimSpace(s) != s {
			return apperror.Validation(r.Code, "Cannot start or end with whitespace", f)
		}
	}
	for _, sz := range r.Sized {
		s, ok := b[sz.Field].(string)
		if !ok {
			continue
		}
		n := utf8.RuneCountInString(strings.TrimSpace(s))
		if sz.Min > 0 && n < sz.Min {
			return apperror.Validation(r.Code, fmt.Sprintf("Must be at least %d characters long", sz.Min), sz.Field)
		}
		if sz.Max > 0 && n > sz.Max {
			return apperror.Validation(r.Code, fmt.Sprintf("Must be at most %d characters long", sz.Max), sz.Field)
		}
		if sz.MaxBytes > 0 && len(s) > sz.MaxBytes {
			return apperror.Validation(r.Code, fmt.Sprintf("Must be at most %d bytes long", sz.MaxBytes), sz.Field)
		}
	}
	for _, f := range r.IDs {
		if s, ok := b[f].(string); ok && !IsID(s) {
			return apperror.Validation(r.Code, fmt.Sprintf("The `%s` is not valid", f), f)
		}
	}
	for _, f := range r.IDLists {
		items, _ := b[f].([]any)
		for _, it := range items {
			if s, ok := it.(string); !ok || !IsID(s) {
				return apperror.Validation(r.Code, fmt.Sprintf("The `%s` array contains an invalid `id`", f), f)
			}
		}
	}
	return nil
}

func missing(code int, field string) error {
	return apperror.Validation(code, fmt.Sprintf("Missing `%s` in request body", field), field)
}

// IsID reports whether s is a canonical hyphenated UUID, the only id form
// the store issues.
func IsID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// Has reports whether field was sent, null included.
func (b Body) Has(field string) bool {
	_, ok := b[field]
	return ok
}

// IsNull reports whether field was sent as an explicit null.
func (b Body) IsNull(field string) bool {
	v, ok := b[field]
	return ok && v == nil
}

// String returns the field as a string pointer, or nil when absent, null or
// not a string.
func (b Body) String(field string) *string {
	s, ok := b[field].(string)
	if !ok {
		return nil
	}
	return &s
}

// Trimmed is String with surrounding whitespace removed.
func (b Body) Trimmed(field string) *string {
	s := b.String(field)
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// StringList returns an array field as strings, or nil when absent or null.
// Non-string items are skipped; Check rejects them first.
func (b Body) StringList(field string) *[]string {
	items, ok := b[field].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return &out
}
