// Package diff computes field-level differences between two versions of the
// same diagram entity.
//
// The engine uses it twice per recalculation: to skip relationships whose
// candidate geometry equals the stored one, and to build the minimal patch it
// hands to the store so that downstream consumers (history, re-render) only
// see fields that actually changed.
//
// Fields are named by their JSON key. Comparison is deep and structural: two
// values are equal when their contents match, regardless of identity; nil and
// empty slices compare equal; floats compare equal within [Tolerance].
package diff

import (
	"reflect"
	"slices"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Tolerance is the absolute margin under which two float64 values are equal.
const Tolerance = 1e-9

// Change is one differing field.
type Change struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

// Changes is a set of differing fields sorted by field name.
type Changes []Change

// Empty reports whether there are no changes.
func (c Changes) Empty() bool { return len(c) == 0 }

// Has reports whether field changed.
func (c Changes) Has(field string) bool {
	_, ok := slices.BinarySearchFunc(c, field, func(ch Change, f string) int {
		return strings.Compare(ch.Field, f)
	})
	return ok
}

// Fields returns the names of the changed fields.
func (c Changes) Fields() []string {
	out := make([]string, len(c))
	for i, ch := range c {
		out[i] = ch.Field
	}
	return out
}

// Values returns the changes as a patch: field name to new value.
func (c Changes) Values() map[string]any {
	out := make(map[string]any, len(c))
	for _, ch := range c {
		out[ch.Field] = ch.New
	}
	return out
}

// Only returns the subset of c whose field is in fields.
func (c Changes) Only(fields ...string) Changes {
	var out Changes
	for _, ch := range c {
		if slices.Contains(fields, ch.Field) {
			out = append(out, ch)
		}
	}
	return out
}

var equalOpts = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmpopts.EquateApprox(0, Tolerance),
}

// Equal reports whether a and b are structurally equal under the package's
// comparison rules.
func Equal(a, b any) bool { return cmp.Equal(a, b, equalOpts...) }

// Entities returns the fields of two struct values of the same type whose
// contents differ. Pointers to structs are dereferenced; a nil pointer
// compares as the zero struct. Unexported fields and fields tagged `json:"-"`
// are ignored. Non-struct values yield a single change named "" when unequal.
func Entities[T any](old, updated T) Changes {
	ov, nv := reflect.ValueOf(old), reflect.ValueOf(updated)
	ov, nv = deref(ov), deref(nv)
	if !ov.IsValid() || ov.Kind() != reflect.Struct {
		if Equal(old, updated) {
			return nil
		}
		return Changes{{Old: old, New: updated}}
	}

	var out Changes
	t := ov.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		name, ok := fieldName(f)
		if !ok {
			continue
		}
		a, b := ov.Field(i).Interface(), nv.Field(i).Interface()
		if !Equal(a, b) {
			out = append(out, Change{Field: name, Old: a, New: b})
		}
	}
	slices.SortFunc(out, func(a, b Change) int { return strings.Compare(a.Field, b.Field) })
	return out
}

func deref(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Zero(v.Type().Elem())
		}
		v = v.Elem()
	}
	return v
}

func fieldName(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, true
	}
	return f.Name, true
}
