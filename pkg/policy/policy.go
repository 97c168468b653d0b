// Package policy decides when a manually laid out relationship keeps its
// waypoints instead of being rerouted.
//
// A relationship flagged isManuallyLayouted is preserved (its existing path is
// translated rather than recomputed) only when all of the following hold:
//
//   - the editor state allows it: both endpoints are selected together, or the
//     editor is read-only ([Preserve])
//   - the trigger admits it: for updates the patch must be cosmetic
//     ([Policy.IsCosmetic]), for moves both endpoints must move together
//   - neither endpoint is a relationship rerouted earlier in the same cascade
//
// [Policy.Decide] combines these checks.
package policy

import (
	"sort"
	"strings"
)

// Policy holds the cosmetic-update heuristic.
type Policy struct {
	// CosmeticFields are the patch keys that never affect geometry. Nested
	// keys are written in dotted form, e.g. "source.role".
	CosmeticFields []string `toml:"cosmetic_fields" json:"cosmeticFields"`
	// MaxCosmeticFields bounds how many keys a cosmetic patch may touch.
	MaxCosmeticFields int `toml:"max_cosmetic_fields" json:"maxCosmeticFields"`
}

// Default returns the policy used when no configuration is given.
func Default() Policy {
	return Policy{
		CosmeticFields: []string{
			"isManuallyLayouted",
			"name",
			"source.multiplicity",
			"source.role",
			"target.multiplicity",
			"target.role",
		},
		MaxCosmeticFields: 2,
	}
}

// Preserve reports whether the editor state allows keeping a manual layout:
// both endpoints are selected, or the editor is read-only.
func Preserve(sourceID, targetID string, selected map[string]bool, readOnly bool) bool {
	if readOnly {
		return true
	}
	return selected[sourceID] && selected[targetID]
}

// Decision collects the inputs of a preservation decision.
type Decision struct {
	ManuallyLayouted bool
	SourceID         string
	TargetID         string
	Selected         map[string]bool
	ReadOnly         bool

	// Admitted is set when the trigger allows preservation at all.
	Admitted bool
	// AttachedToUpdated is set when an endpoint is a relationship already
	// rerouted in the current cascade.
	AttachedToUpdated bool
}

// Decide reports whether the relationship keeps its waypoints.
func (p Policy) Decide(d Decision) bool {
	if !d.ManuallyLayouted || !d.Admitted || d.AttachedToUpdated {
		return false
	}
	return Preserve(d.SourceID, d.TargetID, d.Selected, d.ReadOnly)
}

// IsCosmetic reports whether patch only touches cosmetic fields and no more
// than MaxCosmeticFields of them.
func (p Policy) IsCosmetic(patch map[string]any) bool {
	keys := Flatten(patch)
	if p.MaxCosmeticFields >= 0 && len(keys) > p.MaxCosmeticFields {
		return false
	}
	allowed := make(map[string]bool, len(p.CosmeticFields))
	for _, f := range p.CosmeticFields {
		allowed[f] = true
	}
	for _, k := range keys {
		if !allowed[k] {
			return false
		}
	}
	return true
}

// Flatten returns the sorted leaf keys of patch, joining nested map keys
// with dots. An empty nested map counts as a leaf.
func Flatten(patch map[string]any) []string {
	var keys []string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if sub, ok := v.(map[string]any); ok && len(sub) > 0 {
				walk(key, sub)
				continue
			}
			keys = append(keys, key)
		}
	}
	walk("", patch)
	sort.Strings(keys)
	return keys
}

// TouchesAny reports whether patch sets any of the given top-level keys or a
// key nested below one of them.
func TouchesAny(patch map[string]any, fields ...string) bool {
	for _, k := range Flatten(patch) {
		for _, f := range fields {
			if k == f || strings.HasPrefix(k, f+".") {
				return true
			}
		}
	}
	return false
}
