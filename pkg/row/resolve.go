package row

import "github.com/vanderheijden86/rowview/pkg/model"

// ResolveVisibility reports whether a row is shown: every ancestor must be
// expanded. Top-level rows are always visible.
func ResolveVisibility(ancestorKeys []model.RowKey, expanded model.KeySet) bool {
	for _, k := range ancestorKeys {
		if !expanded.Has(k) {
			return false
		}
	}
	return true
}

// ResolveHeight returns the line height a row instance is constrained to.
// Scrollable-pane rows are never constrained: they are the measurement
// source. Fixed-pane rows take the height published for their key, then the
// height recorded for their index. A zero height counts as unknown.
func ResolveHeight(fixed model.FixedSide, key model.RowKey, index int,
	byKey map[model.RowKey]int, byIndex map[int]int) (int, bool) {

	if !fixed.IsFixed() {
		return 0, false
	}
	if h := byKey[key]; h > 0 {
		return h, true
	}
	if h := byIndex[index]; h > 0 {
		return h, true
	}
	return 0, false
}
