package row

import (
	"github.com/vanderheijden86/rowview/pkg/model"
	"github.com/vanderheijden86/rowview/pkg/store"
)

// Facts are the store-derived inputs of a row.
type Facts struct {
	Visible   bool
	Hovered   bool
	Height    int
	HasHeight bool
}

// Props are the row identity fields the derivation depends on.
type Props struct {
	RowKey       model.RowKey
	Index        int
	AncestorKeys []model.RowKey
	Fixed        model.FixedSide
}

// Derive computes a row's facts from the store state.
func Derive(s store.Snapshot, p Props) Facts {
	h, ok := ResolveHeight(p.Fixed, p.RowKey, p.Index,
		s.ExpandedRowsHeight(), s.FixedColumnsBodyRowsHeight())
	return Facts{
		Visible:   ResolveVisibility(p.AncestorKeys, s.ExpandedRowKeys()),
		Hovered:   !p.RowKey.IsZero() && s.CurrentHoverKey() == p.RowKey,
		Height:    h,
		HasHeight: ok,
	}
}
