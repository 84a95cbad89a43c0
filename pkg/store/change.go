package store

import "github.com/vanderheijden86/rowview/pkg/model"

// Change mutates the state inside the store's update queue. Changes run
// against the live state, so map updates are always read-modify-write on the
// current contents.
type Change func(*State)

// WithExpandedRowKeys replaces the expanded set.
func WithExpandedRowKeys(keys ...model.RowKey) Change {
	return func(s *State) {
		s.ExpandedRowKeys = model.NewKeySet(keys...)
	}
}

// Expand adds keys to the expanded set.
func Expand(keys ...model.RowKey) Change {
	return func(s *State) {
		for _, k := range keys {
			s.ExpandedRowKeys.Add(k)
		}
	}
}

// Collapse removes keys from the expanded set.
func Collapse(keys ...model.RowKey) Change {
	return func(s *State) {
		for _, k := range keys {
			s.ExpandedRowKeys.Remove(k)
		}
	}
}

// Toggle flips the expanded state of key.
func Toggle(key model.RowKey) Change {
	return func(s *State) {
		if s.ExpandedRowKeys.Has(key) {
			s.ExpandedRowKeys.Remove(key)
		} else {
			s.ExpandedRowKeys.Add(key)
		}
	}
}

// WithHoverKey sets CurrentHoverKey. The zero key clears it.
func WithHoverKey(key model.RowKey) Change {
	return func(s *State) {
		s.CurrentHoverKey = key
	}
}

// Hover applies a pointer enter or leave for key. A leave only clears the
// hover when key is still the hovered row, so a late leave from one pane
// cannot erase an enter that already moved the hover elsewhere.
func Hover(isEntering bool, key model.RowKey) Change {
	return func(s *State) {
		if isEntering {
			s.CurrentHoverKey = key
			return
		}
		if s.CurrentHoverKey == key {
			s.CurrentHoverKey = model.RowKey{}
		}
	}
}

// WithRowHeight records the measured height of a row by key.
func WithRowHeight(key model.RowKey, height int) Change {
	return func(s *State) {
		s.ExpandedRowsHeight[key] = height
	}
}

// WithIndexHeights merges measured heights by row index.
func WithIndexHeights(heights map[int]int) Change {
	return func(s *State) {
		for i, h := range heights {
			s.FixedColumnsBodyRowsHeight[i] = h
		}
	}
}

// HoverHandler adapts the store to the row component's onHover callback.
func (st *Store) HoverHandler() func(isEntering bool, key model.RowKey) {
	return func(isEntering bool, key model.RowKey) {
		st.SetState(Hover(isEntering, key))
	}
}
