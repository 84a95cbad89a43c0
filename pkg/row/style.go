package row

// Style is the row's presentation constraint. Height 0 means natural height.
type Style struct {
	Height int
	Hidden bool
}

// styleCache keeps the current Style and hands out a new value only when an
// input actually changes, so callers can compare by pointer.
type styleCache struct {
	cur *Style
}

// resolve applies the derived height and visibility. A resolved height
// replaces the cached one only when it differs; an unknown height keeps the
// last one. Hidden is set when the row turns invisible and cleared only by a
// visible recompute.
func (c *styleCache) resolve(height int, hasHeight, visible bool) *Style {
	if c.cur == nil {
		c.cur = &Style{}
	}
	if hasHeight && height > 0 && height != c.cur.Height {
		next := *c.cur
		next.Height = height
		c.cur = &next
	}
	if !visible && !c.cur.Hidden {
		next := *c.cur
		next.Hidden = true
		c.cur = &next
	}
	if visible && c.cur.Hidden {
		next := *c.cur
		next.Hidden = false
		c.cur = &next
	}
	return c.cur
}
