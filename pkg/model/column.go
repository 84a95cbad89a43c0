package model

// FixedSide marks which frozen pane a column or row instance belongs to.
// The empty value is the scrollable pane.
type FixedSide string

const (
	FixedNone  FixedSide = ""
	FixedLeft  FixedSide = "left"
	FixedRight FixedSide = "right"
)

// IsFixed reports whether the side names a frozen pane.
func (f FixedSide) IsFixed() bool { return f != FixedNone }

// Align controls horizontal placement of cell text.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Column describes one table column.
type Column struct {
	Key       string    `yaml:"key,omitempty"`
	DataIndex string    `yaml:"data_index,omitempty"`
	Title     string    `yaml:"title,omitempty"`
	Width     int       `yaml:"width,omitempty"`
	Align     Align     `yaml:"align,omitempty"`
	Fixed     FixedSide `yaml:"fixed,omitempty"`
	Wrap      bool      `yaml:"wrap,omitempty"` // word-wrap to Width instead of truncating

	// Render overrides the default field lookup.
	Render func(rec Record, index int) string `yaml:"-"`
}

// ID returns the column identity: Key if set, otherwise DataIndex.
func (c Column) ID() string {
	if c.Key != "" {
		return c.Key
	}
	return c.DataIndex
}

// Value returns the display text of this column for rec.
func (c Column) Value(rec Record, index int) string {
	if c.Render != nil {
		return c.Render(rec, index)
	}
	return rec.Field(c.DataIndex)
}

// SplitColumns partitions columns into the left frozen pane and the
// scrollable pane, preserving order. Right-fixed columns stay with the
// scrollable pane.
func SplitColumns(cols []Column) (fixed, scroll []Column) {
	for _, c := range cols {
		if c.Fixed == FixedLeft {
			fixed = append(fixed, c)
		} else {
			scroll = append(scroll, c)
		}
	}
	return fixed, scroll
}
