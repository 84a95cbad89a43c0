package model

import (
	"fmt"
	"sort"
	"strings"
)

// Record is one row of table data.
type Record struct {
	Key       RowKey         `json:"key" yaml:"key"`
	ParentKey RowKey         `json:"parent,omitempty" yaml:"parent,omitempty"`
	Fields    map[string]any `json:"fields" yaml:"fields"`
}

// Field returns the named field formatted for display, or "" when unset.
func (r Record) Field(name string) string {
	v, ok := r.Fields[name]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}

// Validate checks that the record can be placed in a table.
func (r Record) Validate() error {
	if r.Key.IsZero() {
		return fmt.Errorf("record has no key")
	}
	if r.ParentKey == r.Key {
		return fmt.Errorf("record %s is its own parent", r.Key)
	}
	return nil
}

// Markdown renders the record as a small markdown document for detail views.
func (r Record) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", r.Key)
	if !r.ParentKey.IsZero() {
		fmt.Fprintf(&sb, "Parent: `%s`\n\n", r.ParentKey)
	}
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	sb.WriteString("| Field | Value |\n|---|---|\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "| %s | %s |\n", name, r.Field(name))
	}
	return sb.String()
}
