package ui

import (
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/rowview/pkg/model"
)

// maxAutoWidth caps columns sized from their content.
const maxAutoWidth = 40

// InferColumns builds columns for data sets without a configured layout:
// a key column frozen on the left, then one column per field name.
func InferColumns(records []model.Record) []model.Column {
	cols := []model.Column{{
		Key:   "key",
		Title: "Key",
		Fixed: model.FixedLeft,
		Render: func(rec model.Record, _ int) string {
			return rec.Key.String()
		},
	}}

	seen := make(map[string]bool)
	var names []string
	for _, rec := range records {
		for name := range rec.Fields {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	for _, name := range names {
		cols = append(cols, model.Column{DataIndex: name, Title: name})
	}
	return cols
}

func columnTitle(c model.Column) string {
	if c.Title != "" {
		return c.Title
	}
	return c.ID()
}

func maxLineWidth(s string) int {
	w := 0
	for _, line := range strings.Split(s, "\n") {
		w = max(w, runewidth.StringWidth(line))
	}
	return w
}

// fitColumns gives every column without an explicit width the width of its
// widest value, so cells line up across rows and with the header. The
// expand-icon column also reserves room for indentation and the icon.
func fitColumns(cols []model.Column, rows []model.FlatRow, iconCol, indentSize, iconWidth int) []model.Column {
	out := make([]model.Column, len(cols))
	copy(out, cols)
	for i := range out {
		if out[i].Width > 0 {
			continue
		}
		w := runewidth.StringWidth(columnTitle(out[i]))
		for _, fr := range rows {
			vw := maxLineWidth(out[i].Value(fr.Record, fr.Index))
			if i == iconCol {
				vw += indentSize*fr.Indent + iconWidth + 1
			}
			w = max(w, vw)
		}
		out[i].Width = max(1, min(w, maxAutoWidth))
	}
	return out
}

// paneIndexes returns each pane column's position in the full column
// list, in the order model.SplitColumns places them.
func paneIndexes(cols []model.Column) (fixedIdx, scrollIdx []int) {
	for i, c := range cols {
		if c.Fixed == model.FixedLeft {
			fixedIdx = append(fixedIdx, i)
		} else {
			scrollIdx = append(scrollIdx, i)
		}
	}
	return fixedIdx, scrollIdx
}
