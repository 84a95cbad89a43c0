package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/rowview/pkg/debug"
	"github.com/vanderheijden86/rowview/pkg/metrics"
	"github.com/vanderheijden86/rowview/pkg/model"
	"github.com/vanderheijden86/rowview/pkg/store"
)

// layout mounts and measures rows, then rebuilds the body lines.
func (m *Model) layout() {
	defer metrics.Timer(metrics.TableLayout)()
	m.store.Batch(m.mount)
	m.compose()
}

// mount reports each shown scrollable-pane row's height. A row is measured
// at its first visible render and remounted whenever its content height
// changes; hidden rows keep their last mount. Fixed-pane twins are mounted
// alongside and pick the height up from the store. layout runs the pass in a
// store batch so subscribers are notified once, not once per row.
func (m *Model) mount() {
	for _, tr := range m.rows {
		h := tr.scroll.Render().Height()
		if h == 0 {
			continue
		}
		if tr.scroll.Attached() && h == tr.measured {
			continue
		}
		tr.scroll.Detach()
		if err := tr.scroll.OnAttached(h); err != nil {
			debug.Log("table: mount %s: %v", tr.flat.Record.Key, err)
			continue
		}
		tr.measured = h
		if tr.fixed != nil && !tr.fixed.Attached() {
			if err := tr.fixed.OnAttached(h); err != nil {
				debug.Log("table: mount fixed %s: %v", tr.flat.Record.Key, err)
			}
		}
	}
}

// publishIndexHeights records the height of every shown row by index, the
// fallback the fixed pane uses for rows it has no keyed height for.
func (m *Model) publishIndexHeights() {
	if len(m.hits) == 0 {
		return
	}
	heights := make(map[int]int, len(m.hits))
	for _, h := range m.hits {
		heights[m.rows[h.idx].flat.Index] = m.rows[h.idx].measured
	}
	m.store.SetState(store.WithIndexHeights(heights))
}

type block struct {
	idx    int
	fixed  string
	scroll string
}

// compose renders both panes of every shown row side by side and records
// which body lines belong to which row.
func (m *Model) compose() {
	var blocks []block
	fixedW := 0
	if len(m.fixedCols) > 0 {
		fixedW = lipgloss.Width(m.headerCells(m.fixedCols))
	}
	scrollW := 0
	for i, tr := range m.rows {
		sv := tr.scroll.Render()
		if sv.Height() == 0 {
			continue
		}
		b := block{idx: i, scroll: sv.Content}
		if tr.fixed != nil {
			b.fixed = tr.fixed.Render().Content
			fixedW = max(fixedW, lipgloss.Width(b.fixed))
		}
		scrollW = max(scrollW, lipgloss.Width(b.scroll))
		blocks = append(blocks, b)
	}
	m.fixedWidth = fixedW
	m.scrollWidth = max(scrollW, lipgloss.Width(m.headerCells(m.scrollCols)))
	m.offsetX = min(m.offsetX, m.maxOffsetX())

	m.lines = m.lines[:0]
	m.hits = m.hits[:0]
	for _, b := range blocks {
		text := clipLines(b.scroll, m.offsetX, m.scrollAvail())
		if len(m.fixedCols) > 0 {
			fixed := m.theme.Renderer.NewStyle().Width(fixedW).Render(b.fixed)
			text = lipgloss.JoinHorizontal(lipgloss.Top, fixed, m.separator(lipgloss.Height(text)), text)
		}
		lines := strings.Split(text, "\n")
		m.hits = append(m.hits, hitRegion{top: len(m.lines), height: len(lines), idx: b.idx})
		m.lines = append(m.lines, lines...)
	}

	m.fixCursor()
	m.clampScroll()
}

// fixCursor moves a cursor whose row was collapsed away to the closest
// shown row above it.
func (m *Model) fixCursor() {
	if m.cursor < 0 {
		return
	}
	best := -1
	for _, h := range m.hits {
		if h.idx == m.cursor {
			return
		}
		if h.idx < m.cursor {
			best = h.idx
		}
	}
	m.cursor = best
}

func (m *Model) separator(height int) string {
	return m.theme.Separator.Render(strings.TrimSuffix(strings.Repeat("│\n", max(1, height)), "\n"))
}

// scrollAvail is the width left for the scrollable pane, 0 when unbounded.
func (m *Model) scrollAvail() int {
	if m.width <= 0 {
		return 0
	}
	w := m.width
	if len(m.fixedCols) > 0 {
		w -= m.fixedWidth + 1
	}
	return max(1, w)
}

func (m *Model) maxOffsetX() int {
	avail := m.scrollAvail()
	if avail == 0 {
		return 0
	}
	return max(0, m.scrollWidth-avail)
}

// clipLines cuts offset cells from the left of every line and limits it to
// width cells; width 0 leaves the right edge alone.
func clipLines(s string, offset, width int) string {
	if offset == 0 && width == 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if offset > 0 {
			line = ansi.TruncateLeft(line, offset, "")
		}
		if width > 0 {
			line = ansi.Truncate(line, width, "")
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func (m *Model) headerCells(cols []model.Column) string {
	cells := make([]string, 0, len(cols))
	for _, c := range cols {
		title := columnTitle(c)
		if runewidth.StringWidth(title) > c.Width {
			title = runewidth.Truncate(title, c.Width, "…")
		}
		cells = append(cells, m.theme.Header.PaddingRight(1).Width(c.Width+1).Render(title))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m *Model) renderHeader() string {
	scroll := clipLines(m.headerCells(m.scrollCols), m.offsetX, m.scrollAvail())
	if len(m.fixedCols) == 0 {
		return scroll
	}
	fixed := m.theme.Renderer.NewStyle().Width(m.fixedWidth).Render(m.headerCells(m.fixedCols))
	return lipgloss.JoinHorizontal(lipgloss.Top, fixed, m.separator(1), scroll)
}

// bodyHeight is the number of lines available to rows.
func (m *Model) bodyHeight() int {
	if m.height <= 0 {
		return len(m.lines)
	}
	h := m.height - 2 // header and status bar
	if m.detailOpen {
		h -= m.detailHeight()
	}
	return max(1, h)
}

func (m *Model) clampScroll() {
	maxTop := max(0, len(m.lines)-m.bodyHeight())
	m.top = min(max(0, m.top), maxTop)
}

// ensureVisible scrolls so the row at hits[pos] is fully shown.
func (m *Model) ensureVisible(pos int) {
	h := m.hits[pos]
	bh := m.bodyHeight()
	switch {
	case h.top < m.top:
		m.top = h.top
	case h.top+h.height > m.top+bh:
		m.top = h.top + h.height - bh
	}
	m.clampScroll()
}

// rowAt maps a screen position to a row index and the pane under it.
func (m *Model) rowAt(x, y int) (int, model.FixedSide) {
	if y < 1 || y > m.bodyHeight() {
		return -1, model.FixedNone
	}
	line := m.top + y - 1
	pane := model.FixedNone
	if len(m.fixedCols) > 0 && x < m.fixedWidth {
		pane = model.FixedLeft
	}
	for _, h := range m.hits {
		if line >= h.top && line < h.top+h.height {
			return h.idx, pane
		}
	}
	return -1, model.FixedNone
}

func (m *Model) statusBar() string {
	text := fmt.Sprintf(" %d rows, %d shown", len(m.rows), len(m.hits))
	var hover model.RowKey
	m.store.View(func(s store.Snapshot) {
		hover = s.CurrentHoverKey()
	})
	if !hover.IsZero() {
		text += fmt.Sprintf(" · %s", hover)
	}
	style := m.theme.StatusBar
	if m.status != "" {
		text += " · " + m.status
		if m.statusErr {
			style = m.theme.ErrorText
		}
	}
	if m.width > 0 && runewidth.StringWidth(text) > m.width {
		text = runewidth.Truncate(text, m.width, "…")
	}
	return style.Render(text)
}

func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	parts := []string{m.renderHeader()}

	bh := m.bodyHeight()
	end := min(len(m.lines), m.top+bh)
	parts = append(parts, m.lines[m.top:end]...)
	for i := end - m.top; i < bh; i++ {
		parts = append(parts, "")
	}

	if m.detailOpen {
		parts = append(parts, m.theme.Detail.Width(m.width).Render(m.detailVP.View()))
	}
	parts = append(parts, m.statusBar())
	return strings.Join(parts, "\n")
}

// RenderStatic lays the table out at width with every row line included
// and returns the header and body, for non-interactive output.
func (m *Model) RenderStatic(width int) string {
	m.width, m.height = width, 0
	m.ready = true
	m.layout()
	m.publishIndexHeights()
	m.compose()
	if len(m.lines) == 0 {
		return m.renderHeader()
	}
	return m.renderHeader() + "\n" + strings.Join(m.lines, "\n")
}
