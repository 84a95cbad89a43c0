package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/goccy/go-json"

	"github.com/vanderheijden86/rowview/pkg/model"
)

// detailHeight is the height of the detail pane including its border.
func (m *Model) detailHeight() int {
	if m.height <= 0 {
		return 0
	}
	return max(4, m.height/3)
}

func (m *Model) detailTop() int {
	return 1 + m.bodyHeight()
}

// resizeDetail fits the detail viewport to the window and re-renders an
// open record when the wrap width changed.
func (m *Model) resizeDetail() {
	if m.width > 0 {
		m.detailVP.Width = m.width
	}
	if h := m.detailHeight(); h > 1 {
		m.detailVP.Height = h - 1
	}
	if m.detailOpen && m.mdWidth != m.wrapWidth() {
		m.detailVP.SetContent(m.renderMarkdown(m.detailRec.Markdown()))
	}
}

func (m *Model) wrapWidth() int {
	if m.width <= 0 {
		return 80
	}
	return max(20, m.width-4)
}

// renderMarkdown renders md with glamour, falling back to the raw text.
func (m *Model) renderMarkdown(md string) string {
	if w := m.wrapWidth(); m.mdRenderer == nil || m.mdWidth != w {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(w),
		)
		if err != nil {
			return md
		}
		m.mdRenderer, m.mdWidth = r, w
	}
	out, err := m.mdRenderer.Render(md)
	if err != nil {
		return md
	}
	// Strip trailing whitespace/newlines that glamour adds
	return strings.TrimRight(out, " \n")
}

// openDetail shows rec in the detail pane.
func (m *Model) openDetail(rec model.Record) {
	m.detailOpen = true
	m.detailRec = rec
	m.resizeDetail()
	m.detailVP.SetContent(m.renderMarkdown(rec.Markdown()))
	m.detailVP.GotoTop()
	m.clampScroll()
}

// DetailOpen reports whether the detail pane is shown and for which record.
func (m *Model) DetailOpen() (model.RowKey, bool) {
	return m.detailRec.Key, m.detailOpen
}

// copyRecord puts rec on the clipboard as indented JSON.
func (m *Model) copyRecord(rec model.Record) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err == nil {
		err = m.copyText(string(data))
	}
	if err != nil {
		m.setError("copy failed: %v", err)
		return
	}
	m.setStatus("copied %s", rec.Key)
}
