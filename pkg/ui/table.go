// Package ui is the terminal tree table: a bubbletea model that renders every
// record as a scrollable-pane row plus, when columns are frozen on the left,
// a fixed-pane twin kept at the same height through the shared store.
package ui

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/rowview/pkg/config"
	"github.com/vanderheijden86/rowview/pkg/debug"
	"github.com/vanderheijden86/rowview/pkg/model"
	"github.com/vanderheijden86/rowview/pkg/row"
	"github.com/vanderheijden86/rowview/pkg/store"
	"github.com/vanderheijden86/rowview/pkg/watcher"
)

// FileChangedMsg is sent when a watched data file changes on disk.
type FileChangedMsg struct{}

// recordsLoadedMsg carries the result of a background reload.
type recordsLoadedMsg struct {
	records []model.Record
	err     error
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// Loader reloads the table's records.
type Loader func(ctx context.Context) ([]model.Record, error)

// tableRow pairs the two instances of one logical row.
type tableRow struct {
	flat     model.FlatRow
	scroll   *row.Row
	fixed    *row.Row // nil without frozen columns
	measured int      // height reported at the current mount
}

func (tr *tableRow) close() {
	tr.scroll.Close()
	if tr.fixed != nil {
		tr.fixed.Close()
	}
}

// hitRegion maps body lines to a row for mouse hit-testing.
type hitRegion struct {
	top    int
	height int
	idx    int
}

// Option configures a Model.
type Option func(*Model)

// WithTheme overrides the default theme.
func WithTheme(t Theme) Option {
	return func(m *Model) { m.theme = t }
}

// WithStore shares an existing store, e.g. one restored from disk.
func WithStore(st *store.Store) Option {
	return func(m *Model) { m.store = st }
}

// WithWatcher reloads records through load whenever w reports a change.
func WithWatcher(w *watcher.Watcher, load Loader) Option {
	return func(m *Model) {
		m.watcher = w
		m.reload = load
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) { m.copyText = fn }
}

// WithClock replaces time.Now for double-click detection.
func WithClock(fn func() time.Time) Option {
	return func(m *Model) { m.now = fn }
}

// Model is the bubbletea model of the tree table.
type Model struct {
	cfg   config.Config
	theme Theme
	store *store.Store

	records    []model.Record
	columns    []model.Column // sized, in configured order
	fixedCols  []model.Column
	scrollCols []model.Column
	rows       []*tableRow

	width  int
	height int // 0 renders every line
	ready  bool

	lines       []string
	hits        []hitRegion
	fixedWidth  int
	scrollWidth int

	cursor       int // keyboard hover, index into rows; -1 when none
	top          int // first body line shown
	offsetX      int // horizontal scroll of the scrollable pane, in cells
	hoverIdx     int // row under the pointer; -1 when none
	hoverPane    model.FixedSide
	lastClickIdx int
	lastClickAt  time.Time

	detailOpen bool
	detailRec  model.Record
	detailVP   viewport.Model
	mdRenderer *glamour.TermRenderer
	mdWidth    int

	status    string
	statusErr bool

	watcher  *watcher.Watcher
	reload   Loader
	copyText func(string) error
	now      func() time.Time
}

// NewModel builds the table for records.
func NewModel(records []model.Record, cfg config.Config, opts ...Option) (*Model, error) {
	m := &Model{
		cfg:          cfg,
		cursor:       -1,
		hoverIdx:     -1,
		lastClickIdx: -1,
		detailVP:     viewport.New(40, 10),
		copyText:     clipboard.WriteAll,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.theme.Renderer == nil {
		m.theme = DefaultTheme(lipgloss.DefaultRenderer())
	}
	if m.store == nil {
		m.store = store.New()
	}
	if err := m.SetRecords(records); err != nil {
		return nil, err
	}
	if cfg.Table.ExpandAll {
		m.ExpandAll()
	}
	return m, nil
}

// Store returns the table's shared state.
func (m *Model) Store() *store.Store { return m.store }

// Rows returns the number of logical rows.
func (m *Model) Rows() int { return len(m.rows) }

// Columns returns the sized columns in configured order.
func (m *Model) Columns() []model.Column { return m.columns }

// VisibleRows returns the number of rows currently occupying lines.
func (m *Model) VisibleRows() int { return len(m.hits) }

func (m *Model) indentSize() int {
	if m.cfg.Table.IndentSize > 0 {
		return m.cfg.Table.IndentSize
	}
	return row.DefaultIndentSize
}

// SetRecords replaces the data and rebuilds every row. Expanded keys and
// measured heights in the store are kept, so a reload keeps the tree shape.
func (m *Model) SetRecords(records []model.Record) error {
	flat := model.Flatten(records)

	cols := m.cfg.Table.Columns
	if len(cols) == 0 {
		cols = InferColumns(records)
	}
	icons := m.cfg.Table.ExpandIcons
	iconWidth := max(runewidth.StringWidth(icons.Expanded),
		runewidth.StringWidth(icons.Collapsed), runewidth.StringWidth(icons.Leaf))
	cols = fitColumns(cols, flat, m.cfg.Table.ExpandIconColumn, m.indentSize(), iconWidth)

	rows := make([]*tableRow, 0, len(flat))
	fixedCols, scrollCols := model.SplitColumns(cols)
	fixedIdx, scrollIdx := paneIndexes(cols)

	// Rows whose place in the tree and whose columns are unchanged are kept
	// and given the new record, so only their changed content is remounted.
	reusable := make(map[model.RowKey]*tableRow)
	if sameLayout(m.columns, cols) {
		for _, tr := range m.rows {
			reusable[tr.flat.Record.Key] = tr
		}
	}
	kept := make(map[*tableRow]bool)
	var built []*tableRow
	for _, fr := range flat {
		if tr, ok := reusable[fr.Record.Key]; ok && sameShape(tr.flat, fr) {
			tr.flat = fr
			tr.scroll.SetRecord(fr.Record)
			if tr.fixed != nil {
				tr.fixed.SetRecord(fr.Record)
			}
			kept[tr] = true
			rows = append(rows, tr)
			continue
		}
		tr := &tableRow{flat: fr}
		var err error
		tr.scroll, err = row.Connect(m.store, m.rowConfig(fr, model.FixedNone, scrollCols, scrollIdx))
		if err == nil && len(fixedCols) > 0 {
			tr.fixed, err = row.Connect(m.store, m.rowConfig(fr, model.FixedLeft, fixedCols, fixedIdx))
		}
		if err != nil {
			if tr.scroll != nil {
				tr.scroll.Close()
			}
			for _, b := range built {
				b.close()
			}
			return fmt.Errorf("building row %s: %w", fr.Record.Key, err)
		}
		built = append(built, tr)
		rows = append(rows, tr)
	}

	m.dropHover(flat)
	for _, tr := range m.rows {
		if !kept[tr] {
			tr.close()
		}
	}
	m.records = records
	m.columns = cols
	m.fixedCols, m.scrollCols = fixedCols, scrollCols
	m.rows = rows
	m.hoverIdx = -1
	m.lastClickIdx = -1
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	debug.Log("table: %d records, %d fixed and %d scroll columns", len(records), len(fixedCols), len(scrollCols))

	m.layout()
	m.publishIndexHeights()
	m.compose()
	return nil
}

// sameLayout reports whether two column sets render rows identically.
func sameLayout(a, b []model.Column) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID() != b[i].ID() || a[i].Title != b[i].Title || a[i].Width != b[i].Width ||
			a[i].Align != b[i].Align || a[i].Fixed != b[i].Fixed || a[i].Wrap != b[i].Wrap {
			return false
		}
	}
	return true
}

// sameShape reports whether b sits at the same place in the tree as a.
func sameShape(a, b model.FlatRow) bool {
	return a.Record.Key == b.Record.Key && a.Index == b.Index && a.Indent == b.Indent &&
		a.HasChildren == b.HasChildren && slices.Equal(a.AncestorKeys, b.AncestorKeys)
}

// dropHover ends the pointer hover on the rows about to be replaced and
// clears a hover key whose record is not in flat.
func (m *Model) dropHover(flat []model.FlatRow) {
	if m.hoverIdx >= 0 && m.hoverIdx < len(m.rows) {
		m.instance(m.hoverIdx, m.hoverPane).MouseLeave(tea.MouseMsg{})
	}
	var hovered model.RowKey
	m.store.View(func(s store.Snapshot) {
		hovered = s.CurrentHoverKey()
	})
	if hovered.IsZero() {
		return
	}
	for _, fr := range flat {
		if fr.Record.Key == hovered {
			return
		}
	}
	m.store.SetState(store.Hover(false, hovered))
}

func (m *Model) rowConfig(fr model.FlatRow, side model.FixedSide, cols []model.Column, global []int) row.Config {
	styles := m.theme.RowStyles()
	key := fr.Record.Key
	hasChildren := fr.HasChildren
	iconCol := m.cfg.Table.ExpandIconColumn
	return row.Config{
		PrefixCls:        m.cfg.Table.PrefixCls,
		Record:           fr.Record,
		Columns:          cols,
		RowKey:           key,
		Index:            fr.Index,
		AncestorKeys:     fr.AncestorKeys,
		Indent:           fr.Indent,
		IndentSize:       m.indentSize(),
		Fixed:            side,
		Styles:           &styles,
		OnRowClick:       m.onRowClick,
		OnRowDoubleClick: m.onRowDoubleClick,
		OnRowContextMenu: m.onRowContextMenu,
		HasExpandIcon: func(i int) bool {
			return i < len(global) && global[i] == iconCol
		},
		RenderExpandIcon: func() string {
			return m.expandIcon(key, hasChildren)
		},
	}
}

func (m *Model) isExpanded(key model.RowKey) bool {
	var ok bool
	m.store.View(func(s store.Snapshot) {
		ok = s.IsExpanded(key)
	})
	return ok
}

func (m *Model) expandIcon(key model.RowKey, hasChildren bool) string {
	icons := m.cfg.Table.ExpandIcons
	switch {
	case !hasChildren:
		return icons.Leaf
	case m.isExpanded(key):
		return icons.Expanded
	default:
		return icons.Collapsed
	}
}

// Toggle expands or collapses the row with key.
func (m *Model) Toggle(key model.RowKey) {
	m.store.SetState(store.Toggle(key))
	m.layout()
}

// ExpandAll expands every row that has children.
func (m *Model) ExpandAll() {
	var keys []model.RowKey
	for _, tr := range m.rows {
		if tr.flat.HasChildren {
			keys = append(keys, tr.flat.Record.Key)
		}
	}
	m.store.SetState(store.Expand(keys...))
	m.layout()
}

// CollapseAll collapses every row.
func (m *Model) CollapseAll() {
	m.store.SetState(store.WithExpandedRowKeys())
	m.layout()
}

func (m *Model) onRowClick(_ model.Record, index int, _ tea.MouseMsg) {
	m.cursor = index
	m.status = ""
}

func (m *Model) onRowDoubleClick(rec model.Record, index int, _ tea.MouseMsg) {
	if index >= 0 && index < len(m.rows) && m.rows[index].flat.HasChildren {
		m.Toggle(rec.Key)
	}
	m.openDetail(rec)
}

func (m *Model) onRowContextMenu(rec model.Record, _ int, _ tea.MouseMsg) {
	m.copyRecord(rec)
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
}

func (m *Model) setError(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = true
}

// Close drops every row's store subscription.
func (m *Model) Close() {
	for _, tr := range m.rows {
		tr.close()
	}
	m.rows = nil
}

func (m *Model) Init() tea.Cmd {
	if m.watcher != nil && m.reload != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

func (m *Model) reloadCmd() tea.Cmd {
	load := m.reload
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		recs, err := load(ctx)
		return recordsLoadedMsg{records: recs, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.resizeDetail()
		m.layout()
		m.publishIndexHeights()

	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		if cmd := m.handleMouse(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case FileChangedMsg:
		if m.reload != nil {
			cmds = append(cmds, m.reloadCmd())
		}
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}

	case recordsLoadedMsg:
		if msg.err != nil {
			m.setError("reload failed: %v", msg.err)
			break
		}
		if err := m.SetRecords(msg.records); err != nil {
			m.setError("reload failed: %v", err)
			break
		}
		m.setStatus("reloaded %d records", len(msg.records))
	}

	m.layout()
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "esc":
		m.detailOpen = false
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "enter", " ":
		if tr := m.cursorRow(); tr != nil && tr.flat.HasChildren {
			m.Toggle(tr.flat.Record.Key)
		}
	case "left", "h":
		m.offsetX = max(0, m.offsetX-4)
	case "right", "l":
		m.offsetX = min(m.maxOffsetX(), m.offsetX+4)
	case "E":
		m.ExpandAll()
	case "C":
		m.CollapseAll()
	case "d":
		if tr := m.cursorRow(); tr != nil {
			m.openDetail(tr.flat.Record)
		}
	case "y":
		if tr := m.cursorRow(); tr != nil {
			m.copyRecord(tr.flat.Record)
		}
	case "pgup", "pgdown":
		if m.detailOpen {
			var cmd tea.Cmd
			m.detailVP, cmd = m.detailVP.Update(msg)
			return cmd
		}
		step := m.bodyHeight()
		if msg.String() == "pgup" {
			step = -step
		}
		m.top += step
		m.clampScroll()
	}
	return nil
}

func (m *Model) cursorRow() *tableRow {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

// moveCursor steps the keyboard hover over the rows that occupy lines and
// publishes it as the store's hover key.
func (m *Model) moveCursor(delta int) {
	if len(m.hits) == 0 {
		return
	}
	pos := -1
	for i, h := range m.hits {
		if h.idx == m.cursor {
			pos = i
			break
		}
	}
	switch {
	case pos < 0 && delta > 0:
		pos = 0
	case pos < 0:
		pos = len(m.hits) - 1
	default:
		pos = min(len(m.hits)-1, max(0, pos+delta))
	}
	m.cursor = m.hits[pos].idx
	m.hoverIdx = -1
	m.store.SetState(store.WithHoverKey(m.rows[m.cursor].flat.Record.Key))
	m.ensureVisible(pos)
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.detailOpen && msg.Y >= m.detailTop() {
		var cmd tea.Cmd
		m.detailVP, cmd = m.detailVP.Update(msg)
		return cmd
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.top -= 3
		m.clampScroll()
		return nil
	case tea.MouseButtonWheelDown:
		m.top += 3
		m.clampScroll()
		return nil
	}

	idx, pane := m.rowAt(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionMotion:
		m.moveHover(idx, pane, msg)

	case tea.MouseActionPress:
		// Terminals without motion reporting still hover on press.
		m.moveHover(idx, pane, msg)
		if idx < 0 {
			return nil
		}
		r := m.instance(idx, pane)
		switch msg.Button {
		case tea.MouseButtonLeft:
			r.Click(msg)
			now := m.now()
			if idx == m.lastClickIdx && now.Sub(m.lastClickAt) <= m.cfg.DoubleClickWindow() {
				r.DoubleClick(msg)
				m.lastClickIdx = -1
			} else {
				m.lastClickIdx = idx
				m.lastClickAt = now
			}
		case tea.MouseButtonRight:
			r.ContextMenu(msg)
		}
	}
	return nil
}

// instance returns the row instance drawn in pane.
func (m *Model) instance(idx int, pane model.FixedSide) *row.Row {
	tr := m.rows[idx]
	if pane.IsFixed() && tr.fixed != nil {
		return tr.fixed
	}
	return tr.scroll
}

// moveHover delivers leave to the instance the pointer left, then enter to
// the one it reached. Moving between the two panes of one row is a leave
// and an enter of the same key.
func (m *Model) moveHover(idx int, pane model.FixedSide, msg tea.MouseMsg) {
	if idx == m.hoverIdx && pane == m.hoverPane {
		return
	}
	if m.hoverIdx >= 0 && m.hoverIdx < len(m.rows) {
		m.instance(m.hoverIdx, m.hoverPane).MouseLeave(msg)
	}
	m.hoverIdx, m.hoverPane = idx, pane
	if idx >= 0 {
		m.instance(idx, pane).MouseEnter(msg)
		m.cursor = idx
	}
}
