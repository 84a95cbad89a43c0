// Package row implements the table row component: one logical row rendered
// in either the scrollable pane or the fixed-column pane, kept in sync with
// the shared table store.
//
// A row is created with New (or Connect, which also subscribes it to a
// store), renders through Render, receives pointer events through Click,
// DoubleClick, ContextMenu, MouseEnter and MouseLeave, and reports its
// measured height through OnAttached once per mount.
package row

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/rowview/pkg/debug"
	"github.com/vanderheijden86/rowview/pkg/metrics"
	"github.com/vanderheijden86/rowview/pkg/model"
	"github.com/vanderheijden86/rowview/pkg/store"
)

// Configuration errors.
var (
	ErrMissingRowKey        = errors.New("row: RowKey is required")
	ErrMissingHasExpandIcon = errors.New("row: HasExpandIcon is required")
	ErrAlreadyAttached      = errors.New("row: already attached")
)

// DefaultPrefixCls is the base class of every row.
const DefaultPrefixCls = "rv-table-row"

// DefaultIndentSize is the number of cells per indentation level.
const DefaultIndentSize = 2

// EventHandler receives row pointer events.
type EventHandler func(rec model.Record, index int, ev tea.MouseMsg)

// Styles are the lipgloss styles applied to a whole row.
type Styles struct {
	Base  lipgloss.Style
	Hover lipgloss.Style
}

// DefaultStyles returns unstyled rows with a reverse-video hover.
func DefaultStyles() Styles {
	return Styles{
		Base:  lipgloss.NewStyle(),
		Hover: lipgloss.NewStyle().Reverse(true),
	}
}

// Config is the row's configuration surface. RowKey and HasExpandIcon are
// required; everything else has a working default.
type Config struct {
	PrefixCls    string // default DefaultPrefixCls
	ClassName    string
	Record       model.Record
	Columns      []model.Column
	RowKey       model.RowKey
	Index        int
	AncestorKeys []model.RowKey
	Indent       int
	IndentSize   int             // default DefaultIndentSize
	Fixed        model.FixedSide // non-empty for the frozen-column pane
	Store        *store.Store    // destination of height measurements; nil skips publishing

	CellRenderer CellRenderer // default NewTextCellRenderer()
	Styles       *Styles      // default DefaultStyles()

	OnRowClick       EventHandler
	OnRowDoubleClick EventHandler
	OnRowContextMenu EventHandler
	OnRowMouseEnter  EventHandler
	OnRowMouseLeave  EventHandler
	OnHover          func(isEntering bool, key model.RowKey)

	HasExpandIcon        func(columnIndex int) bool
	RenderExpandIcon     func() string
	RenderExpandIconCell func() []string // cells placed before the data cells
}

// Props returns the fields Derive depends on.
func (c Config) Props() Props {
	return Props{
		RowKey:       c.RowKey,
		Index:        c.Index,
		AncestorKeys: c.AncestorKeys,
		Fixed:        c.Fixed,
	}
}

func noopEvent(model.Record, int, tea.MouseMsg) {}

func (c *Config) applyDefaults() {
	if c.PrefixCls == "" {
		c.PrefixCls = DefaultPrefixCls
	}
	if c.IndentSize == 0 {
		c.IndentSize = DefaultIndentSize
	}
	if c.CellRenderer == nil {
		c.CellRenderer = NewTextCellRenderer()
	}
	if c.Styles == nil {
		s := DefaultStyles()
		c.Styles = &s
	}
	for _, h := range []*EventHandler{
		&c.OnRowClick, &c.OnRowDoubleClick, &c.OnRowContextMenu,
		&c.OnRowMouseEnter, &c.OnRowMouseLeave,
	} {
		if *h == nil {
			*h = noopEvent
		}
	}
	if c.OnHover == nil {
		c.OnHover = func(bool, model.RowKey) {}
	}
	if c.RenderExpandIcon == nil {
		c.RenderExpandIcon = func() string { return "" }
	}
	if c.RenderExpandIconCell == nil {
		c.RenderExpandIconCell = func() []string { return nil }
	}
}

// Row is one rendered instance of a logical row.
type Row struct {
	cfg   Config
	facts Facts

	// shouldRender flips to true the first time the row is visible and
	// never flips back: hidden rows keep reconciling behind a hidden style.
	shouldRender bool
	style        styleCache
	attached     bool
	generation   uint64

	unsubscribe func()
}

// New validates cfg, applies defaults and returns a row in the
// never-shown state unless facts already say it is visible.
func New(cfg Config, facts Facts) (*Row, error) {
	if cfg.RowKey.IsZero() {
		return nil, ErrMissingRowKey
	}
	if cfg.HasExpandIcon == nil {
		return nil, fmt.Errorf("row %s: %w", cfg.RowKey, ErrMissingHasExpandIcon)
	}
	cfg.applyDefaults()
	return &Row{
		cfg:          cfg,
		facts:        facts,
		shouldRender: facts.Visible,
	}, nil
}

// MustNew is New that panics on configuration errors.
func MustNew(cfg Config, facts Facts) *Row {
	r, err := New(cfg, facts)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Row) Key() model.RowKey { return r.cfg.RowKey }
func (r *Row) Index() int { return r.cfg.Index }
func (r *Row) Record() model.Record { return r.cfg.Record }
func (r *Row) Fixed() model.FixedSide { return r.cfg.Fixed }
func (r *Row) Facts() Facts { return r.facts }
func (r *Row) Attached() bool { return r.attached }
func (r *Row) ShouldRender() bool { return r.shouldRender }
func (r *Row) AncestorKeys() []model.RowKey { return r.cfg.AncestorKeys }

// Generation increases every time the row's facts change.
func (r *Row) Generation() uint64 { return r.generation }

// SetFacts feeds newly derived facts into the row.
func (r *Row) SetFacts(f Facts) {
	if f.Visible {
		r.shouldRender = true
	}
	if f == r.facts {
		return
	}
	r.facts = f
	r.generation++
}

// SetRecord replaces the row's data, e.g. after a reload.
func (r *Row) SetRecord(rec model.Record) {
	r.cfg.Record = rec
	r.generation++
}

// Style returns the memoized row style.
func (r *Row) Style() *Style {
	return r.style.resolve(r.facts.Height, r.facts.HasHeight, r.facts.Visible)
}

// ClassName returns the row's class list: prefix, caller class, hover
// class when hovered, then the level class.
func (r *Row) ClassName() string {
	parts := []string{r.cfg.PrefixCls}
	if r.cfg.ClassName != "" {
		parts = append(parts, r.cfg.ClassName)
	}
	if r.facts.Hovered {
		parts = append(parts, r.cfg.PrefixCls+"-hover")
	}
	parts = append(parts, fmt.Sprintf("%s-level-%d", r.cfg.PrefixCls, r.cfg.Indent))
	return strings.Join(parts, " ")
}

// Cells renders the expand-affordance cells followed by one cell per column.
func (r *Row) Cells() []string {
	cells := append([]string(nil), r.cfg.RenderExpandIconCell()...)
	for i, col := range r.cfg.Columns {
		var icon string
		if r.cfg.HasExpandIcon(i) {
			icon = r.cfg.RenderExpandIcon()
		}
		cells = append(cells, r.cfg.CellRenderer.RenderCell(CellContext{
			PrefixCls:  r.cfg.PrefixCls,
			Record:     r.cfg.Record,
			IndentSize: r.cfg.IndentSize,
			Indent:     r.cfg.Indent,
			Index:      r.cfg.Index,
			Column:     col,
			ExpandIcon: icon,
		}))
	}
	return cells
}

// View is the output of one render.
type View struct {
	Rendered  bool   // false while the row has never been visible
	Content   string // empty when hidden
	Style     *Style
	ClassName string
}

// Height is the number of terminal lines the view occupies.
func (v View) Height() int {
	if !v.Rendered || v.Style.Hidden {
		return 0
	}
	return lipgloss.Height(v.Content)
}

// Render produces the row's view. A never-shown row produces nothing; a
// hidden row produces its style and class but no lines.
func (r *Row) Render() View {
	if !r.shouldRender {
		return View{}
	}
	defer metrics.Timer(metrics.RowRender)()

	st := r.Style()
	v := View{Rendered: true, Style: st, ClassName: r.ClassName()}
	if st.Hidden {
		return v
	}

	ls := r.cfg.Styles.Base
	if r.facts.Hovered {
		ls = r.cfg.Styles.Hover
	}
	if st.Height > 0 {
		ls = ls.Height(st.Height)
	}
	v.Content = ls.Render(lipgloss.JoinHorizontal(lipgloss.Top, r.Cells()...))
	return v
}

// Click forwards a click to the caller.
func (r *Row) Click(ev tea.MouseMsg) {
	r.cfg.OnRowClick(r.cfg.Record, r.cfg.Index, ev)
}

// DoubleClick forwards a double click to the caller.
func (r *Row) DoubleClick(ev tea.MouseMsg) {
	r.cfg.OnRowDoubleClick(r.cfg.Record, r.cfg.Index, ev)
}

// ContextMenu forwards a context-menu request to the caller.
func (r *Row) ContextMenu(ev tea.MouseMsg) {
	r.cfg.OnRowContextMenu(r.cfg.Record, r.cfg.Index, ev)
}

// MouseEnter reports the hover before the caller's callback runs, so the
// callback already observes the new hover state.
func (r *Row) MouseEnter(ev tea.MouseMsg) {
	r.cfg.OnHover(true, r.cfg.RowKey)
	r.cfg.OnRowMouseEnter(r.cfg.Record, r.cfg.Index, ev)
}

// MouseLeave reports the hover end, then calls the caller's callback.
func (r *Row) MouseLeave(ev tea.MouseMsg) {
	r.cfg.OnHover(false, r.cfg.RowKey)
	r.cfg.OnRowMouseLeave(r.cfg.Record, r.cfg.Index, ev)
}

// OnAttached completes a mount with the measured height of the rendered
// row. Scrollable-pane rows publish it as ExpandedRowsHeight[rowKey];
// fixed-pane rows consume published heights and never measure. It must be
// called once per mount; Detach ends the mount.
func (r *Row) OnAttached(measuredHeight int) error {
	if r.attached {
		return fmt.Errorf("row %s: %w", r.cfg.RowKey, ErrAlreadyAttached)
	}
	r.attached = true
	metrics.RowMounts.Inc()

	if r.cfg.Fixed.IsFixed() || r.cfg.Store == nil {
		return nil
	}
	defer metrics.Timer(metrics.RowMeasure)()
	debug.Log("row %s measured %d lines", r.cfg.RowKey, measuredHeight)
	r.cfg.Store.SetState(store.WithRowHeight(r.cfg.RowKey, measuredHeight))
	return nil
}

// Detach ends the current mount so the next OnAttached remeasures.
func (r *Row) Detach() {
	r.attached = false
}

// Close detaches the row and drops its store subscription, if any.
func (r *Row) Close() {
	r.attached = false
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
}
