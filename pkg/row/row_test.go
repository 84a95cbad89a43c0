package row

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/rowview/pkg/model"
	"github.com/vanderheijden86/rowview/pkg/store"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string { return ansiRe.ReplaceAllString(s, "") }

func testColumns() []model.Column {
	return []model.Column{
		{Key: "name", DataIndex: "name", Width: 10},
		{DataIndex: "size", Width: 4, Align: model.AlignRight},
	}
}

func testRecord(key string) model.Record {
	return model.Record{
		Key:    model.StringKey(key),
		Fields: map[string]any{"name": "row " + key, "size": 12.0},
	}
}

func testConfig(key string) Config {
	return Config{
		Record:        testRecord(key),
		Columns:       testColumns(),
		RowKey:        model.StringKey(key),
		HasExpandIcon: func(int) bool { return false },
	}
}

func TestNewRequiresRowKey(t *testing.T) {
	cfg := testConfig("r1")
	cfg.RowKey = model.RowKey{}
	if _, err := New(cfg, Facts{Visible: true}); !errors.Is(err, ErrMissingRowKey) {
		t.Errorf("expected ErrMissingRowKey, got %v", err)
	}
}

func TestNewRequiresHasExpandIcon(t *testing.T) {
	cfg := testConfig("r1")
	cfg.HasExpandIcon = nil
	if _, err := New(cfg, Facts{Visible: true}); !errors.Is(err, ErrMissingHasExpandIcon) {
		t.Errorf("expected ErrMissingHasExpandIcon, got %v", err)
	}
}

func TestMustNewPanicsOnConfigError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustNew(Config{}, Facts{})
}

func TestOptionalCallbacksDefaultToNoops(t *testing.T) {
	r := MustNew(testConfig("r1"), Facts{Visible: true})
	ev := tea.MouseMsg{}
	r.Click(ev)
	r.DoubleClick(ev)
	r.ContextMenu(ev)
	r.MouseEnter(ev)
	r.MouseLeave(ev)
	if v := r.Render(); !v.Rendered {
		t.Error("expected visible row to render")
	}
}

func TestNeverShownRendersNothing(t *testing.T) {
	r := MustNew(testConfig("r1"), Facts{Visible: false})
	v := r.Render()
	if v.Rendered || v.Content != "" || v.Style != nil {
		t.Errorf("expected empty view, got %+v", v)
	}
	if v.Height() != 0 {
		t.Errorf("expected zero height, got %d", v.Height())
	}
}

func TestVisibilityIsMonotonic(t *testing.T) {
	r := MustNew(testConfig("r1"), Facts{Visible: false})
	r.SetFacts(Facts{Visible: false, Hovered: true})
	if r.ShouldRender() {
		t.Fatal("hover alone must not make the row eligible")
	}

	r.SetFacts(Facts{Visible: true})
	if !r.ShouldRender() || !r.Render().Rendered {
		t.Fatal("expected row eligible once visible")
	}

	r.SetFacts(Facts{Visible: false})
	v := r.Render()
	if !v.Rendered {
		t.Fatal("row that was shown must keep rendering while hidden")
	}
	if !v.Style.Hidden || v.Content != "" || v.Height() != 0 {
		t.Errorf("expected hidden view with no lines, got %+v", v)
	}

	r.SetFacts(Facts{Visible: true})
	if v := r.Render(); v.Style.Hidden || v.Content == "" {
		t.Errorf("expected row shown again, got %+v", v)
	}
}

func TestGenerationBumpsOnFactChange(t *testing.T) {
	r := MustNew(testConfig("r1"), Facts{Visible: true})
	g := r.Generation()
	r.SetFacts(Facts{Visible: true})
	if r.Generation() != g {
		t.Error("identical facts must not bump generation")
	}
	r.SetFacts(Facts{Visible: true, Hovered: true})
	if r.Generation() != g+1 {
		t.Errorf("expected generation %d, got %d", g+1, r.Generation())
	}
}

func TestClassName(t *testing.T) {
	cfg := testConfig("r1")
	cfg.ClassName = "odd"
	cfg.Indent = 2
	r := MustNew(cfg, Facts{Visible: true})
	if got, want := r.ClassName(), "rv-table-row odd rv-table-row-level-2"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	r.SetFacts(Facts{Visible: true, Hovered: true})
	if got, want := r.ClassName(), "rv-table-row odd rv-table-row-hover rv-table-row-level-2"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	plain := MustNew(testConfig("r2"), Facts{Visible: true})
	if got, want := plain.ClassName(), "rv-table-row rv-table-row-level-0"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCellsUseRendererAndExpandIcon(t *testing.T) {
	var seen []CellContext
	cfg := testConfig("r1")
	cfg.Indent = 1
	cfg.IndentSize = 3
	cfg.HasExpandIcon = func(i int) bool { return i == 1 }
	cfg.RenderExpandIcon = func() string { return "▸" }
	cfg.RenderExpandIconCell = func() []string { return []string{"[+]"} }
	cfg.CellRenderer = CellRendererFunc(func(ctx CellContext) string {
		seen = append(seen, ctx)
		return ctx.Column.ID()
	})
	r := MustNew(cfg, Facts{Visible: true})

	cells := r.Cells()
	want := []string{"[+]", "name", "size"}
	if strings.Join(cells, ",") != strings.Join(want, ",") {
		t.Fatalf("expected cells %v, got %v", want, cells)
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 renderer calls, got %d", len(seen))
	}
	if seen[0].ExpandIcon != "" || seen[1].ExpandIcon != "▸" {
		t.Errorf("expand icon only on column 1, got %q and %q", seen[0].ExpandIcon, seen[1].ExpandIcon)
	}
	ctx := seen[1]
	if ctx.Indent != 1 || ctx.IndentSize != 3 || ctx.Index != 0 || ctx.PrefixCls != DefaultPrefixCls || ctx.Record.Key != model.StringKey("r1") {
		t.Errorf("unexpected context %+v", ctx)
	}
}

func TestTextCellRendererIndentsExpandCell(t *testing.T) {
	r := NewTextCellRenderer()
	out := stripANSI(r.RenderCell(CellContext{
		Record:     testRecord("r1"),
		Indent:     2,
		IndentSize: 2,
		Column:     model.Column{DataIndex: "name"},
		ExpandIcon: "▾",
	}))
	if !strings.HasPrefix(out, "    ▾ row r1") {
		t.Errorf("unexpected cell %q", out)
	}

	plain := stripANSI(r.RenderCell(CellContext{
		Record: testRecord("r1"),
		Indent: 2,
		Column: model.Column{DataIndex: "name"},
	}))
	if !strings.HasPrefix(plain, "row r1") {
		t.Errorf("indent belongs to the expand cell only, got %q", plain)
	}
}

func TestTextCellRendererTruncatesAndWraps(t *testing.T) {
	r := NewTextCellRenderer()
	rec := model.Record{Key: model.IntKey(1), Fields: map[string]any{"d": "alpha beta gamma delta"}}

	cut := stripANSI(r.RenderCell(CellContext{Record: rec, Column: model.Column{DataIndex: "d", Width: 8}}))
	if strings.Contains(cut, "\n") || !strings.Contains(cut, "…") {
		t.Errorf("expected single truncated line, got %q", cut)
	}

	wrapped := r.RenderCell(CellContext{Record: rec, Column: model.Column{DataIndex: "d", Width: 8, Wrap: true}})
	if lines := strings.Count(wrapped, "\n") + 1; lines < 2 {
		t.Errorf("expected wrapped cell over several lines, got %q", wrapped)
	}
}

func TestRenderAppliesHeightConstraint(t *testing.T) {
	cfg := testConfig("r1")
	cfg.Fixed = model.FixedLeft
	r := MustNew(cfg, Facts{Visible: true, Height: 3, HasHeight: true})
	v := r.Render()
	if v.Height() != 3 {
		t.Errorf("expected constrained height 3, got %d (%q)", v.Height(), v.Content)
	}
	if !strings.Contains(stripANSI(v.Content), "row r1") {
		t.Errorf("expected cell text, got %q", v.Content)
	}
}

func TestMouseEnterUpdatesHoverBeforeCallback(t *testing.T) {
	st := store.New()
	var order []string
	var hoverSeenByCallback model.RowKey

	cfg := testConfig("r7")
	cfg.OnHover = func(isEntering bool, key model.RowKey) {
		if isEntering && key == model.StringKey("r7") {
			order = append(order, "onHover(true,r7)")
		}
		st.HoverHandler()(isEntering, key)
	}
	cfg.OnRowMouseEnter = func(rec model.Record, index int, ev tea.MouseMsg) {
		order = append(order, "onRowMouseEnter")
		hoverSeenByCallback = st.GetState().CurrentHoverKey
	}
	r := MustNew(cfg, Facts{Visible: true})

	r.MouseEnter(tea.MouseMsg{Action: tea.MouseActionMotion})
	if len(order) != 2 || order[0] != "onHover(true,r7)" || order[1] != "onRowMouseEnter" {
		t.Fatalf("unexpected order %v", order)
	}
	if hoverSeenByCallback != model.StringKey("r7") {
		t.Errorf("callback should observe hover r7, got %v", hoverSeenByCallback)
	}
}

func TestMouseLeaveOrder(t *testing.T) {
	var order []string
	cfg := testConfig("r1")
	cfg.OnHover = func(isEntering bool, key model.RowKey) {
		if !isEntering {
			order = append(order, "hover-false")
		}
	}
	cfg.OnRowMouseLeave = func(model.Record, int, tea.MouseMsg) { order = append(order, "leave") }
	MustNew(cfg, Facts{Visible: true}).MouseLeave(tea.MouseMsg{})
	if strings.Join(order, ",") != "hover-false,leave" {
		t.Errorf("unexpected order %v", order)
	}
}

func TestClickHandlersReceiveRecordAndIndex(t *testing.T) {
	var got []string
	cfg := testConfig("r1")
	cfg.Index = 4
	record := func(name string) EventHandler {
		return func(rec model.Record, index int, ev tea.MouseMsg) {
			if rec.Key == model.StringKey("r1") && index == 4 {
				got = append(got, name)
			}
		}
	}
	cfg.OnRowClick = record("click")
	cfg.OnRowDoubleClick = record("dbl")
	cfg.OnRowContextMenu = record("ctx")
	r := MustNew(cfg, Facts{Visible: true})
	r.Click(tea.MouseMsg{})
	r.DoubleClick(tea.MouseMsg{})
	r.ContextMenu(tea.MouseMsg{})
	if strings.Join(got, ",") != "click,dbl,ctx" {
		t.Errorf("unexpected calls %v", got)
	}
}

func TestOnAttachedPublishesHeightForScrollableRow(t *testing.T) {
	st := store.New()
	cfg := testConfig("r3")
	cfg.Store = st
	r := MustNew(cfg, Facts{Visible: true})

	if err := r.OnAttached(5); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if h := st.GetState().ExpandedRowsHeight[model.StringKey("r3")]; h != 5 {
		t.Errorf("expected published height 5, got %d", h)
	}
	if err := r.OnAttached(6); !errors.Is(err, ErrAlreadyAttached) {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}

	r.Detach()
	if err := r.OnAttached(7); err != nil {
		t.Fatalf("re-attach: %v", err)
	}
	if h := st.GetState().ExpandedRowsHeight[model.StringKey("r3")]; h != 7 {
		t.Errorf("expected remeasured height 7, got %d", h)
	}
}

func TestOnAttachedFixedRowDoesNotMeasure(t *testing.T) {
	st := store.New()
	cfg := testConfig("r3")
	cfg.Store = st
	cfg.Fixed = model.FixedLeft
	r := MustNew(cfg, Facts{Visible: true})
	if err := r.OnAttached(9); err != nil {
		t.Fatal(err)
	}
	if _, ok := st.GetState().ExpandedRowsHeight[model.StringKey("r3")]; ok {
		t.Error("fixed row must not publish a height")
	}
}
