package row

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/rowview/pkg/model"
)

// CellContext is everything a cell renderer gets for one cell.
type CellContext struct {
	PrefixCls  string
	Record     model.Record
	IndentSize int
	Indent     int
	Index      int
	Column     model.Column
	ExpandIcon string // empty unless this is the expand-affordance cell
}

// CellRenderer renders one data cell.
type CellRenderer interface {
	RenderCell(ctx CellContext) string
}

// CellRendererFunc adapts a function to CellRenderer.
type CellRendererFunc func(ctx CellContext) string

func (f CellRendererFunc) RenderCell(ctx CellContext) string { return f(ctx) }

// TextCellRenderer is the default renderer: the column value, prefixed in
// the expand-affordance cell by the indentation and the expand icon, fitted
// to the column width.
type TextCellRenderer struct {
	Style lipgloss.Style
}

// NewTextCellRenderer returns a renderer with one column of right padding.
func NewTextCellRenderer() TextCellRenderer {
	return TextCellRenderer{Style: lipgloss.NewStyle().PaddingRight(1)}
}

func (r TextCellRenderer) RenderCell(ctx CellContext) string {
	text := ctx.Column.Value(ctx.Record, ctx.Index)
	if ctx.ExpandIcon != "" {
		text = strings.Repeat(" ", ctx.IndentSize*ctx.Indent) + ctx.ExpandIcon + " " + text
	}

	w := ctx.Column.Width
	if w <= 0 {
		return r.Style.Render(text)
	}
	if !ctx.Column.Wrap {
		text = truncateLines(text, w)
	}
	return r.Style.
		Width(w + r.Style.GetHorizontalPadding()).
		Align(alignPosition(ctx.Column.Align)).
		Render(text)
}

func alignPosition(a model.Align) lipgloss.Position {
	switch a {
	case model.AlignCenter:
		return lipgloss.Center
	case model.AlignRight:
		return lipgloss.Right
	default:
		return lipgloss.Left
	}
}

// truncateLines cuts every line of s to maxWidth cells.
func truncateLines(s string, maxWidth int) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if runewidth.StringWidth(line) > maxWidth {
			lines[i] = runewidth.Truncate(line, maxWidth, "…")
		}
	}
	return strings.Join(lines, "\n")
}
