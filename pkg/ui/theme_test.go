package ui

import (
	"testing"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

func TestDefaultTheme(t *testing.T) {
	renderer := lipgloss.NewRenderer(nil)
	theme := DefaultTheme(renderer)

	if theme.Renderer != renderer {
		t.Error("DefaultTheme renderer mismatch")
	}
	for name, c := range map[string]lipgloss.AdaptiveColor{
		"Primary": theme.Primary,
		"Border":  theme.Border,
		"Muted":   theme.Muted,
	} {
		if c.Light == "" && c.Dark == "" {
			t.Errorf("DefaultTheme %s color is empty", name)
		}
	}
}

func TestRowStyles_HoverDiffersFromBase(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()

	TermProfile = colorprofile.ANSI
	s := DefaultTheme(lipgloss.NewRenderer(nil)).RowStyles()
	if !s.Hover.GetReverse() {
		t.Error("hover should fall back to reverse video without true color")
	}
	if s.Base.GetReverse() {
		t.Error("base row style must not be reversed")
	}
}

func TestThemeBg(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()

	tests := []struct {
		profile colorprofile.Profile
		noColor bool
	}{
		{colorprofile.TrueColor, false},
		{colorprofile.ANSI256, true},
		{colorprofile.ANSI, true},
	}
	for _, tt := range tests {
		TermProfile = tt.profile
		_, isNo := ThemeBg("#282A36").(lipgloss.NoColor)
		if isNo != tt.noColor {
			t.Errorf("profile %v: NoColor = %v, want %v", tt.profile, isNo, tt.noColor)
		}
	}
}

func TestThemeFg(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()

	TermProfile = colorprofile.ANSI256
	if _, ok := ThemeFg("#FF6B6B").(lipgloss.ANSIColor); ok {
		t.Error("ThemeFg should return hex color in ANSI256 mode, got ANSIColor")
	}

	TermProfile = colorprofile.ANSI
	got, ok := ThemeFg("#FF6B6B").(lipgloss.ANSIColor)
	if !ok || got != 7 {
		t.Errorf("ThemeFg should return ANSI white (7) in ANSI mode, got %v", got)
	}
}
