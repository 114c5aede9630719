// Package theme holds the palette and shared styles of the interactive
// picker.
package theme

import (
	"maps"
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
)

// IconSet maps semantic names to the glyphs shown for them.
type IconSet map[string]string

func (s IconSet) clone() IconSet {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// Colors is the picker palette.
type Colors struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Muted      lipgloss.Color
}

// Spacing captures the horizontal padding of the bars.
type Spacing struct {
	HeaderHPadding int
	StatusHPadding int
}

// Theme bundles colors, spacing and icons.
type Theme struct {
	colors  Colors
	spacing Spacing
	icons   IconSet
}

// Default returns the picker theme, with ASCII icons on terminals that
// rarely render emoji.
func Default() Theme {
	return Theme{
		colors: Colors{
			Primary:    lipgloss.Color("#1f5f8b"),
			Secondary:  lipgloss.Color("#3d7ea6"),
			Accent:     lipgloss.Color("#f2b134"),
			Background: lipgloss.Color("#f8f8f8"),
			Muted:      lipgloss.Color("#9ba8c0"),
		},
		spacing: Spacing{HeaderHPadding: 1, StatusHPadding: 1},
		icons:   defaultIconSet(),
	}
}

// Icon returns a themed icon, falling back to ASCII, or "" when unknown.
func (t Theme) Icon(name string) string {
	if icon, ok := t.icons[name]; ok {
		return icon
	}
	return asciiIcons[name]
}

// HeaderStyle is the style of the prompt line above the candidates.
func (t Theme) HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Background(t.colors.Primary).
		Foreground(t.colors.Background).
		Padding(0, t.spacing.HeaderHPadding)
}

// StatusBarStyle is the style of the footer with counts and key hints.
func (t Theme) StatusBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.colors.Secondary).
		Foreground(t.colors.Background).
		Padding(0, t.spacing.StatusHPadding)
}

// PromptStyle is the style of the filter prompt glyph.
func (t Theme) PromptStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.colors.Accent)
}

// FilterStyle is the style of the typed filter text.
func (t Theme) FilterStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.colors.Primary)
}

// MutedStyle renders secondary text such as the empty-list notice.
func (t Theme) MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Italic(true).Foreground(t.colors.Muted)
}

func defaultIconSet() IconSet {
	if isLimitedTerminal() {
		return asciiIcons.clone()
	}
	return emojiIcons.clone()
}

// isLimitedTerminal reports environments where emoji rarely render.
func isLimitedTerminal() bool {
	if os.Getenv("SSH_CLIENT") != "" || os.Getenv("SSH_TTY") != "" || os.Getenv("SSH_CONNECTION") != "" {
		return true
	}
	return runtime.GOOS == "windows"
}

var emojiIcons = IconSet{
	"prompt": "❯",
	"arrows": "↑↓",
}

var asciiIcons = IconSet{
	"prompt": ">",
	"arrows": "^v",
}
