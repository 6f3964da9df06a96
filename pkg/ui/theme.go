package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Contact tiers
	Inner   lipgloss.AdaptiveColor
	Active  lipgloss.AdaptiveColor
	Dormant lipgloss.AdaptiveColor

	// Email categories and urgency
	Busy   lipgloss.AdaptiveColor
	Steady lipgloss.AdaptiveColor
	Quiet  lipgloss.AdaptiveColor
	High   lipgloss.AdaptiveColor
	Normal lipgloss.AdaptiveColor
	Low    lipgloss.AdaptiveColor

	// Graph elements
	Anchor    lipgloss.AdaptiveColor
	Edge      lipgloss.AdaptiveColor
	RingGuide lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Styles
	Base     lipgloss.Style
	Header   lipgloss.Style
	Selected lipgloss.Style

	// Pre-computed styles, created once at startup instead of per-frame
	MutedText     lipgloss.Style
	SecondaryText lipgloss.Style
	PrimaryBold   lipgloss.Style
	PanelTitle    lipgloss.Style
	PanelBorder   lipgloss.Style
	StatusBar     lipgloss.Style

	// Fixed-hex accents, routed through ThemeFg so 16-color terminals
	// get a plain glyph instead of mangled truecolor.
	AnchorGlyph lipgloss.Style
	UrgentMark  lipgloss.Style
	QuietMark   lipgloss.Style
}

// DefaultTheme returns the standard Tokyo-night-inspired theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#3D59A1", Dark: "#7AA2F7"}, // Blue
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#565F89"}, // Gray
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#A9B1D6"}, // Dim

		Inner:   lipgloss.AdaptiveColor{Light: "#2A4E9E", Dark: "#7AA2F7"}, // Blue, closest orbit
		Active:  lipgloss.AdaptiveColor{Light: "#38720F", Dark: "#9ECE6A"}, // Green
		Dormant: lipgloss.AdaptiveColor{Light: "#777777", Dark: "#565F89"}, // Faded gray

		Busy:   lipgloss.AdaptiveColor{Light: "#B3254E", Dark: "#F7768E"}, // Red, crowded category
		Steady: lipgloss.AdaptiveColor{Light: "#00688B", Dark: "#7DCFFF"}, // Cyan
		Quiet:  lipgloss.AdaptiveColor{Light: "#888888", Dark: "#414B68"}, // Muted
		High:   lipgloss.AdaptiveColor{Light: "#B35A00", Dark: "#FF9E64"}, // Orange, urgent mail
		Normal: lipgloss.AdaptiveColor{Light: "#3D59A1", Dark: "#7AA2F7"}, // Blue
		Low:    lipgloss.AdaptiveColor{Light: "#777777", Dark: "#565F89"}, // Gray

		Anchor:    lipgloss.AdaptiveColor{Light: "#8A6800", Dark: "#E0AF68"}, // Gold, always center
		Edge:      lipgloss.AdaptiveColor{Light: "#999999", Dark: "#3B4261"},
		RingGuide: lipgloss.AdaptiveColor{Light: "#DDDDDD", Dark: "#292E42"},

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#3B4261"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#33467C"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#565F89"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#C0CAF5"})

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1A1B26"}).
		Bold(true).
		Padding(0, 1)

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Bold(true)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.SecondaryText = r.NewStyle().Foreground(t.Secondary)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.PanelTitle = r.NewStyle().Foreground(t.Primary).Bold(true).Padding(0, 1)
	t.PanelBorder = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	t.StatusBar = r.NewStyle().Foreground(t.Subtext).Padding(0, 1)

	t.AnchorGlyph = r.NewStyle().Foreground(ThemeFg("#E0AF68")).Bold(true)
	t.UrgentMark = r.NewStyle().Foreground(ThemeFg("#FF9E64")).Bold(true)
	t.QuietMark = r.NewStyle().Foreground(ThemeFg("#565F89"))

	return t
}

// ColorFor maps an entity color key to its theme color. Unknown keys fall
// back to the normal member color so new entity kinds degrade gracefully.
func (t Theme) ColorFor(key string) lipgloss.AdaptiveColor {
	switch key {
	case "inner":
		return t.Inner
	case "active":
		return t.Active
	case "dormant":
		return t.Dormant
	case "busy":
		return t.Busy
	case "steady":
		return t.Steady
	case "quiet":
		return t.Quiet
	case "high":
		return t.High
	case "normal":
		return t.Normal
	case "low":
		return t.Low
	default:
		return t.Normal
	}
}

// TestTheme returns a theme suitable for use in tests (stdout renderer).
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
