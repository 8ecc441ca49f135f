// Package theme provides the colour palettes used by the simplegit TUI.
package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines all colors used in the application UI.
type Theme struct {
	Name      string
	Accent    lipgloss.Color
	AccentFg  lipgloss.Color // Foreground color for text on Accent background
	AccentDim lipgloss.Color
	Border    lipgloss.Color
	MutedFg   lipgloss.Color
	TextFg    lipgloss.Color
	SuccessFg lipgloss.Color
	WarnFg    lipgloss.Color
	ErrorFg   lipgloss.Color
	Cyan      lipgloss.Color
	Light     bool
}

// Theme names.
const (
	DraculaName        = "dracula"
	DraculaLightName   = "dracula-light"
	NordName           = "nord"
	GruvboxDarkName    = "gruvbox-dark"
	SolarizedLightName = "solarized-light"
)

var registry = map[string]func() *Theme{
	DraculaName:        Dracula,
	DraculaLightName:   DraculaLight,
	NordName:           Nord,
	GruvboxDarkName:    GruvboxDark,
	SolarizedLightName: SolarizedLight,
}

// Dracula returns the Dracula theme (dark background, vibrant colors).
func Dracula() *Theme {
	return &Theme{
		Name:      DraculaName,
		Accent:    lipgloss.Color("#BD93F9"),
		AccentFg:  lipgloss.Color("#282A36"),
		AccentDim: lipgloss.Color("#44475A"),
		Border:    lipgloss.Color("#6272A4"),
		MutedFg:   lipgloss.Color("#6272A4"),
		TextFg:    lipgloss.Color("#F8F8F2"),
		SuccessFg: lipgloss.Color("#50FA7B"),
		WarnFg:    lipgloss.Color("#FFB86C"),
		ErrorFg:   lipgloss.Color("#FF5555"),
		Cyan:      lipgloss.Color("#8BE9FD"),
	}
}

// DraculaLight returns the Dracula theme adapted for light backgrounds.
func DraculaLight() *Theme {
	return &Theme{
		Name:      DraculaLightName,
		Accent:    lipgloss.Color("#c6dbe5"),
		AccentFg:  lipgloss.Color("#24292F"),
		AccentDim: lipgloss.Color("#F3E8FF"),
		Border:    lipgloss.Color("#D0D7DE"),
		MutedFg:   lipgloss.Color("#6E7781"),
		TextFg:    lipgloss.Color("#24292F"),
		SuccessFg: lipgloss.Color("#059669"),
		WarnFg:    lipgloss.Color("#D97706"),
		ErrorFg:   lipgloss.Color("#DC2626"),
		Cyan:      lipgloss.Color("#0891B2"),
		Light:     true,
	}
}

// Nord returns the Nord theme.
func Nord() *Theme {
	return &Theme{
		Name:      NordName,
		Accent:    lipgloss.Color("#88C0D0"),
		AccentFg:  lipgloss.Color("#2E3440"),
		AccentDim: lipgloss.Color("#3B4252"),
		Border:    lipgloss.Color("#4C566A"),
		MutedFg:   lipgloss.Color("#81A1C1"),
		TextFg:    lipgloss.Color("#E5E9F0"),
		SuccessFg: lipgloss.Color("#A3BE8C"),
		WarnFg:    lipgloss.Color("#EBCB8B"),
		ErrorFg:   lipgloss.Color("#BF616A"),
		Cyan:      lipgloss.Color("#88C0D0"),
	}
}

// GruvboxDark returns the Gruvbox dark theme.
func GruvboxDark() *Theme {
	return &Theme{
		Name:      GruvboxDarkName,
		Accent:    lipgloss.Color("#FABD2F"),
		AccentFg:  lipgloss.Color("#282828"),
		AccentDim: lipgloss.Color("#3C3836"),
		Border:    lipgloss.Color("#665C54"),
		MutedFg:   lipgloss.Color("#A89984"),
		TextFg:    lipgloss.Color("#EBDBB2"),
		SuccessFg: lipgloss.Color("#B8BB26"),
		WarnFg:    lipgloss.Color("#FE8019"),
		ErrorFg:   lipgloss.Color("#FB4934"),
		Cyan:      lipgloss.Color("#8EC07C"),
	}
}

// SolarizedLight returns the Solarized light theme.
func SolarizedLight() *Theme {
	return &Theme{
		Name:      SolarizedLightName,
		Accent:    lipgloss.Color("#268BD2"),
		AccentFg:  lipgloss.Color("#FDF6E3"),
		AccentDim: lipgloss.Color("#EEE8D5"),
		Border:    lipgloss.Color("#93A1A1"),
		MutedFg:   lipgloss.Color("#839496"),
		TextFg:    lipgloss.Color("#586E75"),
		SuccessFg: lipgloss.Color("#859900"),
		WarnFg:    lipgloss.Color("#CB4B16"),
		ErrorFg:   lipgloss.Color("#DC322F"),
		Cyan:      lipgloss.Color("#2AA198"),
		Light:     true,
	}
}

// GetTheme returns a theme by name, or Dracula if not found.
func GetTheme(name string) *Theme {
	if ctor, ok := registry[name]; ok {
		return ctor()
	}
	return Dracula()
}

// StatusColor picks the colour used for a porcelain status code.
func (t *Theme) StatusColor(code byte) lipgloss.Color {
	switch code {
	case 'A':
		return t.SuccessFg
	case 'D':
		return t.ErrorFg
	case '?':
		return t.MutedFg
	case 'R', 'C':
		return t.Cyan
	default:
		return t.WarnFg
	}
}

// DefaultDark returns the default dark theme name.
func DefaultDark() string {
	return DraculaName
}

// AvailableThemes returns the sorted list of theme names.
func AvailableThemes() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
