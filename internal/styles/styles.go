package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme represents a UI theme
type Theme interface {
	GetStyles() Styles
	GetName() string
	GetColors() ColorScheme
}

// ColorScheme defines the color palette for a theme
type ColorScheme struct {
	// Primary colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Status colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	// Text colors
	Foreground lipgloss.Color
	Background lipgloss.Color
	Muted      lipgloss.Color

	// UI element colors
	Border    lipgloss.Color
	Selection lipgloss.Color
}

// Styles contains the lipgloss styles of the terminal widget host
type Styles struct {
	Colors ColorScheme

	// Layout
	Header lipgloss.Style
	Footer lipgloss.Style

	// Form
	Label        lipgloss.Style
	Field        lipgloss.Style
	FieldFocused lipgloss.Style
	Model        lipgloss.Style
	ModelActive  lipgloss.Style

	// Report
	Summary     lipgloss.Style
	TableHeader lipgloss.Style
	TableCell   lipgloss.Style

	// Status
	StatusError   lipgloss.Style
	StatusLoading lipgloss.Style
	Muted         lipgloss.Style

	// Help
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// DefaultTheme implements the default theme
type DefaultTheme struct {
	name string
}

// DarkTheme implements a dark theme
type DarkTheme struct {
	name string
}

// LightTheme implements a light theme
type LightTheme struct {
	name string
}

var (
	defaultTheme = &DefaultTheme{name: "default"}
	darkTheme    = &DarkTheme{name: "dark"}
	lightTheme   = &LightTheme{name: "light"}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	switch name {
	case "dark":
		return darkTheme
	case "light":
		return lightTheme
	default:
		return defaultTheme
	}
}

// GetAvailableThemes returns all available themes
func GetAvailableThemes() []string {
	return []string{"default", "dark", "light"}
}

func (t *DefaultTheme) GetName() string {
	return t.name
}

func (t *DefaultTheme) GetColors() ColorScheme {
	return ColorScheme{
		Primary:    lipgloss.Color("#007ACC"),
		Secondary:  lipgloss.Color("#6C7B7F"),
		Accent:     lipgloss.Color("#FF6B6B"),
		Success:    lipgloss.Color("#4CAF50"),
		Warning:    lipgloss.Color("#FF9800"),
		Error:      lipgloss.Color("#F44336"),
		Foreground: lipgloss.Color("#FFFFFF"),
		Background: lipgloss.Color("#1A1A1A"),
		Muted:      lipgloss.Color("#888888"),
		Border:     lipgloss.Color("#444444"),
		Selection:  lipgloss.Color("#264F78"),
	}
}

func (t *DefaultTheme) GetStyles() Styles {
	return buildStyles(t.GetColors())
}

func (t *DarkTheme) GetName() string {
	return t.name
}

func (t *DarkTheme) GetColors() ColorScheme {
	return ColorScheme{
		Primary:    lipgloss.Color("#61DAFB"),
		Secondary:  lipgloss.Color("#8B949E"),
		Accent:     lipgloss.Color("#F78166"),
		Success:    lipgloss.Color("#56D364"),
		Warning:    lipgloss.Color("#E3B341"),
		Error:      lipgloss.Color("#F85149"),
		Foreground: lipgloss.Color("#F0F6FC"),
		Background: lipgloss.Color("#0D1117"),
		Muted:      lipgloss.Color("#8B949E"),
		Border:     lipgloss.Color("#30363D"),
		Selection:  lipgloss.Color("#1F6FEB"),
	}
}

func (t *DarkTheme) GetStyles() Styles {
	return buildStyles(t.GetColors())
}

func (t *LightTheme) GetName() string {
	return t.name
}

func (t *LightTheme) GetColors() ColorScheme {
	return ColorScheme{
		Primary:    lipgloss.Color("#0969DA"),
		Secondary:  lipgloss.Color("#656D76"),
		Accent:     lipgloss.Color("#CF222E"),
		Success:    lipgloss.Color("#1A7F37"),
		Warning:    lipgloss.Color("#9A6700"),
		Error:      lipgloss.Color("#D1242F"),
		Foreground: lipgloss.Color("#24292F"),
		Background: lipgloss.Color("#FFFFFF"),
		Muted:      lipgloss.Color("#656D76"),
		Border:     lipgloss.Color("#D0D7DE"),
		Selection:  lipgloss.Color("#B6E3FF"),
	}
}

func (t *LightTheme) GetStyles() Styles {
	return buildStyles(t.GetColors())
}

func buildStyles(colors ColorScheme) Styles {
	return Styles{
		Colors: colors,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colors.Border).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(colors.Muted).
			Padding(0, 1),

		Label: lipgloss.NewStyle().
			Foreground(colors.Secondary).
			Bold(true).
			Padding(0, 1),

		Field: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colors.Border).
			Padding(0, 1),

		FieldFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colors.Primary).
			Padding(0, 1),

		Model: lipgloss.NewStyle().
			Foreground(colors.Muted).
			Padding(0, 1),

		ModelActive: lipgloss.NewStyle().
			Foreground(colors.Background).
			Background(colors.Primary).
			Bold(true).
			Padding(0, 1),

		Summary: lipgloss.NewStyle().
			Foreground(colors.Foreground).
			Bold(true).
			Padding(0, 1),

		TableHeader: lipgloss.NewStyle().
			Foreground(colors.Primary).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colors.Border),

		TableCell: lipgloss.NewStyle().
			Foreground(colors.Foreground),

		StatusError: lipgloss.NewStyle().
			Foreground(colors.Error).
			Bold(true).
			Padding(0, 1),

		StatusLoading: lipgloss.NewStyle().
			Foreground(colors.Warning).
			Padding(0, 1),

		Muted: lipgloss.NewStyle().
			Foreground(colors.Muted),

		HelpKey: lipgloss.NewStyle().
			Foreground(colors.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(colors.Muted),
	}
}

// GetResponsiveStyles returns base adjusted for screen size
func GetResponsiveStyles(base Styles, width int) Styles {
	styles := base
	if width < 60 {
		styles.Header = styles.Header.Padding(0)
		styles.Field = styles.Field.Padding(0)
		styles.FieldFocused = styles.FieldFocused.Padding(0)
	}
	return styles
}

// DetectColorProfile detects the terminal's color capabilities
func DetectColorProfile() termenv.Profile {
	return termenv.ColorProfile()
}

// AdaptColorsToProfile adapts colors to the terminal's capabilities
func AdaptColorsToProfile(colors ColorScheme, profile termenv.Profile) ColorScheme {
	switch profile {
	case termenv.Ascii:
		return ColorScheme{}
	case termenv.ANSI:
		return ColorScheme{
			Primary:    lipgloss.Color("12"), // Bright Blue
			Secondary:  lipgloss.Color("8"),  // Gray
			Accent:     lipgloss.Color("9"),  // Bright Red
			Success:    lipgloss.Color("10"), // Bright Green
			Warning:    lipgloss.Color("11"), // Bright Yellow
			Error:      lipgloss.Color("1"),  // Red
			Foreground: lipgloss.Color("15"), // White
			Background: lipgloss.Color("0"),  // Black
			Muted:      lipgloss.Color("8"),
			Border:     lipgloss.Color("8"),
			Selection:  lipgloss.Color("4"), // Blue
		}
	default:
		return colors
	}
}

// ForTerminal returns the named theme's styles adapted to the color profile
// of the current terminal.
func ForTerminal(name string) Styles {
	theme := GetTheme(name)
	return buildStyles(AdaptColorsToProfile(theme.GetColors(), DetectColorProfile()))
}
