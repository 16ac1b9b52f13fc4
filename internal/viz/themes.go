package viz

import "github.com/charmbracelet/lipgloss"

// Theme is a heatmap color ramp plus the chrome colors around it.
type Theme struct {
	Name   string
	Cold   lipgloss.Color
	Mid    lipgloss.Color
	Hot    lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Accent lipgloss.Color
}

var (
	ThemeInferno = Theme{
		Name:   "inferno",
		Cold:   lipgloss.Color("#000004"),
		Mid:    lipgloss.Color("#b53679"),
		Hot:    lipgloss.Color("#fcffa4"),
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#666688"),
		Accent: lipgloss.Color("#ffaa00"),
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Cold:   lipgloss.Color("#001a33"),
		Mid:    lipgloss.Color("#0077be"),
		Hot:    lipgloss.Color("#e0f0ff"),
		Text:   lipgloss.Color("#e0f0ff"),
		Muted:  lipgloss.Color("#4488aa"),
		Accent: lipgloss.Color("#ffd700"),
	}

	ThemeRetroGreen = Theme{
		Name:   "retro",
		Cold:   lipgloss.Color("#001100"),
		Mid:    lipgloss.Color("#00aa00"),
		Hot:    lipgloss.Color("#ccffcc"),
		Text:   lipgloss.Color("#00ff00"),
		Muted:  lipgloss.Color("#005500"),
		Accent: lipgloss.Color("#88ff88"),
	}

	ThemeGray = Theme{
		Name:   "gray",
		Cold:   lipgloss.Color("#000000"),
		Mid:    lipgloss.Color("#808080"),
		Hot:    lipgloss.Color("#ffffff"),
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#888888"),
		Accent: lipgloss.Color("#0088ff"),
	}

	Themes = []Theme{ThemeInferno, ThemeOcean, ThemeRetroGreen, ThemeGray}
)

// GetTheme returns a theme by name, falling back to inferno.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeInferno
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func themeIndex(name string) int {
	for i, t := range Themes {
		if t.Name == name {
			return i
		}
	}
	return 0
}
