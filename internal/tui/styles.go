package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/snoozedev/snooze/internal/config"
)

const AppName = "snooze"

var (
	PrimaryColor   = lipgloss.Color("#FF8C42")
	SecondaryColor = lipgloss.Color("#4ECDC4")
	AccentColor    = lipgloss.Color("#95E1D3")
	TextColor      = lipgloss.Color("#EAEAEA")
	MutedColor     = lipgloss.Color("#94A3B8")
	ErrorColor     = lipgloss.Color("#F87171")
	SuccessColor   = lipgloss.Color("#4ADE80")
	FavoriteColor  = lipgloss.Color("#FBBF24")

	TitleStyle    lipgloss.Style
	HeaderStyle   lipgloss.Style
	HelpStyle     lipgloss.Style
	FavoriteStyle lipgloss.Style
	TimeStyle     lipgloss.Style
)

func init() {
	rebuildStyles()
}

// ApplyColors overrides the palette from config (after any theme file
// overlay) and rebuilds the derived styles.
func ApplyColors(colors config.UIColors) {
	set := func(dst *lipgloss.Color, src string) {
		if src != "" {
			*dst = lipgloss.Color(src)
		}
	}
	set(&PrimaryColor, colors.Primary)
	set(&SecondaryColor, colors.Secondary)
	set(&AccentColor, colors.Accent)
	set(&TextColor, colors.Text)
	set(&MutedColor, colors.Muted)
	set(&ErrorColor, colors.Error)
	set(&SuccessColor, colors.Success)
	set(&FavoriteColor, colors.Favorite)

	rebuildStyles()
}

func rebuildStyles() {
	TitleStyle = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	HeaderStyle = lipgloss.NewStyle().Foreground(SecondaryColor).Bold(true)
	HelpStyle = lipgloss.NewStyle().Foreground(MutedColor)
	FavoriteStyle = lipgloss.NewStyle().Foreground(FavoriteColor)
	TimeStyle = lipgloss.NewStyle().Foreground(MutedColor)
}
