package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/snoozedev/snooze/internal/api"
	"github.com/snoozedev/snooze/internal/config"
	"github.com/snoozedev/snooze/internal/credentials"
	"github.com/snoozedev/snooze/internal/debuglog"
	"github.com/snoozedev/snooze/internal/theme"
	"github.com/snoozedev/snooze/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

func main() {
	var (
		configPath     = flag.String("config", "", "Path to configuration file")
		apiURL         = flag.String("api", "", "API base URL (overrides config)")
		credsPath      = flag.String("db", "", "Path to credentials database (overrides config)")
		themeName      = flag.String("theme", "", "Color theme to apply")
		listThemes     = flag.Bool("themes", false, "List available themes")
		generateConfig = flag.Bool("generate-config", false, "Generate default config file")
		version        = flag.Bool("version", false, "Show version information")
		quiet          = flag.Bool("quiet", false, "Skip startup banner")
	)
	flag.Parse()

	if *version {
		fmt.Printf("snooze %s\n", Version)
		fmt.Println("Terminal story reader")
		fmt.Println("github.com/snoozedev/snooze")
		return
	}

	if *generateConfig {
		home, _ := os.UserHomeDir()
		configDir := filepath.Join(home, ".config", "snooze")
		configFile := filepath.Join(configDir, "config.toml")

		if err := config.GenerateDefaultConfig(configFile); err != nil {
			log.Fatalf("Failed to generate config: %v", err)
		}
		fmt.Printf("Generated default configuration at: %s\n", configFile)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *apiURL != "" {
		cfg.Server.BaseURL = *apiURL
	}
	if *credsPath != "" {
		cfg.Credentials.Path = expandHome(*credsPath)
	}

	registry, err := theme.NewRegistry(cfg.UI.ThemeFile)
	if err != nil {
		log.Fatalf("Failed to load themes: %v", err)
	}

	if *listThemes {
		for _, name := range registry.Names() {
			fmt.Println(name)
		}
		return
	}

	if *themeName != "" {
		if !registry.Apply(*themeName, &cfg.UI.Colors) {
			log.Fatalf("Unknown theme %q (try -themes)", *themeName)
		}
	}
	tui.ApplyColors(cfg.UI.Colors)

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer debuglog.Close()

	if !*quiet {
		showBanner()
	}

	store, err := credentials.Open(cfg.Credentials.Path, cfg.Credentials.Timeout)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	client := api.NewClient(cfg)

	app := tui.NewApp(client, store, cfg)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

func showBanner() {
	colors := []lipgloss.Color{
		lipgloss.Color("#FF8C42"),
		lipgloss.Color("#FBBF24"),
		lipgloss.Color("#95E1D3"),
		lipgloss.Color("#4ECDC4"),
		lipgloss.Color("#FF8C42"),
	}

	lines := []string{
		"▄▄▄▄▄ ▄▄   ▄  ▄▄▄▄  ▄▄▄▄  ▄▄▄▄▄ ▄▄▄▄▄",
		"█     █ █  █ █    █ █    █   ▄▀  █",
		"▀▀▀▀█ █  █ █ █    █ █    █ ▄▀    █▀▀▀",
		"▄▄▄▄█ █   ██  ▄▄▄▄   ▄▄▄▄  █▄▄▄▄ █▄▄▄▄",
		"",
		"    stories worth staying up for",
	}

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}

		colorIdx := i % len(colors)
		style := lipgloss.NewStyle().
			Foreground(colors[colorIdx]).
			Bold(i < 4)

		coloredLines = append(coloredLines, style.Render(line))
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color("#4ECDC4")).
		Padding(1, 3).
		MarginTop(1)

	banner := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)
	output := borderStyle.Render(banner)

	fmt.Println(lipgloss.NewStyle().
		Width(70).
		Align(lipgloss.Center).
		Render(output))
}
