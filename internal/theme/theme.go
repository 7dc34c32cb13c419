package theme

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/snoozedev/snooze/internal/config"
)

//go:embed themes.toml
var themesTOML []byte

// Definition is one named color theme.
type Definition struct {
	Description string `toml:"description"`
	Primary     string `toml:"primary,omitempty"`
	Secondary   string `toml:"secondary,omitempty"`
	Accent      string `toml:"accent,omitempty"`
	Text        string `toml:"text,omitempty"`
	Muted       string `toml:"muted,omitempty"`
	Error       string `toml:"error,omitempty"`
	Success     string `toml:"success,omitempty"`
	Favorite    string `toml:"favorite,omitempty"`
}

type themesConfig struct {
	Themes map[string]Definition `toml:"themes"`
}

// Registry holds the built-in themes plus any user overrides.
type Registry struct {
	themes map[string]Definition
}

// NewRegistry builds a registry from the embedded themes and merges the
// user's theme file on top when present.
func NewRegistry(userPath string) (*Registry, error) {
	var cfg themesConfig
	if err := toml.Unmarshal(themesTOML, &cfg); err != nil {
		return nil, fmt.Errorf("parsing themes.toml: %w", err)
	}

	registry := &Registry{themes: cfg.Themes}
	registry.loadUserThemes(userPath)

	return registry, nil
}

// loadUserThemes merges user theme definitions; user entries override
// built-ins with the same name. A missing or unparseable file is
// silently skipped.
func (r *Registry) loadUserThemes(path string) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var userCfg themesConfig
	if err := toml.Unmarshal(data, &userCfg); err != nil {
		return
	}
	for name, def := range userCfg.Themes {
		r.themes[name] = def
	}
}

// Names lists the available theme names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply overlays the named theme onto the given colors. Empty theme
// fields keep the existing value; an unknown name leaves the colors
// untouched and reports false.
func (r *Registry) Apply(name string, colors *config.UIColors) bool {
	def, ok := r.themes[name]
	if !ok {
		return false
	}

	overlay := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}

	overlay(&colors.Primary, def.Primary)
	overlay(&colors.Secondary, def.Secondary)
	overlay(&colors.Accent, def.Accent)
	overlay(&colors.Text, def.Text)
	overlay(&colors.Muted, def.Muted)
	overlay(&colors.Error, def.Error)
	overlay(&colors.Success, def.Success)
	overlay(&colors.Favorite, def.Favorite)

	return true
}
