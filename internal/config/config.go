package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	UI          UIConfig          `mapstructure:"ui"`
	Keys        KeyConfig         `mapstructure:"keys"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

type CredentialsConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type UIConfig struct {
	Colors    UIColors `mapstructure:"colors"`
	ThemeFile string   `mapstructure:"theme_file"`
	MaxTitle  int      `mapstructure:"max_title_length"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
	Favorite  string `mapstructure:"favorite"`
}

type KeyConfig struct {
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit         string `mapstructure:"quit"`
	Submit       string `mapstructure:"submit"`
	Delete       string `mapstructure:"delete"`
	Favorite     string `mapstructure:"favorite"`
	Favorites    string `mapstructure:"favorites"`
	AllStories   string `mapstructure:"all_stories"`
	Refresh      string `mapstructure:"refresh"`
	Search       string `mapstructure:"search"`
	Logout       string `mapstructure:"logout"`
	SignupToggle string `mapstructure:"signup_toggle"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	credPath := filepath.Join(homeDir, ".snooze.db")

	return &Config{
		Server: ServerConfig{
			BaseURL:     "https://hack-or-snooze-v3.herokuapp.com",
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "snooze/1.0 (https://github.com/snoozedev/snooze)",
		},
		Credentials: CredentialsConfig{
			Path:    credPath,
			Timeout: 1 * time.Second,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF8C42",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
				Favorite:  "#FBBF24",
			},
			ThemeFile: filepath.Join(homeDir, ".config", "snooze", "themes.toml"),
			MaxTitle:  80,
		},
		Keys: KeyConfig{
			Bindings: KeyBindings{
				Quit:         "q",
				Submit:       "n",
				Delete:       "x",
				Favorite:     "f",
				Favorites:    "v",
				AllStories:   "a",
				Refresh:      "r",
				Search:       "s",
				Logout:       "Q",
				SignupToggle: "tab",
			},
		},
		Log: LogConfig{
			Level: "off",
			Path:  "",
		},
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("server", cfg.Server)
	v.SetDefault("credentials", cfg.Credentials)
	v.SetDefault("ui", cfg.UI)
	v.SetDefault("keys", cfg.Keys)
	v.SetDefault("log", cfg.Log)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "snooze")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SNOOZE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Credentials.Path = expandPath(cfg.Credentials.Path)
	cfg.UI.ThemeFile = expandPath(cfg.UI.ThemeFile)
	cfg.Log.Path = expandPath(cfg.Log.Path)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations go out as strings for TOML readability
	serverCfg := map[string]interface{}{
		"base_url":     config.Server.BaseURL,
		"http_timeout": config.Server.HTTPTimeout.String(),
		"user_agent":   config.Server.UserAgent,
	}

	credCfg := map[string]interface{}{
		"path":    config.Credentials.Path,
		"timeout": config.Credentials.Timeout.String(),
	}

	v.Set("server", serverCfg)
	v.Set("credentials", credCfg)
	v.Set("ui", config.UI)
	v.Set("keys", config.Keys)
	v.Set("log", config.Log)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
