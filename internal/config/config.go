// Package config loads and saves the editor's user configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kk-code-lab/markln/internal/logging"
	"github.com/kk-code-lab/markln/internal/markdown"
	"github.com/kk-code-lab/markln/internal/render"
	"github.com/kk-code-lab/markln/internal/syncview"
)

const (
	appDirName            = "markln"
	configFileName        = "config.yaml"
	configFilePermissions = 0o600
	configDirPermissions  = 0o755
)

// Config is the persisted user configuration.
type Config struct {
	Theme       string `yaml:"theme"`
	WindowMode  string `yaml:"window_mode"`
	LastFile    string `yaml:"last_file,omitempty"`
	AutoPreview bool   `yaml:"auto_preview"`
	// TabWidth is the indentation, in columns, of one list nesting level
	// in the source.
	TabWidth int `yaml:"tab_width"`
	// ListIndent is the number of preview columns per nesting level.
	ListIndent  int    `yaml:"list_indent"`
	TablePolicy string `yaml:"table_policy"`
	WrapCode    bool   `yaml:"wrap_code"`
	LogLevel    string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Theme:       "dark",
		WindowMode:  syncview.Synced.String(),
		AutoPreview: true,
		TabWidth:    2,
		ListIndent:  render.DefaultListIndent,
		TablePolicy: render.TableWrap.String(),
		LogLevel:    "info",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/markln/config.yaml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locate home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, appDirName, configFileName), nil
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logging.Default().Debug("no config file", logging.FieldPath, path)
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(content, &cfg); err != nil {
				return Default(), fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := LoadFromEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory when needed. The file is
// replaced through a temporary file so a crash never leaves it half written.
func Save(cfg Config, path string) error {
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := "# markln configuration\n\n"

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPermissions); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(header + string(content)); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Chmod(configFilePermissions); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Mode is the configured window mode. Invalid values fall back to Synced.
func (c Config) Mode() syncview.Mode {
	m, _ := syncview.ParseMode(c.WindowMode)
	return m
}

// ParseOptions returns the scanner options implied by c.
func (c Config) ParseOptions() markdown.Options {
	return markdown.Options{TabWidth: c.TabWidth}
}

// RenderOptions returns the renderer options implied by c for width columns.
func (c Config) RenderOptions(width int) render.Options {
	policy, _ := render.ParseTablePolicy(c.TablePolicy)
	return render.Options{
		Width:       width,
		ListIndent:  c.ListIndent,
		TablePolicy: policy,
		WrapCode:    c.WrapCode,
	}
}

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

// Validate reports every invalid field joined into one error.
func (c Config) Validate() error {
	var errs []error
	add := func(field string, value any, msg string) {
		errs = append(errs, &ValidationError{Field: field, Value: value, Message: msg})
	}
	if _, err := syncview.ParseMode(c.WindowMode); err != nil {
		add("window_mode", c.WindowMode, "must be synced, editor or preview")
	}
	if _, err := render.ParseTablePolicy(c.TablePolicy); err != nil {
		add("table_policy", c.TablePolicy, "must be wrap or truncate")
	}
	if c.TabWidth < 1 || c.TabWidth > 16 {
		add("tab_width", c.TabWidth, "must be between 1 and 16")
	}
	if c.ListIndent < 1 || c.ListIndent > 16 {
		add("list_indent", c.ListIndent, "must be between 1 and 16")
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		add("log_level", c.LogLevel, "must be debug, info, warn or error")
	}
	if !IsKnownTheme(c.Theme) {
		add("theme", c.Theme, "must be one of "+strings.Join(Themes, ", "))
	}
	return errors.Join(errs...)
}

// Themes lists the built-in colour schemes.
var Themes = []string{"dark", "light", "mono"}

// IsKnownTheme reports whether name is a built-in theme.
func IsKnownTheme(name string) bool {
	for _, t := range Themes {
		if t == name {
			return true
		}
	}
	return false
}
