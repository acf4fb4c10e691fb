package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"projdex/internal/launcher"
	"projdex/internal/project"
)

const fileName = "config.yaml"

type Config struct {
	Workspaces       []string            `yaml:"workspaces"`
	IgnoreDirs       []string            `yaml:"ignore_dirs"`
	ExcludedProjects []string            `yaml:"excluded_projects"`
	Launchers        []launcher.Launcher `yaml:"launchers"`
	Theme            string              `yaml:"theme"`
	ProjectSortBy    string              `yaml:"project_sort_by"`
	LogLevel         string              `yaml:"log_level"`
	StaleAfterHours  int                 `yaml:"stale_after_hours"`
	Web              WebConfig           `yaml:"web"`
}

type WebConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

func DefaultConfig() Config {
	return Config{
		IgnoreDirs:      []string{"node_modules", "dist", "build", "target", ".git"},
		Theme:           "mocha",
		ProjectSortBy:   string(project.SortByHits),
		LogLevel:        "info",
		StaleAfterHours: 24,
		Web:             WebConfig{Bind: "127.0.0.1"},
	}
}

// Dir returns the directory holding config.yaml and the data files.
// An explicit override wins; otherwise $XDG_CONFIG_HOME/projdex, then ~/.config/projdex.
func Dir(override string) string {
	if override != "" {
		return override
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "projdex")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "projdex")
	}
	return filepath.Join(home, ".config", "projdex")
}

// PathIn returns the config file path inside dir.
func PathIn(dir string) string {
	return filepath.Join(dir, fileName)
}

func Load() (Config, error) {
	return LoadFrom(PathIn(Dir("")))
}

// LoadFrom reads configPath. A missing file yields the defaults.
func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", configPath, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes the config atomically.
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(configPath), ".tmp-"+fileName+"-")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), configPath)
}

// Normalize fills blanks left by a partial config file and assigns ids to
// launchers that lack one.
func (c *Config) Normalize() {
	if c.Theme == "" {
		c.Theme = "mocha"
	}
	if _, ok := project.ParseSortBy(c.ProjectSortBy); !ok {
		c.ProjectSortBy = string(project.SortByHits)
	}
	if c.StaleAfterHours <= 0 {
		c.StaleAfterHours = 24
	}
	if c.Web.Bind == "" {
		c.Web.Bind = "127.0.0.1"
	}
	for i := range c.Launchers {
		if c.Launchers[i].ID == "" {
			c.Launchers[i].ID = launcher.NewID()
		}
	}
}

// SortBy returns the configured presentation order.
func (c *Config) SortBy() project.SortBy {
	by, _ := project.ParseSortBy(c.ProjectSortBy)
	return by
}

// StaleAfter returns the catalog age that triggers a background rescan.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterHours) * time.Hour
}

// ScanConfig returns the scanner inputs with ~ expanded and paths made absolute.
func (c *Config) ScanConfig() project.ScanConfig {
	sc := project.ScanConfig{
		IgnoreDirs: slices.Clone(c.IgnoreDirs),
	}
	for _, w := range c.Workspaces {
		if w = strings.TrimSpace(w); w != "" {
			sc.Workspaces = append(sc.Workspaces, ExpandPath(w))
		}
	}
	for _, p := range c.ExcludedProjects {
		if p = strings.TrimSpace(p); p != "" {
			sc.ExcludedProjects = append(sc.ExcludedProjects, ExpandPath(p))
		}
	}
	return sc
}

// Exclude adds path to the exclusion list. It reports false when already present.
func (c *Config) Exclude(path string) bool {
	clean := ExpandPath(path)
	for _, p := range c.ExcludedProjects {
		if ExpandPath(p) == clean {
			return false
		}
	}
	c.ExcludedProjects = append(c.ExcludedProjects, clean)
	return true
}

// Registry returns a resolver over the configured launchers.
func (c *Config) Registry() *launcher.Registry {
	return launcher.NewRegistry(c.Launchers)
}

// ExpandPath expands a leading ~ and returns a cleaned absolute path.
// Relative paths resolve against the working directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
