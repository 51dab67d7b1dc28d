// Package config resolves the devbackup configuration.
//
// A Config is built once at startup by Load and handed to the engine by value.
// Values come from an optional YAML or TOML file, a dotenv file and the
// process environment, in increasing order of precedence. A category whose
// sources or destination folder are unset is inactive for the run; that is
// never an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Category is a named partition of the backup.
type Category string

const (
	System       Category = "system"
	Editor       Category = "editor"
	Environments Category = "environments"
	Deployments  Category = "deployments"
	Home         Category = "home"
)

// Categories lists every category in populate order.
var Categories = []Category{System, Editor, Environments, Deployments, Home}

// Known environment config file names. The first one is the primary name.
const (
	PrimaryConfigFile   = ".env"
	AlternateConfigFile = ".env.rb"
)

var (
	// ErrMissingBackupRoot indicates no backup location was configured.
	ErrMissingBackupRoot = errors.New("backup location is not set")

	// ErrInvalidFolder indicates a destination folder name escapes the backup root.
	ErrInvalidFolder = errors.New("invalid destination folder name")

	// ErrDuplicateFolder indicates two active categories share a destination folder.
	ErrDuplicateFolder = errors.New("duplicate destination folder name")

	// ErrUnknownConfigFile indicates a config file override outside the known variants.
	ErrUnknownConfigFile = errors.New("unknown environment config file name")

	// ErrOverlappingFolder indicates one category folder is nested inside another.
	ErrOverlappingFolder = errors.New("destination folders overlap")
)

// CategoryConfig is the resolved configuration for one category.
type CategoryConfig struct {
	// Folder is the destination folder name under the backup root
	Folder string `json:"folder" yaml:"folder" toml:"folder"`

	// Sources is the ordered list of source specifiers
	Sources []string `json:"sources" yaml:"sources" toml:"sources"`
}

// Active reports whether the category takes part in a run.
func (c CategoryConfig) Active() bool {
	return c.Folder != "" && len(c.Sources) > 0
}

// Config is the complete, resolved devbackup configuration.
type Config struct {
	// BackupRoot is the absolute directory all category folders live under
	BackupRoot string `json:"backup_root" yaml:"backup_root"`

	// HomeRoot resolves relative home sources
	HomeRoot string `json:"home_root" yaml:"home_root"`

	// LocalhostRoot resolves relative environment sources
	LocalhostRoot string `json:"localhost_root" yaml:"localhost_root"`

	// ConfigFiles maps an environment name to its config file name
	ConfigFiles map[string]string `json:"config_files,omitempty" yaml:"config_files,omitempty"`

	// ComponentFolders are folder names treated as sub-components of a project
	ComponentFolders []string `json:"component_folders" yaml:"component_folders"`

	// EscalationCommand is the command prefix used to retry denied mutations
	EscalationCommand []string `json:"escalation_command" yaml:"escalation_command"`

	categories map[Category]CategoryConfig
}

// Category returns a copy of the configuration for c.
func (c Config) Category(cat Category) CategoryConfig {
	cc := c.categories[cat]
	cc.Sources = append([]string(nil), cc.Sources...)
	return cc
}

// ConfigFileFor returns the config file override for an environment name.
func (c Config) ConfigFileFor(name string) (string, bool) {
	f, ok := c.ConfigFiles[name]
	return f, ok
}

// IsComponentFolder reports whether name is one of the configured component folders.
func (c Config) IsComponentFolder(name string) bool {
	for _, f := range c.ComponentFolders {
		if f == name {
			return true
		}
	}
	return false
}

// Snapshot returns a serializable view of the configuration including categories.
func (c Config) Snapshot() map[string]any {
	cats := make(map[string]CategoryConfig, len(Categories))
	for _, cat := range Categories {
		cats[string(cat)] = c.Category(cat)
	}
	return map[string]any{
		"backup_root":        c.BackupRoot,
		"home_root":          c.HomeRoot,
		"localhost_root":     c.LocalhostRoot,
		"config_files":       c.ConfigFiles,
		"component_folders":  c.ComponentFolders,
		"escalation_command": c.EscalationCommand,
		"categories":         cats,
	}
}

// New builds a Config from explicit values, applies defaults and validates it.
// Load is the usual entry point; New is used where values are already known.
func New(backupRoot string, categories map[Category]CategoryConfig, opts ...Option) (Config, error) {
	cfg := Config{
		BackupRoot: backupRoot,
		categories: make(map[Category]CategoryConfig, len(categories)),
	}
	for cat, cc := range categories {
		cfg.categories[cat] = CategoryConfig{
			Folder:  cc.Folder,
			Sources: append([]string(nil), cc.Sources...),
		}
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.finalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Option customizes a Config built with New.
type Option func(*Config)

// WithHomeRoot sets the home root.
func WithHomeRoot(path string) Option {
	return func(c *Config) { c.HomeRoot = path }
}

// WithLocalhostRoot sets the localhost root.
func WithLocalhostRoot(path string) Option {
	return func(c *Config) { c.LocalhostRoot = path }
}

// WithConfigFiles sets the environment config file overrides.
func WithConfigFiles(m map[string]string) Option {
	return func(c *Config) {
		c.ConfigFiles = make(map[string]string, len(m))
		for k, v := range m {
			c.ConfigFiles[k] = v
		}
	}
}

// WithComponentFolders sets the component folder names.
func WithComponentFolders(names ...string) Option {
	return func(c *Config) { c.ComponentFolders = append([]string(nil), names...) }
}

// WithEscalationCommand sets the escalation command prefix.
func WithEscalationCommand(args ...string) Option {
	return func(c *Config) { c.EscalationCommand = append([]string(nil), args...) }
}

// finalize expands paths, fills defaults and validates.
func (c *Config) finalize() error {
	c.BackupRoot = expandPath(c.BackupRoot)
	c.HomeRoot = expandPath(c.HomeRoot)
	c.LocalhostRoot = expandPath(c.LocalhostRoot)

	if c.HomeRoot == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.HomeRoot = home
		}
	}
	if len(c.ComponentFolders) == 0 {
		c.ComponentFolders = []string{"api", "frontend", "backend"}
	}
	if len(c.EscalationCommand) == 0 {
		c.EscalationCommand = []string{"sudo"}
	}
	if c.categories == nil {
		c.categories = map[Category]CategoryConfig{}
	}
	for cat, cc := range c.categories {
		cc.Folder = strings.TrimSpace(cc.Folder)
		sources := make([]string, 0, len(cc.Sources))
		for _, s := range cc.Sources {
			if s = expandSource(s); s != "" {
				sources = append(sources, s)
			}
		}
		cc.Sources = sources
		c.categories[cat] = cc
	}

	return c.Validate()
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.BackupRoot == "" {
		return ErrMissingBackupRoot
	}
	if !filepath.IsAbs(c.BackupRoot) {
		return fmt.Errorf("backup location must be absolute, got %q", c.BackupRoot)
	}

	type claimed struct {
		cat    Category
		folder string
	}
	var active []claimed
	for _, cat := range Categories {
		cc := c.categories[cat]
		if !cc.Active() {
			continue
		}
		if err := validateFolder(cc.Folder); err != nil {
			return fmt.Errorf("%s: %w", cat, err)
		}
		folder := filepath.Clean(cc.Folder)
		for _, other := range active {
			if folder == other.folder {
				return fmt.Errorf("%w: %q used by %s and %s", ErrDuplicateFolder, cc.Folder, other.cat, cat)
			}
			// A wipe of the outer folder would destroy the inner one after it was prepared.
			if isWithin(folder, other.folder) || isWithin(other.folder, folder) {
				return fmt.Errorf("%w: %s %q and %s %q", ErrOverlappingFolder, other.cat, other.folder, cat, folder)
			}
		}
		active = append(active, claimed{cat: cat, folder: folder})
	}

	names := make([]string, 0, len(c.ConfigFiles))
	for name := range c.ConfigFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		switch c.ConfigFiles[name] {
		case PrimaryConfigFile, AlternateConfigFile:
		default:
			return fmt.Errorf("%w: %s=%q", ErrUnknownConfigFile, name, c.ConfigFiles[name])
		}
	}

	return nil
}

// isWithin reports whether the cleaned relative path inner lies below outer.
func isWithin(inner, outer string) bool {
	rel, err := filepath.Rel(outer, inner)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// validateFolder rejects destination folder names that do not stay strictly
// inside the backup root.
func validateFolder(folder string) error {
	cleaned := filepath.Clean(folder)
	if cleaned == "." || cleaned == "" {
		return fmt.Errorf("%w: %q resolves to the backup root", ErrInvalidFolder, folder)
	}
	if filepath.IsAbs(cleaned) {
		return fmt.Errorf("%w: %q must be relative", ErrInvalidFolder, folder)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q escapes the backup root", ErrInvalidFolder, folder)
	}
	return nil
}

// expandPath expands a path with expandSource and makes it absolute.
func expandPath(p string) string {
	p = expandSource(p)
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// expandSource expands environment variables and a leading ~.
// Relative results stay relative so they resolve against the home or localhost root.
func expandSource(p string) string {
	p = strings.TrimSpace(os.ExpandEnv(strings.TrimSpace(p)))
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
