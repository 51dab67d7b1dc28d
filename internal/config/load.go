package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"
)

// Options controls where Load looks for configuration.
type Options struct {
	// File is an optional YAML (.yaml, .yml) or TOML (.toml) config file
	File string

	// EnvFile is an optional dotenv file; a missing file is ignored
	EnvFile string

	// LookupEnv reads environment variables (default: os.LookupEnv)
	LookupEnv func(string) (string, bool)
}

// fileConfig is the on-disk layout shared by the YAML and TOML formats.
type fileConfig struct {
	BackupRoot        string                    `yaml:"backup_root" toml:"backup_root"`
	HomeRoot          string                    `yaml:"home_root" toml:"home_root"`
	LocalhostRoot     string                    `yaml:"localhost_root" toml:"localhost_root"`
	EscalationCommand []string                  `yaml:"escalation_command" toml:"escalation_command"`
	Categories        map[string]CategoryConfig `yaml:"categories" toml:"categories"`
	Environments      struct {
		ConfigFiles      map[string]string `yaml:"config_files" toml:"config_files"`
		ComponentFolders []string          `yaml:"component_folders" toml:"component_folders"`
	} `yaml:"environments" toml:"environments"`
}

// envNames maps each category to its source-list and folder-name variables.
var envNames = map[Category]struct{ sources, folder string }{
	System:       {"SYSTEM_SOURCE_PATHS", "SYSTEM_DESTINATION_FOLDER_NAME"},
	Editor:       {"VSCODE_SOURCE_PATHS", "VSCODE_DESTINATION_FOLDER_NAME"},
	Environments: {"PROJECTS_SOURCE_PATHS", "PROJECTS_DESTINATION_FOLDER_NAME"},
	Deployments:  {"DEPLOYMENT_SOURCE_PATHS", "DEPLOYMENTS_DESTINATION_FOLDER_NAME"},
	Home:         {"HOME_SOURCE_PATHS", "HOME_DESTINATION_FOLDER_NAME"},
}

// Load resolves the configuration from the file, the dotenv file and the environment.
func Load(opts Options) (Config, error) {
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if opts.EnvFile != "" {
		// godotenv.Load never overrides variables already present in the environment.
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	var raw fileConfig
	if opts.File != "" {
		if err := decodeFile(os.ExpandEnv(opts.File), &raw); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		BackupRoot:        raw.BackupRoot,
		HomeRoot:          raw.HomeRoot,
		LocalhostRoot:     raw.LocalhostRoot,
		ConfigFiles:       raw.Environments.ConfigFiles,
		ComponentFolders:  raw.Environments.ComponentFolders,
		EscalationCommand: raw.EscalationCommand,
		categories:        make(map[Category]CategoryConfig, len(Categories)),
	}
	for name, cc := range raw.Categories {
		cat := Category(strings.ToLower(strings.TrimSpace(name)))
		if _, ok := envNames[cat]; !ok {
			return Config{}, fmt.Errorf("unknown category %q in config file", name)
		}
		cfg.categories[cat] = cc
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.finalize(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// decodeFile parses a config file according to its extension.
func decodeFile(path string, raw *fileConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), raw); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, raw); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format %q", filepath.Ext(path))
	}
	return nil
}

// applyEnv overlays environment variables onto cfg. A variable that is set,
// even to an empty value, replaces the file value.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("BACKUP_LOCATION"); ok {
		cfg.BackupRoot = v
	}
	if v, ok := lookup("HOME_ROOT"); ok {
		cfg.HomeRoot = v
	}
	if v, ok := lookup("LOCALHOST_ROOT"); ok {
		cfg.LocalhostRoot = v
	}
	if v, ok := lookup("PROJECTS_CONFIG_FILES"); ok {
		cfg.ConfigFiles = splitPairs(v)
	}
	if v, ok := lookup("PROJECTS_COMPONENT_FOLDERS"); ok {
		cfg.ComponentFolders = splitList(v)
	}
	if v, ok := lookup("BACKUP_ESCALATION_COMMAND"); ok {
		args, err := shellquote.Split(v)
		if err != nil {
			return fmt.Errorf("invalid BACKUP_ESCALATION_COMMAND: %w", err)
		}
		cfg.EscalationCommand = args
	}

	for _, cat := range Categories {
		names := envNames[cat]
		cc := cfg.categories[cat]
		if v, ok := lookup(names.sources); ok {
			cc.Sources = splitList(v)
		}
		if v, ok := lookup(names.folder); ok {
			cc.Folder = v
		}
		cfg.categories[cat] = cc
	}
	return nil
}

// splitList splits a comma-separated list, dropping blank items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// splitPairs parses "name=value,name=value".
func splitPairs(v string) map[string]string {
	out := make(map[string]string)
	for _, item := range splitList(v) {
		name, value, ok := strings.Cut(item, "=")
		if !ok {
			continue
		}
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if name != "" {
			out[name] = value
		}
	}
	return out
}
