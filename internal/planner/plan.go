package planner

import (
	"path/filepath"

	"github.com/danieljhkim/devbackup/internal/config"
)

// Plan is the per-run backup plan.
type Plan struct {
	// Root is the absolute backup root
	Root string `json:"root"`

	// Categories holds the active categories in populate order
	Categories []CategoryPlan `json:"categories"`

	// Skipped lists inactive categories and why
	Skipped []Skipped `json:"skipped,omitempty"`
}

// Skipped records a category that takes no part in the run.
type Skipped struct {
	Category config.Category `json:"category"`
	Reason   string          `json:"reason"`
}

// CategoryPlan is the work for one active category.
// Exactly one of the entry slices is populated, depending on Category.
type CategoryPlan struct {
	Category config.Category `json:"category"`

	// Folder is the configured destination folder name
	Folder string `json:"folder"`

	// Destination is the absolute subtree wiped and recreated before population
	Destination string `json:"destination"`

	Files        []FileEntry        `json:"files,omitempty"`
	Environments []EnvironmentEntry `json:"environments,omitempty"`
	Deployments  []DeploymentEntry  `json:"deployments,omitempty"`
	Home         []HomeEntry        `json:"home,omitempty"`
}

// Len returns the number of entries in the category.
func (c CategoryPlan) Len() int {
	return len(c.Files) + len(c.Environments) + len(c.Deployments) + len(c.Home)
}

// FileEntry is a flat file copy for the System and Editor categories.
type FileEntry struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// EnvironmentEntry is one project environment.
type EnvironmentEntry struct {
	// Specifier is the configured source string
	Specifier string `json:"specifier"`

	// Name is the subfolder under the category destination
	Name string `json:"name"`

	// Source is the resolved environment directory
	Source string `json:"source"`

	// Folder is the absolute destination subfolder, created during prepare
	Folder string `json:"folder"`

	// ConfigFile is the config file name looked for in Source
	ConfigFile string `json:"config_file"`

	// EditorSource is the editor settings folder checked at copy time
	EditorSource string `json:"editor_source"`

	// EditorDestination is where the editor settings are copied
	EditorDestination string `json:"editor_destination"`

	// Problem is set when no valid destination could be derived
	Problem string `json:"problem,omitempty"`
}

// ConfigSource returns the path of the config file in the environment.
func (e EnvironmentEntry) ConfigSource() string {
	return filepath.Join(e.Source, e.ConfigFile)
}

// DeploymentEntry is one deployment tree.
type DeploymentEntry struct {
	Source string `json:"source"`

	// Name is the parent directory's base name
	Name string `json:"name"`

	Destination string `json:"destination"`

	Problem string `json:"problem,omitempty"`
}

// HomeEntry is one path under the home root; file or directory is decided at copy time.
type HomeEntry struct {
	Specifier   string `json:"specifier"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Problem     string `json:"problem,omitempty"`
}

// Build computes the plan for cfg. It performs no filesystem access.
func Build(cfg config.Config) *Plan {
	plan := &Plan{
		Root:       cfg.BackupRoot,
		Categories: []CategoryPlan{},
	}

	for _, cat := range config.Categories {
		cc := cfg.Category(cat)
		switch {
		case len(cc.Sources) == 0:
			plan.Skipped = append(plan.Skipped, Skipped{Category: cat, Reason: "no source paths"})
			continue
		case cc.Folder == "":
			plan.Skipped = append(plan.Skipped, Skipped{Category: cat, Reason: "no destination folder name"})
			continue
		}

		cp := CategoryPlan{
			Category:    cat,
			Folder:      cc.Folder,
			Destination: filepath.Join(cfg.BackupRoot, cc.Folder),
		}

		switch cat {
		case config.System, config.Editor:
			cp.Files = fileEntries(cp.Destination, cc.Sources)
		case config.Environments:
			cp.Environments = environmentEntries(cfg, cp.Destination, cc.Sources)
		case config.Deployments:
			cp.Deployments = deploymentEntries(cp.Destination, cc.Sources)
		case config.Home:
			cp.Home = homeEntries(cfg.HomeRoot, cp.Destination, cc.Sources)
		}

		plan.Categories = append(plan.Categories, cp)
	}

	return plan
}

func fileEntries(dest string, sources []string) []FileEntry {
	entries := make([]FileEntry, 0, len(sources))
	for _, src := range sources {
		entries = append(entries, FileEntry{Source: src, Destination: dest})
	}
	return entries
}

func environmentEntries(cfg config.Config, dest string, sources []string) []EnvironmentEntry {
	entries := make([]EnvironmentEntry, 0, len(sources))
	for _, specifier := range sources {
		source := ResolveSource(cfg.LocalhostRoot, specifier)
		entry := EnvironmentEntry{Specifier: specifier, Source: source}

		name, err := EnvironmentName(source, cfg.IsComponentFolder)
		if err != nil {
			entry.Problem = err.Error()
			entries = append(entries, entry)
			continue
		}

		projectRoot := ProjectRoot(source, cfg.IsComponentFolder)
		entry.Name = name
		entry.Folder = filepath.Join(dest, name)
		entry.ConfigFile = ConfigFileName(name, cfg.ConfigFileFor)
		entry.EditorSource = filepath.Join(projectRoot, EditorSettingsDir)
		entry.EditorDestination = filepath.Join(dest, filepath.Base(projectRoot), EditorSettingsDir)
		entries = append(entries, entry)
	}
	return entries
}

func deploymentEntries(dest string, sources []string) []DeploymentEntry {
	entries := make([]DeploymentEntry, 0, len(sources))
	for _, src := range sources {
		entry := DeploymentEntry{Source: src}
		name, err := DeploymentName(src)
		if err != nil {
			entry.Problem = err.Error()
		} else {
			entry.Name = name
			entry.Destination = filepath.Join(dest, name)
		}
		entries = append(entries, entry)
	}
	return entries
}

func homeEntries(homeRoot, dest string, sources []string) []HomeEntry {
	entries := make([]HomeEntry, 0, len(sources))
	for _, specifier := range sources {
		source := ResolveSource(homeRoot, specifier)
		entry := HomeEntry{Specifier: specifier, Source: source}
		name, err := EntryName(source)
		if err != nil {
			entry.Problem = err.Error()
		} else {
			entry.Destination = filepath.Join(dest, name)
		}
		entries = append(entries, entry)
	}
	return entries
}
