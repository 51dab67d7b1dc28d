package planner

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/danieljhkim/devbackup/internal/config"
	"github.com/danieljhkim/devbackup/internal/fsops"
)

// EditorSettingsDir is the per-project editor settings folder.
const EditorSettingsDir = ".vscode"

// ErrNoParent indicates a deployment path has no named parent directory.
var ErrNoParent = errors.New("path has no parent directory name")

// ResolveSource resolves specifier against root unless it is already absolute.
// An empty root leaves relative specifiers relative to the working directory.
func ResolveSource(root, specifier string) string {
	if filepath.IsAbs(specifier) || root == "" {
		return filepath.Clean(specifier)
	}
	return filepath.Join(root, specifier)
}

// DeploymentName returns the base name of the deployment's parent directory.
//
// Pre: source names a directory below at least one named parent.
// Post: the result is a single path element; /a/proj1/app and /a/proj1/web
// both yield "proj1". A trailing separator on source is ignored.
func DeploymentName(source string) (string, error) {
	cleaned := filepath.Clean(source)
	parent := filepath.Dir(cleaned)
	name := filepath.Base(parent)
	if parent == cleaned || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %s", ErrNoParent, source)
	}
	return name, nil
}

// EnvironmentName returns the destination subfolder for an environment entry:
// "<parent>/<base>" when base is a component folder, otherwise "<base>".
func EnvironmentName(specifier string, isComponent func(string) bool) (string, error) {
	cleaned := filepath.Clean(specifier)
	base := filepath.Base(cleaned)

	name := base
	if isComponent != nil && isComponent(base) {
		if parent := filepath.Base(filepath.Dir(cleaned)); parent != "." && parent != string(filepath.Separator) {
			name = filepath.Join(parent, base)
		}
	}
	if err := fsops.ValidateRelPath(name); err != nil {
		return "", fmt.Errorf("environment %q: %w", specifier, err)
	}
	return name, nil
}

// ProjectRoot returns the directory holding the project's editor settings:
// the parent for component entries, the entry itself otherwise.
func ProjectRoot(source string, isComponent func(string) bool) string {
	cleaned := filepath.Clean(source)
	if isComponent != nil && isComponent(filepath.Base(cleaned)) {
		return filepath.Dir(cleaned)
	}
	return cleaned
}

// ConfigFileName returns the config file to look for in an environment:
// the override for name when one exists, the primary name otherwise.
func ConfigFileName(name string, lookup func(string) (string, bool)) string {
	if lookup != nil {
		if f, ok := lookup(name); ok && f != "" {
			return f
		}
	}
	return config.PrimaryConfigFile
}

// EntryName returns the base name a copied file or tree keeps at its destination.
func EntryName(source string) (string, error) {
	base := filepath.Base(filepath.Clean(source))
	if err := fsops.ValidateRelPath(base); err != nil {
		return "", fmt.Errorf("entry %q: %w", source, err)
	}
	return base, nil
}
