package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// envMap returns a LookupEnv function backed by a map.
func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(Options{LookupEnv: envMap(map[string]string{
		"BACKUP_LOCATION":                  root,
		"SYSTEM_SOURCE_PATHS":              " /etc/hosts, ,/etc/fstab ",
		"SYSTEM_DESTINATION_FOLDER_NAME":   "system",
		"PROJECTS_SOURCE_PATHS":            "proj-a,proj-b/api",
		"PROJECTS_DESTINATION_FOLDER_NAME": "projects",
		"PROJECTS_CONFIG_FILES":            "legacy=.env.rb, broken",
		"HOME_ROOT":                        "/home/tester",
	})})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BackupRoot != root {
		t.Errorf("BackupRoot = %q, want %q", cfg.BackupRoot, root)
	}
	if cfg.HomeRoot != "/home/tester" {
		t.Errorf("HomeRoot = %q, want /home/tester", cfg.HomeRoot)
	}

	sys := cfg.Category(System)
	if !reflect.DeepEqual(sys.Sources, []string{"/etc/hosts", "/etc/fstab"}) {
		t.Errorf("System sources = %v", sys.Sources)
	}
	if !sys.Active() {
		t.Error("System should be active")
	}
	if cfg.Category(Editor).Active() {
		t.Error("Editor should be inactive when unset")
	}

	if f, ok := cfg.ConfigFileFor("legacy"); !ok || f != AlternateConfigFile {
		t.Errorf("ConfigFileFor(legacy) = %q, %v", f, ok)
	}
	if _, ok := cfg.ConfigFileFor("broken"); ok {
		t.Error("malformed pair should be ignored")
	}
	if !reflect.DeepEqual(cfg.ComponentFolders, []string{"api", "frontend", "backend"}) {
		t.Errorf("ComponentFolders default = %v", cfg.ComponentFolders)
	}
	if !reflect.DeepEqual(cfg.EscalationCommand, []string{"sudo"}) {
		t.Errorf("EscalationCommand default = %v", cfg.EscalationCommand)
	}
}

func TestLoad_MissingBackupRoot(t *testing.T) {
	_, err := Load(Options{LookupEnv: envMap(nil)})
	if !errors.Is(err, ErrMissingBackupRoot) {
		t.Fatalf("expected ErrMissingBackupRoot, got %v", err)
	}
}

func TestLoad_EscalationCommand(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(Options{LookupEnv: envMap(map[string]string{
		"BACKUP_LOCATION":           root,
		"BACKUP_ESCALATION_COMMAND": `doas -u "backup admin"`,
	})})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"doas", "-u", "backup admin"}
	if !reflect.DeepEqual(cfg.EscalationCommand, want) {
		t.Errorf("EscalationCommand = %v, want %v", cfg.EscalationCommand, want)
	}

	_, err = Load(Options{LookupEnv: envMap(map[string]string{
		"BACKUP_LOCATION":           root,
		"BACKUP_ESCALATION_COMMAND": `sudo "unterminated`,
	})})
	if err == nil {
		t.Error("expected an error for an unterminated quote")
	}
}

func TestLoad_ExpandsSourcePaths(t *testing.T) {
	root := t.TempDir()
	srcDir := t.TempDir()
	t.Setenv("DEVBACKUP_TEST_SRC", srcDir)
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	cfg, err := Load(Options{LookupEnv: envMap(map[string]string{
		"BACKUP_LOCATION":                root,
		"SYSTEM_SOURCE_PATHS":            "$DEVBACKUP_TEST_SRC/etc/hosts, ~/.ssh/config",
		"SYSTEM_DESTINATION_FOLDER_NAME": "system",
		"HOME_SOURCE_PATHS":              ".bashrc,${DEVBACKUP_TEST_SRC}/notes",
		"HOME_DESTINATION_FOLDER_NAME":   "home",
	})})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	wantSystem := []string{filepath.Join(srcDir, "etc", "hosts"), filepath.Join(home, ".ssh", "config")}
	if got := cfg.Category(System).Sources; !reflect.DeepEqual(got, wantSystem) {
		t.Errorf("System sources = %v, want %v", got, wantSystem)
	}

	// Relative specifiers stay relative so they resolve against the home root.
	wantHome := []string{".bashrc", filepath.Join(srcDir, "notes")}
	if got := cfg.Category(Home).Sources; !reflect.DeepEqual(got, wantHome) {
		t.Errorf("Home sources = %v, want %v", got, wantHome)
	}
}

func TestLoad_YAMLFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.yaml")
	content := `backup_root: ` + dir + `/out
categories:
  editor:
    folder: vscode
    sources: [/home/u/.config/Code/User/settings.json]
  deployments:
    folder: deployments
    sources: [/srv/proj1/app]
environments:
  config_files:
    legacy: .env.rb
  component_folders: [api, web]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(Options{
		File: path,
		LookupEnv: envMap(map[string]string{
			"DEPLOYMENT_SOURCE_PATHS": "",
		}),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BackupRoot != filepath.Join(dir, "out") {
		t.Errorf("BackupRoot = %q", cfg.BackupRoot)
	}
	if got := cfg.Category(Editor); got.Folder != "vscode" || len(got.Sources) != 1 {
		t.Errorf("Editor = %+v", got)
	}
	if cfg.Category(Deployments).Active() {
		t.Error("empty env value should deactivate deployments")
	}
	if !cfg.IsComponentFolder("web") || cfg.IsComponentFolder("frontend") {
		t.Errorf("ComponentFolders = %v", cfg.ComponentFolders)
	}
}

func TestLoad_TOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.toml")
	content := `backup_root = "` + dir + `"
escalation_command = ["doas"]

[categories.home]
folder = "home"
sources = [".bashrc", ".config/nvim"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(Options{File: path, LookupEnv: envMap(nil)})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	home := cfg.Category(Home)
	if home.Folder != "home" || !reflect.DeepEqual(home.Sources, []string{".bashrc", ".config/nvim"}) {
		t.Errorf("Home = %+v", home)
	}
	if !reflect.DeepEqual(cfg.EscalationCommand, []string{"doas"}) {
		t.Errorf("EscalationCommand = %v", cfg.EscalationCommand)
	}
}

func TestLoad_UnknownCategoryInFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.yaml")
	content := "backup_root: /tmp\ncategories:\n  music:\n    folder: m\n    sources: [a]\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(Options{File: path, LookupEnv: envMap(nil)}); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("DEVBACKUP_TEST_ROOT="+dir+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DEVBACKUP_TEST_ROOT", "")
	_ = os.Unsetenv("DEVBACKUP_TEST_ROOT")

	_, err := Load(Options{
		EnvFile:   envFile,
		LookupEnv: envMap(map[string]string{"BACKUP_LOCATION": "$DEVBACKUP_TEST_ROOT"}),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := os.Getenv("DEVBACKUP_TEST_ROOT"); got != dir {
		t.Errorf("env file not loaded, DEVBACKUP_TEST_ROOT = %q", got)
	}
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	_, err := Load(Options{
		EnvFile:   filepath.Join(t.TempDir(), "missing.env"),
		LookupEnv: envMap(map[string]string{"BACKUP_LOCATION": "/backup"}),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		categories map[Category]CategoryConfig
		opts       []Option
		wantErr    error
	}{
		{
			name: "valid",
			categories: map[Category]CategoryConfig{
				System: {Folder: "system", Sources: []string{"/etc/hosts"}},
				Home:   {Folder: "home/dotfiles", Sources: []string{".bashrc"}},
			},
		},
		{
			name: "folder is backup root",
			categories: map[Category]CategoryConfig{
				System: {Folder: ".", Sources: []string{"/etc/hosts"}},
			},
			wantErr: ErrInvalidFolder,
		},
		{
			name: "folder escapes root",
			categories: map[Category]CategoryConfig{
				System: {Folder: "../elsewhere", Sources: []string{"/etc/hosts"}},
			},
			wantErr: ErrInvalidFolder,
		},
		{
			name: "absolute folder",
			categories: map[Category]CategoryConfig{
				System: {Folder: "/etc", Sources: []string{"/etc/hosts"}},
			},
			wantErr: ErrInvalidFolder,
		},
		{
			name: "duplicate folder",
			categories: map[Category]CategoryConfig{
				System: {Folder: "shared", Sources: []string{"/etc/hosts"}},
				Editor: {Folder: "shared/", Sources: []string{"/a"}},
			},
			wantErr: ErrDuplicateFolder,
		},
		{
			name: "nested folder",
			categories: map[Category]CategoryConfig{
				System: {Folder: "bk/system", Sources: []string{"/etc/hosts"}},
				Editor: {Folder: "bk", Sources: []string{"/a"}},
			},
			wantErr: ErrOverlappingFolder,
		},
		{
			name: "outer folder listed first",
			categories: map[Category]CategoryConfig{
				System: {Folder: "bk", Sources: []string{"/etc/hosts"}},
				Home:   {Folder: "./bk/home/", Sources: []string{".bashrc"}},
			},
			wantErr: ErrOverlappingFolder,
		},
		{
			name: "sibling folders sharing a prefix",
			categories: map[Category]CategoryConfig{
				System: {Folder: "bk", Sources: []string{"/etc/hosts"}},
				Editor: {Folder: "bkx/editor", Sources: []string{"/a"}},
			},
		},
		{
			name: "nesting with an inactive category is allowed",
			categories: map[Category]CategoryConfig{
				System: {Folder: "bk/system", Sources: []string{"/etc/hosts"}},
				Editor: {Folder: "bk"},
			},
		},
		{
			name: "inactive categories are not validated",
			categories: map[Category]CategoryConfig{
				System: {Folder: "..", Sources: nil},
				Editor: {Folder: "", Sources: []string{"/a"}},
			},
		},
		{
			name: "unknown config file variant",
			categories: map[Category]CategoryConfig{
				Environments: {Folder: "projects", Sources: []string{"a"}},
			},
			opts:    []Option{WithConfigFiles(map[string]string{"a": ".envrc"})},
			wantErr: ErrUnknownConfigFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("/backup", tt.categories, tt.opts...)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("New() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategory_ReturnsCopy(t *testing.T) {
	cfg, err := New("/backup", map[Category]CategoryConfig{
		System: {Folder: "system", Sources: []string{"/etc/hosts"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	cc := cfg.Category(System)
	cc.Sources[0] = "/mutated"
	if cfg.Category(System).Sources[0] != "/etc/hosts" {
		t.Error("Category() must not expose internal state")
	}
}
