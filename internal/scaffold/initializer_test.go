package scaffold

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/mcprebuild/internal/config"
	"github.com/dyluth/mcprebuild/internal/printer"
	"github.com/dyluth/mcprebuild/internal/project"
)

func TestMain(m *testing.M) {
	printer.SetOutput(io.Discard, io.Discard)
	os.Exit(m.Run())
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name      string
		force     bool
		setupFunc func(string)
		wantErr   bool
	}{
		{
			name:      "fresh initialization",
			force:     false,
			setupFunc: func(dir string) {},
			wantErr:   false,
		},
		{
			name:  "force initialization removes existing files",
			force: true,
			setupFunc: func(dir string) {
				os.WriteFile(filepath.Join(dir, config.FileName), []byte("old content"), 0644)
				os.MkdirAll(filepath.Join(dir, "mods", "example", "src", "common", "old"), 0755)
				os.WriteFile(filepath.Join(dir, "mods", "example", "src", "common", "old", "Old.java"), []byte("old"), 0644)
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			tt.setupFunc(tmpDir)

			err := Initialize(tmpDir, tt.force)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Initialize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			expectedFiles := []string{
				config.FileName,
				"mods/CATEGORY",
				"mods/example/README.md",
				"mods/example/conf/PROJECT_NAME",
				"mods/example/conf/VERSION",
				"mods/example/src/common/example/ExampleMod.java",
				"mods/example/resources/common/example.txt",
			}
			for _, path := range expectedFiles {
				if _, err := os.Stat(filepath.Join(tmpDir, path)); err != nil {
					t.Errorf("Expected file %s to exist, but got error: %v", path, err)
				}
			}

			content, err := os.ReadFile(filepath.Join(tmpDir, config.FileName))
			if err != nil {
				t.Fatalf("Failed to read %s: %v", config.FileName, err)
			}
			var yamlData interface{}
			if err := yaml.Unmarshal(content, &yamlData); err != nil {
				t.Errorf("%s is not valid YAML: %v", config.FileName, err)
			}

			if tt.force {
				old := filepath.Join(tmpDir, "mods", "example", "src", "common", "old")
				if _, err := os.Stat(old); err == nil {
					t.Errorf("Expected old sources to be removed, but they still exist")
				}
			}
		})
	}
}

func TestInitialize_ProducesWorkingWorkspace(t *testing.T) {
	tmpDir := t.TempDir()
	if err := Initialize(tmpDir, false); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	cfg, err := config.Load(tmpDir, "")
	if err != nil {
		t.Fatalf("generated configuration does not load: %v", err)
	}
	if got := cfg.Paths.Mods; got != filepath.Join(tmpDir, "mods") {
		t.Errorf("Paths.Mods = %s", got)
	}

	projects := project.Discover(cfg.Paths.Mods, nil)
	if len(projects) != 1 {
		t.Fatalf("expected the example project to be discovered, got %d projects", len(projects))
	}
	if projects[0].Name != "Example Mod" || projects[0].Version != "0.1" {
		t.Errorf("unexpected example project: %+v", projects[0])
	}
}

func TestInitialize_KeepsExistingCategory(t *testing.T) {
	tmpDir := t.TempDir()
	marker := filepath.Join(tmpDir, "mods", project.MarkerCategory)
	os.MkdirAll(filepath.Dir(marker), 0755)
	os.WriteFile(marker, []byte("mine"), 0644)

	if err := Initialize(tmpDir, false); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	content, _ := os.ReadFile(marker)
	if string(content) != "mine" {
		t.Errorf("existing CATEGORY was overwritten: %q", content)
	}
}

func TestHandleForce(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(string)
	}{
		{
			name: "removes existing mcprebuild.yml",
			setupFunc: func(dir string) {
				os.WriteFile(filepath.Join(dir, config.FileName), []byte("content"), 0644)
			},
		},
		{
			name: "removes existing example project",
			setupFunc: func(dir string) {
				os.MkdirAll(filepath.Join(dir, "mods", "example", "conf"), 0755)
				os.WriteFile(filepath.Join(dir, "mods", "example", "conf", "VERSION"), []byte("9"), 0644)
			},
		},
		{
			name:      "handles when files don't exist",
			setupFunc: func(dir string) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			tt.setupFunc(tmpDir)

			if err := handleForce(tmpDir); err != nil {
				t.Fatalf("handleForce() error = %v", err)
			}

			if _, err := os.Stat(filepath.Join(tmpDir, config.FileName)); err == nil {
				t.Errorf("%s should have been removed", config.FileName)
			}
			if _, err := os.Stat(filepath.Join(tmpDir, "mods", "example")); err == nil {
				t.Errorf("mods/example/ should have been removed")
			}
		})
	}
}

func TestHandleForce_LeavesOtherProjects(t *testing.T) {
	tmpDir := t.TempDir()
	other := filepath.Join(tmpDir, "mods", "mine", "conf")
	os.MkdirAll(other, 0755)

	if err := handleForce(tmpDir); err != nil {
		t.Fatalf("handleForce() error = %v", err)
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("user project was removed: %v", err)
	}
}

func TestGetTemplateFiles(t *testing.T) {
	files, err := getTemplateFiles()
	if err != nil {
		t.Fatalf("getTemplateFiles() error = %v", err)
	}

	if len(files) != 7 {
		t.Errorf("Expected 7 files, got %d", len(files))
	}

	for _, file := range files {
		if len(file.Content) == 0 {
			t.Errorf("File %s has empty content", file.Path)
		}
		if file.Permissions != 0644 {
			t.Errorf("File %s should have 0644 permissions, got %o", file.Path, file.Permissions)
		}
	}
}
