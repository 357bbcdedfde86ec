package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/mcprebuild/internal/config"
	"github.com/dyluth/mcprebuild/internal/printer"
	"github.com/dyluth/mcprebuild/internal/project"
)

//go:embed templates/*
var templatesFS embed.FS

// ExampleDir is the example project created under the mods directory.
var ExampleDir = filepath.Join("mods", "example")

const categoryPlaceholder = "This is a placeholder file to mark this directory as a category, not a project."

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize creates the mcprebuild workspace skeleton in base.
// If force is true, it will remove an existing mcprebuild.yml and example project.
func Initialize(base string, force bool) error {
	if force {
		if err := handleForce(base); err != nil {
			return err
		}
	}

	files, err := getTemplateFiles()
	if err != nil {
		return err
	}

	if err := createDirectories(base); err != nil {
		return err
	}

	if err := writeFiles(base, files); err != nil {
		return err
	}

	return validateCreatedFiles(base)
}

// handleForce removes existing files if --force was specified
func handleForce(base string) error {
	cfgPath := filepath.Join(base, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		printer.Warning("Removing existing %s...\n", config.FileName)
		if err := os.Remove(cfgPath); err != nil {
			return fmt.Errorf("failed to remove %s: %w", config.FileName, err)
		}
	}

	example := filepath.Join(base, ExampleDir)
	if info, err := os.Stat(example); err == nil && info.IsDir() {
		printer.Warning("Removing existing %s/ directory...\n", filepath.ToSlash(ExampleDir))
		if err := os.RemoveAll(example); err != nil {
			return fmt.Errorf("failed to remove %s/ directory: %w", filepath.ToSlash(ExampleDir), err)
		}
	}

	return nil
}

// getTemplateFiles reads all template files and places them in the workspace
func getTemplateFiles() ([]FileInfo, error) {
	templates := []struct {
		template string
		path     string
	}{
		{"mcprebuild.yml.tmpl", config.FileName},
		{"README.md.tmpl", filepath.Join(ExampleDir, "README.md")},
		{"ExampleMod.java.tmpl", filepath.Join(ExampleDir, "src", "common", "example", "ExampleMod.java")},
	}

	files := make([]FileInfo, 0, len(templates)+4)
	for _, tmpl := range templates {
		content, err := templatesFS.ReadFile("templates/" + tmpl.template)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s template: %w", tmpl.template, err)
		}
		files = append(files, FileInfo{Path: tmpl.path, Content: content, Permissions: 0644})
	}

	conf := filepath.Join(ExampleDir, "conf")
	files = append(files,
		FileInfo{Path: filepath.Join("mods", project.MarkerCategory), Content: []byte(categoryPlaceholder), Permissions: 0644},
		FileInfo{Path: filepath.Join(conf, project.KeyProjectName), Content: []byte("Example Mod\n"), Permissions: 0644},
		FileInfo{Path: filepath.Join(conf, project.KeyVersion), Content: []byte("0.1\n"), Permissions: 0644},
		FileInfo{Path: filepath.Join(ExampleDir, "resources", "common", "example.txt"), Content: []byte("Packaged with every side.\n"), Permissions: 0644},
	)

	return files, nil
}

// createDirectories creates the necessary directory structure
func createDirectories(base string) error {
	dirs := []string{
		filepath.Join(ExampleDir, "conf"),
		filepath.Join(ExampleDir, "src", "common", "example"),
		filepath.Join(ExampleDir, "src", "client"),
		filepath.Join(ExampleDir, "src", "server"),
		filepath.Join(ExampleDir, "resources", "common"),
		"lib-obf",
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(filepath.Join(base, dir), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// writeFiles writes all template files to disk. An existing CATEGORY marker
// is left alone.
func writeFiles(base string, files []FileInfo) error {
	for _, file := range files {
		path := filepath.Join(base, file.Path)
		if filepath.Base(file.Path) == project.MarkerCategory {
			if _, err := os.Stat(path); err == nil {
				continue
			}
		}
		if err := os.WriteFile(path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return nil
}

// validateCreatedFiles checks the written configuration loads cleanly
func validateCreatedFiles(base string) error {
	cfgPath := filepath.Join(base, config.FileName)
	content, err := os.ReadFile(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read created %s: %w", config.FileName, err)
	}

	var yamlData interface{}
	if err := yaml.Unmarshal(content, &yamlData); err != nil {
		return fmt.Errorf("created %s is not valid YAML: %w", config.FileName, err)
	}

	if _, err := config.Load(base, cfgPath); err != nil {
		return fmt.Errorf("created %s is not a valid configuration: %w", config.FileName, err)
	}

	return nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess() {
	printer.Success("\nSuccessfully initialized mcprebuild workspace!\n")
	printer.Println("\nCreated:")
	printer.Println("  ✓ " + config.FileName)
	printer.Println("  ✓ mods/CATEGORY")
	printer.Println("  ✓ mods/example/conf/PROJECT_NAME")
	printer.Println("  ✓ mods/example/conf/VERSION")
	printer.Println("  ✓ mods/example/src/common/example/ExampleMod.java")
	printer.Println("  ✓ mods/example/resources/common/example.txt")
	printer.Println("  ✓ mods/example/README.md")
	printer.Println("\nNext steps:")
	printer.Println("  1. Run MCP's decompile and reobfuscate scripts if you have not already")
	printer.Println("  2. Put obfuscated library jars in lib-obf/ and run 'mcprebuild deobf-libs'")
	printer.Println("  3. Run 'mcprebuild recompile' to build packages/")
}
