package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/mcprebuild/internal/config"
)

// CheckExisting checks if mcprebuild.yml or the example project already exist
// in base. Returns an error if they do, nil otherwise
func CheckExisting(base string) error {
	var existingFiles []string

	if _, err := os.Stat(filepath.Join(base, config.FileName)); err == nil {
		existingFiles = append(existingFiles, config.FileName)
	}

	if info, err := os.Stat(filepath.Join(base, ExampleDir)); err == nil && info.IsDir() {
		existingFiles = append(existingFiles, filepath.ToSlash(ExampleDir)+"/")
	}

	if len(existingFiles) > 0 {
		errMsg := "workspace already initialized\n\nFound existing"
		if len(existingFiles) == 1 {
			errMsg += fmt.Sprintf(": %s", existingFiles[0])
		} else {
			errMsg += " files:\n"
			for _, file := range existingFiles {
				errMsg += fmt.Sprintf("  - %s\n", file)
			}
		}
		errMsg += "\nUse 'mcprebuild init --force' to reinitialize (this will overwrite existing configuration)"

		return fmt.Errorf("%s", errMsg)
	}

	return nil
}
