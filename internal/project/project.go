// Package project loads user projects from the mods tree.
//
// A project is a directory holding src/, resources/ and an optional conf/
// directory of one-file-per-setting configuration. Directories can also be
// marked as categories (grouping nodes) or disabled with sentinel files.
package project

import (
	"os"
	"path/filepath"
	"strings"
)

// Settings read from <project>/conf/.
const (
	KeyProjectName    = "PROJECT_NAME"
	KeyVersion        = "VERSION"
	KeyPackageName    = "PACKAGE_NAME"
	KeyHideSource     = "HIDE_SOURCE"
	KeyPackageCommand = "PACKAGE_COMMAND"
)

// Project is one buildable unit discovered under the mods tree.
type Project struct {
	Dir            string
	Name           string
	Version        string // empty when unset
	PackageName    string // explicit package base name, empty when unset
	HideSource     bool
	PackageCommand string // shell command run after packaging, empty when unset
}

// Load reads the project rooted at dir.
func Load(dir string) *Project {
	p := &Project{Dir: dir}

	if name, ok := ReadString(dir, KeyProjectName); ok && name != "" {
		p.Name = name
	} else {
		p.Name = filepath.Base(dir)
	}
	p.Version, _ = ReadString(dir, KeyVersion)
	p.PackageName, _ = ReadString(dir, KeyPackageName)
	p.HideSource = ReadFlag(dir, KeyHideSource)
	p.PackageCommand, _ = ReadString(dir, KeyPackageCommand)

	return p
}

// ReadString returns the whitespace-trimmed contents of dir/conf/key.
// The second result is false when the setting is absent or unreadable.
func ReadString(dir, key string) (string, bool) {
	data, err := os.ReadFile(confPath(dir, key))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// ReadFlag reports whether the boolean setting key is present. The file's
// contents are irrelevant.
func ReadFlag(dir, key string) bool {
	info, err := os.Stat(confPath(dir, key))
	return err == nil && info.Mode().IsRegular()
}

// PackageFileName returns the archive file name for this project with the
// given side suffix (e.g. "-server").
func (p *Project) PackageFileName(suffix string) string {
	base := p.PackageName
	if base == "" {
		base = p.Name
		if p.Version != "" {
			base += "-" + p.Version
		}
	}
	return base + suffix + ".zip"
}

// SourceDir returns <project>/src/<sub>.
func (p *Project) SourceDir(sub string) string {
	return filepath.Join(p.Dir, "src", sub)
}

// ResourceDir returns <project>/resources/<sub>.
func (p *Project) ResourceDir(sub string) string {
	return filepath.Join(p.Dir, "resources", sub)
}

func confPath(dir, key string) string {
	return filepath.Join(dir, "conf", key)
}
