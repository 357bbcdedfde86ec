// Package fileset collects the files under a directory tree.
package fileset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Set is an unordered collection of paths.
type Set map[string]struct{}

// Options controls Collect.
type Options struct {
	// Relative returns paths relative to the root instead of absolute ones.
	Relative bool
	// Extension keeps only files with this extension (".java"), compared
	// case-insensitively. Empty keeps everything.
	Extension string
	// Hidden also collects dotfiles and descends into dot-directories.
	Hidden bool
}

// Collect returns every regular file under root. Unless opts.Hidden is set,
// files and directories whose names start with a dot are skipped. Symbolic
// links are followed, so a directory linked in twice contributes its files
// under both paths; links back to an enclosing directory are not. A missing
// root yields an empty set.
func Collect(root string, opts Options) (Set, error) {
	files := make(Set)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if !IsDir(absRoot) {
		return files, nil
	}

	ext := strings.ToLower(opts.Extension)
	// real paths of the directories being walked, root first; a link back to
	// one of them is a loop
	ancestors := make(map[string]bool)

	var walk func(dir string) error
	walk = func(dir string) error {
		real, err := filepath.EvalSymlinks(dir)
		if err != nil {
			return nil
		}
		if ancestors[real] {
			return nil
		}
		ancestors[real] = true
		defer delete(ancestors, real)

		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			name := entry.Name()
			if !opts.Hidden && strings.HasPrefix(name, ".") {
				continue
			}
			path := filepath.Join(dir, name)

			info, err := os.Stat(path)
			if err != nil {
				// dangling symlink
				continue
			}
			if info.IsDir() {
				if err := walk(path); err != nil {
					return err
				}
				continue
			}
			if !info.Mode().IsRegular() {
				continue
			}
			if ext != "" && strings.ToLower(filepath.Ext(name)) != ext {
				continue
			}

			if opts.Relative {
				rel, err := filepath.Rel(absRoot, path)
				if err != nil {
					return err
				}
				files[rel] = struct{}{}
			} else {
				files[path] = struct{}{}
			}
		}
		return nil
	}

	if err := walk(absRoot); err != nil {
		return nil, err
	}
	return files, nil
}

// Sorted returns the set's members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Union adds every member of other to s and returns s.
func (s Set) Union(other Set) Set {
	for p := range other {
		s[p] = struct{}{}
	}
	return s
}

// IsDir reports whether path is a directory, following symlinks.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// HasEntries reports whether dir exists and contains at least one entry.
func HasEntries(dir string) bool {
	f, err := os.Open(dir)
	if err != nil {
		return false
	}
	defer f.Close()

	names, err := f.Readdirnames(1)
	return err == nil && len(names) > 0
}

// Exists reports whether anything exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// List returns the files directly inside dir whose extension matches one of
// exts (case-insensitive), sorted. A missing dir yields nothing.
func List(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range exts {
			if ext == strings.ToLower(want) {
				out = append(out, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Clean removes dir and recreates it empty.
func Clean(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clean %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}
