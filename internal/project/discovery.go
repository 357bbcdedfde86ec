package project

import (
	"os"
	"path/filepath"
	"sort"
)

// Sentinel files that change how a directory is treated during discovery.
const (
	MarkerDisabled = "DISABLED"
	MarkerCategory = "CATEGORY"
)

// Kind classifies a directory visited during discovery.
type Kind int

const (
	KindProject Kind = iota
	KindCategory
	KindDisabled
)

func (k Kind) String() string {
	switch k {
	case KindProject:
		return "project"
	case KindCategory:
		return "category"
	case KindDisabled:
		return "disabled"
	}
	return "unknown"
}

// Observer is notified once per directory classified during discovery.
type Observer func(dir string, kind Kind)

// Discover walks root depth-first and returns every project found, in walk
// order. Children are visited in lexical order and symbolic links to
// directories are followed, except links back into a directory that is being
// walked.
//
// A directory holding DISABLED is skipped along with its subtree. A directory
// holding CATEGORY is descended into. Any other directory is a project and its
// children are not examined. A missing root yields no projects.
func Discover(root string, observe Observer) []*Project {
	var projects []*Project
	// real paths of the directories being walked; a link back to one of them
	// is a loop
	ancestors := make(map[string]bool)

	var walk func(dir string)
	walk = func(dir string) {
		real, err := filepath.EvalSymlinks(dir)
		if err != nil {
			return
		}
		info, err := os.Stat(real)
		if err != nil || !info.IsDir() || ancestors[real] {
			return
		}
		ancestors[real] = true
		defer delete(ancestors, real)

		kind := Classify(dir)
		if observe != nil {
			observe(dir, kind)
		}

		switch kind {
		case KindDisabled:
			return
		case KindProject:
			projects = append(projects, Load(dir))
			return
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			child := filepath.Join(dir, name)
			if isDir(child) {
				walk(child)
			}
		}
	}

	walk(root)
	return projects
}

// Classify decides how discovery treats dir. DISABLED takes precedence over
// CATEGORY.
func Classify(dir string) Kind {
	switch {
	case isFile(filepath.Join(dir, MarkerDisabled)):
		return KindDisabled
	case isFile(filepath.Join(dir, MarkerCategory)):
		return KindCategory
	default:
		return KindProject
	}
}

// isDir follows symlinks.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
