package filter

import (
	"fmt"
	"path/filepath"

	"github.com/dyluth/mcprebuild/internal/project"
)

// Criteria selects projects for a run.
// All filters are ANDed together - a project must match ALL criteria to pass.
type Criteria struct {
	NameGlob    string // Glob against the project name or directory name, empty = no filter
	ExcludeGlob string // Glob of projects to leave out, empty = no filter
}

// Validate reports malformed glob patterns up front so a typo is not silently
// treated as "matches nothing".
func (c *Criteria) Validate() error {
	for _, pattern := range []string{c.NameGlob, c.ExcludeGlob} {
		if pattern == "" {
			continue
		}
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid project pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// Matches returns true if the project matches all filter criteria.
func (c *Criteria) Matches(p *project.Project) bool {
	if c.NameGlob != "" && !matchesProject(c.NameGlob, p) {
		return false
	}
	if c.ExcludeGlob != "" && matchesProject(c.ExcludeGlob, p) {
		return false
	}
	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.NameGlob != "" || c.ExcludeGlob != ""
}

func matchesProject(pattern string, p *project.Project) bool {
	for _, candidate := range []string{p.Name, filepath.Base(p.Dir)} {
		if ok, err := filepath.Match(pattern, candidate); err == nil && ok {
			return true
		}
	}
	return false
}
