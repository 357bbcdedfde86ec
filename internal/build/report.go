package build

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ReportFileName is written to the packages directory after every run.
const ReportFileName = "build-report.yml"

// Outcome is the result of one project on one side.
type Outcome string

const (
	OutcomeBuilt   Outcome = "built"
	OutcomeSkipped Outcome = "skipped" // nothing to package
	OutcomeFailed  Outcome = "failed"
)

// ProjectResult records what happened to one project.
type ProjectResult struct {
	Name  string             `yaml:"name"`
	Dir   string             `yaml:"dir"`
	Sides map[string]Outcome `yaml:"sides"`
	Error string             `yaml:"error,omitempty"`
}

// Built reports whether any side produced a package.
func (r *ProjectResult) Built() bool {
	for _, o := range r.Sides {
		if o == OutcomeBuilt {
			return true
		}
	}
	return false
}

// Failed reports whether any side failed.
func (r *ProjectResult) Failed() bool {
	for _, o := range r.Sides {
		if o == OutcomeFailed {
			return true
		}
	}
	return false
}

// Report summarises one pipeline run.
type Report struct {
	RunID    string          `yaml:"run_id"`
	Started  time.Time       `yaml:"started"`
	Finished time.Time       `yaml:"finished"`
	Sides    []string        `yaml:"sides"`
	Projects []ProjectResult `yaml:"projects"`
}

// NewReport starts a report for a run over sides.
func NewReport(sides []Side) *Report {
	names := make([]string, 0, len(sides))
	for _, s := range sides {
		names = append(names, s.String())
	}
	return &Report{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
		Sides:   names,
	}
}

// Tally counts successful projects and per-side packages.
type Tally struct {
	Projects int
	Failed   int
	PerSide  map[string]int
}

// Tally computes the success counts. A project counts once if at least one of
// its sides was built.
func (r *Report) Tally() Tally {
	t := Tally{PerSide: make(map[string]int, len(r.Sides))}
	for _, s := range r.Sides {
		t.PerSide[s] = 0
	}

	for i := range r.Projects {
		pr := &r.Projects[i]
		if pr.Built() {
			t.Projects++
		}
		if pr.Failed() {
			t.Failed++
		}
		for side, o := range pr.Sides {
			if o == OutcomeBuilt {
				t.PerSide[side]++
			}
		}
	}
	return t
}

// Write stores the report as YAML at path.
func (r *Report) Write(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal build report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write build report: %w", err)
	}
	return nil
}

// ReadReport loads a report written by Write.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read build report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse build report: %w", err)
	}
	return &r, nil
}
