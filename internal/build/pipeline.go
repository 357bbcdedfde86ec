package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dyluth/mcprebuild/internal/config"
	"github.com/dyluth/mcprebuild/internal/fileset"
	"github.com/dyluth/mcprebuild/internal/printer"
	"github.com/dyluth/mcprebuild/internal/project"
	"github.com/dyluth/mcprebuild/internal/toolchain"
)

const categoryPlaceholder = "This is a placeholder file to mark this directory as a category, not a project."

// Options tunes a pipeline run.
type Options struct {
	// Sides to build, in processing order. Defaults to the configured sides.
	Sides []Side
	// Select limits the run to matching projects. Nil selects everything.
	Select func(*project.Project) bool
	// KeepGoing records a failing project and moves on instead of aborting.
	KeepGoing bool
	// ForceInheritance rebuilds cached inheritance tables.
	ForceInheritance bool
}

// BatchError aggregates the project failures of a KeepGoing run.
type BatchError struct {
	Failures []*ProjectError
}

func (e *BatchError) Error() string {
	names := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		names = append(names, f.Project)
	}
	return fmt.Sprintf("%d %s failed: %s", len(e.Failures), printer.Plural(len(e.Failures), "project"), strings.Join(names, ", "))
}

// Pipeline drives discovery, compilation, packaging and remapping.
type Pipeline struct {
	cfg     *config.Config
	builder *Builder
	opts    Options
}

// NewPipeline creates a pipeline over cfg. Commands go through runner.
func NewPipeline(cfg *config.Config, runner toolchain.Runner, opts Options) (*Pipeline, error) {
	if len(opts.Sides) == 0 {
		sides, err := ParseSides(cfg.Sides)
		if err != nil {
			return nil, err
		}
		opts.Sides = sides
	}
	return &Pipeline{
		cfg:     cfg,
		builder: NewBuilder(cfg, runner, opts.ForceInheritance),
		opts:    opts,
	}, nil
}

// Builder exposes the underlying step runner.
func (pl *Pipeline) Builder() *Builder { return pl.builder }

// CheckPrerequisites verifies that MCP has produced the deobfuscated platform
// jar and reobfuscation mapping of every side being built.
func (pl *Pipeline) CheckPrerequisites() error {
	var missing []string
	for _, side := range pl.opts.Sides {
		art := side.Artifacts(pl.cfg)
		for _, path := range []string{art.Jar, art.Mapping} {
			if !fileset.Exists(path) {
				missing = append(missing, path)
			}
		}
	}
	if len(missing) > 0 {
		return &MissingPrerequisiteError{
			Missing: missing,
			Hint:    "Please finish setting up MCP. You must run decompile and reobfuscate before recompiling mods.",
		}
	}
	return nil
}

// Discover ensures the mods directory exists and returns the selected projects.
// A freshly created mods directory is marked as a category.
func (pl *Pipeline) Discover(observe project.Observer) ([]*project.Project, error) {
	mods := pl.cfg.Paths.Mods
	if !fileset.Exists(mods) {
		if err := os.MkdirAll(mods, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", mods, err)
		}
		placeholder := filepath.Join(mods, project.MarkerCategory)
		if err := os.WriteFile(placeholder, []byte(categoryPlaceholder), 0644); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", placeholder, err)
		}
	}

	all := project.Discover(mods, observe)
	if pl.opts.Select == nil {
		return all, nil
	}

	selected := make([]*project.Project, 0, len(all))
	for _, p := range all {
		if pl.opts.Select(p) {
			selected = append(selected, p)
		}
	}
	return selected, nil
}

// Run executes a full rebuild. The returned report is non-nil once the
// prerequisites pass, even when the run fails; it has also been written to
// the packages directory.
func (pl *Pipeline) Run(ctx context.Context) (*Report, error) {
	if err := pl.CheckPrerequisites(); err != nil {
		return nil, err
	}

	for _, dir := range []string{pl.cfg.Paths.Temp, pl.cfg.Paths.Packages} {
		if err := fileset.Clean(dir); err != nil {
			return nil, err
		}
	}

	projects, err := pl.Discover(announce)
	if err != nil {
		return nil, err
	}
	printer.Println()

	libClasspath, err := pl.builder.LibraryClasspath()
	if err != nil {
		return nil, err
	}
	libInheritance, err := pl.builder.LibraryInheritance()
	if err != nil {
		return nil, err
	}

	report := NewReport(pl.opts.Sides)
	var failures []*ProjectError

	for _, p := range projects {
		printer.Step("Processing %s...\n", p.Name)

		result, perr := pl.buildProject(ctx, p, libClasspath, libInheritance)
		report.Projects = append(report.Projects, result)

		if perr == nil {
			continue
		}
		if !pl.opts.KeepGoing {
			return pl.finish(report, perr)
		}
		printer.Warning("%v\n", perr)
		failures = append(failures, perr)
	}

	if len(failures) > 0 {
		return pl.finish(report, &BatchError{Failures: failures})
	}
	return pl.finish(report, nil)
}

// buildProject runs every side of one project, stopping at the first failure.
func (pl *Pipeline) buildProject(ctx context.Context, p *project.Project, libClasspath, libInheritance []string) (ProjectResult, *ProjectError) {
	result := ProjectResult{Name: p.Name, Dir: p.Dir, Sides: make(map[string]Outcome)}

	for _, side := range pl.opts.Sides {
		outcome, err := pl.buildSide(ctx, p, side, libClasspath, libInheritance)
		result.Sides[side.String()] = outcome
		if err != nil {
			perr := &ProjectError{Project: p.Name, Side: side, Err: err}
			result.Error = perr.Error()
			return result, perr
		}
	}
	return result, nil
}

func (pl *Pipeline) buildSide(ctx context.Context, p *project.Project, side Side, libClasspath, libInheritance []string) (Outcome, error) {
	b := pl.builder
	scratch := b.ScratchDir(p, side)

	if err := fileset.Clean(scratch); err != nil {
		return OutcomeFailed, err
	}
	if err := b.Compile(ctx, p, side, scratch, libClasspath); err != nil {
		return OutcomeFailed, err
	}

	created, err := b.Package(p, side, scratch)
	if err != nil {
		return OutcomeFailed, err
	}
	if !created {
		return OutcomeSkipped, nil
	}

	if err := b.RunPackageCommand(ctx, p, side); err != nil {
		return OutcomeFailed, err
	}
	if err := b.Remap(ctx, p, side, libInheritance); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeBuilt, nil
}

// finish stamps, prints and stores the report.
func (pl *Pipeline) finish(report *Report, runErr error) (*Report, error) {
	report.Finished = time.Now().UTC()

	if runErr == nil || errors.As(runErr, new(*BatchError)) {
		PrintTally(report)
	}

	if err := report.Write(filepath.Join(pl.cfg.Paths.Packages, ReportFileName)); err != nil {
		if runErr != nil {
			return report, runErr
		}
		return report, err
	}
	return report, runErr
}

// PrintTally prints the closing success summary.
func PrintTally(report *Report) {
	t := report.Tally()
	printer.Info("%d %s compiled and packaged successfully.\n", t.Projects, printer.Plural(t.Projects, "project"))
	if t.Projects == 0 {
		return
	}

	parts := make([]string, 0, len(report.Sides))
	for _, side := range report.Sides {
		parts = append(parts, fmt.Sprintf("%d %s", t.PerSide[side], side))
	}
	printer.Info("(%s)\n", strings.Join(parts, ", "))
}

func announce(dir string, kind project.Kind) {
	switch kind {
	case project.KindDisabled:
		printer.Info("Disabled project or category at %s.\n", dir)
	case project.KindCategory:
		printer.Info("Found category at %s, recursing.\n", dir)
	case project.KindProject:
		printer.Info("Found project at %s.\n", dir)
	}
}
