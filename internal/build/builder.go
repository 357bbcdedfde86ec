// Package build compiles, packages and reobfuscates user projects.
//
// Each project is processed once per enabled side: its sources are compiled
// into a scratch directory, the sources, classes and resources are layered
// into a zip package, and the package is handed to the remapping tool which
// writes the reobfuscated result to the packages directory.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dyluth/mcprebuild/internal/archive"
	"github.com/dyluth/mcprebuild/internal/config"
	"github.com/dyluth/mcprebuild/internal/fileset"
	"github.com/dyluth/mcprebuild/internal/printer"
	"github.com/dyluth/mcprebuild/internal/project"
	"github.com/dyluth/mcprebuild/internal/toolchain"
)

// Builder runs the per-project steps against one workspace configuration.
type Builder struct {
	cfg      *config.Config
	runner   toolchain.Runner
	javac    toolchain.Javac
	remapper toolchain.Remapper

	forceInheritance bool
	builtInheritance map[string]bool // tables written during this run
}

// NewBuilder creates a Builder. With forceInheritance set, every inheritance
// table is rebuilt once per run even if a cached copy exists.
func NewBuilder(cfg *config.Config, runner toolchain.Runner, forceInheritance bool) *Builder {
	return &Builder{
		cfg:    cfg,
		runner: runner,
		javac:  toolchain.Javac{Path: cfg.Tools.Javac},
		remapper: toolchain.Remapper{
			Java:      cfg.Tools.Java,
			Classpath: cfg.Tools.RemapperClasspath,
			MainClass: cfg.Tools.RemapperMainClass,
		},
		forceInheritance: forceInheritance,
		builtInheritance: make(map[string]bool),
	}
}

// PackagePath is where the unobfuscated package for (p, side) is assembled.
func (b *Builder) PackagePath(p *project.Project, side Side) string {
	return filepath.Join(b.cfg.Paths.Temp, p.PackageFileName(side.PackageSuffix()))
}

// ScratchDir is the compile output directory for (p, side). Each project and
// side gets its own directory.
func (b *Builder) ScratchDir(p *project.Project, side Side) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(p.Name)
	return filepath.Join(b.cfg.Paths.Temp, name+side.ScratchSuffix())
}

// LibraryClasspath lists the deobfuscated libraries projects compile against.
func (b *Builder) LibraryClasspath() ([]string, error) {
	return fileset.List(b.cfg.Paths.Lib, ".jar", ".zip")
}

// LibraryInheritance lists the inheritance tables of deobfuscated libraries.
func (b *Builder) LibraryInheritance() ([]string, error) {
	return fileset.List(b.cfg.Paths.Lib, ".inh")
}

// Compile compiles the project's common sources plus the side's own sources
// into outDir. Nothing is run when the project has no sources for the side.
func (b *Builder) Compile(ctx context.Context, p *project.Project, side Side, outDir string, libraryClasspath []string) error {
	sourceDirs := []string{p.SourceDir("common")}
	if sub := side.Subtree(); sub != "" {
		sourceDirs = append(sourceDirs, p.SourceDir(sub))
	}

	sources := make(fileset.Set)
	for _, dir := range sourceDirs {
		files, err := fileset.Collect(dir, fileset.Options{Extension: b.cfg.Tools.SourceExtension})
		if err != nil {
			return fmt.Errorf("failed to collect sources in %s: %w", dir, err)
		}
		sources.Union(files)
	}
	if len(sources) == 0 {
		return nil
	}

	classpath := append([]string{side.Artifacts(b.cfg).BinDir}, libraryClasspath...)
	cmd := b.javac.Compile(sourceDirs, classpath, outDir, sources.Sorted())
	return b.runner.Run(ctx, cmd)
}

// Package assembles the package for (p, side) from scratch and reports whether
// it received any file. Layers are written common first so side-specific files
// replace common ones of the same name:
//
//	src/common, src/<side>         (skipped with HIDE_SOURCE)
//	compiled classes
//	resources/common, resources/<side>
func (b *Builder) Package(p *project.Project, side Side, classesDir string) (bool, error) {
	pkg := b.PackagePath(p, side)
	if err := os.Remove(pkg); err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to remove old package %s: %w", pkg, err)
	}

	sub := side.Subtree()
	var layers []string

	if !p.HideSource {
		if dir := p.SourceDir("common"); fileset.HasEntries(dir) {
			layers = append(layers, dir)
		}
		if dir := p.SourceDir(sub); sub != "" && fileset.HasEntries(dir) {
			layers = append(layers, dir)
		}
	}
	if fileset.HasEntries(classesDir) {
		layers = append(layers, classesDir)
	}
	if dir := p.ResourceDir("common"); fileset.IsDir(dir) {
		layers = append(layers, dir)
	}
	if dir := p.ResourceDir(sub); sub != "" && fileset.IsDir(dir) {
		layers = append(layers, dir)
	}

	created := false
	for _, dir := range layers {
		n, err := archive.Append(pkg, dir, nil)
		if err != nil {
			return false, err
		}
		if n > 0 {
			created = true
		}
	}

	if !created {
		// an archive holding nothing is no package at all
		_ = os.Remove(pkg)
	}
	return created, nil
}

// RunPackageCommand runs the project's PACKAGE_COMMAND, if any, in the project
// directory. The package path and side are passed in the environment.
func (b *Builder) RunPackageCommand(ctx context.Context, p *project.Project, side Side) error {
	if p.PackageCommand == "" {
		return nil
	}
	cmd := toolchain.Shell(p.PackageCommand, p.Dir,
		"MCPREBUILD_PACKAGE="+b.PackagePath(p, side),
		"MCPREBUILD_SIDE="+side.String(),
		"MCPREBUILD_PROJECT="+p.Name,
	)
	return b.runner.Run(ctx, cmd)
}

// Remap reobfuscates the package for (p, side) into the packages directory.
// The side's inheritance table is built first if this run has none yet.
func (b *Builder) Remap(ctx context.Context, p *project.Project, side Side, libraryInheritance []string) error {
	art := side.Artifacts(b.cfg)
	if err := b.EnsureInheritance(ctx, side); err != nil {
		return err
	}

	stored := append([]string{art.Inheritance}, libraryInheritance...)
	pkg := b.PackagePath(p, side)

	printer.Section("Obfuscating %s", p.Name)
	cmd := b.remapper.Invert(stored, art.Mapping, rootOf(pkg), b.cfg.Paths.Packages, pkg)
	if err := b.runner.Run(ctx, cmd); err != nil {
		return err
	}
	printer.Section("Obfuscation complete")
	printer.Println()
	return nil
}

// EnsureInheritance builds the inheritance table of the side's platform jar
// unless it already exists on disk. With forced rebuilds, the table is
// rebuilt once per run regardless.
func (b *Builder) EnsureInheritance(ctx context.Context, side Side) error {
	art := side.Artifacts(b.cfg)
	table := art.Inheritance

	if b.builtInheritance[table] {
		return nil
	}
	if !b.forceInheritance && fileset.Exists(table) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(table), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", table, err)
	}

	printer.Section("Creating %s inheritance table", side)
	if err := b.runner.Run(ctx, b.remapper.BuildInheritance(table, rootOf(art.Jar), art.Jar)); err != nil {
		return err
	}
	printer.Section("Inheritance table created")
	printer.Println()

	b.builtInheritance[table] = true
	return nil
}

// rootOf returns the filesystem root containing path, used as the remapper's
// --indir when passing absolute input paths.
func rootOf(path string) string {
	return filepath.VolumeName(path) + string(filepath.Separator)
}
