// Package libs deobfuscates third-party libraries so that projects can compile
// against them, and records the inheritance tables needed to reobfuscate
// projects that use them.
package libs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/mcprebuild/internal/build"
	"github.com/dyluth/mcprebuild/internal/config"
	"github.com/dyluth/mcprebuild/internal/fileset"
	"github.com/dyluth/mcprebuild/internal/printer"
	"github.com/dyluth/mcprebuild/internal/toolchain"
)

// MergedMappingName is the combined client+server mapping written to the
// library scratch directory.
const MergedMappingName = "full.srg"

// Library is one jar in both its obfuscated and deobfuscated form.
type Library struct {
	Name     string
	Obf      string
	ObfInh   string
	Deobf    string
	DeobfInh string
}

// NewLibrary describes the obfuscated jar at obf. Its tables and deobfuscated
// copy are placed by name in the configured library directories.
func NewLibrary(cfg *config.Config, obf string) Library {
	name := filepath.Base(obf)
	return Library{
		Name:     name,
		Obf:      obf,
		ObfInh:   filepath.Join(cfg.Paths.LibObf, name+".inh"),
		Deobf:    filepath.Join(cfg.Paths.Lib, name),
		DeobfInh: filepath.Join(cfg.Paths.Lib, name+".inh"),
	}
}

// Result summarises a deobfuscation run.
type Result struct {
	PlatformJars []Library
	Libraries    []Library
}

// Deobfuscator runs the library deobfuscation workflow.
type Deobfuscator struct {
	cfg      *config.Config
	runner   toolchain.Runner
	remapper toolchain.Remapper
}

// New creates a Deobfuscator for cfg.
func New(cfg *config.Config, runner toolchain.Runner) *Deobfuscator {
	return &Deobfuscator{
		cfg:    cfg,
		runner: runner,
		remapper: toolchain.Remapper{
			Java:      cfg.Tools.Java,
			Classpath: cfg.Tools.RemapperClasspath,
			MainClass: cfg.Tools.RemapperMainClass,
		},
	}
}

// PlatformJars returns the obfuscated client/server jars that exist, paired
// with their deobfuscated counterparts.
func (d *Deobfuscator) PlatformJars() []Library {
	var jars []Library
	for _, side := range []config.SideConfig{d.cfg.Client, d.cfg.Server} {
		if side.ObfJar == "" || !fileset.Exists(side.ObfJar) {
			continue
		}
		lib := NewLibrary(d.cfg, side.ObfJar)
		lib.Deobf = side.Jar
		jars = append(jars, lib)
	}
	return jars
}

// Libraries lists the obfuscated libraries waiting in the lib-obf directory.
func (d *Deobfuscator) Libraries() ([]Library, error) {
	paths, err := fileset.List(d.cfg.Paths.LibObf, ".jar", ".zip")
	if err != nil {
		return nil, err
	}
	libs := make([]Library, 0, len(paths))
	for _, p := range paths {
		libs = append(libs, NewLibrary(d.cfg, p))
	}
	return libs, nil
}

// Run deobfuscates every library:
//
//  1. merge the client and server mappings
//  2. build obfuscated inheritance tables for the platform jars and libraries
//  3. deobfuscate the libraries into the lib directory
//  4. build deobfuscated inheritance tables
func (d *Deobfuscator) Run(ctx context.Context) (*Result, error) {
	platform := d.PlatformJars()
	if len(platform) == 0 {
		return nil, &build.MissingPrerequisiteError{
			Missing: []string{d.cfg.Client.ObfJar, d.cfg.Server.ObfJar},
			Hint:    "Please finish setting up MCP. You must run decompile and reobfuscate before deobfuscating libraries.",
		}
	}

	if err := os.MkdirAll(d.cfg.Paths.LibObf, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", d.cfg.Paths.LibObf, err)
	}
	if err := fileset.Clean(d.cfg.Paths.LibTemp); err != nil {
		return nil, err
	}

	mapping := filepath.Join(d.cfg.Paths.LibTemp, MergedMappingName)
	ok, err := MergeMappings(mapping, d.cfg.Client.Mapping, d.cfg.Server.Mapping)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &build.MissingPrerequisiteError{
			Missing: []string{d.cfg.Client.Mapping, d.cfg.Server.Mapping},
			Hint:    "You must run reobfuscate before deobfuscating libraries.",
		}
	}

	libraries, err := d.Libraries()
	if err != nil {
		return nil, err
	}
	all := append(append([]Library{}, platform...), libraries...)

	printer.Section("Creating obfuscated inheritance tables")
	obfTables := make([]string, 0, len(all))
	for _, lib := range all {
		printer.Step("%s...\n", lib.Name)
		if err := d.buildInheritance(ctx, lib.ObfInh, lib.Obf); err != nil {
			return nil, err
		}
		obfTables = append(obfTables, lib.ObfInh)
	}
	printer.Section("Obfuscated inheritance tables complete")
	printer.Println()

	if len(libraries) > 0 {
		if err := os.MkdirAll(d.cfg.Paths.Lib, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", d.cfg.Paths.Lib, err)
		}

		names := make([]string, 0, len(libraries))
		for _, lib := range libraries {
			names = append(names, lib.Name)
		}

		printer.Section("Deobfuscating libraries")
		cmd := d.remapper.Deobfuscate(obfTables, mapping, d.cfg.Paths.LibObf, d.cfg.Paths.Lib, names...)
		if err := d.runner.Run(ctx, cmd); err != nil {
			return nil, err
		}
		printer.Section("Libraries deobfuscated")
		printer.Println()
	}

	printer.Section("Creating deobfuscated inheritance tables")
	for _, lib := range all {
		printer.Step("%s...\n", lib.Name)
		if err := d.buildInheritance(ctx, lib.DeobfInh, lib.Deobf); err != nil {
			return nil, err
		}
	}
	printer.Section("Deobfuscated inheritance tables complete")
	printer.Println()

	return &Result{PlatformJars: platform, Libraries: libraries}, nil
}

func (d *Deobfuscator) buildInheritance(ctx context.Context, table, jar string) error {
	if err := os.MkdirAll(filepath.Dir(table), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", table, err)
	}
	root := filepath.VolumeName(jar) + string(filepath.Separator)
	return d.runner.Run(ctx, d.remapper.BuildInheritance(table, root, jar))
}
