package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the workspace configuration file looked up in the base directory.
const FileName = "mcprebuild.yml"

// Config represents the top-level mcprebuild.yml configuration
type Config struct {
	Version string      `yaml:"version"`
	Sides   []string    `yaml:"sides" env:"MCPREBUILD_SIDES" envSeparator:","`
	Paths   PathsConfig `yaml:"paths"`
	Tools   ToolsConfig `yaml:"tools"`

	Client    SideConfig `yaml:"client"`
	Server    SideConfig `yaml:"server"`
	Universal SideConfig `yaml:"universal"`

	// Base is the workspace root every relative path resolves against.
	Base string `yaml:"-"`
}

// PathsConfig locates the workspace directories.
type PathsConfig struct {
	Mods     string `yaml:"mods"`     // user projects
	Temp     string `yaml:"temp"`     // per-run scratch (compiled classes, packages)
	Packages string `yaml:"packages"` // final remapped packages
	MCPTemp  string `yaml:"mcp_temp"` // MCP's own temp dir (mappings, deobfuscated jars)
	LibObf   string `yaml:"lib_obf"`  // third-party libraries, obfuscated
	Lib      string `yaml:"lib"`      // third-party libraries, deobfuscated
	LibTemp  string `yaml:"lib_temp"` // scratch for deobf-libs
}

// ToolsConfig selects the external programs.
type ToolsConfig struct {
	Javac             string   `yaml:"javac" env:"MCPREBUILD_JAVAC"`
	Java              string   `yaml:"java" env:"MCPREBUILD_JAVA"`
	RemapperClasspath []string `yaml:"remapper_classpath" env:"MCPREBUILD_REMAPPER_CLASSPATH" envSeparator:","`
	RemapperMainClass string   `yaml:"remapper_main_class" env:"MCPREBUILD_REMAPPER_MAIN"`
	SourceExtension   string   `yaml:"source_extension"`
}

// SideConfig holds the platform artifacts for one build side.
type SideConfig struct {
	BinDir      string `yaml:"bin_dir"`     // compiled platform classes to build against
	ObfJar      string `yaml:"obf_jar"`     // original obfuscated platform jar
	Jar         string `yaml:"jar"`         // deobfuscated platform jar
	Mapping     string `yaml:"mapping"`     // reobfuscation mapping (srg)
	Inheritance string `yaml:"inheritance"` // cached inheritance table for Jar
}

// ValidSides lists the side names accepted in `sides`.
var ValidSides = []string{"client", "server", "universal"}

// Default returns the classic MCP workspace layout rooted at base.
func Default(base string) *Config {
	return &Config{
		Version: "1.0",
		Sides:   []string{"client", "server"},
		Paths: PathsConfig{
			Mods:     "mods",
			Temp:     filepath.Join("temp", "mods"),
			Packages: "packages",
			MCPTemp:  "temp",
			LibObf:   "lib-obf",
			Lib:      "lib",
			LibTemp:  filepath.Join("temp", "lib"),
		},
		Tools: ToolsConfig{
			Javac: "javac",
			Java:  "java",
			RemapperClasspath: []string{
				"runtime/bin/jcommander-1.29.jar",
				"runtime/bin/asm-all-3.3.1.jar",
				"runtime/bin/mcp_deobfuscate-1.0.jar",
			},
			RemapperMainClass: "org.ldg.mcpd.MCPDeobfuscate",
			SourceExtension:   ".java",
		},
		Client: SideConfig{
			BinDir:      filepath.Join("bin", "minecraft"),
			ObfJar:      filepath.Join("jars", "bin", "minecraft.jar"),
			Jar:         filepath.Join("temp", "minecraft_exc.jar"),
			Mapping:     filepath.Join("temp", "client_ro.srg"),
			Inheritance: filepath.Join("temp", "mc.inh"),
		},
		Server: SideConfig{
			BinDir:      filepath.Join("bin", "minecraft_server"),
			ObfJar:      filepath.Join("jars", "minecraft_server.jar"),
			Jar:         filepath.Join("temp", "minecraft_server_exc.jar"),
			Mapping:     filepath.Join("temp", "server_ro.srg"),
			Inheritance: filepath.Join("temp", "mc_server.inh"),
		},
		// Universal packages target the merged client jar.
		Universal: SideConfig{
			BinDir:      filepath.Join("bin", "minecraft"),
			ObfJar:      filepath.Join("jars", "bin", "minecraft.jar"),
			Jar:         filepath.Join("temp", "minecraft_exc.jar"),
			Mapping:     filepath.Join("temp", "client_ro.srg"),
			Inheritance: filepath.Join("temp", "mc.inh"),
		},
		Base: base,
	}
}

// Load builds the configuration for the workspace at base.
//
// Precedence, lowest first: built-in defaults, the YAML file at path (optional
// when path is empty, in which case <base>/mcprebuild.yml is tried), a .env file
// in base, and MCPREBUILD_* environment variables. Relative paths are resolved
// against base before validation.
func Load(base, path string) (*Config, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	cfg := Default(absBase)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(absBase, FileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no workspace file, defaults apply
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := loadDotEnv(absBase); err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Base = absBase
	cfg.resolve()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads <base>/.env without overriding variables already set.
func loadDotEnv(base string) error {
	dotEnv := filepath.Join(base, ".env")
	if _, err := os.Stat(dotEnv); err != nil {
		return nil
	}
	if err := godotenv.Load(dotEnv); err != nil {
		return fmt.Errorf("failed to load %s: %w", dotEnv, err)
	}
	return nil
}

// Validate performs strict validation on the configuration
func (c *Config) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if len(c.Sides) == 0 {
		return fmt.Errorf("no build sides enabled")
	}

	seen := make(map[string]bool)
	for _, side := range c.Sides {
		name := strings.ToLower(strings.TrimSpace(side))
		if !isValidSide(name) {
			return fmt.Errorf("invalid side: %s (must be one of %s)", side, strings.Join(ValidSides, ", "))
		}
		if seen[name] {
			return fmt.Errorf("side '%s' listed twice", name)
		}
		seen[name] = true
	}

	if c.Paths.Mods == "" || c.Paths.Temp == "" || c.Paths.Packages == "" {
		return fmt.Errorf("paths.mods, paths.temp and paths.packages are required")
	}

	if err := c.validateWipedPaths(); err != nil {
		return err
	}

	if c.Tools.Javac == "" {
		return fmt.Errorf("tools.javac is required")
	}
	if c.Tools.Java == "" {
		return fmt.Errorf("tools.java is required")
	}
	if c.Tools.RemapperMainClass == "" {
		return fmt.Errorf("tools.remapper_main_class is required")
	}
	if !strings.HasPrefix(c.Tools.SourceExtension, ".") {
		return fmt.Errorf("tools.source_extension must start with '.', got %q", c.Tools.SourceExtension)
	}

	for _, name := range c.Sides {
		sc := c.Side(name)
		if sc.BinDir == "" || sc.Jar == "" || sc.Mapping == "" || sc.Inheritance == "" {
			return fmt.Errorf("side '%s': bin_dir, jar, mapping and inheritance are required", name)
		}
	}

	return nil
}

type namedPath struct {
	name string
	path string
}

// validateWipedPaths keeps the directories emptied on every run (temp,
// packages, lib_temp) clear of the workspace, user data and MCP's outputs.
// A wiped directory may sit inside the base or mcp_temp but must not be or
// contain any of them, must not sit inside mods, lib or lib_obf, and must not
// overlap another wiped directory.
func (c *Config) validateWipedPaths() error {
	wiped := []namedPath{
		{"paths.temp", c.Paths.Temp},
		{"paths.packages", c.Paths.Packages},
		{"paths.lib_temp", c.Paths.LibTemp},
	}
	userData := []namedPath{
		{"paths.mods", c.Paths.Mods},
		{"paths.lib", c.Paths.Lib},
		{"paths.lib_obf", c.Paths.LibObf},
	}
	kept := append([]namedPath{
		{"the workspace base", c.Base},
		{"paths.mcp_temp", c.Paths.MCPTemp},
	}, userData...)
	for _, name := range c.Sides {
		sc := c.Side(name)
		kept = append(kept,
			namedPath{name + ".bin_dir", sc.BinDir},
			namedPath{name + ".obf_jar", sc.ObfJar},
			namedPath{name + ".jar", sc.Jar},
			namedPath{name + ".mapping", sc.Mapping},
		)
	}
	for _, cp := range c.Tools.RemapperClasspath {
		kept = append(kept, namedPath{"tools.remapper_classpath entry " + cp, cp})
	}

	for _, w := range wiped {
		if w.path == "" {
			continue
		}
		wp := c.Abs(w.path)

		for _, k := range kept {
			if k.path != "" && within(c.Abs(k.path), wp) {
				return fmt.Errorf("%s is wiped on every run and must not be or contain %s", w.name, k.name)
			}
		}
		for _, u := range userData {
			if u.path != "" && within(wp, c.Abs(u.path)) {
				return fmt.Errorf("%s is wiped on every run and must not be inside %s", w.name, u.name)
			}
		}
	}

	for i, w := range wiped {
		for _, other := range wiped[i+1:] {
			if w.path == "" || other.path == "" {
				continue
			}
			wp, op := c.Abs(w.path), c.Abs(other.path)
			if within(wp, op) || within(op, wp) {
				return fmt.Errorf("%s and %s must not overlap", w.name, other.name)
			}
		}
	}
	return nil
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Side returns the artifact configuration for a side name.
func (c *Config) Side(name string) SideConfig {
	switch strings.ToLower(name) {
	case "client":
		return c.Client
	case "server":
		return c.Server
	case "universal":
		return c.Universal
	}
	return SideConfig{}
}

// Abs resolves p against the workspace base.
func (c *Config) Abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Base, p)
}

func (c *Config) resolve() {
	for i, side := range c.Sides {
		c.Sides[i] = strings.ToLower(strings.TrimSpace(side))
	}

	for _, p := range []*string{
		&c.Paths.Mods, &c.Paths.Temp, &c.Paths.Packages, &c.Paths.MCPTemp,
		&c.Paths.LibObf, &c.Paths.Lib, &c.Paths.LibTemp,
	} {
		*p = c.Abs(*p)
	}

	for i, cp := range c.Tools.RemapperClasspath {
		c.Tools.RemapperClasspath[i] = c.Abs(cp)
	}

	for _, sc := range []*SideConfig{&c.Client, &c.Server, &c.Universal} {
		sc.BinDir = c.Abs(sc.BinDir)
		sc.ObfJar = c.Abs(sc.ObfJar)
		sc.Jar = c.Abs(sc.Jar)
		sc.Mapping = c.Abs(sc.Mapping)
		sc.Inheritance = c.Abs(sc.Inheritance)
	}
}

func isValidSide(name string) bool {
	for _, s := range ValidSides {
		if s == name {
			return true
		}
	}
	return false
}
