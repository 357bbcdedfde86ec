package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dyluth/mcprebuild/internal/build"
	"github.com/dyluth/mcprebuild/internal/filter"
	"github.com/dyluth/mcprebuild/internal/printer"
	"github.com/dyluth/mcprebuild/internal/toolchain"
)

var (
	recompileSides            []string
	recompileOnly             string
	recompileExclude          string
	recompileKeepGoing        bool
	recompileForceInheritance bool
)

var recompileCmd = &cobra.Command{
	Use:   "recompile",
	Short: "Compile, package and reobfuscate every project",
	Long: `Compile, package and reobfuscate every project under mods/.

For each project and side the sources are compiled against the platform
classes, the sources, classes and resources are layered into a zip, the
optional PACKAGE_COMMAND runs, and the zip is reobfuscated into packages/.

The temp and packages directories are wiped at the start of every run.

Examples:
  # Build everything for the configured sides
  mcprebuild recompile

  # Only the server side of projects whose name starts with "torch"
  mcprebuild recompile --side server --only 'torch*'

  # Build every project even if some fail
  mcprebuild recompile --keep-going`,
	Args: cobra.NoArgs,
	RunE: runRecompile,
}

func init() {
	recompileCmd.Flags().StringSliceVarP(&recompileSides, "side", "s", nil, "Sides to build (client, server, universal); defaults to the configured sides")
	recompileCmd.Flags().StringVar(&recompileOnly, "only", "", "Only build projects whose name or directory matches this glob")
	recompileCmd.Flags().StringVar(&recompileExclude, "exclude", "", "Skip projects whose name or directory matches this glob")
	recompileCmd.Flags().BoolVarP(&recompileKeepGoing, "keep-going", "k", false, "Continue with the remaining projects when one fails")
	recompileCmd.Flags().BoolVar(&recompileForceInheritance, "force-inheritance", false, "Rebuild the platform inheritance tables cached in the MCP temp directory")
	rootCmd.AddCommand(recompileCmd)
}

func runRecompile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := build.Options{
		KeepGoing:        recompileKeepGoing,
		ForceInheritance: recompileForceInheritance,
	}

	if len(recompileSides) > 0 {
		sides, err := build.ParseSides(recompileSides)
		if err != nil {
			return printer.Error("invalid --side", err.Error(), nil)
		}
		opts.Sides = sides
	}

	criteria := filter.Criteria{NameGlob: recompileOnly, ExcludeGlob: recompileExclude}
	if err := criteria.Validate(); err != nil {
		return printer.Error("invalid project filter", err.Error(), nil)
	}
	if criteria.HasFilters() {
		opts.Select = criteria.Matches
	}

	pipeline, err := build.NewPipeline(cfg, toolchain.NewExecRunner(verbose), opts)
	if err != nil {
		return reportError("recompile", err)
	}

	ctx, stop := signalContext()
	defer stop()

	report, err := pipeline.Run(ctx)
	if report != nil && verbose {
		printer.Info("Build report written to %s\n", filepath.Join(cfg.Paths.Packages, build.ReportFileName))
	}
	return reportError("recompile", err)
}
