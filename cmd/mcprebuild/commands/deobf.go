package commands

import (
	"github.com/spf13/cobra"

	"github.com/dyluth/mcprebuild/internal/libs"
	"github.com/dyluth/mcprebuild/internal/printer"
	"github.com/dyluth/mcprebuild/internal/toolchain"
)

var deobfCmd = &cobra.Command{
	Use:   "deobf-libs",
	Short: "Deobfuscate third-party libraries for projects to build against",
	Long: `Deobfuscate the library jars in lib-obf/ into lib/.

Projects compile against lib/ and their packages are reobfuscated with the
inheritance tables written next to each library. Run this after MCP's
decompile and reobfuscate steps, and again whenever lib-obf/ changes.`,
	Args: cobra.NoArgs,
	RunE: runDeobf,
}

func init() {
	rootCmd.AddCommand(deobfCmd)
}

func runDeobf(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	result, err := libs.New(cfg, toolchain.NewExecRunner(verbose)).Run(ctx)
	if err != nil {
		return reportError("deobf-libs", err)
	}

	n := len(result.Libraries)
	if n == 0 {
		printer.Info("No libraries found in %s; platform inheritance tables refreshed.\n", cfg.Paths.LibObf)
		return nil
	}
	printer.Success("%d library %s deobfuscated into %s\n", n, printer.Plural(n, "jar"), cfg.Paths.Lib)
	return nil
}
