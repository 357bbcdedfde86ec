package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dyluth/mcprebuild/internal/config"
	"github.com/dyluth/mcprebuild/internal/printer"
)

var (
	version string
	commit  string
	date    string

	baseDir    string
	configPath string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mcprebuild",
	Short: "mcprebuild - Build and reobfuscate MCP mod projects",
	Long: `mcprebuild compiles every project under an MCP workspace's mods/ directory,
packages each one per side (client, server, universal) and reobfuscates the
packages against the platform mappings so they load in the released game.

Compilation and remapping are delegated to javac and the MCP deobfuscation
tool; mcprebuild discovers projects, lays out packages and drives those tools.`,
	Version: version,
	// Prevent silent success when unknown flags are passed to root command
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Silence Cobra's default error and usage printing
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&baseDir, "base", "b", ".", "MCP workspace directory")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (default <base>/mcprebuild.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print every external command before running it")
}

// loadConfig loads the workspace configuration selected by the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(baseDir, configPath)
	if err != nil {
		return nil, printer.ErrorWithContext(
			"invalid configuration",
			err.Error(),
			map[string]string{"base": baseDir},
			[]string{
				"Fix the configuration file and try again",
				"Create a default configuration:\n     mcprebuild init",
			},
		)
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM, which stops any running
// external command.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		select {
		case <-sigCh:
			printer.Warning("Interrupted, stopping...\n")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}
