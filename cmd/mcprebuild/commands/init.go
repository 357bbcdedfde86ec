package commands

import (
	"github.com/spf13/cobra"

	"github.com/dyluth/mcprebuild/internal/printer"
	"github.com/dyluth/mcprebuild/internal/scaffold"
)

var (
	forceInit bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an MCP workspace for mcprebuild",
	Long: `Initialize an MCP workspace with a default configuration and example project.

Creates:
  • mcprebuild.yml - Workspace configuration file
  • mods/CATEGORY - Marks mods/ as a category of projects
  • mods/example/ - Example project showing the project layout

Run this from the MCP directory, or point --base at it.

Use --force to reinitialize an existing workspace (WARNING: replaces mcprebuild.yml and mods/example/).`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Force reinitialization (removes existing mcprebuild.yml and mods/example/)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if !forceInit {
		if err := scaffold.CheckExisting(baseDir); err != nil {
			return printer.Error("cannot initialize workspace", err.Error(), nil)
		}
	}

	if err := scaffold.Initialize(baseDir, forceInit); err != nil {
		return printer.Error("initialization failed", err.Error(), nil)
	}

	scaffold.PrintSuccess()

	return nil
}
