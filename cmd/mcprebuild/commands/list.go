package commands

import (
	"io"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dyluth/mcprebuild/internal/filter"
	"github.com/dyluth/mcprebuild/internal/printer"
	"github.com/dyluth/mcprebuild/internal/project"
)

var (
	listOnly    string
	listExclude string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the projects a recompile would build",
	Long: `List every project discovered under mods/, with the package name it will
produce. Disabled directories and categories are not listed.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listOnly, "only", "", "Only list projects whose name or directory matches this glob")
	listCmd.Flags().StringVar(&listExclude, "exclude", "", "Hide projects whose name or directory matches this glob")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	criteria := filter.Criteria{NameGlob: listOnly, ExcludeGlob: listExclude}
	if err := criteria.Validate(); err != nil {
		return printer.Error("invalid project filter", err.Error(), nil)
	}

	var projects []*project.Project
	for _, p := range project.Discover(cfg.Paths.Mods, nil) {
		if criteria.Matches(p) {
			projects = append(projects, p)
		}
	}

	if len(projects) == 0 {
		printer.Info("No projects found in %s\n", cfg.Paths.Mods)
		return nil
	}

	return outputTable(printer.Out(), cfg.Paths.Mods, projects)
}

// outputTable renders one row per project. Directories are shown relative to
// the mods directory.
func outputTable(w io.Writer, mods string, projects []*project.Project) error {
	table := tablewriter.NewWriter(w)
	table.Header("NAME", "VERSION", "PACKAGE", "SOURCE", "DIRECTORY")

	for _, row := range projectRows(mods, projects) {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func projectRows(mods string, projects []*project.Project) [][]string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		version := p.Version
		if version == "" {
			version = "-"
		}
		source := "included"
		if p.HideSource {
			source = "hidden"
		}
		dir := p.Dir
		if rel, err := filepath.Rel(mods, p.Dir); err == nil {
			dir = filepath.ToSlash(rel)
		}
		rows = append(rows, []string{p.Name, version, p.PackageFileName(""), source, dir})
	}
	return rows
}
