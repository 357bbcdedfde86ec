package commands

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/mcprebuild/internal/printer"
)

// execute runs the real root command with args and captures everything it
// prints. Flag variables are reset first since cobra keeps them between runs.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	color.NoColor = true
	baseDir, configPath, verbose = ".", "", false
	forceInit = false
	listOnly, listExclude = "", ""
	recompileSides, recompileOnly, recompileExclude = nil, "", ""
	recompileKeepGoing, recompileForceInheritance = false, false

	var out, errOut bytes.Buffer
	printer.SetOutput(&out, &errOut)
	t.Cleanup(func() { printer.SetOutput(nil, nil) })

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	if args == nil {
		// nil makes cobra fall back to os.Args
		args = []string{}
	}
	rootCmd.SetArgs(args)
	err = Execute()
	return out.String(), errOut.String(), err
}

// TestRootCommand_ShowsHelpWhenNoSubcommand tests that the root command
// shows help instead of silently succeeding when invoked without a subcommand
func TestRootCommand_ShowsHelpWhenNoSubcommand(t *testing.T) {
	out, _, err := execute(t)

	assert.NoError(t, err)
	assert.Contains(t, out, "Usage:", "Help should be displayed")
	assert.Contains(t, out, "recompile", "Help should list subcommands")
	assert.Contains(t, out, "deobf-libs")
}

// TestRootCommand_RejectsUnknownFlags tests that unknown flags
// passed to the root command cause an error instead of being silently ignored
func TestRootCommand_RejectsUnknownFlags(t *testing.T) {
	_, _, err := execute(t, "--unknown-flag", "value")

	require.Error(t, err, "Unknown flag should cause an error")
	assert.Contains(t, err.Error(), "unknown flag")
}

// TestRootCommand_RejectsSubcommandFlags tests that flags meant for
// subcommands are rejected when passed to the root command
func TestRootCommand_RejectsSubcommandFlags(t *testing.T) {
	_, _, err := execute(t, "--keep-going")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}

func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2024-01-01")
	assert.Equal(t, "1.2.3 (commit: abc123, built: 2024-01-01)", rootCmd.Version)
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	_, stderr, err := execute(t, "list", "--base", t.TempDir(), "--config", "missing.yml")

	require.Error(t, err)
	assert.Equal(t, "invalid configuration", err.Error())
	assert.Contains(t, stderr, "failed to read config")
	assert.Contains(t, stderr, "mcprebuild init")
}
