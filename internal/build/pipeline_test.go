package build

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/mcprebuild/internal/archive"
	"github.com/dyluth/mcprebuild/internal/printer"
	"github.com/dyluth/mcprebuild/internal/project"
	"github.com/dyluth/mcprebuild/internal/toolchain"
)

// modsTree lays out a small mods directory:
//
//	mods/CATEGORY
//	mods/alpha        sources, resources
//	mods/beta         client-only resources
//	mods/empty        nothing to package
//	mods/old/DISABLED
func modsTree(t *testing.T, mods string) {
	t.Helper()
	files(t, mods,
		project.MarkerCategory,
		"alpha/conf/VERSION",
		"alpha/src/common/net/alpha/Core.java",
		"alpha/src/client/net/alpha/Gui.java",
		"alpha/src/server/net/alpha/Cmd.java",
		"alpha/resources/common/mcmod.info",
		"beta/resources/client/beta.png",
		"old/"+project.MarkerDisabled,
		"old/src/common/Old.java",
	)
	write(t, filepath.Join(mods, "alpha", "conf", "VERSION"), "1.2")
	require.NoError(t, os.MkdirAll(filepath.Join(mods, "empty", "src", "common"), 0755))
}

func TestPipeline_MissingPrerequisites(t *testing.T) {
	cfg := workspace(t)
	require.NoError(t, os.Remove(cfg.Server.Mapping))

	runner := &fakeRunner{}
	pl, err := NewPipeline(cfg, runner, Options{})
	require.NoError(t, err)

	report, err := pl.Run(context.Background())
	assert.Nil(t, report)

	var missing *MissingPrerequisiteError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{cfg.Server.Mapping}, missing.Missing)
	assert.Contains(t, missing.Hint, "decompile and reobfuscate")
	assert.Empty(t, runner.commands)
	assert.NoDirExists(t, cfg.Paths.Packages, "nothing is attempted")
}

func TestPipeline_MissingPrerequisitesOnlyForSelectedSides(t *testing.T) {
	cfg := workspace(t)
	require.NoError(t, os.Remove(cfg.Server.Jar))

	pl, err := NewPipeline(cfg, &fakeRunner{}, Options{Sides: []Side{Client}})
	require.NoError(t, err)
	assert.NoError(t, pl.CheckPrerequisites())
}

func TestPipeline_Run(t *testing.T) {
	cfg := workspace(t)
	modsTree(t, cfg.Paths.Mods)

	runner := &fakeRunner{}
	pl, err := NewPipeline(cfg, runner, Options{})
	require.NoError(t, err)

	report, err := pl.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)

	require.Len(t, report.Projects, 3)
	byName := map[string]ProjectResult{}
	for _, pr := range report.Projects {
		byName[pr.Name] = pr
	}
	assert.Equal(t, map[string]Outcome{"client": OutcomeBuilt, "server": OutcomeBuilt}, byName["alpha"].Sides)
	assert.Equal(t, map[string]Outcome{"client": OutcomeBuilt, "server": OutcomeSkipped}, byName["beta"].Sides)
	assert.Equal(t, map[string]Outcome{"client": OutcomeSkipped, "server": OutcomeSkipped}, byName["empty"].Sides)
	assert.NotContains(t, byName, "old")

	tally := report.Tally()
	assert.Equal(t, 2, tally.Projects)
	assert.Equal(t, 0, tally.Failed)
	assert.Equal(t, map[string]int{"client": 2, "server": 1}, tally.PerSide)

	// one compile per project per side that has sources: alpha client + server
	assert.Len(t, runner.named(isJavac), 2)
	// inheritance tables: one per side
	assert.Len(t, runner.named(isInheritance), 2)
	// remap only where a package was created
	inverts := runner.named(isInvert)
	require.Len(t, inverts, 3)
	var remapped []string
	for _, c := range inverts {
		remapped = append(remapped, filepath.Base(c.Args[len(c.Args)-1]))
	}
	sort.Strings(remapped)
	assert.Equal(t, []string{"alpha-1.2-server.zip", "alpha-1.2.zip", "beta.zip"}, remapped)

	clientPkg := filepath.Join(cfg.Paths.Temp, "alpha-1.2.zip")
	entries, err := archive.Entries(clientPkg)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"net/alpha/Core.java",
		"net/alpha/Gui.java",
		"Core.class",
		"Gui.class",
		"mcmod.info",
	}, entries)

	stored, err := ReadReport(filepath.Join(cfg.Paths.Packages, ReportFileName))
	require.NoError(t, err)
	assert.Equal(t, report.RunID, stored.RunID)
	assert.Len(t, stored.Projects, 3)
}

func TestPipeline_CreatesModsDirectory(t *testing.T) {
	cfg := workspace(t)

	pl, err := NewPipeline(cfg, &fakeRunner{}, Options{})
	require.NoError(t, err)

	report, err := pl.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Projects)
	assert.Equal(t, 0, report.Tally().Projects)

	assert.FileExists(t, filepath.Join(cfg.Paths.Mods, project.MarkerCategory))
}

func TestPipeline_CommandFailureAborts(t *testing.T) {
	cfg := workspace(t)
	files(t, cfg.Paths.Mods,
		project.MarkerCategory,
		"a-broken/src/common/A.java",
		"b-fine/src/common/B.java",
	)

	runner := &fakeRunner{fail: func(c toolchain.Command) bool {
		return isJavac(c) && strings.Contains(strings.Join(c.Args, " "), "a-broken")
	}}
	pl, err := NewPipeline(cfg, runner, Options{})
	require.NoError(t, err)

	report, err := pl.Run(context.Background())
	require.Error(t, err)

	var perr *ProjectError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "a-broken", perr.Project)
	assert.Equal(t, Client, perr.Side)

	var cmdErr *toolchain.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "javac", cmdErr.Command.Name)

	// b-fine was never reached
	require.Len(t, report.Projects, 1)
	assert.Equal(t, OutcomeFailed, report.Projects[0].Sides["client"])
	assert.Len(t, runner.named(isJavac), 1)
}

func TestPipeline_KeepGoing(t *testing.T) {
	cfg := workspace(t)
	files(t, cfg.Paths.Mods,
		project.MarkerCategory,
		"a-broken/src/common/A.java",
		"b-fine/src/common/B.java",
	)

	runner := &fakeRunner{fail: func(c toolchain.Command) bool {
		return isJavac(c) && strings.Contains(strings.Join(c.Args, " "), "a-broken")
	}}
	pl, err := NewPipeline(cfg, runner, Options{KeepGoing: true})
	require.NoError(t, err)

	report, err := pl.Run(context.Background())

	var batch *BatchError
	require.True(t, errors.As(err, &batch))
	require.Len(t, batch.Failures, 1)
	assert.Equal(t, "a-broken", batch.Failures[0].Project)
	assert.Contains(t, err.Error(), "1 project failed")

	require.Len(t, report.Projects, 2)
	assert.True(t, report.Projects[0].Failed())
	assert.NotEmpty(t, report.Projects[0].Error)
	assert.True(t, report.Projects[1].Built())

	tally := report.Tally()
	assert.Equal(t, 1, tally.Projects)
	assert.Equal(t, 1, tally.Failed)
}

func TestPipeline_Select(t *testing.T) {
	cfg := workspace(t)
	modsTree(t, cfg.Paths.Mods)

	pl, err := NewPipeline(cfg, &fakeRunner{}, Options{
		Sides:  []Side{Client},
		Select: func(p *project.Project) bool { return p.Name == "beta" },
	})
	require.NoError(t, err)

	report, err := pl.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Projects, 1)
	assert.Equal(t, "beta", report.Projects[0].Name)
	assert.Equal(t, []string{"client"}, report.Sides)
}

func TestPipeline_Idempotent(t *testing.T) {
	cfg := workspace(t)
	modsTree(t, cfg.Paths.Mods)

	entrySets := func() map[string][]string {
		pl, err := NewPipeline(cfg, &fakeRunner{}, Options{})
		require.NoError(t, err)
		_, err = pl.Run(context.Background())
		require.NoError(t, err)

		out := map[string][]string{}
		matches, err := filepath.Glob(filepath.Join(cfg.Paths.Temp, "*.zip"))
		require.NoError(t, err)
		for _, m := range matches {
			names, err := archive.Entries(m)
			require.NoError(t, err)
			sort.Strings(names)
			out[filepath.Base(m)] = names
		}
		return out
	}

	first := entrySets()
	second := entrySets()
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestBatchError(t *testing.T) {
	err := &BatchError{Failures: []*ProjectError{
		{Project: "a", Side: Client, Err: errors.New("boom")},
		{Project: "b", Side: Server, Err: errors.New("bang")},
	}}
	assert.Equal(t, "2 projects failed: a, b", err.Error())
}

func TestPipeline_InheritanceTablesSurviveRuns(t *testing.T) {
	cfg := workspace(t)
	modsTree(t, cfg.Paths.Mods)

	run := func(force bool) *fakeRunner {
		runner := &fakeRunner{}
		pl, err := NewPipeline(cfg, runner, Options{ForceInheritance: force})
		require.NoError(t, err)
		_, err = pl.Run(context.Background())
		require.NoError(t, err)
		return runner
	}

	assert.Len(t, run(false).named(isInheritance), 2)
	assert.FileExists(t, cfg.Client.Inheritance)
	assert.FileExists(t, cfg.Server.Inheritance)

	// the temp directory is wiped but the cached tables are not in it
	assert.Empty(t, run(false).named(isInheritance))
	assert.Len(t, run(true).named(isInheritance), 2)
}

func TestPipeline_Output(t *testing.T) {
	cfg := workspace(t)
	modsTree(t, cfg.Paths.Mods)

	color.NoColor = true
	var out bytes.Buffer
	printer.SetOutput(&out, io.Discard)
	t.Cleanup(func() { printer.SetOutput(io.Discard, io.Discard) })

	pl, err := NewPipeline(cfg, &fakeRunner{}, Options{})
	require.NoError(t, err)
	_, err = pl.Run(context.Background())
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "Found category at "+cfg.Paths.Mods+", recursing.")
	assert.Contains(t, output, "Disabled project or category at "+filepath.Join(cfg.Paths.Mods, "old")+".")
	assert.Contains(t, output, "→ Processing alpha...")
	assert.Contains(t, output, "---Obfuscating alpha---")
	assert.Contains(t, output, "2 projects compiled and packaged successfully.")
	assert.Contains(t, output, "(2 client, 1 server)")
}
