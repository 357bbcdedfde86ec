package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dyluth/mcprebuild/internal/build"
	"github.com/dyluth/mcprebuild/internal/printer"
	"github.com/dyluth/mcprebuild/internal/toolchain"
)

// reportError prints err in the printer's format and returns the plain error
// cobra hands back to main.
func reportError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var missing *build.MissingPrerequisiteError
	if errors.As(err, &missing) {
		return printer.ErrorWithContext(
			"missing prerequisites",
			missing.Hint,
			map[string]string{"missing": strings.Join(missing.Missing, ", ")},
			nil,
		)
	}

	var batch *build.BatchError
	if errors.As(err, &batch) {
		lines := make([]string, 0, len(batch.Failures))
		for _, f := range batch.Failures {
			lines = append(lines, fmt.Sprintf("  • %s (%s): %v", f.Project, f.Side, f.Err))
		}
		return printer.Error(
			batch.Error(),
			strings.Join(lines, "\n"),
			[]string{"See " + build.ReportFileName + " in the packages directory for every project's outcome"},
		)
	}

	details := make(map[string]string)
	var projectErr *build.ProjectError
	if errors.As(err, &projectErr) {
		details["project"] = projectErr.Project
		details["side"] = projectErr.Side.String()
	}

	var cmdErr *toolchain.CommandError
	if errors.As(err, &cmdErr) {
		details["command"] = cmdErr.Command.String()
		if cmdErr.ExitCode < 0 {
			return printer.ErrorWithContext(
				"failed to run "+cmdErr.Command.Name,
				cmdErr.Err.Error(),
				details,
				[]string{"Check that tools.javac and tools.java in mcprebuild.yml point at a JDK"},
			)
		}
		details["exit code"] = fmt.Sprintf("%d", cmdErr.ExitCode)
		return printer.ErrorWithContext(
			operation+" failed",
			fmt.Sprintf("%s exited with status %d.", cmdErr.Command.Name, cmdErr.ExitCode),
			details,
			[]string{"Fix the errors reported above and run the command again"},
		)
	}

	return printer.ErrorWithContext(operation+" failed", err.Error(), details, nil)
}
