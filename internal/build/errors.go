package build

import (
	"fmt"
	"strings"
)

// MissingPrerequisiteError reports upstream artifacts that must exist before
// anything can be built.
type MissingPrerequisiteError struct {
	Missing []string
	Hint    string
}

func (e *MissingPrerequisiteError) Error() string {
	return fmt.Sprintf("missing prerequisites: %s", strings.Join(e.Missing, ", "))
}

// ProjectError ties a step failure to the project that caused it.
type ProjectError struct {
	Project string
	Side    Side
	Err     error
}

func (e *ProjectError) Error() string {
	return fmt.Sprintf("failed to package project %s (%s): %v", e.Project, e.Side, e.Err)
}

func (e *ProjectError) Unwrap() error { return e.Err }
