package build

import (
	"fmt"
	"strings"

	"github.com/dyluth/mcprebuild/internal/config"
)

// Side selects which platform variant a compile/package/remap cycle targets.
type Side int

const (
	Client Side = iota
	Server
	Universal
)

// traits is the per-side data every step reads instead of branching on the side.
type traits struct {
	name          string
	subtree       string // src/<subtree>, resources/<subtree>; empty for none
	packageSuffix string
	scratchSuffix string
}

var sideTraits = map[Side]traits{
	Client:    {name: "client", subtree: "client", packageSuffix: "", scratchSuffix: ""},
	Server:    {name: "server", subtree: "server", packageSuffix: "-server", scratchSuffix: "_server"},
	Universal: {name: "universal", subtree: "", packageSuffix: "-universal", scratchSuffix: "_universal"},
}

// AllSides lists the sides in processing order.
var AllSides = []Side{Client, Server, Universal}

func (s Side) String() string {
	if t, ok := sideTraits[s]; ok {
		return t.name
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// Subtree returns the side-specific source/resource directory name, or "" when
// the side only uses the common subtrees.
func (s Side) Subtree() string { return sideTraits[s].subtree }

// PackageSuffix is appended to the package base name.
func (s Side) PackageSuffix() string { return sideTraits[s].packageSuffix }

// ScratchSuffix is appended to the project's compile directory name.
func (s Side) ScratchSuffix() string { return sideTraits[s].scratchSuffix }

// Artifacts returns the configured platform artifacts for the side.
func (s Side) Artifacts(cfg *config.Config) config.SideConfig {
	return cfg.Side(s.String())
}

// ParseSide converts a side name.
func ParseSide(name string) (Side, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for side, t := range sideTraits {
		if t.name == name {
			return side, nil
		}
	}
	return 0, fmt.Errorf("unknown side %q (valid: client, server, universal)", name)
}

// ParseSides converts a list of side names, rejecting duplicates, and returns
// them in processing order.
func ParseSides(names []string) ([]Side, error) {
	want := make(map[Side]bool, len(names))
	for _, n := range names {
		side, err := ParseSide(n)
		if err != nil {
			return nil, err
		}
		if want[side] {
			return nil, fmt.Errorf("side %q listed twice", side)
		}
		want[side] = true
	}

	sides := make([]Side, 0, len(want))
	for _, s := range AllSides {
		if want[s] {
			sides = append(sides, s)
		}
	}
	return sides, nil
}
