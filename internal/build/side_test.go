package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSide(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want Side
	}{
		{"client", Client},
		{" Server ", Server},
		{"UNIVERSAL", Universal},
	} {
		got, err := ParseSide(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseSide("bukkit")
	assert.ErrorContains(t, err, `unknown side "bukkit"`)
}

func TestParseSides(t *testing.T) {
	sides, err := ParseSides([]string{"universal", "client"})
	require.NoError(t, err)
	assert.Equal(t, []Side{Client, Universal}, sides, "processing order is fixed")

	_, err = ParseSides([]string{"client", "client"})
	assert.ErrorContains(t, err, "listed twice")
}

func TestSideTraits(t *testing.T) {
	assert.Equal(t, "client", Client.Subtree())
	assert.Equal(t, "", Client.PackageSuffix())
	assert.Equal(t, "", Client.ScratchSuffix())

	assert.Equal(t, "server", Server.Subtree())
	assert.Equal(t, "-server", Server.PackageSuffix())
	assert.Equal(t, "_server", Server.ScratchSuffix())

	assert.Equal(t, "", Universal.Subtree())
	assert.Equal(t, "-universal", Universal.PackageSuffix())

	assert.Equal(t, "side(9)", Side(9).String())
}

func TestSideArtifacts(t *testing.T) {
	cfg := workspace(t)
	assert.Equal(t, cfg.Server.Jar, Server.Artifacts(cfg).Jar)
	assert.Equal(t, cfg.Client.Mapping, Universal.Artifacts(cfg).Mapping)
}
