package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
)

func makeToyPackage(t *testing.T, root string) {
	t.Helper()
	for rel, content := range map[string]string{
		"Generators/ToySimulator.hh":           "class ToySimulator {};\n",
		"Generators/ToySimulator_generator.cc": "#include \"Overlays/ToyFragment.hh\"\n",
		"Overlays/ToyFragment.hh":              "class ToyFragment {};\n",
		"Overlays/ToyFragment.cc":              "ToyFragment::ToyFragment() {}\n",
		"Overlays/ToyFragmentWriter.hh":        "class ToyFragmentWriter {};\n",
	} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(rel)), content)
	}
}

func TestCloneGenerator_CreatesFiles(t *testing.T) {
	// Given: a package with the toy sources
	dir := isolate(t)
	root := filepath.Join(dir, "lbne-artdaq")
	makeToyPackage(t, root)

	// When: cloning
	stdout, _, err := execute(t, "clone-generator", "--root", root, "CaenDigitizer", "Caen")

	// Then: renamed copies exist and the plugin snippet is printed
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(root, "Generators", "CaenDigitizer.hh"))
	require.NoError(t, err)
	assert.Equal(t, "class CaenDigitizer {};\n", string(data))
	data, err = os.ReadFile(filepath.Join(root, "Overlays", "CaenFragmentWriter.hh"))
	require.NoError(t, err)
	assert.Equal(t, "class CaenFragmentWriter {};\n", string(data))

	assert.Contains(t, stdout, "Created "+filepath.Join(root, "Generators", "CaenDigitizer_generator.cc"))
	assert.Contains(t, stdout, `simple_plugin(CaenDigitizer "generator"`)
	assert.Contains(t, stdout, "lbne-artdaq_Overlays")
}

func TestCloneGenerator_DryRun(t *testing.T) {
	dir := isolate(t)
	root := filepath.Join(dir, "pkg")
	makeToyPackage(t, root)

	stdout, _, err := execute(t, "clone-generator", "--root", root, "--dry-run", "Ssp", "SspFrag")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Would create")
	_, statErr := os.Stat(filepath.Join(root, "Generators", "Ssp.hh"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCloneGenerator_RootFromEnvironment(t *testing.T) {
	dir := isolate(t)
	makeToyPackage(t, filepath.Join(dir, "lbne-artdaq"))
	t.Setenv("LBNEARTDAQ_REPO", dir)

	_, _, err := execute(t, "clone-generator", "Penn", "PennMilli", "--overlays-lib", "dune-artdaq_Overlays")

	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "lbne-artdaq", "Overlays", "PennMilliFragment.cc"))
	assert.NoError(t, statErr)
}

func TestCloneGenerator_TargetExists(t *testing.T) {
	dir := isolate(t)
	root := filepath.Join(dir, "pkg")
	makeToyPackage(t, root)

	_, _, err := execute(t, "clone-generator", "--root", root, "Caen", "CaenFrag")
	require.NoError(t, err)
	_, _, err = execute(t, "clone-generator", "--root", root, "Caen", "CaenFrag")

	require.Error(t, err)
	assert.True(t, errors.Is(err, daqerrors.Sentinel(daqerrors.ErrCodeTargetExists)))
}

func TestCloneGenerator_MissingTokenWithoutTerminal(t *testing.T) {
	dir := isolate(t)
	root := filepath.Join(dir, "pkg")
	makeToyPackage(t, root)

	_, _, err := execute(t, "clone-generator", "--root", root, "OnlyGenerator")

	require.Error(t, err)
	assert.True(t, errors.Is(err, daqerrors.Sentinel(daqerrors.ErrCodeInvalidInput)))
	assert.Contains(t, err.Error(), "fragment token is required")
}

func TestCloneGenerator_InvalidToken(t *testing.T) {
	dir := isolate(t)
	root := filepath.Join(dir, "pkg")
	makeToyPackage(t, root)

	_, _, err := execute(t, "clone-generator", "--root", root, "bad-name", "Frag")

	require.Error(t, err)
	assert.True(t, errors.Is(err, daqerrors.Sentinel(daqerrors.ErrCodeInvalidInput)))
}
