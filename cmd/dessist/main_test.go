package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dessist/internal/cli"
	"github.com/leapstack-labs/dessist/internal/cli/config"
	"github.com/leapstack-labs/dessist/internal/cli/output"
	"github.com/leapstack-labs/dessist/internal/testutil"
)

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	cmd := cli.NewRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// setupProject writes a package and returns it with output and state paths.
func setupProject(t *testing.T) (pkg, outDir, statePath string) {
	t.Helper()
	dir := t.TempDir()
	pkg = filepath.Join(dir, "packages", "load.dtsx")
	require.NoError(t, os.MkdirAll(filepath.Dir(pkg), 0o755))
	require.NoError(t, os.WriteFile(pkg, []byte(testutil.SamplePackage2008), 0o600))
	return pkg, filepath.Join(dir, "out"), filepath.Join(dir, "state", "state.db")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dessist v"+cli.Version)
}

func TestHelpCommand(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	for _, expected := range []string{"convert", "plan", "lineage", "history", "completion"} {
		assert.Contains(t, out, expected)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "__start_dessist")

	_, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestConvertCommand(t *testing.T) {
	pkg, outDir, statePath := setupProject(t)

	out, err := run(t, "convert", filepath.Dir(pkg), "--output-dir", outDir, "--state", statePath, "-o", "json")
	require.NoError(t, err)

	var result output.ConvertOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.Summary.Total)
	assert.Equal(t, 1, result.Summary.Succeeded)
	require.Len(t, result.Packages, 1)
	assert.Equal(t, "Customer_Load", result.Packages[0].Entry)
	assert.FileExists(t, filepath.Join(outDir, "load", "go.mod"))

	// Unchanged packages are skipped on the next run
	out, err = run(t, "convert", pkg, "--output-dir", outDir, "--state", statePath, "-o", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.Summary.Skipped)

	out, err = run(t, "history", "--state", statePath, "-o", "json")
	require.NoError(t, err)
	var history output.HistoryOutput
	require.NoError(t, json.Unmarshal([]byte(out), &history))
	require.Len(t, history.Conversions, 1)
	assert.Equal(t, "succeeded", history.Conversions[0].Status)

	out, err = run(t, "history", "--state", statePath, "--id", history.Conversions[0].ID, "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# Conversion "+history.Conversions[0].ID)
	assert.Contains(t, out, "## Bindings")
}

func TestConvertCommand_DryRun(t *testing.T) {
	pkg, outDir, statePath := setupProject(t)

	out, err := run(t, "convert", pkg, "--output-dir", outDir, "--state", statePath, "--dry-run", "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# Conversion")
	assert.Contains(t, out, "1 converted, 0 skipped, 0 failed")
	assert.NoDirExists(t, outDir)
	assert.NoFileExists(t, statePath)
}

func TestConvertCommand_WatchWithDryRun(t *testing.T) {
	pkg, outDir, _ := setupProject(t)

	_, err := run(t, "convert", pkg, "--output-dir", outDir, "--watch", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be combined")
}

func TestConvertCommand_Failure(t *testing.T) {
	pkg, outDir, statePath := setupProject(t)
	require.NoError(t, os.WriteFile(pkg, []byte("<DTS:Executable"), 0o600))

	_, err := run(t, "convert", pkg, "--output-dir", outDir, "--state", statePath, "-o", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 packages failed")
}

func TestPlanCommand(t *testing.T) {
	pkg, _, _ := setupProject(t)

	out, err := run(t, "plan", pkg, "--no-state", "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# Precedence plan: Customer Load")
	assert.Contains(t, out, "## Customer_Load")
	assert.False(t, strings.Contains(out, "\x1b["), "markdown output should not contain ANSI codes")
}

func TestLineageCommand(t *testing.T) {
	pkg, _, _ := setupProject(t)

	out, err := run(t, "lineage", pkg, "--no-state", "-o", "json")
	require.NoError(t, err)

	var result output.LineageOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Pipelines, 1)
	assert.NotEmpty(t, result.Pipelines[0].Components)
}

func TestHistoryCommand_NoState(t *testing.T) {
	_, _, statePath := setupProject(t)

	_, err := run(t, "history", "--state", statePath, "--no-state")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestInvalidOutputFormat(t *testing.T) {
	pkg, _, _ := setupProject(t)

	_, err := run(t, "plan", pkg, "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
