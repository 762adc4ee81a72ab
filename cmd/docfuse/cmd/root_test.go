package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "docfuse", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommandHelp(t *testing.T) {
	cmd := rootCmd

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	cmd.SetArgs([]string{"--help"})
	err := cmd.Execute()

	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "structural elements")
	assert.Contains(t, output, "Available Commands:")
	assert.Contains(t, output, "Usage:")
}

func TestRootCommandVersion(t *testing.T) {
	cmd := rootCmd

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	// Reset the help flag left set by TestRootCommandHelp on the shared
	// rootCmd, otherwise cobra prints help instead of running RunE.
	if f := cmd.Flags().Lookup("help"); f != nil {
		require.NoError(t, f.Value.Set("false"))
	}

	cmd.SetArgs([]string{"--version"})
	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "docfuse version")
}

func TestRootCommandSubcommands(t *testing.T) {
	subcommands := rootCmd.Commands()
	commandNames := make([]string, len(subcommands))
	for i, subcmd := range subcommands {
		commandNames[i] = subcmd.Name()
	}

	expectedCommands := []string{"reconcile", "batch", "version"}
	for _, expected := range expectedCommands {
		assert.Contains(t, commandNames, expected, "Expected subcommand '%s' not found", expected)
	}
}

func TestRootCommandInvalidFlag(t *testing.T) {
	cmd := rootCmd

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	cmd.SetArgs([]string{"--invalid-flag"})
	err := cmd.Execute()

	require.Error(t, err)
	resetRootArgs()
}

func TestVersionCommand(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	rootCmd.SetArgs([]string{"version"})
	err := rootCmd.Execute()

	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "docfuse version")
	assert.Contains(t, output, "Commit:")
	resetRootArgs()
}

func TestReconcileCommand_MissingRequiredFlags(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"reconcile"})

	err := rootCmd.Execute()

	require.Error(t, err)
	resetRootArgs()
}

func TestReconcileCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()

	structure := filepath.Join(dir, "doc.mmd")
	require.NoError(t, os.WriteFile(structure, []byte("# Results\n\nThe cat sat\n"), 0o644))

	fragments := filepath.Join(dir, "fragments.json")
	require.NoError(t, os.WriteFile(fragments, []byte(`[
		{"text": "Results", "page": 1, "bbox": [0, 0, 60, 18], "font_size": 18},
		{"text": "The", "page": 1, "bbox": [0, 30, 24, 42]},
		{"text": "cat", "page": 1, "bbox": [26, 30, 48, 42]},
		{"text": "sat", "page": 1, "bbox": [50, 30, 70, 42]}
	]`), 0o644))

	outFile := filepath.Join(dir, "out.md")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{
		"reconcile",
		"--structure", structure,
		"--fragments", fragments,
		"--output", outFile,
	})

	err := rootCmd.Execute()
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Results")
	assert.Contains(t, string(data), "The cat sat")
	resetRootArgs()
}

func TestBatchCommand_BadManifest(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte("documents: []\n"), 0o644))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"batch", manifest})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no documents")
	resetRootArgs()
}

func TestBatchCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()

	structure := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(structure, []byte(`[
		{"kind": "paragraph", "text": "hello world"}
	]`), 0o644))

	fragments := filepath.Join(dir, "fragments.json")
	require.NoError(t, os.WriteFile(fragments, []byte(`[
		{"text": "hello", "page": 1, "bbox": [0, 0, 30, 12]},
		{"text": "world", "page": 1, "bbox": [32, 0, 62, 12]}
	]`), 0o644))

	manifest := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`documents:
  - name: demo
    structure: `+structure+`
    fragments: `+fragments+"\n"), 0o644))

	outDir := filepath.Join(dir, "out")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"batch", manifest, "--output-dir", outDir})

	err := rootCmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "1/1 documents succeeded")

	data, err := os.ReadFile(filepath.Join(outDir, "demo.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello world")
	resetRootArgs()
}

// resetRootArgs clears sticky args so later tests start from a clean command.
func resetRootArgs() {
	rootCmd.SetArgs(nil)
}
