package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

type queryGlobals struct {
	json   bool
	limit  int
	mode   string
	sel    int
	dryRun bool
}

func withQueryGlobals(t *testing.T, g queryGlobals) {
	t.Helper()
	old := queryGlobals{
		json:   queryJSON,
		limit:  queryLimit,
		mode:   queryMode,
		sel:    querySelect,
		dryRun: queryDryRun,
	}
	queryJSON = g.json
	queryLimit = g.limit
	queryMode = g.mode
	querySelect = g.sel
	queryDryRun = g.dryRun

	t.Cleanup(func() {
		queryJSON = old.json
		queryLimit = old.limit
		queryMode = old.mode
		querySelect = old.sel
		queryDryRun = old.dryRun
	})
}

// withNoColors disables colors for the duration of the test.
func withNoColors(t *testing.T) {
	t.Helper()
	origMode := colorMode
	colorMode = "never"
	disableColors()
	t.Cleanup(func() {
		colorMode = origMode
		applyColorMode()
	})
}

// withTestConfig points --config at a fresh file in a temp dir whose catalog
// database also lives in the temp dir.
func withTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "catalog:\n  use_store: true\n  db_path: " + filepath.Join(dir, "catalog.db") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	old := configPath
	configPath = path
	t.Cleanup(func() { configPath = old })
	return path
}

// runCommand executes the root command with args and returns its output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}
