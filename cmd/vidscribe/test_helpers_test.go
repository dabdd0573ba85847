package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	home       string
	configPath string
	workDir    string
	cachePath  string
}

// setupCLITestEnv redirects HOME into a temp directory and writes a config
// file whose paths all live under it.
func setupCLITestEnv(t *testing.T) cliTestEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)

	workDir := filepath.Join(home, "work")
	logDir := filepath.Join(home, "logs")
	cachePath := filepath.Join(home, "cache", "transcripts.db")

	configPath := filepath.Join(home, "config.toml")
	contents := fmt.Sprintf(`[paths]
work_dir = %q
log_dir = %q

[cache]
enabled = true
path = %q
`, workDir, logDir, cachePath)
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	return cliTestEnv{
		home:       home,
		configPath: configPath,
		workDir:    workDir,
		cachePath:  cachePath,
	}
}

// runCLI executes the root command with the given args and returns captured
// stdout and stderr.
func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()

	if configPath != "" {
		args = append(append([]string{}, args...), "--config", configPath)
	}

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}
