package cli_test

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sparseInput = `[
	{"id": 1, "name": "Ana", "contacts": {"email": "ana@example.com"}},
	{"id": 2, "name": null, "contacts": {"phone": "+49-111-222"}}
]`

// binary is the datamorph executable built once for the package
var binary string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "datamorph-cli")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}

	binary = filepath.Join(dir, "datamorph")
	build := exec.Command("go", "build", "-o", binary, "../..")
	if out, err := build.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "Error building datamorph: %v\n%s", err, out)
		_ = os.RemoveAll(dir)
		os.Exit(1)
	}

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// datamorph runs the binary from dir with the given stdin
func datamorph(t *testing.T, dir, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command(binary, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestCLI_StdinStdout tests the CLI with stdin input and stdout output
func TestCLI_StdinStdout(t *testing.T) {
	stdout, stderr, err := datamorph(t, "", sparseInput, "--no-color")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.Contains(t, stdout, "id | name | contacts.email  | contacts.phone")
	assert.Contains(t, stdout, "Rows: 2 | Columns: 4")
	assert.Contains(t, stdout, "Total null values: 3")
}

// TestCLI_NullPolicyFlag counts only absent keys
func TestCLI_NullPolicyFlag(t *testing.T) {
	stdout, stderr, err := datamorph(t, "", sparseInput, "--no-color", "--null-policy", "absent")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.Contains(t, stdout, "Total null values: 2")
	assert.Contains(t, stdout, "name: 0 (absent 0, null 1)")
}

// TestCLI_MaxLevelFlag keeps nested objects as JSON text
func TestCLI_MaxLevelFlag(t *testing.T) {
	stdout, stderr, err := datamorph(t, "", sparseInput, "-f", "csv", "--max-level", "0")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,name,contacts", lines[0])
	assert.Equal(t, `1,Ana,"{""email"":""ana@example.com""}"`, lines[1])
}

// TestCLI_ConfigFileDiscovery picks up .datamorph.yml from the working directory
func TestCLI_ConfigFileDiscovery(t *testing.T) {
	dir := t.TempDir()
	cfg := "export:\n  format: csv\n  delimiter: \";\"\nflatten:\n  separator: \"_\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".datamorph.yml"), []byte(cfg), 0644))

	stdout, stderr, err := datamorph(t, dir, sparseInput)
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.True(t, strings.HasPrefix(stdout, "id;name;contacts_email;contacts_phone\n"), stdout)
}

// TestCLI_ExplicitConfigAndFlagPrecedence lets flags win over the config file
func TestCLI_ExplicitConfigAndFlagPrecedence(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("export:\n  format: html\n"), 0644))

	stdout, stderr, err := datamorph(t, "", sparseInput, "-c", cfgPath, "-f", "tsv")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.True(t, strings.HasPrefix(stdout, "id\tname\tcontacts.email\tcontacts.phone\n"), stdout)
	assert.NotContains(t, stdout, "<table")
}

// TestCLI_InvalidConfig reports configuration problems
func TestCLI_InvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("export:\n  format: xml\n"), 0644))

	_, stderr, err := datamorph(t, "", sparseInput, "-c", cfgPath)
	assert.Error(t, err)
	assert.Contains(t, stderr, "Configuration error")
}

// TestCLI_InvalidJSON tests the CLI with invalid JSON
func TestCLI_InvalidJSON(t *testing.T) {
	_, stderr, err := datamorph(t, "", `[{"name": "John", "age": 30,}]`)
	assert.Error(t, err, "Expected error for invalid JSON")
	assert.Contains(t, stderr, "JSON parsing error")
	assert.Contains(t, stderr, "line 1, column")
}

// TestCLI_EmptyInput tests the CLI with whitespace-only input
func TestCLI_EmptyInput(t *testing.T) {
	_, stderr, err := datamorph(t, "", "   \n")
	assert.Error(t, err, "Expected error for empty input")
	assert.Contains(t, stderr, "Input error")
}

// TestCLI_Version tests the version flag
func TestCLI_Version(t *testing.T) {
	stdout, _, err := datamorph(t, "", "", "-v")
	require.NoError(t, err)
	assert.Contains(t, stdout, "datamorph version")
}

// TestCLI_Help tests the help flag
func TestCLI_Help(t *testing.T) {
	stdout, _, err := datamorph(t, "", "", "--help")
	require.NoError(t, err)

	for _, flag := range []string{"--input", "--format", "--config", "--example", "--sqlite", "--ddl", "--null-policy", "--max-level"} {
		assert.Contains(t, stdout, flag)
	}
}
