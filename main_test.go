package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/cloudworx/setup/app"

	"github.com/stretchr/testify/require"
)

// newTestRoot creates a project root with the given files and changes into
// it for the duration of the test.
func newTestRoot(t *testing.T, files map[string]string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires administrator privileges on windows")
	}

	dir := t.TempDir()

	if _, ok := files["package.json"]; !ok {
		files["package.json"] = `{"name": "cloudworx"}`
	}

	for name, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	}

	cwd, err := os.Getwd()
	require.NoError(t, err)

	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) })

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)

	return dir
}

func runTest(args ...string) (string, string, error) {
	stdout, stderr := bytes.Buffer{}, bytes.Buffer{}

	err := run(args, &stdout, &stderr)

	return stdout.String(), stderr.String(), err
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()

	require.Error(t, err)

	var coder interface{ ExitCode() int }
	require.True(t, errors.As(err, &coder), "unexpected error type %T", err)
	require.Equal(t, code, coder.ExitCode())
}

func TestRunUnknownKey(t *testing.T) {
	newTestRoot(t, map[string]string{
		".env": "FOO=bar\n",
	})

	stdout, _, err := runTest("--color", "never")

	requireExitCode(t, err, 2)
	require.Contains(t, stdout, "[Environment]\n")
	require.Contains(t, stdout, "  ✗ Unknown key in `.env` (line 1): FOO (expected one of ")
	require.NotContains(t, stdout, "[Certificates]")
}

func TestRunFromTemplate(t *testing.T) {
	dir := newTestRoot(t, map[string]string{
		".env.example": "# CloudWorx server\nRECAPTCHA_SECRET_KEY=\nARGON_MEM_COST=65536\n",
	})

	stdout, _, err := runTest("--color", "never")

	requireExitCode(t, err, 2)
	require.Contains(t, stdout, "  ! No `.env` file found.\n")
	require.Contains(t, stdout, "  → Created `.env` from `.env.example`\n")
	require.Contains(t, stdout, "  ✗ Missing required values in `.env`\n")

	data, err := os.ReadFile(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	require.Equal(t, "RECAPTCHA_SECRET_KEY=\nARGON_MEM_COST=65536\n", string(data))
}

func TestRunServerEnvIsNotConfiguration(t *testing.T) {
	newTestRoot(t, map[string]string{
		".env":    "SETUP_ENV_FILE=.env.ok\nRECAPTCHA_SECRET_KEY=s3cr3t\nFOO=bar\n",
		".env.ok": "ARGON_MEM_COST=65536\n",
	})

	stdout, _, err := runTest("--color", "never")

	requireExitCode(t, err, 2)
	require.Contains(t, stdout, "  ✗ Unknown key in `.env` (line 1): SETUP_ENV_FILE")
	require.Contains(t, stdout, "  ✗ Unknown key in `.env` (line 3): FOO")
	require.NotContains(t, stdout, ".env.ok")

	_, ok := os.LookupEnv("SETUP_ENV_FILE")
	require.False(t, ok)

	_, ok = os.LookupEnv("RECAPTCHA_SECRET_KEY")
	require.False(t, ok)
}

func TestRunConfigPrecedence(t *testing.T) {
	newTestRoot(t, map[string]string{
		".env":        "ARGON_MEM_COST=65536\n",
		"setup.yaml":  "env:\n  file: yaml.env\n",
		"yaml.env":    "FOO=bar\n",
		"dotenv.env":  "FOO=bar\n",
		"process.env": "FOO=bar\n",
	})

	stdout, _, err := runTest("--color", "never")

	requireExitCode(t, err, 2)
	require.Contains(t, stdout, "Unknown key in `yaml.env` (line 1)")

	require.NoError(t, os.WriteFile("setup.env", []byte("SETUP_ENV_FILE=dotenv.env\n"), 0644))

	stdout, _, err = runTest("--color", "never")

	requireExitCode(t, err, 2)
	require.Contains(t, stdout, "Unknown key in `dotenv.env` (line 1)")

	_, ok := os.LookupEnv("SETUP_ENV_FILE")
	require.False(t, ok)

	t.Setenv("SETUP_ENV_FILE", "process.env")

	stdout, _, err = runTest("--color", "never")

	requireExitCode(t, err, 2)
	require.Contains(t, stdout, "Unknown key in `process.env` (line 1)")
}

func TestRunEnvFileFlag(t *testing.T) {
	newTestRoot(t, map[string]string{
		".env":         "ARGON_MEM_COST=65536\n",
		"tool/dev.env": "SETUP_ENV_FILE=server.env\n",
		"server.env":   "ARGON_MEM_COST=\n",
		"setup.env":    "SETUP_ENV_FILE=ignored.env\n",
		"ignored.env":  "FOO=bar\n",
	})

	stdout, _, err := runTest("--color", "never", "--env-file", "tool/dev.env")

	requireExitCode(t, err, 2)
	require.Contains(t, stdout, "  ✗ Empty value for key in `server.env` (line 1): ARGON_MEM_COST\n")
	require.NotContains(t, stdout, "ignored.env")
}

func TestRunColorFlag(t *testing.T) {
	newTestRoot(t, map[string]string{
		".env":       "FOO=bar\n",
		"setup.yaml": "color: always\n",
	})

	stdout, _, err := runTest()

	requireExitCode(t, err, 2)
	require.Contains(t, stdout, "\x1b[")

	stdout, _, err = runTest("--color", "never")

	requireExitCode(t, err, 2)
	require.NotContains(t, stdout, "\x1b[")
}

func TestRunInvalidConfiguration(t *testing.T) {
	tests := map[string][]string{
		"unknown flag":     {"--bogus"},
		"argument":         {"extra"},
		"log level":        {"--log-level", "loud"},
		"color":            {"--color", "sometimes"},
		"unknown yaml key": {"--config", "broken.yaml"},
		"missing env file": {"--env-file", "missing.env"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			newTestRoot(t, map[string]string{
				".env":        "FOO=bar\n",
				"broken.yaml": "colour: never\n",
			})

			stdout, _, err := runTest(args...)

			requireExitCode(t, err, ExitConfig)
			require.NotContains(t, stdout, "[Environment]")
		})
	}
}

func TestRunInvalidEnvironmentValue(t *testing.T) {
	newTestRoot(t, map[string]string{
		".env": "FOO=bar\n",
	})

	t.Setenv("SETUP_CERTS_HOST", "not a host")

	stdout, stderr, err := runTest("--color", "never")

	requireExitCode(t, err, ExitConfig)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "certs.host")
}

func TestRunLogFile(t *testing.T) {
	dir := newTestRoot(t, map[string]string{
		".env": "FOO=bar\n",
	})

	logfile := filepath.Join(dir, "setup.log")
	t.Setenv("SETUP_LOG_FILE", logfile)

	_, stderr, err := runTest("--color", "never", "--log-level", "debug")

	requireExitCode(t, err, 2)
	require.Contains(t, stderr, "Configuration loaded")

	data, err := os.ReadFile(logfile)
	require.NoError(t, err)
	require.Contains(t, string(data), `"message":"Configuration loaded"`)
	require.Contains(t, string(data), `"component":"Main"`)
}

func TestRunVersion(t *testing.T) {
	stdout, _, err := runTest("--version")

	require.NoError(t, err)
	require.Contains(t, stdout, app.Name+" "+app.Version.String())
}

func TestRunHelp(t *testing.T) {
	for _, flag := range []string{"--help", "-h"} {
		stdout, _, err := runTest(flag)

		require.NoError(t, err)
		require.Contains(t, stdout, "Usage:\n  "+app.Name+" [flags]")
		require.Contains(t, stdout, "--env-file")
	}
}
