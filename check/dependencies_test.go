package check

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudworx/setup/io/fs"
	"github.com/cloudworx/setup/process"

	"github.com/stretchr/testify/require"
)

func newTestDependencies(t *testing.T, manifest string, executables ...string) (Check, *fakeRunner, func() string) {
	memfs := newTestFS(t)
	setPath(t, memfs, executables...)

	if len(manifest) != 0 {
		_, _, err := memfs.WriteFile("package.json", []byte(manifest), 0644)
		require.NoError(t, err)
	}

	printer, buf := newTestPrinter()
	runner := newFakeRunner()

	c := NewDependencies(DependenciesConfig{
		FS:       memfs,
		Manifest: "package.json",
		Runtime:  "node",
		Install:  "npm install",
		Runner:   runner,
		Printer:  printer,
	})

	return c, runner, buf.String
}

func TestDependencies(t *testing.T) {
	c, runner, out := newTestDependencies(t, `{"name": "cloudworx"}`, "node")

	require.Equal(t, "Dependencies", c.Name())
	require.NoError(t, c.Run())

	require.Equal(t, []process.Command{
		{Line: "npm install", Capture: true, Indent: 4},
	}, runner.commands)
	require.Empty(t, runner.captured)

	require.Equal(t, "\n[Dependencies]\n"+
		"  → Installing dependencies\n"+
		"  ✓ Dependencies are installed\n", out())
}

func TestDependenciesMissingManifest(t *testing.T) {
	c, runner, out := newTestDependencies(t, "", "node")

	requireExitCode(t, c.Run(), ExitDependencies, ErrMissingManifest)

	require.Empty(t, runner.commands)
	require.Contains(t, out(), "  ✗ Missing required `package.json` file\n")
}

func TestDependenciesUnreadableManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "package.json"), 0755))

	diskfs, err := fs.NewDiskFilesystem(fs.DiskConfig{Dir: dir})
	require.NoError(t, err)

	printer, buf := newTestPrinter()
	runner := newFakeRunner()

	c := NewDependencies(DependenciesConfig{
		FS:       diskfs,
		Manifest: "package.json",
		Runtime:  "node",
		Install:  "npm install",
		Runner:   runner,
		Printer:  printer,
	})

	requireExitCode(t, c.Run(), ExitDependencies, ErrFilesystemAccess)

	require.Empty(t, runner.commands)
	require.Contains(t, buf.String(), "  ✗ Failed to read `package.json`: ")
	require.NotContains(t, buf.String(), "Missing required")
}

func TestDependenciesMissingRuntime(t *testing.T) {
	c, runner, out := newTestDependencies(t, `{}`)

	requireExitCode(t, c.Run(), ExitDependencies, ErrMissingRuntime)

	require.Empty(t, runner.commands)
	require.Contains(t, out(), "  ✗ Node.js is not installed\n  ✗ Please install it to continue (https://nodejs.org)\n")
}

func TestDependenciesInstallFails(t *testing.T) {
	c, runner, out := newTestDependencies(t, `{}`, "node")
	runner.fail["npm install"] = true

	requireExitCode(t, c.Run(), ExitDependencies, ErrDependencies)

	require.Contains(t, out(), "  ✗ Failed to install npm dependencies\n")
}

func TestDependenciesEngines(t *testing.T) {
	c, runner, out := newTestDependencies(t, `{"engines": {"node": ">=18.0.0"}}`, "node")
	runner.outputs["node --version"] = "v18.17.1"

	require.NoError(t, c.Run())
	require.Equal(t, []string{"node --version"}, runner.captured)
	require.NotContains(t, out(), "!")
}

func TestDependenciesEnginesMismatch(t *testing.T) {
	c, runner, out := newTestDependencies(t, `{"engines": {"node": "^20.0.0"}}`, "node")
	runner.outputs["node --version"] = "v18.17.1"

	require.NoError(t, c.Run())
	require.Contains(t, out(), "  ! Node.js 18.17.1 does not satisfy `engines.node` ^20.0.0\n")
	require.Equal(t, []string{"npm install"}, runner.lines())
}

func TestDependenciesEnginesUnknownVersion(t *testing.T) {
	c, runner, out := newTestDependencies(t, `{"engines": {"node": "^20.0.0"}}`, "node")

	require.NoError(t, c.Run())
	require.Equal(t, []string{"node --version"}, runner.captured)
	require.NotContains(t, out(), "does not satisfy")
}

func TestDependenciesInvalidManifest(t *testing.T) {
	c, runner, out := newTestDependencies(t, `{"engines": `, "node")

	require.NoError(t, c.Run())
	require.Contains(t, out(), "  ! Invalid `package.json`: syntax error at line 1")
	require.Equal(t, []string{"npm install"}, runner.lines())
}

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`{"name": "cloudworx", "engines": {"node": ">=18"}}`))

	require.NoError(t, err)
	require.Equal(t, "cloudworx", m.Name)
	require.Equal(t, ">=18", m.Engines.Node)

	_, err = ParseManifest([]byte(`[]`))
	require.Error(t, err)
}
