package check

import (
	"testing"

	"github.com/cloudworx/setup/io/fs"
	"github.com/cloudworx/setup/process"

	"github.com/stretchr/testify/require"
)

const generateLine = "mkcert -key-file certs/localhost-key.pem -cert-file certs/localhost.pem localhost"

type certTest struct {
	fs        fs.Filesystem
	runner    *fakeRunner
	prompter  *fakePrompter
	installer *fakeInstaller
	check     Check
	out       func() string
}

func newCertTest(t *testing.T, executables ...string) *certTest {
	memfs := newTestFS(t)
	setPath(t, memfs, executables...)

	printer, buf := newTestPrinter()

	ct := &certTest{
		fs:        memfs,
		runner:    newFakeRunner(),
		prompter:  &fakePrompter{},
		installer: &fakeInstaller{},
		out:       buf.String,
	}

	// mkcert writes both files when generating
	ct.runner.onRun = func(cmd process.Command) {
		if cmd.Line == generateLine && !ct.runner.fail[cmd.Line] {
			memfs.WriteFile("certs/localhost-key.pem", []byte("key"), 0600)
			memfs.WriteFile("certs/localhost.pem", []byte("cert"), 0644)
		}
	}

	ct.check = NewCertificates(CertificatesConfig{
		FS:        memfs,
		Dir:       "certs",
		KeyFile:   "certs/localhost-key.pem",
		CertFile:  "certs/localhost.pem",
		Host:      "localhost",
		Tool:      "mkcert",
		Homepage:  MkcertHomepage,
		Runner:    ct.runner,
		Installer: ct.installer,
		Prompter:  ct.prompter,
		Printer:   printer,
	})

	return ct
}

func TestCertificatesGenerate(t *testing.T) {
	ct := newCertTest(t, "mkcert")

	require.Equal(t, "Certificates", ct.check.Name())
	require.NoError(t, ct.check.Run())

	require.Equal(t, []process.Command{
		{Line: "mkcert -install", Capture: false, Indent: 4},
		{Line: generateLine, Capture: true, Indent: 4},
	}, ct.runner.commands)

	require.Equal(t, "\n[Certificates]\n"+
		"  → Created `certs` dir\n"+
		"  ✓ mkcert is installed\n"+
		"  → Installing local CA\n"+
		"  → Generating certificates\n"+
		"  ✓ Certificates are valid\n", ct.out())

	require.Empty(t, ct.prompter.questions)
}

func TestCertificatesPresent(t *testing.T) {
	ct := newCertTest(t, "mkcert")

	ct.fs.WriteFile("certs/localhost-key.pem", []byte("key"), 0600)
	ct.fs.WriteFile("certs/localhost.pem", []byte("cert"), 0644)

	require.NoError(t, ct.check.Run())

	require.Equal(t, []string{"mkcert -install"}, ct.runner.lines())
	require.NotContains(t, ct.out(), "Created `certs` dir")
	require.NotContains(t, ct.out(), "Generating certificates")
}

func TestCertificatesPartial(t *testing.T) {
	for _, existing := range []string{"certs/localhost-key.pem", "certs/localhost.pem"} {
		ct := newCertTest(t, "mkcert")

		ct.fs.WriteFile(existing, []byte("stale"), 0600)

		require.NoError(t, ct.check.Run())
		require.Equal(t, []string{"mkcert -install", generateLine}, ct.runner.lines())

		key, err := ct.fs.ReadFile("certs/localhost-key.pem")
		require.NoError(t, err)
		require.Equal(t, "key", string(key))

		cert, err := ct.fs.ReadFile("certs/localhost.pem")
		require.NoError(t, err)
		require.Equal(t, "cert", string(cert))
	}
}

func TestCertificatesEmptyFile(t *testing.T) {
	ct := newCertTest(t, "mkcert")

	ct.fs.WriteFile("certs/localhost-key.pem", []byte("key"), 0600)
	ct.fs.WriteFile("certs/localhost.pem", []byte{}, 0644)

	require.NoError(t, ct.check.Run())
	require.Equal(t, []string{"mkcert -install", generateLine}, ct.runner.lines())
}

func TestCertificatesToolDeclined(t *testing.T) {
	ct := newCertTest(t)
	ct.prompter.answer = false

	requireExitCode(t, ct.check.Run(), ExitCertificates, ErrToolDeclined)

	require.Equal(t, []string{"Install mkcert?"}, ct.prompter.questions)
	require.Empty(t, ct.installer.packages)
	require.Empty(t, ct.runner.commands)

	require.True(t, fs.Exists(ct.fs, "certs"))
	require.False(t, fs.Exists(ct.fs, "certs/localhost-key.pem"))
	require.False(t, fs.Exists(ct.fs, "certs/localhost.pem"))

	require.Contains(t, ct.out(), "  ✗ mkcert is not installed\n")
	require.Contains(t, ct.out(), "  ✗ Please install mkcert to continue (https://github.com/FiloSottile/mkcert)\n")
}

func TestCertificatesToolInstallFails(t *testing.T) {
	ct := newCertTest(t)
	ct.prompter.answer = true
	ct.installer.ok = false

	requireExitCode(t, ct.check.Run(), ExitCertificates, ErrToolInstall)

	require.Equal(t, []string{"mkcert"}, ct.installer.packages)
	require.Empty(t, ct.runner.commands)
}

func TestCertificatesToolInstalled(t *testing.T) {
	ct := newCertTest(t)
	ct.prompter.answer = true
	ct.installer.ok = true

	require.NoError(t, ct.check.Run())

	require.Equal(t, []string{"mkcert"}, ct.installer.packages)
	require.Equal(t, []string{"mkcert -install", generateLine}, ct.runner.lines())
}

func TestCertificatesLocalCAFails(t *testing.T) {
	ct := newCertTest(t, "mkcert")
	ct.runner.fail["mkcert -install"] = true

	requireExitCode(t, ct.check.Run(), ExitCertificates, ErrLocalCA)

	require.Equal(t, []string{"mkcert -install"}, ct.runner.lines())
	require.Contains(t, ct.out(), "  ✗ Failed to install local CA\n")
}

func TestCertificatesGenerateFails(t *testing.T) {
	ct := newCertTest(t, "mkcert")
	ct.runner.fail[generateLine] = true

	requireExitCode(t, ct.check.Run(), ExitCertificates, ErrCertificates)

	require.Contains(t, ct.out(), "  ✗ Failed to generate certificates\n")
	require.NotContains(t, ct.out(), "Certificates are valid")
}

func TestCertificatesHost(t *testing.T) {
	memfs := newTestFS(t)
	setPath(t, memfs, "mkcert")

	printer, _ := newTestPrinter()
	runner := newFakeRunner()

	c := NewCertificates(CertificatesConfig{
		FS:       memfs,
		Dir:      "my certs",
		KeyFile:  "my certs/dev.local-key.pem",
		CertFile: "my certs/dev.local.pem",
		Host:     "dev.local",
		Tool:     "mkcert",
		Runner:   runner,
		Prompter: &fakePrompter{},
		Printer:  printer,
	})

	require.NoError(t, c.Run())
	require.Equal(t, []string{
		"mkcert -install",
		`mkcert -key-file "my certs/dev.local-key.pem" -cert-file "my certs/dev.local.pem" dev.local`,
	}, runner.lines())
}
