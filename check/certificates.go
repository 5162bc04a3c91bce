package check

import (
	"fmt"
	"strings"

	"github.com/cloudworx/setup/io/fs"
	"github.com/cloudworx/setup/log"
	"github.com/cloudworx/setup/process"
)

// MkcertHomepage has the installation instructions for mkcert.
const MkcertHomepage = "https://github.com/FiloSottile/mkcert"

type CertificatesConfig struct {
	FS       fs.Filesystem
	Dir      string // Directory of the certificate pair
	KeyFile  string // Path of the private key
	CertFile string // Path of the certificate
	Host     string // Host name the certificate is issued for
	Tool     string // Name of the certificate tool, e.g. mkcert
	Homepage string

	Runner    process.Runner
	Installer Installer
	Prompter  Prompter
	Printer   Printer
	Logger    log.Logger
}

type certificates struct {
	fs       fs.Filesystem
	dir      string
	keyFile  string
	certFile string
	host     string
	tool     string
	homepage string

	runner    process.Runner
	installer Installer
	prompter  Prompter
	printer   Printer
	logger    log.Logger
}

// NewCertificates returns a check that installs the local certificate
// authority and generates a certificate pair for the host, unless the pair
// already exists.
func NewCertificates(config CertificatesConfig) Check {
	c := &certificates{
		fs:        config.FS,
		dir:       config.Dir,
		keyFile:   config.KeyFile,
		certFile:  config.CertFile,
		host:      config.Host,
		tool:      config.Tool,
		homepage:  config.Homepage,
		runner:    config.Runner,
		installer: config.Installer,
		prompter:  config.Prompter,
		printer:   config.Printer,
		logger:    config.Logger,
	}

	if c.logger == nil {
		c.logger = log.New("")
	}

	c.logger = c.logger.WithFields(log.Fields{
		"check": c.Name(),
		"tool":  c.tool,
	})

	return c
}

func (c *certificates) Name() string {
	return "Certificates"
}

func (c *certificates) Run() error {
	c.printer.Section(c.Name())

	if !fs.Exists(c.fs, c.dir) {
		if err := c.fs.MkdirAll(c.dir, 0755); err != nil {
			c.logger.Error().WithError(err).Log("Creating directory failed")
			c.printer.Error(2, "Failed to create `%s` dir: %s", c.dir, err.Error())

			return newError(c.Name(), ExitCertificates, fmt.Errorf("%w: %s", ErrFilesystemAccess, err.Error()))
		}

		c.printer.Info(2, "Created `%s` dir", c.dir)
	}

	if err := c.ensureTool(); err != nil {
		return err
	}

	c.printer.Info(2, "Installing local CA")

	if !c.runner.Run(process.Command{Line: c.tool + " -install", Capture: false, Indent: 4}) {
		c.printer.Error(2, "Failed to install local CA")
		return newError(c.Name(), ExitCertificates, ErrLocalCA)
	}

	keyFile, certFile := c.keyFile, c.certFile

	if fs.NonEmptyFile(c.fs, keyFile) && fs.NonEmptyFile(c.fs, certFile) {
		c.logger.Debug().Log("Certificate pair exists")
	} else {
		c.printer.Info(2, "Generating certificates")

		line := fmt.Sprintf("%s -key-file %s -cert-file %s %s", c.tool, quote(keyFile), quote(certFile), c.host)

		if !c.runner.Run(process.Command{Line: line, Capture: true, Indent: 4}) {
			c.printer.Error(2, "Failed to generate certificates")
			return newError(c.Name(), ExitCertificates, ErrCertificates)
		}

		c.logger.Info().WithFields(log.Fields{
			"key":  keyFile,
			"cert": certFile,
		}).Log("Generated certificate pair")
	}

	c.printer.Success(2, "Certificates are valid")

	return nil
}

func (c *certificates) ensureTool() error {
	if _, err := c.fs.LookPath(c.tool); err == nil {
		c.printer.Success(2, "%s is installed", c.tool)
		return nil
	}

	c.printer.Error(2, "%s is not installed", c.tool)

	if !c.prompter.Confirm(fmt.Sprintf("Install %s?", c.tool), 2) {
		c.printer.Error(2, "Please install %s to continue%s", c.tool, c.hint())
		return newError(c.Name(), ExitCertificates, ErrToolDeclined)
	}

	if !c.installer.Install(c.tool) {
		c.printer.Error(2, "Failed to install %s. Please install manually%s", c.tool, c.hint())
		return newError(c.Name(), ExitCertificates, ErrToolInstall)
	}

	return nil
}

func (c *certificates) hint() string {
	if len(c.homepage) == 0 {
		return ""
	}

	return " (" + c.homepage + ")"
}

// quote quotes a path for the shell if it contains spaces.
func quote(p string) string {
	if !strings.ContainsAny(p, " \t") {
		return p
	}

	return `"` + p + `"`
}
