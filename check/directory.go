package check

import (
	"os"
	"path/filepath"

	"github.com/cloudworx/setup/log"
)

type DirectoryConfig struct {
	// Root is the root directory of the project.
	Root string

	Printer Printer

	Getwd func() (string, error) // Defaults to os.Getwd
	Chdir func(dir string) error  // Defaults to os.Chdir

	Logger log.Logger
}

type directory struct {
	root    string
	printer Printer
	getwd   func() (string, error)
	chdir   func(dir string) error
	logger  log.Logger
}

// NewDirectory returns a check that changes the working directory into the
// root of the project. It never fails.
func NewDirectory(config DirectoryConfig) Check {
	c := &directory{
		root:    config.Root,
		printer: config.Printer,
		getwd:   config.Getwd,
		chdir:   config.Chdir,
		logger:  config.Logger,
	}

	if c.getwd == nil {
		c.getwd = os.Getwd
	}

	if c.chdir == nil {
		c.chdir = os.Chdir
	}

	if c.logger == nil {
		c.logger = log.New("")
	}

	c.logger = c.logger.WithField("check", c.Name())

	return c
}

func (c *directory) Name() string {
	return "Directory"
}

func (c *directory) Run() error {
	c.printer.Section(c.Name())

	cwd, err := c.getwd()
	if err != nil {
		c.logger.Warn().WithError(err).Log("Unknown working directory")
		c.printer.Warn(2, "Current dir is unknown: %s", err.Error())
	} else {
		c.printer.Info(2, "Current dir: `%s`", cwd)
	}

	if err != nil || filepath.Clean(cwd) != filepath.Clean(c.root) {
		c.printer.Warn(2, "Current dir is not the root directory")
		c.printer.Info(2, "Changing root dir: `%s`", c.root)

		if err := c.chdir(c.root); err != nil {
			c.logger.Warn().WithError(err).Log("Changing directory failed")
			c.printer.Warn(2, "Failed to change dir: %s", err.Error())
		}
	}

	c.logger.Debug().WithField("root", c.root).Log("Working directory")

	c.printer.Success(2, "Current dir is valid")

	return nil
}

// FindRoot returns the nearest directory, starting at start and walking up,
// that contains the file named manifest. If no such directory exists, start
// is returned.
func FindRoot(start, manifest string) string {
	dir := filepath.Clean(start)

	for {
		info, err := os.Stat(filepath.Join(dir, manifest))
		if err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return filepath.Clean(start)
}
