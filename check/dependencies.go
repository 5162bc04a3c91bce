package check

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cloudworx/setup/encoding/json"
	"github.com/cloudworx/setup/io/fs"
	"github.com/cloudworx/setup/log"
	"github.com/cloudworx/setup/process"

	"github.com/Masterminds/semver/v3"
)

// NodeHomepage has the installation instructions for Node.js.
const NodeHomepage = "https://nodejs.org"

type DependenciesConfig struct {
	FS       fs.Filesystem
	Manifest string // Path of the dependency manifest, e.g. package.json
	Runtime  string // Name of the runtime executable, e.g. node
	Install  string // Command line that installs the dependencies

	Runner  process.Runner
	Printer Printer
	Logger  log.Logger
}

type dependencies struct {
	fs       fs.Filesystem
	manifest string
	runtime  string
	install  string
	runner   process.Runner
	printer  Printer
	logger   log.Logger
}

// Manifest is the part of package.json the check is interested in.
type Manifest struct {
	Name    string `json:"name"`
	Engines struct {
		Node string `json:"node"`
	} `json:"engines"`
}

// ParseManifest parses the content of a package.json.
func ParseManifest(data []byte) (Manifest, error) {
	m := Manifest{}

	if err := json.Unmarshal(data, &m); err != nil {
		return m, json.FormatError(data, err)
	}

	return m, nil
}

// NewDependencies returns a check that installs the dependencies of the
// project.
func NewDependencies(config DependenciesConfig) Check {
	c := &dependencies{
		fs:       config.FS,
		manifest: config.Manifest,
		runtime:  config.Runtime,
		install:  config.Install,
		runner:   config.Runner,
		printer:  config.Printer,
		logger:   config.Logger,
	}

	if c.logger == nil {
		c.logger = log.New("")
	}

	c.logger = c.logger.WithField("check", c.Name())

	return c
}

func (c *dependencies) Name() string {
	return "Dependencies"
}

func (c *dependencies) Run() error {
	c.printer.Section(c.Name())

	data, err := c.fs.ReadFile(c.manifest)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug().WithError(err).Log("Manifest not found")
			c.printer.Error(2, "Missing required `%s` file", c.manifest)

			return newError(c.Name(), ExitDependencies, ErrMissingManifest)
		}

		c.logger.Error().WithError(err).Log("Reading manifest failed")
		c.printer.Error(2, "Failed to read `%s`: %s", c.manifest, err.Error())

		return newError(c.Name(), ExitDependencies, fmt.Errorf("%w: %s", ErrFilesystemAccess, err.Error()))
	}

	if _, err := c.fs.LookPath(c.runtime); err != nil {
		c.logger.Debug().WithError(err).Log("Runtime not found")
		c.printer.Error(2, "Node.js is not installed")
		c.printer.Error(2, "Please install it to continue (%s)", NodeHomepage)

		return newError(c.Name(), ExitDependencies, ErrMissingRuntime)
	}

	c.checkEngines(data)

	c.printer.Info(2, "Installing dependencies")

	if !c.runner.Run(process.Command{Line: c.install, Capture: true, Indent: 4}) {
		c.printer.Error(2, "Failed to install npm dependencies")
		return newError(c.Name(), ExitDependencies, ErrDependencies)
	}

	c.printer.Success(2, "Dependencies are installed")

	return nil
}

// checkEngines warns if the installed runtime doesn't satisfy the version
// constraint of the manifest.
func (c *dependencies) checkEngines(data []byte) {
	manifest, err := ParseManifest(data)
	if err != nil {
		c.logger.Warn().WithError(err).Log("Invalid manifest")
		c.printer.Warn(2, "Invalid `%s`: %s", c.manifest, err.Error())
		return
	}

	if len(manifest.Engines.Node) == 0 {
		return
	}

	constraint, err := semver.NewConstraint(manifest.Engines.Node)
	if err != nil {
		c.logger.Debug().WithError(err).WithField("engines", manifest.Engines.Node).Log("Invalid version constraint")
		return
	}

	output, ok := c.runner.Capture(c.runtime + " --version")
	if !ok {
		return
	}

	version, err := semver.NewVersion(strings.TrimSpace(output))
	if err != nil {
		c.logger.Debug().WithError(err).WithField("version", output).Log("Unknown runtime version")
		return
	}

	logger := c.logger.WithFields(log.Fields{
		"version":    version.String(),
		"constraint": constraint.String(),
	})

	if !constraint.Check(version) {
		logger.Warn().Log("Unsupported runtime version")
		c.printer.Warn(2, "Node.js %s does not satisfy `engines.node` %s", version.String(), manifest.Engines.Node)
		return
	}

	logger.Debug().Log("Runtime version")
}
