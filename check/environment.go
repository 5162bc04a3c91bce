package check

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudworx/setup/envfile"
	"github.com/cloudworx/setup/io/fs"
	"github.com/cloudworx/setup/log"
)

type EnvironmentConfig struct {
	FS       fs.Filesystem
	File     string // Path of the environment file, e.g. ".env"
	Template string // Path of the template, e.g. ".env.example"
	Keys     envfile.KeySet

	Printer Printer
	Logger  log.Logger
}

type environment struct {
	fs       fs.Filesystem
	file     string
	template string
	keys     envfile.KeySet
	printer  Printer
	logger   log.Logger
}

// NewEnvironment returns a check that validates the environment file. If the
// file doesn't exist, it is created from the template. The check always fails
// after creating the file, because the values have to be filled in manually.
func NewEnvironment(config EnvironmentConfig) Check {
	c := &environment{
		fs:       config.FS,
		file:     config.File,
		template: config.Template,
		keys:     config.Keys,
		printer:  config.Printer,
		logger:   config.Logger,
	}

	if c.logger == nil {
		c.logger = log.New("")
	}

	c.logger = c.logger.WithFields(log.Fields{
		"check": c.Name(),
		"file":  c.file,
	})

	return c
}

func (c *environment) Name() string {
	return "Environment"
}

func (c *environment) Run() error {
	c.printer.Section(c.Name())

	data, err := c.fs.ReadFile(c.file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c.create()
		}

		c.logger.Error().WithError(err).Log("Reading failed")
		c.printer.Error(2, "Failed to read `%s`: %s", c.file, err.Error())

		return newError(c.Name(), ExitEnvironment, fmt.Errorf("%w: %s", ErrFilesystemAccess, err.Error()))
	}

	issues, err := envfile.Validate(bytes.NewReader(data), c.keys)
	if err != nil {
		c.logger.Error().WithError(err).Log("Reading failed")
		c.printer.Error(2, "Failed to read `%s`: %s", c.file, err.Error())

		return newError(c.Name(), ExitEnvironment, fmt.Errorf("%w: %s", ErrInvalidEnv, err.Error()))
	}

	for _, issue := range issues {
		c.report(issue)
	}

	if len(issues) != 0 {
		c.logger.Debug().WithField("issues", len(issues)).Log("Validation failed")
		return newError(c.Name(), ExitEnvironment, fmt.Errorf("%w: %d invalid lines", ErrInvalidEnv, len(issues)))
	}

	record, err := envfile.Parse(data)
	if err != nil {
		c.logger.Warn().WithError(err).Log("Parsing values failed")
	} else {
		c.logger.Info().WithFields(log.Fields{
			"values":  len(record),
			"missing": strings.Join(record.Missing(c.keys), ","),
		}).Log("Loaded")
	}

	c.printer.Success(2, "`%s` is valid", c.file)

	return nil
}

func (c *environment) report(issue envfile.Issue) {
	switch issue.Kind {
	case envfile.IssueInvalidLine:
		c.printer.Error(2, "Invalid line in `%s` (line %d): %s", c.file, issue.Line, issue.Text)
	case envfile.IssueUnknownKey:
		c.printer.Error(2, "Unknown key in `%s` (line %d): %s (expected one of %s)", c.file, issue.Line, issue.Key, strings.Join(c.keys.Sorted(), ", "))
	case envfile.IssueEmptyValue:
		c.printer.Error(2, "Empty value for key in `%s` (line %d): %s", c.file, issue.Line, issue.Key)
	case envfile.IssueDuplicateKey:
		c.printer.Error(2, "Duplicate key in `%s` (line %d): %s", c.file, issue.Line, issue.Key)
	}
}

func (c *environment) create() error {
	c.printer.Warn(2, "No `%s` file found.", c.file)

	data, err := c.fs.ReadFile(c.template)
	if err != nil {
		c.logger.Debug().WithError(err).WithField("template", c.template).Log("Reading template failed")
		c.printer.Error(2, "Missing `%s` file. Cannot create `%s`", c.template, c.file)

		return newError(c.Name(), ExitEnvironment, ErrMissingTemplate)
	}

	if _, _, err := c.fs.WriteFile(c.file, envfile.FromTemplate(data), 0600); err != nil {
		c.logger.Error().WithError(err).Log("Writing failed")
		c.printer.Error(2, "Failed to create `%s`: %s", c.file, err.Error())

		return newError(c.Name(), ExitEnvironment, fmt.Errorf("%w: %s", ErrFilesystemAccess, err.Error()))
	}

	c.logger.Info().WithField("template", c.template).Log("Created from template")

	c.printer.Info(2, "Created `%s` from `%s`", c.file, c.template)
	c.printer.Error(2, "Missing required values in `%s`", c.file)

	return newError(c.Name(), ExitEnvironment, ErrCreatedEnv)
}
