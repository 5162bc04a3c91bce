// Package config implements types for handling the configuration of the
// setup tool.
package config

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"strings"

	"github.com/cloudworx/setup/config/value"
	"github.com/cloudworx/setup/config/vars"

	"github.com/go-playground/validator/v10"
)

// DefaultEnvKeys are the keys the server reads from its .env file.
var DefaultEnvKeys = []string{
	"RECAPTCHA_SECRET_KEY",
	"ARGON_MEM_COST",
	"ARGON_TIME_COST",
	"ARGON_THREADS",
}

// Data is the actual configuration data for the tool
type Data struct {
	Root      string `yaml:"root"`
	Color     string `yaml:"color" validate:"oneof=auto always never"`
	AssumeYes bool   `yaml:"assume_yes"`
	Log       struct {
		Level  string `yaml:"level" validate:"oneof=silent error warn info debug"`
		Format string `yaml:"format" validate:"oneof=console json"`
		File   string `yaml:"file"`
	} `yaml:"log"`
	Env struct {
		File     string   `yaml:"file" validate:"required"`
		Template string   `yaml:"template" validate:"required,nefield=File"`
		Keys     []string `yaml:"keys" validate:"min=1,dive,required,excludesall=#= "`
	} `yaml:"env"`
	Certs struct {
		Dir  string `yaml:"dir" validate:"required"`
		Host string `yaml:"host" validate:"required,hostname_rfc1123"`
		Tool string `yaml:"tool" validate:"required"`
	} `yaml:"certs"`
	Deps struct {
		Manifest string `yaml:"manifest" validate:"required"`
		Runtime  string `yaml:"runtime" validate:"required"`
		Install  string `yaml:"install" validate:"required"`
		Serve    string `yaml:"serve"`
	} `yaml:"deps"`
	Output struct {
		Progress string `yaml:"progress" validate:"required"`
	} `yaml:"output"`
}

// Config is a wrapper for Data
type Config struct {
	vars vars.Variables

	Data
}

// New returns a Config which is initialized with its default values
func New() *Config {
	config := &Config{}

	config.init()

	return config
}

func (d *Config) init() {
	d.vars.Register(value.NewDir(&d.Root, ""), "root", "SETUP_ROOT", "Project root directory, probed if empty", false)
	d.vars.Register(value.NewString(&d.Color, "auto"), "color", "SETUP_COLOR", "Colored output: auto, always, never", true)
	d.vars.Register(value.NewBool(&d.AssumeYes, false), "assume_yes", "SETUP_ASSUME_YES", "Answer yes to all questions", false)

	d.vars.Register(value.NewString(&d.Log.Level, "warn"), "log.level", "SETUP_LOG_LEVEL", "Diagnostic log level: silent, error, warn, info, debug", true)
	d.vars.Register(value.NewString(&d.Log.Format, "console"), "log.format", "SETUP_LOG_FORMAT", "Diagnostic log format: console, json", true)
	d.vars.Register(value.NewString(&d.Log.File, ""), "log.file", "SETUP_LOG_FILE", "File the diagnostic log is appended to as JSON", false)

	d.vars.Register(value.NewRelativePath(&d.Env.File, ".env"), "env.file", "SETUP_ENV_FILE", "Environment file of the server", true)
	d.vars.Register(value.NewRelativePath(&d.Env.Template, ".env.example"), "env.template", "SETUP_ENV_TEMPLATE", "Template for the environment file", true)
	d.vars.Register(value.NewStringList(&d.Env.Keys, DefaultEnvKeys, ","), "env.keys", "SETUP_ENV_KEYS", "Recognized keys in the environment file", true)

	d.vars.Register(value.NewRelativePath(&d.Certs.Dir, "certs"), "certs.dir", "SETUP_CERTS_DIR", "Directory for the certificate pair", true)
	d.vars.Register(value.NewString(&d.Certs.Host, "localhost"), "certs.host", "SETUP_CERTS_HOST", "Host name the certificate is issued for", true)
	d.vars.Register(value.NewString(&d.Certs.Tool, "mkcert"), "certs.tool", "SETUP_CERTS_TOOL", "Local certificate authority tool", true)

	d.vars.Register(value.NewRelativePath(&d.Deps.Manifest, "package.json"), "deps.manifest", "SETUP_DEPS_MANIFEST", "Dependency manifest", true)
	d.vars.Register(value.NewString(&d.Deps.Runtime, "node"), "deps.runtime", "SETUP_DEPS_RUNTIME", "Runtime executable", true)
	d.vars.Register(value.NewString(&d.Deps.Install, "npm install"), "deps.install", "SETUP_DEPS_INSTALL", "Command that installs the dependencies", true)
	d.vars.Register(value.NewString(&d.Deps.Serve, "npm run serve"), "deps.serve", "SETUP_DEPS_SERVE", "Command that starts the server", false)

	d.vars.Register(value.NewGlob(&d.Output.Progress, "Progress"), "output.progress", "SETUP_OUTPUT_PROGRESS", "Pattern for progress lines of external tools", true)
}

// Set sets the value of the variable with the given name from its string
// representation.
func (d *Config) Set(name, val string) error {
	return d.vars.Set(name, val)
}

// Get returns the string representation of the variable with the given name.
func (d *Config) Get(name string) (string, error) {
	return d.vars.Get(name)
}

// Merge merges the values of the known environment variables into the configuration
func (d *Config) Merge() {
	d.vars.Merge()
}

// MergeValues merges the values of the known environment variables from the
// given map, e.g. the contents of a dotenv file, into the configuration.
func (d *Config) MergeValues(values map[string]string) {
	d.vars.MergeFrom(func(key string) (string, bool) {
		val, ok := values[key]
		return val, ok
	})
}

// Validate validates the current state of the Config for completeness and sanity. Errors are
// written to the log. Use resetLogs to indicate to reset the logs prior validation.
func (d *Config) Validate(resetLogs bool) {
	if resetLogs {
		d.vars.ResetLogs()
	}

	d.vars.Validate()

	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	if err := validate.Struct(d.Data); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			d.vars.Log("error", "", "%s", err.Error())
			return
		}

		for _, e := range errs {
			name := strings.TrimPrefix(e.Namespace(), "Data.")
			d.vars.Log("error", name, "%s", describe(e))
		}
	}
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "a value is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "min":
		return fmt.Sprintf("must have at least %s entries", e.Param())
	case "nefield":
		return fmt.Sprintf("must differ from %s", e.Param())
	case "excludesall":
		return fmt.Sprintf("must not contain any of %q", e.Param())
	case "hostname_rfc1123":
		return "must be a valid host name"
	}

	return fmt.Sprintf("failed on the '%s' rule", e.Tag())
}

// Messages calls for each log entry the provided callback. The level has the values 'error', 'warn', or 'info'.
// The name is the name of the configuration value, e.g. 'env.file'. The message is the log message.
func (d *Config) Messages(logger func(level string, v vars.Variable, message string)) {
	d.vars.Messages(logger)
}

// HasErrors returns whether there are some error messages in the log.
func (d *Config) HasErrors() bool {
	return d.vars.HasErrors()
}

// Overrides returns a list of configuration value names that have been overriden by an environment variable.
func (d *Config) Overrides() []string {
	return d.vars.Overrides()
}

// CertKeyFile is the path of the private key of the certificate pair.
func (d *Config) CertKeyFile() string {
	return path.Join(d.Certs.Dir, d.Certs.Host+"-key.pem")
}

// CertFile is the path of the certificate of the certificate pair.
func (d *Config) CertFile() string {
	return path.Join(d.Certs.Dir, d.Certs.Host+".pem")
}
