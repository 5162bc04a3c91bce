// Package vars keeps a registry of configuration values together with their
// environment variable names and collects the messages produced while merging
// and validating them.
package vars

import (
	"fmt"
	"os"

	"github.com/cloudworx/setup/config/value"
)

type variable struct {
	value       value.Value // The actual value
	name        string      // A name for this value
	envName     string      // The environment variable that corresponds to this value
	description string      // A desriptions for this value
	required    bool        // Whether a non-empty value is required
	merged      bool        // Whether this value has been replaced by its corresponding environment variable
}

type Variable struct {
	Value       string
	Name        string
	EnvName     string
	Description string
	Merged      bool
}

type message struct {
	message  string   // The log message
	variable Variable // The config field this message refers to
	level    string   // The loglevel for this message
}

type Variables struct {
	vars []*variable
	logs []message
}

func (vs *Variables) Register(val value.Value, name, envName, description string, required bool) {
	vs.vars = append(vs.vars, &variable{
		value:       val,
		name:        name,
		envName:     envName,
		description: description,
		required:    required,
	})
}

func (vs *Variables) Get(name string) (string, error) {
	v := vs.findVariable(name)
	if v == nil {
		return "", fmt.Errorf("variable not found")
	}

	return v.value.String(), nil
}

func (vs *Variables) Set(name, val string) error {
	v := vs.findVariable(name)
	if v == nil {
		return fmt.Errorf("variable not found")
	}

	return v.value.Set(val)
}

// Log adds a message for the variable with the given name. Messages for
// unknown variables are kept without a variable reference.
func (vs *Variables) Log(level, name string, format string, args ...interface{}) {
	variable := Variable{
		Name: name,
	}

	if v := vs.findVariable(name); v != nil {
		variable = Variable{
			Value:       v.value.String(),
			Name:        v.name,
			EnvName:     v.envName,
			Description: v.description,
			Merged:      v.merged,
		}
	}

	vs.logs = append(vs.logs, message{
		message:  fmt.Sprintf(format, args...),
		variable: variable,
		level:    level,
	})
}

// Merge overrides the values with the contents of their environment
// variables, if set.
func (vs *Variables) Merge() {
	vs.MergeFrom(os.LookupEnv)
}

// MergeFrom overrides the values with the values lookup returns for their
// environment variable names.
func (vs *Variables) MergeFrom(lookup func(key string) (string, bool)) {
	for _, v := range vs.vars {
		if len(v.envName) == 0 {
			continue
		}

		envval, ok := lookup(v.envName)
		if !ok {
			continue
		}

		err := v.value.Set(envval)
		if err != nil {
			vs.Log("error", v.name, "%s", err.Error())
		}

		v.merged = true
	}
}

func (vs *Variables) Validate() {
	for _, v := range vs.vars {
		err := v.value.Validate()
		if err != nil {
			vs.Log("error", v.name, "%s", err.Error())
		}

		if v.required && v.value.IsEmpty() {
			vs.Log("error", v.name, "a value is required")
		}
	}
}

func (vs *Variables) ResetLogs() {
	vs.logs = nil
}

func (vs *Variables) Messages(logger func(level string, v Variable, message string)) {
	for _, l := range vs.logs {
		logger(l.level, l.variable, l.message)
	}
}

func (vs *Variables) HasErrors() bool {
	for _, l := range vs.logs {
		if l.level == "error" {
			return true
		}
	}

	return false
}

func (vs *Variables) Overrides() []string {
	overrides := []string{}

	for _, v := range vs.vars {
		if v.merged {
			overrides = append(overrides, v.name)
		}
	}

	return overrides
}

func (vs *Variables) findVariable(name string) *variable {
	for _, v := range vs.vars {
		if v.name == name {
			return v
		}
	}

	return nil
}
