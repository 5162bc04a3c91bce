// Package store loads the configuration of the setup tool from a YAML file.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/cloudworx/setup/config"

	"gopkg.in/yaml.v3"
)

// Store is a store for the configuration data.
type Store interface {
	// Get returns a configuration with the default values overlayed by the
	// contents of the file.
	Get() *config.Config

	// Path returns the path of the file, empty if no file is used.
	Path() string

	// Reload reads the file again.
	Reload() error
}

type yamlStore struct {
	path string
	data *config.Config
}

// NewYAML reads the YAML config file from the given path. A missing file or
// an empty path is not an error, the defaults will be used instead.
func NewYAML(path string) (Store, error) {
	s := &yamlStore{
		path: path,
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *yamlStore) Get() *config.Config {
	return s.data
}

func (s *yamlStore) Path() string {
	return s.path
}

func (s *yamlStore) Reload() error {
	cfg := config.New()

	if err := s.load(cfg); err != nil {
		return fmt.Errorf("failed to read YAML from '%s': %w", s.path, err)
	}

	s.data = cfg

	return nil
}

func (s *yamlStore) load(cfg *config.Config) error {
	if len(s.path) == 0 {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}

	if len(data) == 0 {
		return nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg.Data); err != nil {
		return err
	}

	return nil
}
