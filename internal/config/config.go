// Package config loads the optional resolvetree configuration file.
//
// Precedence is defaults, then the file, then command-line flags; the CLI
// applies flags on top of the Config returned here.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/roach88/resolvetree/internal/compiler"
)

// Config is the file configuration.
type Config struct {
	// Schema is the default schema path (CUE directory, .cue or .yaml file).
	Schema string `yaml:"schema"`

	// Database is the schema snapshot store path.
	Database string `yaml:"database"`

	// Format is the CLI output format.
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`

	// LogLevel is the process log level.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// LogFormat is the process log format.
	LogFormat string `yaml:"log_format" validate:"omitempty,oneof=json console"`

	// Limits are the compile limits. Zero values are unlimited.
	Limits compiler.Limits `yaml:"limits"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Format:    "text",
		LogLevel:  "warn",
		LogFormat: "console",
	}
}

// Load reads the file at path over Default and validates the result.
// Unknown keys are errors.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration over Default and validates it.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field values.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s=%s, got %v", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
