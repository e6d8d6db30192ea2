package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

// configKey is the ConfigError key reported for engine configuration.
const configKey = "engine"

// configValidator validates EngineConfig struct tags, including the custom
// semver rule.
var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	if err := registerCustomValidators(v); err != nil {
		panic(fmt.Sprintf("application: %v", err))
	}
	return v
}

// LoadConfigFile reads an EngineConfig from a YAML file.
// A missing file is reported as ports.ErrConfigNotFound.
func LoadConfigFile(path string) (EngineConfig, error) {
	// Clean the path to prevent directory traversal attacks.
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return EngineConfig{}, ports.NewConfigError(configKey, fmt.Errorf("%w: %s", ports.ErrConfigNotFound, path))
		}
		return EngineConfig{}, ports.NewConfigError(configKey, fmt.Errorf("failed to read file: %w", err))
	}
	return parseConfig(data)
}

// LoadConfig reads an EngineConfig from YAML. Decoding is strict: unknown
// fields are rejected. Fields absent from the document keep their
// DefaultEngineConfig values. An empty document yields the defaults.
func LoadConfig(r io.Reader) (EngineConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return EngineConfig{}, ports.NewConfigError(configKey, fmt.Errorf("failed to read data: %w", err))
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (EngineConfig, error) {
	config := DefaultEngineConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return EngineConfig{}, ports.NewConfigError(configKey, fmt.Errorf("YAML decode failed: %w", err))
	}

	if err := config.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return config, nil
}

// Validate checks the configuration against its struct tag rules.
// Failures are reported as a *domain.ValidationError listing every
// offending field; the error matches domain.ErrInvalidConfiguration.
func (c EngineConfig) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	verr := domain.NewValidationError("EngineConfig")
	for _, fe := range fieldErrs {
		verr.AddError(describeFieldError(fe))
	}
	return verr
}

// describeFieldError renders a validator failure as "field: rule=param".
func describeFieldError(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag())
	}
	return fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
}

// registerCustomValidators registers domain-specific validation functions
// with the validator instance.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	var rest string
	n, _ := fmt.Sscanf(value, "%d.%d.%d%s", &major, &minor, &patch, &rest)
	return n == 3 && major >= 0 && minor >= 0 && patch >= 0
}
