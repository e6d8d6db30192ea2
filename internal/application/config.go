package application

import (
	"github.com/ahrav/go-ballot/infrastructure/units"
)

// DefaultConfigVersion is the schema version assumed by DefaultEngineConfig.
const DefaultConfigVersion = "1.0.0"

// EngineConfig is the top-level configuration of a consensus Engine.
// It is usually loaded from YAML with LoadConfig; fields omitted from the
// document keep the values from DefaultEngineConfig.
type EngineConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning.
	Version string `yaml:"version" json:"version" validate:"required,semver"`
	// Metadata describes the engine instance for logs and metric labels.
	Metadata Metadata `yaml:"metadata" json:"metadata"`
	// Scoring configures the score aggregation stage.
	Scoring units.ScoreAggregatorConfig `yaml:"scoring" json:"scoring"`
}

// Metadata provides descriptive information about an engine instance.
type Metadata struct {
	// Name identifies the engine in logs and metric labels.
	Name string `yaml:"name" json:"name" validate:"required,min=1,max=255"`
	// Description is free-form documentation.
	Description string `yaml:"description" json:"description" validate:"max=1000"`
	// Labels are arbitrary key-value pairs attached to every log line.
	Labels map[string]string `yaml:"labels" json:"labels" validate:"max=50,dive,keys,min=1,max=63,endkeys,max=255"`
}

// DefaultEngineConfig returns a configuration sized to the host with strict
// status validation enabled.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Version:  DefaultConfigVersion,
		Metadata: Metadata{Name: "default"},
		Scoring:  units.DefaultScoreAggregatorConfig(),
	}
}
