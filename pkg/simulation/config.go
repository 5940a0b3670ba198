package simulation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/behavior"
)

//go:embed config.schema.json
var configSchema string

type Config struct {
	// Population
	Population   int     `json:"population" yaml:"population"`
	InitialSpeed float64 `json:"initialSpeed" yaml:"initialSpeed"`
	Seed         int64   `json:"seed" yaml:"seed"` // 0 picks a time based seed

	// Rendering
	Layout       string `json:"layout" yaml:"layout"` // matrix or transform
	WindowWidth  int    `json:"windowWidth" yaml:"windowWidth"`
	WindowHeight int    `json:"windowHeight" yaml:"windowHeight"`

	// Headless runs
	FrameStepMs    float64 `json:"frameStepMs" yaml:"frameStepMs"`
	TelemetryEvery int     `json:"telemetryEvery" yaml:"telemetryEvery"`

	Settings behavior.Settings `json:"settings" yaml:"settings"`
}

func DefaultConfig() *Config {
	return &Config{
		Population:     200,
		InitialSpeed:   behavior.InitialSpeed,
		Layout:         "matrix",
		WindowWidth:    800,
		WindowHeight:   800,
		FrameStepMs:    1000.0 / 60,
		TelemetryEvery: 60,
		Settings:       behavior.DefaultSettings(),
	}
}

func compileSchema() (*jsonschema.Schema, error) {
	sch, err := jsonschema.CompileString("config.schema.json", configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
}

// LoadConfig reads a JSON, YAML or TOML file, validates it against the
// embedded schema and decodes it over DefaultConfig, so missing keys keep
// their default value.
func LoadConfig(configFile string) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(b, filepath.Ext(configFile))
}

// ParseConfig is LoadConfig for in-memory content; format is a file
// extension such as ".yaml".
func ParseConfig(b []byte, format string) (*Config, error) {
	doc, err := toJSON(b, format)
	if err != nil {
		return nil, err
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(doc, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// toJSON normalises every supported format to one JSON document.
func toJSON(b []byte, format string) ([]byte, error) {
	var v interface{}
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		return b, nil
	case "yaml", "yml":
		if err := yaml.Unmarshal(b, &v); err != nil {
			return nil, fmt.Errorf("failed to decode config yaml: %w", err)
		}
	case "toml":
		m := map[string]interface{}{}
		if err := toml.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("failed to decode config toml: %w", err)
		}
		v = m
	default:
		return nil, fmt.Errorf("unsupported config format %q (want json, yaml or toml)", format)
	}
	if v == nil {
		// empty document
		return []byte("{}"), nil
	}
	doc, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to normalise config: %w", err)
	}
	return doc, nil
}

func validate(doc []byte) error {
	sch, err := compileSchema()
	if err != nil {
		return err
	}
	var v interface{}
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Validate checks c against the same schema as LoadConfig. Hosts call it
// after applying command line overrides.
func (c *Config) Validate() error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return validate(doc)
}

// WriteYAML saves c, so a headless run keeps the configuration that produced it.
func (c *Config) WriteYAML(path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
