package taskpool

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the serializable subset of Config: the plain tunable knobs
// that make sense to set from a file, as opposed to Initializer,
// ExecutorFactory, Logger, and Metrics, which are wiring and stay
// programmatic-only.
type FileConfig struct {
	Processes            uint   `yaml:"processes"`
	MaxTasksPerChild     uint   `yaml:"max_tasks_per_child"`
	SubmissionBufferSize uint   `yaml:"submission_buffer_size"`
	InputBufferSize      uint   `yaml:"input_buffer_size"`
	OutputBufferSize     uint   `yaml:"output_buffer_size"`
	SupervisorInterval   string `yaml:"supervisor_interval"`
	ErrorTagging         bool   `yaml:"error_tagging"`
}

// LoadConfigFile reads a YAML file and returns a Config with its plain knobs
// set from the file, starting from defaultConfig() for anything the file
// doesn't mention. Initializer, ExecutorFactory, Logger, and Metrics are left
// at their defaults; set them on the returned Config, or via WithInitializer
// et al. if building through NewOptions instead.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: read config file: %w", Namespace, err)
	}
	return ParseConfigBytes(data)
}

// ParseConfigBytes parses YAML-encoded FileConfig data and merges it onto
// defaultConfig(). A field absent from data keeps its default value.
func ParseConfigBytes(data []byte) (*Config, error) {
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%s: parse config: %w", Namespace, err)
	}

	cfg := defaultConfig()
	if fc.Processes != 0 {
		cfg.Processes = fc.Processes
	}
	if fc.MaxTasksPerChild != 0 {
		cfg.MaxTasksPerChild = fc.MaxTasksPerChild
	}
	if fc.SubmissionBufferSize != 0 {
		cfg.SubmissionBufferSize = fc.SubmissionBufferSize
	}
	if fc.InputBufferSize != 0 {
		cfg.InputBufferSize = fc.InputBufferSize
	}
	if fc.OutputBufferSize != 0 {
		cfg.OutputBufferSize = fc.OutputBufferSize
	}
	if fc.SupervisorInterval != "" {
		d, err := time.ParseDuration(fc.SupervisorInterval)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid supervisor_interval %q: %w", Namespace, fc.SupervisorInterval, err)
		}
		cfg.SupervisorInterval = d
	}
	cfg.ErrorTagging = fc.ErrorTagging

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
