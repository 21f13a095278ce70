package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cpcf/weftgen/engine"
	"github.com/cpcf/weftgen/lang"
	"github.com/cpcf/weftgen/model"
)

// RunConfig describes one generation run.
type RunConfig struct {
	Language    lang.Language `yaml:"language"`
	Output      string        `yaml:"output"`
	Templates   string        `yaml:"templates,omitempty"`
	Workers     int           `yaml:"workers,omitempty"`
	FailureMode string        `yaml:"failure_mode,omitempty"`
	Header      bool          `yaml:"header,omitempty"`
	KeepPartial bool          `yaml:"keep_partial,omitempty"`
	Manifest    bool          `yaml:"manifest,omitempty"`
}

func (c *RunConfig) Validate() error {
	var errs []error
	if !c.Language.Valid() {
		errs = append(errs, fmt.Errorf("language is required (one of: %s)", strings.Join(lang.Names(), ", ")))
	}
	if strings.TrimSpace(c.Output) == "" {
		errs = append(errs, errors.New("output is required"))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if _, err := c.Mode(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LoadRunConfig reads the run configuration at path, applies overrides in
// order, and validates the result.
func LoadRunConfig(path string, overrides ...func(*RunConfig) error) (*RunConfig, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var cfg RunConfig
	if err := strictDecode(data, &cfg); err != nil {
		return nil, err
	}
	for _, override := range overrides {
		if err := override(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Mode returns the configured failure mode, FailFast when unset.
func (c *RunConfig) Mode() (engine.FailureMode, error) {
	if c.FailureMode == "" {
		return engine.FailFast, nil
	}
	return engine.ParseFailureMode(c.FailureMode)
}

// MappingContext returns the per-run context handed to the emitter.
func (c *RunConfig) MappingContext() model.MappingContext {
	return model.NewMappingContext(c.Language)
}

// ModelsFile lists the entities of one run, each already mapped upstream.
type ModelsFile struct {
	Models []ModelEntry `yaml:"models"`
}

type ModelEntry struct {
	Template string         `yaml:"template"`
	Data     map[string]any `yaml:"data"`
}

func (f *ModelsFile) Validate() error {
	var errs []error
	for i, m := range f.Models {
		if strings.TrimSpace(m.Template) == "" {
			errs = append(errs, fmt.Errorf("models[%d]: template is required", i))
		}
		if model.DataModel(m.Data).ClassName() == "" {
			errs = append(errs, fmt.Errorf("models[%d]: data.%s is required", i, model.FieldClassName))
		}
	}
	return errors.Join(errs...)
}

// Jobs converts the file into engine jobs in file order.
func (f *ModelsFile) Jobs() []engine.Job {
	jobs := make([]engine.Job, len(f.Models))
	for i, m := range f.Models {
		jobs[i] = engine.Job{TemplateName: m.Template, Data: model.DataModel(m.Data)}
	}
	return jobs
}
