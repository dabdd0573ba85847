package config

import (
	"errors"
	"fmt"
)

var knownModelSizes = map[string]struct{}{
	"tiny":           {},
	"tiny.en":        {},
	"base":           {},
	"base.en":        {},
	"small":          {},
	"small.en":       {},
	"medium":         {},
	"medium.en":      {},
	"large-v1":       {},
	"large-v2":       {},
	"large-v3":       {},
	"large-v3-turbo": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWhisper(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWhisper() error {
	if _, ok := knownModelSizes[c.Whisper.ModelSize]; !ok {
		return fmt.Errorf("whisper.model_size: unknown model %q", c.Whisper.ModelSize)
	}
	// The pipeline fixes a single compute mode for portability; CUDA support
	// would need a different compute type matrix than this config models.
	if c.Whisper.Device != "cpu" {
		return fmt.Errorf("whisper.device: only %q is supported, got %q", "cpu", c.Whisper.Device)
	}
	switch c.Whisper.ComputeType {
	case "float32", "int8":
	default:
		return fmt.Errorf("whisper.compute_type: unsupported value %q", c.Whisper.ComputeType)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("logging.level: must be one of debug, info, warn, error")
	}
	return nil
}
