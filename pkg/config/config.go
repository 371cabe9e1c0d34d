// Package config holds the pgnbridge run configuration: the two site URLs,
// the selector profiles for each page, and the timing windows of the
// transfer protocol. Built-in defaults cover the supported sites; a YAML
// file can override any field when the host pages change.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Timeouts are the timing windows of the transfer protocol.
type Timeouts struct {
	// BoardWait bounds the wait for the source page's board region.
	BoardWait Duration `yaml:"board_wait"`

	// ExportControlWait bounds the wait for the source page's native
	// export control.
	ExportControlWait Duration `yaml:"export_control_wait"`

	// ExportIntercept bounds the wait for the intercepted export artifact
	// after the native export control is activated.
	ExportIntercept Duration `yaml:"export_intercept"`

	// InputWait bounds the wait for the destination paste input.
	InputWait Duration `yaml:"input_wait"`

	// SubmitDelay is the pause between filling the paste input and
	// submitting the form, giving the host page's own reactivity time to
	// settle.
	SubmitDelay Duration `yaml:"submit_delay"`

	// SuccessReset and ErrorReset are how long the trigger control shows
	// its terminal state before returning to ready.
	SuccessReset Duration `yaml:"success_reset"`
	ErrorReset   Duration `yaml:"error_reset"`

	// ActivationDebounce suppresses repeated trigger activations.
	ActivationDebounce Duration `yaml:"activation_debounce"`
}

// Config is the full run configuration.
type Config struct {
	SourceURL              string    `yaml:"source_url"`
	DestinationURL         string    `yaml:"destination_url"`
	DestinationPathPattern string    `yaml:"destination_path_pattern"`
	ExpectedVariant        string    `yaml:"expected_variant"`
	Headless               bool      `yaml:"headless"`
	Timeouts               Timeouts  `yaml:"timeouts"`
	Selectors              Selectors `yaml:"selectors"`
}

// Default returns the built-in configuration for the supported sites.
func Default() Config {
	return Config{
		DestinationURL:         "https://lichess.org/paste",
		DestinationPathPattern: "/paste*",
		ExpectedVariant:        "Standard",
		Headless:               false,
		Timeouts: Timeouts{
			BoardWait:          Duration(20 * time.Second),
			ExportControlWait:  Duration(3 * time.Second),
			ExportIntercept:    Duration(5 * time.Second),
			InputWait:          Duration(20 * time.Second),
			SubmitDelay:        Duration(500 * time.Millisecond),
			SuccessReset:       Duration(2 * time.Second),
			ErrorReset:         Duration(3 * time.Second),
			ActivationDebounce: Duration(300 * time.Millisecond),
		},
		Selectors: DefaultSelectors(),
	}
}

// Load reads a YAML override file on top of the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.DestinationURL == "" {
		return fmt.Errorf("destination_url is required")
	}
	if c.DestinationPathPattern == "" {
		return fmt.Errorf("destination_path_pattern is required")
	}
	if err := c.Selectors.Validate(); err != nil {
		return err
	}
	return nil
}
