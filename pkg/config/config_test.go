package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "https://lichess.org/paste", cfg.DestinationURL)
	assert.Equal(t, "/paste*", cfg.DestinationPathPattern)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.ExportIntercept.Std())
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesOnTopOfDefaults(t *testing.T) {
	path := writeConfig(t, `
source_url: https://www.chess.com/game/live/42
headless: true
timeouts:
  export_intercept: 10s
  submit_delay: 250ms
selectors:
  board:
    - "#custom-board"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://www.chess.com/game/live/42", cfg.SourceURL)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.ExportIntercept.Std())
	assert.Equal(t, 250*time.Millisecond, cfg.Timeouts.SubmitDelay.Std())
	assert.Equal(t, []string{"#custom-board"}, cfg.Selectors.Board)

	// Untouched fields keep their defaults.
	assert.Equal(t, "https://lichess.org/paste", cfg.DestinationURL)
	assert.Equal(t, 20*time.Second, cfg.Timeouts.BoardWait.Std())
	assert.Equal(t, DefaultSelectors().PasteInput, cfg.Selectors.PasteInput)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := writeConfig(t, "timeouts: [not, a, map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, `destination_url: ""`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destination_url")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults pass",
			mutate: func(*Config) {},
		},
		{
			name:    "missing destination url",
			mutate:  func(c *Config) { c.DestinationURL = "" },
			wantErr: "destination_url",
		},
		{
			name:    "missing path pattern",
			mutate:  func(c *Config) { c.DestinationPathPattern = "" },
			wantErr: "destination_path_pattern",
		},
		{
			name:    "empty selector list",
			mutate:  func(c *Config) { c.Selectors.PasteInput = nil },
			wantErr: "selectors.paste_input",
		},
		{
			name:    "missing trigger id",
			mutate:  func(c *Config) { c.Selectors.TriggerID = "" },
			wantErr: "selectors.trigger_id",
		},
		{
			name:    "missing toast id",
			mutate:  func(c *Config) { c.Selectors.ToastID = "" },
			wantErr: "selectors.toast_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDurationUnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "seconds", input: `"5s"`, want: 5 * time.Second},
		{name: "milliseconds", input: `"300ms"`, want: 300 * time.Millisecond},
		{name: "compound", input: `"1m30s"`, want: 90 * time.Second},
		{name: "bare number", input: `5`, wantErr: true},
		{name: "garbage", input: `"soon"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := yaml.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Std())
		})
	}
}

func TestDurationRoundTrip(t *testing.T) {
	orig := Duration(90 * time.Second)
	data, err := yaml.Marshal(orig)
	require.NoError(t, err)
	assert.Equal(t, "1m30s\n", string(data))

	var got Duration
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, orig, got)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
