package application

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-tally/internal/ports"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, 0, cfg.Scoring.MinScore)
	assert.Equal(t, 10, cfg.Scoring.MaxScore)
	assert.Equal(t, 4, cfg.Scoring.Concurrency)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.False(t, cfg.Metrics.Enabled)
	require.Len(t, cfg.Pipeline, 2)
	assert.Equal(t, "weight_share", cfg.Pipeline[0].Type)
	assert.Equal(t, "normalized_score", cfg.Pipeline[1].Type)
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		errKey  string
		verify  func(t *testing.T, cfg Config)
	}{
		{
			name: "empty document yields defaults",
			yaml: "",
			verify: func(t *testing.T, cfg Config) {
				assert.Equal(t, DefaultConfig(), cfg)
			},
		},
		{
			name: "partial override keeps other defaults",
			yaml: `
scoring:
  max_score: 5
output:
  format: json
`,
			verify: func(t *testing.T, cfg Config) {
				assert.Equal(t, 5, cfg.Scoring.MaxScore)
				assert.Equal(t, 0, cfg.Scoring.MinScore)
				assert.Equal(t, 4, cfg.Scoring.Concurrency)
				assert.Equal(t, "json", cfg.Output.Format)
				assert.Equal(t, "info", cfg.Logging.Level)
			},
		},
		{
			name: "full config with unit parameters",
			yaml: `
version: "2.1.0"
logging:
  level: debug
  environment: development
  service_name: tally-cli
scoring:
  min_score: 1
  max_score: 5
  concurrency: 8
output:
  format: csv
metrics:
  enabled: true
  namespace: decisions
pipeline:
  - id: scores
    type: normalized_score
    parameters:
      match_decision: true
`,
			verify: func(t *testing.T, cfg Config) {
				assert.Equal(t, "2.1.0", cfg.Version)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 8, cfg.Scoring.Concurrency)
				assert.True(t, cfg.Metrics.Enabled)
				assert.Equal(t, "decisions", cfg.Metrics.Namespace)
				require.Len(t, cfg.Pipeline, 1)
				assert.Equal(t, true, cfg.Pipeline[0].Parameters["match_decision"])
			},
		},
		{
			name:    "unknown field",
			yaml:    "scoring:\n  maximum: 5\n",
			wantErr: true,
			errKey:  "yaml",
		},
		{
			name:    "malformed yaml",
			yaml:    "scoring: [",
			wantErr: true,
			errKey:  "yaml",
		},
		{
			name:    "invalid semver",
			yaml:    `version: "1.0"`,
			wantErr: true,
			errKey:  "Config.Version",
		},
		{
			name:    "max below min",
			yaml:    "scoring:\n  min_score: 5\n  max_score: 1\n",
			wantErr: true,
			errKey:  "Config.Scoring.MaxScore",
		},
		{
			name:    "zero concurrency",
			yaml:    "scoring:\n  concurrency: 0\n",
			wantErr: true,
			errKey:  "Config.Scoring.Concurrency",
		},
		{
			name:    "unsupported output format",
			yaml:    "output:\n  format: xml\n",
			wantErr: true,
			errKey:  "Config.Output.Format",
		},
		{
			name:    "invalid metric namespace",
			yaml:    "metrics:\n  namespace: 'bad-name'\n",
			wantErr: true,
			errKey:  "Config.Metrics.Namespace",
		},
		{
			name:    "empty pipeline",
			yaml:    "pipeline: []\n",
			wantErr: true,
			errKey:  "Config.Pipeline",
		},
		{
			name: "unknown unit type",
			yaml: `
pipeline:
  - id: rank
    type: borda_count
`,
			wantErr: true,
			errKey:  "Config.Pipeline[0].Type",
		},
		{
			name: "duplicate unit IDs",
			yaml: `
pipeline:
  - {id: scores, type: normalized_score}
  - {id: scores, type: weight_share}
`,
			wantErr: true,
			errKey:  "pipeline[1].id",
		},
		{
			name: "unknown unit parameter",
			yaml: `
pipeline:
  - id: scores
    type: normalized_score
    parameters:
      threshold: 3
`,
			wantErr: true,
			errKey:  "pipeline[0].parameters",
		},
		{
			name: "weight share takes no parameters",
			yaml: `
pipeline:
  - id: shares
    type: weight_share
    parameters:
      precision: 2
`,
			wantErr: true,
			errKey:  "pipeline[0].parameters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.yaml))
			if tt.wantErr {
				require.Error(t, err)
				var cfgErr *ports.ConfigError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, tt.errKey, cfgErr.ConfigKey)
				return
			}
			require.NoError(t, err)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(dir, "tally.yaml")
		require.NoError(t, os.WriteFile(path, []byte("output:\n  format: csv\n"), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "csv", cfg.Output.Format)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "absent.yaml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ports.ErrConfigNotFound))
	})

	t.Run("invalid content", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("scoring:\n  concurrency: -1\n"), 0o600))

		_, err := LoadConfig(path)
		assert.ErrorIs(t, err, ports.ErrInvalidConfig)
	})
}

func TestValidateUnitParameters(t *testing.T) {
	tests := []struct {
		name     string
		unitType string
		params   map[string]any
		wantErr  bool
	}{
		{name: "normalized score without params", unitType: "normalized_score"},
		{name: "normalized score match decision", unitType: "normalized_score", params: map[string]any{"match_decision": false}},
		{name: "normalized score wrong type", unitType: "normalized_score", params: map[string]any{"match_decision": "yes"}, wantErr: true},
		{name: "weight share without params", unitType: "weight_share"},
		{name: "weight share with params", unitType: "weight_share", params: map[string]any{"x": 1}, wantErr: true},
		{name: "unknown type", unitType: "max_pool", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUnitParameters(tt.unitType, tt.params)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
