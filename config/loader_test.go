package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := Load(afero.NewMemMapFs(), "")
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Engine.MaxConcurrentOperations)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := Load(afero.NewMemMapFs(), "/etc/uploadguard.json")
		assert.Error(t, err)
	})

	t.Run("partial file layers over defaults", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/cfg.json", []byte(`{
			"engine": {
				"max_concurrent_operations": 5,
				"max_queue_size": 20,
				"max_file_size": 104857600,
				"operation_timeout": 30000000000,
				"cleanup_interval": 300000000000,
				"retention_window": 1800000000000,
				"max_consecutive_failures": 3,
				"fault_log_size": 100
			},
			"server": {"listen_addr": "127.0.0.1:9000"}
		}`), 0o644))

		cfg, err := Load(fs, "/cfg.json")
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.Engine.MaxConcurrentOperations)
		assert.Equal(t, "127.0.0.1:9000", cfg.Server.ListenAddr)
		// Untouched sections keep defaults
		assert.Equal(t, 0.6, cfg.Analysis.RiskThreshold)
		assert.Equal(t, "127.0.0.1:9745", cfg.Server.MetricsAddr)
	})

	t.Run("malformed json errors", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/bad.json", []byte(`{engine`), 0o644))
		_, err := Load(fs, "/bad.json")
		assert.Error(t, err)
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/invalid.json",
			[]byte(`{"engine": {"max_concurrent_operations": -1}}`), 0o644))
		_, err := Load(fs, "/invalid.json")
		assert.Error(t, err)
	})
}
