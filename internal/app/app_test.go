package app

import (
	"path/filepath"
	"testing"
	"time"

	"traffic-rollup/internal/models"
	"traffic-rollup/internal/shared/configs"
	"traffic-rollup/internal/shared/filestorages"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(rootDir string) *configs.Config {
	return &configs.Config{
		Server: configs.ServerConfig{
			Port:              18080,
			ReadHeaderTimeout: 5,
			ReadTimeout:       30,
			WriteTimeout:      30,
			IdleTimeout:       60,
		},
		Log:         configs.LogConfig{Level: "error"},
		FileStorage: configs.FileStorageConfig{RootDir: rootDir},
		Aggregation: configs.AggregationConfig{
			Resolutions:           []string{"hour", "minute"},
			Shards:                2,
			QueueBuffer:           64,
			SlowThresholdSeconds:  3,
			QuantileCompression:   100,
			HLLPrecision:          14,
			ReservoirCapacity:     100,
			MaxRequestSpanSeconds: 3600,
			MaxUserAgentFamilies:  16,
			MaxLineBytes:          4096,
		},
		Anomaly: configs.AnomalyConfig{SigmaMultiplier: 2, MinBaselineWindows: 3, BaselineWindows: 20},
		Export:  configs.ExportConfig{Sink: "file"},
	}
}

func TestPipelineConfig(t *testing.T) {
	t.Parallel()

	config := testConfig(t.TempDir())
	pipelineConfig, err := PipelineConfig(config)
	require.NoError(t, err)

	assert.Equal(t, []models.Resolution{models.ResolutionHour, models.ResolutionMinute}, pipelineConfig.Resolutions)
	assert.Equal(t, 2, pipelineConfig.Shards)
	assert.Equal(t, time.Hour, pipelineConfig.MaxRequestSpan)
	assert.Equal(t, 20, pipelineConfig.BaselineWindows)
	assert.Equal(t, 14, pipelineConfig.Accumulator.HLLPrecision)

	config.Aggregation.Shards = 0
	pipelineConfig, err = PipelineConfig(config)
	require.NoError(t, err)
	assert.Positive(t, pipelineConfig.Shards)

	config.Aggregation.Resolutions = []string{"week"}
	_, err = PipelineConfig(config)
	assert.Error(t, err)
}

func TestNew_LocksStorageRoot(t *testing.T) {
	t.Parallel()

	rootDir := t.TempDir()
	first, err := New(testConfig(rootDir))
	require.NoError(t, err)

	_, err = New(testConfig(rootDir))
	require.Error(t, err)
	assert.ErrorIs(t, err, filestorages.ErrRootLocked)

	require.NoError(t, first.Close())

	second, err := New(testConfig(rootDir))
	require.NoError(t, err)
	assert.NotNil(t, second.IngestionService())
	require.NoError(t, second.Close())
}

func TestNew_SQLiteSink(t *testing.T) {
	t.Parallel()

	rootDir := t.TempDir()
	config := testConfig(rootDir)
	config.Export = configs.ExportConfig{Sink: "sqlite", SQLitePath: filepath.Join(rootDir, "runs.db")}

	app, err := New(config)
	require.NoError(t, err)
	assert.NotNil(t, app.sqliteStore)
	assert.FileExists(t, filepath.Join(rootDir, "runs.db"))
	require.NoError(t, app.Close())
	assert.Nil(t, app.sqliteStore)
}
