package composition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/railenrich/pkg/geocoding"
	"github.com/travigo/railenrich/pkg/legs"
	"github.com/travigo/railenrich/pkg/output"
)

func TestDefaultConfigValidates(t *testing.T) {
	options, err := DefaultConfig().Validate()
	require.NoError(t, err)

	assert.Equal(t, output.FormatCSV, options.StationsFormat)
	assert.Equal(t, output.FormatCSV, options.RoutesFormat)
	assert.Equal(t, geocoding.BackendGoogle, options.Backend)
	assert.Equal(t, legs.GroupingModeSequence, options.Grouping)
}

func TestValidateRejectsBadSettings(t *testing.T) {
	config := DefaultConfig()
	config.Weather.Format = "xlsx"
	_, err := config.Validate()
	assert.ErrorIs(t, err, output.ErrUnsupportedFormat)

	config = DefaultConfig()
	config.Routes.Format = string(output.FormatShpCSV)
	_, err = config.Validate()
	assert.ErrorIs(t, err, output.ErrMissingGeometryColumns)

	config = DefaultConfig()
	config.Geocoder = "osm"
	_, err = config.Validate()
	assert.ErrorIs(t, err, geocoding.ErrUnsupportedBackend)

	config = DefaultConfig()
	config.Grouping = "by-colour"
	_, err = config.Validate()
	assert.Error(t, err)

	config = DefaultConfig()
	config.MaxBatchSize = -1
	_, err = config.Validate()
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	err := os.WriteFile(path, []byte(`
inputs:
  - data/2023.csv
  - data/2024.csv
output_directory: out
stations:
  name: stacje
  format: shp_parquet
grouping: station-count
max_batch_size: 10
workers: 4
requests_per_second: 5
record_run: true
`), 0o644)
	require.NoError(t, err)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"data/2023.csv", "data/2024.csv"}, config.Inputs)
	assert.Equal(t, "out", config.OutputDirectory)
	assert.Equal(t, "stacje", config.Stations.Name)
	assert.Equal(t, "weather", config.Weather.Name)
	assert.Equal(t, 10, config.MaxBatchSize)
	assert.Equal(t, 4, config.Workers)
	assert.Equal(t, 5.0, config.RequestsPerSecond)
	assert.True(t, config.RecordRun)
	assert.False(t, config.Index)

	options, err := config.Validate()
	require.NoError(t, err)
	assert.Equal(t, output.FormatShpParquet, options.StationsFormat)
	assert.Equal(t, legs.GroupingModeStationCount, options.Grouping)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
