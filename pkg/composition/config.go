package composition

import (
	"fmt"
	"os"

	"github.com/travigo/railenrich/pkg/geocoding"
	"github.com/travigo/railenrich/pkg/legs"
	"github.com/travigo/railenrich/pkg/output"
	"gopkg.in/yaml.v3"
)

type TableConfig struct {
	Name   string `yaml:"name"`
	Format string `yaml:"format"`
}

// Config is the pipeline configuration as read from a YAML file and CLI flags
type Config struct {
	Inputs          []string `yaml:"inputs"`
	OutputDirectory string   `yaml:"output_directory"`

	Stations TableConfig `yaml:"stations"`
	Weather  TableConfig `yaml:"weather"`
	Routes   TableConfig `yaml:"routes"`

	Geocoder string `yaml:"geocoder"`
	Grouping string `yaml:"grouping"`
	Filter   string `yaml:"filter"`

	MaxBatchSize      int     `yaml:"max_batch_size"`
	Workers           int     `yaml:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	RecordRun bool `yaml:"record_run"`
	Index     bool `yaml:"index"`
}

// Options are the validated, closed forms of the string settings in Config
type Options struct {
	StationsFormat output.Format
	WeatherFormat  output.Format
	RoutesFormat   output.Format

	Backend  geocoding.Backend
	Grouping legs.GroupingMode
}

func DefaultConfig() Config {
	return Config{
		OutputDirectory: "data",
		Stations:        TableConfig{Name: "stations", Format: string(output.FormatCSV)},
		Weather:         TableConfig{Name: "weather", Format: string(output.FormatCSV)},
		Routes:          TableConfig{Name: "routes", Format: string(output.FormatCSV)},
		Geocoder:        string(geocoding.BackendGoogle),
		Grouping:        string(legs.GroupingModeSequence),
		Workers:         1,
	}
}

// LoadConfig reads a YAML file on top of the defaults
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	file, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("decode %s: %w", path, err)
	}

	return config, nil
}

func (c Config) Validate() (Options, error) {
	var options Options
	var err error

	if options.StationsFormat, err = output.ParseFormat(c.Stations.Format); err != nil {
		return options, fmt.Errorf("stations: %w", err)
	}
	if options.WeatherFormat, err = output.ParseFormat(c.Weather.Format); err != nil {
		return options, fmt.Errorf("weather: %w", err)
	}
	if options.RoutesFormat, err = output.ParseFormat(c.Routes.Format); err != nil {
		return options, fmt.Errorf("routes: %w", err)
	}

	// Routes rows carry start/dest coordinates, not a single lat/lon pair
	if options.RoutesFormat.Spatial() {
		return options, fmt.Errorf("routes: %w", output.ErrMissingGeometryColumns)
	}

	if options.Backend, err = geocoding.ParseBackend(c.Geocoder); err != nil {
		return options, err
	}
	if options.Grouping, err = legs.ParseGroupingMode(c.Grouping); err != nil {
		return options, err
	}

	if c.Stations.Name == "" || c.Weather.Name == "" || c.Routes.Name == "" {
		return options, fmt.Errorf("every table needs a name")
	}
	if c.MaxBatchSize < 0 {
		return options, fmt.Errorf("max batch size cannot be negative, got %d", c.MaxBatchSize)
	}

	return options, nil
}
