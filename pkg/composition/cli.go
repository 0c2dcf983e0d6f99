package composition

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railenrich/pkg/ctdf"
	"github.com/travigo/railenrich/pkg/database"
	"github.com/travigo/railenrich/pkg/elastic_client"
	"github.com/travigo/railenrich/pkg/geocoding"
	"github.com/travigo/railenrich/pkg/legs"
	"github.com/travigo/railenrich/pkg/output"
	"github.com/travigo/railenrich/pkg/rawdata"
	"github.com/travigo/railenrich/pkg/redis_client"
	"github.com/travigo/railenrich/pkg/routes"
	"github.com/travigo/railenrich/pkg/util"
	"github.com/travigo/railenrich/pkg/weather"
	"github.com/urfave/cli/v2"
)

var errNoInputs = errors.New("no input files given")
var errIndexNotConfigured = errors.New("indexing requested but TRAVIGO_ELASTICSEARCH_ADDRESS is not set")

const indexFlushTimeout = time.Minute

func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML pipeline configuration",
		},
		&cli.StringSliceFlag{
			Name:  "input",
			Usage: "CSV file of delay records, can be repeated",
		},
		&cli.StringFlag{
			Name:  "output-dir",
			Usage: "Directory the tables are written to",
		},
		&cli.StringFlag{
			Name:  "stations-format",
			Usage: "Format of the stations table (csv, parquet, shp, shp_csv, shp_parquet)",
		},
		&cli.StringFlag{
			Name:  "weather-format",
			Usage: "Format of the weather table (csv, parquet, shp, shp_csv, shp_parquet)",
		},
		&cli.StringFlag{
			Name:  "routes-format",
			Usage: "Format of the routes table (csv, parquet)",
		},
		&cli.StringFlag{
			Name:  "geocoder",
			Usage: "Geocoding backend",
		},
		&cli.StringFlag{
			Name:  "grouping",
			Usage: "Journey grouping mode (sequence, station-count)",
		},
		&cli.StringFlag{
			Name:  "filter",
			Usage: "Expression selecting the records to enrich, eg. 'Relation == \"R1\"'",
		},
		&cli.IntFlag{
			Name:  "max-batch-size",
			Usage: "Maximum stations, weather pairs and journey groups per phase, 0 for no limit",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Concurrent geocoding and weather requests",
		},
		&cli.Float64Flag{
			Name:  "requests-per-second",
			Usage: "Per API request limit, 0 for no limit",
		},
		&cli.BoolFlag{
			Name:  "record-run",
			Usage: "Store the run progress in MongoDB",
		},
		&cli.BoolFlag{
			Name:  "index",
			Usage: "Index every table into Elasticsearch",
		},
	}
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "enrich",
		Usage: "Enrich train delay records with stations, weather and routes",
		Subcommands: []*cli.Command{
			{
				Name:  "compose",
				Usage: "Run the stations, weather and routes phases",
				Flags: pipelineFlags(),
				Action: func(c *cli.Context) error {
					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					config, options, err := configFromContext(c)
					if err != nil {
						return err
					}

					records, err := loadRecords(config)
					if err != nil {
						return err
					}

					composer, closer, err := buildComposer(config, options, false)
					if err != nil {
						return err
					}
					defer closer()

					_, err = composer.Compose(ctx, records)

					return err
				},
			},
			{
				Name:  "stations",
				Usage: "Only geocode the stations",
				Flags: pipelineFlags(),
				Action: func(c *cli.Context) error {
					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					config, options, err := configFromContext(c)
					if err != nil {
						return err
					}

					records, err := loadRecords(config)
					if err != nil {
						return err
					}

					composer, closer, err := buildComposer(config, options, true)
					if err != nil {
						return err
					}
					defer closer()

					return composer.RunStations(ctx, records)
				},
			},
			{
				Name:  "inspect-groups",
				Usage: "Print the journey groups and legs derived from the records",
				Flags: pipelineFlags(),
				Action: func(c *cli.Context) error {
					config, options, err := configFromContext(c)
					if err != nil {
						return err
					}

					records, err := loadRecords(config)
					if err != nil {
						return err
					}

					groups := util.Limit(legs.DeriveJourneyGroups(records, options.Grouping), config.MaxBatchSize)
					for _, group := range groups {
						pretty.Println(group.Key(), len(group.Stations)-1, "legs")
					}
					pretty.Println(groups)

					log.Info().Int("records", len(records)).Int("groups", len(groups)).Msg("Inspected journey groups")

					return nil
				},
			},
		},
	}
}

func configFromContext(c *cli.Context) (Config, Options, error) {
	config := DefaultConfig()

	if c.IsSet("config") {
		var err error
		if config, err = LoadConfig(c.String("config")); err != nil {
			return config, Options{}, err
		}
	}

	config.Inputs = append(config.Inputs, c.StringSlice("input")...)
	config.Inputs = append(config.Inputs, c.Args().Slice()...)

	if c.IsSet("output-dir") {
		config.OutputDirectory = c.String("output-dir")
	}
	if c.IsSet("stations-format") {
		config.Stations.Format = c.String("stations-format")
	}
	if c.IsSet("weather-format") {
		config.Weather.Format = c.String("weather-format")
	}
	if c.IsSet("routes-format") {
		config.Routes.Format = c.String("routes-format")
	}
	if c.IsSet("geocoder") {
		config.Geocoder = c.String("geocoder")
	}
	if c.IsSet("grouping") {
		config.Grouping = c.String("grouping")
	}
	if c.IsSet("filter") {
		config.Filter = c.String("filter")
	}
	if c.IsSet("max-batch-size") {
		config.MaxBatchSize = c.Int("max-batch-size")
	}
	if c.IsSet("workers") {
		config.Workers = c.Int("workers")
	}
	if c.IsSet("requests-per-second") {
		config.RequestsPerSecond = c.Float64("requests-per-second")
	}
	if c.IsSet("record-run") {
		config.RecordRun = c.Bool("record-run")
	}
	if c.IsSet("index") {
		config.Index = c.Bool("index")
	}

	options, err := config.Validate()

	return config, options, err
}

func loadRecords(config Config) ([]ctdf.DelayRecord, error) {
	if len(config.Inputs) == 0 {
		return nil, errNoInputs
	}

	loader, err := rawdata.NewLoader(config.Filter)
	if err != nil {
		return nil, err
	}

	return loader.LoadFiles(config.Inputs...)
}

type tableSetup struct {
	table  *Table
	config TableConfig
	format output.Format
}

// buildComposer wires the API clients, writers and optional infrastructure together.
// A stations only composer needs just the geocoder. Missing API keys are fatal.
func buildComposer(config Config, options Options, stationsOnly bool) (*Composer, func(), error) {
	env := util.GetEnvironmentVariables()

	geocoder, err := geocoding.New(options.Backend, geocoding.Credentials{
		GoogleMapsAPIKey: env["TRAVIGO_GOOGLE_MAPS_API_KEY"],
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create geocoder")
	}
	if google, ok := geocoder.(*geocoding.GoogleMapsGeocoder); ok {
		google.Limiter = util.NewRateLimiter(config.RequestsPerSecond)
	}

	if redis_client.Enabled() {
		if err := redis_client.Connect(); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}

		cachedGeocoder := &geocoding.CachedGeocoder{Geocoder: geocoder}
		cachedGeocoder.Setup()
		geocoder = cachedGeocoder
	}

	composer := NewComposer(geocoder, nil, nil)
	composer.Grouping = options.Grouping
	composer.MaxBatchSize = config.MaxBatchSize
	composer.Workers = config.Workers
	composer.SetInputs(config.Inputs)

	tables := []tableSetup{
		{&composer.StationsTable, config.Stations, options.StationsFormat},
	}

	if !stationsOnly {
		weatherFetcher, err := weather.NewFetcher(env["TRAVIGO_WEATHER_API_KEY"])
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create weather fetcher")
		}
		weatherFetcher.Limiter = util.NewRateLimiter(config.RequestsPerSecond)

		directions, err := routes.NewGoogleRoutesClient(env["TRAVIGO_GOOGLE_MAPS_API_KEY"])
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create directions client")
		}
		directions.Limiter = util.NewRateLimiter(config.RequestsPerSecond)

		composer.Weather = weatherFetcher
		composer.Resolver = routes.NewResolver(directions)

		tables = append(tables,
			tableSetup{&composer.WeatherTable, config.Weather, options.WeatherFormat},
			tableSetup{&composer.RoutesTable, config.Routes, options.RoutesFormat},
		)
	}

	for _, t := range tables {
		writer, err := output.NewWriter(config.OutputDirectory, t.format)
		if err != nil {
			return nil, nil, err
		}

		*t.table = Table{Name: t.config.Name, Writer: writer}
	}

	if config.RecordRun {
		if !database.Enabled() {
			log.Warn().Msg("TRAVIGO_MONGODB_CONNECTION not set, recording runs to the default MongoDB")
		}
		if err := database.Connect(); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}

		composer.Recorder = database.RunHistory{}
	}

	closer := func() {}

	if config.Index {
		if !elastic_client.Enabled() {
			return nil, nil, errIndexNotConfigured
		}
		if err := elastic_client.Connect(); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Elasticsearch")
		}

		indexer, err := elastic_client.NewIndexer(elastic_client.Client, elastic_client.DefaultIndexPrefix)
		if err != nil {
			return nil, nil, err
		}
		composer.Indexer = indexer

		closer = func() {
			// The run context may already be cancelled, the queue still has to be flushed
			ctx, cancel := context.WithTimeout(context.Background(), indexFlushTimeout)
			defer cancel()

			if err := indexer.Close(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to flush Elasticsearch index queue")
			}
		}
	}

	log.Info().Str("run", composer.RunID()).Strs("inputs", config.Inputs).Msg("Composer ready")

	return composer, closer, nil
}
