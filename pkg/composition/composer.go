package composition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
	"github.com/travigo/railenrich/pkg/ctdf"
	"github.com/travigo/railenrich/pkg/geocoding"
	"github.com/travigo/railenrich/pkg/legs"
	"github.com/travigo/railenrich/pkg/routes"
	"github.com/travigo/railenrich/pkg/util"
)

var ErrPhaseOutOfOrder = errors.New("phase run out of order")

type State string

const (
	StateIdle         State = "Idle"
	StateStationsDone State = "StationsDone"
	StateWeatherDone  State = "WeatherDone"
	StateRoutesDone   State = "RoutesDone"
)

// TableWriter persists a finished table, a slice of row structs, under a logical name
type TableWriter interface {
	Write(name string, rows any) error
}

type WeatherFetcher interface {
	Fetch(ctx context.Context, station string, location ctdf.Location, date ctdf.Date) []ctdf.WeatherRow
}

// Indexer mirrors finished tables into a search index
type Indexer interface {
	Index(ctx context.Context, name string, rows any) error
}

// RunRecorder is told about every state change of a run
type RunRecorder interface {
	Record(ctx context.Context, run ctdf.EnrichmentRun) error
}

type Table struct {
	Name   string
	Writer TableWriter
}

type Result struct {
	Stations    []ctdf.StationCoordinate
	Weather     []ctdf.WeatherRow
	Routes      []ctdf.RouteResult
	SkippedLegs []ctdf.SkippedLeg
}

// Composer runs the stations, weather and routes phases in order,
// writing each phase's table before the next phase starts.
type Composer struct {
	Geocoder geocoding.Geocoder
	Weather  WeatherFetcher
	Resolver *routes.Resolver

	StationsTable Table
	WeatherTable  Table
	RoutesTable   Table

	// Optional
	Indexer  Indexer
	Recorder RunRecorder

	Grouping     legs.GroupingMode
	MaxBatchSize int
	Workers      int

	state  State
	run    ctdf.EnrichmentRun
	result Result
}

func NewComposer(geocoder geocoding.Geocoder, weather WeatherFetcher, resolver *routes.Resolver) *Composer {
	now := time.Now()

	return &Composer{
		Geocoder: geocoder,
		Weather:  weather,
		Resolver: resolver,
		Grouping: legs.GroupingModeSequence,
		Workers:  1,
		state:    StateIdle,
		run: ctdf.EnrichmentRun{
			Identifier:           uuid.New().String(),
			State:                string(StateIdle),
			CreationDateTime:     now,
			ModificationDateTime: now,
		},
	}
}

func (c *Composer) State() State {
	if c.state == "" {
		return StateIdle
	}

	return c.state
}

func (c *Composer) RunID() string {
	return c.run.Identifier
}

// SetInputs records where the records came from in the run history
func (c *Composer) SetInputs(inputs []string) {
	c.run.Inputs = inputs
}

// Result holds everything produced by the phases completed so far
func (c *Composer) Result() Result {
	return c.result
}

// Compose runs every phase. On failure the result of the completed phases is returned alongside the error.
func (c *Composer) Compose(ctx context.Context, records []ctdf.DelayRecord) (Result, error) {
	log.Info().Str("run", c.RunID()).Int("records", len(records)).Msg("Starting composition")

	if err := c.RunStations(ctx, records); err != nil {
		return c.result, err
	}
	if err := c.RunWeather(ctx, records); err != nil {
		return c.result, err
	}
	if err := c.RunRoutes(ctx, records); err != nil {
		return c.result, err
	}

	log.Info().
		Str("run", c.RunID()).
		Int("stations", len(c.result.Stations)).
		Int("weather", len(c.result.Weather)).
		Int("routes", len(c.result.Routes)).
		Int("skipped", len(c.result.SkippedLegs)).
		Msg("Composition finished")

	return c.result, nil
}

func (c *Composer) RunStations(ctx context.Context, records []ctdf.DelayRecord) error {
	if err := c.expect(StateIdle, StateStationsDone); err != nil {
		return err
	}

	stations := util.Limit(legs.UniqueStations(records), c.MaxBatchSize)
	log.Info().Int("stations", len(stations)).Msg("Geocoding stations")

	coordinates := geocoding.GeocodeAll(ctx, c.Geocoder, stations, c.Workers)
	if err := ctx.Err(); err != nil {
		return c.fail(ctx, fmt.Errorf("stations: %w", err))
	}

	rows := make([]ctdf.StationRow, 0, len(coordinates))
	unresolved := 0
	for _, coordinate := range coordinates {
		if !coordinate.Resolved() {
			unresolved++
		}
		rows = append(rows, coordinate.ToRow())
	}

	c.result.Stations = coordinates
	c.run.Stations = len(coordinates)
	c.run.UnresolvedStations = unresolved

	if err := c.write(ctx, c.StationsTable, rows); err != nil {
		return err
	}

	c.transition(ctx, StateStationsDone)

	return nil
}

func (c *Composer) RunWeather(ctx context.Context, records []ctdf.DelayRecord) error {
	if err := c.expect(StateStationsDone, StateWeatherDone); err != nil {
		return err
	}

	locations := map[string]*ctdf.Location{}
	for _, coordinate := range c.result.Stations {
		locations[coordinate.Name] = coordinate.Location
	}

	pairs := util.Limit(legs.StationDates(records), c.MaxBatchSize)

	skipped := 0
	util.InPlaceFilter(&pairs, func(pair legs.StationDate) bool {
		if locations[pair.Station] == nil {
			log.Debug().Str("station", pair.Station).Str("date", pair.Date.String()).Msg("No coordinates, skipping weather")
			skipped++
			return false
		}
		return true
	})

	log.Info().Int("pairs", len(pairs)).Int("skipped", skipped).Msg("Fetching weather")

	mapper := iter.Mapper[legs.StationDate, []ctdf.WeatherRow]{
		MaxGoroutines: max(c.Workers, 1),
	}
	perPair := mapper.Map(pairs, func(pair *legs.StationDate) []ctdf.WeatherRow {
		return c.Weather.Fetch(ctx, pair.Station, *locations[pair.Station], pair.Date)
	})
	if err := ctx.Err(); err != nil {
		return c.fail(ctx, fmt.Errorf("weather: %w", err))
	}

	rows := []ctdf.WeatherRow{}
	for _, pairRows := range perPair {
		rows = append(rows, pairRows...)
	}

	c.result.Weather = rows
	c.run.WeatherRows = len(rows)

	if err := c.write(ctx, c.WeatherTable, rows); err != nil {
		return err
	}

	c.transition(ctx, StateWeatherDone)

	return nil
}

func (c *Composer) RunRoutes(ctx context.Context, records []ctdf.DelayRecord) error {
	if err := c.expect(StateWeatherDone, StateRoutesDone); err != nil {
		return err
	}

	groups := util.Limit(legs.DeriveJourneyGroups(records, c.Grouping), c.MaxBatchSize)
	resolvable, skipped := legs.Partition(legs.DeriveLegs(groups, c.result.Stations))

	for _, skippedLeg := range skipped {
		log.Warn().
			Str("group", skippedLeg.Leg.GroupKey).
			Int("position", skippedLeg.Leg.Position).
			Strs("missing", skippedLeg.MissingStations).
			Msg("Skipping leg without coordinates")
	}

	log.Info().Int("groups", len(groups)).Int("legs", len(resolvable)).Int("skipped", len(skipped)).Msg("Resolving routes")

	for _, leg := range resolvable {
		if err := ctx.Err(); err != nil {
			return c.fail(ctx, fmt.Errorf("routes: %w", err))
		}

		if _, err := c.Resolver.ResolveLeg(ctx, leg); err != nil {
			return c.fail(ctx, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return c.fail(ctx, fmt.Errorf("routes: %w", err))
	}

	log.Debug().Int("resolved", c.Resolver.Len()).Msg("Draining route results")
	results := c.Resolver.Drain()

	rows := make([]ctdf.RouteRow, 0, len(results))
	estimated := 0
	for _, result := range results {
		if result.Provenance == ctdf.ProvenanceEstimated {
			estimated++
		}
		rows = append(rows, result.ToRow())
	}

	c.result.Routes = results
	c.result.SkippedLegs = skipped
	c.run.Routes = len(results)
	c.run.EstimatedRoutes = estimated
	c.run.SkippedLegs = len(skipped)

	if err := c.write(ctx, c.RoutesTable, rows); err != nil {
		return err
	}

	c.transition(ctx, StateRoutesDone)

	return nil
}

func (c *Composer) expect(current State, next State) error {
	if c.State() != current {
		return fmt.Errorf("%w: cannot move to %s from %s", ErrPhaseOutOfOrder, next, c.State())
	}

	return nil
}

func (c *Composer) write(ctx context.Context, table Table, rows any) error {
	if table.Writer == nil {
		return c.fail(ctx, fmt.Errorf("no writer configured for table %q", table.Name))
	}

	if err := table.Writer.Write(table.Name, rows); err != nil {
		return c.fail(ctx, fmt.Errorf("write %s: %w", table.Name, err))
	}

	if c.Indexer != nil {
		if err := c.Indexer.Index(ctx, table.Name, rows); err != nil {
			log.Error().Err(err).Str("table", table.Name).Msg("Failed to index table")
		}
	}

	return nil
}

func (c *Composer) transition(ctx context.Context, state State) {
	log.Info().Str("run", c.RunID()).Str("from", string(c.State())).Str("to", string(state)).Msg("Phase complete")

	c.state = state
	c.run.State = string(state)
	c.record(ctx)
}

func (c *Composer) fail(ctx context.Context, err error) error {
	c.run.Error = err.Error()
	c.record(ctx)

	return err
}

func (c *Composer) record(ctx context.Context) {
	if c.Recorder == nil {
		return
	}

	// Failures caused by cancellation still have to reach the run history
	if err := c.Recorder.Record(context.WithoutCancel(ctx), c.run); err != nil {
		log.Error().Err(err).Str("run", c.RunID()).Msg("Failed to record run")
	}
}
