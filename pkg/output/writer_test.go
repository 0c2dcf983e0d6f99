package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/railenrich/pkg/ctdf"
)

func stationRows() []ctdf.StationRow {
	return []ctdf.StationRow{
		ctdf.StationCoordinate{Name: "Kraków Główny", Location: &ctdf.Location{Latitude: 50.0677, Longitude: 19.9475}}.ToRow(),
		ctdf.StationCoordinate{Name: "Q"}.ToRow(),
	}
}

func TestParseFormat(t *testing.T) {
	for _, format := range Formats {
		parsed, err := ParseFormat(strings.ToUpper(string(format)))
		require.NoError(t, err)
		assert.Equal(t, format, parsed)
	}

	_, err := ParseFormat("xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.True(t, FormatShpCSV.Spatial())
	assert.False(t, FormatParquet.Spatial())
}

func TestNewWriterRejectsUnknownFormat(t *testing.T) {
	_, err := NewWriter(t.TempDir(), Format("geojson"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewWriter(dir, FormatCSV)
	require.NoError(t, err)

	require.NoError(t, writer.Write("stations", stationRows()))

	content, err := os.ReadFile(filepath.Join(dir, "stations.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "stacja,lat,lon", lines[0])
	assert.Equal(t, "Kraków Główny,50.0677,19.9475", lines[1])
	assert.Equal(t, "Q,,", lines[2])

	assert.NoFileExists(t, filepath.Join(dir, "stations.parquet"))
}

func TestWriteParquet(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewWriter(dir, FormatParquet)
	require.NoError(t, err)

	require.NoError(t, writer.Write("stations", stationRows()))

	rows, err := parquet.ReadFile[ctdf.StationRow](filepath.Join(dir, "stations.parquet"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Kraków Główny", rows[0].Name)
	assert.Equal(t, 50.0677, *rows[0].Latitude)
	assert.Nil(t, rows[1].Latitude)
}

func TestWriteShapefileWithCSV(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewWriter(dir, FormatShpCSV)
	require.NoError(t, err)

	require.NoError(t, writer.Write("stations", stationRows()))

	assert.FileExists(t, filepath.Join(dir, "stations.csv"))
	assert.FileExists(t, filepath.Join(dir, SpatialSubdirectory, "stations.dbf"))

	projection, err := os.ReadFile(filepath.Join(dir, SpatialSubdirectory, "stations.prj"))
	require.NoError(t, err)
	assert.Contains(t, string(projection), "WGS_1984")

	reader, err := shp.Open(filepath.Join(dir, SpatialSubdirectory, "stations.shp"))
	require.NoError(t, err)
	defer reader.Close()

	fields := reader.Fields()
	require.Len(t, fields, 1)
	assert.Equal(t, "stacja", strings.TrimRight(string(fields[0].Name[:]), "\x00"))

	require.True(t, reader.Next())
	row, shape := reader.Shape()
	point, ok := shape.(*shp.Point)
	require.True(t, ok)
	assert.Equal(t, 19.9475, point.X)
	assert.Equal(t, 50.0677, point.Y)
	assert.Equal(t, "Kraków Główny", strings.TrimSpace(reader.ReadAttribute(row, 0)))
}

func TestWriteShapefileRequiresGeometryColumns(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewWriter(dir, FormatShp)
	require.NoError(t, err)

	routes := []ctdf.RouteRow{{GroupKey: "R1||X>Y", Position: 1}}

	err = writer.Write("routes", routes)
	assert.ErrorIs(t, err, ErrMissingGeometryColumns)
	assert.NoDirExists(t, filepath.Join(dir, SpatialSubdirectory))
}

func TestWriteRejectsNonTables(t *testing.T) {
	writer, err := NewWriter(t.TempDir(), FormatCSV)
	require.NoError(t, err)

	assert.ErrorIs(t, writer.Write("bad", "not a table"), ErrInvalidTable)
	assert.ErrorIs(t, writer.Write("bad", []string{"a"}), ErrInvalidTable)
}

func TestWriteRoutesCSV(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewWriter(dir, FormatCSV)
	require.NoError(t, err)

	duration := 60.0
	routes := []ctdf.RouteRow{
		{GroupKey: "R1||X>Y", Position: 1, OriginStation: "X", DestinationStation: "Y", DistanceMeters: 1000, DurationSeconds: &duration, Provenance: "measured"},
		{GroupKey: "R1||X>Y", Position: 2, OriginStation: "Y", DestinationStation: "Z", DistanceMeters: 2000, Provenance: "estimated"},
	}
	require.NoError(t, writer.Write("routes", routes))

	content, err := os.ReadFile(filepath.Join(dir, "routes.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "group_key,position,start_station,dest_station,start_lat"))
	assert.Contains(t, lines[1], ",60,")
	assert.True(t, strings.HasSuffix(lines[2], ",estimated"))
}
