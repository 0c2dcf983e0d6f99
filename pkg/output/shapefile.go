package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/gocarina/gocsv"
	"github.com/jonas-p/go-shp"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

const SpatialSubdirectory = "spatial"

// EPSG:4326
const wgs84WKT = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

// The lat/lon columns become the point geometry
var geometryColumns = []string{"lat", "lon"}

const (
	dbfFieldNameLength = 10
	dbfStringLength    = 254
)

func writeShapefile(directory string, name string, rows any, table reflect.Value) error {
	fullpath := filepath.Join(directory, SpatialSubdirectory, fmt.Sprintf("%s.shp", name))
	if err := os.MkdirAll(filepath.Dir(fullpath), 0o755); err != nil {
		return err
	}

	header, records, err := attributeRecords(rows)
	if err != nil {
		return err
	}

	var attributeIndexes []int
	var fields []shp.Field
	for i, column := range header {
		if slices.Contains(geometryColumns, column) {
			continue
		}

		attributeIndexes = append(attributeIndexes, i)
		fields = append(fields, shp.StringField(truncate(column, dbfFieldNameLength), dbfStringLength))
	}

	writer, err := shp.Create(fullpath, shp.POINT)
	if err != nil {
		return err
	}
	defer writer.Close()

	if err := writer.SetFields(fields); err != nil {
		return err
	}

	for i := 0; i < table.Len(); i++ {
		var shape shp.Shape = &shp.Null{}
		if point := table.Index(i).Interface().(Locatable).Point(); point != nil {
			shape = &shp.Point{X: point.Longitude, Y: point.Latitude}
		}

		row := writer.Write(shape)

		for field, column := range attributeIndexes {
			if err := writer.WriteAttribute(int(row), field, truncate(records[i][column], dbfStringLength)); err != nil {
				return fmt.Errorf("write %s row %d: %w", fullpath, i, err)
			}
		}
	}

	projectionPath := strings.TrimSuffix(fullpath, ".shp") + ".prj"
	if err := os.WriteFile(projectionPath, []byte(wgs84WKT), 0o644); err != nil {
		return err
	}

	log.Info().Str("path", fullpath).Int("rows", table.Len()).Msg("Saved in SHP format")

	return nil
}

// attributeRecords renders the rows through their csv tags so the shapefile carries the same columns as the CSV output
func attributeRecords(rows any) ([]string, [][]string, error) {
	rendered, err := gocsv.MarshalString(rows)
	if err != nil {
		return nil, nil, err
	}

	lines, err := csv.NewReader(strings.NewReader(rendered)).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("%w: no header", ErrInvalidTable)
	}

	return lines[0], lines[1:], nil
}

// truncate cuts s to at most length bytes without splitting a UTF-8 character
func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}

	cut := length
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut]
}
