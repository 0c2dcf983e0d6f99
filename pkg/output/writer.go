package output

import (
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/travigo/railenrich/pkg/ctdf"
)

var ErrMissingGeometryColumns = errors.New("table has no lat/lon columns")
var ErrInvalidTable = errors.New("table must be a slice of structs")

// Locatable rows carry the lat/lon columns needed for spatial formats
type Locatable interface {
	Point() *ctdf.Location
}

var locatableType = reflect.TypeOf((*Locatable)(nil)).Elem()

// Writer persists tables under a directory in one output format
type Writer struct {
	Directory string
	Format    Format
}

func NewWriter(directory string, format Format) (*Writer, error) {
	if len(format.encodings()) == 0 {
		return nil, fmt.Errorf("%w %q, available options: %v", ErrUnsupportedFormat, format, Formats)
	}

	return &Writer{
		Directory: directory,
		Format:    format,
	}, nil
}

// Write stores rows, a slice of tagged structs, under the logical name in every encoding of the format
func (w *Writer) Write(name string, rows any) error {
	table := reflect.ValueOf(rows)
	if table.Kind() != reflect.Slice || table.Type().Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w, got %T", ErrInvalidTable, rows)
	}

	if w.Format.Spatial() && !table.Type().Elem().Implements(locatableType) {
		return fmt.Errorf("%w: %s (%s)", ErrMissingGeometryColumns, name, table.Type().Elem())
	}

	if err := os.MkdirAll(w.Directory, 0o755); err != nil {
		return err
	}

	for _, e := range w.Format.encodings() {
		var err error

		switch e {
		case encodingCSV:
			err = writeCSV(w.Directory, name, rows)
		case encodingParquet:
			err = writeParquet(w.Directory, name, table)
		case encodingShapefile:
			err = writeShapefile(w.Directory, name, rows, table)
		}

		if err != nil {
			return err
		}
	}

	return nil
}
