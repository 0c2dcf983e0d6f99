package output

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

type Format string

const (
	FormatCSV        Format = "csv"
	FormatParquet    Format = "parquet"
	FormatShp        Format = "shp"
	FormatShpCSV     Format = "shp_csv"
	FormatShpParquet Format = "shp_parquet"
)

var Formats = []Format{FormatCSV, FormatParquet, FormatShp, FormatShpCSV, FormatShpParquet}

type encoding int

const (
	encodingCSV encoding = iota
	encodingParquet
	encodingShapefile
)

func ParseFormat(name string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))

	if len(format.encodings()) == 0 {
		return "", fmt.Errorf("%w %q, available options: %v", ErrUnsupportedFormat, name, Formats)
	}

	return format, nil
}

func (f Format) Spatial() bool {
	for _, e := range f.encodings() {
		if e == encodingShapefile {
			return true
		}
	}

	return false
}

func (f Format) encodings() []encoding {
	switch f {
	case FormatCSV:
		return []encoding{encodingCSV}
	case FormatParquet:
		return []encoding{encodingParquet}
	case FormatShp:
		return []encoding{encodingShapefile}
	case FormatShpCSV:
		return []encoding{encodingShapefile, encodingCSV}
	case FormatShpParquet:
		return []encoding{encodingShapefile, encodingParquet}
	default:
		return nil
	}
}
