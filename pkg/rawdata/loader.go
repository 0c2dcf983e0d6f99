package rawdata

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railenrich/pkg/ctdf"
	"github.com/travigo/railenrich/pkg/util"
	"golang.org/x/exp/slices"
)

var ErrMissingColumn = errors.New("missing required column")

var RequiredColumns = []string{"id", "relacja", "stacja", "data"}

var utf8BOM = []byte("\xef\xbb\xbf")

type Loader struct {
	// Optional expr-lang boolean expression evaluated against each ctdf.DelayRecord
	Filter string

	program *vm.Program
}

func NewLoader(filter string) (*Loader, error) {
	loader := &Loader{Filter: filter}

	if filter != "" {
		program, err := expr.Compile(filter, expr.Env(ctdf.DelayRecord{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile filter %q: %w", filter, err)
		}
		loader.program = program
	}

	return loader, nil
}

// LoadFiles reads every file in order and concatenates the records
func (l *Loader) LoadFiles(paths ...string) ([]ctdf.DelayRecord, error) {
	var records []ctdf.DelayRecord

	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		fileRecords, err := l.Load(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}

		log.Info().Str("file", path).Int("records", len(fileRecords)).Msg("Loaded delay records")
		records = append(records, fileRecords...)
	}

	return records, nil
}

func (l *Loader) Load(reader io.Reader) ([]ctdf.DelayRecord, error) {
	// Allow us to ignore those naughty records that have missing columns
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		return r
	})

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	// Spreadsheet exports often start with a byte order mark
	body = bytes.TrimPrefix(body, utf8BOM)

	if err := checkHeader(body); err != nil {
		return nil, err
	}

	records := []ctdf.DelayRecord{}
	if err := gocsv.UnmarshalBytes(body, &records); err != nil {
		return nil, err
	}

	if l.program != nil {
		var filterErr error
		util.InPlaceFilter(&records, func(record ctdf.DelayRecord) bool {
			keep, err := expr.Run(l.program, record)
			if err != nil {
				filterErr = err
				return false
			}
			return keep.(bool)
		})

		if filterErr != nil {
			return nil, fmt.Errorf("evaluate filter: %w", filterErr)
		}
	}

	return records, nil
}

func checkHeader(body []byte) error {
	header, err := csv.NewReader(bytes.NewReader(body)).Read()
	if err == io.EOF {
		return fmt.Errorf("%w: empty file", ErrMissingColumn)
	} else if err != nil {
		return err
	}

	for _, column := range RequiredColumns {
		if !slices.Contains(header, column) {
			return fmt.Errorf("%w: %s", ErrMissingColumn, column)
		}
	}

	return nil
}
