package output

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog/log"
)

func writeParquet(directory string, name string, table reflect.Value) error {
	fullpath := filepath.Join(directory, fmt.Sprintf("%s.parquet", name))

	file, err := os.Create(fullpath)
	if err != nil {
		return err
	}
	defer file.Close()

	schema := parquet.SchemaOf(reflect.New(table.Type().Elem()).Elem().Interface())
	writer := parquet.NewWriter(file, schema)

	for i := 0; i < table.Len(); i++ {
		if err := writer.Write(table.Index(i).Interface()); err != nil {
			return fmt.Errorf("write %s row %d: %w", fullpath, i, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("write %s: %w", fullpath, err)
	}

	log.Info().Str("path", fullpath).Int("rows", table.Len()).Msg("Saved in Parquet format")

	return nil
}
