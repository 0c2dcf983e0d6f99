package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

func writeCSV(directory string, name string, rows any) error {
	fullpath := filepath.Join(directory, fmt.Sprintf("%s.csv", name))

	file, err := os.Create(fullpath)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := gocsv.MarshalFile(rows, file); err != nil {
		return fmt.Errorf("write %s: %w", fullpath, err)
	}

	log.Info().Str("path", fullpath).Msg("Saved in CSV format")

	return nil
}
