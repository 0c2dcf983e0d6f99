package ctdf

type StationCoordinate struct {
	Name     string
	Location *Location
}

func (s StationCoordinate) Resolved() bool {
	return s.Location != nil
}

func (s StationCoordinate) ToRow() StationRow {
	row := StationRow{Name: s.Name}

	if s.Location != nil {
		latitude := s.Location.Latitude
		longitude := s.Location.Longitude
		row.Latitude = &latitude
		row.Longitude = &longitude
	}

	return row
}

// StationRow is the stations table record. Unresolved stations keep empty coordinates.
type StationRow struct {
	Name      string   `csv:"stacja" parquet:"stacja" json:"stacja"`
	Latitude  *float64 `csv:"lat" parquet:"lat" json:"lat"`
	Longitude *float64 `csv:"lon" parquet:"lon" json:"lon"`
}

func (s StationRow) Point() *Location {
	return NewLocation(s.Latitude, s.Longitude)
}
