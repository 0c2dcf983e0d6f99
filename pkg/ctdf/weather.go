package ctdf

// WeatherRow is one hourly observation for a station on a date
type WeatherRow struct {
	Station string `csv:"stacja" parquet:"stacja" json:"stacja"`
	Date    string `csv:"data" parquet:"data" json:"data"`

	Datetime       string   `csv:"datetime" parquet:"datetime" json:"datetime"`
	DatetimeEpoch  int64    `csv:"datetimeEpoch" parquet:"datetimeEpoch" json:"datetimeEpoch"`
	Temp           *float64 `csv:"temp" parquet:"temp" json:"temp"`
	FeelsLike      *float64 `csv:"feelslike" parquet:"feelslike" json:"feelslike"`
	Humidity       *float64 `csv:"humidity" parquet:"humidity" json:"humidity"`
	Dew            *float64 `csv:"dew" parquet:"dew" json:"dew"`
	Precip         *float64 `csv:"precip" parquet:"precip" json:"precip"`
	PrecipProb     *float64 `csv:"precipprob" parquet:"precipprob" json:"precipprob"`
	Snow           *float64 `csv:"snow" parquet:"snow" json:"snow"`
	SnowDepth      *float64 `csv:"snowdepth" parquet:"snowdepth" json:"snowdepth"`
	WindGust       *float64 `csv:"windgust" parquet:"windgust" json:"windgust"`
	WindSpeed      *float64 `csv:"windspeed" parquet:"windspeed" json:"windspeed"`
	WindDir        *float64 `csv:"winddir" parquet:"winddir" json:"winddir"`
	Pressure       *float64 `csv:"pressure" parquet:"pressure" json:"pressure"`
	Visibility     *float64 `csv:"visibility" parquet:"visibility" json:"visibility"`
	CloudCover     *float64 `csv:"cloudcover" parquet:"cloudcover" json:"cloudcover"`
	SolarRadiation *float64 `csv:"solarradiation" parquet:"solarradiation" json:"solarradiation"`
	UVIndex        *float64 `csv:"uvindex" parquet:"uvindex" json:"uvindex"`
	Conditions     string   `csv:"conditions" parquet:"conditions" json:"conditions"`
	Icon           string   `csv:"icon" parquet:"icon" json:"icon"`

	Latitude  float64 `csv:"lat" parquet:"lat" json:"lat"`
	Longitude float64 `csv:"lon" parquet:"lon" json:"lon"`
}

func (w WeatherRow) Point() *Location {
	return &Location{Latitude: w.Latitude, Longitude: w.Longitude}
}
