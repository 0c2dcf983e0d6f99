package ctdf

import (
	"time"
)

const DateFormat = "2006-01-02"

// DelayRecord is a single station observation of a train run. The delay columns are carried through untouched.
type DelayRecord struct {
	ID       string `csv:"id"`
	Relation string `csv:"relacja"`
	Station  string `csv:"stacja"`
	Date     Date   `csv:"data"`

	ScheduledArrival string `csv:"przyjazd_planowy"`
	ActualArrival    string `csv:"przyjazd_rzeczywisty"`
	ArrivalDelay     string `csv:"opoznienie_przyjazdu"`

	ScheduledDeparture string `csv:"odjazd_planowy"`
	ActualDeparture    string `csv:"odjazd_rzeczywisty"`
	DepartureDelay     string `csv:"opoznienie_odjazdu"`
}

type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d *Date) UnmarshalCSV(value string) error {
	parsed, err := time.Parse(DateFormat, value)
	if err != nil {
		return err
	}

	d.Time = parsed
	return nil
}

func (d Date) MarshalCSV() (string, error) {
	return d.String(), nil
}

func (d Date) String() string {
	return d.Format(DateFormat)
}
