package models

import (
	"time"
)

// Observation mirrors the current_observation section of a conditions response
type Observation struct {
	LocalTimeRFC822   string  `json:"local_time_rfc822"`
	LocalEpoch        string  `json:"local_epoch"`
	LocalTzShort      string  `json:"local_tz_short"`
	LocalTzLong       string  `json:"local_tz_long"`
	LocalTzOffset     string  `json:"local_tz_offset"`
	TemperatureString string  `json:"temperature_string"`
	TempF             float64 `json:"temp_f"`
	TempC             float64 `json:"temp_c"`
	RelativeHumidity  string  `json:"relative_humidity"`
	WindDir           string  `json:"wind_dir"`
	WindDegrees       int     `json:"wind_degrees"`
	WindMph           int     `json:"wind_mph"`
	WindKph           int     `json:"wind_kph"`
	Precip1hrIn       int     `json:"precip_1hr_in"`
	Precip1hrMetric   int     `json:"precip_1hr_metric"`
	PrecipTodayIn     int     `json:"precip_today_in"`
	PrecipTodayMetric int     `json:"precip_today_metric"`
}

// Snapshot is a document fetched for a location at a point in time
type Snapshot struct {
	Location  string    `json:"location"`
	Resources []string  `json:"resources"`
	Document  Document  `json:"data"`
	Fetched   time.Time `json:"fetched"`
}
