package models

// StationObservation is one current-conditions reading from a personal
// weather station. The upstream API may omit any field, so everything
// beyond the station identity is a pointer.
type StationObservation struct {
	StationID    string        `json:"stationID"`
	Latitude     float64       `json:"lat"`
	Longitude    float64       `json:"lon"`
	Neighborhood *string       `json:"neighborhood"`
	WindDir      *int          `json:"winddir"`
	Humidity     *float64      `json:"humidity"`
	Metric       *MetricBundle `json:"metric"`
}

// MetricBundle carries the metric-units measurements of a current
// observation. Requests always use units=m, so this is the only bundle
// the API fills in.
type MetricBundle struct {
	Temp        *float64 `json:"temp"`
	HeatIndex   *float64 `json:"heatIndex"`
	DewPoint    *float64 `json:"dewpt"`
	WindChill   *float64 `json:"windChill"`
	WindSpeed   *float64 `json:"windSpeed"`
	WindGust    *float64 `json:"windGust"`
	Pressure    *float64 `json:"pressure"`
	PrecipRate  *float64 `json:"precipRate"`
	PrecipTotal *float64 `json:"precipTotal"`
	Elevation   *float64 `json:"elev"`
}

// ObservationsResponse is the envelope of /v2/pws/observations/current.
type ObservationsResponse struct {
	Observations []StationObservation `json:"observations"`
}

// HistoryObservation is one point of the rolling 24-hour station history.
// Epoch is seconds since the Unix epoch and is the only required field;
// wire order is unspecified and callers must sort by it.
type HistoryObservation struct {
	Epoch              int64          `json:"epoch"`
	SolarRadiationHigh *float64       `json:"solarRadiationHigh"`
	UVHigh             *float64       `json:"uvHigh"`
	Metric             *HistoryBundle `json:"metric"`
}

// HistoryBundle carries the metric-units aggregates of a history point.
type HistoryBundle struct {
	TempAvg      *float64 `json:"tempAvg"`
	WindSpeedAvg *float64 `json:"windspeedAvg"`
	PrecipTotal  *float64 `json:"precipTotal"`
	PressureMax  *float64 `json:"pressureMax"`
	WindChillAvg *float64 `json:"windchillAvg"`
	HeatIndexAvg *float64 `json:"heatindexAvg"`
}

// HistoryResponse is the envelope of /v2/pws/observations/all/1day.
type HistoryResponse struct {
	Observations []HistoryObservation `json:"observations"`
}

// ForecastResponse mirrors /v3/wx/forecast/daily/5day: parallel arrays
// indexed by day offset. The arrays are not guaranteed to have equal
// lengths; DayOfWeek is the authoritative day count.
type ForecastResponse struct {
	DayOfWeek                 []string   `json:"dayOfWeek"`
	CalendarDayTemperatureMax []*int     `json:"calendarDayTemperatureMax"`
	CalendarDayTemperatureMin []*int     `json:"calendarDayTemperatureMin"`
	Narrative                 []string   `json:"narrative"`
	QPF                       []*float64 `json:"qpf"`
	SunriseTimeLocal          []*string  `json:"sunriseTimeLocal"`
	SunsetTimeLocal           []*string  `json:"sunsetTimeLocal"`
	MoonPhase                 []*string  `json:"moonPhase"`
}

// ForecastDay is one assembled day of the forecast. Temperatures are in
// the user's preferred unit. Expanded is client-side display state, not
// derived data.
type ForecastDay struct {
	DayOfWeek string   `json:"dayOfWeek"`
	MaxTemp   *int     `json:"maxTemp"`
	MinTemp   *int     `json:"minTemp"`
	Narrative string   `json:"narrative"`
	QPF       *float64 `json:"qpf,omitempty"`
	Sunrise   *string  `json:"sunrise,omitempty"`
	Sunset    *string  `json:"sunset,omitempty"`
	MoonPhase *string  `json:"moonPhase,omitempty"`
	Expanded  bool     `json:"expanded"`
}

// FavoriteStation is one saved station. ID is the unique key; list order
// is user-controlled and significant.
type FavoriteStation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
