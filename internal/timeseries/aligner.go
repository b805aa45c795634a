// Package timeseries reshapes the irregular 24-hour station history into
// chart-ready series: observations sorted by epoch, one hour-rounded
// wall-clock label per point, and per-metric value sequences in the
// user's preferred units.
package timeseries

import (
	"sort"
	"time"

	"github.com/MrVISKman11/AppTiempo/internal/derive"
	"github.com/MrVISKman11/AppTiempo/internal/models"
	"github.com/MrVISKman11/AppTiempo/internal/prefs"
	"github.com/MrVISKman11/AppTiempo/internal/units"
)

// Metric identifies one charted quantity.
type Metric string

const (
	MetricTemperature    Metric = "temperature"
	MetricFeelsLike      Metric = "feelsLike"
	MetricWindSpeed      Metric = "windSpeed"
	MetricPrecipitation  Metric = "precipitation"
	MetricSolarRadiation Metric = "solarRadiation"
	MetricUV             Metric = "uv"
	MetricPressure       Metric = "pressure"
)

// Point is one chart entry: Index is the 0-based position in the sorted
// observation sequence.
type Point struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Series is the full value sequence for one metric, with its display
// label suffix and user-chosen color.
type Series struct {
	Metric Metric  `json:"metric"`
	Unit   string  `json:"unit"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

// ChartData carries the synchronized label and series arrays. Every
// series has exactly len(Labels) points; consecutive labels may repeat
// when neighboring observations round to the same hour.
type ChartData struct {
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// Align sorts the history ascending by epoch and produces labels plus one
// series per metric. Absent fields contribute zero-valued points; no
// observation is ever dropped, so output length always equals input
// length. Labels are local wall-clock HH:mm in loc, rounded to the
// nearest hour (minute 30 rounds up, wrapping past midnight).
func Align(history []models.HistoryObservation, p prefs.UserPreferences, loc *time.Location) ChartData {
	if loc == nil {
		loc = time.Local
	}

	sorted := make([]models.HistoryObservation, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Epoch < sorted[j].Epoch })

	labels := make([]string, 0, len(sorted))
	specs := []struct {
		metric   Metric
		unit     string
		colorKey string
	}{
		{MetricTemperature, units.TempLabel(p.TempUnit), prefs.ColorTemperature},
		{MetricFeelsLike, units.TempLabel(p.TempUnit), prefs.ColorFeelsLike},
		{MetricWindSpeed, units.SpeedLabel(p.SpeedUnit), prefs.ColorWind},
		{MetricPrecipitation, units.PrecipTotalLabel(p.PrecipUnit), prefs.ColorPrecip},
		{MetricSolarRadiation, "W/m²", prefs.ColorSolar},
		{MetricUV, "", prefs.ColorUV},
		{MetricPressure, "hPa", prefs.ColorPressure},
	}
	series := make([]Series, len(specs))
	for i, sp := range specs {
		series[i] = Series{
			Metric: sp.metric,
			Unit:   sp.unit,
			Color:  p.ChartColor(sp.colorKey),
			Points: make([]Point, 0, len(sorted)),
		}
	}

	for idx, obs := range sorted {
		labels = append(labels, hourLabel(obs.Epoch, loc))
		for i, sp := range specs {
			series[i].Points = append(series[i].Points, Point{
				Index: idx,
				Value: metricValue(sp.metric, obs, p),
			})
		}
	}

	return ChartData{Labels: labels, Series: series}
}

// hourLabel renders the epoch as local HH:mm rounded to the nearest hour.
func hourLabel(epoch int64, loc *time.Location) string {
	t := time.Unix(epoch, 0).In(loc)
	if t.Minute() >= 30 {
		t = t.Add(time.Hour)
	}
	t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
	return t.Format("15:04")
}

func metricValue(m Metric, obs models.HistoryObservation, p prefs.UserPreferences) float64 {
	var b models.HistoryBundle
	if obs.Metric != nil {
		b = *obs.Metric
	}
	switch m {
	case MetricTemperature:
		return units.Temperature(b.TempAvg, p.TempUnit)
	case MetricFeelsLike:
		feels := derive.FeelsLike(units.Value(b.TempAvg), b.HeatIndexAvg, b.WindChillAvg)
		return units.Temperature(&feels, p.TempUnit)
	case MetricWindSpeed:
		return units.Speed(b.WindSpeedAvg, p.SpeedUnit)
	case MetricPrecipitation:
		return units.Precip(b.PrecipTotal, p.PrecipUnit)
	case MetricSolarRadiation:
		return units.Value(obs.SolarRadiationHigh)
	case MetricUV:
		return units.Value(obs.UVHigh)
	case MetricPressure:
		return units.Value(b.PressureMax)
	default:
		return 0
	}
}
