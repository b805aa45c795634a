// Package conditions assembles the human-readable current-conditions
// text block from a station observation and, when available, the 24-hour
// history aggregate.
package conditions

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MrVISKman11/AppTiempo/internal/derive"
	"github.com/MrVISKman11/AppTiempo/internal/models"
	"github.com/MrVISKman11/AppTiempo/internal/prefs"
	"github.com/MrVISKman11/AppTiempo/internal/units"
)

// ErrStationNotFound signals that the station reported no observation at
// all. Partial observations never produce this; missing fields render as
// zero instead.
var ErrStationNotFound = errors.New("station not found")

// NotFoundText is the display sentinel shown in place of conditions when
// the station has no observation.
const NotFoundText = "Station not found"

// FormatCurrent renders the base conditions block: temperature and
// feels-like to one decimal, wind speed, gust and precipitation rate to
// two, each suffixed with the resolved unit, plus the compass wind
// direction. The feels-like rule runs on metric values before unit
// conversion. Numbers follow the digit conventions of the preferred
// language.
func FormatCurrent(obs *models.StationObservation, p prefs.UserPreferences) (string, error) {
	if obs == nil {
		return "", ErrStationNotFound
	}
	return formatBase(obs, p, newPrinter(p)), nil
}

// FormatWithHistory rebuilds the full conditions block including the
// 24-hour precipitation total and the humidity percentage. The result
// replaces the base block; it is one coherent text, not an appended
// mutation of earlier output.
func FormatWithHistory(obs *models.StationObservation, history []models.HistoryObservation, p prefs.UserPreferences) (string, error) {
	if obs == nil {
		return "", ErrStationNotFound
	}
	pr := newPrinter(p)

	// Sum in metric, convert once. Absent points count as zero.
	var precipSum float64
	for _, h := range history {
		if h.Metric != nil {
			precipSum += units.Value(h.Metric.PrecipTotal)
		}
	}
	if p.PrecipUnit == units.PrecipInch {
		precipSum = units.ToInches(precipSum)
	}

	var b strings.Builder
	b.WriteString(formatBase(obs, p, pr))
	b.WriteString("\n")
	b.WriteString(pr.Sprintf("Precip (24h): %.2f %s", precipSum, units.PrecipTotalLabel(p.PrecipUnit)))
	b.WriteString("\n")
	b.WriteString(pr.Sprintf("Humidity: %.1f%%", units.Value(obs.Humidity)))
	return b.String(), nil
}

func formatBase(obs *models.StationObservation, p prefs.UserPreferences, pr *message.Printer) string {
	var m models.MetricBundle
	if obs.Metric != nil {
		m = *obs.Metric
	}

	temp := units.Value(m.Temp)
	feels := derive.FeelsLike(temp, m.HeatIndex, m.WindChill)
	if p.TempUnit == units.TempFahrenheit {
		temp = units.ToFahrenheit(temp)
		feels = units.ToFahrenheit(feels)
	}

	windSpeed := units.Speed(m.WindSpeed, p.SpeedUnit)
	windGust := units.Speed(m.WindGust, p.SpeedUnit)
	precip := units.Precip(m.PrecipTotal, p.PrecipUnit)
	windDir := derive.WindDirection(obs.WindDir)

	tempUnit := units.TempLabel(p.TempUnit)
	speedUnit := units.SpeedLabel(p.SpeedUnit)

	var b strings.Builder
	b.WriteString(pr.Sprintf("Temp: %.1f%s", temp, tempUnit))
	b.WriteString("\n")
	b.WriteString(pr.Sprintf("Feels like: %.1f%s", feels, tempUnit))
	b.WriteString("\n")
	line := pr.Sprintf("Wind: %.2f %s", windSpeed, speedUnit)
	if windDir != "" {
		line += " " + windDir
	}
	line += pr.Sprintf(" (Gust: %.2f %s)", windGust, speedUnit)
	b.WriteString(line)
	b.WriteString("\n")
	b.WriteString(pr.Sprintf("Precip: %.2f %s", precip, units.PrecipRateLabel(p.PrecipUnit)))
	return b.String()
}

// newPrinter builds a number formatter for the preferred language so
// decimals follow its digit conventions (e.g. comma for Spanish).
func newPrinter(p prefs.UserPreferences) *message.Printer {
	tag, err := language.Parse(p.Language)
	if err != nil {
		tag = language.Spanish
	}
	return message.NewPrinter(tag)
}
