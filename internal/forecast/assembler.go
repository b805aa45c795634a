// Package forecast maps the upstream parallel forecast arrays into an
// ordered sequence of day records.
package forecast

import (
	"github.com/MrVISKman11/AppTiempo/internal/models"
	"github.com/MrVISKman11/AppTiempo/internal/units"
)

// PlaceholderDay substitutes for a missing day label when the upstream
// arrays disagree on length.
const PlaceholderDay = "—"

// Assemble builds one ForecastDay per entry of the day-of-week array,
// which is the authoritative day count. Sibling arrays shorter than the
// index contribute a placeholder or nil. Max and min temperatures are
// converted to the preferred unit with whole-degree rounding; narrative,
// timestamps and moon phase pass through unchanged. Days start collapsed.
func Assemble(resp *models.ForecastResponse, tempUnit string) []models.ForecastDay {
	if resp == nil {
		return nil
	}
	days := make([]models.ForecastDay, 0, len(resp.DayOfWeek))
	for i := range resp.DayOfWeek {
		day := models.ForecastDay{
			DayOfWeek: stringAt(resp.DayOfWeek, i),
			MaxTemp:   convertTemp(intAt(resp.CalendarDayTemperatureMax, i), tempUnit),
			MinTemp:   convertTemp(intAt(resp.CalendarDayTemperatureMin, i), tempUnit),
			Narrative: narrativeAt(resp.Narrative, i),
			QPF:       floatAt(resp.QPF, i),
			Sunrise:   strPtrAt(resp.SunriseTimeLocal, i),
			Sunset:    strPtrAt(resp.SunsetTimeLocal, i),
			MoonPhase: strPtrAt(resp.MoonPhase, i),
		}
		days = append(days, day)
	}
	return days
}

func convertTemp(v *int, unit string) *int {
	if v == nil || unit != units.TempFahrenheit {
		return v
	}
	f := units.ToFahrenheitInt(*v)
	return &f
}

func stringAt(arr []string, i int) string {
	if i >= len(arr) || arr[i] == "" {
		return PlaceholderDay
	}
	return arr[i]
}

func narrativeAt(arr []string, i int) string {
	if i >= len(arr) {
		return ""
	}
	return arr[i]
}

func intAt(arr []*int, i int) *int {
	if i >= len(arr) {
		return nil
	}
	return arr[i]
}

func floatAt(arr []*float64, i int) *float64 {
	if i >= len(arr) {
		return nil
	}
	return arr[i]
}

func strPtrAt(arr []*string, i int) *string {
	if i >= len(arr) {
		return nil
	}
	return arr[i]
}
