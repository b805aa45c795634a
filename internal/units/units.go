// Package units converts metric API values into the user's preferred
// display units. Conversions are pure and never round; fixed-decimal
// formatting happens at presentation time.
package units

import "math"

// Preference values as persisted by the settings store.
const (
	TempCelsius    = "C"
	TempFahrenheit = "F"

	SpeedKmh = "kmh"
	SpeedMph = "mph"

	PrecipMm   = "mm"
	PrecipInch = "in"
)

// ToFahrenheit converts degrees Celsius to Fahrenheit.
func ToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// ToFahrenheitInt converts a whole-degree Celsius value, rounding to the
// nearest whole Fahrenheit degree. Used for forecast day temperatures.
func ToFahrenheitInt(c int) int {
	return int(math.Round(float64(c)*9/5)) + 32
}

// ToMph converts km/h to miles per hour.
func ToMph(kmh float64) float64 {
	return kmh / 1.60934
}

// ToInches converts millimetres to inches.
func ToInches(mm float64) float64 {
	return mm / 25.4
}

// Value dereferences an optional API field, treating absent as 0.0.
func Value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Temperature converts an optional metric temperature to the preferred unit.
func Temperature(v *float64, unit string) float64 {
	c := Value(v)
	if unit == TempFahrenheit {
		return ToFahrenheit(c)
	}
	return c
}

// Speed converts an optional metric wind speed to the preferred unit.
func Speed(v *float64, unit string) float64 {
	kmh := Value(v)
	if unit == SpeedMph {
		return ToMph(kmh)
	}
	return kmh
}

// Precip converts an optional metric precipitation amount to the preferred unit.
func Precip(v *float64, unit string) float64 {
	mm := Value(v)
	if unit == PrecipInch {
		return ToInches(mm)
	}
	return mm
}

// TempLabel returns the display suffix for a temperature unit preference.
func TempLabel(unit string) string {
	if unit == TempFahrenheit {
		return "°F"
	}
	return "°C"
}

// SpeedLabel returns the display suffix for a speed unit preference.
func SpeedLabel(unit string) string {
	if unit == SpeedMph {
		return "mph"
	}
	return "km/h"
}

// PrecipRateLabel returns the suffix for the current precipitation line.
// The metric rate is reported per hour; inches are shown bare.
func PrecipRateLabel(unit string) string {
	if unit == PrecipInch {
		return "in"
	}
	return "mm/hr"
}

// PrecipTotalLabel returns the suffix for accumulated precipitation.
func PrecipTotalLabel(unit string) string {
	if unit == PrecipInch {
		return "in"
	}
	return "mm"
}
