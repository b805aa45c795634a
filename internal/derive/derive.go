// Package derive computes quantities the station does not report
// directly: the feels-like temperature and the compass wind direction.
package derive

// compassPoints in clockwise order starting at north; each sector spans 22.5°.
var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// FeelsLike picks the apparent temperature from the actual temperature
// and the optional heat index and wind chill, all in Celsius. The heat
// index applies only when above the actual temperature, the wind chill
// only when below; otherwise the actual temperature stands. Callers must
// convert the result with the same unit conversion as the temperature.
func FeelsLike(temp float64, heatIndex, windChill *float64) float64 {
	switch {
	case heatIndex != nil && *heatIndex > temp:
		return *heatIndex
	case windChill != nil && *windChill < temp:
		return *windChill
	default:
		return temp
	}
}

// WindDirection maps wind degrees to one of 16 compass labels using
// round-half-up sectors, so 348.75° and up wrap back to N. An absent
// reading yields the empty string.
func WindDirection(degrees *int) string {
	if degrees == nil {
		return ""
	}
	idx := int(float64(*degrees)/22.5+0.5) % 16
	return compassPoints[idx]
}
