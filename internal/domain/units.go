package domain

import (
	"math"
	"strings"
)

// TempUnit selects the temperature scale of a response.
type TempUnit string

const (
	Celsius    TempUnit = "C"
	Fahrenheit TempUnit = "F"
)

// ParseTempUnit accepts "C"/"F" in either case. Empty input means Celsius.
func ParseTempUnit(s string) (TempUnit, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "C":
		return Celsius, true
	case "F":
		return Fahrenheit, true
	}
	return "", false
}

// ConvertTemp converts a Celsius reading into the requested unit, rounded to
// the nearest degree.
func ConvertTemp(celsius float64, unit TempUnit) int {
	if unit == Fahrenheit {
		return round(celsius*9/5 + 32)
	}
	return round(celsius)
}

// KilometresPerHour converts a wind speed from m/s to rounded km/h.
func KilometresPerHour(metresPerSecond float64) int {
	return round(metresPerSecond * 3.6)
}

// Kilometres converts a visibility from metres to rounded km.
func Kilometres(metres float64) int {
	return round(metres / 1000)
}

// Percent converts a 0..1 probability to a rounded percentage.
func Percent(p float64) int {
	return round(p * 100)
}

// round rounds halves towards +Inf (-2.5 becomes -2), the same as the
// site's client-side Math.round, so server and browser agree on displayed values.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
