package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertTemp(t *testing.T) {
	tests := []struct {
		celsius float64
		unit    TempUnit
		want    int
	}{
		{21.4, Celsius, 21},
		{21.5, Celsius, 22},
		{-2.5, Celsius, -2},
		{0, Fahrenheit, 32},
		{100, Fahrenheit, 212},
		{22, Fahrenheit, 72},
		{-40, Fahrenheit, -40},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ConvertTemp(tt.celsius, tt.unit), "%v°C in %s", tt.celsius, tt.unit)
	}
}

func TestParseTempUnit(t *testing.T) {
	u, ok := ParseTempUnit("")
	assert.True(t, ok)
	assert.Equal(t, Celsius, u)

	u, ok = ParseTempUnit("f")
	assert.True(t, ok)
	assert.Equal(t, Fahrenheit, u)

	_, ok = ParseTempUnit("K")
	assert.False(t, ok)
}

func TestUnitConversions(t *testing.T) {
	assert.Equal(t, 18, KilometresPerHour(5))
	assert.Equal(t, 10, Kilometres(10000))
	assert.Equal(t, 10, Kilometres(9500))
	assert.Equal(t, 57, Percent(0.57))
	assert.Equal(t, 0, Percent(0))
}

func TestCurrentWeather_InUnit(t *testing.T) {
	c := MockCurrent("Redstone Lake, ON")

	f := c.InUnit(Fahrenheit)
	assert.Equal(t, 72, f.Temp)
	assert.Equal(t, 77, f.FeelsLike)
	assert.Equal(t, 22, c.Temp, "original is unchanged")

	assert.Equal(t, c, c.InUnit(Celsius))
}

func TestForecast_InUnitDoesNotAlias(t *testing.T) {
	fc := MockForecast()
	f := fc.InUnit(Fahrenheit)

	assert.Equal(t, 75, f.Days[0].TempMax)
	assert.Equal(t, 24, fc.Days[0].TempMax)

	h := MockHourly()
	assert.Equal(t, 72, h.InUnit(Fahrenheit).Slots[0].Temp)
	assert.Equal(t, 22, h.Slots[0].Temp)
}
