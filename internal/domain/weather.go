package domain

import (
	"context"
	"time"
)

// WeatherCacheTTL is how long each weather view is served from cache.
const WeatherCacheTTL = 15 * time.Minute

// WeatherKind selects one of the three weather views served by /api/weather.
type WeatherKind string

const (
	WeatherCurrent  WeatherKind = "current"
	WeatherForecast WeatherKind = "forecast"
	WeatherHourly   WeatherKind = "hourly"
)

// ParseWeatherKind validates the ?type= query value. Empty means current.
func ParseWeatherKind(s string) (WeatherKind, bool) {
	switch WeatherKind(s) {
	case "", WeatherCurrent:
		return WeatherCurrent, true
	case WeatherForecast, WeatherHourly:
		return WeatherKind(s), true
	}
	return "", false
}

// Conditions is the icon and description of the first upstream weather entry.
type Conditions struct {
	Description string
	Icon        string
}

// Observation is a normalised current-conditions reading.
type Observation struct {
	Temp        float64
	FeelsLike   float64
	Humidity    int
	Pressure    int
	Clouds      int
	WindSpeed   float64 // m/s
	WindDeg     int
	Visibility  float64 // metres
	UVI         float64
	Conditions  Conditions
	StationName string // free tier only
}

// Sample is a single hourly (One Call) or 3-hourly (free tier) forecast point.
type Sample struct {
	Time       time.Time
	Temp       float64
	TempMin    float64
	TempMax    float64
	Humidity   int
	WindSpeed  float64 // m/s
	WindDeg    int
	POP        float64 // 0..1
	UVI        float64
	Conditions Conditions
}

// DailySample is a One Call daily summary point.
type DailySample struct {
	Time       time.Time
	TempMin    float64
	TempMax    float64
	Humidity   int
	WindSpeed  float64 // m/s
	POP        float64
	Conditions Conditions
}

// OneCall is the normalised One Call 3.0 payload.
type OneCall struct {
	Zone    *time.Location
	Current Observation
	Hourly  []Sample
	Daily   []DailySample
	Alerts  []WeatherAlert
}

// ForecastSeries is the normalised free-tier /forecast payload.
type ForecastSeries struct {
	Zone    *time.Location
	City    string
	Samples []Sample
}

// WeatherAlert is a government weather alert relayed from One Call.
type WeatherAlert struct {
	SenderName  string   `json:"sender_name"`
	Event       string   `json:"event"`
	Start       int64    `json:"start"`
	End         int64    `json:"end"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

// Wind is the wind block of a current-conditions response.
type Wind struct {
	Speed int `json:"speed"` // km/h
	Deg   int `json:"deg"`
}

// CurrentWeather is the /api/weather?type=current response body.
type CurrentWeather struct {
	Temp       int            `json:"temp"`
	FeelsLike  int            `json:"feels_like"`
	Humidity   int            `json:"humidity"`
	Pressure   int            `json:"pressure"`
	Clouds     int            `json:"clouds"`
	Wind       Wind           `json:"wind"`
	Desc       string         `json:"desc"`
	Icon       string         `json:"icon"`
	Location   string         `json:"location"`
	Visibility int            `json:"visibility"` // km
	UVIndex    int            `json:"uv_index"`
	Alerts     []WeatherAlert `json:"alerts"`
	CachedAt   string         `json:"cachedAt,omitempty"`
}

// ForecastDay is one entry of the daily forecast.
type ForecastDay struct {
	Date      string `json:"date"`
	TempMax   int    `json:"temp_max"`
	TempMin   int    `json:"temp_min"`
	Desc      string `json:"desc"`
	Icon      string `json:"icon"`
	Humidity  int    `json:"humidity"`
	WindSpeed int    `json:"wind_speed"` // km/h
	POP       int    `json:"pop"`        // percent
}

// Forecast is the /api/weather?type=forecast response body.
type Forecast struct {
	Days     []ForecastDay `json:"forecast"`
	CachedAt string        `json:"cachedAt,omitempty"`
}

// HourlySlot is one entry of the hourly forecast. The optional fields are
// only populated from One Call data.
type HourlySlot struct {
	Time      string   `json:"time"`
	Temp      int      `json:"temp"`
	Icon      string   `json:"icon"`
	POP       int      `json:"pop"`
	WindSpeed *int     `json:"wind_speed,omitempty"`
	WindDeg   *int     `json:"wind_deg,omitempty"`
	Humidity  *int     `json:"humidity,omitempty"`
	UVI       *float64 `json:"uvi,omitempty"`
}

// HourlyForecast is the /api/weather?type=hourly response body.
type HourlyForecast struct {
	Slots    []HourlySlot `json:"hourlyForecast"`
	CachedAt string       `json:"cachedAt,omitempty"`
}

// BuildCurrent reshapes an observation into the current-conditions view.
func BuildCurrent(obs Observation, location string, alerts []WeatherAlert) CurrentWeather {
	if alerts == nil {
		alerts = []WeatherAlert{}
	}
	return CurrentWeather{
		Temp:       round(obs.Temp),
		FeelsLike:  round(obs.FeelsLike),
		Humidity:   obs.Humidity,
		Pressure:   obs.Pressure,
		Clouds:     obs.Clouds,
		Wind:       Wind{Speed: KilometresPerHour(obs.WindSpeed), Deg: obs.WindDeg},
		Desc:       obs.Conditions.Description,
		Icon:       obs.Conditions.Icon,
		Location:   location,
		Visibility: Kilometres(obs.Visibility),
		UVIndex:    round(obs.UVI),
		Alerts:     alerts,
	}
}

// InUnit returns a copy with temperatures expressed in unit. Stored values
// are always Celsius.
func (c CurrentWeather) InUnit(unit TempUnit) CurrentWeather {
	if unit != Fahrenheit {
		return c
	}
	c.Temp = ConvertTemp(float64(c.Temp), unit)
	c.FeelsLike = ConvertTemp(float64(c.FeelsLike), unit)
	return c
}

// InUnit returns a copy with temperatures expressed in unit.
func (f Forecast) InUnit(unit TempUnit) Forecast {
	if unit != Fahrenheit {
		return f
	}
	days := make([]ForecastDay, len(f.Days))
	for i, d := range f.Days {
		d.TempMax = ConvertTemp(float64(d.TempMax), unit)
		d.TempMin = ConvertTemp(float64(d.TempMin), unit)
		days[i] = d
	}
	f.Days = days
	return f
}

// InUnit returns a copy with temperatures expressed in unit.
func (h HourlyForecast) InUnit(unit TempUnit) HourlyForecast {
	if unit != Fahrenheit {
		return h
	}
	slots := make([]HourlySlot, len(h.Slots))
	for i, s := range h.Slots {
		s.Temp = ConvertTemp(float64(s.Temp), unit)
		slots[i] = s
	}
	h.Slots = slots
	return h
}

// WeatherProvider fetches forecasts for the lake from an upstream API.
type WeatherProvider interface {
	// OneCall fetches the paid-tier combined payload.
	OneCall(ctx context.Context) (OneCall, error)
	// Current fetches free-tier current conditions.
	Current(ctx context.Context) (Observation, error)
	// Forecast fetches the free-tier 5 day / 3 hour series.
	Forecast(ctx context.Context) (ForecastSeries, error)
}
