package openweather

import (
	"time"

	"github.com/redstonelake/lakeside-api/internal/domain"
)

// OpenWeatherMap API response types. Only the fields the site shows are decoded.

type weatherEntry struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type oneCallResponse struct {
	TimezoneOffset int `json:"timezone_offset"`
	Current        struct {
		Temp       float64        `json:"temp"`
		FeelsLike  float64        `json:"feels_like"`
		Pressure   int            `json:"pressure"`
		Humidity   int            `json:"humidity"`
		Clouds     int            `json:"clouds"`
		UVI        float64        `json:"uvi"`
		Visibility float64        `json:"visibility"`
		WindSpeed  float64        `json:"wind_speed"`
		WindDeg    int            `json:"wind_deg"`
		Weather    []weatherEntry `json:"weather"`
	} `json:"current"`
	Hourly []struct {
		Dt        int64          `json:"dt"`
		Temp      float64        `json:"temp"`
		Humidity  int            `json:"humidity"`
		UVI       float64        `json:"uvi"`
		WindSpeed float64        `json:"wind_speed"`
		WindDeg   int            `json:"wind_deg"`
		POP       float64        `json:"pop"`
		Weather   []weatherEntry `json:"weather"`
	} `json:"hourly"`
	Daily []struct {
		Dt   int64 `json:"dt"`
		Temp struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"temp"`
		Humidity  int            `json:"humidity"`
		WindSpeed float64        `json:"wind_speed"`
		POP       float64        `json:"pop"`
		Weather   []weatherEntry `json:"weather"`
	} `json:"daily"`
	Alerts []domain.WeatherAlert `json:"alerts"`
}

type currentResponse struct {
	Name       string  `json:"name"`
	Visibility float64 `json:"visibility"`
	Main       struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Weather []weatherEntry `json:"weather"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			TempMin  float64 `json:"temp_min"`
			TempMax  float64 `json:"temp_max"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   int     `json:"deg"`
		} `json:"wind"`
		POP     float64        `json:"pop"`
		Weather []weatherEntry `json:"weather"`
	} `json:"list"`
	City struct {
		Name     string `json:"name"`
		Timezone int    `json:"timezone"` // seconds east of UTC
	} `json:"city"`
}

func conditions(entries []weatherEntry) domain.Conditions {
	if len(entries) == 0 {
		return domain.Conditions{}
	}
	return domain.Conditions{Description: entries[0].Description, Icon: entries[0].Icon}
}

func zone(offsetSeconds int) *time.Location {
	return time.FixedZone("", offsetSeconds)
}

func (r oneCallResponse) toDomain() domain.OneCall {
	oc := domain.OneCall{
		Zone: zone(r.TimezoneOffset),
		Current: domain.Observation{
			Temp:       r.Current.Temp,
			FeelsLike:  r.Current.FeelsLike,
			Humidity:   r.Current.Humidity,
			Pressure:   r.Current.Pressure,
			Clouds:     r.Current.Clouds,
			WindSpeed:  r.Current.WindSpeed,
			WindDeg:    r.Current.WindDeg,
			Visibility: r.Current.Visibility,
			UVI:        r.Current.UVI,
			Conditions: conditions(r.Current.Weather),
		},
		Alerts: r.Alerts,
	}
	if r.Hourly != nil {
		oc.Hourly = make([]domain.Sample, len(r.Hourly))
		for i, h := range r.Hourly {
			oc.Hourly[i] = domain.Sample{
				Time:       time.Unix(h.Dt, 0),
				Temp:       h.Temp,
				TempMin:    h.Temp,
				TempMax:    h.Temp,
				Humidity:   h.Humidity,
				WindSpeed:  h.WindSpeed,
				WindDeg:    h.WindDeg,
				POP:        h.POP,
				UVI:        h.UVI,
				Conditions: conditions(h.Weather),
			}
		}
	}
	oc.Daily = make([]domain.DailySample, len(r.Daily))
	for i, d := range r.Daily {
		oc.Daily[i] = domain.DailySample{
			Time:       time.Unix(d.Dt, 0),
			TempMin:    d.Temp.Min,
			TempMax:    d.Temp.Max,
			Humidity:   d.Humidity,
			WindSpeed:  d.WindSpeed,
			POP:        d.POP,
			Conditions: conditions(d.Weather),
		}
	}
	return oc
}

func (r currentResponse) toDomain() domain.Observation {
	return domain.Observation{
		Temp:        r.Main.Temp,
		FeelsLike:   r.Main.FeelsLike,
		Humidity:    r.Main.Humidity,
		Pressure:    r.Main.Pressure,
		Clouds:      r.Clouds.All,
		WindSpeed:   r.Wind.Speed,
		WindDeg:     r.Wind.Deg,
		Visibility:  r.Visibility,
		Conditions:  conditions(r.Weather),
		StationName: r.Name,
	}
}

func (r forecastResponse) toDomain() domain.ForecastSeries {
	fs := domain.ForecastSeries{
		Zone:    zone(r.City.Timezone),
		City:    r.City.Name,
		Samples: make([]domain.Sample, len(r.List)),
	}
	for i, item := range r.List {
		fs.Samples[i] = domain.Sample{
			Time:       time.Unix(item.Dt, 0),
			Temp:       item.Main.Temp,
			TempMin:    item.Main.TempMin,
			TempMax:    item.Main.TempMax,
			Humidity:   item.Main.Humidity,
			WindSpeed:  item.Wind.Speed,
			WindDeg:    item.Wind.Deg,
			POP:        item.POP,
			Conditions: conditions(item.Weather),
		}
	}
	return fs
}
