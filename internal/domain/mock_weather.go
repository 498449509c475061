package domain

// Static payloads served when no API key is configured or both OpenWeatherMap
// tiers fail. They are never cached and carry no cachedAt stamp.

// MockCurrent returns placeholder current conditions for location.
func MockCurrent(location string) CurrentWeather {
	return CurrentWeather{
		Temp:       22,
		FeelsLike:  25,
		Humidity:   65,
		Pressure:   1013,
		Clouds:     40,
		Wind:       Wind{Speed: 8, Deg: 180},
		Desc:       "Partly cloudy",
		Icon:       "02d",
		Location:   location,
		Visibility: 10,
		UVIndex:    6,
		Alerts:     []WeatherAlert{},
	}
}

// MockForecast returns a placeholder seven-day forecast.
func MockForecast() Forecast {
	return Forecast{Days: []ForecastDay{
		{Date: "Today", TempMax: 24, TempMin: 18, Desc: "Partly cloudy", Icon: "02d", Humidity: 65, WindSpeed: 8, POP: 20},
		{Date: "Tomorrow", TempMax: 26, TempMin: 19, Desc: "Sunny", Icon: "01d", Humidity: 58, WindSpeed: 12, POP: 0},
		{Date: "Wed", TempMax: 23, TempMin: 16, Desc: "Light rain", Icon: "10d", Humidity: 78, WindSpeed: 15, POP: 80},
		{Date: "Thu", TempMax: 25, TempMin: 17, Desc: "Cloudy", Icon: "03d", Humidity: 62, WindSpeed: 10, POP: 30},
		{Date: "Fri", TempMax: 28, TempMin: 20, Desc: "Sunny", Icon: "01d", Humidity: 55, WindSpeed: 6, POP: 0},
		{Date: "Sat", TempMax: 27, TempMin: 21, Desc: "Partly cloudy", Icon: "02d", Humidity: 60, WindSpeed: 9, POP: 10},
		{Date: "Sun", TempMax: 24, TempMin: 18, Desc: "Thunderstorms", Icon: "11d", Humidity: 82, WindSpeed: 18, POP: 90},
	}}
}

// MockHourly returns a placeholder eight-slot hourly forecast.
func MockHourly() HourlyForecast {
	return HourlyForecast{Slots: []HourlySlot{
		{Time: "Now", Temp: 22, Icon: "02d", POP: 20},
		{Time: "1 PM", Temp: 24, Icon: "02d", POP: 15},
		{Time: "2 PM", Temp: 25, Icon: "01d", POP: 10},
		{Time: "3 PM", Temp: 26, Icon: "01d", POP: 5},
		{Time: "4 PM", Temp: 25, Icon: "02d", POP: 10},
		{Time: "5 PM", Temp: 23, Icon: "02d", POP: 20},
		{Time: "6 PM", Temp: 21, Icon: "03d", POP: 30},
		{Time: "7 PM", Temp: 20, Icon: "03d", POP: 25},
	}}
}
