package models

// WeatherReport is the normalized current-conditions payload from the
// weather adapter. Sunrise and sunset are unix epoch seconds.
type WeatherReport struct {
	City      string  `json:"city"`
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  int     `json:"humidity"`
	Pressure  int     `json:"pressure"`
	Condition string  `json:"condition"`
	WindSpeed float64 `json:"wind_speed"`
	Sunrise   int64   `json:"sunrise"`
	Sunset    int64   `json:"sunset"`
}
