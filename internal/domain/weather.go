package domain

// Snapshot is one weather payload for a location at a point in time.
// The fetch core treats it as opaque: it only cares whether one exists.
// Field layout follows the OpenWeather One Call 3.0 response.
type Snapshot struct {
	Lat            float64          `json:"lat"`
	Lon            float64          `json:"lon"`
	Timezone       string           `json:"timezone,omitempty"`
	TimezoneOffset int              `json:"timezone_offset,omitempty"`
	Current        CurrentWeather   `json:"current"`
	Hourly         []HourlyForecast `json:"hourly,omitempty"`
	Daily          []DailyForecast  `json:"daily"`
}

// CurrentWeather holds the "current" block.
type CurrentWeather struct {
	Dt         int64       `json:"dt"`
	Temp       float64     `json:"temp"`
	FeelsLike  float64     `json:"feels_like"`
	Pressure   int         `json:"pressure"`
	Humidity   int         `json:"humidity"`
	UVI        *float64    `json:"uvi,omitempty"`
	Visibility *int        `json:"visibility,omitempty"`
	WindSpeed  *float64    `json:"wind_speed,omitempty"`
	WindDeg    *int        `json:"wind_deg,omitempty"`
	Conditions []Condition `json:"weather"`
	Rain       *Volume     `json:"rain,omitempty"`
	Snow       *Volume     `json:"snow,omitempty"`
}

// HourlyForecast is one entry of the "hourly" block.
type HourlyForecast struct {
	Dt         int64       `json:"dt"`
	Temp       float64     `json:"temp"`
	FeelsLike  float64     `json:"feels_like"`
	Pressure   int         `json:"pressure"`
	Humidity   int         `json:"humidity"`
	Clouds     int         `json:"clouds"`
	WindSpeed  float64     `json:"wind_speed"`
	WindDeg    int         `json:"wind_deg"`
	WindGust   *float64    `json:"wind_gust,omitempty"`
	Pop        *float64    `json:"pop,omitempty"`
	Conditions []Condition `json:"weather"`
	Rain       *Volume     `json:"rain,omitempty"`
	Snow       *Volume     `json:"snow,omitempty"`
}

// DailyForecast is one entry of the "daily" block.
type DailyForecast struct {
	Dt         int64           `json:"dt"`
	Summary    string          `json:"summary,omitempty"`
	Temp       DailyTemp       `json:"temp"`
	FeelsLike  *DailyFeelsLike `json:"feels_like,omitempty"`
	Pressure   int             `json:"pressure"`
	Humidity   int             `json:"humidity"`
	WindSpeed  *float64        `json:"wind_speed,omitempty"`
	Conditions []Condition     `json:"weather"`
	Clouds     *int            `json:"clouds,omitempty"`
	Pop        *float64        `json:"pop,omitempty"`
	UVI        *float64        `json:"uvi,omitempty"`
	Rain       *float64        `json:"rain,omitempty"`
	Snow       *float64        `json:"snow,omitempty"`
}

// Condition is an OpenWeather condition code with its description.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Volume is precipitation over the last hour, in mm.
type Volume struct {
	OneHour float64 `json:"1h"`
}

type DailyTemp struct {
	Day   float64 `json:"day"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}

type DailyFeelsLike struct {
	Day   float64 `json:"day"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}
