package weather

// Mode selects which single section of the report is rendered.
// ModeNone renders the composite report.
type Mode string

const (
	ModeNone     Mode = ""
	ModeNow      Mode = "now"
	ModeRain     Mode = "rain"
	ModeForecast Mode = "forecast"
	ModeLife     Mode = "life"
)

// DailyForecast is one day of the 3-day forecast. Values are kept as the
// strings the provider sends.
type DailyForecast struct {
	FxDate       string `json:"fxDate"`
	TextDay      string `json:"textDay"`
	TempMin      string `json:"tempMin"`
	TempMax      string `json:"tempMax"`
	Humidity     string `json:"humidity"`
	Precip       string `json:"precip"`
	WindDirDay   string `json:"windDirDay"`
	WindScaleDay string `json:"windScaleDay"`
}

// Forecast is the 3-day forecast snapshot, ordered by date.
type Forecast struct {
	Daily []DailyForecast `json:"daily"`
}

// Warning is a single active weather warning.
type Warning struct {
	TypeName string `json:"typeName"`
	Title    string `json:"title,omitempty"`
	Text     string `json:"text"`
	Severity string `json:"severity,omitempty"`
}

// WarningReport holds the active warnings. An empty list means no warnings
// are in effect, which is not the same as a failed fetch (nil report).
type WarningReport struct {
	Warnings []Warning `json:"warning"`
}

// MinutelyPrecip is one 5-minute precipitation interval.
type MinutelyPrecip struct {
	FxTime string `json:"fxTime"`
	Precip string `json:"precip"`
}

// MinutelyRain is the 2-hour minutely precipitation outlook.
type MinutelyRain struct {
	Summary  string           `json:"summary"`
	Minutely []MinutelyPrecip `json:"minutely"`
}

// LifeIndex is one daily life index (sport, car wash, dressing ...).
type LifeIndex struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Text     string `json:"text"`
}

// LifeIndices holds the daily life indices.
type LifeIndices struct {
	Daily []LifeIndex `json:"daily"`
}

// Realtime is the current conditions at the configured coordinates.
type Realtime struct {
	Temp      string `json:"temp"`
	FeelsLike string `json:"feelsLike"`
	Humidity  string `json:"humidity"`
	Text      string `json:"text"`
}

// Report bundles every snapshot a run may render. A nil field means the
// snapshot was not fetched or the fetch failed.
type Report struct {
	Forecast *Forecast
	Warnings *WarningReport
	Rain     *MinutelyRain
	Life     *LifeIndices
	Realtime *Realtime
}
