package forecast

import (
	"sort"
	"strings"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// IconCode returns the OpenWeather icon code for the condition, so that
// records from every provider render with the same icon set.
func (c Condition) IconCode(day bool) string {
	var code string
	switch c {
	case ConditionClear:
		code = "01"
	case ConditionCloudy:
		code = "03"
	case ConditionRain:
		code = "10"
	case ConditionSnow:
		code = "13"
	case ConditionStorm:
		code = "11"
	case ConditionMist:
		code = "50"
	default:
		return ""
	}
	if day {
		return code + "d"
	}
	return code + "n"
}

// Location represents a logical place for which we load a forecast.
// Country is optional.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country,omitempty"`
}

// ParseLocation splits a "City" or "City,Country" query.
func ParseLocation(query string) Location {
	city, country, _ := strings.Cut(strings.TrimSpace(query), ",")
	return Location{
		City:    strings.TrimSpace(city),
		Country: strings.TrimSpace(country),
	}
}

// Query returns the location in the "City,Country" form accepted by providers.
func (l Location) Query() string {
	if l.Country == "" {
		return l.City
	}
	return l.City + "," + l.Country
}

// IsZero reports whether no city is set.
func (l Location) IsZero() bool {
	return l.City == ""
}

// ConditionTag is one condition entry attached to a record.
type ConditionTag struct {
	Description string `json:"description"`
	IconCode    string `json:"icon"`
}

// Record is one forecast sample at a point in time. Records are treated as
// immutable values once loaded.
type Record struct {
	Timestamp      time.Time      `json:"timestamp"`
	Temperature    float64        `json:"temperatureC"`
	MinTemperature float64        `json:"minTemperatureC"`
	MaxTemperature float64        `json:"maxTemperatureC"`
	Humidity       int            `json:"humidityPercent"`
	WindSpeed      float64        `json:"windSpeed"`
	WindDirection  int            `json:"windDirection"`
	Conditions     []ConditionTag `json:"conditions"`
}

// PrimaryCondition returns the first condition tag, if any.
func (r Record) PrimaryCondition() (ConditionTag, bool) {
	if len(r.Conditions) == 0 {
		return ConditionTag{}, false
	}
	return r.Conditions[0], true
}

// Series is the full ordered set of records for one location.
type Series struct {
	Location string    `json:"location"`
	Records  []Record  `json:"records"`
	LoadedAt time.Time `json:"loadedAt,omitempty"`
}

// Empty reports whether the series holds no records.
func (s Series) Empty() bool {
	return len(s.Records) == 0
}

// Normalize returns a copy of records ordered ascending by timestamp with
// duplicate timestamps collapsed. When a timestamp repeats, the record that
// appeared last in the input wins.
func Normalize(records []Record) []Record {
	if len(records) == 0 {
		return nil
	}

	out := make([]Record, len(records))
	copy(out, records)

	// Stable keeps input order among equal timestamps, so the last one in each
	// run is the last one in the input.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	n := 0
	for i := range out {
		if n > 0 && out[n-1].Timestamp.Equal(out[i].Timestamp) {
			out[n-1] = out[i]
			continue
		}
		out[n] = out[i]
		n++
	}
	return out[:n]
}
