// Package views holds presentation models that subscribe to the forecast
// service and keep a render-ready copy of the derived views.
package views

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/i474232898/forecast-aggregation/internal/common"
	"github.com/i474232898/forecast-aggregation/internal/forecast"
)

const iconURLFormat = "https://openweathermap.org/img/wn/%s@2x.png"

// Source is the part of forecast.Service a panel reads from.
type Source interface {
	Location() string
	Now() time.Time
	Current() (forecast.Record, bool)
	Hourly(hours ...int) []forecast.HourlyEntry
	Daily(maxDays int) []forecast.DailyEntry
	Subscribe(h forecast.Handler) forecast.Subscription
	Unsubscribe(sub forecast.Subscription) bool
}

// Reading is a record prepared for display.
type Reading struct {
	Time             time.Time `json:"time"`
	Temperature      float64   `json:"temperatureC"`
	TemperatureLabel string    `json:"temperatureLabel"`
	Humidity         int       `json:"humidityPercent"`
	WindSpeed        float64   `json:"windSpeed"`
	WindDirection    int       `json:"windDirection"`
	Description      string    `json:"description"`
	Icon             string    `json:"icon,omitempty"`
	IconURL          string    `json:"iconUrl,omitempty"`
}

func newReading(r forecast.Record) Reading {
	out := Reading{
		Time:             r.Timestamp,
		Temperature:      r.Temperature,
		TemperatureLabel: fmt.Sprintf("%.0f°C", r.Temperature),
		Humidity:         r.Humidity,
		WindSpeed:        r.WindSpeed,
		WindDirection:    r.WindDirection,
	}
	if tag, ok := r.PrimaryCondition(); ok {
		out.Description = common.CapitalizeFirst(tag.Description)
		out.Icon = tag.IconCode
		out.IconURL = IconURL(tag.IconCode)
	}
	return out
}

// IconURL returns the OpenWeather icon image for an icon code.
func IconURL(code string) string {
	if code == "" {
		return ""
	}
	return fmt.Sprintf(iconURLFormat, code)
}

// panel carries the subscription and activity gate shared by all panels.
// An inactive panel ignores notifications and catches up when it becomes
// active again; nothing is buffered in between.
type panel struct {
	src     Source
	active  atomic.Bool
	sub     forecast.Subscription
	refresh func()

	mu sync.RWMutex
}

func (p *panel) start(src Source, refresh func()) {
	p.src = src
	p.refresh = refresh
	p.active.Store(true)
	p.sub = src.Subscribe(p.onDataChanged)
	refresh()
}

func (p *panel) onDataChanged() {
	if p.active.Load() {
		p.refresh()
	}
}

// SetActive marks the panel visible or hidden. Activating refreshes it.
func (p *panel) SetActive(active bool) {
	p.active.Store(active)
	if active {
		p.refresh()
	}
}

// Active reports whether the panel follows notifications.
func (p *panel) Active() bool {
	return p.active.Load()
}

// Close unsubscribes the panel.
func (p *panel) Close() {
	p.src.Unsubscribe(p.sub)
}
