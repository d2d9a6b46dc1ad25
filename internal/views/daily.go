package views

import (
	"time"

	"github.com/i474232898/forecast-aggregation/internal/forecast"
)

// DayItem is one day of the multi-day panel.
type DayItem struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Reading
}

// DailyState is what the multi-day panel renders.
type DailyState struct {
	Location  string    `json:"location"`
	HasData   bool      `json:"hasData"`
	Days      []DayItem `json:"days"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DailyPanel shows one representative reading per day.
type DailyPanel struct {
	panel
	maxDays int
	state   DailyState
}

// NewDailyPanel subscribes a panel to src and renders it once. maxDays <= 0
// means forecast.DefaultDailyDays.
func NewDailyPanel(src Source, maxDays int) *DailyPanel {
	p := &DailyPanel{maxDays: maxDays}
	p.start(src, p.Refresh)
	return p
}

// Refresh re-reads the daily view from the source.
func (p *DailyPanel) Refresh() {
	now := p.src.Now()
	next := DailyState{
		Location:  p.src.Location(),
		Days:      []DayItem{},
		UpdatedAt: now,
	}

	for _, e := range p.src.Daily(p.maxDays) {
		// Days without any condition are skipped; there is nothing to draw.
		if _, ok := e.Record.PrimaryCondition(); !ok {
			continue
		}
		next.Days = append(next.Days, DayItem{
			Date:    e.Date,
			Label:   DayLabel(e.Date, now),
			Reading: newReading(e.Record),
		})
	}
	next.HasData = len(next.Days) > 0

	p.mu.Lock()
	p.state = next
	p.mu.Unlock()
}

// State returns the last rendered state.
func (p *DailyPanel) State() DailyState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// DayLabel names date relative to now: "Today", "Tomorrow" or "02 Jan".
func DayLabel(date, now time.Time) string {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	dy, dm, dd := date.In(now.Location()).Date()
	day := time.Date(dy, dm, dd, 0, 0, 0, 0, now.Location())

	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	default:
		return date.Format("02 Jan")
	}
}

var _ Source = (*forecast.Service)(nil)
