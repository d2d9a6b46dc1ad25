package views

import (
	"time"
)

// HourlyItem is one entry of today's hourly strip.
type HourlyItem struct {
	Label string `json:"label"`
	Reading
}

// CurrentState is what the current-weather panel renders.
type CurrentState struct {
	Location  string       `json:"location"`
	HasData   bool         `json:"hasData"`
	Current   *Reading     `json:"current,omitempty"`
	Hourly    []HourlyItem `json:"hourly"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// CurrentPanel shows the current reading and today's hourly sample.
type CurrentPanel struct {
	panel
	hours []int
	state CurrentState
}

// NewCurrentPanel subscribes a panel to src and renders it once. hours
// selects the hourly targets; none means forecast.DefaultTargetHours.
func NewCurrentPanel(src Source, hours ...int) *CurrentPanel {
	p := &CurrentPanel{hours: hours}
	p.start(src, p.Refresh)
	return p
}

// Refresh re-reads the views from the source.
func (p *CurrentPanel) Refresh() {
	next := CurrentState{
		Location:  p.src.Location(),
		Hourly:    []HourlyItem{},
		UpdatedAt: p.src.Now(),
	}

	if rec, ok := p.src.Current(); ok {
		r := newReading(rec)
		next.Current = &r
		next.HasData = true
	}

	for _, e := range p.src.Hourly(p.hours...) {
		next.Hourly = append(next.Hourly, HourlyItem{
			Label:   e.Target.Format("15:04"),
			Reading: newReading(e.Record),
		})
	}

	p.mu.Lock()
	p.state = next
	p.mu.Unlock()
}

// State returns the last rendered state.
func (p *CurrentPanel) State() CurrentState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}
