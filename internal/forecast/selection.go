package forecast

import (
	"sort"
	"time"
)

const (
	// CurrentGraceWindow is how far in the past a record may lie and still
	// count as the current reading.
	CurrentGraceWindow = 3 * time.Hour

	// DefaultDailyDays is the number of calendar days in the daily sample.
	DefaultDailyDays = 5

	// dailyTargetHour is the local hour each day's representative record is
	// chosen around.
	dailyTargetHour = 12
)

// DefaultTargetHours are the hours of day sampled by SelectHourly.
var DefaultTargetHours = []int{6, 12, 18, 21}

// HourlyEntry is one target hour of the same-day sample.
type HourlyEntry struct {
	Hour   int       `json:"hour"`
	Target time.Time `json:"target"`
	Record Record    `json:"record"`
}

// DailyEntry is one calendar day of the daily sample. Date is midnight of
// that day in the reference zone.
type DailyEntry struct {
	Date   time.Time `json:"date"`
	Record Record    `json:"record"`
}

// NearestTo returns the record whose timestamp is closest to target. Ties go
// to the earliest timestamp. A positive window limits candidates to those at
// most window away from target; window <= 0 means no limit.
func NearestTo(records []Record, target time.Time, window time.Duration) (Record, bool) {
	var (
		best     Record
		bestDiff time.Duration
		found    bool
	)

	for _, r := range records {
		diff := absDuration(r.Timestamp.Sub(target))
		if window > 0 && diff > window {
			continue
		}
		if !found || diff < bestDiff || (diff == bestDiff && r.Timestamp.Before(best.Timestamp)) {
			best = r
			bestDiff = diff
			found = true
		}
	}

	return best, found
}

// SelectCurrent returns the record nearest to now among those no older than
// now minus CurrentGraceWindow.
func SelectCurrent(records []Record, now time.Time) (Record, bool) {
	cutoff := now.Add(-CurrentGraceWindow)

	eligible := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.Timestamp.Before(cutoff) {
			eligible = append(eligible, r)
		}
	}

	return NearestTo(eligible, now, 0)
}

// SelectHourly samples now's calendar day at each target hour. Only records
// on the same date as now (in now's zone) are considered, and each hour is
// searched independently, so one record may serve several hours. There is no
// distance cap: on a sparse day a record hours away from a target still wins.
// Hours with no same-day record at all are left out of the result.
func SelectHourly(records []Record, now time.Time, targetHours []int) []HourlyEntry {
	if len(targetHours) == 0 {
		targetHours = DefaultTargetHours
	}

	zone := now.Location()
	today := startOfDay(now)

	var todays []Record
	for _, r := range records {
		if startOfDay(r.Timestamp.In(zone)).Equal(today) {
			todays = append(todays, r)
		}
	}
	if len(todays) == 0 {
		return nil
	}

	entries := make([]HourlyEntry, 0, len(targetHours))
	for _, hour := range targetHours {
		target := time.Date(today.Year(), today.Month(), today.Day(), hour, 0, 0, 0, zone)
		rec, ok := NearestTo(todays, target, 0)
		if !ok {
			continue
		}
		entries = append(entries, HourlyEntry{
			Hour:   hour,
			Target: target,
			Record: rec,
		})
	}

	return entries
}

// SelectDaily returns one record per calendar day starting today, at most
// maxDays days, each chosen nearest to noon of its day. Days without records
// are absent rather than padded. maxDays <= 0 selects DefaultDailyDays.
func SelectDaily(records []Record, now time.Time, maxDays int) []DailyEntry {
	if maxDays <= 0 {
		maxDays = DefaultDailyDays
	}

	zone := now.Location()
	today := startOfDay(now)

	type dayKey string

	var (
		dayRecords = make(map[dayKey][]Record)
		dayStarts  = make(map[dayKey]time.Time)
	)
	for _, r := range records {
		day := startOfDay(r.Timestamp.In(zone))
		if day.Before(today) {
			continue
		}
		k := dayKey(day.Format("2006-01-02"))
		dayRecords[k] = append(dayRecords[k], r)
		dayStarts[k] = day
	}
	if len(dayRecords) == 0 {
		return nil
	}

	keys := make([]string, 0, len(dayRecords))
	for k := range dayRecords {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	if len(keys) > maxDays {
		keys = keys[:maxDays]
	}

	entries := make([]DailyEntry, 0, len(keys))
	for _, k := range keys {
		day := dayStarts[dayKey(k)]
		target := time.Date(day.Year(), day.Month(), day.Day(), dailyTargetHour, 0, 0, 0, zone)
		rec, ok := NearestTo(dayRecords[dayKey(k)], target, 0)
		if !ok {
			continue
		}
		entries = append(entries, DailyEntry{
			Date:   day,
			Record: rec,
		})
	}

	return entries
}

// startOfDay returns midnight of t's date in t's own zone.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
