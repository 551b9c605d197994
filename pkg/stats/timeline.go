package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"tableflip.dev/memoir/pkg/emotion"
	"tableflip.dev/memoir/pkg/entry"
	"tableflip.dev/memoir/pkg/timeutil"
)

// Day is the memory count for one calendar day.
type Day struct {
	Date     time.Time    `json:"date"`
	Count    int          `json:"count"`
	Emotions EmotionStats `json:"emotions,omitempty"`
}

// Range bounds a timeline to a trailing window.
type Range string

const (
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
	RangeAll   Range = "all"
)

// ParseRange accepts week, month, year or all, or a day window such as
// "10d" or "2w"; empty is month.
func ParseRange(raw string) (Range, error) {
	r := Range(strings.ToLower(strings.TrimSpace(raw)))
	switch r {
	case "":
		return RangeMonth, nil
	case RangeWeek, RangeMonth, RangeYear, RangeAll:
		return r, nil
	}
	_, label, err := timeutil.ParseDays(string(r))
	if err != nil {
		return RangeMonth, fmt.Errorf("stats: unknown range %q: %w", raw, err)
	}
	return Range(label), nil
}

// Since returns the first day included in r ending at now, and false for
// RangeAll.
func (r Range) Since(now time.Time) (time.Time, bool) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	switch r {
	case RangeWeek:
		return today.AddDate(0, 0, -6), true
	case RangeMonth:
		return today.AddDate(0, -1, 0), true
	case RangeYear:
		return today.AddDate(-1, 0, 0), true
	case RangeAll:
		return time.Time{}, false
	}
	n, _, err := timeutil.ParseDays(string(r))
	if err != nil {
		return time.Time{}, false
	}
	return today.AddDate(0, 0, 1-n), true
}

// Timeline counts memories per calendar day in loc, oldest day first. Days
// without memories are absent.
func Timeline(ms []entry.Memory, loc *time.Location) []Day {
	return days(ms, loc, false)
}

// Trends is Timeline with a per-emotion breakdown for each day.
func Trends(ms []entry.Memory, loc *time.Location) []Day {
	return days(ms, loc, true)
}

func days(ms []entry.Memory, loc *time.Location, breakdown bool) []Day {
	byDay := map[time.Time]*Day{}
	for _, m := range ms {
		if m.CreatedAt.IsZero() {
			continue
		}
		key := m.CreatedAt.Day(loc)
		d, ok := byDay[key]
		if !ok {
			d = &Day{Date: key}
			if breakdown {
				d.Emotions = EmotionStats{}
			}
			byDay[key] = d
		}
		d.Count++
		if breakdown {
			d.Emotions[m.Emotion]++
		}
	}
	out := make([]Day, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Window keeps the days on or after r's start and at most the last limit of
// them; limit <= 0 keeps all.
func Window(ds []Day, r Range, now time.Time, limit int) []Day {
	out := ds
	if since, ok := r.Since(now); ok {
		i := sort.Search(len(ds), func(i int) bool { return !ds[i].Date.Before(since) })
		out = ds[i:]
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Insights are the derived patterns shown next to the timeline.
type Insights struct {
	MostActiveDay *time.Time      `json:"mostActiveDay,omitempty"`
	Dominant      emotion.Emotion `json:"dominant"`
	AveragePerDay float64         `json:"averagePerDay"`
	ActiveDays    int             `json:"activeDays"`
	TotalMemories int             `json:"totalMemories"`
}

// Analyze computes Insights from a timeline and emotion counts. Ties for the
// most active day go to the earliest.
func Analyze(ds []Day, counts EmotionStats) Insights {
	in := Insights{Dominant: counts.Dominant(), ActiveDays: len(ds)}
	best := 0
	for i := range ds {
		in.TotalMemories += ds[i].Count
		if ds[i].Count > best {
			best = ds[i].Count
			date := ds[i].Date
			in.MostActiveDay = &date
		}
	}
	if len(ds) > 0 {
		in.AveragePerDay = float64(in.TotalMemories) / float64(len(ds))
	}
	return in
}
