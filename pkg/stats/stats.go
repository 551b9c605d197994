// Package stats derives emotion summaries from journal memories, either
// locally from loaded entries or from the service's precomputed aggregate.
package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tableflip.dev/memoir/pkg/emotion"
	"tableflip.dev/memoir/pkg/entry"
)

// EmotionStats counts memories per emotion. Emotions with no memories are
// absent, not zero.
type EmotionStats map[emotion.Emotion]int

// Total sums the counts.
func (s EmotionStats) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

// Dominant returns the most frequent emotion; ties go to the earlier emotion
// in display order, then by name. Empty stats report Neutral.
func (s EmotionStats) Dominant() emotion.Emotion {
	best, bestN := emotion.Neutral, 0
	for _, e := range s.Sorted() {
		if s[e] > bestN {
			best, bestN = e, s[e]
		}
	}
	return best
}

// Sorted lists the emotions present, known ones in display order first and
// unknown raw values after them alphabetically.
func (s EmotionStats) Sorted() []emotion.Emotion {
	out := make([]emotion.Emotion, 0, len(s))
	for _, e := range emotion.All() {
		if s[e] > 0 {
			out = append(out, e)
		}
	}
	var unknown []emotion.Emotion
	for e, n := range s {
		if n > 0 && !e.Known() {
			unknown = append(unknown, e)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return append(out, unknown...)
}

// Aggregate counts memories by their stored emotion value.
func Aggregate(ms []entry.Memory) EmotionStats {
	out := EmotionStats{}
	for _, m := range ms {
		out[m.Emotion]++
	}
	return out
}

// Source picks where GetStats reads from.
type Source int

const (
	SourceLocal Source = iota
	SourceRemote
)

func (s Source) String() string {
	if s == SourceRemote {
		return "remote"
	}
	return "local"
}

// ParseSource accepts "local" or "remote".
func ParseSource(raw string) (Source, error) {
	switch raw {
	case "", "local":
		return SourceLocal, nil
	case "remote":
		return SourceRemote, nil
	default:
		return SourceLocal, fmt.Errorf("stats: unknown source %q", raw)
	}
}

// Entries supplies the loaded memories for local aggregation.
type Entries interface {
	Entries() []entry.Memory
}

// Remote fetches the precomputed aggregate.
type Remote interface {
	EmotionStats(ctx context.Context) (map[emotion.Emotion]int, error)
}

// Aggregator answers GetStats from either source with the same shape.
type Aggregator struct {
	local  Entries
	remote Remote
}

func NewAggregator(local Entries, remote Remote) *Aggregator {
	return &Aggregator{local: local, remote: remote}
}

// GetStats returns the emotion counts from src.
func (a *Aggregator) GetStats(ctx context.Context, src Source) (EmotionStats, error) {
	if src == SourceLocal {
		return Aggregate(a.local.Entries()), nil
	}
	counts, err := a.remote.EmotionStats(ctx)
	if err != nil {
		return nil, err
	}
	out := make(EmotionStats, len(counts))
	for e, n := range counts {
		if n > 0 {
			out[e] = n
		}
	}
	return out, nil
}

// Overview is the headline summary of a set of memories.
type Overview struct {
	Total    int             `json:"total"`
	Today    int             `json:"today"`
	Distinct int             `json:"distinct"`
	Dominant emotion.Emotion `json:"dominant"`
}

// Summarize builds an Overview; Today counts memories on now's calendar day
// in now's location.
func Summarize(ms []entry.Memory, now time.Time) Overview {
	counts := Aggregate(ms)
	today := 0
	y, mo, d := now.Date()
	for _, m := range ms {
		if m.CreatedAt.IsZero() {
			continue
		}
		my, mmo, md := m.CreatedAt.In(now.Location()).Date()
		if my == y && mmo == mo && md == d {
			today++
		}
	}
	return Overview{
		Total:    len(ms),
		Today:    today,
		Distinct: len(counts),
		Dominant: counts.Dominant(),
	}
}
