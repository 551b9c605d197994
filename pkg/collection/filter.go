package collection

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"tableflip.dev/memoir/pkg/emotion"
	"tableflip.dev/memoir/pkg/entry"
)

// Ordering is the server-side sort applied to list fetches.
type Ordering string

const (
	// OrderNewest is the default, most recent first.
	OrderNewest Ordering = "-created_at"
	OrderOldest Ordering = "created_at"
	// OrderIntensity and OrderTitle tie-break however the service does.
	OrderIntensity Ordering = "emotion_intensity"
	OrderTitle     Ordering = "title"
)

// AllOrderings returns the supported orderings.
func AllOrderings() []Ordering {
	return []Ordering{
		OrderNewest,
		OrderOldest,
		OrderIntensity,
		OrderTitle,
	}
}

// ParseOrdering converts a string to an Ordering. The short names newest,
// oldest and intensity are accepted too. Empty input yields OrderNewest.
func ParseOrdering(raw string) (Ordering, error) {
	o := Ordering(strings.ToLower(strings.TrimSpace(raw)))
	switch o {
	case "":
		return OrderNewest, nil
	case "newest":
		return OrderNewest, nil
	case "oldest":
		return OrderOldest, nil
	case "intensity":
		return OrderIntensity, nil
	}
	for _, candidate := range AllOrderings() {
		if candidate == o {
			return candidate, nil
		}
	}
	return OrderNewest, fmt.Errorf("collection: unknown ordering %q", raw)
}

// FilterSpec selects and orders the list view. Changing it always triggers a
// refetch; filtering is never done locally.
type FilterSpec struct {
	Emotion       emotion.Emotion
	Ordering      Ordering
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// DefaultFilters is every emotion, newest first.
func DefaultFilters() FilterSpec {
	return FilterSpec{Ordering: OrderNewest}
}

// Query encodes f as the list endpoint's query parameters.
func (f FilterSpec) Query() url.Values {
	q := url.Values{}
	if f.Emotion != "" {
		q.Set("emotion", string(f.Emotion))
	}
	ordering := f.Ordering
	if ordering == "" {
		ordering = OrderNewest
	}
	q.Set("ordering", string(ordering))
	if f.CreatedAfter != nil {
		q.Set("created_after", entry.FormatDate(*f.CreatedAfter))
	}
	if f.CreatedBefore != nil {
		q.Set("created_before", entry.FormatDate(*f.CreatedBefore))
	}
	return q
}

// Equal compares by value, including the dates' calendar day.
func (f FilterSpec) Equal(o FilterSpec) bool {
	return f.Emotion == o.Emotion &&
		f.Ordering == o.Ordering &&
		sameDate(f.CreatedAfter, o.CreatedAfter) &&
		sameDate(f.CreatedBefore, o.CreatedBefore)
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return entry.FormatDate(*a) == entry.FormatDate(*b)
}

func (f FilterSpec) clone() FilterSpec {
	if f.CreatedAfter != nil {
		t := *f.CreatedAfter
		f.CreatedAfter = &t
	}
	if f.CreatedBefore != nil {
		t := *f.CreatedBefore
		f.CreatedBefore = &t
	}
	return f
}
