package options

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const (
	layoutISO      = "2006-1-2"
	layoutISOShort = "1/2"
)

// DateOptions bound the creation date of listed memories.
type DateOptions struct {
	After  string
	Before string

	// Now anchors short dates; zero means time.Now.
	Now func() time.Time
}

func AddDateArgs(cmd *cobra.Command, o *DateOptions) {
	cmd.Flags().StringVar(&o.After, "after", "",
		`Only memories created on or after a date, example: --after="2024-2-28" or --after="2/28".`)
	cmd.Flags().StringVar(&o.Before, "before", "",
		`Only memories created on or before a date, example: --before="2024-3-31".`)
}

func (o *DateOptions) GetAfter() (*time.Time, error) {
	return o.parse("after", o.After)
}

func (o *DateOptions) GetBefore() (*time.Time, error) {
	return o.parse("before", o.Before)
}

func (o *DateOptions) parse(flag, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	now := time.Now()
	if o.Now != nil {
		now = o.Now()
	}
	t, err := time.ParseInLocation(layoutISO, v, now.Location())
	if err != nil {
		t, err = time.ParseInLocation(layoutISOShort, v, now.Location())
		if err != nil {
			return nil, fmt.Errorf("--%s: %q is not a date like 2024-2-28 or 2/28", flag, v)
		}
		t = t.AddDate(now.Year(), 0, 0)
		// A journal looks back, so 12/5 typed on 1/3 means last December.
		if t.After(now) {
			t = t.AddDate(-1, 0, 0)
		}
	}
	return &t, nil
}
