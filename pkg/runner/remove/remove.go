// Package remove deletes memories.
package remove

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/entry"
	"tableflip.dev/memoir/pkg/printers"
)

// Remove deletes IDs in order and stops at the first failure.
type Remove struct {
	App    *app.App
	IDs    []entry.ID
	Output printers.Output
}

func (n *Remove) Do(ctx context.Context) error {
	if err := n.App.RequireSession(); err != nil {
		return err
	}

	deleted := make([]entry.ID, 0, len(n.IDs))
	for _, id := range n.IDs {
		if err := n.App.Collection.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
		deleted = append(deleted, id)
	}
	return n.Output.Print(map[string][]entry.ID{"deleted": deleted}, func() {
		s := color.New(color.CrossedOut, color.Faint)
		for _, id := range deleted {
			_, _ = fmt.Fprintf(color.Output, "deleted %s\n", s.Sprint(id))
		}
	})
}
