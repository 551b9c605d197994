// Package show prints a single memory.
package show

import (
	"context"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/entry"
	"tableflip.dev/memoir/pkg/printers"
)

type Show struct {
	App    *app.App
	ID     entry.ID
	ShowID bool
	Output printers.Output
	Pretty *printers.PrettyPrint
}

func (n *Show) Do(ctx context.Context) error {
	if err := n.App.RequireSession(); err != nil {
		return err
	}
	m, err := n.App.Collection.Get(ctx, n.ID)
	if err != nil {
		return err
	}
	return n.Output.Print(m, func() {
		pp := n.Pretty
		if pp == nil {
			pp = printers.New(n.ShowID)
		}
		pp.NewLine()
		pp.Memory(m)
	})
}
