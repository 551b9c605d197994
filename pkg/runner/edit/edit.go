// Package edit updates memories in place.
package edit

import (
	"context"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/entry"
	"tableflip.dev/memoir/pkg/gateway"
	"tableflip.dev/memoir/pkg/printers"
)

type Edit struct {
	App    *app.App
	ID     entry.ID
	Patch  entry.Patch
	Output printers.Output
	Pretty *printers.PrettyPrint
}

func (n *Edit) Do(ctx context.Context) error {
	if err := n.App.RequireSession(); err != nil {
		return err
	}
	if n.Patch.Empty() {
		return gateway.Invalid(nil, "nothing to change, pass at least one field flag")
	}

	m, err := n.App.Collection.Update(ctx, n.ID, n.Patch)
	if err != nil {
		return err
	}
	return n.Output.Print(m, func() {
		pp := n.Pretty
		if pp == nil {
			pp = printers.New(true)
		}
		pp.NewLine()
		pp.Memory(m)
	})
}
