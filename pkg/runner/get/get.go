// Package get lists and searches memories.
package get

import (
	"context"
	"strings"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/collection"
	"tableflip.dev/memoir/pkg/entry"
	"tableflip.dev/memoir/pkg/printers"
)

// Get loads the collection with Filters, or runs a semantic search when
// Query is set, and prints the result.
type Get struct {
	App     *app.App
	Filters collection.FilterSpec
	Query   string
	ShowID  bool
	Output  printers.Output
	Pretty  *printers.PrettyPrint
}

func (n *Get) Do(ctx context.Context) error {
	if err := n.App.RequireSession(); err != nil {
		return err
	}

	title := "Memories"
	var err error
	if strings.TrimSpace(n.Query) != "" {
		title = "Search: " + n.Query
		err = n.App.Collection.Search(ctx, n.Query)
	} else {
		err = n.App.Collection.SetFilters(ctx, n.Filters)
	}
	if err != nil {
		return err
	}

	st := n.App.Collection.State()
	if st.Entries == nil {
		st.Entries = []entry.Memory{}
	}
	return n.Output.Print(st.Entries, func() {
		pp := n.Pretty
		if pp == nil {
			pp = printers.New(n.ShowID)
		}
		pp.NewLine()
		pp.TitleWithCount(title, len(st.Entries))
		pp.Memories(st.Entries...)
	})
}
