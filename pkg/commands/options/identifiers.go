package options

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/memoir/pkg/entry"
)

// IDOptions
type IDOptions struct {
	ShowID bool
	IDs    []entry.ID
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show the ID of each memory.")
}

// IDArgs is a cobra.PositionalArgs that requires at least one memory id.
func (o *IDOptions) IDArgs(_ *cobra.Command, args []string) error {
	if len(args) < 1 {
		return errors.New("requires a memory id")
	}
	o.IDs = o.IDs[:0]
	for _, a := range args {
		a = strings.TrimSpace(a)
		if a == "" {
			return errors.New("memory id must not be blank")
		}
		o.IDs = append(o.IDs, entry.ID(a))
	}
	return nil
}
