package options

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/memoir/pkg/printers"
)

// ErrReported is returned once a failure has already been written as a
// structured envelope, so main only sets the exit code.
var ErrReported = errors.New("error already reported")

// OutputOptions
type OutputOptions struct {
	JSON   bool
	Output string

	// Out receives structured results; nil is color.Output.
	Out io.Writer
}

// AddOutputArg registers --json and --output as persistent flags.
func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.PersistentFlags().BoolVar(&po.JSON, "json", false,
		"Output as JSON, shorthand for --output=json.")
	cmd.PersistentFlags().StringVarP(&po.Output, "output", "o", "text",
		"Output format. One of 'text', 'json' or 'yaml'.")
}

// Format resolves the selected format; --json wins over --output.
func (o *OutputOptions) Format() (printers.Format, error) {
	if o.JSON {
		return printers.FormatJSON, nil
	}
	return printers.ParseFormat(o.Output)
}

// Structured reports whether results are written as an envelope.
func (o *OutputOptions) Structured() bool {
	return o.Printer().Structured()
}

// Printer returns the result writer for the selected format. An invalid
// --output falls back to text; Validate reports it.
func (o *OutputOptions) Printer() printers.Output {
	f, err := o.Format()
	if err != nil {
		f = printers.FormatText
	}
	return printers.Output{Format: f, Out: o.writer()}
}

// Validate rejects an unknown --output.
func (o *OutputOptions) Validate() error {
	_, err := o.Format()
	return err
}

// HandleError writes err as a failure envelope when a structured format is
// selected.
func (o *OutputOptions) HandleError(err error) error {
	if err == nil || !o.Structured() {
		return err
	}
	if werr := printers.Write(o.writer(), o.Printer().Format, printers.Failure(err)); werr != nil {
		return fmt.Errorf("%v (writing output: %w)", err, werr)
	}
	return ErrReported
}

func (o *OutputOptions) writer() io.Writer {
	if o.Out == nil {
		return color.Output
	}
	return o.Out
}
