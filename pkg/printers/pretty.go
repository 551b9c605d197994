package printers

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mattn/go-isatty"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/memoir/pkg/entry"
)

const defaultWidth = 80

type PrettyPrint struct {
	ShowID bool
	// Width wraps memory content; zero prints it as stored.
	Width int
	Out   io.Writer
}

// New returns a printer on color.Output that wraps content only when stdout
// is a terminal.
func New(showID bool) *PrettyPrint {
	pp := &PrettyPrint{ShowID: showID, Out: color.Output}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		pp.Width = defaultWidth
	}
	return pp
}

var (
	spacing = strings.Repeat(" ", len("00000000  "))
)

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " memory")
	default:
		_, _ = c.Fprintln(pp.out(), " memories")
	}
}

// Memories prints one row per memory in the order given.
func (pp *PrettyPrint) Memories(ms ...entry.Memory) {
	if len(ms) == 0 {
		f := color.New(color.Faint, color.Italic)
		if pp.ShowID {
			_, _ = f.Fprint(pp.out(), spacing)
		}
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	d := color.New(color.Faint)
	tg := color.New(color.FgCyan)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, m := range ms {
		row := make([]interface{}, 0, 5)
		if pp.ShowID {
			row = append(row, y.Sprint(m.ID))
		}
		row = append(row,
			d.Sprint(entry.FormatDate(m.CreatedAt.Local())),
			m.DisplayEmotion().Glyph().Symbol,
			m.Title,
			tg.Sprint(hashTags(m.TagNames())),
		)
		tbl.AddRow(row...)
	}
	if pp.ShowID {
		tbl.RightAlign(0)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Memory prints a single memory with its content.
func (pp *PrettyPrint) Memory(m entry.Memory) {
	b := color.New(color.Bold)
	f := color.New(color.Faint)
	tg := color.New(color.FgCyan)

	g := m.DisplayEmotion().Glyph()
	_, _ = b.Fprintf(pp.out(), "%s %s\n", g.Symbol, m.Title)
	if pp.ShowID {
		_, _ = f.Fprintf(pp.out(), "id        %s\n", m.ID)
	}
	_, _ = f.Fprintf(pp.out(), "created   %s\n", m.CreatedAt.Local().Format("Mon Jan 2 2006 15:04"))
	_, _ = f.Fprintf(pp.out(), "emotion   %s (%.0f%%)\n", g.Meaning, m.EmotionIntensity*100)
	if m.Location != "" {
		_, _ = f.Fprintf(pp.out(), "location  %s\n", m.Location)
	}
	if len(m.Tags) > 0 {
		_, _ = f.Fprint(pp.out(), "tags      ")
		_, _ = tg.Fprintln(pp.out(), hashTags(m.TagNames()))
	}
	if m.Image != "" {
		_, _ = f.Fprintf(pp.out(), "image     %s\n", m.Image)
	}
	pp.NewLine()

	content := m.Content
	if pp.Width > 0 {
		content = wordwrap.String(content, pp.Width)
	}
	_, _ = fmt.Fprintln(pp.out(), content)
	pp.NewLine()
}

func hashTags(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "#" + n
	}
	return strings.Join(out, " ")
}
