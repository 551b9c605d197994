package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/memoir/pkg/emotion"
	"tableflip.dev/memoir/pkg/entry"
	"tableflip.dev/memoir/pkg/stats"
)

const barWidth = 30

func bar(n, top int) string {
	if top <= 0 || n <= 0 {
		return ""
	}
	w := n * barWidth / top
	if w == 0 {
		w = 1
	}
	return strings.Repeat("█", w)
}

// Distribution prints one bar per emotion, largest first.
func (pp *PrettyPrint) Distribution(s stats.EmotionStats) {
	total := s.Total()
	if total == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}
	order := s.Sorted()
	top := s[order[0]]

	c := color.New(color.FgHiMagenta)
	f := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, e := range order {
		g := e.Glyph()
		label := string(e)
		if !e.Known() {
			label = fmt.Sprintf("%s (%s)", e, g.Meaning)
		}
		tbl.AddRow(g.Symbol, label, s[e], c.Sprint(bar(s[e], top)), f.Sprintf("%.0f%%", float64(s[e])*100/float64(total)))
	}
	tbl.RightAlign(2)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Overview prints the headline numbers.
func (pp *PrettyPrint) Overview(o stats.Overview) {
	b := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("Total", b.Sprint(o.Total))
	tbl.AddRow("Today", b.Sprint(o.Today))
	tbl.AddRow("Emotions", b.Sprint(o.Distinct))
	g := o.Dominant.Glyph()
	tbl.AddRow("Dominant", b.Sprintf("%s %s", g.Symbol, g.Meaning))
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Insights prints the derived activity figures.
func (pp *PrettyPrint) Insights(in stats.Insights) {
	b := color.New(color.Bold)

	busiest := "-"
	if in.MostActiveDay != nil {
		busiest = entry.FormatDate(*in.MostActiveDay)
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("Most active", b.Sprint(busiest))
	tbl.AddRow("Active days", b.Sprint(in.ActiveDays))
	tbl.AddRow("Per day", b.Sprintf("%.1f", in.AveragePerDay))
	tbl.AddRow("Memories", b.Sprint(in.TotalMemories))
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Timeline prints a bar per active day, oldest first.
func (pp *PrettyPrint) Timeline(days ...stats.Day) {
	if len(days) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}
	top := 0
	for _, d := range days {
		if d.Count > top {
			top = d.Count
		}
	}

	c := color.New(color.FgHiBlue)
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, d := range days {
		row := []interface{}{entry.FormatDate(d.Date), d.Count, c.Sprint(bar(d.Count, top))}
		if d.Emotions != nil {
			row = append(row, d.Emotions.Dominant().Glyph().Symbol)
		}
		tbl.AddRow(row...)
	}
	tbl.RightAlign(1)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Key prints the emotion legend.
func (pp *PrettyPrint) Key(glyphs ...emotion.Glyph) {
	bold := color.New(color.Bold)
	f := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Emotion"), bold.Sprint("Meaning"), bold.Sprint("Aliases"))
	for _, g := range glyphs {
		tbl.AddRow(g.Symbol, g.Meaning, f.Sprint(strings.Join(g.Aliases, ", ")))
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}
