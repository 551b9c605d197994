package options

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/memoir/pkg/emotion"
	"tableflip.dev/memoir/pkg/entry"
)

// MemoryOptions hold the editable fields of a memory.
type MemoryOptions struct {
	Title     string
	Content   string
	Emotion   string
	Intensity float64
	Location  string
	Tags      string
	Image     string
	Detect    bool
}

func AddMemoryArgs(cmd *cobra.Command, o *MemoryOptions) {
	cmd.Flags().StringVarP(&o.Title, "title", "t", "",
		"Title of the memory.")
	cmd.Flags().StringVarP(&o.Emotion, "emotion", "e", "",
		"Emotion of the memory, see `memoir key`.")
	cmd.Flags().Float64Var(&o.Intensity, "intensity", 0,
		"Emotion intensity between 0 and 1.")
	cmd.Flags().StringVar(&o.Location, "location", "",
		"Where it happened.")
	cmd.Flags().StringVar(&o.Tags, "tags", "",
		`Comma separated tags, example: --tags="summer,family".`)
	cmd.Flags().StringVar(&o.Image, "image", "",
		"URL of an image to attach.")
}

func AddDetectArg(cmd *cobra.Command, o *MemoryOptions) {
	cmd.Flags().BoolVar(&o.Detect, "detect", false,
		"Ask the service to detect the emotion before saving.")
}

// SetContent joins positional args into the content.
func (o *MemoryOptions) SetContent(args []string) {
	if len(args) > 0 {
		o.Content = strings.Join(args, " ")
	}
}

// Draft builds the create payload; validation happens in the collection.
func (o *MemoryOptions) Draft() (entry.Draft, error) {
	d := entry.NewDraft(o.Title, o.Content)
	e, err := emotion.Parse(o.Emotion)
	if err != nil {
		return d, fmt.Errorf("--emotion: %w", err)
	}
	d.Emotion = e
	d.EmotionIntensity = o.Intensity
	d.Location = o.Location
	d.Tags = entry.ParseTags(o.Tags)
	d.Image = o.Image
	return d, nil
}

// Patch builds an update carrying only the flags set on cmd, plus content
// when given positionally.
func (o *MemoryOptions) Patch(cmd *cobra.Command) (entry.Patch, error) {
	var p entry.Patch
	changed := cmd.Flags().Changed
	if changed("title") {
		p.Title = &o.Title
	}
	if o.Content != "" {
		p.Content = &o.Content
	}
	if changed("emotion") {
		e, err := emotion.Parse(o.Emotion)
		if err != nil {
			return p, fmt.Errorf("--emotion: %w", err)
		}
		p.Emotion = &e
	}
	if changed("intensity") {
		p.EmotionIntensity = &o.Intensity
	}
	if changed("location") {
		p.Location = &o.Location
	}
	if changed("tags") {
		tags := entry.ParseTags(o.Tags)
		p.Tags = &tags
	}
	if changed("image") {
		p.Image = &o.Image
	}
	return p, nil
}
