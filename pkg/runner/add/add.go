// Package add creates memories.
package add

import (
	"context"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/entry"
	"tableflip.dev/memoir/pkg/printers"
)

// Add creates Draft. With Detect set and no emotion chosen, the emotion and
// intensity come from the service's analysis of the content first.
type Add struct {
	App    *app.App
	Draft  entry.Draft
	Detect bool
	ShowID bool
	Output printers.Output
	Pretty *printers.PrettyPrint
}

func (n *Add) Do(ctx context.Context) error {
	if err := n.App.RequireSession(); err != nil {
		return err
	}

	d := n.Draft
	if n.Detect && d.Emotion == "" {
		a, err := n.App.Collection.AnalyzeEmotion(ctx, d.Content)
		if err != nil {
			return err
		}
		d.Emotion = a.Emotion
		d.EmotionIntensity = a.Intensity
		n.App.Log.Sugar().Debugw("detected emotion", "emotion", a.Emotion, "intensity", a.Intensity)
	}

	m, err := n.App.Collection.Create(ctx, d)
	if err != nil {
		return err
	}
	return n.Output.Print(m, func() {
		pp := n.Pretty
		if pp == nil {
			pp = printers.New(n.ShowID)
		}
		pp.NewLine()
		pp.Title("Added")
		pp.Memories(m)
	})
}
