package printers

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/memoir/pkg/emotion"
	"tableflip.dev/memoir/pkg/entry"
	"tableflip.dev/memoir/pkg/gateway"
	"tableflip.dev/memoir/pkg/stats"
)

func init() {
	color.NoColor = true
}

func memory() entry.Memory {
	return entry.Memory{
		ID:               "42",
		Title:            "Beach",
		Content:          "A long walk along the water at sunset with the dog.",
		Emotion:          emotion.Joy,
		EmotionIntensity: 0.8,
		Tags:             []entry.Tag{{Tag: "summer"}, {Tag: "dog"}},
		CreatedAt:        entry.Timestamp{Time: time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local)},
	}
}

func TestMemories(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{ShowID: true, Out: &buf}
	pp.Memories(memory())

	out := buf.String()
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "2024-05-01")
	assert.Contains(t, out, "😊")
	assert.Contains(t, out, "#summer #dog")

	buf.Reset()
	pp.Memories()
	assert.Contains(t, buf.String(), "none")
}

func TestMemoryWrapsContent(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Width: 20, Out: &buf}
	pp.Memory(memory())

	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "A long") {
			assert.LessOrEqual(t, len(line), 20)
		}
	}
	assert.Contains(t, buf.String(), "joy (80%)")
}

func TestUnknownEmotionShowsNeutral(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.Distribution(stats.EmotionStats{"nostalgia": 1, emotion.Joy: 3})
	out := buf.String()
	assert.Contains(t, out, "nostalgia (neutral)")
	assert.Contains(t, out, "75%")
}

func TestTitleWithCount(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.TitleWithCount("Memories", 1)
	pp.TitleWithCount("Memories", 2)
	assert.Equal(t, "Memories - 1 memory\nMemories - 2 memories\n", buf.String())
}

func TestCalendarBoldsActiveDays(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	now := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	pp.Calendar(now, stats.Day{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Count: 2})
	out := buf.String()
	assert.Contains(t, out, "May 2024")
	assert.Contains(t, out, "June 2024")
	assert.Equal(t, 31, DaysIn(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Wednesday, StartDay(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)))
}

func TestWriteEnvelope(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, Success(map[string]int{"total": 3})))
	assert.JSONEq(t, `{"success":true,"data":{"total":3}}`, buf.String())

	buf.Reset()
	err := gateway.Invalid(map[string][]string{"title": {"is required"}}, "")
	require.NoError(t, Write(&buf, FormatJSON, Failure(err)))
	assert.JSONEq(t, `{"success":false,"errorKind":"ClientError","message":"ClientError: title: is required","fields":{"title":["is required"]}}`, buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, FormatYAML, Success(memory())))
	assert.Contains(t, buf.String(), "success: true")
	assert.Contains(t, buf.String(), "emotion_intensity: 0.8")

	buf.Reset()
	require.NoError(t, Write(&buf, FormatJSON, Failure(errors.New("bad flag"))))
	assert.Contains(t, buf.String(), `"errorKind": "ClientError"`)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
