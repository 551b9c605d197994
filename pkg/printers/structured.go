package printers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"tableflip.dev/memoir/pkg/gateway"
)

// Format selects how command results are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json or yaml; empty is text.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return Format(raw), nil
	}
	return "", fmt.Errorf("unknown output format %q, expected one of text, json, yaml", raw)
}

// Envelope is the structured result of every command.
type Envelope struct {
	Success   bool         `json:"success"`
	Data      interface{}  `json:"data,omitempty"`
	ErrorKind gateway.Kind `json:"errorKind,omitempty"`
	Message   string       `json:"message,omitempty"`
	Fields    interface{}  `json:"fields,omitempty"`
}

// Success wraps data.
func Success(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// Failure describes err. Errors that did not come from the gateway carry
// the ClientError kind since they stem from bad input.
func Failure(err error) Envelope {
	env := Envelope{Message: err.Error(), ErrorKind: gateway.KindOf(err)}
	if env.ErrorKind == "" {
		env.ErrorKind = gateway.ClientError
	}
	if fields := gateway.FieldsOf(err); len(fields) > 0 {
		env.Fields = fields
	}
	return env
}

// Write encodes env to w in format f. YAML goes through the JSON form so
// both formats share field names.
func Write(w io.Writer, f Format, env Envelope) error {
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return err
	}
	if f != FormatYAML {
		_, err = fmt.Fprintln(w, string(b))
		return err
	}

	var generic interface{}
	if err := json.Unmarshal(b, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

// Output routes a command result either to an envelope or to a text
// renderer.
type Output struct {
	Format Format
	Out    io.Writer
}

// Structured reports whether results are written as an envelope.
func (o Output) Structured() bool {
	return o.Format == FormatJSON || o.Format == FormatYAML
}

// Print writes data as an envelope, or calls text for the text format.
func (o Output) Print(data interface{}, text func()) error {
	if !o.Structured() {
		text()
		return nil
	}
	return Write(o.out(), o.Format, Success(data))
}

func (o Output) out() io.Writer {
	if o.Out == nil {
		return color.Output
	}
	return o.Out
}
