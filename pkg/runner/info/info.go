package info

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/printers"
)

// Details is the structured form of info.
type Details struct {
	ConfigPathEnv string `json:"configPathEnv,omitempty"`
	API           string `json:"api"`
	CredentialDir string `json:"credentialDir"`
	Persistent    bool   `json:"persistent"`
	Username      string `json:"username,omitempty"`
	State         string `json:"state"`
}

type Info struct {
	App    *app.App
	Output printers.Output
}

func (n *Info) Do(_ context.Context) error {
	_, persistent := n.App.Credentials.(interface{ BasePath() string })
	d := Details{
		ConfigPathEnv: os.Getenv("MEMOIR_CONFIG_PATH"),
		API:           n.App.Config.API,
		CredentialDir: n.App.Config.BasePath(),
		Persistent:    persistent,
		Username:      n.App.Session.Username(),
		State:         n.App.Session.State().String(),
	}

	return n.Output.Print(d, func() {
		w := color.Output
		if d.ConfigPathEnv != "" {
			_, _ = fmt.Fprintln(w, "MEMOIR_CONFIG_PATH found on env, using ", d.ConfigPathEnv)
		} else {
			_, _ = fmt.Fprintln(w, "MEMOIR_CONFIG_PATH env var not set")
		}
		_, _ = fmt.Fprintln(w, "API: ", d.API)
		if d.Persistent {
			_, _ = fmt.Fprintln(w, "Config.path: ", d.CredentialDir)
		} else {
			_, _ = fmt.Fprintln(w, "Config.path:  (ephemeral, credentials kept in memory)")
		}
		if d.Username != "" {
			_, _ = fmt.Fprintf(w, "Session:  %s as %s\n", d.State, d.Username)
		} else {
			_, _ = fmt.Fprintf(w, "Session:  %s\n", d.State)
		}
	})
}
