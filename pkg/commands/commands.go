package commands

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/commands/options"
	"tableflip.dev/memoir/pkg/config"
	"tableflip.dev/memoir/pkg/gateway"
	"tableflip.dev/memoir/pkg/store"
)

// Factory builds the App a command runs against.
type Factory func(cfg *config.Config, opts ...app.Option) (*app.App, error)

// root holds the global flags and the App shared by one invocation.
type root struct {
	oo         options.OutputOptions
	api        string
	logLevel   string
	ephemeral  bool
	metricsOut string

	factory Factory
	app     *app.App
}

func New() *cobra.Command {
	return NewWithFactory(app.New)
}

// NewWithFactory builds the command tree with f creating the App.
func NewWithFactory(f Factory) *cobra.Command {
	r := &root{factory: f}

	cmd := &cobra.Command{
		Use:           "memoir",
		Short:         base.Wrap80("An emotional memory journal on the command line."),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return r.close()
		},
	}

	options.AddOutputArg(cmd, &r.oo)
	cmd.PersistentFlags().StringVar(&r.api, "api", "",
		"Base URL of the journal service, overrides MEMOIR_API.")
	cmd.PersistentFlags().StringVar(&r.logLevel, "log-level", "",
		"Log level written to stderr, overrides MEMOIR_LOG_LEVEL.")
	cmd.PersistentFlags().BoolVar(&r.ephemeral, "ephemeral", false,
		"Keep the session in memory only.")
	cmd.PersistentFlags().StringVar(&r.metricsOut, "metrics-out", "",
		"Write request metrics in the Prometheus text format to a file.")

	addCommands(cmd, r)
	return cmd
}

func addCommands(topLevel *cobra.Command, r *root) {
	addLogin(topLevel, r)
	addRegister(topLevel, r)
	addLogout(topLevel, r)
	addWhoami(topLevel, r)
	addRefresh(topLevel, r)
	addList(topLevel, r)
	addSearch(topLevel, r)
	addAdd(topLevel, r)
	addEdit(topLevel, r)
	addDelete(topLevel, r)
	addShow(topLevel, r)
	addStats(topLevel, r)
	addCalendar(topLevel, r)
	addDashboard(topLevel, r)
	addAnalyze(topLevel, r)
	addKey(topLevel, r)
	addInfo(topLevel, r)
	addVersion(topLevel, r)
	addCompletions(topLevel)
	addUpgrade(topLevel, r)
}

// App returns the App for this invocation, building it on first use.
func (r *root) App() (*app.App, error) {
	if r.app != nil {
		return r.app, nil
	}
	if err := r.oo.Validate(); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if r.api != "" {
		cfg.API = r.api
	}
	if r.logLevel != "" {
		cfg.Log.Level = r.logLevel
	}
	var opts []app.Option
	if r.ephemeral {
		opts = append(opts, app.WithCredentials(store.NewMemory()))
	}
	a, err := r.factory(cfg, opts...)
	if err != nil {
		return nil, err
	}
	r.app = a
	return a, nil
}

// run builds the App, hands it to do and reports the outcome in the
// selected format.
func (r *root) run(cmd *cobra.Command, do func(a *app.App) error) error {
	r.bind(cmd)
	a, err := r.App()
	if err != nil {
		return r.oo.HandleError(err)
	}
	if err = do(a); err != nil {
		a.Log.Debug("command failed",
			zap.String("command", cmd.CommandPath()),
			zap.String("kind", string(gateway.KindOf(err))),
			zap.Error(err))
		// PersistentPostRunE is skipped on failure.
		if cerr := r.close(); cerr != nil {
			a.Log.Warn("close", zap.Error(cerr))
		}
	}
	return r.oo.HandleError(err)
}

// bind points structured output at cmd's writer when one was set.
func (r *root) bind(cmd *cobra.Command) {
	cmd.SilenceUsage = true
	if w := cmd.OutOrStdout(); w != os.Stdout {
		r.oo.Out = w
	}
}

func (r *root) close() error {
	if r.app == nil {
		return nil
	}
	defer r.app.Close()
	if r.metricsOut != "" {
		if err := prometheus.WriteToTextfile(r.metricsOut, r.app.Registry); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
