package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/commands/options"
	"tableflip.dev/memoir/pkg/runner/auth"
)

func addLogin(topLevel *cobra.Command, r *root) {
	ao := &options.AccountOptions{}

	cmd := &cobra.Command{
		Use:     "login",
		Aliases: []string{"signin"},
		Short:   "Sign in to the journal service.",
		Example: `
memoir login -u alice -p secret
echo secret | memoir login -u alice --password-stdin
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(a *app.App) error {
				if err := ao.ReadPassword(cmd.InOrStdin()); err != nil {
					return err
				}
				s := auth.Login{
					App:      a,
					Username: ao.Username,
					Password: ao.Password,
					Output:   r.oo.Printer(),
				}
				return s.Do(cmd.Context())
			})
		},
	}
	options.AddAccountArgs(cmd, ao)

	topLevel.AddCommand(cmd)
}

func addRegister(topLevel *cobra.Command, r *root) {
	ao := &options.AccountOptions{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the journal service.",
		Example: `
memoir register -u alice --email alice@example.com -p secret
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(a *app.App) error {
				if err := ao.ReadPassword(cmd.InOrStdin()); err != nil {
					return err
				}
				s := auth.Register{
					App:      a,
					Username: ao.Username,
					Email:    ao.Email,
					Password: ao.Password,
					Output:   r.oo.Printer(),
				}
				return s.Do(cmd.Context())
			})
		},
	}
	options.AddAccountArgs(cmd, ao)
	options.AddEmailArg(cmd, ao)

	topLevel.AddCommand(cmd)
}

func addLogout(topLevel *cobra.Command, r *root) {
	cmd := &cobra.Command{
		Use:     "logout",
		Aliases: []string{"signout"},
		Short:   "Forget the stored session.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(a *app.App) error {
				s := auth.Logout{App: a, Output: r.oo.Printer()}
				return s.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(cmd)
}

func addWhoami(topLevel *cobra.Command, r *root) {
	var follow bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show who is signed in and when the access token expires.",
		Example: `
memoir whoami
memoir whoami --watch
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(a *app.App) error {
				s := auth.Whoami{App: a, Output: r.oo.Printer(), Follow: follow}
				return s.Do(cmd.Context())
			})
		},
	}
	cmd.Flags().BoolVarP(&follow, "watch", "w", false,
		"Keep running and print the session again whenever another process signs in or out.")

	topLevel.AddCommand(cmd)
}

func addRefresh(topLevel *cobra.Command, r *root) {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(a *app.App) error {
				s := auth.Refresh{App: a, Output: r.oo.Printer()}
				return s.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(cmd)
}
