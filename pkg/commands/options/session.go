package options

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// AccountOptions hold sign in and registration input.
type AccountOptions struct {
	Username      string
	Email         string
	Password      string
	PasswordStdin bool
}

func AddAccountArgs(cmd *cobra.Command, o *AccountOptions) {
	cmd.Flags().StringVarP(&o.Username, "username", "u", "",
		"Account username.")
	cmd.Flags().StringVarP(&o.Password, "password", "p", "",
		"Account password.")
	cmd.Flags().BoolVar(&o.PasswordStdin, "password-stdin", false,
		"Read the password from stdin.")
}

func AddEmailArg(cmd *cobra.Command, o *AccountOptions) {
	cmd.Flags().StringVar(&o.Email, "email", "",
		"Account email address.")
}

// ReadPassword resolves --password-stdin against in.
func (o *AccountOptions) ReadPassword(in io.Reader) error {
	if !o.PasswordStdin {
		return nil
	}
	if o.Password != "" {
		return errors.New("--password and --password-stdin are mutually exclusive")
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	o.Password = strings.TrimRight(line, "\r\n")
	return nil
}
