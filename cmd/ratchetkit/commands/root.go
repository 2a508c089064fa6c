package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ratchetkit/internal/app"
	"ratchetkit/internal/config"
	"ratchetkit/internal/crypto"
	"ratchetkit/internal/logging"
)

var errNoPassphrase = errors.New("passphrase required (-p or RATCHETKIT_PASSPHRASE)")

type rootOptions struct {
	home       string
	passphrase string
	logLevel   string
	logFormat  string
	kdf        string

	wire *app.Wire
}

func (o *rootOptions) pass() (string, error) {
	if o.passphrase == "" {
		o.passphrase = os.Getenv("RATCHETKIT_PASSPHRASE")
	}
	if o.passphrase == "" {
		return "", errNoPassphrase
	}
	return o.passphrase, nil
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	cfg := config.Load()
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "ratchetkit",
		Short:        "End-to-end encrypted session engine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger(logging.Config{
				Level:  opts.logLevel,
				Format: opts.logFormat,
				Output: cmd.ErrOrStderr(),
			})

			var kdf *crypto.KDFParams
			switch opts.kdf {
			case "", crypto.KDFArgon2id:
			case crypto.KDFScrypt:
				p := crypto.ScryptKDF()
				kdf = &p
			default:
				return fmt.Errorf("unknown --kdf %q (argon2id or scrypt)", opts.kdf)
			}

			w, err := app.NewWire(app.Config{
				Home:   opts.home,
				Logger: logger,
				Policy: cfg.Policy,
				KDF:    kdf,
			})
			if err != nil {
				return err
			}
			opts.wire = w
			logger.Debug("vault opened", "home", opts.home)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.home, "home", cfg.Home, "vault directory (RATCHETKIT_HOME)")
	root.PersistentFlags().StringVarP(&opts.passphrase, "passphrase", "p", "", "vault passphrase (RATCHETKIT_PASSPHRASE)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", cfg.LogFormat, "text or json")
	root.PersistentFlags().StringVar(&opts.kdf, "kdf", "", "passphrase KDF for a new vault: argon2id or scrypt")

	root.AddCommand(
		initCmd(opts),
		identityCmd(opts),
		signCmd(opts),
		otkCmd(opts),
		sessionCmd(opts),
		groupCmd(opts),
		inboundCmd(opts),
	)
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
