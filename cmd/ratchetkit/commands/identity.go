package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the account and store it in the vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := opts.pass()
			if err != nil {
				return err
			}
			keys, fp, err := opts.wire.Identity.Init(pass)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Account created.\n")
			fmt.Fprintf(out, "Curve25519:  %s\n", keys.Curve25519)
			fmt.Fprintf(out, "Ed25519:     %s\n", keys.Ed25519)
			fmt.Fprintf(out, "Fingerprint: %s\n", fp)
			return nil
		},
	}
}

func identityCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "identity",
		Short: "Print the public identity keys as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := opts.pass()
			if err != nil {
				return err
			}
			keys, err := opts.wire.Identity.IdentityKeys(pass)
			if err != nil {
				return err
			}
			fp, err := opts.wire.Identity.Fingerprint(pass)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"curve25519":  keys.Curve25519,
				"ed25519":     keys.Ed25519,
				"fingerprint": string(fp),
			})
		},
	}
}

func signCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sign <message>",
		Short: "Sign a message with the Ed25519 identity key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := opts.pass()
			if err != nil {
				return err
			}
			sig, err := opts.wire.Identity.Sign(pass, []byte(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sig)
			return nil
		},
	}
}

func otkCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otk",
		Short: "Manage one-time keys",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "generate <n>",
			Short: "Generate n one-time keys and print all unpublished keys",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := opts.pass()
				if err != nil {
					return err
				}
				n, err := parseCount(args[0])
				if err != nil {
					return err
				}
				keys, err := opts.wire.Prekeys.GenerateOneTimeKeys(pass, n)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), keys)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Print unpublished one-time keys",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := opts.pass()
				if err != nil {
					return err
				}
				keys, err := opts.wire.Prekeys.OneTimeKeys(pass)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), keys)
			},
		},
		&cobra.Command{
			Use:   "publish",
			Short: "Mark every unpublished one-time key as published",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := opts.pass()
				if err != nil {
					return err
				}
				n, err := opts.wire.Prekeys.MarkKeysAsPublished(pass)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d keys marked as published\n", n)
				return nil
			},
		},
	)
	return cmd
}
