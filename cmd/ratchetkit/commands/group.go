package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ratchetkit/internal/domain"
)

func groupCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Send to a group with an outbound group session",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create an outbound group session",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := opts.pass()
				if err != nil {
					return err
				}
				info, err := opts.wire.Groups.Create(pass, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), info)
			},
		},
		&cobra.Command{
			Use:   "encrypt <name> <message>",
			Short: "Encrypt a message to the group",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := opts.pass()
				if err != nil {
					return err
				}
				ct, err := opts.wire.Groups.Encrypt(pass, args[0], []byte(args[1]))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ct)
				return nil
			},
		},
		&cobra.Command{
			Use:   "key <name>",
			Short: "Print the session key to share with recipients",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := opts.pass()
				if err != nil {
					return err
				}
				key, err := opts.wire.Groups.SessionKey(pass, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			},
		},
		&cobra.Command{
			Use:   "info <name>",
			Short: "Print the session id and next message index",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := opts.pass()
				if err != nil {
					return err
				}
				info, err := opts.wire.Groups.Info(pass, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), info)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List outbound and inbound group sessions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				outbound, inbound, err := opts.wire.Groups.List()
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string][]string{
					"outbound": outbound,
					"inbound":  inbound,
				})
			},
		},
	)
	return cmd
}

func inboundCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbound",
		Short: "Receive from a group with an inbound group session",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name> <session-key>",
			Short: "Store an inbound session from a sender's session key",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := opts.pass()
				if err != nil {
					return err
				}
				info, err := opts.wire.Groups.AddInbound(pass, args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), info)
			},
		},
		&cobra.Command{
			Use:   "import <name> <exported-key>",
			Short: "Store an inbound session from an exported key",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := opts.pass()
				if err != nil {
					return err
				}
				info, err := opts.wire.Groups.ImportInbound(pass, args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), info)
			},
		},
		&cobra.Command{
			Use:   "decrypt <name> <message>",
			Short: "Decrypt a group message",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := opts.pass()
				if err != nil {
					return err
				}
				out, err := opts.wire.Groups.Decrypt(pass, args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"message_index": out.MessageIndex,
					"plaintext":     string(out.Plaintext),
				})
			},
		},
		&cobra.Command{
			Use:   "export <name> <index>",
			Short: "Export the inbound session from index onwards",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := opts.pass()
				if err != nil {
					return err
				}
				index, err := strconv.ParseUint(args[1], 10, 32)
				if err != nil {
					return fmt.Errorf("%w: index %q", domain.ErrInvalidArgument, args[1])
				}
				key, err := opts.wire.Groups.Export(pass, args[0], uint32(index))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			},
		},
	)
	return cmd
}
