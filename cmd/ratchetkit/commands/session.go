package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ratchetkit/internal/domain"
)

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidArgument, s)
	}
	return n, nil
}

func parseMessageType(s string) (domain.MessageType, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: message type %q is not a number", domain.ErrInvalidArgument, s)
	}
	return domain.ParseMessageType(n)
}

func sessionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Establish and use pairwise sessions",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "outbound <peer> <identity-key> <one-time-key>",
			Short: "Start a session with a peer from their published keys",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := opts.pass()
				if err != nil {
					return err
				}
				id, err := opts.wire.Sessions.Outbound(pass, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session: %s\n", id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "inbound <peer> <identity-key> <ciphertext>",
			Short: "Create a session from a peer's first (pre-key) message",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := opts.pass()
				if err != nil {
					return err
				}
				msg := domain.OlmMessage{Type: domain.MessageTypePreKey, Ciphertext: args[2]}
				plaintext, err := opts.wire.Sessions.Inbound(pass, args[0], args[1], msg)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(plaintext))
				return nil
			},
		},
		&cobra.Command{
			Use:   "encrypt <peer> <message>",
			Short: "Encrypt a message for a peer; prints {type, body} as JSON",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := opts.pass()
				if err != nil {
					return err
				}
				msg, err := opts.wire.Messages.Encrypt(pass, args[0], []byte(args[1]))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), msg)
			},
		},
		&cobra.Command{
			Use:   "decrypt <peer> <type> <ciphertext>",
			Short: "Decrypt a message from a peer",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := opts.pass()
				if err != nil {
					return err
				}
				typ, err := parseMessageType(args[1])
				if err != nil {
					return err
				}
				plaintext, err := opts.wire.Messages.Decrypt(pass, args[0], domain.OlmMessage{Type: typ, Ciphertext: args[2]})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(plaintext))
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List peers with a stored session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				peers, err := opts.wire.Sessions.List()
				if err != nil {
					return err
				}
				for _, p := range peers {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
				return nil
			},
		},
	)
	return cmd
}
