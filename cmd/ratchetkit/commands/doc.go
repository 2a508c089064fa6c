// Package commands defines the ratchetkit CLI.
//
// Commands
//
//   - init, identity, sign       Create and inspect the local account
//   - otk generate|list|publish  Manage one-time keys
//   - session outbound|inbound   Establish pairwise sessions
//   - session encrypt|decrypt    Exchange pairwise messages
//   - group create|encrypt|key   Send to a group
//   - inbound add|import|decrypt|export
//     Receive from a group
//
// # Implementation
//
// The root command loads configuration from the environment, applies the
// persistent flags over it and builds the vault and services before any
// subcommand runs. Every state change is pickled back into the vault
// before the command returns. Results go to stdout, logs to stderr.
package commands
