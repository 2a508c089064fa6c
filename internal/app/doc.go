// Package app wires application dependencies for the CLI.
//
// It builds the vault and the high-level services from Config, exposing
// them via the Wire struct for commands to use.
package app
