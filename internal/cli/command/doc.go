// Package command provides the CLI command definitions for
// tachikv-cli.
package command
