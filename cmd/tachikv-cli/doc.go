// Command tachikv-cli is the command-line client for tachikv.
package main
