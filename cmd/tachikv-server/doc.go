// Command tachikv-server runs the tachikv store: a single-core
// in-memory key-value server speaking a RESP subset over TCP.
//
// For multi-core machines, run one instance per core with
// --reuse-port and the kernel balances connections across them.
package main
