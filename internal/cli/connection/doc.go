// Package connection provides the client side of the tachikv wire
// protocol for tachikv-cli: a TCP connection that frames commands as
// RESP arrays of bulk strings and decodes the server's replies.
package connection
