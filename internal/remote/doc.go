// Package remote moves file contents between the workspace and the FTP or
// SFTP server that mirrors it.
//
// A [Gateway] maps a local path to its remote counterpart, opens a [Transport]
// for the configured protocol, performs a single get or put and closes the
// connection again. There is no connection pooling and nothing is retried.
//
// Each transfer publishes an event.TransferEvent whether it succeeds or not.
// Failures come back as *errors.TransferError carrying the server's message.
package remote
