// Package server runs the HTTP server, including signal handling and
// graceful shutdown.
package server
