// Package http implements the HTTP transport layer of the application.
//
// It exposes the document API over the encrypted collections, the session
// endpoint used by the login flow, and the version and metrics endpoints.
// Request tracing, access logging, metrics and security-context resolution
// are handled here before requests reach the collections.
package http
