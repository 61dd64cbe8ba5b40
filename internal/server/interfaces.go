package server

// Server defines the lifecycle contract of the application server.
type Server interface {
	// RunServer serves requests until SIGTERM, SIGINT or SIGQUIT arrives
	// or the listener fails, then shuts down gracefully.
	RunServer() error

	// Shutdown gracefully stops the server and frees associated resources.
	Shutdown()
}
