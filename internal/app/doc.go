// Package app assembles the application: configuration, logging, the
// fetcher and stores, the service layer and the HTTP router, plus server
// lifecycle with graceful shutdown.
package app
