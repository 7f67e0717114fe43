// Package api provides interfaces for dependency injection
package api

import "context"

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves until ctx is cancelled
	StartServer(ctx context.Context, catalog DatasetCatalog, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}

// CatalogFactory opens dataset catalogs
type CatalogFactory interface {
	// OpenCatalog opens or creates the catalog in dataDir
	OpenCatalog(dataDir string, compress bool) (DatasetCatalog, error)
}
