package api

import (
	"log/slog"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/dtafile/pkg/catalog"
	"github.com/ssargent/dtafile/pkg/dta"
	"github.com/ssargent/dtafile/pkg/export"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// DatasetResponse is returned by upload and lookup
type DatasetResponse struct {
	Entry   *catalog.Entry  `json:"entry"`
	Summary *export.Summary `json:"summary"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port          int
	Bind          string
	APIKey        string
	CacheSize     int   // decoded datasets kept in memory, 0 disables the cache
	MaxUpload     int64 // bytes
	TargetVersion dta.Version
	CodecOptions  []dta.Option
	Logger        *slog.Logger
}

// DatasetCatalog stores raw .dta files
type DatasetCatalog interface {
	Put(entry catalog.Entry, data []byte) (*catalog.Entry, error)
	Get(id ksuid.KSUID) (*catalog.Entry, []byte, error)
	Stat(id ksuid.KSUID) (*catalog.Entry, error)
	Delete(id ksuid.KSUID) error
	Close() error
}
