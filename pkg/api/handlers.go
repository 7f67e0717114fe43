package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/dtafile/pkg/catalog"
	"github.com/ssargent/dtafile/pkg/dta"
	"github.com/ssargent/dtafile/pkg/export"
)

const (
	defaultRowLimit = 100
	maxRowLimit     = 10000
)

// Server holds the API server state
type Server struct {
	catalog DatasetCatalog
	config  ServerConfig
	metrics *Metrics
	cache   *datasetCache
	logger  *slog.Logger
}

// NewServer creates a new API server
func NewServer(catalog DatasetCatalog, config ServerConfig, metrics *Metrics) (*Server, error) {
	cache, err := newDatasetCache(config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset cache: %w", err)
	}
	if config.TargetVersion == 0 {
		config.TargetVersion = dta.Version8
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		catalog: catalog,
		config:  config,
		metrics: metrics,
		cache:   cache,
		logger:  logger,
	}, nil
}

// statusFor maps codec and catalog errors to HTTP status codes
func statusFor(err error) int {
	var codecErr *dta.Error
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &codecErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) sendFailure(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	sendError(w, err.Error(), status)
}

func (s *Server) decode(data []byte) (*dta.Dataset, error) {
	start := time.Now()
	ds, err := dta.Decode(bytes.NewReader(data), s.config.CodecOptions...)
	s.metrics.RecordCodecOperation("decode", err == nil, time.Since(start), len(data))
	return ds, err
}

// load returns the decoded dataset for id, from the cache when possible
func (s *Server) load(id ksuid.KSUID) (*catalog.Entry, *dta.Dataset, error) {
	if cached, ok := s.cache.get(id); ok {
		s.metrics.RecordCacheLookup(true)
		return cached.entry, cached.ds, nil
	}
	s.metrics.RecordCacheLookup(false)

	entry, data, err := s.catalog.Get(id)
	s.metrics.RecordCatalogOperation("get", err == nil)
	if err != nil {
		return nil, nil, err
	}
	ds, err := s.decode(data)
	if err != nil {
		return nil, nil, err
	}
	s.cache.add(id, entry, ds)
	return entry, ds, nil
}

func datasetID(r *http.Request) (ksuid.KSUID, error) {
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return ksuid.Nil, fmt.Errorf("invalid dataset id: %w", err)
	}
	return id, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]any{
		"status":        "healthy",
		"cached":        s.cache.len(),
		"target_format": s.config.TargetVersion.String(),
	})
}

// handleUpload stores a .dta file after checking that it decodes
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	body := io.Reader(r.Body)
	if s.config.MaxUpload > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxUpload)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		sendError(w, "Request body is empty", http.StatusBadRequest)
		return
	}

	ds, err := s.decode(data)
	if err != nil {
		s.sendFailure(w, err)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload.dta"
	}
	entry, err := s.catalog.Put(catalog.Entry{
		Name:      path.Base(name),
		Version:   ds.Version.String(),
		Rows:      ds.Rows,
		Variables: len(ds.Columns),
	}, data)
	s.metrics.RecordCatalogOperation("put", err == nil)
	if err != nil {
		s.sendFailure(w, err)
		return
	}
	s.cache.add(entry.ID, entry, ds)
	s.logger.Info("stored dataset", "id", entry.ID.String(), "name", entry.Name, "bytes", entry.Size)

	w.Header().Set("Location", "/api/v1/datasets/"+entry.ID.String())
	w.Header().Set("ETag", entry.ETag())
	sendStatus(w, DatasetResponse{Entry: entry, Summary: export.Summarize(ds)}, http.StatusCreated)
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry, ds, err := s.load(id)
	if err != nil {
		s.sendFailure(w, err)
		return
	}
	w.Header().Set("ETag", entry.ETag())
	sendSuccess(w, DatasetResponse{Entry: entry, Summary: export.Summarize(ds)})
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

// handleRows returns a window of rows. labels=true substitutes value labels
// and dates=true renders date columns as YYYY-MM-DD.
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit, err := queryInt(r, "limit", defaultRowLimit)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if limit == 0 || limit > maxRowLimit {
		limit = maxRowLimit
	}

	_, ds, err := s.load(id)
	if err != nil {
		s.sendFailure(w, err)
		return
	}
	sendSuccess(w, export.Slice(ds, offset, limit, export.Options{
		ApplyLabels: queryBool(r, "labels"),
		Dates:       queryBool(r, "dates"),
	}))
}

// handleDownload re-encodes the dataset in the requested generation
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	version := s.config.TargetVersion
	if raw := r.URL.Query().Get("version"); raw != "" {
		version, err = dta.ParseVersion(raw)
		if err != nil || !version.Writable() {
			sendError(w, fmt.Sprintf("Cannot write version %q, use 6, 7 or 8", raw), http.StatusBadRequest)
			return
		}
	}

	entry, ds, err := s.load(id)
	if err != nil {
		s.sendFailure(w, err)
		return
	}

	var buf bytes.Buffer
	start := time.Now()
	err = dta.Encode(&buf, ds, version, nil, s.config.CodecOptions...)
	s.metrics.RecordCodecOperation("encode", err == nil, time.Since(start), buf.Len())
	if err != nil {
		s.sendFailure(w, err)
		return
	}

	filename := strings.TrimSuffix(entry.Name, path.Ext(entry.Name)) + ".dta"
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = s.catalog.Delete(id)
	s.metrics.RecordCatalogOperation("delete", err == nil)
	s.cache.remove(id)
	if err != nil {
		s.sendFailure(w, err)
		return
	}
	sendSuccess(w, map[string]string{"status": "deleted", "id": id.String()})
}
