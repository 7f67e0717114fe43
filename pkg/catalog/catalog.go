// Package catalog persists uploaded .dta files in a pebble database. Blobs
// are keyed by ksuid, checksummed with xxhash and optionally zstd-compressed.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/pebble"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/ksuid"
)

var (
	// ErrNotFound is returned for ids the catalog does not hold.
	ErrNotFound = errors.New("dataset not found")
	// ErrCorrupt is returned when a stored blob fails its checksum.
	ErrCorrupt = errors.New("stored dataset is corrupt")
)

var (
	metaPrefix = []byte("m/")
	blobPrefix = []byte("b/")
)

// Entry describes one stored file.
type Entry struct {
	ID         ksuid.KSUID `json:"id"`
	Name       string      `json:"name"`
	Size       int64       `json:"size"`
	Checksum   uint64      `json:"checksum"`
	Compressed bool        `json:"compressed"`
	Version    string      `json:"version,omitempty"`
	Rows       int         `json:"rows"`
	Variables  int         `json:"variables"`
	CreatedAt  time.Time   `json:"created_at"`
}

// ETag is a strong validator derived from the content checksum.
func (e *Entry) ETag() string {
	return fmt.Sprintf(`"%016x"`, e.Checksum)
}

// Catalog is safe for concurrent use.
type Catalog struct {
	db       *pebble.DB
	compress bool
	enc      *zstd.Encoder
	dec      *zstd.Decoder
}

// Open opens or creates a catalog in dir.
func Open(dir string, compress bool) (*Catalog, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create compressor: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create decompressor: %w", err)
	}
	return &Catalog{db: db, compress: compress, enc: enc, dec: dec}, nil
}

func key(prefix []byte, id ksuid.KSUID) []byte {
	return append(append([]byte{}, prefix...), id.Bytes()...)
}

// Put stores data under a fresh id. entry supplies the descriptive fields;
// the catalog fills in id, size, checksum and creation time.
func (c *Catalog) Put(entry Entry, data []byte) (*Entry, error) {
	entry.ID = ksuid.New()
	entry.Size = int64(len(data))
	entry.Checksum = xxhash.Sum64(data)
	entry.Compressed = c.compress
	entry.CreatedAt = time.Now().UTC()

	blob := data
	if c.compress {
		blob = c.enc.EncodeAll(data, make([]byte, 0, len(data)/2))
	}
	meta, err := json.Marshal(&entry)
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog entry: %w", err)
	}

	batch := c.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(key(blobPrefix, entry.ID), blob, nil); err != nil {
		return nil, err
	}
	if err := batch.Set(key(metaPrefix, entry.ID), meta, nil); err != nil {
		return nil, err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, fmt.Errorf("failed to store dataset: %w", err)
	}
	return &entry, nil
}

// Stat returns the entry for id without reading the blob.
func (c *Catalog) Stat(id ksuid.KSUID) (*Entry, error) {
	raw, err := c.get(key(metaPrefix, id))
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, id, err)
	}
	return &entry, nil
}

// Get returns the entry and the original file bytes.
func (c *Catalog) Get(id ksuid.KSUID) (*Entry, []byte, error) {
	entry, err := c.Stat(id)
	if err != nil {
		return nil, nil, err
	}
	blob, err := c.get(key(blobPrefix, id))
	if err != nil {
		return nil, nil, err
	}
	data := blob
	if entry.Compressed {
		data, err = c.dec.DecodeAll(blob, make([]byte, 0, entry.Size))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, id, err)
		}
	}
	if int64(len(data)) != entry.Size || xxhash.Sum64(data) != entry.Checksum {
		return nil, nil, fmt.Errorf("%w: %s: checksum mismatch", ErrCorrupt, id)
	}
	return entry, data, nil
}

// Delete removes id. Deleting an unknown id returns ErrNotFound.
func (c *Catalog) Delete(id ksuid.KSUID) error {
	if _, err := c.Stat(id); err != nil {
		return err
	}
	batch := c.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(key(blobPrefix, id), nil); err != nil {
		return err
	}
	if err := batch.Delete(key(metaPrefix, id), nil); err != nil {
		return err
	}
	return batch.Commit(pebble.Sync)
}

// get copies the value out; pebble's slice is only valid until the closer runs.
func (c *Catalog) get(k []byte) ([]byte, error) {
	data, closer, err := c.db.Get(k)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	defer closer.Close()
	return bytes.Clone(data), nil
}

func (c *Catalog) Close() error {
	c.enc.Close()
	c.dec.Close()
	return c.db.Close()
}
