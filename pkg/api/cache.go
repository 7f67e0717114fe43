package api

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/dtafile/pkg/catalog"
	"github.com/ssargent/dtafile/pkg/dta"
)

// cachedDataset is a decoded upload. Datasets in the cache are shared
// between requests and must not be modified.
type cachedDataset struct {
	entry *catalog.Entry
	ds    *dta.Dataset
}

// datasetCache is an LRU of decoded datasets. A nil cache stores nothing.
type datasetCache struct {
	lru *lru.Cache[ksuid.KSUID, cachedDataset]
}

func newDatasetCache(size int) (*datasetCache, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := lru.New[ksuid.KSUID, cachedDataset](size)
	if err != nil {
		return nil, err
	}
	return &datasetCache{lru: c}, nil
}

func (c *datasetCache) get(id ksuid.KSUID) (cachedDataset, bool) {
	if c == nil {
		return cachedDataset{}, false
	}
	return c.lru.Get(id)
}

func (c *datasetCache) add(id ksuid.KSUID, entry *catalog.Entry, ds *dta.Dataset) {
	if c == nil {
		return
	}
	c.lru.Add(id, cachedDataset{entry: entry, ds: ds})
}

func (c *datasetCache) remove(id ksuid.KSUID) {
	if c == nil {
		return
	}
	c.lru.Remove(id)
}

func (c *datasetCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
