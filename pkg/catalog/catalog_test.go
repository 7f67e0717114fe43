package catalog

import (
	"bytes"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T, compress bool) *Catalog {
	t.Helper()
	c, err := Open(t.TempDir(), compress)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalog_PutGet(t *testing.T) {
	for _, compress := range []bool{false, true} {
		c := openTestCatalog(t, compress)
		data := bytes.Repeat([]byte("dta payload "), 500)

		entry, err := c.Put(Entry{Name: "survey.dta", Version: "8", Rows: 10, Variables: 3}, data)
		require.NoError(t, err)
		assert.False(t, entry.ID.IsNil())
		assert.Equal(t, int64(len(data)), entry.Size)
		assert.Equal(t, compress, entry.Compressed)

		got, blob, err := c.Get(entry.ID)
		require.NoError(t, err)
		assert.Equal(t, data, blob)
		assert.Equal(t, "survey.dta", got.Name)
		assert.Equal(t, 10, got.Rows)
		assert.Equal(t, entry.Checksum, got.Checksum)
		assert.Equal(t, entry.ETag(), got.ETag())
	}
}

func TestCatalog_NotFound(t *testing.T) {
	c := openTestCatalog(t, true)
	id := ksuid.New()

	_, err := c.Stat(id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = c.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, c.Delete(id), ErrNotFound)
}

func TestCatalog_Delete(t *testing.T) {
	c := openTestCatalog(t, false)
	entry, err := c.Put(Entry{Name: "a.dta"}, []byte{113, 2, 1, 0})
	require.NoError(t, err)

	require.NoError(t, c.Delete(entry.ID))
	_, _, err = c.Get(entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_DetectsCorruption(t *testing.T) {
	c := openTestCatalog(t, false)
	entry, err := c.Put(Entry{Name: "a.dta"}, []byte("original"))
	require.NoError(t, err)

	require.NoError(t, c.db.Set(key(blobPrefix, entry.ID), []byte("tampered"), nil))
	_, _, err = c.Get(entry.ID)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestCatalog_Reopen(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir, true)
	require.NoError(t, err)
	entry, err := c.Put(Entry{Name: "keep.dta"}, []byte("persisted bytes"))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = Open(dir, false)
	require.NoError(t, err)
	defer c.Close()
	_, blob, err := c.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted bytes"), blob)
}
