package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// TestDiskPathFor verifies the cache file naming scheme.
func TestDiskPathFor(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "report.pdf", []byte("fake pdf bytes"))

	d := NewDisk()
	cacheFile, err := d.PathFor(doc)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(cacheFile))
	base := filepath.Base(cacheFile)
	assert.True(t, strings.HasPrefix(base, "report_ocr_"))
	assert.True(t, strings.HasSuffix(base, ".txt"))
	// 8 hex characters between the tag and the extension.
	hash := strings.TrimSuffix(strings.TrimPrefix(base, "report_ocr_"), ".txt")
	assert.Len(t, hash, 8)
}

// TestDiskStoreLoad verifies the round trip through the persistent tier.
func TestDiskStoreLoad(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "scan.pdf", []byte("scanned pdf content"))

	d := NewDisk()

	text, err := d.Load(doc)
	require.NoError(t, err)
	assert.Empty(t, text, "missing entry loads as empty without error")
	assert.False(t, d.Exists(doc))

	require.NoError(t, d.Store(doc, "ocr result text"))

	assert.True(t, d.Exists(doc))
	text, err = d.Load(doc)
	require.NoError(t, err)
	assert.Equal(t, "ocr result text", text)
}

// TestDiskContentAddressing verifies rename hits and modification misses.
func TestDiskContentAddressing(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "original.pdf", []byte("identical bytes"))

	d := NewDisk()
	require.NoError(t, d.Store(doc, "cached text"))

	// A renamed but byte-identical document still hits the entry: lookup
	// is by content hash, not by the name baked into the cache file.
	renamed := filepath.Join(dir, "renamed.pdf")
	require.NoError(t, os.Rename(doc, renamed))

	assert.True(t, d.Exists(renamed))
	text, err := d.Load(renamed)
	require.NoError(t, err)
	assert.Equal(t, "cached text", text)

	// One changed byte produces a different hash and therefore a miss.
	modified := writeDoc(t, dir, "modified.pdf", []byte("identical bytez"))
	assert.False(t, d.Exists(modified))
	text, err = d.Load(modified)
	require.NoError(t, err)
	assert.Empty(t, text)
}

// TestDiskStoreAtomic verifies no temp files are left behind after a store.
func TestDiskStoreAtomic(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "scan.pdf", []byte("bytes"))

	d := NewDisk()
	require.NoError(t, d.Store(doc, "text"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp-")
	}
}

// TestDiskPathForMissingDocument verifies hashing a missing file fails.
func TestDiskPathForMissingDocument(t *testing.T) {
	d := NewDisk()
	_, err := d.PathFor(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
