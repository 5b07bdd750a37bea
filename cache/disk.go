package cache

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Disk is the persistent tier for whole-document OCR results. Entries are
// plain UTF-8 text files colocated with the source PDF and named
// <basename>_ocr_<first 8 hex chars of the file's MD5>.txt, so a renamed
// but byte-identical document hits the same entry and a modified one
// misses.
type Disk struct{}

// NewDisk creates the persistent cache tier.
func NewDisk() *Disk {
	return &Disk{}
}

// hash returns the first 8 hex characters of the MD5 of the document's
// full byte content.
func (d *Disk) hash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s for hashing: %w", path, err)
	}
	sum := md5.Sum(data)
	return fmt.Sprintf("%x", sum)[:8], nil
}

// PathFor returns the canonical cache file path new entries are written to.
// It reads the document's full byte content to compute the hash.
func (d *Disk) PathFor(path string) (string, error) {
	hash, err := d.hash(path)
	if err != nil {
		return "", err
	}

	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := fmt.Sprintf("%s_ocr_%s.txt", stem, hash)

	return filepath.Join(filepath.Dir(path), name), nil
}

// find locates an existing cache entry for the document. Entries are
// addressed by content, not name: any sibling *_ocr_<hash>.txt file with
// the document's hash counts, so a renamed but byte-identical document
// still hits. The canonical name is preferred when both exist.
func (d *Disk) find(path string) (string, error) {
	canonical, err := d.PathFor(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(canonical); err == nil {
		return canonical, nil
	}

	hash := strings.TrimSuffix(canonical, ".txt")
	hash = hash[strings.LastIndex(hash, "_")+1:]

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*_ocr_"+hash+".txt"))
	if len(matches) > 0 {
		return matches[0], nil
	}
	return "", nil
}

// Exists reports whether a cache entry exists for the document.
func (d *Disk) Exists(path string) bool {
	cacheFile, err := d.find(path)
	return err == nil && cacheFile != ""
}

// Load returns the cached text for the document, or ("", nil) when no
// entry exists.
func (d *Disk) Load(path string) (string, error) {
	cacheFile, err := d.find(path)
	if err != nil {
		return "", err
	}
	if cacheFile == "" {
		return "", nil
	}

	data, err := os.ReadFile(cacheFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read cache file %s: %w", cacheFile, err)
	}

	return string(data), nil
}

// Store writes text to the document's cache entry. The write goes to a
// temp file in the same directory first and is renamed into place, so a
// concurrent reader never sees a partial entry.
func (d *Disk) Store(path, text string) error {
	cacheFile, err := d.PathFor(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(cacheFile), filepath.Base(cacheFile)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), cacheFile); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move cache file into place: %w", err)
	}

	return nil
}
