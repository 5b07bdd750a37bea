// Package library enumerates PDF documents under the allow-listed roots.
package library

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is one discovered PDF file.
type Entry struct {
	Path string
	Size int64
}

// List walks the given directories and collects files with a
// case-insensitive .pdf suffix, sorted by path. Directories that do not
// exist are skipped; subtrees that cannot be read are skipped rather than
// aborting the whole walk.
func List(dirs []string) ([]Entry, error) {
	var entries []Entry

	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}

		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrPermission) {
					if d != nil && d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(path), ".pdf") {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return nil
			}
			entries = append(entries, Entry{Path: path, Size: info.Size()})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})

	return entries, nil
}

// SizeMB converts a byte count to megabytes.
func SizeMB(size int64) float64 {
	return float64(size) / (1024 * 1024)
}
