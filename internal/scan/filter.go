// Package scan selects the files a directory walk hands to the detector.
package scan

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Filter decides whether a file should be examined, by extension.
type Filter struct {
	AllowedExtensions []string
}

// NewFilter creates a Filter. An empty extension list accepts every file.
func NewFilter(extensions []string) *Filter {
	return &Filter{
		AllowedExtensions: extensions,
	}
}

// ShouldProcess checks if the file at path should be examined.
func (f *Filter) ShouldProcess(path string) bool {
	if len(f.AllowedExtensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range f.AllowedExtensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// Walk calls fn for every regular file in root accepted by the filter,
// descending into subdirectories only when recursive is set. A root that is
// itself a file is passed to fn without filtering.
func (f *Filter) Walk(root string, recursive bool, fn func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			if d.IsDir() {
				return nil
			}
			return fn(path)
		}
		if d.IsDir() && !recursive {
			return fs.SkipDir
		}
		if !d.Type().IsRegular() || !f.ShouldProcess(path) {
			return nil
		}
		return fn(path)
	})
}
