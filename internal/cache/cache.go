// Package cache keeps a bounded record of codes that were already redeemed.
package cache

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Limit is the maximum number of codes retained
const Limit = 50

// FileName is the cache file inside the config directory
const FileName = "cache.txt"

// Cache is an insertion-ordered list of redeemed codes with FIFO eviction
type Cache struct {
	data []string
}

// New returns an empty cache
func New() *Cache {
	return &Cache{data: make([]string, 0, Limit)}
}

// Contains reports whether code was pushed before (exact match)
func (c *Cache) Contains(code string) bool {
	return slices.Contains(c.data, code)
}

// Push appends code, dropping the oldest entry when the cache is full
func (c *Cache) Push(code string) {
	if len(c.data) >= Limit {
		c.data = slices.Delete(c.data, 0, len(c.data)-Limit+1)
	}
	c.data = append(c.data, code)
}

// Bust drops every entry
func (c *Cache) Bust() {
	c.data = c.data[:0]
}

// Len returns the number of entries
func (c *Cache) Len() int {
	return len(c.data)
}

// Entries returns a copy of the entries, oldest first
func (c *Cache) Entries() []string {
	return slices.Clone(c.data)
}

// Store loads and persists a cache
type Store interface {
	Load() (*Cache, error)
	Save(c *Cache) error
}

// File is a line-oriented cache file
type File struct {
	Path string
}

// NewFile returns the cache file living in dir
func NewFile(dir string) *File {
	return &File{Path: filepath.Join(dir, FileName)}
}

// Load reads the cache file. A missing file is an empty cache. On any other
// error an empty cache is returned alongside the error.
func (f *File) Load() (*Cache, error) {
	c := New()

	file, err := os.Open(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("%w: %v", ErrRead, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.Push(line)
	}
	if err := scanner.Err(); err != nil {
		return New(), fmt.Errorf("%w: %v", ErrRead, err)
	}

	return c, nil
}

// Save writes every entry on its own line, creating the directory if needed
func (f *File) Save(c *Cache) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	data := strings.Join(c.data, "\n")
	if err := os.WriteFile(f.Path, []byte(data), 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	return nil
}

// Disabled never remembers anything
type Disabled struct{}

// Load returns an empty cache
func (Disabled) Load() (*Cache, error) { return New(), nil }

// Save does nothing
func (Disabled) Save(*Cache) error { return nil }
