// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package file is a cache backend keeping one JSON document per entry on
// disk.
package file

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/staranto/blazygo/internal/data"
	"github.com/staranto/blazygo/internal/store"
)

// Dir resolves the base cache directory.
// Precedence:
//  1. BLAZY_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/blazy
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("BLAZY_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "blazy"), true
	}
	return "", false
}

// Enabled returns true unless BLAZY_CACHE explicitly disables it ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("BLAZY_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// Store keeps entries beneath Base/Bin. A Store with an empty Base, or one
// created while caching is disabled, misses every Get and drops every Set.
type Store struct {
	Base string
	// Bin separates unrelated caches sharing a base directory, like cache
	// bins. Defaults to "default".
	Bin      string
	disabled bool
	now      func() time.Time
}

// New returns a Store rooted at base.
func New(base, bin string) *Store {
	if bin == "" {
		bin = "default"
	}
	return &Store{Base: base, Bin: bin, now: time.Now}
}

// NewFromEnv returns a Store rooted at Dir(), honoring Enabled().
func NewFromEnv(bin string) *Store {
	base, ok := Dir()
	s := New(base, bin)
	s.disabled = !ok || !Enabled()
	return s
}

// EnsureBaseDir creates the bin directory if the store is usable. Returns the
// path, whether it is usable, and an error if creation failed.
func (s *Store) EnsureBaseDir() (string, bool, error) {
	if !s.usable() {
		return "", false, nil
	}
	dir := s.binDir()
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return dir, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return dir, true, nil
}

// EntryPath returns the absolute path where the entry for key would live and
// whether a file currently exists there.
func (s *Store) EntryPath(key string) (string, bool) {
	p := filepath.Join(s.binDir(), encodeKey(key))
	if _, err := os.Stat(p); err == nil {
		return p, true
	}
	return p, false
}

func (s *Store) Get(_ context.Context, key string) (*store.Entry, bool, error) {
	if !s.usable() {
		return nil, false, nil
	}
	p, ok := s.EntryPath(key)
	if !ok {
		return nil, false, nil
	}

	e, err := readEntry(p)
	if err != nil {
		return nil, false, err
	}
	if e.Expired(s.now()) {
		log.Debugf("expired cache file %s", p)
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.WithError(err).Warnf("failed to remove cache file %s", p)
		}
		return nil, false, nil
	}
	return e, true, nil
}

func (s *Store) Set(_ context.Context, key string, d data.Data, expire time.Time, tags []string) error {
	if !s.usable() {
		return nil // treat as disabled.
	}
	dir, _, err := s.EnsureBaseDir()
	if err != nil {
		return err
	}

	b, err := json.Marshal(store.NewEntry(key, d, expire, tags))
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}

	p := filepath.Join(dir, encodeKey(key))
	if err := writeAtomic(dir, p, b); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// tmpPrefix marks partially written entries. walk skips them.
const tmpPrefix = ".tmp-"

// writeAtomic writes b to a temp file in dir and renames it onto p, so
// readers see either the old document or the new one.
func writeAtomic(dir, p string, b []byte) error {
	f, err := os.CreateTemp(dir, tmpPrefix+"*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck

	if _, err := f.Write(b); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	if !s.usable() {
		return nil
	}
	for _, k := range keys {
		p, ok := s.EntryPath(k)
		if !ok {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete cache entry %s: %w", k, err)
		}
	}
	return nil
}

func (s *Store) InvalidateTags(_ context.Context, tags ...string) (int, error) {
	if !s.usable() || len(tags) == 0 {
		return 0, nil
	}

	removed := 0
	err := s.walk(func(path string, e *store.Entry) error {
		if !e.HasAnyTag(tags...) {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove cache file %s: %w", path, err)
		}
		log.Debugf("invalidated cache file %s (%s)", path, e.Key)
		removed++
		return nil
	})
	return removed, err
}

// Entries returns every readable entry in the bin.
func (s *Store) Entries() ([]*store.Entry, error) {
	var entries []*store.Entry
	if !s.usable() {
		return entries, nil
	}
	err := s.walk(func(_ string, e *store.Entry) error {
		entries = append(entries, e)
		return nil
	})
	return entries, err
}

// Purge removes files older than the provided number of hours.
// If hours <= 0 or the store is unusable, it is a no-op.
func (s *Store) Purge(hours int) error {
	if hours <= 0 {
		log.Debug("cache cleaning disabled")
		return nil
	}
	if !s.usable() {
		return nil
	}
	maxAge := time.Duration(hours) * time.Hour
	if err := filepath.Walk(s.binDir(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !info.IsDir() && s.now().Sub(info.ModTime()) > maxAge {
			if err := os.Remove(path); err == nil {
				log.Debugf("removed cache file %s", path)
			} else {
				log.WithError(err).Warnf("failed to remove cache file %s", path)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

func (s *Store) usable() bool {
	return !s.disabled && s.Base != ""
}

func (s *Store) binDir() string {
	return filepath.Join(s.Base, s.Bin)
}

// walk calls fn for every entry file in the bin. Unreadable files are logged
// and skipped.
func (s *Store) walk(fn func(path string, e *store.Entry) error) error {
	files, err := os.ReadDir(s.binDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, f := range files {
		if f.IsDir() || strings.HasPrefix(f.Name(), tmpPrefix) {
			continue
		}
		p := filepath.Join(s.binDir(), f.Name())
		e, err := readEntry(p)
		if err != nil {
			log.WithError(err).Warnf("skipping cache file %s", p)
			continue
		}
		if err := fn(p, e); err != nil {
			return err
		}
	}
	return nil
}

func readEntry(p string) (*store.Entry, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file %s: %w", p, err)
	}
	var e store.Entry
	if err := json.Unmarshal(bytes.TrimSpace(b), &e); err != nil {
		return nil, fmt.Errorf("failed to decode cache file %s: %w", p, err)
	}
	return &e, nil
}

// encodeKey hashes k with MD5 and returns the hex string.
func encodeKey(k string) string {
	h := md5.New()
	_, _ = h.Write([]byte(k))
	return hex.EncodeToString(h.Sum(nil))
}
