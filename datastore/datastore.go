// Package datastore is a small persistent key-value store backed by one JSON
// file. Values live in memory; a background routine flushes them atomically
// on an interval, and a checksum skips the write when nothing changed.
package datastore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const autoSaveInterval = 10 * time.Second

type DataStore struct {
	mu   sync.RWMutex
	data map[string]any

	file         string
	lastChecksum string

	closeMu sync.Mutex
	closed  bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// New opens (or creates) the store at filePath and starts the auto-save
// routine. Call Close to stop it and flush.
func New(filePath string) (*DataStore, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	ds := &DataStore{
		data: make(map[string]any),
		file: filePath,
		done: make(chan struct{}),
	}
	if err := ds.load(); err != nil {
		return nil, err
	}

	ds.wg.Add(1)
	go ds.autoSave()
	return ds, nil
}

// Add stores a value under key. The value must be JSON-marshalable.
func (ds *DataStore) Add(key string, value any) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.data[key] = value
}

// Get retrieves the value stored under key, reporting whether it exists.
func (ds *DataStore) Get(key string) (any, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	value, exists := ds.data[key]
	return value, exists
}

// Close stops the auto-save routine and flushes once more. Safe to call
// more than once.
func (ds *DataStore) Close() error {
	ds.closeMu.Lock()
	if ds.closed {
		ds.closeMu.Unlock()
		return nil
	}
	ds.closed = true
	ds.closeMu.Unlock()

	close(ds.done)
	ds.wg.Wait()
	return ds.flush()
}

func (ds *DataStore) load() error {
	raw, err := os.ReadFile(ds.file)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", ds.file, err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", ds.file, err)
	}
	ds.data = data
	ds.lastChecksum = checksum(raw)
	return nil
}

// flush writes the current data to disk via a temp file and rename, so a
// crash mid-write never leaves a torn file behind.
func (ds *DataStore) flush() error {
	ds.mu.RLock()
	raw, err := json.MarshalIndent(ds.data, "", "  ")
	ds.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	sum := checksum(raw)
	if sum == ds.lastChecksum {
		return nil
	}

	tmp := ds.file + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	f, err := os.OpenFile(tmp, os.O_RDWR, 0o644)
	if err != nil {
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	f.Close()
	if err := os.Rename(tmp, ds.file); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	ds.lastChecksum = sum
	return nil
}

func (ds *DataStore) autoSave() {
	defer ds.wg.Done()

	ticker := time.NewTicker(autoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ds.done:
			return
		case <-ticker.C:
			if err := ds.flush(); err != nil {
				log.Printf("[datastore] auto-save: %v", err)
			}
		}
	}
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
