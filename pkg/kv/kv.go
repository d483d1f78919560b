// Package kv provides a fast key-value store for live-session state using BadgerDB
package kv

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Key prefixes
const (
	PrefixActive = "active:"
	PrefixToken  = "token:"
)

const tokenCacheTTL = 10 * time.Minute

type KV struct {
	db       *badger.DB
	closed   bool
	closedMu sync.RWMutex
}

// Options for the KV store
type Options struct {
	Dir        string // Data directory
	MemoryMode bool   // In-memory only (no persistence)
	SyncWrites bool   // Sync writes to disk
}

// DefaultOptions returns default options
func DefaultOptions(dir string) Options {
	return Options{
		Dir:        dir,
		SyncWrites: false, // Async for performance
	}
}

// Open opens a KV store
func Open(opt Options) (*KV, error) {
	if !opt.MemoryMode && opt.Dir == "" {
		opt.Dir = filepath.Join(".", "kv")
	}

	opts := badger.DefaultOptions(opt.Dir)
	opts.SyncWrites = opt.SyncWrites
	opts.Logger = nil
	if opt.MemoryMode {
		opts.InMemory = true
		opts.Dir = ""
		opts.ValueDir = ""
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger failed: %w", err)
	}

	log.Printf("[KV] Opened: %s (memory: %v)", opt.Dir, opt.MemoryMode)
	return &KV{db: db}, nil
}

// OpenMemory opens an in-memory KV store (used by tests)
func OpenMemory() (*KV, error) {
	return Open(Options{MemoryMode: true})
}

// Close closes the KV store
func (k *KV) Close() error {
	k.closedMu.Lock()
	defer k.closedMu.Unlock()

	if k.closed {
		return nil
	}
	k.closed = true
	return k.db.Close()
}

// Set sets a key-value pair
func (k *KV) Set(key, value string) error {
	k.closedMu.RLock()
	defer k.closedMu.RUnlock()

	if k.closed {
		return fmt.Errorf("KV is closed")
	}
	return k.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

// SetWithTTL sets a key-value pair with TTL
func (k *KV) SetWithTTL(key, value string, ttl time.Duration) error {
	k.closedMu.RLock()
	defer k.closedMu.RUnlock()

	if k.closed {
		return fmt.Errorf("KV is closed")
	}
	return k.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), []byte(value)).WithTTL(ttl)
		return txn.SetEntry(e)
	})
}

// Get gets a value by key
func (k *KV) Get(key string) (string, error) {
	k.closedMu.RLock()
	defer k.closedMu.RUnlock()

	if k.closed {
		return "", fmt.Errorf("KV is closed")
	}

	var result string
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		result = string(val)
		return nil
	})
	return result, err
}

// Delete deletes a key
func (k *KV) Delete(key string) error {
	k.closedMu.RLock()
	defer k.closedMu.RUnlock()

	if k.closed {
		return fmt.Errorf("KV is closed")
	}
	return k.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Count returns the count of keys matching prefix
func (k *KV) Count(prefix string) (int, error) {
	k.closedMu.RLock()
	defer k.closedMu.RUnlock()

	if k.closed {
		return 0, fmt.Errorf("KV is closed")
	}

	count := 0
	err := k.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// ===== Session-specific helpers =====

// MarkActive records a session as having a live connection
func (k *KV) MarkActive(sessionID string) error {
	return k.Set(PrefixActive+sessionID, time.Now().UTC().Format(time.RFC3339))
}

// ClearActive removes a session from the live set
func (k *KV) ClearActive(sessionID string) error {
	return k.Delete(PrefixActive + sessionID)
}

// CountActive returns the number of live sessions
func (k *KV) CountActive() (int, error) {
	return k.Count(PrefixActive)
}

// SetTokenCache caches the last turn's token count for a session
func (k *KV) SetTokenCache(sessionID string, tokens int) error {
	return k.SetWithTTL(PrefixToken+sessionID, strconv.Itoa(tokens), tokenCacheTTL)
}

// GetTokenCache gets the cached token count
func (k *KV) GetTokenCache(sessionID string) (int, error) {
	val, err := k.Get(PrefixToken + sessionID)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(val)
}
