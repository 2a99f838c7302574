// Package cache persists decoded games in an embedded Badger store, keyed
// by a hash of the game-body bytes and starting FEN. Re-decoding a large
// game body is pure CPU; a hit here skips the whole pipeline.
package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"hash/fnv"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/scidpgn/internal/decoder"
)

// Cache wraps an embedded Badger database as a decode-result store.
type Cache struct {
	db *badger.DB
}

// Open opens (creating if necessary) a Badger database at dir.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cache: opening %s: %w", dir, err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Key derives the cache key for a game body decoded against startFEN.
func Key(body []byte, startFEN string) []byte {
	h := fnv.New128a()
	h.Write(body)
	h.Write([]byte{0})
	h.Write([]byte(startFEN))
	return h.Sum(nil)
}

// Get returns the cached game for key, or (nil, false) on a miss.
func (c *Cache) Get(key []byte) (*decoder.Game, bool, error) {
	var game *decoder.Game

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			g := new(decoder.Game)
			if err := gob.NewDecoder(bytes.NewReader(val)).Decode(g); err != nil {
				return err
			}
			game = g
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	return game, game != nil, nil
}

// Store persists game under key.
func (c *Cache) Store(key []byte, game *decoder.Game) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(game); err != nil {
		return fmt.Errorf("cache: encoding game: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf.Bytes())
	})
}
