// Package badger implements every storage interface the services consume on
// top of an embedded BadgerDB. Values are JSON documents under the flat key
// scheme the rest of the system expects: one key per chain per concern, plus
// a handful of global keys. Each write is a single-key transaction; nothing
// here spans keys, which is what keeps multi-chain fan-outs merge-tolerant
// instead of transactional.
package badger

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

type client struct {
	db *badger.DB
}

// NewClient opens (or creates) the database at dir. Badger holds an
// exclusive directory lock, so a second process opening the same dir gets a
// friendly error instead of the raw lock failure.
func NewClient(dir string) (*client, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		if strings.Contains(err.Error(), "Cannot acquire directory lock") {
			return nil, errors.New("storage directory is locked by another running instance")
		}
		return nil, err
	}

	return &client{
		db: db,
	}, nil
}

func (c *client) Close() error {
	return c.db.Close()
}

// getJSON loads the value under key into out. A missing key reports
// (false, nil) so callers can treat absence as an empty document.
func (c *client) getJSON(key string, out any) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// setJSON stores value under key as a JSON document. A positive ttl makes
// the entry expire on its own.
func (c *client) setJSON(key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.setRaw(key, raw, ttl)
}

// setRaw stores data under key as-is.
func (c *client) setRaw(key string, data []byte, ttl time.Duration) error {
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// getRaw loads the value under key as-is. A missing key reports (nil, false).
func (c *client) getRaw(key string) ([]byte, bool, error) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// remove deletes key. Deleting a missing key is a no-op.
func (c *client) remove(key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}
