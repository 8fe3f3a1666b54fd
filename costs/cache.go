package costs

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dgraph-io/badger/v4"

	"github.com/cottand/motifsat/graph"
)

// Cache persists measured costs across runs, keyed by the isomorphism class of the pattern and
// a namespace identifying the data graph the costs were measured against.
type Cache struct {
	db        *badger.DB
	namespace string
}

// OpenCache opens the cache stored at path. An empty path keeps the cache in memory.
func OpenCache(path, namespace string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cost cache: %w", err)
	}
	return &Cache{db: db, namespace: namespace}, nil
}

func (c *Cache) key(p graph.Pattern) []byte {
	return []byte("cost/" + c.namespace + "/" + graph.Key(p))
}

func encodeCost(cost float64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(cost))
	return buf
}

func decodeCost(buf []byte) (float64, error) {
	if len(buf) != 8 {
		return 0, fmt.Errorf("corrupt cost entry of %d bytes", len(buf))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buf)), nil
}

// Get returns the cached cost of p, if any.
func (c *Cache) Get(p graph.Pattern) (float64, bool, error) {
	var (
		cost  float64
		found bool
	)
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(p))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			cost, err = decodeCost(val)
			found = err == nil
			return err
		})
	})
	return cost, found, err
}

// PutAll stores costs[i] for patterns[i] in one transaction.
func (c *Cache) PutAll(patterns []graph.Pattern, costs []float64) error {
	if len(patterns) != len(costs) {
		return fmt.Errorf("%d patterns but %d costs", len(patterns), len(costs))
	}
	return c.db.Update(func(txn *badger.Txn) error {
		for i, p := range patterns {
			if err := txn.Set(c.key(p), encodeCost(costs[i])); err != nil {
				return fmt.Errorf("failed to store cost of %v: %w", p, err)
			}
		}
		return nil
	})
}

func (c *Cache) Close() error {
	return c.db.Close()
}
