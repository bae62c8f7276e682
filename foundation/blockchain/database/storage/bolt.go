package storage

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/boltdb/bolt"
)

var blocksBucket = []byte("blocks")

// Bolt stores every block as a value in a single bolt bucket keyed by the
// big endian block height, which keeps the keys in chain order. This
// implements the database.Serializer interface.
type Bolt struct {
	db *bolt.DB
}

// NewBolt opens or creates the bolt file at the specified path. Bolt holds
// a file lock, so only one process can use the file at a time.
func NewBolt(dbPath string) (*Bolt, error) {
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blocksBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt{db: db}, nil
}

// Close releases the bolt file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Write stores the block, replacing any block at the same height.
func (b *Bolt) Write(block *database.Block) error {
	data, err := encode(block, false)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(blocksBucket).Put(key(block.Height), data)
	})
}

// GetBlock returns the block stored at the specified height.
func (b *Bolt) GetBlock(height primitive.Height) (*database.Block, error) {
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {

		// Bolt values are only valid for the life of the transaction.
		if v := tx.Bucket(blocksBucket).Get(key(height)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if data == nil {
		return nil, ErrEndOfChain
	}

	return decode(data)
}

// ForEach returns an iterator to walk through all the blocks in height
// order.
func (b *Bolt) ForEach() database.Iterator {
	return &BoltIterator{store: b}
}

// Truncate removes every block above the specified height.
func (b *Bolt) Truncate(height primitive.Height) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(blocksBucket).Cursor()
		for k, _ := c.Seek(key(height.Next())); k != nil; k, _ = c.Seek(key(height.Next())) {
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reset removes every stored block.
func (b *Bolt) Reset() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(blocksBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(blocksBucket)
		return err
	})
}

func key(height primitive.Height) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, height.Uint64())
	return k
}

// =============================================================================

// BoltIterator walks the bolt bucket one block at a time. This implements
// the database Iterator interface.
type BoltIterator struct {
	store   *Bolt
	current primitive.Height
	eoc     bool
}

// Next retrieves the next block from the bucket.
func (bi *BoltIterator) Next() (*database.Block, error) {
	if bi.eoc {
		return nil, ErrEndOfChain
	}

	bi.current = bi.current.Next()
	block, err := bi.store.GetBlock(bi.current)
	if errors.Is(err, ErrEndOfChain) {
		bi.eoc = true
	}

	return block, err
}

// Done returns the end of chain value.
func (bi *BoltIterator) Done() bool {
	return bi.eoc
}
