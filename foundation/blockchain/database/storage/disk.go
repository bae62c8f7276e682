package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
)

// Disk represents the serialization implementation for reading and storing
// blocks in their own separate files on disk. This implements the
// database.Serializer interface.
type Disk struct {
	dbPath string
}

// NewDisk constructs a Disk value for use.
func NewDisk(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each new block and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write takes the specified block and stores it on disk in a file labeled
// with the block height. A block already stored at that height is replaced.
func (d *Disk) Write(block *database.Block) error {

	// Marshal the block for writing to disk in a more human readable format.
	data, err := encode(block, true)
	if err != nil {
		return err
	}

	return os.WriteFile(d.getPath(block.Height), data, 0600)
}

// GetBlock searches the blockchain on disk to locate and return the
// contents of the specified block by height.
func (d *Disk) GetBlock(height primitive.Height) (*database.Block, error) {
	data, err := os.ReadFile(d.getPath(height))
	if err != nil {
		return nil, err
	}

	return decode(data)
}

// ForEach returns an iterator to walk through all the blocks
// starting with the nemesis block.
func (d *Disk) ForEach() database.Iterator {
	return &DiskIterator{disk: d}
}

// Truncate removes every block above the specified height.
func (d *Disk) Truncate(height primitive.Height) error {
	for h := height.Next(); ; h = h.Next() {
		err := os.Remove(d.getPath(h))
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Reset will clear out the blockchain on disk.
func (d *Disk) Reset() error {
	if err := os.RemoveAll(d.dbPath); err != nil {
		return err
	}

	return os.MkdirAll(d.dbPath, 0755)
}

// getPath forms the path to the specified block.
func (d *Disk) getPath(height primitive.Height) string {
	name := strconv.FormatUint(height.Uint64(), 10)
	return path.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}

// =============================================================================

// DiskIterator represents the iteration implementation for walking
// through and reading blocks on disk. This implements the database
// Iterator interface.
type DiskIterator struct {
	disk    *Disk            // Access to the disk storage API.
	current primitive.Height // Current block height being iterated over.
	eoc     bool             // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from disk.
func (di *DiskIterator) Next() (*database.Block, error) {
	if di.eoc {
		return nil, ErrEndOfChain
	}

	di.current = di.current.Next()
	block, err := di.disk.GetBlock(di.current)
	if errors.Is(err, fs.ErrNotExist) {
		di.eoc = true
	}

	return block, err
}

// Done returns the end of chain value.
func (di *DiskIterator) Done() bool {
	return di.eoc
}
