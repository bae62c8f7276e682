// Package storage handles all the lower level support for reading and writing
// blocks to disk.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
)

// ErrEndOfChain is returned by an iterator that has walked past the last
// block.
var ErrEndOfChain = errors.New("end of chain")

// ErrHashMismatch is returned when a stored block no longer hashes to the
// value recorded with it.
var ErrHashMismatch = errors.New("stored block hash mismatch")

// Record represents what is serialized to disk.
type Record struct {
	Hash  signature.Hash  `json:"hash"`
	Block *database.Block `json:"block"`
}

// encode converts a block into its stored form.
func encode(block *database.Block, indent bool) ([]byte, error) {
	rec := Record{
		Hash:  block.Hash(),
		Block: block,
	}

	if indent {
		return json.MarshalIndent(rec, "", "  ")
	}

	return json.Marshal(rec)
}

// decode converts the stored form back into a block, checking the recorded
// hash.
func decode(data []byte) (*database.Block, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	if rec.Block == nil {
		return nil, fmt.Errorf("record %s: missing block", rec.Hash)
	}

	if hash := rec.Block.Hash(); hash != rec.Hash {
		return nil, fmt.Errorf("blk[%d]: got %s, exp %s: %w", rec.Block.Height, hash, rec.Hash, ErrHashMismatch)
	}

	return rec.Block, nil
}
