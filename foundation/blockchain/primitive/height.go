package primitive

import (
	"errors"
	"fmt"
)

// ErrInvalidHeight is returned when a height of zero is constructed or a
// height is decremented below one.
var ErrInvalidHeight = errors.New("block height must be positive")

// Height represents the position of a block in the chain. The nemesis block
// is at height 1.
type Height uint64

// NemesisHeight is the height of the first block in the chain.
const NemesisHeight Height = 1

// NewHeight constructs a height, failing when the value is zero.
func NewHeight(v uint64) (Height, error) {
	if v == 0 {
		return 0, ErrInvalidHeight
	}

	return Height(v), nil
}

// Next returns the following height.
func (h Height) Next() Height {
	return h + 1
}

// Prev returns the preceding height.
func (h Height) Prev() (Height, error) {
	if h <= 1 {
		return 0, fmt.Errorf("prev of %d: %w", h, ErrInvalidHeight)
	}

	return h - 1, nil
}

// Uint64 returns the raw height value.
func (h Height) Uint64() uint64 {
	return uint64(h)
}
