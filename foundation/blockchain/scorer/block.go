package scorer

import (
	"encoding/binary"
	"math/big"
	"math/bits"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
)

// log2Bits is the number of fraction bits kept when taking log2 of a hit.
const log2Bits = 62

// ln2 is ln(2) as a 64 bit binary fraction.
var ln2 = new(big.Int).SetUint64(0xB17217F7D1CF79AB)

// twoTo64 scales the target.
var twoTo64 = new(big.Int).Lsh(big.NewInt(1), 64)

// BlockScorer decides whether a forger is eligible to harvest a block. The
// hit is drawn from the block's generation hash and must be lower than a
// target that grows with the time since the parent block and the forger's
// vested balance.
type BlockScorer struct{}

// CalculateHit returns 2^54 * |ln(x)| where x is the first eight bytes of the
// generation hash read as a fraction of 2^64. The logarithm is computed in
// integer fixed point so every node derives the same hit.
func (BlockScorer) CalculateHit(block *database.Block) *big.Int {
	raw := binary.BigEndian.Uint64(block.GenerationHash[:8])
	if raw == 0 {
		raw = 1
	}

	// x = 2^(n-65) * m with m in [1, 2), so -log2(x) = 65 - n - log2(m).
	n := bits.Len64(raw)
	frac := log2Fraction(raw << (64 - n))

	hit := new(big.Int).Lsh(big.NewInt(int64(65-n)), log2Bits)
	hit.Sub(hit, new(big.Int).SetUint64(frac))

	// |ln(x)| = -log2(x) * ln(2). Scaling by 2^54 leaves 62 + 64 - 54
	// fraction bits to drop.
	hit.Mul(hit, ln2)
	return hit.Rsh(hit, log2Bits+64-54)
}

// log2Fraction returns log2(m) with log2Bits fraction bits, where m is a
// fixed point value in [1, 2) with 63 fraction bits. Each squaring yields
// the next bit.
func log2Fraction(m uint64) uint64 {
	var frac uint64
	for range log2Bits {
		hi, lo := bits.Mul64(m, m)
		frac <<= 1

		if hi>>63 == 1 {
			m = hi
			frac |= 1
			continue
		}
		m = hi<<1 | lo>>63
	}

	return frac
}

// CalculateTarget returns (2^64 / difficulty) * elapsed * vested units,
// where vested is the forger's vested balance at the parent height. A
// remote harvester is scored with its lessor's balance.
func (BlockScorer) CalculateTarget(parent *database.Block, block *database.Block, states *database.Cache) *big.Int {
	if block.TimeStamp <= parent.TimeStamp || block.Difficulty == 0 {
		return new(big.Int)
	}

	owner := states.FindForwardedState(block.Signer)
	vested := owner.Weighted.Vested(parent.Height).Units()

	elapsed := big.NewInt(int64(block.TimeStamp - parent.TimeStamp))

	target := new(big.Int).Div(twoTo64, new(big.Int).SetUint64(block.Difficulty.Uint64()))
	target.Mul(target, elapsed)
	target.Mul(target, new(big.Int).SetUint64(vested))

	return target
}

// IsHit reports whether the block's hit is below its target.
func (bs BlockScorer) IsHit(parent *database.Block, block *database.Block, states *database.Cache) bool {
	return bs.CalculateHit(block).Cmp(bs.CalculateTarget(parent, block, states)) < 0
}

// ChainScore sums the difficulties of the blocks. A chain with the greater
// score is preferred.
func ChainScore(blocks []*database.Block) *big.Int {
	score := new(big.Int)
	for _, b := range blocks {
		score.Add(score, new(big.Int).SetUint64(b.Difficulty.Uint64()))
	}

	return score
}
