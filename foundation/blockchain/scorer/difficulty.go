// Package scorer calculates block difficulties and decides whether a forger
// has earned the right to harvest a block.
package scorer

import (
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/holiman/uint256"
)

// Sample is the difficulty and timestamp of one historical block.
type Sample struct {
	Difficulty primitive.Difficulty
	TimeStamp  primitive.TimeInstant
}

// CalculateDifficulty returns the difficulty for the block at the specified
// height given the samples of the blocks before it, oldest first.
//
//	difficulty = mean(difficulties) * TargetSecondsPerBlock * (N - fix) / timeSpan
//
// The fix is applied from DifficultyFixHeight. The result may move at most
// 5% away from the newest sample's difficulty.
func CalculateDifficulty(samples []Sample, height primitive.Height) primitive.Difficulty {
	if len(samples) < 2 {
		return primitive.InitialDifficulty
	}

	var fix uint64
	if height >= primitive.DifficultyFixHeight {
		fix = 1
	}

	newest := samples[len(samples)-1]
	oldest := samples[0]

	// Samples sharing a timestamp would divide by zero.
	timeSpan := uint64(1)
	if newest.TimeStamp > oldest.TimeStamp {
		timeSpan = uint64(newest.TimeStamp - oldest.TimeStamp)
	}

	n := uint64(len(samples))

	sum := new(uint256.Int)
	for _, s := range samples {
		sum.Add(sum, uint256.NewInt(s.Difficulty.Uint64()))
	}
	mean := new(uint256.Int).Div(sum, uint256.NewInt(n))

	d := new(uint256.Int).Mul(mean, uint256.NewInt(primitive.TargetSecondsPerBlock))
	d.Mul(d, uint256.NewInt(n-fix))
	d.Div(d, uint256.NewInt(timeSpan))

	return clamp(d, newest.Difficulty)
}

// clamp limits the difficulty to [19/20, 21/20] of the previous one.
func clamp(d *uint256.Int, previous primitive.Difficulty) primitive.Difficulty {
	old := uint256.NewInt(previous.Uint64())
	twenty := uint256.NewInt(20)

	scaled := new(uint256.Int).Mul(d, twenty)

	lower := new(uint256.Int).Mul(old, uint256.NewInt(19))
	if lower.Gt(scaled) {
		return primitive.Difficulty(lower.Div(lower, twenty).Uint64())
	}

	upper := new(uint256.Int).Mul(old, uint256.NewInt(21))
	if upper.Lt(scaled) {
		return primitive.Difficulty(upper.Div(upper, twenty).Uint64())
	}

	return primitive.Difficulty(d.Uint64())
}

// =============================================================================

// DifficultyWindow keeps the samples of the most recent blocks used to
// retarget the difficulty.
type DifficultyWindow struct {
	samples []Sample
}

// NewDifficultyWindow constructs a window holding the newest of the samples.
func NewDifficultyWindow(samples ...Sample) *DifficultyWindow {
	var w DifficultyWindow
	for _, s := range samples {
		w.Push(s)
	}

	return &w
}

// Push adds the newest sample, dropping the oldest when the window is full.
func (w *DifficultyWindow) Push(s Sample) {
	w.samples = append(w.samples, s)
	if len(w.samples) > primitive.BlocksForDifficulty {
		w.samples = append([]Sample(nil), w.samples[len(w.samples)-primitive.BlocksForDifficulty:]...)
	}
}

// Samples returns a copy of the samples, oldest first.
func (w *DifficultyWindow) Samples() []Sample {
	return append([]Sample(nil), w.samples...)
}

// Len returns the number of samples held.
func (w *DifficultyWindow) Len() int {
	return len(w.samples)
}

// Next returns the difficulty for the block at the specified height.
func (w *DifficultyWindow) Next(height primitive.Height) primitive.Difficulty {
	return CalculateDifficulty(w.samples, height)
}

// Copy returns an independent copy of the window.
func (w *DifficultyWindow) Copy() *DifficultyWindow {
	return &DifficultyWindow{samples: w.Samples()}
}
