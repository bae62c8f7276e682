package primitive

// Difficulty represents the work target a forger's hit must satisfy.
type Difficulty uint64

// InitialDifficulty is the difficulty used until enough history exists to
// retarget.
const InitialDifficulty Difficulty = 100_000_000_000_000

// Uint64 returns the raw difficulty value.
func (d Difficulty) Uint64() uint64 {
	return uint64(d)
}
