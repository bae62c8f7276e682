package primitive

// Consensus constants shared across the chain. Changing any of these values
// produces a different chain.
const (

	// BlocksPerDay is the estimated number of blocks harvested per day and
	// the width of a vesting bucket.
	BlocksPerDay = 1440

	// RewriteLimit is the maximum number of blocks a reorganization may
	// replace.
	RewriteLimit = 360

	// MaxHistory is the number of heights of balance history retained.
	MaxHistory = BlocksPerDay + RewriteLimit

	// TargetSecondsPerBlock is the desired block interval.
	TargetSecondsPerBlock = SecondsPerDay / BlocksPerDay

	// BlocksForDifficulty is the number of samples used to retarget.
	BlocksForDifficulty = 60

	// DifficultyFixHeight is the height at which the retarget formula stops
	// counting the newest sample twice. Blocks below it keep the original
	// formula so existing history still validates.
	DifficultyFixHeight Height = 5_000

	// MaxSecondsAheadOfTime bounds how far a block or transaction timestamp
	// may run ahead of the local clock.
	MaxSecondsAheadOfTime = 60

	// MaxMessageSize is the largest transfer message accepted.
	MaxMessageSize = 1000

	// MaxMultisigSignatures bounds the cosignatory signatures attached to
	// one multisig transaction.
	MaxMultisigSignatures = 32

	// MaxChainSize is the default maximum number of blocks in a candidate
	// chain.
	MaxChainSize = RewriteLimit
)

// MinHarvesterBalance is the balance a lessor must retain to activate
// remote harvesting.
var MinHarvesterBalance = FromUnits(1_000)
