// Package validator decides whether a candidate chain of blocks may be
// accepted on top of a parent block. Validation runs against a speculative
// copy of the account states and reports its outcome as a validation.Result.
package validator

import (
	"math/big"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/scorer"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
	"github.com/ardanlabs/poichain/foundation/blockchain/validation"
)

// EventHandler defines a function that is called when events
// occur in the processing of validating blocks.
type EventHandler func(v string, args ...any)

// Scorer decides whether the forger of a block was eligible to harvest it.
type Scorer interface {
	CalculateHit(block *database.Block) *big.Int
	CalculateTarget(parent *database.Block, block *database.Block, states *database.Cache) *big.Int
}

// HashLookup reports whether a transaction hash has already been confirmed.
type HashLookup interface {
	Contains(hash signature.Hash) bool
}

// Config represents the settings and collaborators of the validator.
type Config struct {
	MaxChainSize   int
	Scorer         Scorer
	Hashes         HashLookup
	DebitPredicate func(states *database.Cache) database.DebitPredicate
	CurrentTime    func() primitive.TimeInstant
	EvHandler      EventHandler
}

// Validator checks candidate chains. It holds no state between calls.
type Validator struct {
	maxChainSize   int
	scorer         Scorer
	hashes         HashLookup
	debitPredicate func(states *database.Cache) database.DebitPredicate
	currentTime    func() primitive.TimeInstant
	ev             EventHandler
}

// New constructs a validator, filling in defaults for anything the config
// leaves unset.
func New(cfg Config) *Validator {
	v := Validator{
		maxChainSize:   cfg.MaxChainSize,
		scorer:         cfg.Scorer,
		hashes:         cfg.Hashes,
		debitPredicate: cfg.DebitPredicate,
		currentTime:    cfg.CurrentTime,
		ev:             cfg.EvHandler,
	}

	if v.maxChainSize <= 0 {
		v.maxChainSize = primitive.MaxChainSize
	}
	if v.scorer == nil {
		v.scorer = scorer.BlockScorer{}
	}
	if v.hashes == nil {
		v.hashes = noHashes{}
	}
	if v.debitPredicate == nil {
		v.debitPredicate = database.BalanceDebitPredicate
	}
	if v.currentTime == nil {
		v.currentTime = primitive.Now
	}
	if v.ev == nil {
		v.ev = func(string, ...any) {}
	}

	return &v
}

// IsValid checks that the blocks form a valid chain on top of the parent.
// Every transaction that passes is executed against states so later
// blocks observe its effects. The caller owns states and must only promote
// it when the result is Success.
func (v *Validator) IsValid(parent *database.Block, blocks []*database.Block, states *database.Cache) validation.Result {
	v.ev("validator: IsValid: started: parent[%d]: blocks[%d]", parent.Height, len(blocks))

	if len(blocks) > v.maxChainSize {
		v.ev("validator: IsValid: chain size[%d] exceeds max[%d]", len(blocks), v.maxChainSize)
		return validation.FailureChainTooLong
	}

	vc := validationContext{
		Validator: v,
		states:    states,
		commit:    database.NewCommitObserver(states),
		canDebit:  v.debitPredicate(states),
		now:       v.currentTime(),
		seen:      make(map[signature.Hash]struct{}),
	}

	for _, block := range blocks {
		if result := vc.validateBlock(parent, block); result != validation.Success {
			v.ev("validator: IsValid: blk[%d]: %s", block.Height, result)
			return result
		}

		parent = block
	}

	v.ev("validator: IsValid: completed: SUCCESS")
	return validation.Success
}

// =============================================================================

// validationContext carries what is shared across the blocks of one call.
type validationContext struct {
	*Validator
	states   *database.Cache
	commit   database.Observer
	canDebit database.DebitPredicate
	now      primitive.TimeInstant
	seen     map[signature.Hash]struct{}
}

func (vc validationContext) validateBlock(parent *database.Block, block *database.Block) validation.Result {
	if block.Height != parent.Height.Next() {
		return validation.FailureHeightMismatch
	}
	vc.ev("validator: IsValid: blk[%d]: check: height: ok", block.Height)

	if block.Type != database.BlockTypeRegular || block.Version != database.BlockVersion {
		return validation.FailureEntityInvalid
	}

	if block.PrevBlockHash != parent.Hash() {
		return validation.FailurePreviousHashMismatch
	}
	vc.ev("validator: IsValid: blk[%d]: check: previous hash: ok", block.Height)

	// The generation hash is never trusted from the sender.
	block.GenerationHash = database.NextGenerationHash(parent.GenerationHash, block.Signer)

	if result := database.VerifyEntity(block); result != validation.Success {
		return result
	}
	vc.ev("validator: IsValid: blk[%d]: check: signature: ok", block.Height)

	if block.TimeStamp > vc.now.AddSeconds(primitive.MaxSecondsAheadOfTime) {
		return validation.FailureTimestampTooFarInFuture
	}

	hit := vc.scorer.CalculateHit(block)
	target := vc.scorer.CalculateTarget(parent, block, vc.states)
	if hit.Cmp(target) >= 0 {
		return validation.FailureHitNotBelowTarget
	}
	vc.ev("validator: IsValid: blk[%d]: check: hit below target: ok", block.Height)

	if result := checkBlockConflicts(block); result != validation.Success {
		return result
	}
	vc.ev("validator: IsValid: blk[%d]: check: conflicts: ok", block.Height)

	ctx := database.NotificationContext{
		Height:    block.Height,
		TimeStamp: block.TimeStamp,
	}

	for i, tx := range block.Transactions {
		if result := vc.validateTx(block, tx); result != validation.Success {
			vc.ev("validator: IsValid: blk[%d]: tx[%d]: %s", block.Height, i, result)
			return result
		}

		if err := tx.Execute(ctx, vc.commit); err != nil {
			vc.ev("validator: IsValid: blk[%d]: tx[%d]: execute: ERROR: %s", block.Height, i, err)
			return validation.FailureUnknown
		}
	}

	if err := block.Reward(vc.commit); err != nil {
		vc.ev("validator: IsValid: blk[%d]: reward: ERROR: %s", block.Height, err)
		return validation.FailureUnknown
	}

	return validation.Success
}

func (vc validationContext) validateTx(block *database.Block, tx *database.Tx) validation.Result {
	if tx.Type() == database.TxMultisigSignature {
		return validation.FailureEntityInvalid
	}

	if result := tx.IsValid(); result != validation.Success {
		return result
	}

	if result := database.VerifyEntity(tx); result != validation.Success {
		return result
	}

	if tx.Deadline < block.TimeStamp {
		return validation.FailurePastDeadline
	}

	if tx.TimeStamp > vc.now.AddSeconds(primitive.MaxSecondsAheadOfTime) {
		return validation.FailureTimestampTooFarInFuture
	}

	if tx.Signer.Equal(block.Signer) {
		return validation.FailureSelfSignedTransaction
	}

	for _, hash := range tx.Identities() {
		if _, exists := vc.seen[hash]; exists || vc.hashes.Contains(hash) {
			return validation.Neutral
		}
	}
	for _, hash := range tx.Identities() {
		vc.seen[hash] = struct{}{}
	}

	if result := vc.checkRoles(tx); result != validation.Success {
		return result
	}

	inner := effective(tx)

	switch p := inner.Payload.(type) {
	case *database.MultisigAggregateModification:
		if result := vc.checkModification(inner, p); result != validation.Success {
			return result
		}

	case *database.ImportanceTransfer:
		if result := vc.checkImportanceTransfer(block, inner, p); result != validation.Success {
			return result
		}
	}

	debits, err := tx.Debits()
	if err != nil {
		vc.ev("validator: IsValid: blk[%d]: debits: ERROR: %s", block.Height, err)
		return validation.FailureInsufficientBalance
	}

	for addr, amount := range debits {
		if !vc.canDebit(addr, amount) {
			return validation.FailureInsufficientBalance
		}
	}

	return validation.Success
}

// =============================================================================

type noHashes struct{}

func (noHashes) Contains(signature.Hash) bool { return false }

// effective returns the transaction whose effects a multisig wrapper
// carries, or the transaction itself.
func effective(tx *database.Tx) *database.Tx {
	if p, ok := tx.Payload.(*database.Multisig); ok {
		return p.Inner
	}

	return tx
}
