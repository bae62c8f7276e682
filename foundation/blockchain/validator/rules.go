package validator

import (
	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/validation"
	mapset "github.com/deckarep/golang-set/v2"
)

// checkBlockConflicts rejects combinations of transactions that may not
// share a block:
//
//	at most one cosignatory modification per multisig account
//	at most one cosignatory removal per modification
//	at most one importance activation per remote account
//	no balance transfer to or from an importance transfer's remote account
func checkBlockConflicts(block *database.Block) validation.Result {
	modified := mapset.NewThreadUnsafeSet[address.Address]()
	activated := mapset.NewThreadUnsafeSet[address.Address]()
	remotes := mapset.NewThreadUnsafeSet[address.Address]()
	transfers := mapset.NewThreadUnsafeSet[address.Address]()

	for _, tx := range block.Transactions {
		inner := effective(tx)
		if inner == nil {
			continue
		}

		switch p := inner.Payload.(type) {
		case *database.MultisigAggregateModification:
			if !modified.Add(inner.Signer.Address) {
				return validation.FailureConflictingMultisigModification
			}

			var deletes int
			for _, mod := range p.Modifications {
				if mod.Type == database.ModificationDelCosignatory {
					deletes++
				}
			}
			if deletes > 1 {
				return validation.FailureMultisigModificationMultipleDeletes
			}

		case *database.ImportanceTransfer:
			if p.Mode == database.ImportanceActivate && !activated.Add(p.Remote.Address) {
				return validation.FailureImportanceTransferInProgress
			}
			remotes.Add(p.Remote.Address)

		case *database.Transfer:
			transfers.Add(inner.Signer.Address)
			transfers.Add(p.Recipient.Address)
		}
	}

	if remotes.Intersect(transfers).Cardinality() > 0 {
		return validation.FailureDestinationAccountHasPreexistingBalanceTransfer
	}

	return validation.Success
}

// =============================================================================

// checkRoles enforces what remote harvesters and multisig accounts may do.
func (vc validationContext) checkRoles(tx *database.Tx) validation.Result {
	signer := vc.states.FindState(tx.Signer)
	if signer.Remote.IsRemoteHarvester() {
		return validation.FailureTransactionNotAllowedForRemote
	}

	p, wrapped := tx.Payload.(*database.Multisig)
	if !wrapped {
		if signer.Multisig.IsMultisig() {
			return validation.FailureTransactionNotAllowedForMultisig
		}
		return vc.checkRecipient(tx)
	}

	inner := p.Inner
	multisig := vc.states.FindState(inner.Signer)
	if multisig.Remote.IsRemoteHarvester() {
		return validation.FailureTransactionNotAllowedForRemote
	}

	if !multisig.Multisig.HasCosignatory(tx.Signer.Address) {
		return validation.FailureMultisigNotACosigner
	}

	innerHash := inner.Hash()
	signed := mapset.NewThreadUnsafeSet(tx.Signer.Address)

	for _, sig := range p.Signatures {
		ms, ok := sig.Payload.(*database.MultisigSignature)
		if !ok {
			return validation.FailureEntityInvalid
		}

		if ms.OtherHash != innerHash || ms.Multisig.Address != inner.Signer.Address {
			return validation.FailureMultisigMismatchedSignature
		}

		if !multisig.Multisig.HasCosignatory(sig.Signer.Address) {
			return validation.FailureMultisigNotACosigner
		}

		signed.Add(sig.Signer.Address)
	}

	// A cosignatory being removed does not need to approve its removal.
	required := mapset.NewThreadUnsafeSet(multisig.Multisig.Cosignatories()...)
	if mod, ok := inner.Payload.(*database.MultisigAggregateModification); ok {
		for _, m := range mod.Modifications {
			if m.Type == database.ModificationDelCosignatory {
				required.Remove(m.Cosignatory.Address)
			}
		}
	}

	if !required.IsSubset(signed) {
		return validation.FailureMultisigMissingCosigners
	}

	return vc.checkRecipient(inner)
}

// checkRecipient rejects transfers into a remote harvester.
func (vc validationContext) checkRecipient(tx *database.Tx) validation.Result {
	p, ok := tx.Payload.(*database.Transfer)
	if !ok {
		return validation.Success
	}

	if recipient, exists := vc.states.Lookup(p.Recipient.Address); exists && recipient.Remote.IsRemoteHarvester() {
		return validation.FailureTransactionNotAllowedForRemote
	}

	return validation.Success
}

// checkModification validates cosignatory changes against the multisig
// account's current cosignatories.
func (vc validationContext) checkModification(tx *database.Tx, p *database.MultisigAggregateModification) validation.Result {
	multisig := vc.states.FindState(tx.Signer)

	for _, mod := range p.Modifications {
		has := multisig.Multisig.HasCosignatory(mod.Cosignatory.Address)

		switch mod.Type {
		case database.ModificationAddCosignatory:
			if has {
				return validation.FailureMultisigAlreadyACosigner
			}
		case database.ModificationDelCosignatory:
			if !has {
				return validation.FailureMultisigNotACosigner
			}
		}
	}

	return validation.Success
}

// checkImportanceTransfer validates an importance transfer against the
// current remote links of both accounts.
func (vc validationContext) checkImportanceTransfer(block *database.Block, tx *database.Tx, p *database.ImportanceTransfer) validation.Result {
	lessor := vc.states.FindState(tx.Signer)

	if link, exists := lessor.Remote.Current(); exists && block.Height < link.Height+primitive.BlocksPerDay {
		return validation.FailureImportanceTransferInProgress
	}

	switch p.Mode {
	case database.ImportanceActivate:
		if lessor.Remote.IsHarvestingRemotely() {
			return validation.FailureImportanceTransferNeedsToBeDeactivated
		}

		if remote, exists := vc.states.Lookup(p.Remote.Address); exists {
			if remote.Info.Balance != 0 {
				return validation.FailureDestinationAccountHasPreexistingBalanceTransfer
			}
			if remote.Remote.IsRemoteHarvester() || remote.Remote.IsHarvestingRemotely() {
				return validation.FailureImportanceTransferInProgress
			}
		}

		if lessor.Info.Balance < primitive.MinHarvesterBalance+tx.Fee() {
			return validation.FailureInsufficientBalance
		}

	case database.ImportanceDeactivate:
		link, exists := lessor.Remote.Current()
		if !exists || !lessor.Remote.IsHarvestingRemotely() || link.Address != p.Remote.Address {
			return validation.FailureImportanceTransferNeedsToBeActive
		}
	}

	return validation.Success
}
