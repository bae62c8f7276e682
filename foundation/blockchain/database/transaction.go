package database

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"

	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
	"github.com/ardanlabs/poichain/foundation/blockchain/validation"
)

// TxVersion is the current version of every transaction type.
const TxVersion uint32 = 1

// DefaultDeadline is the lifetime given to new transactions.
const DefaultDeadline = 60 * 60

// Set of minimum fee constants.
var (
	minimumTransferFee         = primitive.FromUnits(1)
	importanceTransferFee      = primitive.FromUnits(1)
	modificationBaseFee        = primitive.FromUnits(100)
	modificationPerCosignatory = primitive.FromUnits(100)
	multisigWrapperFee         = primitive.FromUnits(6)
	messageFeePerByte          = primitive.Amount(5_000)
	transferAmountFeeDivisor   = primitive.Amount(1_000)
	errMissingPayload          = errors.New("transaction has no payload")
)

// ErrNullTransaction is returned when a transaction slot holds no
// transaction, as decoded from a JSON null.
var ErrNullTransaction = errors.New("null transaction")

// Tx represents a transaction on the chain. The header fields are shared by
// every variant; the variant specific fields live in Payload.
type Tx struct {
	Version   uint32
	TimeStamp primitive.TimeInstant
	Deadline  primitive.TimeInstant
	Signer    Account
	Signature signature.Signature
	Payload   Payload

	fee primitive.Amount
}

// NewTx constructs an unsigned transaction with the minimum fee and the
// default deadline.
func NewTx(signer Account, timeStamp primitive.TimeInstant, payload Payload) *Tx {
	tx := Tx{
		Version:   TxVersion,
		TimeStamp: timeStamp,
		Deadline:  timeStamp.AddSeconds(DefaultDeadline),
		Signer:    signer,
		Payload:   payload,
	}
	tx.fee = tx.MinimumFee()

	return &tx
}

// NewTransfer constructs a transfer transaction.
func NewTransfer(signer Account, timeStamp primitive.TimeInstant, recipient Account, amount primitive.Amount, msg Message) *Tx {
	return NewTx(signer, timeStamp, &Transfer{
		Recipient: recipient,
		Amount:    amount,
		Message:   msg,
	})
}

// NewImportanceTransfer constructs an importance transfer transaction.
func NewImportanceTransfer(signer Account, timeStamp primitive.TimeInstant, mode ImportanceMode, remote Account) *Tx {
	return NewTx(signer, timeStamp, &ImportanceTransfer{
		Mode:   mode,
		Remote: remote,
	})
}

// NewMultisigAggregateModification constructs a cosignatory modification.
func NewMultisigAggregateModification(signer Account, timeStamp primitive.TimeInstant, mods []MultisigModification) *Tx {
	return NewTx(signer, timeStamp, &MultisigAggregateModification{
		Modifications: mods,
	})
}

// NewMultisig wraps the inner transaction issued for a multisig account.
func NewMultisig(cosigner Account, timeStamp primitive.TimeInstant, inner *Tx) *Tx {
	return NewTx(cosigner, timeStamp, &Multisig{
		Inner: inner,
	})
}

// NewMultisigSignature constructs a cosignatory's approval of the inner
// transaction of a multisig wrapper.
func NewMultisigSignature(cosigner Account, timeStamp primitive.TimeInstant, multisig Account, inner *Tx) *Tx {
	return NewTx(cosigner, timeStamp, &MultisigSignature{
		OtherHash: inner.Hash(),
		Multisig:  multisig,
	})
}

// Type returns the variant of the transaction.
func (tx *Tx) Type() TxType {
	if tx.Payload == nil {
		return 0
	}

	return tx.Payload.txType()
}

// SetFee stores the fee offered by the signer.
func (tx *Tx) SetFee(fee primitive.Amount) {
	tx.fee = fee
}

// StoredFee returns the fee offered by the signer.
func (tx *Tx) StoredFee() primitive.Amount {
	return tx.fee
}

// Fee returns the fee paid, which is never less than the minimum fee.
func (tx *Tx) Fee() primitive.Amount {
	return max(tx.fee, tx.MinimumFee())
}

// MinimumFee returns the smallest fee accepted for the transaction.
func (tx *Tx) MinimumFee() primitive.Amount {
	switch p := tx.Payload.(type) {
	case *Transfer:
		amountFee := p.Amount / transferAmountFeeDivisor
		if p.Amount%transferAmountFeeDivisor != 0 {
			amountFee++
		}
		messageFee := messageFeePerByte * primitive.Amount(p.Message.Size())
		return max(minimumTransferFee, amountFee+messageFee)

	case *ImportanceTransfer:
		return importanceTransferFee

	case *MultisigAggregateModification:
		return modificationBaseFee + modificationPerCosignatory*primitive.Amount(len(p.Modifications))

	case *MultisigSignature:
		return 0

	case *Multisig:
		return multisigWrapperFee
	}

	return 0
}

// AddSignature attaches a cosignatory's signature transaction to a multisig
// wrapper.
func (tx *Tx) AddSignature(sig *Tx) error {
	p, ok := tx.Payload.(*Multisig)
	if !ok {
		return fmt.Errorf("add signature to %s transaction", tx.Type())
	}

	p.Signatures = append(p.Signatures, sig)
	return nil
}

// =============================================================================

// IsValid checks the rules that depend only on the transaction itself.
func (tx *Tx) IsValid() validation.Result {
	if tx == nil || tx.Payload == nil || tx.Version != TxVersion {
		return validation.FailureEntityInvalid
	}

	if tx.Deadline <= tx.TimeStamp {
		return validation.FailurePastDeadline
	}

	if tx.Deadline > tx.TimeStamp.AddSeconds(primitive.SecondsPerDay) {
		return validation.FailureFutureDeadline
	}

	if tx.fee < tx.MinimumFee() {
		return validation.FailureInsufficientFee
	}

	switch p := tx.Payload.(type) {
	case *Transfer:
		if p.Message.Size() > primitive.MaxMessageSize {
			return validation.FailureMessageTooLarge
		}
		if !p.Recipient.Address.IsValid() {
			return validation.FailureEntityInvalid
		}

	case *ImportanceTransfer:
		if p.Mode != ImportanceActivate && p.Mode != ImportanceDeactivate {
			return validation.FailureEntityInvalid
		}
		if !p.Remote.Address.IsValid() {
			return validation.FailureEntityInvalid
		}

	case *MultisigAggregateModification:
		if len(p.Modifications) == 0 {
			return validation.FailureMultisigNoModifications
		}
		for _, mod := range p.Modifications {
			if mod.Type != ModificationAddCosignatory && mod.Type != ModificationDelCosignatory {
				return validation.FailureEntityInvalid
			}
			if !mod.Cosignatory.Address.IsValid() {
				return validation.FailureEntityInvalid
			}
		}

	case *MultisigSignature:
		if !p.Multisig.Address.IsValid() {
			return validation.FailureEntityInvalid
		}

	case *Multisig:
		if p.Inner == nil || p.Inner.Type() == TxMultisig || p.Inner.Type() == TxMultisigSignature {
			return validation.FailureEntityInvalid
		}
		if result := p.Inner.IsValid(); result != validation.Success {
			return result
		}
		if len(p.Signatures) > primitive.MaxMultisigSignatures {
			return validation.FailureEntityInvalid
		}
		signers := make(map[address.Address]struct{}, len(p.Signatures))
		for _, sig := range p.Signatures {
			if sig == nil || sig.Type() != TxMultisigSignature {
				return validation.FailureEntityInvalid
			}
			if _, exists := signers[sig.Signer.Address]; exists {
				return validation.FailureEntityInvalid
			}
			signers[sig.Signer.Address] = struct{}{}

			if result := sig.IsValid(); result != validation.Success {
				return result
			}
		}
	}

	return validation.Success
}

// Sign signs the non signed form of the transaction with the signer's key
// pair.
func (tx *Tx) Sign() error {
	if tx.Signer.KeyPair == nil {
		return signature.ErrMissingPrivateKey
	}

	data, err := tx.NonSignedBytes()
	if err != nil {
		return err
	}

	sig, err := signature.Sign(data, *tx.Signer.KeyPair)
	if err != nil {
		return err
	}

	tx.Signature = sig
	return nil
}

// Verify reports whether the signature matches the signer. For a multisig
// wrapper every attached signature must verify as well.
func (tx *Tx) Verify() bool {
	data, err := tx.NonSignedBytes()
	if err != nil {
		return false
	}

	if !signature.Verify(data, tx.Signer.PublicKey, tx.Signature) {
		return false
	}

	if p, ok := tx.Payload.(*Multisig); ok {
		for _, sig := range p.Signatures {
			if sig == nil || !sig.Verify() {
				return false
			}
		}
	}

	return true
}

// Hash returns the hash of the non signed form of the transaction. This is
// the identity used for replay protection.
func (tx *Tx) Hash() signature.Hash {
	data, err := tx.NonSignedBytes()
	if err != nil {
		return signature.ZeroHash
	}

	return signature.Sum(data)
}

// Identities returns the hashes that identify the transaction for replay
// protection. A wrapped transaction may not be replayed on its own.
func (tx *Tx) Identities() []signature.Hash {
	hashes := []signature.Hash{tx.Hash()}
	if p, ok := tx.Payload.(*Multisig); ok {
		hashes = append(hashes, p.Inner.Hash())
	}

	return hashes
}

// Accounts returns every account other than the signer the transaction
// references.
func (tx *Tx) Accounts() []Account {
	switch p := tx.Payload.(type) {
	case *Transfer:
		return []Account{p.Recipient}

	case *ImportanceTransfer:
		return []Account{p.Remote}

	case *MultisigAggregateModification:
		accounts := make([]Account, len(p.Modifications))
		for i, mod := range p.Modifications {
			accounts[i] = mod.Cosignatory
		}
		return accounts

	case *MultisigSignature:
		return []Account{p.Multisig}

	case *Multisig:
		accounts := append([]Account{p.Inner.Signer}, p.Inner.Accounts()...)
		for _, sig := range p.Signatures {
			accounts = append(accounts, sig.Signer)
		}
		return accounts
	}

	return nil
}

// =============================================================================

// CompareTx orders transactions by type, version, timestamp and fee, with
// the signature bytes breaking ties.
func CompareTx(a, b *Tx) int {
	if c := cmp.Compare(a.Type(), b.Type()); c != 0 {
		return c
	}

	if c := cmp.Compare(a.Version, b.Version); c != 0 {
		return c
	}

	if c := cmp.Compare(a.TimeStamp, b.TimeStamp); c != 0 {
		return c
	}

	if c := cmp.Compare(a.Fee(), b.Fee()); c != 0 {
		return c
	}

	return bytes.Compare(a.Signature, b.Signature)
}
