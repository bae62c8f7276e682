package database

import (
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
)

// TxType identifies the variant of a transaction.
type TxType uint32

// Set of transaction types.
const (
	TxTransfer                      TxType = 0x0101
	TxImportanceTransfer            TxType = 0x0801
	TxMultisigAggregateModification TxType = 0x1001
	TxMultisigSignature             TxType = 0x1002
	TxMultisig                      TxType = 0x1004
)

var txTypeNames = map[TxType]string{
	TxTransfer:                      "transfer",
	TxImportanceTransfer:            "importance-transfer",
	TxMultisigAggregateModification: "multisig-aggregate-modification",
	TxMultisigSignature:             "multisig-signature",
	TxMultisig:                      "multisig",
}

// String implements the fmt.Stringer interface.
func (t TxType) String() string {
	if s, exists := txTypeNames[t]; exists {
		return s
	}

	return "unknown"
}

// Payload is the variant specific part of a transaction. The set of
// payloads is closed to this package.
type Payload interface {
	txType() TxType
}

// =============================================================================

// Transfer moves an amount from the signer to the recipient.
type Transfer struct {
	Recipient Account
	Amount    primitive.Amount
	Message   Message
}

func (*Transfer) txType() TxType { return TxTransfer }

// ImportanceMode tells whether an importance transfer starts or stops remote
// harvesting.
type ImportanceMode uint8

// Set of importance transfer modes.
const (
	ImportanceActivate   ImportanceMode = 1
	ImportanceDeactivate ImportanceMode = 2
)

// ImportanceTransfer delegates the signer's harvesting importance to a
// remote account.
type ImportanceTransfer struct {
	Mode   ImportanceMode
	Remote Account
}

func (*ImportanceTransfer) txType() TxType { return TxImportanceTransfer }

// ModificationType tells whether a cosignatory is added or removed.
type ModificationType uint8

// Set of cosignatory modification types.
const (
	ModificationAddCosignatory ModificationType = 1
	ModificationDelCosignatory ModificationType = 2
)

// MultisigModification adds or removes one cosignatory.
type MultisigModification struct {
	Type        ModificationType
	Cosignatory Account
}

// MultisigAggregateModification changes the cosignatories of the signer,
// converting it into a multisig account on first use.
type MultisigAggregateModification struct {
	Modifications []MultisigModification
}

func (*MultisigAggregateModification) txType() TxType { return TxMultisigAggregateModification }

// MultisigSignature is a cosignatory's approval of a pending multisig
// transaction.
type MultisigSignature struct {
	OtherHash signature.Hash
	Multisig  Account
}

func (*MultisigSignature) txType() TxType { return TxMultisigSignature }

// Multisig wraps a transaction issued on behalf of a multisig account. The
// wrapper is signed by one cosignatory and carries the other cosignatories'
// signatures. All fees are paid by the multisig account.
type Multisig struct {
	Inner      *Tx
	Signatures []*Tx
}

func (*Multisig) txType() TxType { return TxMultisig }
