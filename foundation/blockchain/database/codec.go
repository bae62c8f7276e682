package database

import (
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/rlp"
)

// rlpTx is the canonical non signed form of a transaction. It is what gets
// hashed and signed.
type rlpTx struct {
	Type      uint32
	Version   uint32
	TimeStamp uint32
	Signer    []byte
	Fee       uint64
	Deadline  uint32
	Payload   []byte
}

type rlpTransfer struct {
	Recipient   string
	Amount      uint64
	MessageType uint8
	Message     []byte
}

type rlpImportanceTransfer struct {
	Mode   uint8
	Remote string
}

type rlpModification struct {
	Type        uint8
	Cosignatory string
}

type rlpMultisigSignature struct {
	OtherHash []byte
	Multisig  string
}

// rlpSignedTx is the full form of a transaction used inside a block.
type rlpSignedTx struct {
	NonSigned  []byte
	Signature  []byte
	Signatures [][]byte
}

// NonSignedBytes returns the canonical encoding of the transaction without
// its signature.
func (tx *Tx) NonSignedBytes() ([]byte, error) {
	payload, err := tx.encodePayload()
	if err != nil {
		return nil, err
	}

	return rlp.EncodeToBytes(rlpTx{
		Type:      uint32(tx.Type()),
		Version:   tx.Version,
		TimeStamp: uint32(tx.TimeStamp),
		Signer:    tx.Signer.PublicKey,
		Fee:       uint64(tx.fee),
		Deadline:  uint32(tx.Deadline),
		Payload:   payload,
	})
}

// signedBytes returns the canonical encoding of the transaction including
// its signature and any attached cosignatory signatures.
func (tx *Tx) signedBytes() ([]byte, error) {
	if tx == nil {
		return nil, ErrNullTransaction
	}

	data, err := tx.NonSignedBytes()
	if err != nil {
		return nil, err
	}

	v := rlpSignedTx{
		NonSigned: data,
		Signature: tx.Signature,
	}

	if p, ok := tx.Payload.(*Multisig); ok {
		for _, sig := range p.Signatures {
			b, err := sig.signedBytes()
			if err != nil {
				return nil, err
			}
			v.Signatures = append(v.Signatures, b)
		}
	}

	return rlp.EncodeToBytes(v)
}

func (tx *Tx) encodePayload() ([]byte, error) {
	switch p := tx.Payload.(type) {
	case *Transfer:
		return rlp.EncodeToBytes(rlpTransfer{
			Recipient:   string(p.Recipient.Address),
			Amount:      uint64(p.Amount),
			MessageType: uint8(p.Message.Type),
			Message:     p.Message.Payload,
		})

	case *ImportanceTransfer:
		return rlp.EncodeToBytes(rlpImportanceTransfer{
			Mode:   uint8(p.Mode),
			Remote: string(p.Remote.Address),
		})

	case *MultisigAggregateModification:
		mods := make([]rlpModification, len(p.Modifications))
		for i, mod := range p.Modifications {
			mods[i] = rlpModification{
				Type:        uint8(mod.Type),
				Cosignatory: string(mod.Cosignatory.Address),
			}
		}
		return rlp.EncodeToBytes(mods)

	case *MultisigSignature:
		return rlp.EncodeToBytes(rlpMultisigSignature{
			OtherHash: p.OtherHash.Bytes(),
			Multisig:  string(p.Multisig.Address),
		})

	case *Multisig:
		if p.Inner == nil {
			return nil, fmt.Errorf("multisig: %w", errMissingPayload)
		}
		return p.Inner.NonSignedBytes()
	}

	return nil, errMissingPayload
}

// =============================================================================

// txJSON is the wire form of a transaction. Variant fields are only present
// for the matching type.
type txJSON struct {
	Type      TxType                `json:"type"`
	Version   uint32                `json:"version"`
	TimeStamp primitive.TimeInstant `json:"timeStamp"`
	Deadline  primitive.TimeInstant `json:"deadline"`
	Signer    signature.PublicKey   `json:"signer"`
	Signature signature.Signature   `json:"signature,omitempty"`
	Fee       primitive.Amount      `json:"fee"`

	Recipient address.Address  `json:"recipient,omitempty"`
	Amount    primitive.Amount `json:"amount,omitempty"`
	Message   *Message         `json:"message,omitempty"`

	Mode          ImportanceMode  `json:"mode,omitempty"`
	RemoteAccount address.Address `json:"remoteAccount,omitempty"`

	Modifications []modificationJSON `json:"modifications,omitempty"`

	OtherHash    *signature.Hash `json:"otherHash,omitempty"`
	OtherAccount address.Address `json:"otherAccount,omitempty"`

	OtherTrans *Tx   `json:"otherTrans,omitempty"`
	Signatures []*Tx `json:"signatures,omitempty"`
}

type modificationJSON struct {
	ModificationType   ModificationType `json:"modificationType"`
	CosignatoryAccount address.Address  `json:"cosignatoryAccount"`
}

// MarshalJSON implements the json.Marshaler interface.
func (tx *Tx) MarshalJSON() ([]byte, error) {
	v := txJSON{
		Type:      tx.Type(),
		Version:   tx.Version,
		TimeStamp: tx.TimeStamp,
		Deadline:  tx.Deadline,
		Signer:    tx.Signer.PublicKey,
		Signature: tx.Signature,
		Fee:       tx.fee,
	}

	switch p := tx.Payload.(type) {
	case *Transfer:
		v.Recipient = p.Recipient.Address
		v.Amount = p.Amount
		if p.Message.Size() > 0 {
			msg := p.Message
			v.Message = &msg
		}

	case *ImportanceTransfer:
		v.Mode = p.Mode
		v.RemoteAccount = p.Remote.Address

	case *MultisigAggregateModification:
		v.Modifications = make([]modificationJSON, len(p.Modifications))
		for i, mod := range p.Modifications {
			v.Modifications[i] = modificationJSON{
				ModificationType:   mod.Type,
				CosignatoryAccount: mod.Cosignatory.Address,
			}
		}

	case *MultisigSignature:
		hash := p.OtherHash
		v.OtherHash = &hash
		v.OtherAccount = p.Multisig.Address

	case *Multisig:
		v.OtherTrans = p.Inner
		v.Signatures = p.Signatures

	default:
		return nil, errMissingPayload
	}

	return json.Marshal(v)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (tx *Tx) UnmarshalJSON(data []byte) error {
	var v txJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*tx = Tx{
		Version:   v.Version,
		TimeStamp: v.TimeStamp,
		Deadline:  v.Deadline,
		Signer:    NewAccountFromPublicKey(v.Signer),
		Signature: v.Signature,
		fee:       v.Fee,
	}

	switch v.Type {
	case TxTransfer:
		p := Transfer{
			Recipient: NewAccountFromAddress(v.Recipient),
			Amount:    v.Amount,
		}
		if v.Message != nil {
			p.Message = *v.Message
		}
		tx.Payload = &p

	case TxImportanceTransfer:
		tx.Payload = &ImportanceTransfer{
			Mode:   v.Mode,
			Remote: NewAccountFromAddress(v.RemoteAccount),
		}

	case TxMultisigAggregateModification:
		mods := make([]MultisigModification, len(v.Modifications))
		for i, mod := range v.Modifications {
			mods[i] = MultisigModification{
				Type:        mod.ModificationType,
				Cosignatory: NewAccountFromAddress(mod.CosignatoryAccount),
			}
		}
		tx.Payload = &MultisigAggregateModification{Modifications: mods}

	case TxMultisigSignature:
		if v.OtherHash == nil {
			return fmt.Errorf("multisig signature: missing other hash")
		}
		tx.Payload = &MultisigSignature{
			OtherHash: *v.OtherHash,
			Multisig:  NewAccountFromAddress(v.OtherAccount),
		}

	case TxMultisig:
		if v.OtherTrans == nil {
			return fmt.Errorf("multisig: missing inner transaction")
		}
		for i, sig := range v.Signatures {
			if sig == nil {
				return fmt.Errorf("multisig: signature[%d]: %w", i, ErrNullTransaction)
			}
		}
		tx.Payload = &Multisig{
			Inner:      v.OtherTrans,
			Signatures: v.Signatures,
		}

	default:
		return fmt.Errorf("unknown transaction type 0x%x", uint32(v.Type))
	}

	return nil
}
