package database

import (
	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
)

// Account identifies a participant on the chain. An account is known either
// by its public key, from which the address is derived, or only by its
// address when the key has never been seen.
type Account struct {
	Address   address.Address
	PublicKey signature.PublicKey
	KeyPair   *signature.KeyPair
}

// NewAccount constructs an account that is able to sign with the key pair.
func NewAccount(kp signature.KeyPair) Account {
	return Account{
		Address:   address.FromPublicKey(kp.PublicKey),
		PublicKey: kp.PublicKey,
		KeyPair:   &kp,
	}
}

// NewAccountFromPublicKey constructs an account from a public key.
func NewAccountFromPublicKey(pk signature.PublicKey) Account {
	return Account{
		Address:   address.FromPublicKey(pk),
		PublicKey: pk,
	}
}

// NewAccountFromAddress constructs an address only account.
func NewAccountFromAddress(a address.Address) Account {
	return Account{
		Address: a,
	}
}

// Equal reports whether both accounts share an address.
func (a Account) Equal(other Account) bool {
	return a.Address == other.Address
}

// HasPublicKey reports whether the account's public key is known.
func (a Account) HasPublicKey() bool {
	return len(a.PublicKey) > 0
}

// String implements the fmt.Stringer interface.
func (a Account) String() string {
	return string(a.Address)
}

// =============================================================================

// MessageType identifies how a message payload is encoded.
type MessageType uint8

// Set of message types.
const (
	MessageTypePlain  MessageType = 1
	MessageTypeSecure MessageType = 2
)

// Message is an optional payload attached to a transfer.
type Message struct {
	Type    MessageType `json:"type"`
	Payload []byte      `json:"payload"`
}

// Size returns the number of payload bytes.
func (m Message) Size() int {
	return len(m.Payload)
}
