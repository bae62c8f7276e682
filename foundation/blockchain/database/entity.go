package database

import (
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
	"github.com/ardanlabs/poichain/foundation/blockchain/validation"
)

// VerifiableEntity is the signed envelope shared by blocks and transactions.
// The non signed bytes are what gets hashed and signed.
type VerifiableEntity interface {
	NonSignedBytes() ([]byte, error)
	Sign() error
	Verify() bool
	Hash() signature.Hash
}

// Set of entities that carry a signature.
var (
	_ VerifiableEntity = (*Tx)(nil)
	_ VerifiableEntity = (*Block)(nil)
)

// VerifyEntity maps the outcome of signature verification to a result.
func VerifyEntity(e VerifiableEntity) validation.Result {
	if !e.Verify() {
		return validation.FailureSignatureNotVerifiable
	}

	return validation.Success
}
