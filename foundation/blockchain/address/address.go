// Package address derives and validates the encoded account addresses used
// to identify accounts on the chain.
package address

import (
	"bytes"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"

	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
)

// ErrInvalidAddress is returned when an encoded address fails decoding,
// version or checksum checks.
var ErrInvalidAddress = errors.New("invalid address")

// Version is the network byte prefixed to every address.
const Version byte = 0x68

const (
	checksumSize = 4
	decodedSize  = 1 + ripemd160.Size + checksumSize

	// EncodedSize is the length of the base32 form of an address.
	EncodedSize = decodedSize * 8 / 5
)

// Address is the base32 encoded form of an account address.
type Address string

// FromPublicKey derives the address for the specified public key.
func FromPublicKey(publicKey signature.PublicKey) Address {

	// Hash the public key and reduce it to 20 bytes.
	sha := crypto.Keccak256(publicKey)
	r := ripemd160.New()
	r.Write(sha)
	digest := r.Sum(nil)

	// Prefix the network version and append the checksum.
	versioned := append([]byte{Version}, digest...)
	data := append(versioned, checksum(versioned)...)

	return Address(base32.StdEncoding.EncodeToString(data))
}

// FromEncoded parses and validates an encoded address. Lowercase input and
// dash separators are accepted.
func FromEncoded(encoded string) (Address, error) {
	a := Address(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(encoded), "-", "")))
	if err := a.Validate(); err != nil {
		return "", err
	}

	return a, nil
}

// Validate checks the encoding, version byte and checksum of the address.
func (a Address) Validate() error {
	if len(a) != EncodedSize {
		return fmt.Errorf("length %d: %w", len(a), ErrInvalidAddress)
	}

	data, err := base32.StdEncoding.DecodeString(string(a))
	if err != nil {
		return fmt.Errorf("%s: %w", err, ErrInvalidAddress)
	}

	if data[0] != Version {
		return fmt.Errorf("version 0x%x: %w", data[0], ErrInvalidAddress)
	}

	body := data[:1+ripemd160.Size]
	if !bytes.Equal(checksum(body), data[1+ripemd160.Size:]) {
		return fmt.Errorf("checksum mismatch: %w", ErrInvalidAddress)
	}

	return nil
}

// IsValid reports whether the address passes validation.
func (a Address) IsValid() bool {
	return a.Validate() == nil
}

// String implements the fmt.Stringer interface.
func (a Address) String() string {
	return string(a)
}

// checksum returns the first bytes of the Keccak256 digest of data.
func checksum(data []byte) []byte {
	return crypto.Keccak256(data)[:checksumSize]
}
