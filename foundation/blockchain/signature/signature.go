// Package signature provides the sign, verify and hash service used by every
// signed entity on the chain.
package signature

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Set of error variables for key material handling.
var (
	ErrInvalidKey        = errors.New("invalid key material")
	ErrMissingPrivateKey = errors.New("key pair has no private key")
	ErrInvalidSignature  = errors.New("invalid signature")
)

// Length of a signature in its [R|S] form.
const Length = crypto.RecoveryIDOffset

// =============================================================================

// Hash represents a 32 byte Keccak256 digest.
type Hash [32]byte

// ZeroHash represents a hash code of zeros.
var ZeroHash Hash

// Sum returns the Keccak256 digest of the concatenated data.
func Sum(data ...[]byte) Hash {
	var h Hash
	copy(h[:], crypto.Keccak256(data...))
	return h
}

// HashFromHex parses a 0x prefixed hex string into a hash.
func HashFromHex(s string) (Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Hash{}, fmt.Errorf("decode hash: %w", err)
	}

	if len(b) != len(Hash{}) {
		return Hash{}, fmt.Errorf("hash length %d: %w", len(b), ErrInvalidKey)
	}

	var h Hash
	copy(h[:], b)
	return h, nil
}

// Bytes returns the hash as a slice of bytes.
func (h Hash) Bytes() []byte {
	return h[:]
}

// IsZero reports whether the hash is the zero hash.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// String returns the 0x prefixed hex form of the hash.
func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

// MarshalText implements the encoding.TextMarshaler interface.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (h *Hash) UnmarshalText(data []byte) error {
	v, err := HashFromHex(string(data))
	if err != nil {
		return err
	}

	*h = v
	return nil
}

// =============================================================================

// PublicKey is a compressed secp256k1 public key.
type PublicKey []byte

// PublicKeyFromHex parses and validates a 0x prefixed compressed public key.
func PublicKeyFromHex(s string) (PublicKey, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}

	if _, err := crypto.DecompressPubkey(b); err != nil {
		return nil, fmt.Errorf("%s: %w", err, ErrInvalidKey)
	}

	return PublicKey(b), nil
}

// Equal reports whether both keys hold the same bytes.
func (pk PublicKey) Equal(other PublicKey) bool {
	return bytes.Equal(pk, other)
}

// String returns the 0x prefixed hex form of the key.
func (pk PublicKey) String() string {
	return hexutil.Encode(pk)
}

// MarshalText implements the encoding.TextMarshaler interface.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (pk *PublicKey) UnmarshalText(data []byte) error {
	v, err := PublicKeyFromHex(string(data))
	if err != nil {
		return err
	}

	*pk = v
	return nil
}

// =============================================================================

// KeyPair holds a public key and, when the account is local, the private
// key that produces signatures for it.
type KeyPair struct {
	PrivateKey *ecdsa.PrivateKey
	PublicKey  PublicKey
}

// GenerateKeyPair constructs a new random key pair.
func GenerateKeyPair() (KeyPair, error) {
	pk, err := crypto.GenerateKey()
	if err != nil {
		return KeyPair{}, err
	}

	return NewKeyPair(pk), nil
}

// NewKeyPair constructs a key pair from a private key.
func NewKeyPair(privateKey *ecdsa.PrivateKey) KeyPair {
	return KeyPair{
		PrivateKey: privateKey,
		PublicKey:  crypto.CompressPubkey(&privateKey.PublicKey),
	}
}

// KeyPairFromHex constructs a key pair from a hex encoded private key.
func KeyPairFromHex(hexKey string) (KeyPair, error) {
	pk, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return KeyPair{}, fmt.Errorf("%s: %w", err, ErrInvalidKey)
	}

	return NewKeyPair(pk), nil
}

// LoadKeyPair reads a hex encoded private key from the specified file.
func LoadKeyPair(path string) (KeyPair, error) {
	pk, err := crypto.LoadECDSA(path)
	if err != nil {
		return KeyPair{}, fmt.Errorf("load key %q: %w", path, err)
	}

	return NewKeyPair(pk), nil
}

// HasPrivateKey reports whether the pair is able to sign.
func (kp KeyPair) HasPrivateKey() bool {
	return kp.PrivateKey != nil
}

// =============================================================================

// Signature is a secp256k1 signature in its [R|S] form.
type Signature []byte

// String returns the 0x prefixed hex form of the signature.
func (s Signature) String() string {
	return hexutil.Encode(s)
}

// MarshalText implements the encoding.TextMarshaler interface.
func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (s *Signature) UnmarshalText(data []byte) error {
	b, err := hexutil.Decode(string(data))
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}

	*s = b
	return nil
}

// Sign uses the key pair's private key to sign the data.
func Sign(data []byte, kp KeyPair) (Signature, error) {
	if !kp.HasPrivateKey() {
		return nil, ErrMissingPrivateKey
	}

	// Prepare the data for signing.
	digest := stamp(data)

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(digest, kp.PrivateKey)
	if err != nil {
		return nil, err
	}

	// Check the public key verifies the signature before handing it out.
	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(kp.PublicKey, digest, rs) {
		return nil, ErrInvalidSignature
	}

	return Signature(rs), nil
}

// Verify reports whether the signature was produced over the data by the
// private key matching the public key.
func Verify(data []byte, publicKey PublicKey, sig Signature) bool {
	if len(sig) != Length || len(publicKey) == 0 {
		return false
	}

	return crypto.VerifySignature(publicKey, stamp(data), sig)
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this data with
// the chain stamp embedded into the final hash.
func stamp(data []byte) []byte {

	// Hash the data into a 32 byte array. This will provide a data length
	// consistency with all data.
	txHash := crypto.Keccak256(data)

	// This stamp is used so signatures we produce when signing data are
	// always unique to this chain.
	stamp := []byte("\x19Poichain Signed Message:\n32")

	// Hash the stamp and txHash together in a final 32 byte array
	// that represents the data.
	return crypto.Keccak256(stamp, txHash)
}
