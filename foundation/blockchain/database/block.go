package database

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/rlp"
)

// ErrChainForked is returned when a block does not build on the parent it
// claims.
var ErrChainForked = errors.New("blockchain forked, start resync")

// BlockType separates the nemesis block from harvested blocks.
type BlockType uint32

// Set of block types.
const (
	BlockTypeNemesis BlockType = 0xFFFF_FFFF
	BlockTypeRegular BlockType = 1
)

// BlockVersion is the current block version.
const BlockVersion uint32 = 1

// =============================================================================

// Block represents a group of transactions harvested together. The
// difficulty and generation hash are derived from the chain and are not
// part of the signed form.
type Block struct {
	Type           BlockType
	Version        uint32
	TimeStamp      primitive.TimeInstant
	Signer         Account
	Signature      signature.Signature
	PrevBlockHash  signature.Hash
	GenerationHash signature.Hash
	Height         primitive.Height
	TotalFee       primitive.Amount
	Transactions   []*Tx
	Difficulty     primitive.Difficulty
}

// NewBlock constructs an unsigned block that extends the parent.
func NewBlock(forger Account, parent *Block, timeStamp primitive.TimeInstant) *Block {
	return &Block{
		Type:           BlockTypeRegular,
		Version:        BlockVersion,
		TimeStamp:      timeStamp,
		Signer:         forger,
		PrevBlockHash:  parent.Hash(),
		GenerationHash: NextGenerationHash(parent.GenerationHash, forger),
		Height:         parent.Height.Next(),
		Difficulty:     primitive.InitialDifficulty,
	}
}

// NewNemesisBlock constructs the first block of the chain.
func NewNemesisBlock(signer Account, timeStamp primitive.TimeInstant, txs []*Tx) *Block {
	b := Block{
		Type:           BlockTypeNemesis,
		Version:        BlockVersion,
		TimeStamp:      timeStamp,
		Signer:         signer,
		GenerationHash: NextGenerationHash(signature.ZeroHash, signer),
		Height:         primitive.NemesisHeight,
		Difficulty:     primitive.InitialDifficulty,
	}

	for _, tx := range txs {
		b.AddTransaction(tx)
	}

	return &b
}

// NextGenerationHash derives a block's generation hash from its parent's
// and the forger's public key.
func NextGenerationHash(parent signature.Hash, forger Account) signature.Hash {
	return signature.Sum(parent.Bytes(), forger.PublicKey)
}

// AddTransaction appends the transaction and accumulates its fee.
func (b *Block) AddTransaction(tx *Tx) {
	b.Transactions = append(b.Transactions, tx)
	b.TotalFee += tx.Fee()
}

// SetDifficulty records the difficulty the block was harvested at.
func (b *Block) SetDifficulty(d primitive.Difficulty) {
	b.Difficulty = d
}

// IsNemesis reports whether this is the first block of the chain.
func (b *Block) IsNemesis() bool {
	return b.Type == BlockTypeNemesis
}

// String implements the fmt.Stringer interface.
func (b *Block) String() string {
	return fmt.Sprintf("blk[%d]: %s", b.Height, b.Hash())
}

// =============================================================================

// Execute applies every transaction in order and then rewards the harvester
// with the block's fees.
func (b *Block) Execute(observers ...Observer) error {
	ctx := b.context(TriggerExecute)

	for _, tx := range b.Transactions {
		if err := tx.Execute(ctx, observers...); err != nil {
			return fmt.Errorf("%s: %w", b, err)
		}
	}

	return b.Reward(observers...)
}

// Reward credits the block fees to the harvester. Execute calls it after
// the transactions have been applied.
func (b *Block) Reward(observers ...Observer) error {
	return notify([]Notification{b.harvestNotification()}, b.context(TriggerExecute), observers)
}

// Undo reverts Execute.
func (b *Block) Undo(observers ...Observer) error {
	ctx := b.context(TriggerUndo)

	if err := notify([]Notification{b.harvestNotification()}, ctx, observers); err != nil {
		return err
	}

	for i := len(b.Transactions) - 1; i >= 0; i-- {
		if err := b.Transactions[i].Undo(ctx, observers...); err != nil {
			return fmt.Errorf("%s: %w", b, err)
		}
	}

	return nil
}

func (b *Block) context(trigger Trigger) NotificationContext {
	return NotificationContext{
		Height:    b.Height,
		TimeStamp: b.TimeStamp,
		Trigger:   trigger,
	}
}

func (b *Block) harvestNotification() Notification {
	return Notification{
		Type:    NotifyBlockHarvest,
		Account: b.Signer,
		Amount:  b.TotalFee,
	}
}

// =============================================================================

type rlpBlock struct {
	Type          uint32
	Version       uint32
	TimeStamp     uint32
	Signer        []byte
	PrevBlockHash []byte
	Height        uint64
	Transactions  [][]byte
}

type rlpSignedBlock struct {
	NonSigned []byte
	Signature []byte
}

// NonSignedBytes returns the canonical encoding of the block without its
// signature. Every transaction is included in its signed form.
func (b *Block) NonSignedBytes() ([]byte, error) {
	v := rlpBlock{
		Type:          uint32(b.Type),
		Version:       b.Version,
		TimeStamp:     uint32(b.TimeStamp),
		Signer:        b.Signer.PublicKey,
		PrevBlockHash: b.PrevBlockHash.Bytes(),
		Height:        b.Height.Uint64(),
		Transactions:  make([][]byte, len(b.Transactions)),
	}

	for i, tx := range b.Transactions {
		data, err := tx.signedBytes()
		if err != nil {
			return nil, fmt.Errorf("tx[%d]: %w", i, err)
		}
		v.Transactions[i] = data
	}

	return rlp.EncodeToBytes(v)
}

// Sign signs the block with the forger's key pair.
func (b *Block) Sign() error {
	if b.Signer.KeyPair == nil {
		return signature.ErrMissingPrivateKey
	}

	data, err := b.NonSignedBytes()
	if err != nil {
		return err
	}

	sig, err := signature.Sign(data, *b.Signer.KeyPair)
	if err != nil {
		return err
	}

	b.Signature = sig
	return nil
}

// Verify reports whether the block signature matches the forger.
func (b *Block) Verify() bool {
	data, err := b.NonSignedBytes()
	if err != nil {
		return false
	}

	return signature.Verify(data, b.Signer.PublicKey, b.Signature)
}

// Hash returns the hash of the signed block.
func (b *Block) Hash() signature.Hash {
	data, err := b.NonSignedBytes()
	if err != nil {
		return signature.ZeroHash
	}

	signed, err := rlp.EncodeToBytes(rlpSignedBlock{NonSigned: data, Signature: b.Signature})
	if err != nil {
		return signature.ZeroHash
	}

	return signature.Sum(signed)
}

// =============================================================================

// blockJSON is the wire form of a block.
type blockJSON struct {
	Type          BlockType             `json:"type"`
	Version       uint32                `json:"version"`
	TimeStamp     primitive.TimeInstant `json:"timeStamp"`
	Signer        signature.PublicKey   `json:"signer"`
	Signature     signature.Signature   `json:"signature,omitempty"`
	PrevBlockHash signature.Hash        `json:"prevBlockHash"`
	Height        primitive.Height      `json:"height"`
	Difficulty    primitive.Difficulty  `json:"difficulty"`
	Transactions  []*Tx                 `json:"transactions"`
}

// MarshalJSON implements the json.Marshaler interface.
func (b *Block) MarshalJSON() ([]byte, error) {
	txs := b.Transactions
	if txs == nil {
		txs = []*Tx{}
	}

	return json.Marshal(blockJSON{
		Type:          b.Type,
		Version:       b.Version,
		TimeStamp:     b.TimeStamp,
		Signer:        b.Signer.PublicKey,
		Signature:     b.Signature,
		PrevBlockHash: b.PrevBlockHash,
		Height:        b.Height,
		Difficulty:    b.Difficulty,
		Transactions:  txs,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface. The total fee is
// recomputed from the transactions and the generation hash is left for the
// chain to derive.
func (b *Block) UnmarshalJSON(data []byte) error {
	var v blockJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*b = Block{
		Type:          v.Type,
		Version:       v.Version,
		TimeStamp:     v.TimeStamp,
		Signer:        NewAccountFromPublicKey(v.Signer),
		Signature:     v.Signature,
		PrevBlockHash: v.PrevBlockHash,
		Height:        v.Height,
		Difficulty:    v.Difficulty,
	}

	for i, tx := range v.Transactions {
		if tx == nil {
			return fmt.Errorf("block: transaction[%d]: %w", i, ErrNullTransaction)
		}
		b.AddTransaction(tx)
	}

	return nil
}
