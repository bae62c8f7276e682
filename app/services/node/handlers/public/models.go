package public

import (
	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
	"github.com/ardanlabs/poichain/foundation/blockchain/state"
)

type account struct {
	Address         address.Address     `json:"address"`
	Name            string              `json:"name"`
	PublicKey       signature.PublicKey `json:"publicKey,omitempty"`
	Balance         primitive.Amount    `json:"balance"`
	Vested          primitive.Amount    `json:"vested"`
	Unvested        primitive.Amount    `json:"unvested"`
	Importance      uint64              `json:"importance"`
	HarvestedBlocks uint64              `json:"harvestedBlocks"`
	Label           string              `json:"label,omitempty"`
	Cosignatories   []address.Address   `json:"cosignatories,omitempty"`
	CosignatoryOf   []address.Address   `json:"cosignatoryOf,omitempty"`
	RemoteStatus    string              `json:"remoteStatus"`
}

type historical struct {
	Address address.Address `json:"address"`
	state.Balance
}

type unconfirmed struct {
	Hash     signature.Hash        `json:"hash"`
	Signer   string                `json:"signer"`
	Fee      primitive.Amount      `json:"fee"`
	Deadline primitive.TimeInstant `json:"deadline"`
	Tx       *database.Tx          `json:"tx"`
}

type submitted struct {
	Status string         `json:"status"`
	Hash   signature.Hash `json:"hash,omitempty"`
	Height uint64         `json:"height,omitempty"`
}
