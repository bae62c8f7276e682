package database

import (
	"fmt"
	"sort"

	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/ledger"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
	mapset "github.com/deckarep/golang-set/v2"
)

// AccountInfo holds the mutable details of an account.
type AccountInfo struct {
	Balance         primitive.Amount `json:"balance"`
	Label           string           `json:"label,omitempty"`
	Messages        []Message        `json:"messages,omitempty"`
	HarvestedBlocks uint64           `json:"harvestedBlocks"`
}

// AccountState is everything the chain knows about one account. States are
// only mutated by the commit observer.
type AccountState struct {
	Address   address.Address
	PublicKey signature.PublicKey
	Info      AccountInfo
	Weighted  *ledger.WeightedBalances
	Multisig  MultisigLinks
	Remote    RemoteLinks
}

// NewAccountState constructs an empty state for the address.
func NewAccountState(addr address.Address, policy ledger.VestingPolicy) *AccountState {
	return &AccountState{
		Address:  addr,
		Weighted: ledger.NewWeightedBalances(policy),
		Multisig: newMultisigLinks(),
	}
}

// Copy returns an independent deep copy of the state.
func (as *AccountState) Copy() *AccountState {
	info := as.Info
	info.Messages = append([]Message(nil), as.Info.Messages...)

	return &AccountState{
		Address:   as.Address,
		PublicKey: as.PublicKey,
		Info:      info,
		Weighted:  as.Weighted.Copy(),
		Multisig:  as.Multisig.copy(),
		Remote:    as.Remote.copy(),
	}
}

// shallowCopyTo points target at this state's contents.
func (as *AccountState) shallowCopyTo(target *AccountState) {
	target.PublicKey = as.PublicKey
	target.Info = as.Info
	target.Multisig = as.Multisig
	target.Remote = as.Remote
	as.Weighted.ShallowCopyTo(target.Weighted)
}

// =============================================================================

// MultisigLinks records the cosignatory relationships of an account. A
// multisig account has cosignatories; a cosignatory is linked to the
// multisig accounts it signs for.
type MultisigLinks struct {
	cosignatories mapset.Set[address.Address]
	cosignatoryOf mapset.Set[address.Address]
	Height        primitive.Height
}

func newMultisigLinks() MultisigLinks {
	return MultisigLinks{
		cosignatories: mapset.NewThreadUnsafeSet[address.Address](),
		cosignatoryOf: mapset.NewThreadUnsafeSet[address.Address](),
	}
}

// IsMultisig reports whether the account has any cosignatories.
func (ml MultisigLinks) IsMultisig() bool {
	return ml.cosignatories.Cardinality() > 0
}

// IsCosignatory reports whether the account cosigns for any account.
func (ml MultisigLinks) IsCosignatory() bool {
	return ml.cosignatoryOf.Cardinality() > 0
}

// HasCosignatory reports whether addr is a cosignatory of the account.
func (ml MultisigLinks) HasCosignatory(addr address.Address) bool {
	return ml.cosignatories.Contains(addr)
}

// IsCosignatoryOf reports whether the account cosigns for the multisig
// account at addr.
func (ml MultisigLinks) IsCosignatoryOf(addr address.Address) bool {
	return ml.cosignatoryOf.Contains(addr)
}

// Cosignatories returns the cosignatories in address order.
func (ml MultisigLinks) Cosignatories() []address.Address {
	return sorted(ml.cosignatories)
}

// CosignatoryOf returns the multisig accounts in address order.
func (ml MultisigLinks) CosignatoryOf() []address.Address {
	return sorted(ml.cosignatoryOf)
}

func (ml *MultisigLinks) addCosignatory(addr address.Address, height primitive.Height) {
	ml.cosignatories.Add(addr)
	ml.Height = height
}

func (ml *MultisigLinks) removeCosignatory(addr address.Address, height primitive.Height) {
	ml.cosignatories.Remove(addr)
	ml.Height = height
}

func (ml *MultisigLinks) addCosignatoryOf(addr address.Address, height primitive.Height) {
	ml.cosignatoryOf.Add(addr)
	ml.Height = height
}

func (ml *MultisigLinks) removeCosignatoryOf(addr address.Address, height primitive.Height) {
	ml.cosignatoryOf.Remove(addr)
	ml.Height = height
}

func (ml MultisigLinks) copy() MultisigLinks {
	return MultisigLinks{
		cosignatories: ml.cosignatories.Clone(),
		cosignatoryOf: ml.cosignatoryOf.Clone(),
		Height:        ml.Height,
	}
}

func sorted(set mapset.Set[address.Address]) []address.Address {
	out := set.ToSlice()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// =============================================================================

// RemoteOwner describes which side of an importance transfer an account is.
type RemoteOwner uint8

// Set of remote link owners.
const (
	HarvestingRemotely RemoteOwner = iota + 1
	RemoteHarvester
)

// RemoteLink records one importance transfer between a lessor and the
// remote account harvesting on its behalf.
type RemoteLink struct {
	Address address.Address
	Height  primitive.Height
	Mode    ImportanceMode
	Owner   RemoteOwner
}

// RemoteLinks is the height ordered history of an account's remote links.
type RemoteLinks struct {
	links []RemoteLink
}

// Current returns the most recent link.
func (rl RemoteLinks) Current() (RemoteLink, bool) {
	if len(rl.links) == 0 {
		return RemoteLink{}, false
	}

	return rl.links[len(rl.links)-1], true
}

// IsHarvestingRemotely reports whether the account has delegated its
// importance to an active remote account.
func (rl RemoteLinks) IsHarvestingRemotely() bool {
	link, exists := rl.Current()
	return exists && link.Owner == HarvestingRemotely && link.Mode == ImportanceActivate
}

// IsRemoteHarvester reports whether the account is an active remote for
// another account.
func (rl RemoteLinks) IsRemoteHarvester() bool {
	link, exists := rl.Current()
	return exists && link.Owner == RemoteHarvester && link.Mode == ImportanceActivate
}

// Len returns the number of links recorded.
func (rl RemoteLinks) Len() int {
	return len(rl.links)
}

func (rl *RemoteLinks) add(link RemoteLink) {
	rl.links = append(rl.links, link)
}

func (rl *RemoteLinks) remove(link RemoteLink) error {
	current, exists := rl.Current()
	if !exists || current != link {
		return fmt.Errorf("remote link %+v is not the most recent: %w", link, ledger.ErrInvalidOperation)
	}

	rl.links = rl.links[:len(rl.links)-1]
	return nil
}

func (rl RemoteLinks) copy() RemoteLinks {
	return RemoteLinks{
		links: append([]RemoteLink(nil), rl.links...),
	}
}
