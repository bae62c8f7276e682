// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/genesis"
	"github.com/ardanlabs/poichain/foundation/blockchain/hashcache"
	"github.com/ardanlabs/poichain/foundation/blockchain/importance"
	"github.com/ardanlabs/poichain/foundation/blockchain/ledger"
	"github.com/ardanlabs/poichain/foundation/blockchain/mempool"
	"github.com/ardanlabs/poichain/foundation/blockchain/peer"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
	"github.com/ardanlabs/poichain/foundation/blockchain/validation"
	"github.com/ardanlabs/poichain/foundation/blockchain/validator"
)

// ErrGenesisMismatch is returned when the stored chain was not built from
// the configured genesis.
var ErrGenesisMismatch = errors.New("stored nemesis block does not match genesis")

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for harvesting, peer updates, and sharing.
type Worker interface {
	Shutdown()
	SignalHarvest()
	SignalShareTx(tx *database.Tx)
	SignalShareBlock(block *database.Block)
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Harvester       database.Account
	Host            string
	Storage         database.Serializer
	Genesis         genesis.Genesis
	SelectStrategy  string
	ReplayCacheSize int
	KnownPeers      *peer.PeerSet
	Scorer          validator.Scorer
	Importance      importance.Generator
	VestingPolicy   ledger.VestingPolicy
	CurrentTime     func() primitive.TimeInstant
	EvHandler       EventHandler
}

// State manages the blockchain database.
type State struct {
	mu sync.RWMutex

	harvester    database.Account
	probe        database.Account
	host         string
	evHandler    EventHandler
	scorer       validator.Scorer
	importance   importance.Generator
	currentTime  func() primitive.TimeInstant
	maxChainSize int

	knownPeers *peer.PeerSet
	genesis    genesis.Genesis
	mempool    *mempool.Mempool
	storage    database.Serializer
	states     *database.Cache
	hashes     *hashcache.Cache
	recent     []*database.Block

	Worker Worker
}

// New constructs a new blockchain for data management. The genesis is
// applied and every block found in storage is replayed through the
// validator before the node is handed back.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Construct a mempool with the specified sort strategy.
	mempool, err := mempool.NewWithStrategy(cfg.SelectStrategy)
	if err != nil {
		return nil, err
	}

	size := cfg.ReplayCacheSize
	if size <= 0 {
		size = hashcache.DefaultSize
	}
	hashes, err := hashcache.New(size)
	if err != nil {
		return nil, err
	}

	// The probe account signs the blocks used to check transactions before
	// they are accepted into the mempool.
	probe, err := signature.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	state := State{
		harvester:    cfg.Harvester,
		probe:        database.NewAccount(probe),
		host:         cfg.Host,
		evHandler:    ev,
		scorer:       cfg.Scorer,
		importance:   cfg.Importance,
		currentTime:  cfg.CurrentTime,
		maxChainSize: cfg.Genesis.MaxChainSize,

		knownPeers: cfg.KnownPeers,
		genesis:    cfg.Genesis,
		mempool:    mempool,
		storage:    cfg.Storage,
		states:     database.NewCache(cfg.VestingPolicy),
		hashes:     hashes,
	}

	if state.importance == nil {
		state.importance = importance.PoS{}
	}
	if state.currentTime == nil {
		state.currentTime = primitive.Now
	}
	if state.maxChainSize <= 0 {
		state.maxChainSize = primitive.MaxChainSize
	}
	if state.knownPeers == nil {
		state.knownPeers = peer.NewPeerSet()
	}

	if err := state.applyGenesis(); err != nil {
		return nil, err
	}

	if err := state.replay(); err != nil {
		return nil, err
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {

	// Make sure the database file is properly closed.
	defer func() {
		s.storage.Close()
	}()

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// applyGenesis credits the initial balances and makes the nemesis block the
// tip of the chain.
func (s *State) applyGenesis() error {
	nemesis := s.genesis.NemesisBlock()

	if err := s.genesis.Apply(s.states); err != nil {
		return err
	}

	if err := nemesis.Execute(database.NewCommitObserver(s.states)); err != nil {
		return fmt.Errorf("nemesis: %w", err)
	}

	s.recent = []*database.Block{nemesis}

	return nil
}

// replay reads the stored chain and applies it on top of the nemesis block.
// An empty store is seeded with the nemesis block.
func (s *State) replay() error {
	s.evHandler("state: replay: started")
	defer s.evHandler("state: replay: completed: tip[%d]", s.latest().Height)

	nemesis := s.recent[0]

	iter := s.storage.ForEach()
	block, err := iter.Next()
	if iter.Done() {
		s.evHandler("state: replay: empty storage: write nemesis")
		return s.storage.Write(nemesis)
	}
	if err != nil {
		return err
	}

	if block.Hash() != nemesis.Hash() {
		return fmt.Errorf("%s: %w", block, ErrGenesisMismatch)
	}

	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return err
		}

		parent := s.latest()
		window := s.windowAt(parent.Height)
		block.SetDifficulty(window.Next(block.Height))

		states := s.states.Copy()
		v := s.newValidator(s.hashes, s.scorer)
		if result := v.IsValid(parent, []*database.Block{block}, states); result != validation.Success {
			return fmt.Errorf("replay %s: %w", block, &ValidationError{Result: result})
		}

		s.states.Replace(states)
		s.commitHashes(block)
		s.pushRecent(block)
	}

	return nil
}

// newValidator constructs a validator bound to the node's clock and limits.
func (s *State) newValidator(hashes validator.HashLookup, scorer validator.Scorer) *validator.Validator {
	return validator.New(validator.Config{
		MaxChainSize: s.maxChainSize,
		Scorer:       scorer,
		Hashes:       hashes,
		CurrentTime:  s.currentTime,
		EvHandler:    validator.EventHandler(s.evHandler),
	})
}
