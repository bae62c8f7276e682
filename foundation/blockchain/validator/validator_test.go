package validator_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/ledger"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
	"github.com/ardanlabs/poichain/foundation/blockchain/validation"
	"github.com/ardanlabs/poichain/foundation/blockchain/validator"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// Timestamps used by every chain built in these tests.
const (
	txTime    primitive.TimeInstant = 50
	blockTime primitive.TimeInstant = 100
	now       primitive.TimeInstant = 200
)

// =============================================================================

// alwaysHit accepts every forger.
type alwaysHit struct{}

func (alwaysHit) CalculateHit(*database.Block) *big.Int { return big.NewInt(0) }

func (alwaysHit) CalculateTarget(*database.Block, *database.Block, *database.Cache) *big.Int {
	return big.NewInt(1)
}

// neverHit rejects every forger.
type neverHit struct{ alwaysHit }

func (neverHit) CalculateHit(*database.Block) *big.Int { return big.NewInt(1) }

// hashSet is a replay cache holding a fixed set of hashes.
type hashSet map[signature.Hash]bool

func (hs hashSet) Contains(hash signature.Hash) bool { return hs[hash] }

// fixture holds the accounts and state every test starts from.
type fixture struct {
	t       *testing.T
	states  *database.Cache
	parent  *database.Block
	forger  database.Account
	account map[string]database.Account
}

func newFixture(t *testing.T, balances map[string]uint64) *fixture {
	f := fixture{
		t:       t,
		states:  database.NewCache(ledger.DecayPolicy{}),
		account: make(map[string]database.Account),
	}

	f.forger = f.newAccount()
	f.parent = database.NewNemesisBlock(f.newAccount(), 0, nil)

	for _, name := range []string{"A", "B", "C", "M", "C1", "C2", "R", "R2"} {
		f.account[name] = f.newAccount()
	}

	for name, units := range balances {
		as := f.states.FindState(f.account[name])
		amt := primitive.FromUnits(units)
		as.Info.Balance = amt
		if err := as.Weighted.AddFullyVested(primitive.NemesisHeight, amt); err != nil {
			t.Fatalf("\t%s\tShould be able to fund account %s: %v", failed, name, err)
		}
	}

	return &f
}

func (f *fixture) newAccount() database.Account {
	kp, err := signature.GenerateKeyPair()
	if err != nil {
		f.t.Fatalf("\t%s\tShould be able to generate a key pair: %v", failed, err)
	}

	return database.NewAccount(kp)
}

func (f *fixture) sign(e database.VerifiableEntity) {
	if err := e.Sign(); err != nil {
		f.t.Fatalf("\t%s\tShould be able to sign: %v", failed, err)
	}
}

func (f *fixture) block(parent *database.Block, txs ...*database.Tx) *database.Block {
	b := database.NewBlock(f.forger, parent, blockTime+primitive.TimeInstant(parent.Height))
	for _, tx := range txs {
		b.AddTransaction(tx)
	}
	f.sign(b)

	return b
}

func (f *fixture) transfer(from string, to string, units uint64, feeUnits uint64) *database.Tx {
	tx := database.NewTransfer(f.account[from], txTime, f.account[to], primitive.FromUnits(units), database.Message{})
	if feeUnits > 0 {
		tx.SetFee(primitive.FromUnits(feeUnits))
	}
	f.sign(tx)

	return tx
}

func (f *fixture) modification(signer string, mods ...database.MultisigModification) *database.Tx {
	tx := database.NewMultisigAggregateModification(f.account[signer], txTime, mods)
	f.sign(tx)

	return tx
}

func (f *fixture) add(name string) database.MultisigModification {
	return database.MultisigModification{Type: database.ModificationAddCosignatory, Cosignatory: f.account[name]}
}

func (f *fixture) del(name string) database.MultisigModification {
	return database.MultisigModification{Type: database.ModificationDelCosignatory, Cosignatory: f.account[name]}
}

func (f *fixture) activate(lessor string, remote string) *database.Tx {
	tx := database.NewImportanceTransfer(f.account[lessor], txTime, database.ImportanceActivate, f.account[remote])
	f.sign(tx)

	return tx
}

func (f *fixture) validator(cfg validator.Config) *validator.Validator {
	if cfg.Scorer == nil {
		cfg.Scorer = alwaysHit{}
	}
	cfg.CurrentTime = func() primitive.TimeInstant { return now }

	return validator.New(cfg)
}

func (f *fixture) balance(name string, states *database.Cache) primitive.Amount {
	as, exists := states.Lookup(f.account[name].Address)
	if !exists {
		return 0
	}

	return as.Info.Balance
}

// =============================================================================

func Test_BalanceExample(t *testing.T) {
	t.Log("Given the need to reject transfers the sender cannot afford.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a sender with 17 units transfers 15 with a 14 unit fee.", testID)
		{
			f := newFixture(t, map[string]uint64{"A": 17})
			blk := f.block(f.parent, f.transfer("A", "B", 15, 14))

			states := f.states.Copy()
			result := f.validator(validator.Config{}).IsValid(f.parent, []*database.Block{blk}, states)
			if result != validation.FailureInsufficientBalance {
				t.Fatalf("\t%s\tTest %d:\tShould fail with insufficient balance : got %s", failed, testID, result)
			}
			t.Logf("\t%s\tTest %d:\tShould fail with insufficient balance.", success, testID)

			if got := f.balance("A", f.states); got != primitive.FromUnits(17) {
				t.Fatalf("\t%s\tTest %d:\tShould leave the authoritative cache untouched : got %s", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the authoritative cache untouched.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a sender with 20 units transfers 15 with a 5 unit fee.", testID)
		{
			f := newFixture(t, map[string]uint64{"A": 20})
			blk := f.block(f.parent, f.transfer("A", "B", 15, 5))

			states := f.states.Copy()
			result := f.validator(validator.Config{}).IsValid(f.parent, []*database.Block{blk}, states)
			if result != validation.Success {
				t.Fatalf("\t%s\tTest %d:\tShould accept the chain : got %s", failed, testID, result)
			}
			t.Logf("\t%s\tTest %d:\tShould accept the chain.", success, testID)

			if got := f.balance("A", states); got != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould leave the sender with 0 : got %s", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the sender with 0.", success, testID)

			if got := f.balance("B", states); got != primitive.FromUnits(15) {
				t.Fatalf("\t%s\tTest %d:\tShould credit the recipient : got %s", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould credit the recipient.", success, testID)

			forger, _ := states.Lookup(f.forger.Address)
			if forger == nil || forger.Info.Balance != primitive.FromUnits(5) || forger.Info.HarvestedBlocks != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould reward the forger with the fee.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reward the forger with the fee.", success, testID)

			if got := f.balance("A", f.states); got != primitive.FromUnits(20) {
				t.Fatalf("\t%s\tTest %d:\tShould leave the authoritative cache untouched : got %s", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the authoritative cache untouched.", success, testID)
		}
	}
}

func Test_BlockRules(t *testing.T) {
	type table struct {
		name   string
		cfg    validator.Config
		blocks func(f *fixture) []*database.Block
		exp    validation.Result
	}

	tt := []table{
		{
			name: "chain-too-long",
			cfg:  validator.Config{MaxChainSize: 1},
			blocks: func(f *fixture) []*database.Block {
				b1 := f.block(f.parent)
				return []*database.Block{b1, f.block(b1)}
			},
			exp: validation.FailureChainTooLong,
		},
		{
			name: "height-mismatch",
			blocks: func(f *fixture) []*database.Block {
				b := database.NewBlock(f.forger, f.parent, blockTime)
				b.Height = b.Height.Next()
				f.sign(b)
				return []*database.Block{b}
			},
			exp: validation.FailureHeightMismatch,
		},
		{
			name: "previous-hash-mismatch",
			blocks: func(f *fixture) []*database.Block {
				b := database.NewBlock(f.forger, f.parent, blockTime)
				b.PrevBlockHash = signature.Sum([]byte("elsewhere"))
				f.sign(b)
				return []*database.Block{b}
			},
			exp: validation.FailurePreviousHashMismatch,
		},
		{
			name: "bad-signature",
			blocks: func(f *fixture) []*database.Block {
				b := f.block(f.parent)
				b.TimeStamp++
				return []*database.Block{b}
			},
			exp: validation.FailureSignatureNotVerifiable,
		},
		{
			name: "block-from-the-future",
			blocks: func(f *fixture) []*database.Block {
				b := database.NewBlock(f.forger, f.parent, now+primitive.MaxSecondsAheadOfTime+1)
				f.sign(b)
				return []*database.Block{b}
			},
			exp: validation.FailureTimestampTooFarInFuture,
		},
		{
			name: "hit-not-below-target",
			cfg:  validator.Config{Scorer: neverHit{}},
			blocks: func(f *fixture) []*database.Block {
				return []*database.Block{f.block(f.parent)}
			},
			exp: validation.FailureHitNotBelowTarget,
		},
		{
			name: "empty-chain",
			blocks: func(f *fixture) []*database.Block {
				return nil
			},
			exp: validation.Success,
		},
	}

	t.Log("Given the need to validate the blocks of a candidate chain.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen checking %s.", testID, tst.name)
				{
					f := newFixture(t, nil)
					result := f.validator(tst.cfg).IsValid(f.parent, tst.blocks(f), f.states.Copy())
					if result != tst.exp {
						t.Fatalf("\t%s\tTest %d:\tShould get %s : got %s", failed, testID, tst.exp, result)
					}
					t.Logf("\t%s\tTest %d:\tShould get %s.", success, testID, tst.exp)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_TransactionRules(t *testing.T) {
	type table struct {
		name     string
		balances map[string]uint64
		cfg      func(f *fixture) validator.Config
		txs      func(f *fixture) []*database.Tx
		exp      validation.Result
	}

	tt := []table{
		{
			name:     "self-signed",
			balances: map[string]uint64{"A": 100},
			txs: func(f *fixture) []*database.Tx {
				f.states.FindState(f.forger).Info.Balance = primitive.FromUnits(100)
				f.account["F"] = f.forger
				return []*database.Tx{f.transfer("F", "B", 1, 0)}
			},
			exp: validation.FailureSelfSignedTransaction,
		},
		{
			name:     "replay-from-cache",
			balances: map[string]uint64{"A": 100},
			cfg: func(f *fixture) validator.Config {
				return validator.Config{Hashes: hashSet{f.transfer("A", "B", 1, 0).Hash(): true}}
			},
			txs: func(f *fixture) []*database.Tx {
				return []*database.Tx{f.transfer("A", "B", 1, 0)}
			},
			exp: validation.Neutral,
		},
		{
			name:     "replay-within-block",
			balances: map[string]uint64{"A": 100},
			txs: func(f *fixture) []*database.Tx {
				tx := f.transfer("A", "B", 1, 0)
				return []*database.Tx{tx, tx}
			},
			exp: validation.Neutral,
		},
		{
			name:     "past-deadline",
			balances: map[string]uint64{"A": 100},
			txs: func(f *fixture) []*database.Tx {
				tx := database.NewTransfer(f.account["A"], 10, f.account["B"], primitive.FromUnits(1), database.Message{})
				tx.Deadline = 20
				f.sign(tx)
				return []*database.Tx{tx}
			},
			exp: validation.FailurePastDeadline,
		},
		{
			name:     "insufficient-fee",
			balances: map[string]uint64{"A": 100},
			txs: func(f *fixture) []*database.Tx {
				tx := database.NewTransfer(f.account["A"], txTime, f.account["B"], primitive.FromUnits(1), database.Message{})
				tx.SetFee(1)
				f.sign(tx)
				return []*database.Tx{tx}
			},
			exp: validation.FailureInsufficientFee,
		},
		{
			name:     "conflicting-modifications",
			balances: map[string]uint64{"M": 1000},
			txs: func(f *fixture) []*database.Tx {
				return []*database.Tx{
					f.modification("M", f.add("C1")),
					f.modification("M", f.add("C2")),
				}
			},
			exp: validation.FailureConflictingMultisigModification,
		},
		{
			name:     "modifications-to-different-accounts",
			balances: map[string]uint64{"M": 1000, "A": 1000},
			txs: func(f *fixture) []*database.Tx {
				return []*database.Tx{
					f.modification("M", f.add("C1")),
					f.modification("A", f.add("C2")),
				}
			},
			exp: validation.Success,
		},
		{
			name:     "multiple-deletes",
			balances: map[string]uint64{"M": 1000},
			txs: func(f *fixture) []*database.Tx {
				return []*database.Tx{f.modification("M", f.del("C1"), f.del("C2"))}
			},
			exp: validation.FailureMultisigModificationMultipleDeletes,
		},
		{
			name:     "delete-non-cosignatory",
			balances: map[string]uint64{"M": 1000},
			txs: func(f *fixture) []*database.Tx {
				return []*database.Tx{f.modification("M", f.del("C1"))}
			},
			exp: validation.FailureMultisigNotACosigner,
		},
		{
			name:     "duplicate-activation",
			balances: map[string]uint64{"A": 2000, "B": 2000},
			txs: func(f *fixture) []*database.Tx {
				return []*database.Tx{f.activate("A", "R"), f.activate("B", "R")}
			},
			exp: validation.FailureImportanceTransferInProgress,
		},
		{
			name:     "activation-and-transfer-to-remote",
			balances: map[string]uint64{"A": 2000, "B": 100},
			txs: func(f *fixture) []*database.Tx {
				return []*database.Tx{f.activate("A", "R"), f.transfer("B", "R", 1, 0)}
			},
			exp: validation.FailureDestinationAccountHasPreexistingBalanceTransfer,
		},
		{
			name:     "activation-to-funded-remote",
			balances: map[string]uint64{"A": 2000, "R": 1},
			txs: func(f *fixture) []*database.Tx {
				return []*database.Tx{f.activate("A", "R")}
			},
			exp: validation.FailureDestinationAccountHasPreexistingBalanceTransfer,
		},
		{
			name:     "activation-below-harvester-balance",
			balances: map[string]uint64{"A": 1000},
			txs: func(f *fixture) []*database.Tx {
				return []*database.Tx{f.activate("A", "R")}
			},
			exp: validation.FailureInsufficientBalance,
		},
		{
			name:     "activation",
			balances: map[string]uint64{"A": 1001},
			txs: func(f *fixture) []*database.Tx {
				return []*database.Tx{f.activate("A", "R")}
			},
			exp: validation.Success,
		},
		{
			name:     "deactivation-while-inactive",
			balances: map[string]uint64{"A": 2000},
			txs: func(f *fixture) []*database.Tx {
				tx := database.NewImportanceTransfer(f.account["A"], txTime, database.ImportanceDeactivate, f.account["R"])
				f.sign(tx)
				return []*database.Tx{tx}
			},
			exp: validation.FailureImportanceTransferNeedsToBeActive,
		},
	}

	t.Log("Given the need to validate the transactions of a block.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen checking %s.", testID, tst.name)
				{
					f := newFixture(t, tst.balances)

					var cfg validator.Config
					if tst.cfg != nil {
						cfg = tst.cfg(f)
					}

					blk := f.block(f.parent, tst.txs(f)...)
					result := f.validator(cfg).IsValid(f.parent, []*database.Block{blk}, f.states.Copy())
					if result != tst.exp {
						t.Fatalf("\t%s\tTest %d:\tShould get %s : got %s", failed, testID, tst.exp, result)
					}
					t.Logf("\t%s\tTest %d:\tShould get %s.", success, testID, tst.exp)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Multisig(t *testing.T) {
	t.Log("Given the need to spend from a multisig account.")
	{
		setup := func(t *testing.T) (*fixture, *database.Block, *database.Cache) {
			f := newFixture(t, map[string]uint64{"M": 1000})
			b1 := f.block(f.parent, f.modification("M", f.add("C1"), f.add("C2")))

			states := f.states.Copy()
			if result := f.validator(validator.Config{}).IsValid(f.parent, []*database.Block{b1}, states); result != validation.Success {
				t.Fatalf("\t%s\tShould convert the account to multisig : got %s", failed, result)
			}

			return f, b1, states
		}

		wrapInner := func(f *fixture, inner *database.Tx, cosigners ...string) *database.Tx {
			wrapper := database.NewMultisig(f.account[cosigners[0]], txTime, inner)
			for _, name := range cosigners[1:] {
				sig := database.NewMultisigSignature(f.account[name], txTime, f.account["M"], inner)
				f.sign(sig)
				if err := wrapper.AddSignature(sig); err != nil {
					f.t.Fatalf("\t%s\tShould be able to add a signature: %v", failed, err)
				}
			}
			f.sign(wrapper)

			return wrapper
		}

		wrap := func(f *fixture, cosigners ...string) *database.Tx {
			inner := database.NewTransfer(f.account["M"], txTime, f.account["B"], primitive.FromUnits(5), database.Message{})
			return wrapInner(f, inner, cosigners...)
		}

		testID := 0
		t.Logf("\tTest %d:\tWhen every cosignatory signs.", testID)
		{
			f, b1, states := setup(t)
			b2 := f.block(b1, wrap(f, "C1", "C2"))

			result := f.validator(validator.Config{}).IsValid(b1, []*database.Block{b2}, states)
			if result != validation.Success {
				t.Fatalf("\t%s\tTest %d:\tShould accept the transfer : got %s", failed, testID, result)
			}
			t.Logf("\t%s\tTest %d:\tShould accept the transfer.", success, testID)

			// 1000 - 300 modification fee - 5 amount - 1 inner fee - 6 wrapper fee.
			if got := f.balance("M", states); got != primitive.FromUnits(688) {
				t.Fatalf("\t%s\tTest %d:\tShould charge the multisig account : got %s", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould charge the multisig account.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a cosignatory is missing.", testID)
		{
			f, b1, states := setup(t)
			b2 := f.block(b1, wrap(f, "C1"))

			result := f.validator(validator.Config{}).IsValid(b1, []*database.Block{b2}, states)
			if result != validation.FailureMultisigMissingCosigners {
				t.Fatalf("\t%s\tTest %d:\tShould reject the transfer : got %s", failed, testID, result)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the transfer.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the wrapper is signed by an outsider.", testID)
		{
			f, b1, states := setup(t)
			b2 := f.block(b1, wrap(f, "A", "C1", "C2"))

			result := f.validator(validator.Config{}).IsValid(b1, []*database.Block{b2}, states)
			if result != validation.FailureMultisigNotACosigner {
				t.Fatalf("\t%s\tTest %d:\tShould reject the transfer : got %s", failed, testID, result)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the transfer.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the multisig account signs directly.", testID)
		{
			f, b1, states := setup(t)
			b2 := f.block(b1, f.transfer("M", "B", 5, 0))

			result := f.validator(validator.Config{}).IsValid(b1, []*database.Block{b2}, states)
			if result != validation.FailureTransactionNotAllowedForMultisig {
				t.Fatalf("\t%s\tTest %d:\tShould reject the transfer : got %s", failed, testID, result)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the transfer.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a cosignatory signs a different transaction.", testID)
		{
			f, b1, states := setup(t)

			inner := database.NewTransfer(f.account["M"], txTime, f.account["B"], primitive.FromUnits(5), database.Message{})
			other := database.NewTransfer(f.account["M"], txTime, f.account["B"], primitive.FromUnits(6), database.Message{})

			wrapper := database.NewMultisig(f.account["C1"], txTime, inner)
			sig := database.NewMultisigSignature(f.account["C2"], txTime, f.account["M"], other)
			f.sign(sig)
			if err := wrapper.AddSignature(sig); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add a signature: %v", failed, testID, err)
			}
			f.sign(wrapper)

			b2 := f.block(b1, wrapper)

			result := f.validator(validator.Config{}).IsValid(b1, []*database.Block{b2}, states)
			if result != validation.FailureMultisigMismatchedSignature {
				t.Fatalf("\t%s\tTest %d:\tShould reject the transfer : got %s", failed, testID, result)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the transfer.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the cosignatories add an existing cosignatory.", testID)
		{
			f, b1, states := setup(t)

			inner := database.NewMultisigAggregateModification(f.account["M"], txTime, []database.MultisigModification{f.add("C1")})
			b2 := f.block(b1, wrapInner(f, inner, "C1", "C2"))

			result := f.validator(validator.Config{}).IsValid(b1, []*database.Block{b2}, states)
			if result != validation.FailureMultisigAlreadyACosigner {
				t.Fatalf("\t%s\tTest %d:\tShould reject the modification : got %s", failed, testID, result)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the modification.", success, testID)
		}
	}
}

func Test_RemoteRoles(t *testing.T) {
	type table struct {
		name string
		tx   func(f *fixture) *database.Tx
		exp  validation.Result
	}

	tt := []table{
		{
			name: "remote-sends",
			tx:   func(f *fixture) *database.Tx { return f.transfer("R", "B", 1, 0) },
			exp:  validation.FailureTransactionNotAllowedForRemote,
		},
		{
			name: "transfer-to-remote",
			tx:   func(f *fixture) *database.Tx { return f.transfer("B", "R", 1, 0) },
			exp:  validation.FailureTransactionNotAllowedForRemote,
		},
		{
			name: "activation-while-active",
			tx:   func(f *fixture) *database.Tx { return f.activate("A", "R2") },
			exp:  validation.FailureImportanceTransferNeedsToBeDeactivated,
		},
	}

	t.Log("Given the need to restrict accounts linked for remote harvesting.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen checking %s.", testID, tst.name)
				{
					f := newFixture(t, map[string]uint64{"A": 2000, "B": 100})

					// Link A to R at the nemesis height and move the parent
					// more than a day past it.
					link := f.activate("A", "R")
					if err := link.Execute(database.NotificationContext{Height: primitive.NemesisHeight}, database.NewCommitObserver(f.states)); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to link the remote: %v", failed, testID, err)
					}
					f.parent.Height = primitive.NemesisHeight + primitive.BlocksPerDay

					blk := database.NewBlock(f.forger, f.parent, blockTime)
					blk.AddTransaction(tst.tx(f))
					f.sign(blk)

					result := f.validator(validator.Config{}).IsValid(f.parent, []*database.Block{blk}, f.states.Copy())
					if result != tst.exp {
						t.Fatalf("\t%s\tTest %d:\tShould get %s : got %s", failed, testID, tst.exp, result)
					}
					t.Logf("\t%s\tTest %d:\tShould get %s.", success, testID, tst.exp)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_OverflowAndNullEntries(t *testing.T) {
	type table struct {
		name  string
		block func(f *fixture) *database.Block
		exp   validation.Result
	}

	tt := []table{
		{
			name: "amount-near-the-limit",
			block: func(f *fixture) *database.Block {
				tx := database.NewTransfer(f.account["A"], txTime, f.account["B"], primitive.Amount(math.MaxUint64-500), database.Message{})
				f.sign(tx)
				return f.block(f.parent, tx)
			},
			exp: validation.FailureInsufficientBalance,
		},
		{
			name: "fee-at-the-limit",
			block: func(f *fixture) *database.Block {
				tx := database.NewTransfer(f.account["A"], txTime, f.account["B"], primitive.FromUnits(1), database.Message{})
				tx.SetFee(math.MaxUint64)
				f.sign(tx)
				return f.block(f.parent, tx)
			},
			exp: validation.FailureInsufficientBalance,
		},
		{
			name: "null-cosignatory-signature",
			block: func(f *fixture) *database.Block {
				inner := database.NewTransfer(f.account["M"], txTime, f.account["B"], primitive.FromUnits(5), database.Message{})
				wrapper := database.NewMultisig(f.account["C1"], txTime, inner)
				f.sign(wrapper)

				b := f.block(f.parent, wrapper)
				if err := wrapper.AddSignature(nil); err != nil {
					f.t.Fatalf("\t%s\tShould be able to add a signature: %v", failed, err)
				}
				return b
			},
			exp: validation.FailureSignatureNotVerifiable,
		},
	}

	t.Log("Given the need to reject hostile chains without crashing.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen checking %s.", testID, tst.name)
				{
					f := newFixture(t, map[string]uint64{"A": 17, "M": 1000})

					states := f.states.Copy()
					result := f.validator(validator.Config{}).IsValid(f.parent, []*database.Block{tst.block(f)}, states)
					if result != tst.exp {
						t.Fatalf("\t%s\tTest %d:\tShould get %s : got %s", failed, testID, tst.exp, result)
					}
					t.Logf("\t%s\tTest %d:\tShould get %s.", success, testID, tst.exp)

					if got := f.balance("A", states); got != primitive.FromUnits(17) {
						t.Fatalf("\t%s\tTest %d:\tShould leave the sender untouched : got %s", failed, testID, got)
					}
					t.Logf("\t%s\tTest %d:\tShould leave the sender untouched.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}
