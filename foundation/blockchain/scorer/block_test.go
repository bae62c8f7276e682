package scorer_test

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/ledger"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/scorer"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
	"github.com/stretchr/testify/require"
)

func newAccount(t *testing.T) database.Account {
	kp, err := signature.GenerateKeyPair()
	require.NoError(t, err)

	return database.NewAccount(kp)
}

func Test_CalculateHit(t *testing.T) {
	var bs scorer.BlockScorer

	half := &database.Block{}
	half.GenerationHash[0] = 0x80

	full := &database.Block{}
	for i := 0; i < 8; i++ {
		full.GenerationHash[i] = 0xFF
	}

	// 2^54 * ln(2)
	exp := big.NewInt(12_486_629_536_330_718)
	diff := new(big.Int).Sub(bs.CalculateHit(half), exp)
	require.True(t, diff.CmpAbs(big.NewInt(1_000)) < 0, "hit %s", bs.CalculateHit(half))

	require.Equal(t, -1, bs.CalculateHit(full).Cmp(bs.CalculateHit(half)))
}

func Test_CalculateHitExact(t *testing.T) {
	var bs scorer.BlockScorer

	tt := []struct {
		name string
		raw  uint64
		hit  int64
	}{
		{"half", 0x8000000000000000, 12_486_629_536_330_718},
		{"smallest", 0x0000000000000001, 799_144_290_325_165_978},
		{"largest", 0xFFFFFFFFFFFFFFFF, 0},
		{"low", 0x0123456789ABCDEF, 97_567_791_012_676_080},
		{"high", 0xAB54A98CEB1F0AD2, 7_234_253_978_286_297},
	}

	for _, tst := range tt {
		t.Run(tst.name, func(t *testing.T) {
			block := &database.Block{}
			binary.BigEndian.PutUint64(block.GenerationHash[:8], tst.raw)

			got := bs.CalculateHit(block)
			require.Zero(t, big.NewInt(tst.hit).Cmp(got), "hit %s", got)
		})
	}

	// A zero prefix is scored as the smallest fraction.
	got := bs.CalculateHit(&database.Block{})
	require.Zero(t, big.NewInt(799_144_290_325_165_978).Cmp(got), "hit %s", got)
}

func Test_CalculateTarget(t *testing.T) {
	var bs scorer.BlockScorer

	states := database.NewCache(ledger.DecayPolicy{})
	forger := newAccount(t)

	as := states.FindState(forger)
	as.Info.Balance = primitive.FromUnits(1_000)
	require.NoError(t, as.Weighted.AddFullyVested(primitive.NemesisHeight, as.Info.Balance))

	parent := database.NewNemesisBlock(newAccount(t), 0, nil)
	block := database.NewBlock(forger, parent, 60)

	// (2^64 / 10^14) * 60 seconds * 1000 vested units
	require.Equal(t, big.NewInt(184_467*60*1_000), bs.CalculateTarget(parent, block, states))

	block.TimeStamp = 0
	require.Zero(t, bs.CalculateTarget(parent, block, states).Sign())
}

func Test_CalculateTargetRemote(t *testing.T) {
	var bs scorer.BlockScorer

	states := database.NewCache(ledger.DecayPolicy{})
	lessor := newAccount(t)
	remote := newAccount(t)

	as := states.FindState(lessor)
	as.Info.Balance = primitive.FromUnits(2_000)
	require.NoError(t, as.Weighted.AddFullyVested(primitive.NemesisHeight, as.Info.Balance))

	tx := database.NewImportanceTransfer(lessor, 10, database.ImportanceActivate, remote)
	require.NoError(t, tx.Execute(database.NotificationContext{Height: 1}, database.NewCommitObserver(states)))

	parent := database.NewNemesisBlock(newAccount(t), 0, nil)
	parent.Height = 2
	block := database.NewBlock(remote, parent, 60)

	require.Equal(t, big.NewInt(184_467*60*1_999), bs.CalculateTarget(parent, block, states))
}

func Test_ChainScore(t *testing.T) {
	blocks := []*database.Block{
		{Difficulty: 10},
		{Difficulty: 20},
		{Difficulty: 30},
	}

	require.Equal(t, big.NewInt(60), scorer.ChainScore(blocks))
	require.Zero(t, scorer.ChainScore(nil).Sign())
}
