package storage_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/database/storage"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newAccount(t *testing.T) database.Account {
	kp, err := signature.GenerateKeyPair()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to generate a key pair: %v", failed, err)
	}

	return database.NewAccount(kp)
}

// chain builds a signed chain of the specified length starting with a
// nemesis block.
func chain(t *testing.T, n int) []*database.Block {
	forger := newAccount(t)
	sender := newAccount(t)

	blocks := []*database.Block{database.NewNemesisBlock(newAccount(t), 0, nil)}
	for i := 1; i < n; i++ {
		parent := blocks[i-1]
		block := database.NewBlock(forger, parent, parent.TimeStamp.AddSeconds(60))

		tx := database.NewTransfer(sender, block.TimeStamp, newAccount(t), primitive.FromUnits(uint64(i)), database.Message{})
		if err := tx.Sign(); err != nil {
			t.Fatalf("\t%s\tShould be able to sign a transaction: %v", failed, err)
		}
		block.AddTransaction(tx)

		if err := block.Sign(); err != nil {
			t.Fatalf("\t%s\tShould be able to sign a block: %v", failed, err)
		}
		blocks = append(blocks, block)
	}

	return blocks
}

func Test_Serializers(t *testing.T) {
	type table struct {
		name string
		open func(t *testing.T) database.Serializer
	}

	tt := []table{
		{
			name: "disk",
			open: func(t *testing.T) database.Serializer {
				d, err := storage.NewDisk(t.TempDir())
				if err != nil {
					t.Fatalf("\t%s\tShould be able to open disk storage: %v", failed, err)
				}
				return d
			},
		},
		{
			name: "bolt",
			open: func(t *testing.T) database.Serializer {
				b, err := storage.NewBolt(filepath.Join(t.TempDir(), "blocks.db"))
				if err != nil {
					t.Fatalf("\t%s\tShould be able to open bolt storage: %v", failed, err)
				}
				return b
			},
		},
	}

	t.Log("Given the need to store and read back the chain.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen using %s storage.", testID, tst.name)
			{
				f := func(t *testing.T) {
					strg := tst.open(t)
					defer strg.Close()

					blocks := chain(t, 4)
					for _, block := range blocks {
						if err := strg.Write(block); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to write %s: %v", failed, testID, block, err)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould be able to write the blocks.", success, testID)

					got, err := strg.GetBlock(3)
					if err != nil || got.Hash() != blocks[2].Hash() {
						t.Fatalf("\t%s\tTest %d:\tShould read back block 3: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould read back block 3.", success, testID)

					var n int
					iter := strg.ForEach()
					for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould iterate without error: %v", failed, testID, err)
						}
						if block.Hash() != blocks[n].Hash() {
							t.Fatalf("\t%s\tTest %d:\tShould iterate in height order.", failed, testID)
						}
						n++
					}
					if n != len(blocks) {
						t.Fatalf("\t%s\tTest %d:\tShould iterate every block: got %d.", failed, testID, n)
					}
					t.Logf("\t%s\tTest %d:\tShould iterate every block in height order.", success, testID)

					if err := strg.Truncate(2); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to truncate: %v", failed, testID, err)
					}
					if _, err := strg.GetBlock(3); err == nil {
						t.Fatalf("\t%s\tTest %d:\tShould remove the blocks above the height.", failed, testID)
					}
					if _, err := strg.GetBlock(2); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould keep the blocks up to the height: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould truncate the chain.", success, testID)

					if err := strg.Reset(); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to reset: %v", failed, testID, err)
					}
					if _, err := strg.GetBlock(1); err == nil {
						t.Fatalf("\t%s\tTest %d:\tShould remove every block.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould reset the chain.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_BoltEndOfChain(t *testing.T) {
	b, err := storage.NewBolt(filepath.Join(t.TempDir(), "blocks.db"))
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open bolt storage: %v", failed, err)
	}
	defer b.Close()

	if _, err := b.GetBlock(1); !errors.Is(err, storage.ErrEndOfChain) {
		t.Fatalf("\t%s\tShould report the end of the chain: %v", failed, err)
	}
	t.Logf("\t%s\tShould report the end of the chain.", success)
}
