package database_test

import (
	"encoding/json"
	"testing"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/ledger"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
)

func Test_Block(t *testing.T) {
	t.Log("Given the need to harvest, sign and encode blocks.")
	{
		states := database.NewCache(ledger.DecayPolicy{})
		commit := database.NewCommitObserver(states)

		forger := newAccount(t)
		a := newAccount(t)
		b := newAccount(t)
		fund(t, states, a, 100)

		nemesis := database.NewNemesisBlock(newAccount(t), 0, nil)
		block := database.NewBlock(forger, nemesis, 60)

		tx := database.NewTransfer(a, 30, b, primitive.FromUnits(10), database.Message{})
		tx.SetFee(primitive.FromUnits(3))
		if err := tx.Sign(); err != nil {
			t.Fatalf("\t%s\tShould be able to sign the transaction: %v", failed, err)
		}
		block.AddTransaction(tx)

		t.Logf("\tTest 0:\tWhen building a block on the nemesis block.")
		{
			if block.Height != 2 || block.PrevBlockHash != nemesis.Hash() {
				t.Fatalf("\t%s\tTest 0:\tShould link to the parent: got %s.", failed, block)
			}
			t.Logf("\t%s\tTest 0:\tShould link to the parent.", success)

			if block.TotalFee != primitive.FromUnits(3) {
				t.Fatalf("\t%s\tTest 0:\tShould accumulate the fees: got %s.", failed, block.TotalFee)
			}
			t.Logf("\t%s\tTest 0:\tShould accumulate the fees.", success)

			if exp := database.NextGenerationHash(nemesis.GenerationHash, forger); block.GenerationHash != exp {
				t.Fatalf("\t%s\tTest 0:\tShould derive the generation hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould derive the generation hash.", success)
		}

		t.Logf("\tTest 1:\tWhen signing and encoding the block.")
		{
			if err := block.Sign(); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to sign: %v", failed, err)
			}
			if !block.Verify() {
				t.Fatalf("\t%s\tTest 1:\tShould verify the signature.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould verify the signature.", success)

			data, err := json.Marshal(block)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to marshal: %v", failed, err)
			}

			var got database.Block
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to unmarshal: %v", failed, err)
			}

			if got.Hash() != block.Hash() || !got.Verify() || got.TotalFee != block.TotalFee {
				t.Fatalf("\t%s\tTest 1:\tShould keep the hash, signature and fees.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould keep the hash, signature and fees.", success)
		}

		t.Logf("\tTest 2:\tWhen executing and undoing the block.")
		{
			if err := block.Execute(commit); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to execute: %v", failed, err)
			}

			asF := states.FindState(forger)
			if asF.Info.Balance != primitive.FromUnits(3) || asF.Info.HarvestedBlocks != 1 {
				t.Fatalf("\t%s\tTest 2:\tShould reward the harvester: got %s after %d blocks.", failed, asF.Info.Balance, asF.Info.HarvestedBlocks)
			}
			t.Logf("\t%s\tTest 2:\tShould reward the harvester.", success)

			if bal := states.FindState(a).Info.Balance; bal != primitive.FromUnits(87) {
				t.Fatalf("\t%s\tTest 2:\tShould charge the sender: got %s.", failed, bal)
			}
			t.Logf("\t%s\tTest 2:\tShould charge the sender.", success)

			if err := block.Undo(commit); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to undo: %v", failed, err)
			}

			if asF.Info.Balance != 0 || asF.Info.HarvestedBlocks != 0 {
				t.Fatalf("\t%s\tTest 2:\tShould take back the reward.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould take back the reward.", success)

			if bal := states.FindState(a).Info.Balance; bal != primitive.FromUnits(100) {
				t.Fatalf("\t%s\tTest 2:\tShould refund the sender: got %s.", failed, bal)
			}
			t.Logf("\t%s\tTest 2:\tShould refund the sender.", success)
		}
	}
}
