package database_test

import (
	"testing"

	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/ledger"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
)

func Test_CacheCopyReplace(t *testing.T) {
	t.Log("Given the need to validate against a copy and promote it.")
	{
		states := database.NewCache(ledger.DecayPolicy{})
		a := newAccount(t)
		b := newAccount(t)
		fund(t, states, a, 50)

		handle := states.FindState(a)

		t.Logf("\tTest 0:\tWhen changing the copy.")
		{
			cp := states.Copy()
			commit := database.NewCommitObserver(cp)

			tx := database.NewTransfer(a, 10, b, primitive.FromUnits(20), database.Message{})
			if err := tx.Execute(database.NotificationContext{Height: 2}, commit); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to execute: %v", failed, err)
			}

			if handle.Info.Balance != primitive.FromUnits(50) {
				t.Fatalf("\t%s\tTest 0:\tShould leave the original untouched: got %s.", failed, handle.Info.Balance)
			}
			if _, exists := states.Lookup(b.Address); exists {
				t.Fatalf("\t%s\tTest 0:\tShould not create accounts in the original.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould leave the original untouched.", success)

			states.Replace(cp)
		}

		t.Logf("\tTest 1:\tWhen the copy has been promoted.")
		{
			if handle.Info.Balance != primitive.FromUnits(29) {
				t.Fatalf("\t%s\tTest 1:\tShould update existing handles: got %s.", failed, handle.Info.Balance)
			}
			t.Logf("\t%s\tTest 1:\tShould update existing handles.", success)

			as, exists := states.Snapshot(b.Address)
			if !exists || as.Info.Balance != primitive.FromUnits(20) {
				t.Fatalf("\t%s\tTest 1:\tShould add new accounts.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould add new accounts.", success)

			if states.Size() != 2 || len(states.Contents()) != 2 {
				t.Fatalf("\t%s\tTest 1:\tShould hold two accounts: got %d.", failed, states.Size())
			}
			t.Logf("\t%s\tTest 1:\tShould hold two accounts.", success)
		}
	}
}

func Test_RemoteHarvesting(t *testing.T) {
	t.Log("Given the need to harvest on behalf of another account.")
	{
		states := database.NewCache(ledger.DecayPolicy{})
		commit := database.NewCommitObserver(states)

		lessor := newAccount(t)
		remote := newAccount(t)
		fund(t, states, lessor, 5_000)

		tx := database.NewImportanceTransfer(lessor, 10, database.ImportanceActivate, remote)
		if err := tx.Execute(database.NotificationContext{Height: 2}, commit); err != nil {
			t.Fatalf("\t%s\tShould be able to execute: %v", failed, err)
		}

		t.Logf("\tTest 0:\tWhen the remote account harvests.")
		{
			if owner := states.FindForwardedState(remote); owner.Address != lessor.Address {
				t.Fatalf("\t%s\tTest 0:\tShould forward to the lessor: got %s.", failed, owner.Address)
			}
			t.Logf("\t%s\tTest 0:\tShould forward to the lessor.", success)

			block := database.NewBlock(remote, database.NewNemesisBlock(newAccount(t), 0, nil), 60)
			block.Height = 3
			block.TotalFee = primitive.FromUnits(4)
			if err := block.Reward(commit); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to reward: %v", failed, err)
			}

			if bal := states.FindState(lessor).Info.Balance; bal != primitive.FromUnits(5_003) {
				t.Fatalf("\t%s\tTest 0:\tShould pay the lessor: got %s.", failed, bal)
			}
			if bal := states.FindState(remote).Info.Balance; bal != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould not pay the remote: got %s.", failed, bal)
			}
			t.Logf("\t%s\tTest 0:\tShould pay the lessor.", success)
		}
	}
}
