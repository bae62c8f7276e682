package database

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
)

// ErrUnknownNotification is returned when an observer receives a
// notification type it does not understand.
var ErrUnknownNotification = errors.New("unknown notification")

// commitObserver applies notifications to the account states of a cache.
type commitObserver struct {
	cache *Cache
}

// NewCommitObserver constructs the observer that keeps balances, vesting
// ledgers, messages, multisig links and remote links of the cache in step
// with executed and undone transactions.
func NewCommitObserver(cache *Cache) Observer {
	return commitObserver{cache: cache}
}

// Notify implements the Observer interface.
func (co commitObserver) Notify(n Notification, ctx NotificationContext) error {
	undo := ctx.Trigger == TriggerUndo

	switch n.Type {
	case NotifyAccount:
		co.cache.FindState(n.Account)
		return nil

	case NotifyBalanceCredit:
		if undo {
			return co.debit(n.Account, n.Amount, ctx.Height, true)
		}
		return co.credit(n.Account, n.Amount, ctx.Height, false)

	case NotifyBalanceDebit:
		if undo {
			return co.credit(n.Account, n.Amount, ctx.Height, true)
		}
		return co.debit(n.Account, n.Amount, ctx.Height, false)

	case NotifyBalanceTransfer:
		return co.transfer(n, ctx.Height, undo)

	case NotifyImportanceTransfer:
		return co.importance(n, ctx.Height, undo)

	case NotifyCosignatoryModification:
		co.modification(n, ctx.Height, undo)
		return nil

	case NotifyBlockHarvest:
		return co.harvest(n, ctx.Height, undo)
	}

	return fmt.Errorf("type %d: %w", n.Type, ErrUnknownNotification)
}

// credit raises the balance. When undo is set the credit reverts a debit and
// the vesting ledger undoes the send instead of recording a receive.
func (co commitObserver) credit(account Account, amount primitive.Amount, height primitive.Height, undo bool) error {
	as := co.cache.FindState(account)

	balance, err := as.Info.Balance.CheckedAdd(amount)
	if err != nil {
		return fmt.Errorf("credit %s: %w", account, err)
	}

	if undo {
		err = as.Weighted.UndoSend(height, amount)
	} else {
		err = as.Weighted.AddReceive(height, amount)
	}
	if err != nil {
		return fmt.Errorf("credit %s: %w", account, err)
	}

	as.Info.Balance = balance
	return nil
}

// debit lowers the balance. When undo is set the debit reverts a credit.
func (co commitObserver) debit(account Account, amount primitive.Amount, height primitive.Height, undo bool) error {
	as := co.cache.FindState(account)

	balance, err := as.Info.Balance.Subtract(amount)
	if err != nil {
		return fmt.Errorf("debit %s: %w", account, err)
	}

	if undo {
		err = as.Weighted.UndoReceive(height, amount)
	} else {
		err = as.Weighted.AddSend(height, amount)
	}
	if err != nil {
		return fmt.Errorf("debit %s: %w", account, err)
	}

	as.Info.Balance = balance
	return nil
}

func (co commitObserver) transfer(n Notification, height primitive.Height, undo bool) error {
	if undo {
		co.detachMessage(n)
		if err := co.debit(n.Other, n.Amount, height, true); err != nil {
			return err
		}
		return co.credit(n.Account, n.Amount, height, true)
	}

	if err := co.debit(n.Account, n.Amount, height, false); err != nil {
		return err
	}
	if err := co.credit(n.Other, n.Amount, height, false); err != nil {
		return err
	}
	co.attachMessage(n)

	return nil
}

func (co commitObserver) attachMessage(n Notification) {
	if n.Message == nil {
		return
	}

	as := co.cache.FindState(n.Other)
	as.Info.Messages = append(as.Info.Messages, *n.Message)
}

func (co commitObserver) detachMessage(n Notification) {
	if n.Message == nil {
		return
	}

	as := co.cache.FindState(n.Other)
	if l := len(as.Info.Messages); l > 0 {
		as.Info.Messages = as.Info.Messages[:l-1]
	}
}

func (co commitObserver) importance(n Notification, height primitive.Height, undo bool) error {
	lessor := co.cache.FindState(n.Account)
	remote := co.cache.FindState(n.Other)

	lessorLink := RemoteLink{Address: n.Other.Address, Height: height, Mode: n.Mode, Owner: HarvestingRemotely}
	remoteLink := RemoteLink{Address: n.Account.Address, Height: height, Mode: n.Mode, Owner: RemoteHarvester}

	if undo {
		if err := remote.Remote.remove(remoteLink); err != nil {
			return err
		}
		return lessor.Remote.remove(lessorLink)
	}

	lessor.Remote.add(lessorLink)
	remote.Remote.add(remoteLink)

	return nil
}

func (co commitObserver) modification(n Notification, height primitive.Height, undo bool) {
	multisig := co.cache.FindState(n.Account)
	cosignatory := co.cache.FindState(n.Other)

	add := n.Modification == ModificationAddCosignatory
	if undo {
		add = !add
	}

	switch add {
	case true:
		multisig.Multisig.addCosignatory(cosignatory.Address, height)
		cosignatory.Multisig.addCosignatoryOf(multisig.Address, height)
	default:
		multisig.Multisig.removeCosignatory(cosignatory.Address, height)
		cosignatory.Multisig.removeCosignatoryOf(multisig.Address, height)
	}
}

// harvest rewards the forger with the block fees. A remote harvester
// forges on behalf of its lessor, who receives the reward.
func (co commitObserver) harvest(n Notification, height primitive.Height, undo bool) error {
	co.cache.FindState(n.Account)
	owner := co.cache.FindForwardedState(n.Account)
	account := NewAccountFromAddress(owner.Address)

	if undo {
		if n.Amount > 0 {
			if err := co.debit(account, n.Amount, height, true); err != nil {
				return err
			}
		}
		if owner.Info.HarvestedBlocks > 0 {
			owner.Info.HarvestedBlocks--
		}
		return nil
	}

	if n.Amount > 0 {
		if err := co.credit(account, n.Amount, height, false); err != nil {
			return err
		}
	}
	owner.Info.HarvestedBlocks++

	return nil
}

// =============================================================================

// DebitPredicate decides whether an account can afford a total debit.
type DebitPredicate func(addr address.Address, amount primitive.Amount) bool

// BalanceDebitPredicate constructs a predicate that checks the current
// balance of the account in the cache. Unknown accounts can only afford a
// zero debit.
func BalanceDebitPredicate(cache *Cache) DebitPredicate {
	return func(addr address.Address, amount primitive.Amount) bool {
		as, exists := cache.Lookup(addr)
		if !exists {
			return amount == 0
		}

		return as.Info.Balance >= amount
	}
}

// Debits sums the amounts each account pays when the transaction executes.
// Transfers count against the sender. A sum beyond the amount range returns
// primitive.ErrAmountOverflow.
func (tx *Tx) Debits() (map[address.Address]primitive.Amount, error) {
	debits := make(map[address.Address]primitive.Amount)

	for _, n := range tx.notifications() {
		switch n.Type {
		case NotifyBalanceDebit, NotifyBalanceTransfer:
			sum, err := debits[n.Account.Address].CheckedAdd(n.Amount)
			if err != nil {
				return nil, err
			}
			debits[n.Account.Address] = sum
		}
	}

	return debits, nil
}
