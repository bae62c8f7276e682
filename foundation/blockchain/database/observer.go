package database

import (
	"fmt"

	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
)

// NotificationType identifies the effect a notification describes.
type NotificationType int

// Set of notification types.
const (
	NotifyAccount NotificationType = iota + 1
	NotifyBalanceTransfer
	NotifyBalanceCredit
	NotifyBalanceDebit
	NotifyImportanceTransfer
	NotifyCosignatoryModification
	NotifyBlockHarvest
)

// Trigger tells an observer whether effects are being applied or reverted.
type Trigger int

// Set of triggers.
const (
	TriggerExecute Trigger = iota
	TriggerUndo
)

// Notification describes one effect of a transaction or block. Which fields
// are set depends on the type:
//
//	NotifyAccount:                 Account
//	NotifyBalanceTransfer:         Account (sender), Other (recipient), Amount, Message
//	NotifyBalanceCredit/Debit:     Account, Amount
//	NotifyImportanceTransfer:      Account (lessor), Other (remote), Mode
//	NotifyCosignatoryModification: Account (multisig), Other (cosignatory), Modification
//	NotifyBlockHarvest:            Account (forger), Amount (total fee)
type Notification struct {
	Type         NotificationType
	Account      Account
	Other        Account
	Amount       primitive.Amount
	Message      *Message
	Mode         ImportanceMode
	Modification ModificationType
}

// NotificationContext carries the block details shared by every
// notification of one execution.
type NotificationContext struct {
	Height    primitive.Height
	TimeStamp primitive.TimeInstant
	Trigger   Trigger
}

// Observer receives the effects of executing or undoing transactions.
type Observer interface {
	Notify(n Notification, ctx NotificationContext) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(n Notification, ctx NotificationContext) error

// Notify implements the Observer interface.
func (f ObserverFunc) Notify(n Notification, ctx NotificationContext) error {
	return f(n, ctx)
}

// ObserverList fans every notification out to each observer in order.
type ObserverList []Observer

// NewObserverList constructs a fan out observer.
func NewObserverList(observers ...Observer) ObserverList {
	return ObserverList(observers)
}

// Notify implements the Observer interface. The first error stops the fan
// out.
func (ol ObserverList) Notify(n Notification, ctx NotificationContext) error {
	for _, o := range ol {
		if err := o.Notify(n, ctx); err != nil {
			return err
		}
	}

	return nil
}

// =============================================================================

// notifications returns the ordered effects of the transaction.
func (tx *Tx) notifications() []Notification {
	var ns []Notification

	switch p := tx.Payload.(type) {
	case *Transfer:
		var msg *Message
		if p.Message.Size() > 0 {
			m := p.Message
			msg = &m
		}
		ns = append(ns,
			Notification{Type: NotifyAccount, Account: p.Recipient},
			Notification{Type: NotifyBalanceTransfer, Account: tx.Signer, Other: p.Recipient, Amount: p.Amount, Message: msg},
		)

	case *ImportanceTransfer:
		ns = append(ns,
			Notification{Type: NotifyAccount, Account: p.Remote},
			Notification{Type: NotifyImportanceTransfer, Account: tx.Signer, Other: p.Remote, Mode: p.Mode},
		)

	case *MultisigAggregateModification:
		for _, mod := range p.Modifications {
			ns = append(ns,
				Notification{Type: NotifyAccount, Account: mod.Cosignatory},
				Notification{Type: NotifyCosignatoryModification, Account: tx.Signer, Other: mod.Cosignatory, Modification: mod.Type},
			)
		}

	case *MultisigSignature:
		ns = append(ns, Notification{Type: NotifyBalanceDebit, Account: p.Multisig, Amount: tx.Fee()})
		return ns

	case *Multisig:
		ns = append(ns, p.Inner.notifications()...)
		ns = append(ns, Notification{Type: NotifyBalanceDebit, Account: p.Inner.Signer, Amount: tx.Fee()})
		for _, sig := range p.Signatures {
			ns = append(ns, sig.notifications()...)
		}
		return ns
	}

	ns = append(ns, Notification{Type: NotifyBalanceDebit, Account: tx.Signer, Amount: tx.Fee()})
	return ns
}

// Execute applies the transaction's effects by notifying each observer.
func (tx *Tx) Execute(ctx NotificationContext, observers ...Observer) error {
	ctx.Trigger = TriggerExecute
	return notify(tx.notifications(), ctx, observers)
}

// Undo reverts the transaction's effects by notifying each observer of the
// same notifications in reverse order.
func (tx *Tx) Undo(ctx NotificationContext, observers ...Observer) error {
	ctx.Trigger = TriggerUndo
	return notify(reverse(tx.notifications()), ctx, observers)
}

func notify(ns []Notification, ctx NotificationContext, observers []Observer) error {
	list := ObserverList(observers)
	for _, n := range ns {
		if n.isEmpty() {
			continue
		}
		if err := list.Notify(n, ctx); err != nil {
			return fmt.Errorf("notify %d at height %d: %w", n.Type, ctx.Height, err)
		}
	}

	return nil
}

func reverse(ns []Notification) []Notification {
	out := make([]Notification, len(ns))
	for i, n := range ns {
		out[len(ns)-1-i] = n
	}

	return out
}

// isEmpty reports whether a balance notification moves nothing. A transfer
// carrying a message is still delivered.
func (n Notification) isEmpty() bool {
	switch n.Type {
	case NotifyBalanceCredit, NotifyBalanceDebit:
		return n.Amount == 0
	case NotifyBalanceTransfer:
		return n.Amount == 0 && n.Message == nil
	}

	return false
}
