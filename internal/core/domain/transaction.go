package domain

import (
	"fmt"

	"github.com/SscSPs/payments_engine/internal/apperrors"
)

// TransactionKind is the kind of a logged ledger entry.
type TransactionKind string

const (
	Deposit    TransactionKind = "DEPOSIT"
	Withdrawal TransactionKind = "WITHDRAWAL"
)

// DisputeState tracks where a deposit is in the dispute lifecycle.
type DisputeState string

const (
	DisputeNone        DisputeState = "NONE"
	DisputeOpen        DisputeState = "DISPUTED"
	DisputeChargedBack DisputeState = "CHARGED_BACK"
)

// Transaction is an accepted deposit or withdrawal.
type Transaction struct {
	TxID         uint32          `json:"tx"`
	ClientID     uint16          `json:"client"`
	Kind         TransactionKind `json:"kind"`
	Amount       Amount          `json:"amount"`
	DisputeState DisputeState    `json:"disputeState"`
}

// NewTransaction builds an undisputed transaction.
func NewTransaction(txID uint32, clientID uint16, kind TransactionKind, amount Amount) Transaction {
	return Transaction{
		TxID:         txID,
		ClientID:     clientID,
		Kind:         kind,
		Amount:       amount,
		DisputeState: DisputeNone,
	}
}

// CanTransition reports whether the dispute lifecycle allows from -> to.
// ChargedBack is terminal.
func CanTransition(from, to DisputeState) bool {
	switch from {
	case DisputeNone:
		return to == DisputeOpen
	case DisputeOpen:
		return to == DisputeNone || to == DisputeChargedBack
	default:
		return false
	}
}

// Transition validates that the transaction may move to the next state.
// Only deposits take part in the dispute lifecycle.
func (t Transaction) Transition(to DisputeState) error {
	if t.Kind != Deposit {
		return fmt.Errorf("%w: tx %d is a %s", apperrors.ErrInvalidTransition, t.TxID, t.Kind)
	}
	if !CanTransition(t.DisputeState, to) {
		return fmt.Errorf("%w: tx %d %s -> %s", apperrors.ErrInvalidTransition, t.TxID, t.DisputeState, to)
	}
	return nil
}
