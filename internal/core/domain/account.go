package domain

import (
	"fmt"

	"github.com/SscSPs/payments_engine/internal/apperrors"
)

// Account is the ledger state of one client. Total is derived, never stored.
type Account struct {
	ClientID  uint16 `json:"client"`
	Available Amount `json:"available"`
	Held      Amount `json:"held"`
	Locked    bool   `json:"locked"`
}

// NewAccount returns an empty, unlocked account.
func NewAccount(clientID uint16) Account {
	return Account{ClientID: clientID}
}

// Total returns available + held.
func (a Account) Total() Amount {
	return a.Available.Add(a.Held)
}

// Validate checks the at-rest invariants.
func (a Account) Validate() error {
	if a.Available.IsNegative() || a.Held.IsNegative() {
		return fmt.Errorf("%w: client %d available=%s held=%s", apperrors.ErrUnderflow, a.ClientID, a.Available, a.Held)
	}
	return nil
}

func (a Account) checkUnlocked() error {
	if a.Locked {
		return fmt.Errorf("%w: client %d", apperrors.ErrAccountLocked, a.ClientID)
	}
	return nil
}

// Deposit credits available funds.
func (a Account) Deposit(amount Amount) (Account, error) {
	if err := a.checkUnlocked(); err != nil {
		return a, err
	}
	a.Available = a.Available.Add(amount)
	return a, nil
}

// Withdraw debits available funds.
func (a Account) Withdraw(amount Amount) (Account, error) {
	if err := a.checkUnlocked(); err != nil {
		return a, err
	}
	available, err := a.Available.Sub(amount)
	if err != nil {
		return a, fmt.Errorf("withdraw from client %d: %w", a.ClientID, err)
	}
	a.Available = available
	return a, nil
}

// Hold moves amount from available to held.
func (a Account) Hold(amount Amount) (Account, error) {
	if err := a.checkUnlocked(); err != nil {
		return a, err
	}
	available, err := a.Available.Sub(amount)
	if err != nil {
		return a, fmt.Errorf("hold on client %d: %w", a.ClientID, err)
	}
	a.Available = available
	a.Held = a.Held.Add(amount)
	return a, nil
}

// Release moves amount from held back to available.
func (a Account) Release(amount Amount) (Account, error) {
	if err := a.checkUnlocked(); err != nil {
		return a, err
	}
	held, err := a.Held.Sub(amount)
	if err != nil {
		return a, fmt.Errorf("release on client %d: %w", a.ClientID, err)
	}
	a.Held = held
	a.Available = a.Available.Add(amount)
	return a, nil
}

// ChargeBack removes amount from held and locks the account.
func (a Account) ChargeBack(amount Amount) (Account, error) {
	if err := a.checkUnlocked(); err != nil {
		return a, err
	}
	held, err := a.Held.Sub(amount)
	if err != nil {
		return a, fmt.Errorf("chargeback on client %d: %w", a.ClientID, err)
	}
	a.Held = held
	a.Locked = true
	return a, nil
}
