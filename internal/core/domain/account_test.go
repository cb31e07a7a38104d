package domain_test

import (
	"testing"

	"github.com/SscSPs/payments_engine/internal/apperrors"
	"github.com/SscSPs/payments_engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) domain.Amount { return domain.MustParseAmount(s) }

func TestAccount_Lifecycle(t *testing.T) {
	acc := domain.NewAccount(1)

	acc, err := acc.Deposit(amt("10"))
	require.NoError(t, err)
	assert.Equal(t, "10.0000", acc.Available.String())

	acc, err = acc.Hold(amt("4"))
	require.NoError(t, err)
	assert.Equal(t, "6.0000", acc.Available.String())
	assert.Equal(t, "4.0000", acc.Held.String())
	assert.Equal(t, "10.0000", acc.Total().String())

	acc, err = acc.Release(amt("4"))
	require.NoError(t, err)
	assert.Equal(t, "10.0000", acc.Available.String())
	assert.True(t, acc.Held.Equal(domain.Zero))

	acc, err = acc.Hold(amt("10"))
	require.NoError(t, err)
	acc, err = acc.ChargeBack(amt("10"))
	require.NoError(t, err)
	assert.True(t, acc.Locked)
	assert.True(t, acc.Total().Equal(domain.Zero))
	require.NoError(t, acc.Validate())
}

func TestAccount_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		apply   func(domain.Account) (domain.Account, error)
		wantErr error
	}{
		{
			name:    "withdraw more than available",
			apply:   func(a domain.Account) (domain.Account, error) { return a.Withdraw(amt("6")) },
			wantErr: apperrors.ErrUnderflow,
		},
		{
			name:    "hold more than available",
			apply:   func(a domain.Account) (domain.Account, error) { return a.Hold(amt("5.0001")) },
			wantErr: apperrors.ErrUnderflow,
		},
		{
			name:    "release more than held",
			apply:   func(a domain.Account) (domain.Account, error) { return a.Release(amt("1")) },
			wantErr: apperrors.ErrUnderflow,
		},
		{
			name:    "charge back more than held",
			apply:   func(a domain.Account) (domain.Account, error) { return a.ChargeBack(amt("1")) },
			wantErr: apperrors.ErrUnderflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := domain.NewAccount(7).Deposit(amt("5"))
			require.NoError(t, err)

			got, err := tt.apply(start)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, start, got, "rejected operation must leave the account unchanged")
		})
	}
}

func TestAccount_LockedRejectsEverything(t *testing.T) {
	locked := domain.Account{ClientID: 3, Available: amt("1"), Held: amt("1"), Locked: true}

	ops := map[string]func(domain.Account) (domain.Account, error){
		"deposit":    func(a domain.Account) (domain.Account, error) { return a.Deposit(amt("1")) },
		"withdraw":   func(a domain.Account) (domain.Account, error) { return a.Withdraw(amt("1")) },
		"hold":       func(a domain.Account) (domain.Account, error) { return a.Hold(amt("1")) },
		"release":    func(a domain.Account) (domain.Account, error) { return a.Release(amt("1")) },
		"chargeback": func(a domain.Account) (domain.Account, error) { return a.ChargeBack(amt("1")) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			got, err := op(locked)
			assert.ErrorIs(t, err, apperrors.ErrAccountLocked)
			assert.Equal(t, locked, got)
		})
	}
}
