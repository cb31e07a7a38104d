package domain

import (
	"fmt"
	"strings"
)

// OperationType is the tag of an incoming record.
type OperationType string

const (
	OpDeposit    OperationType = "deposit"
	OpWithdrawal OperationType = "withdrawal"
	OpDispute    OperationType = "dispute"
	OpResolve    OperationType = "resolve"
	OpChargeback OperationType = "chargeback"
)

// ParseOperationType accepts the textual tag case-insensitively.
func ParseOperationType(s string) (OperationType, error) {
	switch t := OperationType(strings.ToLower(strings.TrimSpace(s))); t {
	case OpDeposit, OpWithdrawal, OpDispute, OpResolve, OpChargeback:
		return t, nil
	default:
		return "", fmt.Errorf("unknown operation type %q", s)
	}
}

// CarriesAmount reports whether the operation type requires an amount.
func (t OperationType) CarriesAmount() bool {
	return t == OpDeposit || t == OpWithdrawal
}

// Operation is one decoded record. Amount is only meaningful when
// Type.CarriesAmount().
type Operation struct {
	Type     OperationType
	ClientID uint16
	TxID     uint32
	Amount   Amount

	// Line is the 1-based position of the record in its stream, 0 when unknown.
	Line int
	// Raw is the undecoded record, kept for rejection logs.
	Raw string
}

func (o Operation) String() string {
	if o.Type.CarriesAmount() {
		return fmt.Sprintf("%s(tx=%d, client=%d, amount=%s)", o.Type, o.TxID, o.ClientID, o.Amount)
	}
	return fmt.Sprintf("%s(tx=%d, client=%d)", o.Type, o.TxID, o.ClientID)
}
