package models

import "github.com/shopspring/decimal"

// TransactionKind mirrors the kind column.
type TransactionKind string

const (
	Deposit    TransactionKind = "DEPOSIT"
	Withdrawal TransactionKind = "WITHDRAWAL"
)

// Transaction is the row stored in the transactions table. tx_id is a BIGINT
// column holding a uint32.
type Transaction struct {
	TxID         int64           `db:"tx_id"`
	ClientID     int32           `db:"client_id"`
	Kind         TransactionKind `db:"kind"`
	Amount       decimal.Decimal `db:"amount"`
	DisputeState string          `db:"dispute_state"`
	AuditFields
}
