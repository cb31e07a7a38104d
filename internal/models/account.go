package models

import (
	"github.com/shopspring/decimal"
)

// Account is the row stored in the accounts table. client_id is an INTEGER
// column holding a uint16.
type Account struct {
	ClientID  int32           `db:"client_id"`
	Available decimal.Decimal `db:"available"`
	Held      decimal.Decimal `db:"held"`
	Locked    bool            `db:"locked"`
	AuditFields
}
