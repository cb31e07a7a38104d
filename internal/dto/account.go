package dto

import (
	"github.com/SscSPs/payments_engine/internal/core/domain"
)

// AccountResponse is the JSON form of an account. Amounts are strings with
// four fractional digits.
type AccountResponse struct {
	ClientID  uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

// ListAccountsResponse wraps a ledger snapshot.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	// NextCursor is set when more accounts follow; pass it back as ?after=.
	NextCursor string `json:"nextCursor,omitempty"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc domain.Account) AccountResponse {
	return AccountResponse{
		ClientID:  acc.ClientID,
		Available: acc.Available.String(),
		Held:      acc.Held.String(),
		Total:     acc.Total().String(),
		Locked:    acc.Locked,
	}
}

// ToListAccountsResponse converts a snapshot.
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	resp := ListAccountsResponse{Accounts: make([]AccountResponse, 0, len(accounts))}
	for _, acc := range accounts {
		resp.Accounts = append(resp.Accounts, ToAccountResponse(acc))
	}
	return resp
}
