package mapping

import (
	"fmt"
	"math"

	"github.com/SscSPs/payments_engine/internal/core/domain"
	"github.com/SscSPs/payments_engine/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		ClientID:  int32(d.ClientID),
		Available: d.Available.Decimal(),
		Held:      d.Held.Decimal(),
		Locked:    d.Locked,
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) (domain.Account, error) {
	if m.ClientID < 0 || m.ClientID > math.MaxUint16 {
		return domain.Account{}, fmt.Errorf("client id %d out of range", m.ClientID)
	}
	return domain.Account{
		ClientID:  uint16(m.ClientID),
		Available: domain.NewAmount(m.Available),
		Held:      domain.NewAmount(m.Held),
		Locked:    m.Locked,
	}, nil
}
