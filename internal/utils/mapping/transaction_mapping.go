package mapping

import (
	"fmt"
	"math"

	"github.com/SscSPs/payments_engine/internal/core/domain"
	"github.com/SscSPs/payments_engine/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TxID:         int64(d.TxID),
		ClientID:     int32(d.ClientID),
		Kind:         models.TransactionKind(d.Kind),
		Amount:       d.Amount.Decimal(),
		DisputeState: string(d.DisputeState),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) (domain.Transaction, error) {
	if m.TxID < 0 || m.TxID > math.MaxUint32 {
		return domain.Transaction{}, fmt.Errorf("tx id %d out of range", m.TxID)
	}
	if m.ClientID < 0 || m.ClientID > math.MaxUint16 {
		return domain.Transaction{}, fmt.Errorf("client id %d out of range", m.ClientID)
	}
	return domain.Transaction{
		TxID:         uint32(m.TxID),
		ClientID:     uint16(m.ClientID),
		Kind:         domain.TransactionKind(m.Kind),
		Amount:       domain.NewAmount(m.Amount),
		DisputeState: domain.DisputeState(m.DisputeState),
	}, nil
}
