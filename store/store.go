package store

import (
	"github.com/pkg/errors"

	"github.com/tradeport-labs/gateway/store/models"
)

// ErrNotFound is returned when no record exists for the requested key.
var ErrNotFound = errors.New("not found")

// Store records submitted transactions for later status and balance-delta
// queries. Implementations hold process-lifetime state only; nothing is
// persisted across restarts.
type Store interface {
	PutTxRecord(record *models.TxRecord) error
	GetTxRecord(signature string) (*models.TxRecord, error)
	GetTxRecordsByPayer(payer string) ([]*models.TxRecord, error)
}
