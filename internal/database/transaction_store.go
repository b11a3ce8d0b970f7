package database

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tillpoint/revenue-forecast/internal/analytics"
	"github.com/tillpoint/revenue-forecast/internal/models"
)

// TransactionStore reads successful transactions for the forecast pipeline
// from the transactions table.
type TransactionStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTransactionStore creates a gorm-backed transaction source.
func NewTransactionStore(db *gorm.DB, logger *zap.Logger) *TransactionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionStore{db: db, logger: logger.Named("transaction_store")}
}

// Pages opens a paginated stream of succeeded transactions for orgID since the
// given instant, ordered ascending by transaction date.
func (s *TransactionStore) Pages(orgID string, since time.Time, pageSize int) analytics.PageIterator {
	return &storePageIterator{store: s, orgID: orgID, since: since, pageSize: pageSize}
}

type storePageIterator struct {
	store    *TransactionStore
	orgID    string
	since    time.Time
	pageSize int
	offset   int
}

func (it *storePageIterator) Next(ctx context.Context) ([]analytics.TransactionRecord, error) {
	var rows []models.Transaction
	err := it.store.db.WithContext(ctx).
		Where("organization_id = ? AND status = ? AND transaction_date >= ?",
			it.orgID, models.TransactionStatusSucceeded, it.since).
		Order("transaction_date ASC").
		Limit(it.pageSize).
		Offset(it.offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	it.offset += len(rows)

	records := make([]analytics.TransactionRecord, 0, len(rows))
	for i := range rows {
		records = append(records, analytics.TransactionRecord{
			Amount:    rows[i].Amount(),
			Timestamp: rows[i].TransactionDate,
		})
	}
	return records, nil
}
