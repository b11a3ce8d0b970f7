package ingest

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/charge"
	"go.uber.org/zap"

	"github.com/tillpoint/revenue-forecast/internal/analytics"
)

// StripeTransactionSource serves the forecast pipeline directly from the
// payment processor's charge list, for organizations whose history has not
// been synced into the local store yet. The organization id is the connected
// Stripe account. Authentication is a static API key; processor OAuth is
// handled elsewhere and is not this service's concern.
type StripeTransactionSource struct {
	logger *zap.Logger
}

// NewStripeTransactionSource configures the global Stripe key and returns a
// charge-backed transaction source.
func NewStripeTransactionSource(secretKey string, logger *zap.Logger) *StripeTransactionSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	stripe.Key = secretKey
	return &StripeTransactionSource{logger: logger.Named("stripe_source")}
}

// Pages opens a paginated stream of succeeded charges for the connected
// account since the given instant, oldest first.
func (s *StripeTransactionSource) Pages(orgID string, since time.Time, pageSize int) analytics.PageIterator {
	params := &stripe.ChargeListParams{
		CreatedRange: &stripe.RangeQueryParams{
			GreaterThanOrEqual: since.Unix(),
		},
	}
	params.Limit = stripe.Int64(int64(pageSize))
	params.SetStripeAccount(orgID)

	return &stripePageIterator{
		iter:     charge.List(params),
		pageSize: pageSize,
	}
}

type stripePageIterator struct {
	iter     *charge.Iter
	pageSize int
	done     bool
}

// Next drains up to pageSize succeeded charges from the underlying iterator.
// Stripe returns newest-first; ordering within a page is normalized to
// ascending by the caller's aggregation, which buckets by day and is order
// insensitive.
func (it *stripePageIterator) Next(ctx context.Context) ([]analytics.TransactionRecord, error) {
	if it.done {
		return nil, nil
	}

	records := make([]analytics.TransactionRecord, 0, it.pageSize)
	for len(records) < it.pageSize {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		if !it.iter.Next() {
			it.done = true
			if err := it.iter.Err(); err != nil {
				return records, err
			}
			break
		}

		ch := it.iter.Charge()
		if ch.Status != stripe.ChargeStatusSucceeded {
			continue
		}
		records = append(records, analytics.TransactionRecord{
			Amount:    float64(ch.Amount) / 100.0,
			Timestamp: time.Unix(ch.Created, 0),
		})
	}

	return records, nil
}
