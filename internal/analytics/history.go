package analytics

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultPageSize is the page size used when fetching transaction history.
	DefaultPageSize = 1000
	// MaxHistoryPages caps retrieval at 50 pages (50,000 rows). Aggregation
	// proceeds with the partial set when the cap is hit.
	MaxHistoryPages = 50
	// LookbackYears is the fixed history horizon before "now".
	LookbackYears = 2
)

// PageIterator produces successive pages of transactions ordered ascending by
// timestamp. A page shorter than the requested page size means the sequence is
// exhausted.
type PageIterator interface {
	Next(ctx context.Context) ([]TransactionRecord, error)
}

// TransactionSource opens a paginated stream of successful transactions for an
// organization since a given instant.
type TransactionSource interface {
	Pages(orgID string, since time.Time, pageSize int) PageIterator
}

// HistoryStats reports how much of the store was actually retrieved, so a
// capped or error-shortened run is observable to the caller.
type HistoryStats struct {
	Transactions int  `json:"transactions"`
	Pages        int  `json:"pages"`
	Truncated    bool `json:"truncated"`
}

// BoundedPager drains a PageIterator up to MaxHistoryPages. A store error stops
// paging and the rows accumulated so far are returned; history retrieval is
// best-effort by contract.
type BoundedPager struct {
	iter     PageIterator
	pageSize int
	maxPages int
	logger   *zap.Logger
}

// NewBoundedPager wraps iter with the page-count ceiling.
func NewBoundedPager(iter PageIterator, pageSize, maxPages int, logger *zap.Logger) *BoundedPager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoundedPager{iter: iter, pageSize: pageSize, maxPages: maxPages, logger: logger}
}

// Drain consumes pages until an empty/short page, an error, or the page cap.
func (p *BoundedPager) Drain(ctx context.Context) ([]TransactionRecord, HistoryStats) {
	var all []TransactionRecord
	stats := HistoryStats{}
	exhausted := false

	for stats.Pages < p.maxPages {
		page, err := p.iter.Next(ctx)
		if err != nil {
			p.logger.Warn("transaction page fetch failed, proceeding with partial history",
				zap.Int("pages_fetched", stats.Pages),
				zap.Int("transactions", len(all)),
				zap.Error(err))
			stats.Truncated = true
			break
		}
		if len(page) == 0 {
			exhausted = true
			break
		}
		all = append(all, page...)
		stats.Pages++
		if len(page) < p.pageSize {
			exhausted = true
			break
		}
	}

	// A short or empty final page means the store was fully read, even when it
	// lands exactly on the cap.
	if stats.Pages == p.maxPages && !exhausted {
		stats.Truncated = true
		p.logger.Warn("transaction history page cap reached, aggregating partial set",
			zap.Int("max_pages", p.maxPages),
			zap.Int("transactions", len(all)))
	}

	stats.Transactions = len(all)
	return all, stats
}

// HistoricalAggregator collapses raw transactions into one revenue bucket per
// organization-local calendar day.
type HistoricalAggregator struct {
	source   TransactionSource
	location *time.Location
	logger   *zap.Logger
}

// NewHistoricalAggregator creates an aggregator bucketing by loc-local dates.
func NewHistoricalAggregator(source TransactionSource, loc *time.Location, logger *zap.Logger) *HistoricalAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &HistoricalAggregator{source: source, location: loc, logger: logger.Named("history")}
}

// Aggregate retrieves up to two years of successful transactions before now and
// sums amounts per local calendar day. Days with no transactions are not
// synthesized. The returned slice is sorted by date ascending.
func (a *HistoricalAggregator) Aggregate(ctx context.Context, orgID string, now time.Time) ([]HistoricalDay, HistoryStats) {
	since := now.AddDate(-LookbackYears, 0, 0)
	iter := a.source.Pages(orgID, since, DefaultPageSize)
	pager := NewBoundedPager(iter, DefaultPageSize, MaxHistoryPages, a.logger)

	records, stats := pager.Drain(ctx)

	totals := make(map[string]float64)
	for _, rec := range records {
		key := rec.Timestamp.In(a.location).Format(dateLayout)
		totals[key] += rec.Amount
	}

	days := make([]HistoricalDay, 0, len(totals))
	for key, revenue := range totals {
		date, err := time.ParseInLocation(dateLayout, key, a.location)
		if err != nil {
			continue
		}
		_, isoWeek := date.ISOWeek()
		days = append(days, HistoricalDay{
			Date:    date,
			Revenue: revenue,
			Weekday: date.Weekday(),
			ISOWeek: isoWeek,
			Month:   int(date.Month()),
			Year:    date.Year(),
		})
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})

	a.logger.Debug("aggregated transaction history",
		zap.String("org_id", orgID),
		zap.Int("transactions", stats.Transactions),
		zap.Int("days", len(days)),
		zap.Bool("truncated", stats.Truncated))

	return days, stats
}
