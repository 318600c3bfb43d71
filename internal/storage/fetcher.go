package storage

import (
	"context"

	"github.com/kbidlab/bidscope/internal/models"
)

// Lookup kinds used as cache keys. Keys without an ordinal dimension
// store the empty string.
const (
	kindOfficer    = "officer"
	kindLowerRate  = "lower_rate"
	kindAValue     = "a_value"
	kindBasePrices = "base_prices"
	kindOpening    = "opening_results"
)

// Source is the live lookup collaborator a CachedFetcher wraps.
type Source interface {
	FetchOfficer(ctx context.Context, noticeNo string) (string, error)
	FetchLowerRate(ctx context.Context, noticeNo string) (float64, error)
	FetchAValue(ctx context.Context, noticeNo string) (float64, error)
	FetchBasePrices(ctx context.Context, noticeNo, noticeOrd string) ([]models.BasePriceEstimate, error)
	FetchOpeningResults(ctx context.Context, noticeNo string) ([]models.BidSubmission, error)
}

// CachedFetcher serves lookups from the cache and falls back to the
// wrapped source on a miss. Failed source lookups are never cached, so a
// transient outage does not poison later runs.
type CachedFetcher struct {
	src   Source
	cache *Cache
}

// NewCachedFetcher wraps a source with a cache.
func NewCachedFetcher(src Source, cache *Cache) *CachedFetcher {
	return &CachedFetcher{src: src, cache: cache}
}

// FetchOfficer returns the contracting officer for a notice.
func (f *CachedFetcher) FetchOfficer(ctx context.Context, noticeNo string) (string, error) {
	var officer string
	if f.cache.get(kindOfficer, noticeNo, "", &officer) {
		return officer, nil
	}
	officer, err := f.src.FetchOfficer(ctx, noticeNo)
	if err != nil {
		return officer, err
	}
	f.cache.put(kindOfficer, noticeNo, "", officer)
	return officer, nil
}

// FetchLowerRate returns the award lower-bound rate for a notice.
func (f *CachedFetcher) FetchLowerRate(ctx context.Context, noticeNo string) (float64, error) {
	var rate float64
	if f.cache.get(kindLowerRate, noticeNo, "", &rate) {
		return rate, nil
	}
	rate, err := f.src.FetchLowerRate(ctx, noticeNo)
	if err != nil {
		return rate, err
	}
	f.cache.put(kindLowerRate, noticeNo, "", rate)
	return rate, nil
}

// FetchAValue returns the summed fixed-cost A value for a notice.
func (f *CachedFetcher) FetchAValue(ctx context.Context, noticeNo string) (float64, error) {
	var aValue float64
	if f.cache.get(kindAValue, noticeNo, "", &aValue) {
		return aValue, nil
	}
	aValue, err := f.src.FetchAValue(ctx, noticeNo)
	if err != nil {
		return aValue, err
	}
	f.cache.put(kindAValue, noticeNo, "", aValue)
	return aValue, nil
}

// FetchBasePrices returns the base-price estimates for a notice ordinal.
func (f *CachedFetcher) FetchBasePrices(ctx context.Context, noticeNo, noticeOrd string) ([]models.BasePriceEstimate, error) {
	var estimates []models.BasePriceEstimate
	if f.cache.get(kindBasePrices, noticeNo, noticeOrd, &estimates) {
		return estimates, nil
	}
	estimates, err := f.src.FetchBasePrices(ctx, noticeNo, noticeOrd)
	if err != nil {
		return estimates, err
	}
	f.cache.put(kindBasePrices, noticeNo, noticeOrd, estimates)
	return estimates, nil
}

// FetchOpeningResults returns the bid submissions for a notice.
func (f *CachedFetcher) FetchOpeningResults(ctx context.Context, noticeNo string) ([]models.BidSubmission, error) {
	var bids []models.BidSubmission
	if f.cache.get(kindOpening, noticeNo, "", &bids) {
		return bids, nil
	}
	bids, err := f.src.FetchOpeningResults(ctx, noticeNo)
	if err != nil {
		return bids, err
	}
	f.cache.put(kindOpening, noticeNo, "", bids)
	return bids, nil
}
