package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbidlab/bidscope/internal/models"
)

// countingSource records how many times each lookup hits the live source.
type countingSource struct {
	officerCalls    int
	rateCalls       int
	aValueCalls     int
	estimateCalls   int
	openingCalls    int
	failNextOpening bool
}

func (s *countingSource) FetchOfficer(_ context.Context, _ string) (string, error) {
	s.officerCalls++
	return "Kim Minsu", nil
}

func (s *countingSource) FetchLowerRate(_ context.Context, _ string) (float64, error) {
	s.rateCalls++
	return 87.745, nil
}

func (s *countingSource) FetchAValue(_ context.Context, _ string) (float64, error) {
	s.aValueCalls++
	return 1750000, nil
}

func (s *countingSource) FetchBasePrices(_ context.Context, _, _ string) ([]models.BasePriceEstimate, error) {
	s.estimateCalls++
	return []models.BasePriceEstimate{
		{BaseAmount: 1000000, PlanAmount: 998000},
		{BaseAmount: 1000000, PlanAmount: 1001000},
	}, nil
}

func (s *countingSource) FetchOpeningResults(_ context.Context, _ string) ([]models.BidSubmission, error) {
	s.openingCalls++
	if s.failNextOpening {
		s.failNextOpening = false
		return nil, errors.New("gateway timeout")
	}
	return []models.BidSubmission{{Bidder: "Acme", Amount: 877450}}, nil
}

func openTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	cache, err := Open(filepath.Join(t.TempDir(), "cache.db"), ttl)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCachedFetcherServesRepeatsFromCache(t *testing.T) {
	cache := openTestCache(t, time.Hour)
	src := &countingSource{}
	fetcher := NewCachedFetcher(src, cache)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		officer, err := fetcher.FetchOfficer(ctx, "N1")
		if err != nil {
			t.Fatalf("FetchOfficer failed: %v", err)
		}
		if officer != "Kim Minsu" {
			t.Errorf("Expected officer Kim Minsu, got %q", officer)
		}

		rate, err := fetcher.FetchLowerRate(ctx, "N1")
		if err != nil || rate != 87.745 {
			t.Errorf("Expected rate 87.745, got %v (err %v)", rate, err)
		}

		aValue, err := fetcher.FetchAValue(ctx, "N1")
		if err != nil || aValue != 1750000 {
			t.Errorf("Expected A value 1750000, got %v (err %v)", aValue, err)
		}

		estimates, err := fetcher.FetchBasePrices(ctx, "N1", "00")
		if err != nil || len(estimates) != 2 {
			t.Errorf("Expected 2 estimates, got %v (err %v)", estimates, err)
		}

		bids, err := fetcher.FetchOpeningResults(ctx, "N1")
		if err != nil || len(bids) != 1 || bids[0].Bidder != "Acme" {
			t.Errorf("Expected Acme bid, got %v (err %v)", bids, err)
		}
	}

	if src.officerCalls != 1 || src.rateCalls != 1 || src.aValueCalls != 1 ||
		src.estimateCalls != 1 || src.openingCalls != 1 {
		t.Errorf("Expected one live call per lookup, got %+v", src)
	}
}

func TestCachedFetcherKeysByNoticeAndOrdinal(t *testing.T) {
	cache := openTestCache(t, time.Hour)
	src := &countingSource{}
	fetcher := NewCachedFetcher(src, cache)
	ctx := context.Background()

	fetcher.FetchBasePrices(ctx, "N1", "00")
	fetcher.FetchBasePrices(ctx, "N1", "01")
	fetcher.FetchBasePrices(ctx, "N2", "00")
	fetcher.FetchBasePrices(ctx, "N1", "00")

	if src.estimateCalls != 3 {
		t.Errorf("Expected 3 live estimate calls for distinct keys, got %d", src.estimateCalls)
	}
}

func TestCachedFetcherExpiry(t *testing.T) {
	cache := openTestCache(t, time.Nanosecond)
	src := &countingSource{}
	fetcher := NewCachedFetcher(src, cache)
	ctx := context.Background()

	fetcher.FetchLowerRate(ctx, "N1")
	time.Sleep(2 * time.Millisecond)
	fetcher.FetchLowerRate(ctx, "N1")

	if src.rateCalls != 2 {
		t.Errorf("Expected expired entry to trigger a live call, got %d calls", src.rateCalls)
	}
}

func TestCachedFetcherDoesNotCacheFailures(t *testing.T) {
	cache := openTestCache(t, time.Hour)
	src := &countingSource{failNextOpening: true}
	fetcher := NewCachedFetcher(src, cache)
	ctx := context.Background()

	if _, err := fetcher.FetchOpeningResults(ctx, "N1"); err == nil {
		t.Fatal("Expected the first lookup to fail")
	}

	bids, err := fetcher.FetchOpeningResults(ctx, "N1")
	if err != nil || len(bids) != 1 {
		t.Fatalf("Expected retry to reach the source, got %v (err %v)", bids, err)
	}
	if src.openingCalls != 2 {
		t.Errorf("Expected 2 live calls, got %d", src.openingCalls)
	}
}
