package ticket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/yea-80y/WoCo-Event-App/storage"
)

// Service runs the allocation, assembly and status engines against a
// blob+feed store.
//
// Every store call is wrapped with the rate-limit retry policy; a call that
// spends the budget surfaces as KindUnavailable. Concurrent claims for the
// same series are serialized in-process by a per-series mutex. That closes
// the double-allocation window within one process only: two processes
// sharing a store can still race on the claims-page read-modify-write, as
// the store offers no compare-and-swap.
type Service struct {
	blobs  storage.BlobStore
	feeds  storage.FeedStore
	log    *slog.Logger
	verify storage.RetryPolicy
	now    func() time.Time

	mu     sync.Mutex
	series map[string]*sync.Mutex

	bg sync.WaitGroup
}

// Options tunes a Service. The zero value is production-ready.
type Options struct {
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Retry is the rate-limit retry policy wrapped around every store call.
	// Zero fields fall back to storage.DefaultRetry.
	Retry storage.RetryPolicy

	// VerifyRetry is the read-after-write settling policy. Zero fields fall
	// back to storage.DefaultVerifyRetry.
	VerifyRetry storage.RetryPolicy

	// Now overrides the clock used for stored timestamps.
	Now func() time.Time
}

// New constructs a Service over the given stores.
func New(blobs storage.BlobStore, feeds storage.FeedStore, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	verify := opts.VerifyRetry
	if verify == (storage.RetryPolicy{}) {
		verify = storage.DefaultVerifyRetry
	}
	return &Service{
		blobs:  storage.RetryingBlobStore{Inner: blobs, Policy: opts.Retry},
		feeds:  storage.RetryingFeedStore{Inner: feeds, Policy: opts.Retry},
		log:    logger,
		verify: verify,
		now:    now,
		series: make(map[string]*sync.Mutex),
	}
}

// WaitBackground blocks until all fired secondary-index updates have
// settled. Intended for graceful shutdown and tests; normal request flow
// never waits on it.
func (s *Service) WaitBackground() { s.bg.Wait() }

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// lockSeries serializes claim processing per series within this process.
func (s *Service) lockSeries(seriesID string) func() {
	s.mu.Lock()
	m, ok := s.series[seriesID]
	if !ok {
		m = &sync.Mutex{}
		s.series[seriesID] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// spawn runs fn on the background group.
func (s *Service) spawn(fn func()) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		fn()
	}()
}
