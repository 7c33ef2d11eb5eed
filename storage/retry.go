package storage

import (
	"fmt"
	"time"
)

// RetryPolicy bounds transient-failure retries around a store call.
//
// Attempts counts total tries, not re-tries: Attempts=5 means one initial
// call plus up to four retries. Delay grows multiplicatively from
// InitialDelay up to MaxDelay.
type RetryPolicy struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetry matches the upstream store's rate-limit discipline:
// 500ms initial delay, doubling, capped at 5s, five attempts.
var DefaultRetry = RetryPolicy{
	Attempts:     5,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     5 * time.Second,
	Multiplier:   2,
}

// DefaultVerifyRetry is the read-after-write verification policy: a missing
// read is treated as transient while the store settles. Six reads, 1s initial
// delay, ×1.5 growth, capped at 5s.
var DefaultVerifyRetry = RetryPolicy{
	Attempts:     6,
	InitialDelay: time.Second,
	MaxDelay:     5 * time.Second,
	Multiplier:   1.5,
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = DefaultRetry.Attempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = DefaultRetry.InitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultRetry.MaxDelay
	}
	if p.Multiplier <= 1 {
		p.Multiplier = DefaultRetry.Multiplier
	}
	return p
}

func (p RetryPolicy) next(d time.Duration) time.Duration {
	d = time.Duration(float64(d) * p.Multiplier)
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// retryRateLimited runs op under p, sleeping and retrying only while the
// failure is a rate-limit signal. Any other error propagates immediately.
// An exhausted budget surfaces as ErrUnavailable wrapping the last failure.
func retryRateLimited(p RetryPolicy, op func() error) error {
	p = p.withDefaults()
	delay := p.InitialDelay
	var err error
	for attempt := 0; attempt < p.Attempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if !IsRateLimited(err) {
			return err
		}
		if attempt < p.Attempts-1 {
			time.Sleep(delay)
			delay = p.next(delay)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// RetryingBlobStore decorates a BlobStore with rate-limit retry.
type RetryingBlobStore struct {
	Inner  BlobStore
	Policy RetryPolicy
}

var _ BlobStore = RetryingBlobStore{}

func (s RetryingBlobStore) Upload(data []byte) (Ref, error) {
	var ref Ref
	err := retryRateLimited(s.Policy, func() error {
		var err error
		ref, err = s.Inner.Upload(data)
		return err
	})
	return ref, err
}

func (s RetryingBlobStore) Download(ref Ref) ([]byte, error) {
	var b []byte
	err := retryRateLimited(s.Policy, func() error {
		var err error
		b, err = s.Inner.Download(ref)
		return err
	})
	return b, err
}

// RetryingFeedStore decorates a FeedStore with rate-limit retry.
//
// Note this only retries rate-limit signals; a not-found read passes through
// untouched. Read-after-write settling is the job of ReadFeedWithRetry.
type RetryingFeedStore struct {
	Inner  FeedStore
	Policy RetryPolicy
}

var _ FeedStore = RetryingFeedStore{}

func (s RetryingFeedStore) WriteFeed(topic Topic, page []byte) error {
	return retryRateLimited(s.Policy, func() error {
		return s.Inner.WriteFeed(topic, page)
	})
}

func (s RetryingFeedStore) ReadFeed(topic Topic) ([]byte, error) {
	var b []byte
	err := retryRateLimited(s.Policy, func() error {
		var err error
		b, err = s.Inner.ReadFeed(topic)
		return err
	})
	return b, err
}

// ReadFeedWithRetry reads a feed treating not-found as transient, for
// verifying a write that the store has not settled yet. After the budget is
// spent the last error (normally ErrNotFound) is returned for the caller to
// surface as a verification failure.
func ReadFeedWithRetry(fs FeedStore, topic Topic, p RetryPolicy) ([]byte, error) {
	p = p.withDefaults()
	delay := p.InitialDelay
	var b []byte
	var err error
	for attempt := 0; attempt < p.Attempts; attempt++ {
		b, err = fs.ReadFeed(topic)
		if err == nil {
			return b, nil
		}
		if !IsNotFound(err) && !IsRateLimited(err) {
			return nil, err
		}
		if attempt < p.Attempts-1 {
			time.Sleep(delay)
			delay = p.next(delay)
		}
	}
	return nil, err
}
