package storage

import (
	"errors"
	"testing"
	"time"
)

// flakyBlob fails the first failN calls with failErr, then succeeds.
type flakyBlob struct {
	failN   int
	failErr error
	calls   int
	blobs   map[Ref][]byte
}

func newFlakyBlob(failN int, failErr error) *flakyBlob {
	return &flakyBlob{failN: failN, failErr: failErr, blobs: map[Ref][]byte{}}
}

func (f *flakyBlob) Upload(data []byte) (Ref, error) {
	f.calls++
	if f.calls <= f.failN {
		return Ref{}, f.failErr
	}
	ref := ComputeRef(data)
	f.blobs[ref] = append([]byte(nil), data...)
	return ref, nil
}

func (f *flakyBlob) Download(ref Ref) ([]byte, error) {
	f.calls++
	if f.calls <= f.failN {
		return nil, f.failErr
	}
	b, ok := f.blobs[ref]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		Attempts:     attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestRetryingBlobStore_RetriesRateLimit(t *testing.T) {
	inner := newFlakyBlob(2, ErrRateLimited)
	st := RetryingBlobStore{Inner: inner, Policy: fastPolicy(5)}

	ref, err := st.Upload([]byte("payload"))
	if err != nil {
		t.Fatalf("Upload should succeed after retries: %v", err)
	}
	if ref != ComputeRef([]byte("payload")) {
		t.Fatalf("unexpected ref")
	}
	if inner.calls != 3 {
		t.Fatalf("expected 3 calls (2 failures + success), got %d", inner.calls)
	}
}

func TestRetryingBlobStore_ExhaustsBudget(t *testing.T) {
	inner := newFlakyBlob(100, ErrRateLimited)
	st := RetryingBlobStore{Inner: inner, Policy: fastPolicy(3)}

	_, err := st.Upload([]byte("payload"))
	if !IsUnavailable(err) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
	if inner.calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", inner.calls)
	}
}

func TestRetryingBlobStore_PropagatesOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	inner := newFlakyBlob(100, boom)
	st := RetryingBlobStore{Inner: inner, Policy: fastPolicy(5)}

	_, err := st.Upload([]byte("payload"))
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}
	if inner.calls != 1 {
		t.Fatalf("non-transient errors must not be retried, got %d calls", inner.calls)
	}
}

// flakyFeed returns not-found until the page "settles".
type flakyFeed struct {
	missesLeft int
	page       []byte
	reads      int
}

func (f *flakyFeed) WriteFeed(topic Topic, page []byte) error {
	f.page = append([]byte(nil), page...)
	return nil
}

func (f *flakyFeed) ReadFeed(topic Topic) ([]byte, error) {
	f.reads++
	if f.missesLeft > 0 {
		f.missesLeft--
		return nil, ErrNotFound
	}
	if f.page == nil {
		return nil, ErrNotFound
	}
	return f.page, nil
}

func TestReadFeedWithRetry_TreatsNotFoundAsTransient(t *testing.T) {
	page := make([]byte, PageSize)
	copy(page, []byte("settled"))
	fs := &flakyFeed{missesLeft: 2, page: page}

	got, err := ReadFeedWithRetry(fs, Topic{}, fastPolicy(5))
	if err != nil {
		t.Fatalf("expected settled read, got %v", err)
	}
	if string(got[:7]) != "settled" {
		t.Fatalf("wrong page returned")
	}
	if fs.reads != 3 {
		t.Fatalf("expected 3 reads, got %d", fs.reads)
	}
}

func TestReadFeedWithRetry_SurfacesNotFoundAfterBudget(t *testing.T) {
	fs := &flakyFeed{missesLeft: 100}
	_, err := ReadFeedWithRetry(fs, Topic{}, fastPolicy(3))
	if !IsNotFound(err) {
		t.Fatalf("got %v, want ErrNotFound after budget", err)
	}
	if fs.reads != 3 {
		t.Fatalf("expected exactly 3 reads, got %d", fs.reads)
	}
}
