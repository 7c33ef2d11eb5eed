// Package testkit provides conformance suites shared by every blob+feed
// store implementation.
package testkit

import (
	"bytes"
	"testing"

	"github.com/yea-80y/WoCo-Event-App/storage"
)

// NewStore constructs a fresh, empty store instance for a test.
// The returned store MUST be isolated from other tests.
type NewStore func(t *testing.T) storage.Store

// RunStoreConformance exercises the BlobStore and FeedStore contracts.
func RunStoreConformance(t *testing.T, newStore NewStore) {
	t.Helper()

	t.Run("BlobRoundTrip", func(t *testing.T) {
		st := newStore(t)
		want := []byte("hello, pod storage")

		ref, err := st.Upload(want)
		if err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
		if ref != storage.ComputeRef(want) {
			t.Fatalf("Upload ref mismatch: got %s want %s", ref, storage.ComputeRef(want))
		}

		got, err := st.Download(ref)
		if err != nil {
			t.Fatalf("Download failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Download bytes mismatch")
		}
	})

	t.Run("UploadIdempotent", func(t *testing.T) {
		st := newStore(t)
		b := []byte("same bytes")

		ref1, err := st.Upload(b)
		if err != nil {
			t.Fatalf("Upload(1) failed: %v", err)
		}
		ref2, err := st.Upload(b)
		if err != nil {
			t.Fatalf("Upload(2) failed: %v", err)
		}
		if ref1 != ref2 {
			t.Fatalf("Upload not idempotent: %s vs %s", ref1, ref2)
		}
	})

	t.Run("DownloadMissing", func(t *testing.T) {
		st := newStore(t)
		ref := storage.ComputeRef([]byte("missing"))
		if _, err := st.Download(ref); !storage.IsNotFound(err) {
			t.Fatalf("Download missing: got err=%v want ErrNotFound", err)
		}
	})

	t.Run("DownloadZeroRef", func(t *testing.T) {
		st := newStore(t)
		if _, err := st.Download(storage.Ref{}); err == nil {
			t.Fatalf("Download should fail for the zero ref")
		}
	})

	t.Run("FeedOverwrite", func(t *testing.T) {
		st := newStore(t)
		var topic storage.Topic
		copy(topic[:], []byte("conformance topic"))

		first := make([]byte, storage.PageSize)
		copy(first, []byte("first"))
		second := make([]byte, storage.PageSize)
		copy(second, []byte("second"))

		if err := st.WriteFeed(topic, first); err != nil {
			t.Fatalf("WriteFeed(1) failed: %v", err)
		}
		if err := st.WriteFeed(topic, second); err != nil {
			t.Fatalf("WriteFeed(2) failed: %v", err)
		}

		got, err := st.ReadFeed(topic)
		if err != nil {
			t.Fatalf("ReadFeed failed: %v", err)
		}
		if !bytes.Equal(got, second) {
			t.Fatalf("feed did not return the latest page")
		}
	})

	t.Run("FeedMissing", func(t *testing.T) {
		st := newStore(t)
		var topic storage.Topic
		copy(topic[:], []byte("never written"))
		if _, err := st.ReadFeed(topic); !storage.IsNotFound(err) {
			t.Fatalf("ReadFeed missing: got err=%v want ErrNotFound", err)
		}
	})

	t.Run("FeedRejectsBadPageSize", func(t *testing.T) {
		st := newStore(t)
		var topic storage.Topic
		copy(topic[:], []byte("bad size"))
		if err := st.WriteFeed(topic, []byte("too short")); err == nil {
			t.Fatalf("WriteFeed should reject a non-page-size payload")
		}
	})

	t.Run("FeedsIsolatedByTopic", func(t *testing.T) {
		st := newStore(t)
		var a, b storage.Topic
		a[0], b[0] = 1, 2

		page := make([]byte, storage.PageSize)
		copy(page, []byte("topic a only"))
		if err := st.WriteFeed(a, page); err != nil {
			t.Fatalf("WriteFeed failed: %v", err)
		}
		if _, err := st.ReadFeed(b); !storage.IsNotFound(err) {
			t.Fatalf("topic b should be empty, got err=%v", err)
		}
	})
}
