package localstore

import (
	"bytes"
	"os"
	"testing"

	"github.com/yea-80y/WoCo-Event-App/keys"
	"github.com/yea-80y/WoCo-Event-App/storage"
	"github.com/yea-80y/WoCo-Event-App/storage/testkit"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	signer, err := keys.NewSigner(bytes.Repeat([]byte{0x33}, 32))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	st, err := New(t.TempDir(), signer)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return st
}

func TestLocalStore_Conformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) storage.Store {
		t.Helper()
		return newTestStore(t)
	})
}

func TestLocalStore_OwnerIsSignerAddress(t *testing.T) {
	signer, err := keys.NewSigner(bytes.Repeat([]byte{0x33}, 32))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	st, err := New(t.TempDir(), signer)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if st.Owner() != signer.Address() {
		t.Fatalf("Owner() = %s, want %s", st.Owner(), signer.Address())
	}
}

func TestLocalStore_DetectsBlobCorruption(t *testing.T) {
	st := newTestStore(t)

	orig := []byte("original")
	ref, err := st.Upload(orig)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	// Corrupt the stored blob out-of-band.
	path := st.blobPath(ref)
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("corrupted"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// Download must detect the digest mismatch.
	if _, err := st.Download(ref); err != storage.ErrRefMismatch {
		t.Fatalf("Download: got %v want %v", err, storage.ErrRefMismatch)
	}

	// Upload must not repair or overwrite the corrupted blob.
	if _, err := st.Upload(orig); err != storage.ErrImmutable {
		t.Fatalf("Upload after corruption: got %v want %v", err, storage.ErrImmutable)
	}
}

func TestLocalStore_DetectsFeedTampering(t *testing.T) {
	st := newTestStore(t)

	var topic storage.Topic
	topic[0] = 0xaa
	page := make([]byte, storage.PageSize)
	copy(page, []byte("signed page"))

	if err := st.WriteFeed(topic, page); err != nil {
		t.Fatalf("WriteFeed failed: %v", err)
	}

	// Flip a payload byte behind the store's back.
	path := st.feedPath(topic)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	b[len(b)-1] ^= 0xff
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := st.ReadFeed(topic); err != storage.ErrBadSignature {
		t.Fatalf("ReadFeed: got %v want %v", err, storage.ErrBadSignature)
	}
}
