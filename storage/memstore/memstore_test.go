package memstore

import (
	"bytes"
	"testing"

	"github.com/yea-80y/WoCo-Event-App/keys"
	"github.com/yea-80y/WoCo-Event-App/storage"
	"github.com/yea-80y/WoCo-Event-App/storage/testkit"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	seed := bytes.Repeat([]byte{0x11}, 32)
	signer, err := keys.NewSigner(seed)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return New(signer)
}

func TestMemStore_Conformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) storage.Store {
		t.Helper()
		return newTestStore(t)
	})
}

func TestMemStore_OwnerIsSignerAddress(t *testing.T) {
	signer, err := keys.NewSigner(bytes.Repeat([]byte{0x11}, 32))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	st := New(signer)
	if st.Owner() != signer.Address() {
		t.Fatalf("Owner() = %s, want %s", st.Owner(), signer.Address())
	}
}

func TestMemStore_FaultInjection(t *testing.T) {
	st := newTestStore(t)

	calls := 0
	st.Fault = func(op string) error {
		calls++
		if calls <= 2 {
			return storage.ErrRateLimited
		}
		return nil
	}

	if _, err := st.Upload([]byte("x")); !storage.IsRateLimited(err) {
		t.Fatalf("expected injected rate limit, got %v", err)
	}
	if _, err := st.Upload([]byte("x")); !storage.IsRateLimited(err) {
		t.Fatalf("expected injected rate limit, got %v", err)
	}
	if _, err := st.Upload([]byte("x")); err != nil {
		t.Fatalf("third attempt should succeed, got %v", err)
	}
}
