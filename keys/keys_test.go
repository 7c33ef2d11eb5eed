package keys

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/yea-80y/WoCo-Event-App/storage"
)

func TestNewSigner_DeterministicAddress(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, 32)

	s1, err := NewSigner(seed)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	s2, err := NewSigner(seed)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	if s1.Address() != s2.Address() {
		t.Fatalf("same seed produced different addresses: %s vs %s", s1.Address(), s2.Address())
	}
	if s1.Address() == (storage.Address{}) {
		t.Fatalf("derived address is zero")
	}
}

func TestNewSigner_RejectsBadSeed(t *testing.T) {
	if _, err := NewSigner([]byte("short")); err == nil {
		t.Fatalf("expected error for short seed")
	}
}

func TestParseSeed(t *testing.T) {
	seed, err := GenerateSeed()
	if err != nil {
		t.Fatalf("GenerateSeed: %v", err)
	}
	s, err := NewSigner(seed)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	parsed, err := ParseSeed("0x" + hex.EncodeToString(seed))
	if err != nil {
		t.Fatalf("ParseSeed: %v", err)
	}
	s2, err := NewSigner(parsed)
	if err != nil {
		t.Fatalf("NewSigner(parsed): %v", err)
	}
	if s.Address() != s2.Address() {
		t.Fatalf("seed did not round-trip through hex")
	}

	if _, err := ParseSeed("zz"); err == nil {
		t.Fatalf("expected error for non-hex seed")
	}
}

func TestSignFeed_BindsTopic(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	s, err := NewSigner(seed)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	page := make([]byte, storage.PageSize)
	copy(page, []byte("payload"))
	var topicA, topicB storage.Topic
	topicA[0] = 1
	topicB[0] = 2

	sig := s.SignFeed(topicA, page)
	if !VerifyFeed(s.Public(), topicA, page, sig) {
		t.Fatalf("signature did not verify on its own topic")
	}
	if VerifyFeed(s.Public(), topicB, page, sig) {
		t.Fatalf("signature replayed onto a different topic")
	}
}
