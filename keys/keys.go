// Package keys holds the signing identities used by the pod ticket system.
//
// Two identities exist:
//
//   - The platform feed signer: one process-wide key that authorizes every
//     feed write. It is injected into stores at construction rather than
//     read from ambient state.
//   - Creator keys: per-organizer keys that sign ticket templates at event
//     creation time.
//
// Both are ed25519 keys; owner addresses are the first 20 bytes of the
// keccak-256 digest of the public key.
package keys

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cloudflare/circl/sign/ed25519"
	"golang.org/x/crypto/sha3"

	"github.com/yea-80y/WoCo-Event-App/storage"
)

// Signer wraps an ed25519 private key bound to a derived owner address.
type Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
	addr storage.Address
}

// NewSigner derives a Signer from a 32-byte seed.
func NewSigner(seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("keys: seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Signer{priv: priv, pub: pub, addr: AddressOf(pub)}, nil
}

// ParseSeed decodes a 32-byte hex seed, accepting an optional 0x prefix.
func ParseSeed(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != ed25519.SeedSize {
		return nil, fmt.Errorf("keys: seed must be a 32-byte hex string")
	}
	return b, nil
}

// GenerateSeed returns a fresh random 32-byte seed.
func GenerateSeed() ([]byte, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	return seed, nil
}

// Public returns the signer's public key.
func (s *Signer) Public() ed25519.PublicKey { return s.pub }

// PublicHex returns the hex form of the public key, as embedded in signed
// ticket templates.
func (s *Signer) PublicHex() string { return hex.EncodeToString(s.pub) }

// Address returns the derived owner address.
func (s *Signer) Address() storage.Address { return s.addr }

// Sign returns an ed25519 signature over msg.
func (s *Signer) Sign(msg []byte) []byte {
	return ed25519.Sign(s.priv, msg)
}

// SignFeed signs a feed page bound to its topic. The topic is mixed into the
// signed message so a page cannot be replayed onto a different feed.
func (s *Signer) SignFeed(topic storage.Topic, page []byte) []byte {
	return ed25519.Sign(s.priv, feedDigest(topic, page))
}

// VerifyFeed checks a feed-page signature against the owner public key.
func VerifyFeed(pub ed25519.PublicKey, topic storage.Topic, page, sig []byte) bool {
	return ed25519.Verify(pub, feedDigest(topic, page), sig)
}

// Verify checks a plain message signature.
func Verify(pub ed25519.PublicKey, msg, sig []byte) bool {
	return ed25519.Verify(pub, msg, sig)
}

// AddressOf derives the owner address for a public key.
func AddressOf(pub ed25519.PublicKey) storage.Address {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(pub)
	sum := h.Sum(nil)
	var a storage.Address
	copy(a[:], sum[:len(a)])
	return a
}

func feedDigest(topic storage.Topic, page []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(topic[:])
	_, _ = h.Write(page)
	return h.Sum(nil)
}
