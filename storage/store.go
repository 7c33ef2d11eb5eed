package storage

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// PageSize is the exact payload size of every feed register.
const PageSize = 4096

// RefSize is the length of a content reference in bytes.
const RefSize = 32

// Ref is a 32-byte content reference naming an immutable uploaded blob.
//
// A Ref is assigned by the store from the bytes written; it is never reused
// for different content. The zero Ref is reserved as the "empty slot"
// sentinel in page encodings and never names real content.
type Ref [RefSize]byte

// IsZero reports whether r is the all-zero sentinel.
func (r Ref) IsZero() bool { return r == Ref{} }

// String returns the lowercase hex form without a 0x prefix.
func (r Ref) String() string { return hex.EncodeToString(r[:]) }

// ParseRef parses a 64-char hex reference, accepting an optional 0x prefix.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != RefSize {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}
	var r Ref
	copy(r[:], b)
	return r, nil
}

// ComputeRef derives the canonical reference for a blob payload.
//
// The reference is the keccak-256 digest of the bytes. Every BlobStore
// implementation in this repo returns exactly this value from Upload, which
// is what lets replicated writes demand ref equality across backends.
func ComputeRef(data []byte) Ref {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(data)
	var r Ref
	copy(r[:], h.Sum(nil))
	return r
}

// Topic is the 32-byte feed topic identifier, derived from a topic string.
// The feed package owns the string construction; stores treat topics as
// opaque addresses.
type Topic [RefSize]byte

func (t Topic) String() string { return hex.EncodeToString(t[:]) }

// ParseTopic parses a 64-char hex topic id.
func ParseTopic(s string) (Topic, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil || len(b) != RefSize {
		return Topic{}, fmt.Errorf("%w: bad topic %q", ErrInvalidRef, s)
	}
	var t Topic
	copy(t[:], b)
	return t, nil
}

// Address identifies the feed-writing identity (20 bytes, keccak-derived).
type Address [20]byte

// String returns the 0x-prefixed lowercase hex form.
func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }

// BlobStore uploads and retrieves immutable byte payloads.
//
// Contract:
// - Upload MUST be idempotent and MUST return ComputeRef(data).
// - Stored blobs MUST be immutable.
// - Download MUST return ErrNotFound when the ref is absent.
// - Transient overload MUST surface as ErrRateLimited so retry wrappers engage.
type BlobStore interface {
	Upload(data []byte) (Ref, error)
	Download(ref Ref) ([]byte, error)
}

// FeedStore reads and writes fixed-size mutable registers ("feeds").
//
// A feed holds exactly one PageSize payload and is overwritten wholesale on
// each write. Implementations are bound to a single signing identity at
// construction; that identity is the only writer for every topic, so the
// (identity, topic) pair in the storage model collapses to just the topic
// here.
//
// Contract:
// - WriteFeed MUST reject payloads that are not exactly PageSize bytes.
// - ReadFeed MUST return ErrNotFound for a topic never written.
type FeedStore interface {
	WriteFeed(topic Topic, page []byte) error
	ReadFeed(topic Topic) ([]byte, error)
}

// Store is a combined blob+feed backend, the unit opened by storeregistry.
type Store interface {
	BlobStore
	FeedStore
}
