// Package memstore provides an in-memory blob+feed store.
//
// It exists for tests and single-process local runs. Feed pages are signed
// on write with the configured platform signer and the signature is checked
// again on read, matching the single-writer feed model of the real store.
//
// The Fault hook lets tests inject transient failures (typically
// storage.ErrRateLimited) ahead of any operation.
package memstore

import (
	"sync"

	"github.com/yea-80y/WoCo-Event-App/keys"
	"github.com/yea-80y/WoCo-Event-App/storage"
)

type feedRecord struct {
	page []byte
	sig  []byte
}

// Store is an in-memory storage.Store bound to one signing identity.
type Store struct {
	// Fault, when non-nil, runs before every operation with the operation
	// name ("upload", "download", "read-feed", "write-feed"). A non-nil
	// return aborts the operation with that error.
	Fault func(op string) error

	signer *keys.Signer

	mu    sync.Mutex
	blobs map[storage.Ref][]byte
	feeds map[storage.Topic]feedRecord
}

var _ storage.Store = (*Store)(nil)

// New constructs an empty store writing feeds as signer.
func New(signer *keys.Signer) *Store {
	return &Store{
		signer: signer,
		blobs:  make(map[storage.Ref][]byte),
		feeds:  make(map[storage.Topic]feedRecord),
	}
}

// Owner returns the feed-writing identity's address.
func (s *Store) Owner() storage.Address { return s.signer.Address() }

func (s *Store) fault(op string) error {
	if s.Fault == nil {
		return nil
	}
	return s.Fault(op)
}

func (s *Store) Upload(data []byte) (storage.Ref, error) {
	if err := s.fault("upload"); err != nil {
		return storage.Ref{}, err
	}
	ref := storage.ComputeRef(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[ref]; !ok {
		s.blobs[ref] = append([]byte(nil), data...)
	}
	return ref, nil
}

func (s *Store) Download(ref storage.Ref) ([]byte, error) {
	if err := s.fault("download"); err != nil {
		return nil, err
	}
	if ref.IsZero() {
		return nil, storage.ErrInvalidRef
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[ref]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (s *Store) WriteFeed(topic storage.Topic, page []byte) error {
	if err := s.fault("write-feed"); err != nil {
		return err
	}
	if len(page) != storage.PageSize {
		return storage.ErrBadPage
	}

	copied := append([]byte(nil), page...)
	rec := feedRecord{page: copied, sig: s.signer.SignFeed(topic, copied)}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeds[topic] = rec
	return nil
}

func (s *Store) ReadFeed(topic storage.Topic) ([]byte, error) {
	if err := s.fault("read-feed"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	rec, ok := s.feeds[topic]
	s.mu.Unlock()
	if !ok {
		return nil, storage.ErrNotFound
	}
	if !keys.VerifyFeed(s.signer.Public(), topic, rec.page, rec.sig) {
		return nil, storage.ErrBadSignature
	}
	return append([]byte(nil), rec.page...), nil
}
