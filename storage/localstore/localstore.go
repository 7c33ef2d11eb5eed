// Package localstore is a filesystem-backed blob+feed store.
//
// Blobs are stored immutably, keyed strictly by their content ref and
// sharded by the first two hex characters. Feeds live under a separate
// directory, one file per topic holding the page signature followed by the
// 4096-byte page. This store is offline and deterministic: it never touches
// the network.
package localstore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/cloudflare/circl/sign/ed25519"

	"github.com/yea-80y/WoCo-Event-App/keys"
	"github.com/yea-80y/WoCo-Event-App/storage"
)

// Store is a local filesystem storage.Store bound to one signing identity.
type Store struct {
	root   string
	signer *keys.Signer
}

var _ storage.Store = (*Store)(nil)

// New constructs a store rooted at root. Directories are created as needed.
func New(root string, signer *keys.Signer) (*Store, error) {
	if root == "" {
		return nil, errors.New("localstore: root directory is required")
	}
	if signer == nil {
		return nil, errors.New("localstore: feed signer is required")
	}
	for _, d := range []string{root, filepath.Join(root, "blobs"), filepath.Join(root, "feeds")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, err
		}
	}
	return &Store{root: root, signer: signer}, nil
}

// Owner returns the feed-writing identity's address.
func (s *Store) Owner() storage.Address { return s.signer.Address() }

func (s *Store) Upload(data []byte) (storage.Ref, error) {
	ref := storage.ComputeRef(data)
	path := s.blobPath(ref)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return storage.Ref{}, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if os.IsExist(err) {
			existing, rerr := s.Download(ref)
			if rerr != nil {
				// Present but unreadable or corrupted: refuse to "repair".
				return storage.Ref{}, storage.ErrImmutable
			}
			if !bytes.Equal(existing, data) {
				return storage.Ref{}, storage.ErrImmutable
			}
			return ref, nil
		}
		return storage.Ref{}, err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return storage.Ref{}, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return storage.Ref{}, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return storage.Ref{}, err
	}
	return ref, nil
}

func (s *Store) Download(ref storage.Ref) ([]byte, error) {
	if ref.IsZero() {
		return nil, storage.ErrInvalidRef
	}
	b, err := os.ReadFile(s.blobPath(ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if storage.ComputeRef(b) != ref {
		return nil, storage.ErrRefMismatch
	}
	return b, nil
}

func (s *Store) WriteFeed(topic storage.Topic, page []byte) error {
	if len(page) != storage.PageSize {
		return storage.ErrBadPage
	}
	sig := s.signer.SignFeed(topic, page)

	record := make([]byte, 0, len(sig)+len(page))
	record = append(record, sig...)
	record = append(record, page...)

	path := s.feedPath(topic)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, record, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *Store) ReadFeed(topic storage.Topic) ([]byte, error) {
	b, err := os.ReadFile(s.feedPath(topic))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if len(b) != ed25519.SignatureSize+storage.PageSize {
		return nil, storage.ErrBadSignature
	}
	sig, page := b[:ed25519.SignatureSize], b[ed25519.SignatureSize:]
	if !keys.VerifyFeed(s.signer.Public(), topic, page, sig) {
		return nil, storage.ErrBadSignature
	}
	return page, nil
}

func (s *Store) blobPath(ref storage.Ref) string {
	h := ref.String()
	return filepath.Join(s.root, "blobs", h[:2], h)
}

func (s *Store) feedPath(topic storage.Topic) string {
	return filepath.Join(s.root, "feeds", topic.String())
}
