package storage

import "fmt"

// NamedBlobStore associates a BlobStore with a stable backend name.
//
// This is used for multi-backend orchestration where callers need to retain
// per-backend metadata (e.g., for reporting which mirror rejected a write).
type NamedBlobStore struct {
	Name  string
	Store BlobStore
}

// ReplicatingBlobStore writes every blob to all configured backends.
//
// Reads fall back in order. Writes go to all backends and require all
// returned refs to match the canonical ComputeRef of the payload (otherwise
// ErrRefMismatch is returned).
//
// Use UploadAll when you need the per-backend ref mapping.
type ReplicatingBlobStore struct {
	Backends []NamedBlobStore
}

var _ BlobStore = ReplicatingBlobStore{}

// UploadAll writes the same bytes to all backends.
//
// It returns the canonical ref (computed from bytes) and a map of backend
// name -> returned ref. If any backend returns a different ref,
// ErrRefMismatch is returned.
func (r ReplicatingBlobStore) UploadAll(data []byte) (Ref, map[string]Ref, error) {
	if len(r.Backends) == 0 {
		return Ref{}, nil, fmt.Errorf("storage: ReplicatingBlobStore has no backends")
	}
	want := ComputeRef(data)

	out := make(map[string]Ref, len(r.Backends))
	for _, b := range r.Backends {
		if b.Store == nil {
			return Ref{}, nil, fmt.Errorf("storage: nil store for backend %q", b.Name)
		}
		got, err := b.Store.Upload(data)
		if err != nil {
			return Ref{}, nil, err
		}
		out[b.Name] = got
		if got != want {
			return Ref{}, out, ErrRefMismatch
		}
	}
	return want, out, nil
}

func (r ReplicatingBlobStore) Upload(data []byte) (Ref, error) {
	ref, _, err := r.UploadAll(data)
	return ref, err
}

func (r ReplicatingBlobStore) Download(ref Ref) ([]byte, error) {
	for _, b := range r.Backends {
		if b.Store == nil {
			continue
		}
		out, err := b.Store.Download(ref)
		if err == nil {
			return out, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}
