package storage

import "errors"

// FallbackBlobStore provides deterministic, ordered fallback across multiple
// blob backends.
//
// Read order is the slice order in Stores; callers MUST supply a fixed order.
// This avoids map-iteration nondeterminism and makes the retrieval strategy
// explicit.
//
// Upload is defined to write only to the first store.
type FallbackBlobStore struct {
	Stores []BlobStore
}

var _ BlobStore = FallbackBlobStore{}

func (f FallbackBlobStore) Upload(data []byte) (Ref, error) {
	if len(f.Stores) == 0 {
		return Ref{}, errors.New("storage: FallbackBlobStore has no stores")
	}
	return f.Stores[0].Upload(data)
}

func (f FallbackBlobStore) Download(ref Ref) ([]byte, error) {
	for _, s := range f.Stores {
		b, err := s.Download(ref)
		if err == nil {
			return b, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}
