// Package storeconfig opens blob+feed backends from a JSON config file.
//
// This provides config-driven runtime backend selection. Callers still need
// to link desired backend plugins via blank imports.
package storeconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/yea-80y/WoCo-Event-App/storage"
	"github.com/yea-80y/WoCo-Event-App/storage/storeregistry"
)

// Config describes how to open one or more backends via storeregistry.
//
// BlobPolicy values:
//   - "first" (default): blobs are written only to the first backend; reads
//     fall back in order (storage.FallbackBlobStore)
//   - "all": blobs are written to all backends with ref equality required
//     (storage.ReplicatingBlobStore)
//
// Feeds always use the first backend: a feed has exactly one writer and
// mirroring mutable registers across backends would reintroduce the
// consistency questions the single-writer model avoids.
//
// Example:
//
//	{
//	  "blob_policy": "all",
//	  "backends": [
//	    {"name":"localfs", "config":{"localfs-dir":"/var/woco", "localfs-seed":"..."}},
//	    {"name":"grpc", "config":{"grpc-target":"127.0.0.1:7777"}}
//	  ]
//	}
type Config struct {
	BlobPolicy string          `json:"blob_policy,omitempty"`
	Backends   []BackendConfig `json:"backends"`
}

type BackendConfig struct {
	// Name is the storeregistry backend name to open (e.g. "grpc", "localfs", "mem").
	Name string `json:"name"`
	// ID is an optional stable alias used for identification and per-backend
	// ref maps. If empty, Name is used.
	ID     string            `json:"id,omitempty"`
	Config map[string]string `json:"config,omitempty"`
}

func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, errors.New("storeconfig: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return errors.New("storeconfig: at least one backend is required")
	}
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		if b.Name == "" {
			return errors.New("storeconfig: backend name is required")
		}
		id := b.Name
		if b.ID != "" {
			id = b.ID
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("storeconfig: duplicate backend id %q", id)
		}
		seen[id] = struct{}{}
	}
	switch c.BlobPolicy {
	case "", "first", "all":
		return nil
	default:
		return fmt.Errorf("storeconfig: invalid blob_policy %q", c.BlobPolicy)
	}
}

// Open opens blob and feed stores per config.
//
// If preferredBackend is non-empty, backends are reordered so
// preferredBackend is first (and thus carries feed writes and, with
// BlobPolicy "first", blob writes).
func (c Config) Open(usage storeregistry.Usage, preferredBackend string) (storage.BlobStore, storage.FeedStore, func() error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, nil, err
	}

	ordered := append([]BackendConfig(nil), c.Backends...)
	if preferredBackend != "" {
		idx := -1
		for i := range ordered {
			if ordered[i].Name == preferredBackend || ordered[i].ID == preferredBackend {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, nil, nil, fmt.Errorf("storeconfig: preferred backend %q not found in config", preferredBackend)
		}
		if idx != 0 {
			b := ordered[idx]
			copy(ordered[1:idx+1], ordered[0:idx])
			ordered[0] = b
		}
	}

	named := make([]storage.NamedBlobStore, 0, len(ordered))
	stores := make([]storage.Store, 0, len(ordered))
	closers := make([]func() error, 0, len(ordered))
	for _, b := range ordered {
		st, closeFn, err := storeregistry.OpenWithConfig(b.Name, usage, b.Config)
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
			return nil, nil, nil, err
		}
		name := b.Name
		if b.ID != "" {
			name = b.ID
		}
		named = append(named, storage.NamedBlobStore{Name: name, Store: st})
		stores = append(stores, st)
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
	}

	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	feeds := storage.FeedStore(stores[0])
	if len(stores) == 1 {
		return stores[0], feeds, closeAll, nil
	}

	switch c.BlobPolicy {
	case "", "first":
		blobs := make([]storage.BlobStore, 0, len(stores))
		for _, s := range stores {
			blobs = append(blobs, s)
		}
		return storage.FallbackBlobStore{Stores: blobs}, feeds, closeAll, nil
	case "all":
		return storage.ReplicatingBlobStore{Backends: named}, feeds, closeAll, nil
	default:
		return nil, nil, nil, fmt.Errorf("storeconfig: invalid blob_policy %q", c.BlobPolicy)
	}
}
