package memstore

import (
	"flag"
	"fmt"

	"github.com/yea-80y/WoCo-Event-App/keys"
	"github.com/yea-80y/WoCo-Event-App/storage"
	"github.com/yea-80y/WoCo-Event-App/storage/storeregistry"
)

var flagMemSeed string

func init() {
	storeregistry.MustRegister(storeregistry.Backend{
		Name:        "mem",
		Description: "In-memory blob+feed store (volatile; for local runs and tests)",
		Usage:       storeregistry.UsageCLI | storeregistry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagMemSeed, "mem-seed", "", "Feed signing seed, 32-byte hex (for --backend=mem; random if empty)")
		},
		Open: func() (storage.Store, func() error, error) {
			return open(flagMemSeed)
		},
		OpenConfig: func(cfg map[string]string) (storage.Store, func() error, error) {
			return open(cfg["mem-seed"])
		},
	})
}

func open(seedHex string) (storage.Store, func() error, error) {
	var seed []byte
	var err error
	if seedHex == "" {
		seed, err = keys.GenerateSeed()
	} else {
		seed, err = keys.ParseSeed(seedHex)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("mem backend: %w", err)
	}
	signer, err := keys.NewSigner(seed)
	if err != nil {
		return nil, nil, fmt.Errorf("mem backend: %w", err)
	}
	return New(signer), nil, nil
}
