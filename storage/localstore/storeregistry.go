package localstore

import (
	"flag"
	"fmt"

	"github.com/yea-80y/WoCo-Event-App/keys"
	"github.com/yea-80y/WoCo-Event-App/storage"
	"github.com/yea-80y/WoCo-Event-App/storage/storeregistry"
)

var (
	flagDir  string
	flagSeed string
)

func init() {
	storeregistry.MustRegister(storeregistry.Backend{
		Name:        "localfs",
		Description: "Local filesystem blob+feed store (directory)",
		Usage:       storeregistry.UsageCLI | storeregistry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagDir, "localfs-dir", "", "LocalFS store directory (for --backend=localfs)")
			fs.StringVar(&flagSeed, "localfs-seed", "", "Feed signing seed, 32-byte hex (for --backend=localfs)")
		},
		Open: func() (storage.Store, func() error, error) {
			return open(flagDir, flagSeed)
		},
		OpenConfig: func(cfg map[string]string) (storage.Store, func() error, error) {
			return open(cfg["localfs-dir"], cfg["localfs-seed"])
		},
	})
}

func open(dir, seedHex string) (storage.Store, func() error, error) {
	if dir == "" {
		return nil, nil, fmt.Errorf("missing --localfs-dir")
	}
	if seedHex == "" {
		return nil, nil, fmt.Errorf("missing --localfs-seed")
	}
	seed, err := keys.ParseSeed(seedHex)
	if err != nil {
		return nil, nil, err
	}
	signer, err := keys.NewSigner(seed)
	if err != nil {
		return nil, nil, err
	}
	st, err := New(dir, signer)
	return st, nil, err
}
