// Command woco-stored serves a configured pod store backend over gRPC.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"github.com/yea-80y/WoCo-Event-App/storage"
	"github.com/yea-80y/WoCo-Event-App/storage/grpcstore"
	"github.com/yea-80y/WoCo-Event-App/storage/storeregistry"

	_ "github.com/yea-80y/WoCo-Event-App/storage/localstore"
	_ "github.com/yea-80y/WoCo-Event-App/storage/memstore"
)

func main() {
	fs := flag.NewFlagSet("woco-stored", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7788", "listen address")
	backend := fs.String("backend", "localfs", "store backend name")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")

	storeregistry.RegisterFlags(fs, storeregistry.UsageDaemon)

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		for _, b := range storeregistry.List(storeregistry.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return
	}

	st, closeFn, err := storeregistry.Open(*backend, storeregistry.UsageDaemon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer closeFn()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcstore.RegisterPodStoreServer(s, &grpcstore.Server{Store: st})

	fmt.Fprintf(os.Stderr, "woco-stored listening on %s (backend=%s)\n", lis.Addr().String(), *backend)
	if o, ok := st.(interface{ Owner() storage.Address }); ok {
		fmt.Fprintf(os.Stderr, "feed owner: %s\n", o.Owner())
	}
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
