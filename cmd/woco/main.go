// Command woco is the operator CLI for the pod ticket system: event
// creation, claiming, and inspection of the feeds behind them.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/yea-80y/WoCo-Event-App/keys"
	"github.com/yea-80y/WoCo-Event-App/storage"
	"github.com/yea-80y/WoCo-Event-App/storage/storeconfig"
	"github.com/yea-80y/WoCo-Event-App/storage/storeregistry"
	"github.com/yea-80y/WoCo-Event-App/ticket"

	_ "github.com/yea-80y/WoCo-Event-App/storage/grpcstore"
	_ "github.com/yea-80y/WoCo-Event-App/storage/localstore"
	_ "github.com/yea-80y/WoCo-Event-App/storage/memstore"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "create-event":
		return cmdCreateEvent(args[1:], out, errOut)
	case "claim":
		return cmdClaim(args[1:], out, errOut)
	case "status":
		return cmdStatus(args[1:], out, errOut)
	case "events":
		return cmdEvents(args[1:], out, errOut)
	case "event":
		return cmdEvent(args[1:], out, errOut)
	case "collection":
		return cmdCollection(args[1:], out, errOut)
	case "claimers":
		return cmdClaimers(args[1:], out, errOut)
	case "ticket":
		return cmdTicket(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "woco: pod ticket CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  woco create-event --title <t> --creator-seed-hex <64hex> --series <name:supply:price> [--series ...] [--image <file>] [--start <date>] [--end <date>] [--location <l>] [--description <d>]")
	fmt.Fprintln(w, "  woco claim --series <id> (--address <0x..> | --email <addr>) [--order-file <path>]")
	fmt.Fprintln(w, "  woco status --series <id> [--address <0x..> | --email <addr>]")
	fmt.Fprintln(w, "  woco events")
	fmt.Fprintln(w, "  woco event <event-id>")
	fmt.Fprintln(w, "  woco collection <0x-address>")
	fmt.Fprintln(w, "  woco claimers <series-id>")
	fmt.Fprintln(w, "  woco ticket <claimed-ref>")
	fmt.Fprintln(w, "  woco key new")
	fmt.Fprintln(w, "  woco key show --seed-hex <64hex>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - every store-touching command accepts --backend <name> plus that backend's flags,")
	fmt.Fprintln(w, "    or --store-config <file> for a multi-backend setup")
	fmt.Fprintln(w, "  - seeds are 32-byte hex (64 chars), with or without 0x")
	fmt.Fprintln(w, "  - email claimants are stored hashed; the raw address never leaves this process")
}

// storeFlags is the store selection shared by every store-touching command.
type storeFlags struct {
	config  *string
	backend *string
}

func addStoreFlags(fs *flag.FlagSet) *storeFlags {
	sf := &storeFlags{
		config:  fs.String("store-config", "", "JSON store config file (overrides --backend)"),
		backend: fs.String("backend", "localfs", "store backend name"),
	}
	storeregistry.RegisterFlags(fs, storeregistry.UsageCLI)
	return sf
}

func (sf *storeFlags) open() (storage.BlobStore, storage.FeedStore, func() error, error) {
	if *sf.config != "" {
		cfg, err := storeconfig.LoadFile(*sf.config)
		if err != nil {
			return nil, nil, nil, err
		}
		return cfg.Open(storeregistry.UsageCLI, "")
	}
	st, closeFn, err := storeregistry.Open(*sf.backend, storeregistry.UsageCLI)
	if err != nil {
		return nil, nil, nil, err
	}
	return st, st, closeFn, nil
}

func newService(blobs storage.BlobStore, feeds storage.FeedStore) *ticket.Service {
	return ticket.New(blobs, feeds, ticket.Options{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	})
}

func printJSON(out io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	_, _ = fmt.Fprintln(out, string(b))
}

// seriesList collects repeated --series flags of the form
// name:supply:price[:description].
type seriesList []ticket.SeriesInput

func (s *seriesList) String() string { return fmt.Sprintf("%d series", len(*s)) }

func (s *seriesList) Set(v string) error {
	parts := strings.SplitN(v, ":", 4)
	if len(parts) < 3 {
		return fmt.Errorf("want name:supply:price[:description], got %q", v)
	}
	supply, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("bad supply %q", parts[1])
	}
	price, err := strconv.Atoi(parts[2])
	if err != nil {
		return fmt.Errorf("bad price %q", parts[2])
	}
	in := ticket.SeriesInput{
		SeriesID:    uuid.NewString(),
		Name:        parts[0],
		TotalSupply: supply,
		Price:       price,
	}
	if len(parts) == 4 {
		in.Description = parts[3]
	}
	*s = append(*s, in)
	return nil
}

func cmdCreateEvent(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("create-event", flag.ContinueOnError)
	fs.SetOutput(errOut)
	sf := addStoreFlags(fs)

	title := fs.String("title", "", "Event title")
	description := fs.String("description", "", "Event description")
	imagePath := fs.String("image", "", "Event image file to upload")
	imageHash := fs.String("image-hash", "", "Ref of an already-uploaded image")
	start := fs.String("start", "", "Start date")
	end := fs.String("end", "", "End date")
	location := fs.String("location", "", "Location")
	seedHex := fs.String("creator-seed-hex", "", "Creator signing seed (64 hex chars)")
	var series seriesList
	fs.Var(&series, "series", "Series as name:supply:price[:description] (repeatable)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *title == "" || *seedHex == "" || len(series) == 0 {
		fmt.Fprintln(errOut, "usage: woco create-event --title <t> --creator-seed-hex <64hex> --series <name:supply:price> ...")
		return 2
	}

	seed, err := keys.ParseSeed(*seedHex)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	signer, err := keys.NewSigner(seed)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	var image []byte
	if *imagePath != "" {
		image, err = os.ReadFile(*imagePath)
		if err != nil {
			fmt.Fprintf(errOut, "read image: %v\n", err)
			return 1
		}
	}

	blobs, feeds, closeFn, err := sf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}
	svc := newService(blobs, feeds)

	ev, err := svc.CreateEvent(ticket.CreateEventRequest{
		EventID:     uuid.NewString(),
		Title:       *title,
		Description: *description,
		Image:       image,
		ImageHash:   *imageHash,
		StartDate:   *start,
		EndDate:     *end,
		Location:    *location,
		Creator:     signer,
		Series:      series,
	})
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	svc.WaitBackground()
	printJSON(out, ev)
	return 0
}

// claimantFlags resolves the --address / --email pair into an identifier.
func claimantFlags(fs *flag.FlagSet) (addr, email *string) {
	addr = fs.String("address", "", "Claimant wallet address")
	email = fs.String("email", "", "Claimant email (stored hashed)")
	return addr, email
}

func claimant(addr, email string, required bool) (ticket.Identifier, error) {
	switch {
	case addr != "" && email != "":
		return nil, fmt.Errorf("--address and --email are mutually exclusive")
	case addr != "":
		return ticket.WalletIdentifier{Address: addr}, nil
	case email != "":
		return ticket.NewEmailIdentifier(email), nil
	case required:
		return nil, fmt.Errorf("one of --address or --email is required")
	}
	return nil, nil
}

func cmdClaim(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("claim", flag.ContinueOnError)
	fs.SetOutput(errOut)
	sf := addStoreFlags(fs)
	seriesID := fs.String("series", "", "Series id")
	orderFile := fs.String("order-file", "", "Encrypted order payload to attach")
	addr, email := claimantFlags(fs)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *seriesID == "" {
		fmt.Fprintln(errOut, "usage: woco claim --series <id> (--address <0x..> | --email <addr>)")
		return 2
	}
	id, err := claimant(*addr, *email, true)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	var order []byte
	if *orderFile != "" {
		order, err = os.ReadFile(*orderFile)
		if err != nil {
			fmt.Fprintf(errOut, "read order: %v\n", err)
			return 1
		}
	}

	blobs, feeds, closeFn, err := sf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}
	svc := newService(blobs, feeds)

	ct, err := svc.ClaimTicket(*seriesID, id, order)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	svc.WaitBackground()
	printJSON(out, ct)
	return 0
}

func cmdStatus(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(errOut)
	sf := addStoreFlags(fs)
	seriesID := fs.String("series", "", "Series id")
	addr, email := claimantFlags(fs)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *seriesID == "" {
		fmt.Fprintln(errOut, "usage: woco status --series <id> [--address <0x..> | --email <addr>]")
		return 2
	}
	id, err := claimant(*addr, *email, false)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	blobs, feeds, closeFn, err := sf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}
	svc := newService(blobs, feeds)

	st, err := svc.GetClaimStatus(*seriesID, id)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	printJSON(out, st)
	return 0
}

func cmdEvents(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	fs.SetOutput(errOut)
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	blobs, feeds, closeFn, err := sf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}
	svc := newService(blobs, feeds)

	dir, err := svc.ListEvents()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	printJSON(out, dir)
	return 0
}

func cmdEvent(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("event", flag.ContinueOnError)
	fs.SetOutput(errOut)
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: woco event <event-id>")
		return 2
	}

	blobs, feeds, closeFn, err := sf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}
	svc := newService(blobs, feeds)

	ev, err := svc.GetEvent(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	printJSON(out, ev)
	return 0
}

func cmdCollection(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("collection", flag.ContinueOnError)
	fs.SetOutput(errOut)
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: woco collection <0x-address>")
		return 2
	}

	blobs, feeds, closeFn, err := sf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}
	svc := newService(blobs, feeds)

	col, err := svc.UserCollectionFor(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	printJSON(out, col)
	return 0
}

func cmdClaimers(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("claimers", flag.ContinueOnError)
	fs.SetOutput(errOut)
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: woco claimers <series-id>")
		return 2
	}

	blobs, feeds, closeFn, err := sf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}
	svc := newService(blobs, feeds)

	cf, err := svc.ClaimersFor(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	printJSON(out, cf)
	return 0
}

func cmdTicket(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("ticket", flag.ContinueOnError)
	fs.SetOutput(errOut)
	sf := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: woco ticket <claimed-ref>")
		return 2
	}

	blobs, feeds, closeFn, err := sf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}
	svc := newService(blobs, feeds)

	ct, err := svc.ClaimedTicketDetail(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	printJSON(out, ct)
	return 0
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: woco key <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: new, show")
		return 2
	}
	switch args[0] {
	case "new":
		seed, err := keys.GenerateSeed()
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		return printKey(out, errOut, seed, true)
	case "show":
		fs := flag.NewFlagSet("key show", flag.ContinueOnError)
		fs.SetOutput(errOut)
		seedHex := fs.String("seed-hex", "", "Seed to inspect (64 hex chars)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *seedHex == "" {
			fmt.Fprintln(errOut, "usage: woco key show --seed-hex <64hex>")
			return 2
		}
		seed, err := keys.ParseSeed(*seedHex)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
		return printKey(out, errOut, seed, false)
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n", args[0])
		return 2
	}
}

func printKey(out io.Writer, errOut io.Writer, seed []byte, withSeed bool) int {
	signer, err := keys.NewSigner(seed)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if withSeed {
		fmt.Fprintf(out, "seed:    %x\n", seed)
	}
	fmt.Fprintf(out, "public:  %s\n", signer.PublicHex())
	fmt.Fprintf(out, "address: %s\n", signer.Address())
	return 0
}
