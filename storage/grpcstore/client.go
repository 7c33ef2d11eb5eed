package grpcstore

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/yea-80y/WoCo-Event-App/storage"
)

// Client implements storage.Store over a PodStore gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client PodStoreClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

var _ storage.Store = (*Client)(nil)

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewPodStoreClient(cc)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) Upload(data []byte) (storage.Ref, error) {
	expected := storage.ComputeRef(data)

	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.UploadBlob(ctx, wrapperspb.Bytes(data))
	if err != nil {
		return storage.Ref{}, mapRPC(err)
	}
	ref, err := storage.ParseRef(reply.GetValue())
	if err != nil {
		return storage.Ref{}, storage.ErrInvalidRef
	}
	if ref != expected {
		return storage.Ref{}, storage.ErrRefMismatch
	}
	return ref, nil
}

func (c *Client) Download(ref storage.Ref) ([]byte, error) {
	if ref.IsZero() {
		return nil, storage.ErrInvalidRef
	}
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.DownloadBlob(ctx, wrapperspb.String(ref.String()))
	if err != nil {
		return nil, mapRPC(err)
	}
	b := reply.GetValue()
	if storage.ComputeRef(b) != ref {
		return nil, storage.ErrRefMismatch
	}
	return b, nil
}

func (c *Client) WriteFeed(topic storage.Topic, page []byte) error {
	if len(page) != storage.PageSize {
		return storage.ErrBadPage
	}
	ctx, cancel := c.ctx()
	defer cancel()

	_, err := c.client.WriteFeed(ctx, wrapperspb.Bytes(joinFeedFrame(topic, page)))
	if err != nil {
		return mapRPC(err)
	}
	return nil
}

func (c *Client) ReadFeed(topic storage.Topic) ([]byte, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.ReadFeed(ctx, wrapperspb.String(topic.String()))
	if err != nil {
		return nil, mapRPC(err)
	}
	b := reply.GetValue()
	if len(b) != storage.PageSize {
		return nil, fmt.Errorf("grpcstore: server returned %d-byte page", len(b))
	}
	return b, nil
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}
