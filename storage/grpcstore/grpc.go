package grpcstore

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// PodStoreServer is the server API for the PodStore gRPC service.
//
// We intentionally use protobuf well-known wrapper types so this package does
// not require a protoc/codegen toolchain. WriteFeed takes a single
// BytesValue holding the 32-byte topic id followed by the 4096-byte page;
// both fields are fixed-size, so the framing is unambiguous.
//
// Proto definition: podstore.proto.
type PodStoreServer interface {
	UploadBlob(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
	DownloadBlob(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	WriteFeed(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BoolValue, error)
	ReadFeed(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
}

// UnimplementedPodStoreServer can be embedded to have forward compatible
// implementations.
type UnimplementedPodStoreServer struct{}

func (UnimplementedPodStoreServer) UploadBlob(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method UploadBlob not implemented")
}
func (UnimplementedPodStoreServer) DownloadBlob(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method DownloadBlob not implemented")
}
func (UnimplementedPodStoreServer) WriteFeed(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method WriteFeed not implemented")
}
func (UnimplementedPodStoreServer) ReadFeed(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method ReadFeed not implemented")
}

// RegisterPodStoreServer registers the PodStore service on a gRPC server.
func RegisterPodStoreServer(s grpc.ServiceRegistrar, srv PodStoreServer) {
	s.RegisterService(&PodStore_ServiceDesc, srv)
}

// PodStoreClient is the client API for the PodStore gRPC service.
type PodStoreClient interface {
	UploadBlob(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	DownloadBlob(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	WriteFeed(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	ReadFeed(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type podStoreClient struct{ cc grpc.ClientConnInterface }

func NewPodStoreClient(cc grpc.ClientConnInterface) PodStoreClient { return &podStoreClient{cc: cc} }

const serviceName = "/woco.pod.storage.v1.PodStore/"

func (c *podStoreClient) UploadBlob(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, serviceName+"UploadBlob", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *podStoreClient) DownloadBlob(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, serviceName+"DownloadBlob", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *podStoreClient) WriteFeed(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, serviceName+"WriteFeed", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *podStoreClient) ReadFeed(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, serviceName+"ReadFeed", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _PodStore_UploadBlob_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PodStoreServer).UploadBlob(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: serviceName + "UploadBlob"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PodStoreServer).UploadBlob(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _PodStore_DownloadBlob_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PodStoreServer).DownloadBlob(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: serviceName + "DownloadBlob"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PodStoreServer).DownloadBlob(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _PodStore_WriteFeed_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PodStoreServer).WriteFeed(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: serviceName + "WriteFeed"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PodStoreServer).WriteFeed(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _PodStore_ReadFeed_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PodStoreServer).ReadFeed(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: serviceName + "ReadFeed"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PodStoreServer).ReadFeed(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// PodStore_ServiceDesc is the grpc.ServiceDesc for the PodStore service.
var PodStore_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "woco.pod.storage.v1.PodStore",
	HandlerType: (*PodStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "UploadBlob", Handler: _PodStore_UploadBlob_Handler},
		{MethodName: "DownloadBlob", Handler: _PodStore_DownloadBlob_Handler},
		{MethodName: "WriteFeed", Handler: _PodStore_WriteFeed_Handler},
		{MethodName: "ReadFeed", Handler: _PodStore_ReadFeed_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "podstore.proto",
}
