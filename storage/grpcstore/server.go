package grpcstore

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/yea-80y/WoCo-Event-App/storage"
)

// Server exposes a storage.Store over the PodStore gRPC service.
//
// The wrapped store holds the feed signing identity; clients never send
// signatures, which keeps write authority with the daemon.
type Server struct {
	UnimplementedPodStoreServer
	Store storage.Store
}

func (s *Server) UploadBlob(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	_ = ctx
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	data := in.GetValue()
	ref, err := s.Store.Upload(data)
	if err != nil {
		return nil, mapErr(err)
	}
	if ref != storage.ComputeRef(data) {
		return nil, status.Error(codes.DataLoss, storage.ErrRefMismatch.Error())
	}
	return wrapperspb.String(ref.String()), nil
}

func (s *Server) DownloadBlob(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	ref, err := storage.ParseRef(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, storage.ErrInvalidRef.Error())
	}
	b, err := s.Store.Download(ref)
	if err != nil {
		return nil, mapErr(err)
	}
	if storage.ComputeRef(b) != ref {
		return nil, status.Error(codes.DataLoss, storage.ErrRefMismatch.Error())
	}
	return wrapperspb.Bytes(b), nil
}

func (s *Server) WriteFeed(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BoolValue, error) {
	_ = ctx
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	topic, page, err := splitFeedFrame(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.Store.WriteFeed(topic, page); err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bool(true), nil
}

func (s *Server) ReadFeed(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	topic, err := storage.ParseTopic(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	b, err := s.Store.ReadFeed(topic)
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bytes(b), nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case storage.IsNotFound(err):
		return status.Error(codes.NotFound, storage.ErrNotFound.Error())
	case storage.IsRateLimited(err):
		return status.Error(codes.ResourceExhausted, storage.ErrRateLimited.Error())
	case err == storage.ErrInvalidRef, err == storage.ErrBadPage:
		return status.Error(codes.InvalidArgument, err.Error())
	case err == storage.ErrRefMismatch, err == storage.ErrBadSignature:
		return status.Error(codes.DataLoss, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
