package grpcstore

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yea-80y/WoCo-Event-App/storage"
)

// splitFeedFrame parses the WriteFeed request payload: a 32-byte topic id
// immediately followed by one full page.
func splitFeedFrame(b []byte) (storage.Topic, []byte, error) {
	if len(b) != storage.RefSize+storage.PageSize {
		return storage.Topic{}, nil, fmt.Errorf("feed frame must be %d bytes, got %d", storage.RefSize+storage.PageSize, len(b))
	}
	var topic storage.Topic
	copy(topic[:], b[:storage.RefSize])
	return topic, b[storage.RefSize:], nil
}

func joinFeedFrame(topic storage.Topic, page []byte) []byte {
	out := make([]byte, 0, storage.RefSize+len(page))
	out = append(out, topic[:]...)
	return append(out, page...)
}

func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.NotFound:
		return storage.ErrNotFound
	case codes.ResourceExhausted:
		// The daemon relays the upstream store's rate-limit signal with
		// ResourceExhausted so client-side retry wrappers engage.
		return storage.ErrRateLimited
	case codes.InvalidArgument:
		return storage.ErrInvalidRef
	case codes.DataLoss:
		return storage.ErrRefMismatch
	default:
		// Best-effort: if the server sent a known storage error message,
		// preserve it.
		for _, known := range []error{
			storage.ErrNotFound,
			storage.ErrRateLimited,
			storage.ErrInvalidRef,
			storage.ErrRefMismatch,
			storage.ErrBadPage,
			storage.ErrBadSignature,
		} {
			if st.Message() == known.Error() {
				return known
			}
		}
		return err
	}
}
