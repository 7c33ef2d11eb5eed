package storage

import "errors"

var (
	ErrNotFound     = errors.New("storage: not found")
	ErrRateLimited  = errors.New("storage: rate limited")
	ErrInvalidRef   = errors.New("storage: invalid ref")
	ErrRefMismatch  = errors.New("storage: ref mismatch")
	ErrImmutable    = errors.New("storage: immutable object mismatch")
	ErrBadPage      = errors.New("storage: feed page must be exactly 4096 bytes")
	ErrBadSignature = errors.New("storage: feed signature verification failed")
	ErrUnavailable  = errors.New("storage: upstream unavailable")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }

func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
