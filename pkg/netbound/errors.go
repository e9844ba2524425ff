package netbound

import (
	"errors"
	"fmt"
)

const (
	// MsgNetworkNotAvailable is the message of NoConnectivity errors.
	MsgNetworkNotAvailable = "Network not available"
	// MsgTimeout is the message of Timeout errors.
	MsgTimeout = "timeout"
)

// ErrTimeout is the cause of every Timeout error resource.
var ErrTimeout = errors.New("network call produced no response")

func timeoutCause(err error) error {
	if err == nil {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %w", ErrTimeout, err)
}

func cacheError[T any](op string, err error) Resource[T] {
	return Error[T](fmt.Sprintf("cache %s failed: %v", op, err), nil, err).WithKind(KindCache)
}
