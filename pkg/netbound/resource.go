// Package netbound loads a resource the way a mobile client does: optionally
// show what the local cache holds, go to the network when it is needed and
// reachable, persist the answer, and report each step as a Resource state.
package netbound

// Status discriminates the variants of a Resource.
type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrorKind classifies an Error resource.
type ErrorKind int

const (
	// KindNone is used for non-error states.
	KindNone ErrorKind = iota
	// KindTimeout means the network call produced no outcome at all.
	KindTimeout
	// KindServer means the server answered with an empty or error response.
	KindServer
	// KindNoConnectivity means the network was not usable and no cache fallback was allowed.
	KindNoConnectivity
	// KindCache means the cache could not be read or written.
	KindCache
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTimeout:
		return "timeout"
	case KindServer:
		return "server"
	case KindNoConnectivity:
		return "no_connectivity"
	case KindCache:
		return "cache"
	default:
		return "unknown"
	}
}

// Resource is one state emitted by a Loader.
//
// Data is optional for Loading and Error and always set for Success.
type Resource[T any] struct {
	Status  Status
	Data    *T
	Message string
	Cause   error
	Kind    ErrorKind
}

// Loading returns an in-progress state, optionally carrying known data.
func Loading[T any](data *T) Resource[T] {
	return Resource[T]{Status: StatusLoading, Data: data}
}

// Success returns a state holding a definitive value.
func Success[T any](data T) Resource[T] {
	return Resource[T]{Status: StatusSuccess, Data: &data}
}

// Error returns a failed state. data may carry stale data and cause the
// underlying error; both may be nil.
func Error[T any](message string, data *T, cause error) Resource[T] {
	return Resource[T]{Status: StatusError, Message: message, Data: data, Cause: cause}
}

// WithKind returns a copy of r classified as kind.
func (r Resource[T]) WithKind(kind ErrorKind) Resource[T] {
	r.Kind = kind
	return r
}

// IsTerminal reports whether r is a Success or an Error.
func (r Resource[T]) IsTerminal() bool {
	return r.Status == StatusSuccess || r.Status == StatusError
}

// Value returns the carried data, if any.
func (r Resource[T]) Value() (T, bool) {
	if r.Data == nil {
		var zero T
		return zero, false
	}
	return *r.Data, true
}
