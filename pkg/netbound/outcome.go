package netbound

// OutcomeKind names the variant of a network Outcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeEmpty
	OutcomeFailure
	OutcomeNoResponse
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailure:
		return "failure"
	case OutcomeNoResponse:
		return "no_response"
	default:
		return "unknown"
	}
}

// Outcome is the result of a single network call attempt. The set of variants
// is closed: Succeeded, Empty, Failed and NoResponse.
type Outcome[R any] interface {
	Kind() OutcomeKind
	sealed(R)
}

// Succeeded is a successful response. Payload is nil when the server answered
// successfully without a body worth caching.
type Succeeded[R any] struct {
	Payload    *R
	StatusCode int
	// Metadata carries response bookkeeping such as pagination cursors.
	Metadata map[string]string
}

// Empty is a response that carried no content.
type Empty[R any] struct {
	Message    string
	StatusCode int
}

// Failed is an error response reported by the server.
type Failed[R any] struct {
	Message    string
	StatusCode int
}

// NoResponse means the request never completed, e.g. a transport timeout.
type NoResponse[R any] struct {
	Err error
}

func (Succeeded[R]) Kind() OutcomeKind  { return OutcomeSuccess }
func (Empty[R]) Kind() OutcomeKind      { return OutcomeEmpty }
func (Failed[R]) Kind() OutcomeKind     { return OutcomeFailure }
func (NoResponse[R]) Kind() OutcomeKind { return OutcomeNoResponse }

func (Succeeded[R]) sealed(R)  {}
func (Empty[R]) sealed(R)      {}
func (Failed[R]) sealed(R)     {}
func (NoResponse[R]) sealed(R) {}

// SucceededWith is a shorthand for a Succeeded outcome carrying payload.
func SucceededWith[R any](payload R) Succeeded[R] {
	return Succeeded[R]{Payload: &payload}
}
