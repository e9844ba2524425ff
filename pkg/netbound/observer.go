package netbound

import "time"

// Observer is told about invocation milestones. It is informational only:
// nothing it does can change what a Loader emits.
type Observer interface {
	InvocationStarted(path Path)
	NetworkCompleted(kind OutcomeKind, elapsed time.Duration)
	StateEmitted(status Status, kind ErrorKind)
	// SilentCompletion is called when a network success ends without a terminal state.
	SilentCompletion()
	Cancelled()
}

// NoopObserver is an Observer that does nothing.
type NoopObserver struct{}

func (NoopObserver) InvocationStarted(Path)                      {}
func (NoopObserver) NetworkCompleted(OutcomeKind, time.Duration) {}
func (NoopObserver) StateEmitted(Status, ErrorKind)              {}
func (NoopObserver) SilentCompletion()                           {}
func (NoopObserver) Cancelled()                                  {}
