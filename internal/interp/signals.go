package interp

import "errors"

type (
	// SignalKind distinguishes the four control-transfer signals
	SignalKind uint8

	// Signal is a non-local control-transfer value. It travels the error
	// return path but is reserved exclusively for control transfer: catch
	// sites test with AsSignal and fault handlers never consume one. A
	// signal is never persisted and never reported to users
	Signal struct {
		Kind  SignalKind
		Value any
	}
)

const (
	SignalBreak SignalKind = iota
	SignalContinue
	SignalReturn
	SignalDeliver
)

func (k SignalKind) String() string {
	switch k {
	case SignalBreak:
		return "break"
	case SignalContinue:
		return "continue"
	case SignalReturn:
		return "return"
	case SignalDeliver:
		return "deliver"
	}
	return "unknown"
}

func (s *Signal) Error() string {
	return "control signal: " + s.Kind.String()
}

// AsSignal extracts a control signal from an error chain, reporting whether
// one was found. Everything that is not a signal is a genuine fault
func AsSignal(err error) (*Signal, bool) {
	var s *Signal
	if errors.As(err, &s) {
		return s, true
	}
	return nil, false
}
