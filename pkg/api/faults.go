package api

import (
	"errors"
	"fmt"
)

// Fault is a user-code failure enriched with its source location and the
// enclosing function name. Control-flow signals are never wrapped in Faults;
// they are a separate error type reserved for control transfer
type Fault struct {
	Cause    error
	Loc      Location
	Function string
}

var (
	ErrUndefinedReference = errors.New("undefined reference")
	ErrNotCallable        = errors.New("value is not callable")
	ErrInvalidOperands    = errors.New("invalid operands")
	ErrNotIndexable       = errors.New("value is not indexable")
	ErrNoAttribute        = errors.New("no such attribute")
	ErrNotIterable        = errors.New("value is not iterable")
	ErrNoTypeRegistry     = errors.New("no type registry configured")
	ErrBadScope           = errors.New("invalid scope name")
	ErrMisplacedTransfer  = errors.New("transfer statement outside its block")
)

func (f *Fault) Error() string {
	if f.Function != "" {
		return fmt.Sprintf("%s (in %s at %s)", f.Cause, f.Function, f.Loc)
	}
	return fmt.Sprintf("%s (at %s)", f.Cause, f.Loc)
}

func (f *Fault) Unwrap() error {
	return f.Cause
}

// NewFault wraps err with a source location and enclosing function name. An
// error that already carries a Fault is returned unchanged so the innermost
// location wins
func NewFault(err error, loc Location, function string) error {
	if err == nil {
		return nil
	}
	var f *Fault
	if errors.As(err, &f) {
		return err
	}
	return &Fault{Cause: err, Loc: loc, Function: function}
}

// FaultLocation extracts the location from a fault, if one is attached
func FaultLocation(err error) (Location, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f.Loc, true
	}
	return Location{}, false
}
