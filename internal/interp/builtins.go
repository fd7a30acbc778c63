package interp

import (
	"errors"
	"fmt"

	"github.com/kode4food/dana/pkg/api"
)

var ErrArityMismatch = errors.New("wrong number of arguments")

// Builtins returns the callables every sandbox registers by default. They
// arrive through the registry like any host resource, so user bindings can
// shadow them
func Builtins() map[api.Name]api.Callable {
	return map[api.Name]api.Callable{
		"len": api.CallableFunc(builtinLen),
		"str": api.CallableFunc(builtinStr),
	}
}

func builtinLen(args []any, _ api.Args) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: len takes 1", ErrArityMismatch)
	}
	n, err := lengthOf(args[0])
	if err != nil {
		return nil, err
	}
	return n, nil
}

func builtinStr(args []any, _ api.Args) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: str takes 1", ErrArityMismatch)
	}
	if s, ok := args[0].(string); ok {
		return s, nil
	}
	return fmt.Sprintf("%v", args[0]), nil
}
