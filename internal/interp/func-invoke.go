package interp

import (
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/kode4food/dana/pkg/api"
	"github.com/kode4food/dana/pkg/ast"
	"github.com/kode4food/dana/pkg/log"
)

// Function is a Dana function value: parameters, an imperative body, and
// the defining context it closes over. Invocation binds arguments into a
// child context, pushes a call frame that is popped on every exit path, and
// runs the body until a return-like signal or the last computed value
type Function struct {
	name   string
	params []ast.Param
	body   []ast.Stmt
	loc    api.Location
	node   ast.Node
	def    *ExecutionContext
	in     *Interpreter
}

// Name returns the function's declared name
func (f *Function) Name() string {
	return f.name
}

// Invoke satisfies api.Callable. Faults escaping the body are enriched with
// the call site and function name before re-propagation
func (f *Function) Invoke(args []any, kwargs api.Args) (any, error) {
	return f.invokeFrom(f.def, args, kwargs)
}

// invokeFrom binds into a context derived from the defining one, carrying
// the calling path's dynamic state: its frame stack, so diagnostics follow
// the execution path rather than the lexical one, its deferred nesting
// depth, and its path isolation, so pooled paths never write shared maps
func (f *Function) invokeFrom(
	caller *ExecutionContext, args []any, kwargs api.Args,
) (any, error) {
	ctx := f.def.ForCaller(caller)
	if err := f.bind(ctx, args, kwargs); err != nil {
		return nil, api.NewFault(err, f.loc, f.name)
	}

	ctx.PushFrame(f.name, f.loc, f.node)
	defer ctx.PopFrame()

	f.in.logger().Debug("Invoking function",
		log.Function(f.name),
		log.Depth(ctx.Depth()),
		slog.Int("args", len(args)))

	res, err := f.in.runBody(ctx, f.body)
	if err == nil {
		// no explicit return: the last computed value, or absent
		return res, nil
	}

	s, ok := AsSignal(err)
	if !ok {
		return nil, api.NewFault(err, f.loc, f.name)
	}
	switch s.Kind {
	case SignalReturn, SignalDeliver:
		return s.Value, nil
	default:
		return nil, api.NewFault(fmt.Errorf(
			"%w: %s", api.ErrMisplacedTransfer, s.Kind,
		), f.loc, f.name)
	}
}

// bind assigns positional arguments in declaration order, then keyword
// arguments by name, then JSON-decoded defaults; a parameter left unbound
// holds the absent sentinel
func (f *Function) bind(
	ctx *ExecutionContext, args []any, kwargs api.Args,
) error {
	for i, p := range f.params {
		var val any = api.Absent
		switch {
		case i < len(args):
			val = args[i]
		case kwargs != nil && hasArg(kwargs, p.Name):
			val = kwargs[api.Name(p.Name)]
		case p.Default != "":
			val = gjson.Parse(p.Default).Value()
		}
		if err := ctx.Set(p.Name, val); err != nil {
			return err
		}
	}
	return nil
}

func hasArg(kwargs api.Args, name string) bool {
	_, ok := kwargs[api.Name(name)]
	return ok
}
