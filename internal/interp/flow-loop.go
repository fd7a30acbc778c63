package interp

import (
	"fmt"
	"maps"
	"slices"

	"github.com/kode4food/dana/pkg/api"
	"github.com/kode4food/dana/pkg/ast"
)

// execWhile iterates the body while the condition holds. Break terminates
// immediately, skipping the rest of the body and the else clause; Continue
// advances to the next iteration test. The else clause runs once when the
// condition goes false. Return, Deliver, and faults propagate
func (in *Interpreter) execWhile(
	ctx *ExecutionContext, n *ast.While,
) (any, error) {
	for {
		cond, err := in.evalResolved(ctx, n.Cond)
		if err != nil {
			return nil, err
		}
		if !truthy(cond) {
			return in.runBody(ctx, n.Else)
		}
		if stop, err := in.runLoopBody(ctx, n.Body); err != nil {
			return nil, err
		} else if stop {
			return api.Absent, nil
		}
	}
}

func (in *Interpreter) execForIn(
	ctx *ExecutionContext, n *ast.ForIn,
) (any, error) {
	iterable, err := in.evalResolved(ctx, n.Iterable)
	if err != nil {
		return nil, err
	}
	items, err := iterate(iterable)
	if err != nil {
		return nil, in.fault(ctx, n.At(), err)
	}

	for _, item := range items {
		if err := ctx.Set(n.Var, item); err != nil {
			return nil, in.fault(ctx, n.At(), err)
		}
		if stop, err := in.runLoopBody(ctx, n.Body); err != nil {
			return nil, err
		} else if stop {
			return api.Absent, nil
		}
	}
	return in.runBody(ctx, n.Else)
}

// runLoopBody executes one iteration, absorbing Break (stop true) and
// Continue (stop false) while letting everything else propagate
func (in *Interpreter) runLoopBody(
	ctx *ExecutionContext, body []ast.Stmt,
) (bool, error) {
	if _, err := in.runBody(ctx, body); err != nil {
		s, ok := AsSignal(err)
		if !ok {
			return false, err
		}
		switch s.Kind {
		case SignalBreak:
			return true, nil
		case SignalContinue:
			return false, nil
		default:
			return false, err
		}
	}
	return false, nil
}

func iterate(v any) ([]any, error) {
	switch val := v.(type) {
	case []any:
		return val, nil
	case string:
		items := make([]any, 0, len(val))
		for _, r := range val {
			items = append(items, string(r))
		}
		return items, nil
	case map[string]any:
		keys := slices.Sorted(maps.Keys(val))
		items := make([]any, len(keys))
		for i, k := range keys {
			items[i] = k
		}
		return items, nil
	case api.Args:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, string(k))
		}
		slices.Sort(keys)
		items := make([]any, len(keys))
		for i, k := range keys {
			items[i] = k
		}
		return items, nil
	default:
		if api.IsAbsent(v) {
			return nil, api.ErrUndefinedReference
		}
		return nil, fmt.Errorf("%w: %T", api.ErrNotIterable, v)
	}
}
