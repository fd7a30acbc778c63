package interp

import (
	"errors"
	"fmt"

	"github.com/kode4food/dana/internal/deferred"
	"github.com/kode4food/dana/pkg/api"
	"github.com/kode4food/dana/pkg/ast"
)

// ErrRaised wraps the value of a raise statement as a user fault
var ErrRaised = errors.New("raised")

func (in *Interpreter) execStmt(
	ctx *ExecutionContext, s ast.Stmt,
) (any, error) {
	switch n := s.(type) {
	case *ast.Assign:
		return in.execAssign(ctx, n)

	case *ast.ExprStmt:
		return in.evalExpr(ctx, n.Value)

	case *ast.If:
		return in.execIf(ctx, n)

	case *ast.While:
		return in.execWhile(ctx, n)

	case *ast.ForIn:
		return in.execForIn(ctx, n)

	case *ast.Try:
		return in.execTry(ctx, n)

	case *ast.Return:
		val, err := in.resultValue(ctx, n.Value)
		if err != nil {
			return nil, err
		}
		return nil, &Signal{Kind: SignalReturn, Value: val}

	case *ast.Deliver:
		val, err := in.deliverValue(ctx, n.Value)
		if err != nil {
			return nil, err
		}
		return nil, &Signal{Kind: SignalDeliver, Value: val}

	case *ast.Break:
		return nil, &Signal{Kind: SignalBreak}

	case *ast.Continue:
		return nil, &Signal{Kind: SignalContinue}

	case *ast.Raise:
		return nil, in.execRaise(ctx, n)

	case *ast.FuncDef:
		return in.execFuncDef(ctx, n)

	case *ast.DeclFuncDef:
		return in.execDeclFuncDef(ctx, n)

	default:
		return nil, in.fault(ctx, s.At(),
			fmt.Errorf("unrecognized statement %T", s))
	}
}

// runBody executes statements in source order. A non-absent statement
// result becomes the last value, mirrored under the well-known system key;
// signals and faults propagate immediately
func (in *Interpreter) runBody(
	ctx *ExecutionContext, body []ast.Stmt,
) (any, error) {
	var last any = api.Absent
	for _, s := range body {
		res, err := in.execStmt(ctx, s)
		if err != nil {
			return nil, err
		}
		if res != nil && !api.IsAbsent(res) {
			last = res
			_ = ctx.Set(api.LastValueKey, res)
		}
	}
	return last, nil
}

// execAssign binds without forcing, so pending deferred values flow into
// the store transparently. Assignments do not contribute a last value
func (in *Interpreter) execAssign(
	ctx *ExecutionContext, n *ast.Assign,
) (any, error) {
	val, err := in.evalExpr(ctx, n.Value)
	if err != nil {
		return nil, err
	}
	if err := ctx.Set(n.Target, val); err != nil {
		return nil, in.fault(ctx, n.At(), err)
	}
	return api.Absent, nil
}

func (in *Interpreter) execRaise(
	ctx *ExecutionContext, n *ast.Raise,
) error {
	if n.Value == nil {
		return in.fault(ctx, n.At(), ErrRaised)
	}
	val, err := in.evalResolved(ctx, n.Value)
	if err != nil {
		return err
	}
	return in.fault(ctx, n.At(), fmt.Errorf("%w: %v", ErrRaised, val))
}

func (in *Interpreter) execFuncDef(
	ctx *ExecutionContext, n *ast.FuncDef,
) (any, error) {
	fn := &Function{
		name:   n.Name,
		params: n.Params,
		body:   n.Body,
		loc:    n.At(),
		node:   n,
		def:    ctx,
		in:     in,
	}
	if err := ctx.Set(n.Name, fn); err != nil {
		return nil, in.fault(ctx, n.At(), err)
	}
	return api.Absent, nil
}

// execDeclFuncDef binds a declarative function: its body is a composition
// expression, so the binding is the built pipeline itself
func (in *Interpreter) execDeclFuncDef(
	ctx *ExecutionContext, n *ast.DeclFuncDef,
) (any, error) {
	pipe, err := in.buildPipeline(ctx, n.Pipeline.Stages, n.At())
	if err != nil {
		return nil, err
	}
	if err := ctx.Set(n.Name, pipe); err != nil {
		return nil, in.fault(ctx, n.At(), err)
	}
	return api.Absent, nil
}

// resultValue produces a return result, consulting the creation policy. An
// inline decision evaluates on the calling path; otherwise the computation
// is wrapped as an eager deferred that starts on the pool immediately, with
// the guard and nesting depth threaded through the derived context
func (in *Interpreter) resultValue(
	ctx *ExecutionContext, expr ast.Expr,
) (any, error) {
	if expr == nil {
		return api.Absent, nil
	}
	if in.policy.Inline(ctx.InWorker(), ctx.Depth(), expr) {
		return in.evalExpr(ctx, expr)
	}

	worker := ctx.ForPoolWorker()
	compute := func() (any, error) {
		val, err := in.evalExpr(worker, expr)
		if err != nil {
			return nil, err
		}
		return in.resolve(val)
	}
	return deferred.NewEager(compute, expr.At(), in.pool), nil
}

// deliverValue always produces a fully resolved value
func (in *Interpreter) deliverValue(
	ctx *ExecutionContext, expr ast.Expr,
) (any, error) {
	if expr == nil {
		return api.Absent, nil
	}
	val, err := in.evalExpr(ctx, expr)
	if err != nil {
		return nil, err
	}
	res, err := in.ResolveDeep(val)
	if err != nil {
		return nil, in.fault(ctx, expr.At(), err)
	}
	return res, nil
}
