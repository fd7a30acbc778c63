package interp

import (
	"github.com/kode4food/dana/internal/compose"
	"github.com/kode4food/dana/pkg/api"
	"github.com/kode4food/dana/pkg/ast"
)

type (
	// stageResolver lends the interpreter's evaluation machinery to a
	// pipeline. Pipelines call back into it at every invocation, so an
	// unknown stage only faults when the pipeline actually runs and forward
	// references work
	stageResolver struct {
		in  *Interpreter
		ctx *ExecutionContext
	}

	// pathFunction binds a stage function to the resolving path so its
	// invocation carries the path's frame stack, nesting depth, and
	// isolation
	pathFunction struct {
		fn  *Function
		ctx *ExecutionContext
	}

	// hostStage fronts an opaque host callable in a stage chain, fully
	// resolving argument values at the in-process boundary
	hostStage struct {
		in *Interpreter
		fn api.Callable
	}
)

func (in *Interpreter) buildPipeline(
	ctx *ExecutionContext, stages []ast.Stage, loc api.Location,
) (*compose.Pipeline, error) {
	pipe, err := compose.New(stages, &stageResolver{in: in, ctx: ctx})
	if err != nil {
		return nil, in.fault(ctx, loc, err)
	}
	return pipe, nil
}

// Callable resolves a stage target in the resolver's context. Dana
// functions and nested pipelines receive values as-is; anything else is a
// host callable and gets the boundary treatment
func (r *stageResolver) Callable(target ast.Expr) (api.Callable, error) {
	val, err := r.in.evalResolved(r.ctx, target)
	if err != nil {
		return nil, err
	}
	switch callee := val.(type) {
	case *Function:
		return &pathFunction{fn: callee, ctx: r.ctx}, nil
	case *compose.Pipeline:
		return callee.With(r), nil
	case api.Callable:
		return &hostStage{in: r.in, fn: callee}, nil
	}
	if api.IsAbsent(val) {
		return nil, r.in.fault(r.ctx, target.At(),
			compose.UnknownStage(describe(target)))
	}
	return nil, r.in.fault(r.ctx, target.At(),
		compose.NotCallable(describe(target)))
}

func (r *stageResolver) Eval(arg ast.Expr) (any, error) {
	return r.in.evalExpr(r.ctx, arg)
}

func (p *pathFunction) Invoke(args []any, kwargs api.Args) (any, error) {
	return p.fn.invokeFrom(p.ctx, args, kwargs)
}

func (h *hostStage) Invoke(args []any, kwargs api.Args) (any, error) {
	var err error
	for i, arg := range args {
		if args[i], err = h.in.ResolveDeep(arg); err != nil {
			return nil, err
		}
	}
	for name, val := range kwargs {
		if kwargs[name], err = h.in.ResolveDeep(val); err != nil {
			return nil, err
		}
	}
	return h.fn.Invoke(args, kwargs)
}
