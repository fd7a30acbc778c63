// Package compose builds reusable callables from pipe chains. A pipeline is
// immutable once built and may be invoked repeatedly; its stages resolve
// lazily at each invocation so forward references compose cleanly and an
// unknown or non-callable stage faults at invocation, not composition
package compose

import (
	"errors"
	"fmt"

	"github.com/kode4food/dana/pkg/api"
	"github.com/kode4food/dana/pkg/ast"
)

type (
	// Resolver is the evaluation capability a pipeline borrows from its
	// builder: turning a stage expression into a callable and evaluating
	// stage argument expressions at invocation time
	Resolver interface {
		Callable(target ast.Expr) (api.Callable, error)
		Eval(arg ast.Expr) (any, error)
	}

	// Pipeline is the composed callable produced by the pipe operator. It
	// holds only the ordered stage chain and the resolver; per-invocation
	// state stays on the stack, so concurrent and repeated invocations
	// never interfere
	Pipeline struct {
		stages  []ast.Stage
		resolve Resolver
	}
)

var (
	ErrEmptyPipeline    = errors.New("pipeline has no stages")
	ErrEmptyStage       = errors.New("pipeline stage has no members")
	ErrStageNotCallable = errors.New("pipeline stage is not callable")
	ErrUnknownStage     = errors.New("unknown pipeline stage")
)

// New builds a pipeline from an ordered stage chain. `f | g | h` arrives
// left-associated as three stages applied in order
func New(stages []ast.Stage, resolve Resolver) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, ErrEmptyPipeline
	}
	for _, stage := range stages {
		if len(stage.Members) == 0 {
			return nil, ErrEmptyStage
		}
	}
	return &Pipeline{stages: stages, resolve: resolve}, nil
}

// With returns a pipeline over the same stage chain bound to a different
// resolver, letting an engine thread per-invocation state into stage
// resolution and argument evaluation
func (p *Pipeline) With(resolve Resolver) *Pipeline {
	res := *p
	res.resolve = resolve
	return &res
}

// Invoke feeds the first positional argument through the stage chain. A
// single-member stage replaces the current value with its result; a fan-out
// stage applies the current value to each member independently and the
// ordered member results become the current value
func (p *Pipeline) Invoke(args []any, kwargs api.Args) (any, error) {
	var current any = api.Absent
	if len(args) > 0 {
		current = args[0]
	}

	for _, stage := range p.stages {
		if len(stage.Members) == 1 {
			res, err := p.applyMember(stage.Members[0], current)
			if err != nil {
				return nil, err
			}
			current = res
			continue
		}

		results := make([]any, len(stage.Members))
		for i, member := range stage.Members {
			res, err := p.applyMember(member, current)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		current = results
	}

	return current, nil
}

func (p *Pipeline) applyMember(member ast.Expr, current any) (any, error) {
	call, ok := member.(*ast.Call)
	if !ok {
		target, err := p.resolve.Callable(member)
		if err != nil {
			return nil, err
		}
		return target.Invoke([]any{current}, nil)
	}

	target, err := p.resolve.Callable(call.Target)
	if err != nil {
		return nil, err
	}

	args, err := p.stageArgs(call.Args, current)
	if err != nil {
		return nil, err
	}

	kwargs, err := p.stageKwargs(call.Kwargs)
	if err != nil {
		return nil, err
	}

	return target.Invoke(args, kwargs)
}

// stageArgs produces the member's argument list in explicit mode (each
// placeholder replaced by the current value, possibly repeated) or implicit
// mode (no placeholder, current value prepended as the first positional)
func (p *Pipeline) stageArgs(exprs []ast.Expr, current any) ([]any, error) {
	if !hasPlaceholder(exprs) {
		args := make([]any, 0, len(exprs)+1)
		args = append(args, current)
		for _, e := range exprs {
			val, err := p.resolve.Eval(e)
			if err != nil {
				return nil, err
			}
			args = append(args, val)
		}
		return args, nil
	}

	args := make([]any, len(exprs))
	for i, e := range exprs {
		if _, ok := e.(*ast.Placeholder); ok {
			args[i] = current
			continue
		}
		val, err := p.resolve.Eval(e)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}
	return args, nil
}

func (p *Pipeline) stageKwargs(exprs map[string]ast.Expr) (api.Args, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	kwargs := api.Args{}
	for name, e := range exprs {
		val, err := p.resolve.Eval(e)
		if err != nil {
			return nil, err
		}
		kwargs[api.Name(name)] = val
	}
	return kwargs, nil
}

func hasPlaceholder(exprs []ast.Expr) bool {
	for _, e := range exprs {
		if _, ok := e.(*ast.Placeholder); ok {
			return true
		}
	}
	return false
}

// NotCallable builds the invocation-time fault for a stage that resolved to
// something other than a callable
func NotCallable(desc string) error {
	return fmt.Errorf("%w: %s", ErrStageNotCallable, desc)
}

// UnknownStage builds the invocation-time fault for a stage reference that
// resolved to nothing
func UnknownStage(desc string) error {
	return fmt.Errorf("%w: %s", ErrUnknownStage, desc)
}
