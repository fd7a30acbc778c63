package interp

import (
	"errors"
	"fmt"

	"github.com/kode4food/dana/internal/compose"
	"github.com/kode4food/dana/pkg/api"
	"github.com/kode4food/dana/pkg/ast"
)

var ErrMisplacedPlaceholder = errors.New(
	"placeholder marker outside a pipeline stage",
)

func (in *Interpreter) evalExpr(
	ctx *ExecutionContext, e ast.Expr,
) (any, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return n.Value, nil

	case *ast.Identifier:
		return in.evalIdentifier(ctx, n)

	case *ast.Unary:
		return in.evalUnary(ctx, n)

	case *ast.Binary:
		return in.evalBinary(ctx, n)

	case *ast.Call:
		return in.evalCall(ctx, n)

	case *ast.List:
		return in.evalList(ctx, n)

	case *ast.Index:
		return in.evalIndex(ctx, n)

	case *ast.Attribute:
		return in.evalAttribute(ctx, n)

	case *ast.StructLiteral:
		return in.evalStructLiteral(ctx, n)

	case *ast.Compose:
		return in.buildPipeline(ctx, n.Stages, n.At())

	case *ast.Placeholder:
		return nil, in.fault(ctx, n.At(), ErrMisplacedPlaceholder)

	default:
		return nil, in.fault(ctx, e.At(),
			fmt.Errorf("unrecognized expression %T", e))
	}
}

// evalIdentifier resolves a reference through the context scopes and then
// the resource registry. A miss produces the absent sentinel, not a fault;
// the fault happens at the consumption site if the value is ever used
func (in *Interpreter) evalIdentifier(
	ctx *ExecutionContext, n *ast.Identifier,
) (any, error) {
	val, err := ctx.Get(n.Name)
	if err != nil {
		return nil, in.fault(ctx, n.At(), err)
	}
	if !api.IsAbsent(val) {
		return val, nil
	}
	if res, ok := ctx.Resource(api.Name(n.Name)); ok {
		return res, nil
	}
	return api.Absent, nil
}

func (in *Interpreter) evalUnary(
	ctx *ExecutionContext, n *ast.Unary,
) (any, error) {
	operand, err := in.evalResolved(ctx, n.Operand)
	if err != nil {
		return nil, err
	}
	res, err := applyUnary(n.Op, operand)
	if err != nil {
		return nil, in.fault(ctx, n.At(), err)
	}
	return res, nil
}

func (in *Interpreter) evalBinary(
	ctx *ExecutionContext, n *ast.Binary,
) (any, error) {
	if n.Op == ast.OpPipe {
		return in.buildPipeline(ctx, pipeStages(n), n.At())
	}

	if n.Op.Logical() {
		return in.evalLogical(ctx, n)
	}

	left, err := in.evalResolved(ctx, n.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evalResolved(ctx, n.Right)
	if err != nil {
		return nil, err
	}
	res, err := applyBinary(n.Op, left, right)
	if err != nil {
		return nil, in.fault(ctx, n.At(), err)
	}
	return res, nil
}

// evalLogical short-circuits `and`/`or`; the right operand is never
// evaluated when the left decides the result
func (in *Interpreter) evalLogical(
	ctx *ExecutionContext, n *ast.Binary,
) (any, error) {
	left, err := in.evalResolved(ctx, n.Left)
	if err != nil {
		return nil, err
	}
	if n.Op == ast.OpAnd && !truthy(left) {
		return left, nil
	}
	if n.Op == ast.OpOr && truthy(left) {
		return left, nil
	}
	return in.evalResolved(ctx, n.Right)
}

// evalCall invokes the resolved target. Dana functions and pipelines
// receive argument values as-is so pending deferreds flow through
// transparently; opaque host resources receive fully resolved values at the
// in-process boundary
func (in *Interpreter) evalCall(
	ctx *ExecutionContext, n *ast.Call,
) (any, error) {
	target, err := in.evalResolved(ctx, n.Target)
	if err != nil {
		return nil, err
	}

	args := make([]any, len(n.Args))
	for i, arg := range n.Args {
		if args[i], err = in.evalExpr(ctx, arg); err != nil {
			return nil, err
		}
	}

	var kwargs api.Args
	if len(n.Kwargs) > 0 {
		kwargs = api.Args{}
		for name, arg := range n.Kwargs {
			val, err := in.evalExpr(ctx, arg)
			if err != nil {
				return nil, err
			}
			kwargs[api.Name(name)] = val
		}
	}

	switch callee := target.(type) {
	case *Function:
		return callee.invokeFrom(ctx, args, kwargs)
	case *compose.Pipeline:
		resolver := &stageResolver{in: in, ctx: ctx}
		return callee.With(resolver).Invoke(args, kwargs)
	case api.Callable:
		for i, arg := range args {
			if args[i], err = in.ResolveDeep(arg); err != nil {
				return nil, err
			}
		}
		for name, val := range kwargs {
			if kwargs[name], err = in.ResolveDeep(val); err != nil {
				return nil, err
			}
		}
		res, err := callee.Invoke(args, kwargs)
		if err != nil {
			return nil, in.fault(ctx, n.At(), err)
		}
		return res, nil
	default:
		if api.IsAbsent(target) {
			return nil, in.fault(ctx, n.At(), fmt.Errorf(
				"%w: %s", api.ErrUndefinedReference, describe(n.Target),
			))
		}
		return nil, in.fault(ctx, n.At(), fmt.Errorf(
			"%w: %T", api.ErrNotCallable, target,
		))
	}
}

func (in *Interpreter) evalList(
	ctx *ExecutionContext, n *ast.List,
) (any, error) {
	items := make([]any, len(n.Items))
	for i, item := range n.Items {
		val, err := in.evalExpr(ctx, item)
		if err != nil {
			return nil, err
		}
		items[i] = val
	}
	return items, nil
}

func (in *Interpreter) evalIndex(
	ctx *ExecutionContext, n *ast.Index,
) (any, error) {
	target, err := in.evalResolved(ctx, n.Target)
	if err != nil {
		return nil, err
	}
	key, err := in.evalResolved(ctx, n.Key)
	if err != nil {
		return nil, err
	}
	res, err := indexValue(target, key)
	if err != nil {
		return nil, in.fault(ctx, n.At(), err)
	}
	return res, nil
}

func (in *Interpreter) evalAttribute(
	ctx *ExecutionContext, n *ast.Attribute,
) (any, error) {
	target, err := in.evalResolved(ctx, n.Target)
	if err != nil {
		return nil, err
	}
	res, err := attributeValue(target, n.Name)
	if err != nil {
		return nil, in.fault(ctx, n.At(), err)
	}
	return res, nil
}

// evalStructLiteral routes construction to the type-layer capability; field
// validation lives there, and its faults surface as execution faults here
func (in *Interpreter) evalStructLiteral(
	ctx *ExecutionContext, n *ast.StructLiteral,
) (any, error) {
	if in.types == nil {
		return nil, in.fault(ctx, n.At(), api.ErrNoTypeRegistry)
	}
	fields := api.Args{}
	for name, expr := range n.Fields {
		val, err := in.evalResolved(ctx, expr)
		if err != nil {
			return nil, err
		}
		fields[api.Name(name)] = val
	}
	res, err := in.types.Construct(api.Name(n.Type), fields)
	if err != nil {
		return nil, in.fault(ctx, n.At(), err)
	}
	return res, nil
}

// evalResolved evaluates an expression and forces any deferred result,
// faulting on consumed absence only where operators demand it
func (in *Interpreter) evalResolved(
	ctx *ExecutionContext, e ast.Expr,
) (any, error) {
	val, err := in.evalExpr(ctx, e)
	if err != nil {
		return nil, err
	}
	res, err := in.resolve(val)
	if err != nil {
		return nil, in.fault(ctx, e.At(), err)
	}
	return res, nil
}

func (in *Interpreter) fault(
	ctx *ExecutionContext, loc api.Location, err error,
) error {
	if _, ok := AsSignal(err); ok {
		return err
	}
	return api.NewFault(err, loc, enclosingFunction(ctx))
}

func enclosingFunction(ctx *ExecutionContext) string {
	stack := ctx.ExecutionStack()
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1].Name
}

// pipeStages flattens a raw binary pipe tree into an ordered stage chain.
// Left association means the left subtree contributes its stages first
func pipeStages(n *ast.Binary) []ast.Stage {
	var stages []ast.Stage
	if left, ok := n.Left.(*ast.Binary); ok && left.Op == ast.OpPipe {
		stages = pipeStages(left)
	} else {
		stages = []ast.Stage{stageOf(n.Left)}
	}
	return append(stages, stageOf(n.Right))
}

func stageOf(e ast.Expr) ast.Stage {
	if list, ok := e.(*ast.List); ok {
		return ast.Stage{Members: list.Items}
	}
	return ast.Stage{Members: []ast.Expr{e}}
}

func describe(e ast.Expr) string {
	if id, ok := e.(*ast.Identifier); ok {
		return id.Name
	}
	return fmt.Sprintf("%T", e)
}
