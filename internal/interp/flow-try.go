package interp

import (
	"github.com/kode4food/dana/pkg/ast"
	"github.com/kode4food/dana/pkg/log"
)

// execTry runs the protected body and dispatches the outcome. Control
// signals are never catchable: they skip every except clause and propagate
// immediately once the finally block has run. Except-clause type lists are
// declared in the AST but not yet enforced; the first clause handles every
// fault. A fault raised by the finally block itself is logged and never
// overrides a pending outcome, but a signal raised there propagates
func (in *Interpreter) execTry(
	ctx *ExecutionContext, n *ast.Try,
) (any, error) {
	res, err := in.runBody(ctx, n.Body)
	if err == nil {
		return in.finishTry(ctx, n, res, nil)
	}

	if _, ok := AsSignal(err); ok {
		return in.finishTry(ctx, n, nil, err)
	}

	if len(n.Excepts) == 0 {
		return in.finishTry(ctx, n, nil, err)
	}

	handled, res, herr := in.runHandler(ctx, &n.Excepts[0], err)
	if !handled {
		return in.finishTry(ctx, n, nil, err)
	}
	return in.finishTry(ctx, n, res, herr)
}

// runHandler executes the matching except clause, binding the fault text to
// the clause variable when one is declared. A signal or fault raised by the
// handler replaces the original outcome
func (in *Interpreter) runHandler(
	ctx *ExecutionContext, clause *ast.Except, cause error,
) (bool, any, error) {
	if clause.Var != "" {
		if err := ctx.Set(clause.Var, cause.Error()); err != nil {
			return false, nil, err
		}
	}
	res, err := in.runBody(ctx, clause.Body)
	if err != nil {
		return true, nil, err
	}
	return true, res, nil
}

// finishTry runs the finally block and settles the statement's outcome. A
// finally fault is logged and discarded so the pending outcome wins; a
// finally signal is a genuine control transfer and takes over
func (in *Interpreter) finishTry(
	ctx *ExecutionContext, n *ast.Try, res any, pending error,
) (any, error) {
	if len(n.Finally) == 0 {
		return res, pending
	}
	if _, err := in.runBody(ctx, n.Finally); err != nil {
		if _, ok := AsSignal(err); ok {
			return nil, err
		}
		in.logger().Error("Fault in finally block",
			log.Location(n.At()),
			log.Function(enclosingFunction(ctx)),
			log.Error(err))
	}
	return res, pending
}
