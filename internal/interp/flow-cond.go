package interp

import "github.com/kode4food/dana/pkg/ast"

// execIf evaluates the condition and executes exactly one branch. Elif
// chains arrive right-nested in the Else slot, so the first true condition
// wins and later conditions are never evaluated
func (in *Interpreter) execIf(
	ctx *ExecutionContext, n *ast.If,
) (any, error) {
	cond, err := in.evalResolved(ctx, n.Cond)
	if err != nil {
		return nil, err
	}
	if truthy(cond) {
		return in.runBody(ctx, n.Then)
	}
	return in.runBody(ctx, n.Else)
}
