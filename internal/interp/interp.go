package interp

import (
	"fmt"
	"log/slog"

	"github.com/kode4food/dana/internal/deferred"
	"github.com/kode4food/dana/pkg/api"
	"github.com/kode4food/dana/pkg/ast"
)

// Interpreter drives Dana statement and expression execution. It owns no
// process-global state; the pool, creation policy, and type registry are
// injected so independent sandboxes coexist cleanly
type Interpreter struct {
	log    *slog.Logger
	pool   *deferred.Pool
	policy *deferred.Policy
	types  api.TypeRegistry
}

// New creates an interpreter around the provided collaborators. The type
// registry may be nil, in which case struct literals fault
func New(
	logger *slog.Logger, pool *deferred.Pool, policy *deferred.Policy,
	types api.TypeRegistry,
) *Interpreter {
	return &Interpreter{
		log:    logger,
		pool:   pool,
		policy: policy,
		types:  types,
	}
}

// Execute runs a single AST node in the provided context and returns its
// value. Control signals escaping a top-level node indicate a malformed
// program and surface as faults
func (in *Interpreter) Execute(
	node ast.Node, ctx *ExecutionContext,
) (any, error) {
	switch n := node.(type) {
	case ast.Expr:
		return in.evalExpr(ctx, n)
	case ast.Stmt:
		res, err := in.execStmt(ctx, n)
		if err != nil {
			if s, ok := AsSignal(err); ok {
				return nil, api.NewFault(
					fmt.Errorf("%w: %s", api.ErrMisplacedTransfer,
						s.Kind),
					node.At(), "",
				)
			}
			return nil, err
		}
		return res, nil
	default:
		return nil, api.NewFault(
			fmt.Errorf("unrecognized node %T", node), node.At(), "",
		)
	}
}

// Run executes a statement sequence as a program body, tracking the last
// non-absent result under the well-known system key. A control signal
// escaping the program is a malformed transfer and surfaces as a fault;
// signals never reach callers
func (in *Interpreter) Run(
	body []ast.Stmt, ctx *ExecutionContext,
) (any, error) {
	res, err := in.runBody(ctx, body)
	if err != nil {
		if s, ok := AsSignal(err); ok {
			return nil, api.NewFault(
				fmt.Errorf("%w: %s", api.ErrMisplacedTransfer, s.Kind),
				api.Location{}, "",
			)
		}
		return nil, err
	}
	return res, nil
}

// resolve forces any deferred value at a consumption site, following chains
// until a concrete value remains. Arithmetic, comparison, truthiness,
// length, indexing, attribute access, and calls all consume through this;
// identity comparison of the handles themselves is not transparent
func (in *Interpreter) resolve(v any) (any, error) {
	for {
		d, ok := v.(*deferred.Deferred)
		if !ok {
			return v, nil
		}
		res, err := d.Resolve()
		if err != nil {
			return nil, err
		}
		v = res
	}
}

// ResolveDeep resolves a value and, for containers, every element, used at
// delivery boundaries and in run reports
func (in *Interpreter) ResolveDeep(v any) (any, error) {
	v, err := in.resolve(v)
	if err != nil {
		return nil, err
	}
	switch val := v.(type) {
	case []any:
		res := make([]any, len(val))
		for i, item := range val {
			if res[i], err = in.ResolveDeep(item); err != nil {
				return nil, err
			}
		}
		return res, nil
	case map[string]any:
		res := make(map[string]any, len(val))
		for k, item := range val {
			if res[k], err = in.ResolveDeep(item); err != nil {
				return nil, err
			}
		}
		return res, nil
	default:
		return v, nil
	}
}

func (in *Interpreter) logger() *slog.Logger {
	if in.log != nil {
		return in.log
	}
	return slog.Default()
}
