package interp_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/kode4food/dana/internal/assert"
	"github.com/kode4food/dana/internal/deferred"
	"github.com/kode4food/dana/pkg/api"
	"github.com/kode4food/dana/pkg/ast"
	"github.com/kode4food/dana/pkg/builder"
)

func TestFunctionInvoke(t *testing.T) {
	as := assert.New(t)
	env := newTestEnv(t, nil)

	fn := builder.NewFunc("add").
		WithParam("a").
		WithParam("b").
		WithBody(
			builder.Return(builder.Bin(
				ast.OpAdd, builder.Ref("a"), builder.Ref("b"))),
		).Build()

	res, err := env.in.Run([]ast.Stmt{
		fn,
		builder.Expr(builder.Call("add", builder.Lit(2), builder.Lit(3))),
	}, env.ctx)
	as.Require.NoError(err)
	as.Equal(int64(5), res)
}

func TestFunctionImplicitLastValue(t *testing.T) {
	as := assert.New(t)
	env := newTestEnv(t, nil)

	// no return statement: the last computed value is the result, and
	// assignments never contribute one
	fn := builder.NewFunc("f").WithBody(
		builder.Expr(builder.Lit("first")),
		builder.Assign("x", builder.Lit("bound")),
		builder.Expr(builder.Lit("last")),
	).Build()

	res, err := env.in.Run([]ast.Stmt{
		fn,
		builder.Expr(builder.Call("f")),
	}, env.ctx)
	as.Require.NoError(err)
	as.Equal("last", res)
}

func TestFunctionEmptyBodyAbsent(t *testing.T) {
	as := assert.New(t)
	env := newTestEnv(t, nil)

	fn := builder.NewFunc("noop").WithBody(
		builder.Assign("x", builder.Lit(1)),
	).Build()

	res, err := env.in.Run([]ast.Stmt{
		fn,
		builder.Expr(builder.Call("noop")),
	}, env.ctx)
	as.Require.NoError(err)
	as.Absent(res)
}

func TestFunctionBinding(t *testing.T) {
	as := assert.New(t)
	env := newTestEnv(t, nil)

	fn := builder.NewFunc("greet").
		WithParam("name").
		WithDefault("greeting", `"hello"`).
		WithParam("extra").
		WithBody(
			builder.Return(builder.Bin(ast.OpAdd,
				builder.Bin(ast.OpAdd,
					builder.Ref("greeting"), builder.Lit(" ")),
				builder.Ref("name"))),
		).Build()

	// positional, default applied, extra left absent
	res, err := env.in.Run([]ast.Stmt{
		fn,
		builder.Expr(builder.Call("greet", builder.Lit("dana"))),
	}, env.ctx)
	as.Require.NoError(err)
	as.Equal("hello dana", res)

	// keyword argument overrides the default
	res, err = env.in.Run([]ast.Stmt{
		fn,
		builder.Expr(&ast.Call{
			Target: builder.Ref("greet"),
			Args:   []ast.Expr{builder.Lit("dana")},
			Kwargs: map[string]ast.Expr{"greeting": builder.Lit("hi")},
		}),
	}, env.ctx)
	as.Require.NoError(err)
	as.Equal("hi dana", res)
}

func TestFunctionDefaultDecodesJSON(t *testing.T) {
	as := assert.New(t)
	env := newTestEnv(t, nil)

	fn := builder.NewFunc("bump").
		WithParam("x").
		WithDefault("by", "10").
		WithBody(
			builder.Return(builder.Bin(
				ast.OpAdd, builder.Ref("x"), builder.Ref("by"))),
		).Build()

	res, err := env.in.Run([]ast.Stmt{
		fn,
		builder.Expr(builder.Call("bump", builder.Lit(5))),
	}, env.ctx)
	as.Require.NoError(err)
	as.Equal(15.0, res, "JSON defaults decode as JSON numbers")
}

func TestUnboundParamIsAbsent(t *testing.T) {
	as := assert.New(t)
	env := newTestEnv(t, nil)

	fn := builder.NewFunc("f").
		WithParam("x").
		WithBody(
			builder.Return(builder.Bin(
				ast.OpEq, builder.Ref("x"), builder.Ref("never"))),
		).Build()

	res, err := env.in.Run([]ast.Stmt{
		fn,
		builder.Expr(builder.Call("f")),
	}, env.ctx)
	as.Require.NoError(err)
	as.Equal(true, res)
}

func TestSimpleReturnStaysOffPool(t *testing.T) {
	as := assert.New(t)
	env := newTestEnv(t, nil)

	fn := builder.NewFunc("add").
		WithParam("a").
		WithParam("b").
		WithBody(
			builder.Return(builder.Bin(
				ast.OpAdd, builder.Ref("a"), builder.Ref("b"))),
		).Build()

	res, err := env.in.Run([]ast.Stmt{
		fn,
		builder.Expr(builder.Call("add", builder.Lit(1), builder.Lit(2))),
	}, env.ctx)
	as.Require.NoError(err)
	as.Equal(int64(3), res)
	as.Equal(int64(0), env.pool.Submitted())
}

func TestComplexReturnDefersToPool(t *testing.T) {
	as := assert.New(t)
	var calls int
	env := newTestEnv(t, map[api.Name]api.Callable{
		"fetch": callable(func(any) (any, error) {
			calls++
			return "payload", nil
		}),
	})

	fn := builder.NewFunc("load").WithBody(
		builder.Return(builder.Call("fetch")),
	).Build()

	res, err := env.in.Run([]ast.Stmt{
		fn,
		builder.Expr(builder.Call("load")),
	}, env.ctx)
	as.Require.NoError(err)

	d, ok := res.(*deferred.Deferred)
	as.Require.True(ok, "a call-shaped return produces a deferred handle")
	as.Equal(int64(1), env.pool.Submitted())

	val, err := env.in.ResolveDeep(d)
	as.Require.NoError(err)
	as.Equal("payload", val)

	// memoized: resolving again never recomputes
	val, err = env.in.ResolveDeep(d)
	as.Require.NoError(err)
	as.Equal("payload", val)
	as.Equal(1, calls)
}

func TestDeferredTransparentInOperators(t *testing.T) {
	as := assert.New(t)
	env := newTestEnv(t, map[api.Name]api.Callable{
		"ten": callable(func(any) (any, error) {
			return 10, nil
		}),
	})

	fn := builder.NewFunc("load").WithBody(
		builder.Return(builder.Call("ten")),
	).Build()

	// the binding holds a pending handle; arithmetic consumption forces it
	res, err := env.in.Run([]ast.Stmt{
		fn,
		builder.Assign("x", builder.Call("load")),
		builder.Expr(builder.Bin(
			ast.OpAdd, builder.Ref("x"), builder.Lit(1))),
	}, env.ctx)
	as.Require.NoError(err)
	as.Equal(int64(11), res)
}

func TestDeliverResolvesDeep(t *testing.T) {
	as := assert.New(t)
	env := newTestEnv(t, map[api.Name]api.Callable{
		"value": callable(func(any) (any, error) {
			return 7, nil
		}),
	})

	inner := builder.NewFunc("inner").WithBody(
		builder.Return(builder.Call("value")),
	).Build()
	outer := builder.NewFunc("outer").WithBody(
		builder.Deliver(builder.List(
			builder.Call("inner"), builder.Lit("done"))),
	).Build()

	res, err := env.in.Run([]ast.Stmt{
		inner,
		outer,
		builder.Expr(builder.Call("outer")),
	}, env.ctx)
	as.Require.NoError(err)
	as.Equal([]any{7, "done"}, res)
}

func TestDeferredFaultReRaised(t *testing.T) {
	as := assert.New(t)
	env := newTestEnv(t, map[api.Name]api.Callable{
		"explode": callable(func(any) (any, error) {
			return nil, api.ErrInvalidOperands
		}),
	})

	fn := builder.NewFunc("load").WithBody(
		builder.Return(builder.Call("explode")),
	).Build()

	res, err := env.in.Run([]ast.Stmt{
		fn,
		builder.Expr(builder.Call("load")),
	}, env.ctx)
	as.Require.NoError(err, "creation never faults; consumption does")

	for range 2 {
		_, err = env.in.ResolveDeep(res)
		as.Fault(err, api.ErrInvalidOperands)
	}
}

func TestHostCallableSeesResolvedArgs(t *testing.T) {
	as := assert.New(t)
	var seen any
	env := newTestEnv(t, map[api.Name]api.Callable{
		"five": callable(func(any) (any, error) {
			return 5, nil
		}),
		"capture": callable(func(arg any) (any, error) {
			seen = arg
			return nil, nil
		}),
	})

	fn := builder.NewFunc("load").WithBody(
		builder.Return(builder.Call("five")),
	).Build()

	_, err := env.in.Run([]ast.Stmt{
		fn,
		builder.Assign("x", builder.Call("load")),
		builder.Expr(builder.Call("capture", builder.Ref("x"))),
	}, env.ctx)
	as.Require.NoError(err)
	as.Equal(5, seen, "host resources never observe deferred handles")
}

func TestNestedDeferredCreation(t *testing.T) {
	as := assert.New(t)
	env := newTestEnv(t, map[api.Name]api.Callable{
		"one": callable(func(any) (any, error) {
			return 1, nil
		}),
	})

	// work(n): two recursive children per level, combined through calls so
	// every return is pool-eligible until the depth guard trips
	combine := builder.NewFunc("combine").
		WithParam("a").
		WithParam("b").
		WithBody(
			builder.Return(builder.Bin(
				ast.OpAdd, builder.Ref("a"), builder.Ref("b"))),
		).Build()

	work := builder.NewFunc("work").
		WithParam("n").
		WithBody(
			builder.If(
				builder.Bin(ast.OpEq, builder.Ref("n"), builder.Lit(0)),
				builder.Return(builder.Call("one")),
			).Build(),
			builder.Return(builder.Call("combine",
				builder.Call("work", builder.Bin(
					ast.OpSub, builder.Ref("n"), builder.Lit(1))),
				builder.Call("work", builder.Bin(
					ast.OpSub, builder.Ref("n"), builder.Lit(1))),
			)),
		).Build()

	res, err := env.in.Run([]ast.Stmt{
		combine,
		work,
		builder.Expr(builder.Call("work", builder.Lit(3))),
	}, env.ctx)
	as.Require.NoError(err)

	val, err := env.in.ResolveDeep(res)
	as.Require.NoError(err)
	as.Equal(int64(8), val)

	// the worker guard and nesting threshold gate creation, so in-flight
	// computations stay bounded against the fixed pool size
	submitted := env.pool.Submitted()
	as.Positive(submitted)
	as.LessOrEqual(submitted, int64(7))
}

func TestMisplacedBreakInFunction(t *testing.T) {
	as := assert.New(t)
	env := newTestEnv(t, nil)

	fn := builder.NewFunc("bad").WithBody(
		builder.Break(),
	).Build()

	_, err := env.in.Run([]ast.Stmt{
		fn,
		builder.Expr(builder.Call("bad")),
	}, env.ctx)
	as.Fault(err, api.ErrMisplacedTransfer)
}

func TestFaultCarriesFunctionName(t *testing.T) {
	as := assert.New(t)
	env := newTestEnv(t, nil)

	fn := builder.NewFunc("broken").WithBody(
		builder.Expr(builder.Bin(
			ast.OpAdd, builder.Ref("missing"), builder.Lit(1))),
	).Build()

	_, err := env.in.Run([]ast.Stmt{
		fn,
		builder.Expr(builder.Call("broken")),
	}, env.ctx)
	as.Fault(err, api.ErrUndefinedReference)
	as.FaultContains(err, "broken")
}

func TestPooledInvocationIsolation(t *testing.T) {
	as := assert.New(t)
	env := newTestEnv(t, map[api.Name]api.Callable{
		"fetch": callable(func(any) (any, error) {
			return "inner", nil
		}),
	})

	// leaf's body tracks its own last value; spawned through the pool, that
	// bookkeeping must land in the pooled path's snapshot
	leaf := builder.NewFunc("leaf").WithBody(
		builder.Return(builder.Call("fetch")),
	).Build()
	spawn := builder.NewFunc("spawn").WithBody(
		builder.Return(builder.Call("leaf")),
	).Build()

	_, err := env.in.Run([]ast.Stmt{
		leaf,
		spawn,
		builder.Assign("h", builder.Call("spawn")),
		builder.Expr(builder.Lit("outer-last")),
	}, env.ctx)
	as.Require.NoError(err)

	h, err := env.ctx.Get("h")
	as.Require.NoError(err)
	val, err := env.in.ResolveDeep(h)
	as.Require.NoError(err)
	as.Equal("inner", val)

	// the pooled invocation never wrote through the root's scope maps
	last, err := env.ctx.Get(api.LastValueKey)
	as.Require.NoError(err)
	as.Equal("outer-last", last)
}

func TestConcurrentPooledInvocations(t *testing.T) {
	as := assert.New(t)
	env := newTestEnv(t, map[api.Name]api.Callable{
		"stamp": callable(func(arg any) (any, error) {
			return arg, nil
		}),
	})

	leaf := builder.NewFunc("leaf").
		WithParam("n").
		WithBody(
			builder.Expr(builder.Lit("scratch")),
			builder.Return(builder.Call("stamp", builder.Ref("n"))),
		).Build()
	spawn := builder.NewFunc("spawn").
		WithParam("n").
		WithBody(
			builder.Return(builder.Call("leaf", builder.Ref("n"))),
		).Build()

	stmts := []ast.Stmt{leaf, spawn}
	for i := range 8 {
		stmts = append(stmts, builder.Assign(
			fmt.Sprintf("h%d", i),
			builder.Call("spawn", builder.Lit(i)),
		))
	}
	_, err := env.in.Run(stmts, env.ctx)
	as.Require.NoError(err)

	// force every handle from its own goroutine; each pooled path binds
	// into its own snapshot, so the resolutions never contend on a map
	results := make([]any, 8)
	errs := make([]error, 8)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			h, err := env.ctx.Get(fmt.Sprintf("h%d", i))
			if err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = env.in.ResolveDeep(h)
		})
	}
	wg.Wait()

	for i := range 8 {
		as.Require.NoError(errs[i])
		as.Equal(i, results[i])
	}
}

func TestHostCallableSeesResolvedKwargs(t *testing.T) {
	as := assert.New(t)
	var seen any
	env := newTestEnv(t, map[api.Name]api.Callable{
		"five": callable(func(any) (any, error) {
			return 5, nil
		}),
		"record": api.CallableFunc(func(_ []any, kwargs api.Args) (any, error) {
			seen = kwargs["v"]
			return api.Absent, nil
		}),
	})

	fn := builder.NewFunc("load").WithBody(
		builder.Return(builder.Call("five")),
	).Build()

	_, err := env.in.Run([]ast.Stmt{
		fn,
		builder.Assign("x", builder.Call("load")),
		builder.Expr(&ast.Call{
			Target: builder.Ref("record"),
			Kwargs: map[string]ast.Expr{"v": builder.Ref("x")},
		}),
	}, env.ctx)
	as.Require.NoError(err)
	as.Equal(5, seen, "keyword values cross the host boundary resolved")
}

func TestHostStageSeesResolvedValue(t *testing.T) {
	as := assert.New(t)
	var seen any
	env := newTestEnv(t, map[api.Name]api.Callable{
		"five": callable(func(any) (any, error) {
			return 5, nil
		}),
		"capture": callable(func(arg any) (any, error) {
			seen = arg
			return arg, nil
		}),
	})

	// load's call-shaped return hands the pipeline a pending handle; the
	// host stage downstream must receive the settled value
	fn := builder.NewFunc("load").WithBody(
		builder.Return(builder.Call("five")),
	).Build()

	res, err := env.in.Run([]ast.Stmt{
		fn,
		builder.Assign("p", builder.Pipe(
			builder.Ref("load"), builder.Ref("capture"))),
		builder.Expr(builder.CallExpr(builder.Ref("p"))),
	}, env.ctx)
	as.Require.NoError(err)
	as.Equal(5, seen)

	val, err := env.in.ResolveDeep(res)
	as.Require.NoError(err)
	as.Equal(5, val)
}
