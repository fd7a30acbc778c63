package interp_test

import (
	"log/slog"
	"maps"
	"testing"

	"github.com/kode4food/dana/internal/deferred"
	"github.com/kode4food/dana/internal/interp"
	"github.com/kode4food/dana/pkg/api"
)

type testRegistry struct {
	records map[api.Name]api.Args
}

func (r *testRegistry) Construct(name api.Name, fields api.Args) (any, error) {
	if r.records == nil {
		r.records = map[api.Name]api.Args{}
	}
	r.records[name] = fields
	return fields, nil
}

type testEnv struct {
	in   *interp.Interpreter
	ctx  *interp.ExecutionContext
	pool *deferred.Pool
}

func newTestEnv(
	t *testing.T, extra map[api.Name]api.Callable,
) *testEnv {
	t.Helper()
	pool := deferred.NewPool(4)
	pool.Start()
	t.Cleanup(pool.Close)

	registry := interp.Builtins()
	maps.Copy(registry, extra)

	in := interp.New(
		slog.New(slog.DiscardHandler), pool, deferred.NewPolicy(3),
		&testRegistry{},
	)
	return &testEnv{
		in:   in,
		ctx:  interp.NewContext(in, registry),
		pool: pool,
	}
}

// callable adapts a single-argument Go function for the registry
func callable(fn func(arg any) (any, error)) api.Callable {
	return api.CallableFunc(func(args []any, _ api.Args) (any, error) {
		var arg any = api.Absent
		if len(args) > 0 {
			arg = args[0]
		}
		return fn(arg)
	})
}
