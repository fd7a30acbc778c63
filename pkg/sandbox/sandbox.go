// Package sandbox is the embeddable surface of the Dana execution core.
// Each Sandbox owns its worker pool, resource registry, and interpreter, so
// independent sandboxes coexist in one process without shared state
package sandbox

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kode4food/dana/internal/config"
	"github.com/kode4food/dana/internal/deferred"
	"github.com/kode4food/dana/internal/interp"
	"github.com/kode4food/dana/pkg/api"
	"github.com/kode4food/dana/pkg/ast"
	"github.com/kode4food/dana/pkg/log"
)

type (
	// Context is the scoped execution context driving a run; see
	// ExecutionContext for the scope and call-frame semantics
	Context = interp.ExecutionContext

	// Frame is one call-stack entry exposed for diagnostics
	Frame = interp.Frame

	// Sandbox wires the execution core together. Construct with New,
	// register host resources, then Run programs or Invoke callables
	Sandbox struct {
		log      *slog.Logger
		cfg      *config.Config
		pool     *deferred.Pool
		interp   *interp.Interpreter
		registry map[api.Name]api.Callable
	}

	// Option adjusts sandbox construction
	Option func(*settings)

	settings struct {
		cfg   *config.Config
		log   *slog.Logger
		types api.TypeRegistry
	}

	// Report summarizes a top-level run: success or failure, final local
	// state, and captured fault text
	Report struct {
		RunID    string
		Value    any
		Failed   bool
		Fault    string
		State    map[string]any
		Duration time.Duration
	}

	// Stats exposes pool counters, mostly for health reporting
	Stats struct {
		PoolWorkers   int
		PoolSubmitted int64
	}
)

var ErrNotInvokable = errors.New("value cannot be invoked")

// WithPoolWorkers overrides the worker pool size (default 4)
func WithPoolWorkers(workers int) Option {
	return func(s *settings) {
		s.cfg.PoolWorkers = workers
	}
}

// WithNestingThreshold overrides the deferred nesting-depth threshold at
// which creation falls back to inline execution (default 3)
func WithNestingThreshold(threshold int) Option {
	return func(s *settings) {
		s.cfg.NestingThreshold = threshold
	}
}

// WithLogger replaces the default logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.log = logger
	}
}

// WithTypeRegistry installs the type-layer capability that validates and
// constructs typed records for struct literals
func WithTypeRegistry(types api.TypeRegistry) Option {
	return func(s *settings) {
		s.types = types
	}
}

// New creates a sandbox with its own bounded worker pool and the builtin
// resources registered
func New(opts ...Option) (*Sandbox, error) {
	s := &settings{cfg: config.FromEnv()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if s.log == nil {
		s.log = log.NewWithLevel(
			"dana", "dev", log.ParseLevel(s.cfg.LogLevel),
		)
	}

	pool := deferred.NewPool(s.cfg.PoolWorkers)
	pool.Start()

	registry := interp.Builtins()
	res := &Sandbox{
		log:      s.log,
		cfg:      s.cfg,
		pool:     pool,
		registry: registry,
	}
	res.interp = interp.New(
		s.log, pool, deferred.NewPolicy(s.cfg.NestingThreshold), s.types,
	)
	return res, nil
}

// Register installs a host resource (LLM/agent implementations are opaque
// callables from this layer's point of view). Not safe to call while runs
// are in flight
func (s *Sandbox) Register(name api.Name, callable api.Callable) {
	s.registry[name] = callable
}

// RegisterFunc installs a plain Go function as a host resource
func (s *Sandbox) RegisterFunc(
	name api.Name, fn func(args []any, kwargs api.Args) (any, error),
) {
	s.Register(name, api.CallableFunc(fn))
}

// NewContext creates a root execution context bound to this sandbox
func (s *Sandbox) NewContext() *Context {
	return interp.NewContext(s.interp, s.registry)
}

// Execute runs a single AST node in the provided context and returns its
// fully resolved value
func (s *Sandbox) Execute(node ast.Node, ctx *Context) (any, error) {
	val, err := s.interp.Execute(node, ctx)
	if err != nil {
		return nil, err
	}
	return s.interp.ResolveDeep(val)
}

// Invoke calls a callable with the provided arguments and returns its fully
// resolved result
func (s *Sandbox) Invoke(
	callable any, args []any, kwargs api.Args,
) (any, error) {
	target, ok := callable.(api.Callable)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotInvokable, callable)
	}
	res, err := target.Invoke(args, kwargs)
	if err != nil {
		return nil, err
	}
	return s.interp.ResolveDeep(res)
}

// Run executes a program in a fresh root context and reports the outcome.
// Faults are captured in the report; only try/except written in source
// recovers silently
func (s *Sandbox) Run(program []ast.Stmt) *Report {
	return s.RunInContext(program, s.NewContext())
}

// RunInContext executes a program in the provided root context
func (s *Sandbox) RunInContext(
	program []ast.Stmt, ctx *Context,
) *Report {
	res := &Report{RunID: uuid.NewString()}
	start := time.Now()

	val, err := s.interp.Run(program, ctx)
	if err == nil {
		val, err = s.interp.ResolveDeep(val)
	}
	res.Duration = time.Since(start)

	if state, serr := ctx.GetScope(api.ScopeLocal); serr == nil {
		res.State = state
	}
	if err != nil {
		res.Failed = true
		res.Fault = err.Error()
		s.log.Error("Run failed",
			log.RunID(res.RunID),
			log.Error(err))
		return res
	}

	res.Value = val
	s.log.Debug("Run completed",
		log.RunID(res.RunID),
		slog.Duration("duration", res.Duration))
	return res
}

// CallStack returns a read-only snapshot of the context's call frames
func (s *Sandbox) CallStack(ctx *Context) []Frame {
	return ctx.ExecutionStack()
}

// CurrentNode returns the AST back-reference of the innermost call frame
func (s *Sandbox) CurrentNode(ctx *Context) ast.Node {
	return ctx.CurrentNode()
}

// Stats reports pool counters
func (s *Sandbox) Stats() Stats {
	return Stats{
		PoolWorkers:   s.pool.Size(),
		PoolSubmitted: s.pool.Submitted(),
	}
}

// Close stops the worker pool after in-flight computations settle
func (s *Sandbox) Close() {
	s.pool.Close()
}
