package interp

import (
	"fmt"
	"maps"
	"strings"

	"github.com/google/uuid"

	"github.com/kode4food/dana/pkg/api"
	"github.com/kode4food/dana/pkg/ast"
)

type (
	// ExecutionContext is the hierarchical scoped store for one call scope:
	// four namespaces, a call-frame stack shared along the execution path,
	// the resource registry, and the interpreter handle. A child reads
	// through to its parent on lookup miss but never writes parent scopes
	// except via Export. The inWorker flag and deferred nesting depth are
	// call-scoped state threaded through copies, never process-global
	ExecutionContext struct {
		id       string
		parent   *ExecutionContext
		scopes   map[api.Scope]map[string]any
		frames   *frameStack
		registry map[api.Name]api.Callable
		interp   *Interpreter
		inWorker bool
		isolated bool
		depth    int
	}

	// Frame is one entry of the call stack, kept for diagnostics and for
	// collaborators discovering lexical context (e.g. comment-derived type
	// hints hanging off the AST node)
	Frame struct {
		Name string
		Loc  api.Location
		Node ast.Node
	}

	// frameStack is owned by a single execution path; a pooled computation
	// gets its own snapshot so paths never contend
	frameStack struct {
		frames []Frame
	}
)

// NewContext creates a root execution context for a top-level run
func NewContext(
	in *Interpreter, registry map[api.Name]api.Callable,
) *ExecutionContext {
	scopes := map[api.Scope]map[string]any{}
	for _, s := range api.Scopes() {
		scopes[s] = map[string]any{}
	}
	return &ExecutionContext{
		id:       uuid.NewString(),
		scopes:   scopes,
		frames:   &frameStack{},
		registry: registry,
		interp:   in,
	}
}

// ID returns the unique identifier of this context
func (c *ExecutionContext) ID() string {
	return c.id
}

// Get resolves a dotted key, falling through the parent chain on miss and
// producing the absent sentinel when no scope binds the name
func (c *ExecutionContext) Get(key string) (any, error) {
	scope, name, err := splitKey(key)
	if err != nil {
		return nil, err
	}
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if val, ok := ctx.scopes[scope][name]; ok {
			return val, nil
		}
	}
	return api.Absent, nil
}

// Set binds a dotted key in this context's own scopes; an unscoped key
// defaults to local
func (c *ExecutionContext) Set(key string, value any) error {
	scope, name, err := splitKey(key)
	if err != nil {
		return err
	}
	c.scopes[scope][name] = value
	return nil
}

// GetScope returns a snapshot of one named scope
func (c *ExecutionContext) GetScope(scope api.Scope) (map[string]any, error) {
	if !api.ValidScope(scope) {
		return nil, fmt.Errorf("%w: %s", api.ErrBadScope, scope)
	}
	return maps.Clone(c.scopes[scope]), nil
}

// SetScope replaces the contents of one named scope
func (c *ExecutionContext) SetScope(
	scope api.Scope, values map[string]any,
) error {
	if !api.ValidScope(scope) {
		return fmt.Errorf("%w: %s", api.ErrBadScope, scope)
	}
	c.scopes[scope] = maps.Clone(values)
	if c.scopes[scope] == nil {
		c.scopes[scope] = map[string]any{}
	}
	return nil
}

// Copy creates the child context for a nested call: fresh local scope,
// duplicated private scope, shared public and system scopes, preserved
// registry and interpreter handle. The pool-worker guard resets because it
// is scoped to the call that set it; nesting depth carries forward
func (c *ExecutionContext) Copy() *ExecutionContext {
	return &ExecutionContext{
		id:     uuid.NewString(),
		parent: c,
		scopes: map[api.Scope]map[string]any{
			api.ScopeLocal:   {},
			api.ScopePrivate: maps.Clone(c.scopes[api.ScopePrivate]),
			api.ScopePublic:  c.scopes[api.ScopePublic],
			api.ScopeSystem:  c.scopes[api.ScopeSystem],
		},
		frames:   c.frames,
		registry: c.registry,
		interp:   c.interp,
		isolated: c.isolated,
		depth:    c.depth,
	}
}

// ForCaller derives the context an invocation binds into. On the main path
// the callee reads through the defining chain per Copy; dynamic state (the
// frame stack and deferred nesting depth) always follows the calling path.
// When the caller runs on an isolated pooled path, the callee instead binds
// into a snapshot of that path, so concurrent paths never touch a shared
// scope map, and the worker guard carries so nested return sites keep
// running inline rather than stacking pool submissions
func (c *ExecutionContext) ForCaller(
	caller *ExecutionContext,
) *ExecutionContext {
	res := c.Copy()
	if caller == nil {
		return res
	}
	res.frames = caller.frames
	res.depth = caller.depth
	if caller.isolated {
		res.parent = nil
		res.scopes = caller.flattenScopes()
		res.isolated = true
		res.inWorker = caller.inWorker
	}
	return res
}

// ForPoolWorker derives the context a pooled computation runs in: a
// snapshot of every scope (scopes are never implicitly shared across
// execution paths), its own call-stack snapshot, the worker guard set, and
// nesting depth incremented. Discarding the derived context when the
// computation finishes is what clears the guard and decrements the depth;
// no global state is touched
func (c *ExecutionContext) ForPoolWorker() *ExecutionContext {
	res := *c
	res.id = uuid.NewString()
	res.parent = nil
	res.scopes = c.flattenScopes()
	res.frames = c.frames.snapshot()
	res.inWorker = true
	res.isolated = true
	res.depth = c.depth + 1
	return &res
}

// flattenScopes materializes the effective bindings of the parent chain
// into single-level scope maps, innermost bindings shadowing outer ones
func (c *ExecutionContext) flattenScopes() map[api.Scope]map[string]any {
	var chain []*ExecutionContext
	for ctx := c; ctx != nil; ctx = ctx.parent {
		chain = append(chain, ctx)
	}
	res := map[api.Scope]map[string]any{}
	for _, scope := range api.Scopes() {
		res[scope] = map[string]any{}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for scope, values := range chain[i].scopes {
			maps.Copy(res[scope], values)
		}
	}
	return res
}

// Export publishes one of this context's bindings into the parent scope of
// the same name, the only sanctioned parent mutation
func (c *ExecutionContext) Export(key string) error {
	if c.parent == nil {
		return nil
	}
	scope, name, err := splitKey(key)
	if err != nil {
		return err
	}
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if val, ok := ctx.scopes[scope][name]; ok {
			c.parent.scopes[scope][name] = val
			return nil
		}
	}
	return fmt.Errorf("%w: %s", api.ErrUndefinedReference, key)
}

// Resource resolves a registered host resource by name
func (c *ExecutionContext) Resource(name api.Name) (api.Callable, bool) {
	res, ok := c.registry[name]
	return res, ok
}

// InWorker reports whether this call scope runs inside pool-worker code
func (c *ExecutionContext) InWorker() bool {
	return c.inWorker
}

// Isolated reports whether this call scope runs on a path-isolated
// snapshot, where every scope map is private to the execution path
func (c *ExecutionContext) Isolated() bool {
	return c.isolated
}

// Depth reports the call-scoped eager deferred nesting depth
func (c *ExecutionContext) Depth() int {
	return c.depth
}

// PushFrame records a call frame; every exit path must pop it, so callers
// pair this with a deferred PopFrame
func (c *ExecutionContext) PushFrame(name string, loc api.Location, node ast.Node) {
	c.frames.frames = append(c.frames.frames, Frame{
		Name: name,
		Loc:  loc,
		Node: node,
	})
}

// PopFrame removes the most recent call frame
func (c *ExecutionContext) PopFrame() {
	if n := len(c.frames.frames); n > 0 {
		c.frames.frames = c.frames.frames[:n-1]
	}
}

// ExecutionStack returns a read-only snapshot of the call-frame stack
func (c *ExecutionContext) ExecutionStack() []Frame {
	res := make([]Frame, len(c.frames.frames))
	copy(res, c.frames.frames)
	return res
}

// CurrentNode returns the AST node back-reference of the innermost frame
func (c *ExecutionContext) CurrentNode() ast.Node {
	if n := len(c.frames.frames); n > 0 {
		return c.frames.frames[n-1].Node
	}
	return nil
}

func (f *frameStack) snapshot() *frameStack {
	frames := make([]Frame, len(f.frames))
	copy(frames, f.frames)
	return &frameStack{frames: frames}
}

func splitKey(key string) (api.Scope, string, error) {
	scope, name, ok := strings.Cut(key, ".")
	if !ok {
		return api.ScopeLocal, key, nil
	}
	if !api.ValidScope(api.Scope(scope)) {
		// dotted local name, not a scope prefix
		return api.ScopeLocal, key, nil
	}
	if name == "" {
		return "", "", fmt.Errorf("%w: %s", api.ErrBadScope, key)
	}
	return api.Scope(scope), name, nil
}
