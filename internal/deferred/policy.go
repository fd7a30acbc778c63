package deferred

import "github.com/kode4food/dana/pkg/ast"

// Policy decides, per return site, whether a result computation executes
// inline or is submitted to the pool. Wrapping every return unconditionally
// lets N nested call levels put up to 2^N computations in flight against a
// fixed-size pool, so creation is gated three ways before defaulting to
// submission. This trades some concurrency for deadlock-freedom at the
// configured pool size; it is a heuristic, not a universal proof
type Policy struct {
	threshold int
}

// NewPolicy creates a creation policy with the provided nesting-depth
// threshold
func NewPolicy(threshold int) *Policy {
	return &Policy{threshold: threshold}
}

// Threshold reports the configured nesting-depth threshold
func (p *Policy) Threshold() int {
	return p.threshold
}

// Inline reports whether the computation for expr must run on the calling
// path instead of the pool. First match wins:
//
//  1. already running on a pooled path (the guard follows invocations made
//     from worker code, so nested return sites trip it too)
//  2. expr is statically simple (see ast.Simple)
//  3. call-scoped nesting depth has reached the threshold
//
// Otherwise the computation is submitted. The guard is an optimization on
// top of the claim rule: a forcer that finds its task still queued claims
// and runs it inline, so forcing stays deadlock-free at any pool size even
// where the guard does not trip
func (p *Policy) Inline(inWorker bool, depth int, expr ast.Expr) bool {
	if inWorker {
		return true
	}
	if expr == nil || ast.Simple(expr) {
		return true
	}
	return depth >= p.threshold
}
