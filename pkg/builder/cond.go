package builder

import "github.com/kode4food/dana/pkg/ast"

// Cond builds conditional statements, chaining elif branches the way the
// engine consumes them: right-nested in the else slot, so the first true
// condition wins and later conditions are never evaluated
type Cond struct {
	cond ast.Expr
	then []ast.Stmt
	elif []*Cond
	els  []ast.Stmt
}

// If starts a conditional builder
func If(cond ast.Expr, then ...ast.Stmt) *Cond {
	return &Cond{cond: cond, then: then}
}

// Elif appends an elif branch
func (c *Cond) Elif(cond ast.Expr, then ...ast.Stmt) *Cond {
	res := *c
	res.elif = make([]*Cond, len(c.elif)+1)
	copy(res.elif, c.elif)
	res.elif[len(c.elif)] = &Cond{cond: cond, then: then}
	return &res
}

// Else sets the terminal branch
func (c *Cond) Else(body ...ast.Stmt) *Cond {
	res := *c
	res.els = body
	return &res
}

// Build produces the nested conditional node
func (c *Cond) Build() *ast.If {
	tail := c.els
	for i := len(c.elif) - 1; i >= 0; i-- {
		branch := c.elif[i]
		tail = []ast.Stmt{&ast.If{
			Cond: branch.cond,
			Then: branch.then,
			Else: tail,
		}}
	}
	return &ast.If{Cond: c.cond, Then: c.then, Else: tail}
}
