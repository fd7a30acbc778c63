package builder

import "github.com/kode4food/dana/pkg/ast"

// Assign binds an expression result to a (possibly scoped) name
func Assign(target string, value ast.Expr) *ast.Assign {
	return &ast.Assign{Target: target, Value: value}
}

// Expr evaluates an expression as a statement
func Expr(value ast.Expr) *ast.ExprStmt {
	return &ast.ExprStmt{Value: value}
}

// Return terminates the enclosing function, possibly deferring the result
func Return(value ast.Expr) *ast.Return {
	return &ast.Return{Value: value}
}

// Deliver terminates the enclosing function with a fully resolved result
func Deliver(value ast.Expr) *ast.Deliver {
	return &ast.Deliver{Value: value}
}

// Break terminates the nearest enclosing loop
func Break() *ast.Break {
	return &ast.Break{}
}

// Continue advances the nearest enclosing loop
func Continue() *ast.Continue {
	return &ast.Continue{}
}

// Raise raises a user fault
func Raise(value ast.Expr) *ast.Raise {
	return &ast.Raise{Value: value}
}

// While loops a body over a condition
func While(cond ast.Expr, body ...ast.Stmt) *ast.While {
	return &ast.While{Cond: cond, Body: body}
}

// WhileElse loops a body over a condition, running the else statements
// once when the condition goes false. A break skips them
func WhileElse(cond ast.Expr, body, els []ast.Stmt) *ast.While {
	return &ast.While{Cond: cond, Body: body, Else: els}
}

// ForIn iterates a body over an iterable
func ForIn(name string, iterable ast.Expr, body ...ast.Stmt) *ast.ForIn {
	return &ast.ForIn{Var: name, Iterable: iterable, Body: body}
}

// ForInElse iterates a body over an iterable, running the else statements
// once the final element has been visited. A break skips them
func ForInElse(
	name string, iterable ast.Expr, body, els []ast.Stmt,
) *ast.ForIn {
	return &ast.ForIn{Var: name, Iterable: iterable, Body: body, Else: els}
}
