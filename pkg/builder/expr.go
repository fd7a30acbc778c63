// Package builder provides fluent construction of Dana program trees for
// embedders and tests; the parser front end produces the same nodes from
// source text
package builder

import "github.com/kode4food/dana/pkg/ast"

// Lit wraps a constant value as a literal expression
func Lit(value any) *ast.Literal {
	return &ast.Literal{Value: value}
}

// Ref references a binding by (possibly scoped) name
func Ref(name string) *ast.Identifier {
	return &ast.Identifier{Name: name}
}

// Unary applies a unary operator
func Unary(op ast.Op, operand ast.Expr) *ast.Unary {
	return &ast.Unary{Op: op, Operand: operand}
}

// Bin applies a binary operator
func Bin(op ast.Op, left, right ast.Expr) *ast.Binary {
	return &ast.Binary{Op: op, Left: left, Right: right}
}

// Call invokes a named binding with positional arguments
func Call(name string, args ...ast.Expr) *ast.Call {
	return &ast.Call{Target: Ref(name), Args: args}
}

// CallExpr invokes an arbitrary target expression
func CallExpr(target ast.Expr, args ...ast.Expr) *ast.Call {
	return &ast.Call{Target: target, Args: args}
}

// List builds an ordered literal sequence
func List(items ...ast.Expr) *ast.List {
	return &ast.List{Items: items}
}

// Index accesses a container element
func Index(target, key ast.Expr) *ast.Index {
	return &ast.Index{Target: target, Key: key}
}

// Attr accesses a named field
func Attr(target ast.Expr, name string) *ast.Attribute {
	return &ast.Attribute{Target: target, Name: name}
}

// Struct builds a struct literal routed to the type registry
func Struct(typeName string, fields map[string]ast.Expr) *ast.StructLiteral {
	return &ast.StructLiteral{Type: typeName, Fields: fields}
}

// Placeholder marks the substitution position in a pipeline stage
func Placeholder() *ast.Placeholder {
	return &ast.Placeholder{}
}

// Pipe composes expressions left to right into a pipeline expression; a
// List member becomes a fan-out stage
func Pipe(stages ...ast.Expr) *ast.Compose {
	res := make([]ast.Stage, len(stages))
	for i, s := range stages {
		if list, ok := s.(*ast.List); ok {
			res[i] = ast.Stage{Members: list.Items}
			continue
		}
		res[i] = ast.Stage{Members: []ast.Expr{s}}
	}
	return &ast.Compose{Stages: res}
}
