package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/dana/pkg/ast"
	"github.com/kode4food/dana/pkg/builder"
)

func TestSimpleExpressions(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expr
		want bool
	}{
		{"literal", builder.Lit(42), true},
		{"identifier", builder.Ref("x"), true},
		{"negated literal", builder.Unary(ast.OpNeg, builder.Lit(1)), true},
		{"arithmetic over refs",
			builder.Bin(ast.OpAdd, builder.Ref("a"), builder.Ref("b")), true},
		{"comparison over literals",
			builder.Bin(ast.OpLt, builder.Lit(1), builder.Lit(2)), true},
		{"nested arithmetic",
			builder.Bin(ast.OpMul,
				builder.Bin(ast.OpAdd, builder.Ref("a"), builder.Lit(1)),
				builder.Lit(2)),
			true},
		{"call", builder.Call("f"), false},
		{"arithmetic over call",
			builder.Bin(ast.OpAdd, builder.Call("f"), builder.Lit(1)), false},
		{"logical and",
			builder.Bin(ast.OpAnd, builder.Lit(true), builder.Lit(false)),
			false},
		{"list", builder.List(builder.Lit(1)), false},
		{"index", builder.Index(builder.Ref("xs"), builder.Lit(0)), false},
		{"pipeline", builder.Pipe(builder.Ref("f"), builder.Ref("g")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ast.Simple(tt.expr))
		})
	}
}

func TestOpClasses(t *testing.T) {
	assert.True(t, ast.OpAdd.Arithmetic())
	assert.True(t, ast.OpMod.Arithmetic())
	assert.False(t, ast.OpEq.Arithmetic())

	assert.True(t, ast.OpEq.Comparison())
	assert.True(t, ast.OpGe.Comparison())
	assert.False(t, ast.OpSub.Comparison())

	assert.True(t, ast.OpAnd.Logical())
	assert.True(t, ast.OpOr.Logical())
	assert.False(t, ast.OpPipe.Logical())
}
