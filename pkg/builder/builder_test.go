package builder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/dana/pkg/ast"
	"github.com/kode4food/dana/pkg/builder"
)

func TestCondNesting(t *testing.T) {
	cond := builder.If(builder.Ref("a"),
		builder.Assign("hit", builder.Lit("a")),
	).Elif(builder.Ref("b"),
		builder.Assign("hit", builder.Lit("b")),
	).Elif(builder.Ref("c"),
		builder.Assign("hit", builder.Lit("c")),
	).Else(
		builder.Assign("hit", builder.Lit("none")),
	).Build()

	// elif branches chain right-nested through the else slots
	require.Len(t, cond.Else, 1)
	second, ok := cond.Else[0].(*ast.If)
	require.True(t, ok)
	assert.Equal(t, builder.Ref("b"), second.Cond)

	require.Len(t, second.Else, 1)
	third, ok := second.Else[0].(*ast.If)
	require.True(t, ok)
	assert.Equal(t, builder.Ref("c"), third.Cond)
	require.Len(t, third.Else, 1)
}

func TestCondBuilderImmutable(t *testing.T) {
	base := builder.If(builder.Ref("a"))
	one := base.Elif(builder.Ref("b"))
	two := base.Elif(builder.Ref("c"))

	assert.Empty(t, base.Build().Else)
	first, ok := one.Build().Else[0].(*ast.If)
	require.True(t, ok)
	assert.Equal(t, builder.Ref("b"), first.Cond)
	first, ok = two.Build().Else[0].(*ast.If)
	require.True(t, ok)
	assert.Equal(t, builder.Ref("c"), first.Cond)
}

func TestPipeStages(t *testing.T) {
	pipe := builder.Pipe(
		builder.Ref("double"),
		builder.List(builder.Ref("f"), builder.Ref("g")),
		builder.Call("join", builder.Placeholder()),
	)

	require.Len(t, pipe.Stages, 3)
	assert.Len(t, pipe.Stages[0].Members, 1)
	assert.Len(t, pipe.Stages[1].Members, 2, "a list member fans out")
	assert.Len(t, pipe.Stages[2].Members, 1)
}

func TestFuncBuilder(t *testing.T) {
	base := builder.NewFunc("f").WithParam("a")
	fn := base.
		WithDefault("b", "10").
		WithReturnType("int").
		WithBody(builder.Return(builder.Ref("a"))).
		Build()

	assert.Equal(t, "f", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, ast.Param{Name: "a"}, fn.Params[0])
	assert.Equal(t, ast.Param{Name: "b", Default: "10"}, fn.Params[1])
	assert.Equal(t, "int", fn.ReturnType)
	assert.Len(t, fn.Body, 1)

	assert.Len(t, base.Build().Params, 1, "builder steps never mutate")
}

func TestFuncDeclare(t *testing.T) {
	decl := builder.NewFunc("p").
		WithParam("x").
		Declare(builder.Pipe(builder.Ref("f"), builder.Ref("g")))

	assert.Equal(t, "p", decl.Name)
	require.NotNil(t, decl.Pipeline)
	assert.Len(t, decl.Pipeline.Stages, 2)
}

func TestTryBuilder(t *testing.T) {
	try := builder.NewTry(
		builder.Raise(builder.Lit("boom")),
	).WithExceptTypes([]string{"ValueError"}, "err",
		builder.Assign("seen", builder.Ref("err")),
	).WithFinally(
		builder.Expr(builder.Call("cleanup")),
	).Build()

	assert.Len(t, try.Body, 1)
	require.Len(t, try.Excepts, 1)
	assert.Equal(t, []string{"ValueError"}, try.Excepts[0].Types)
	assert.Equal(t, "err", try.Excepts[0].Var)
	assert.Len(t, try.Finally, 1)
}
