package builder

import "github.com/kode4food/dana/pkg/ast"

type (
	// Func builds a named function definition
	Func struct {
		name    string
		params  []ast.Param
		retType string
		body    []ast.Stmt
	}

	// Try builds a try/except/finally statement
	Try struct {
		body    []ast.Stmt
		excepts []ast.Except
		finally []ast.Stmt
	}
)

// NewFunc starts a function builder with the provided name
func NewFunc(name string) *Func {
	return &Func{name: name}
}

// WithParam adds a parameter
func (f *Func) WithParam(name string) *Func {
	return f.withParam(ast.Param{Name: name})
}

// WithDefault adds a parameter whose default value is JSON source text
func (f *Func) WithDefault(name, defaultJSON string) *Func {
	return f.withParam(ast.Param{Name: name, Default: defaultJSON})
}

// WithReturnType declares the function's return type
func (f *Func) WithReturnType(name string) *Func {
	res := *f
	res.retType = name
	return &res
}

// WithBody sets the function body
func (f *Func) WithBody(body ...ast.Stmt) *Func {
	res := *f
	res.body = body
	return &res
}

// Build produces the function definition statement
func (f *Func) Build() *ast.FuncDef {
	return &ast.FuncDef{
		Name:       f.name,
		Params:     f.params,
		ReturnType: f.retType,
		Body:       f.body,
	}
}

// Declare produces a declarative function whose body is a composition
func (f *Func) Declare(pipeline *ast.Compose) *ast.DeclFuncDef {
	return &ast.DeclFuncDef{
		Name:       f.name,
		Params:     f.params,
		ReturnType: f.retType,
		Pipeline:   pipeline,
	}
}

func (f *Func) withParam(p ast.Param) *Func {
	res := *f
	res.params = make([]ast.Param, len(f.params)+1)
	copy(res.params, f.params)
	res.params[len(f.params)] = p
	return &res
}

// NewTry starts a try builder around a protected body
func NewTry(body ...ast.Stmt) *Try {
	return &Try{body: body}
}

// WithExcept appends a handler clause
func (t *Try) WithExcept(errVar string, body ...ast.Stmt) *Try {
	res := *t
	res.excepts = make([]ast.Except, len(t.excepts)+1)
	copy(res.excepts, t.excepts)
	res.excepts[len(t.excepts)] = ast.Except{Var: errVar, Body: body}
	return &res
}

// WithExceptTypes appends a handler clause with declared fault types
func (t *Try) WithExceptTypes(
	types []string, errVar string, body ...ast.Stmt,
) *Try {
	res := *t
	res.excepts = make([]ast.Except, len(t.excepts)+1)
	copy(res.excepts, t.excepts)
	res.excepts[len(t.excepts)] = ast.Except{
		Types: types, Var: errVar, Body: body,
	}
	return &res
}

// WithFinally sets the finally block
func (t *Try) WithFinally(body ...ast.Stmt) *Try {
	res := *t
	res.finally = body
	return &res
}

// Build produces the try statement
func (t *Try) Build() *ast.Try {
	return &ast.Try{
		Body:    t.body,
		Excepts: t.excepts,
		Finally: t.finally,
	}
}
