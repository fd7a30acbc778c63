// Package ast defines the node kinds consumed by the Dana execution core.
// The lexer and parse-tree transform live outside this module; anything that
// can produce these nodes can drive the engine
package ast

import "github.com/kode4food/dana/pkg/api"

type (
	// Node is any element of a Dana program tree
	Node interface {
		At() api.Location
	}

	// Expr is a node that evaluates to a value
	Expr interface {
		Node
		expr()
	}

	// Stmt is a node executed for effect and/or its result value
	Stmt interface {
		Node
		stmt()
	}

	// Base carries the source location common to all nodes
	Base struct {
		Loc api.Location `json:"loc"`
	}
)

// Expression nodes

type (
	// Literal is a constant value appearing directly in source
	Literal struct {
		Base
		Value any `json:"value"`
	}

	// Identifier references a binding by (possibly dotted, scoped) name
	Identifier struct {
		Base
		Name string `json:"name"`
	}

	// Unary applies an operator to a single operand
	Unary struct {
		Base
		Op      Op   `json:"op"`
		Operand Expr `json:"operand"`
	}

	// Binary applies an operator to two operands
	Binary struct {
		Base
		Op    Op   `json:"op"`
		Left  Expr `json:"left"`
		Right Expr `json:"right"`
	}

	// Call invokes a callable with positional and keyword arguments
	Call struct {
		Base
		Target Expr            `json:"target"`
		Args   []Expr          `json:"args"`
		Kwargs map[string]Expr `json:"kwargs,omitempty"`
	}

	// List is an ordered literal sequence
	List struct {
		Base
		Items []Expr `json:"items"`
	}

	// Index accesses a container element by key or position
	Index struct {
		Base
		Target Expr `json:"target"`
		Key    Expr `json:"key"`
	}

	// Attribute accesses a named field of a value
	Attribute struct {
		Base
		Target Expr   `json:"target"`
		Name   string `json:"name"`
	}

	// StructLiteral constructs a typed record through the type registry
	// capability; the engine does not validate fields itself
	StructLiteral struct {
		Base
		Type   string          `json:"type"`
		Fields map[string]Expr `json:"fields"`
	}

	// Placeholder marks an argument position in a pipeline stage that is
	// substituted with the pipeline's current value at invocation
	Placeholder struct {
		Base
	}

	// Compose is a pipe chain; evaluating it builds a reusable callable.
	// Composition is left-associative, so a parsed `f | g | h` arrives as
	// one Compose with three stages in order
	Compose struct {
		Base
		Stages []Stage `json:"stages"`
	}

	// Stage is one segment of a pipe chain. A single member is applied
	// sequentially; multiple members fan the current value out to each
	// member independently, producing an ordered sequence of results
	Stage struct {
		Members []Expr `json:"members"`
	}
)

// Statement nodes

type (
	// Assign binds the result of an expression to a (possibly scoped) name
	Assign struct {
		Base
		Target string `json:"target"`
		Value  Expr   `json:"value"`
	}

	// ExprStmt evaluates an expression for its value and effects
	ExprStmt struct {
		Base
		Value Expr `json:"value"`
	}

	// If executes exactly one of Then or Else. Elif chains arrive as
	// right-nested If nodes in the Else slot
	If struct {
		Base
		Cond Expr   `json:"cond"`
		Then []Stmt `json:"then"`
		Else []Stmt `json:"else,omitempty"`
	}

	// While iterates Body as long as Cond holds. Else runs once when the
	// condition goes false; a break skips it
	While struct {
		Base
		Cond Expr   `json:"cond"`
		Body []Stmt `json:"body"`
		Else []Stmt `json:"else,omitempty"`
	}

	// ForIn iterates Body once per element of Iterable with Var bound.
	// Else runs once after the final element; a break skips it
	ForIn struct {
		Base
		Var      string `json:"var"`
		Iterable Expr   `json:"iterable"`
		Body     []Stmt `json:"body"`
		Else     []Stmt `json:"else,omitempty"`
	}

	// Try runs Body, dispatching non-signal faults to Excepts and always
	// running Finally on the way out
	Try struct {
		Base
		Body    []Stmt   `json:"body"`
		Excepts []Except `json:"excepts,omitempty"`
		Finally []Stmt   `json:"finally,omitempty"`
	}

	// Except is one handler clause. Types is declared but not yet enforced;
	// the first clause currently handles every fault
	Except struct {
		Types []string `json:"types,omitempty"`
		Var   string   `json:"var,omitempty"`
		Body  []Stmt   `json:"body"`
	}

	// Return terminates the enclosing function with a value; the result may
	// be wrapped as an eager deferred per the creation policy
	Return struct {
		Base
		Value Expr `json:"value,omitempty"`
	}

	// Deliver terminates the enclosing function with a fully resolved value
	Deliver struct {
		Base
		Value Expr `json:"value,omitempty"`
	}

	// Break terminates the nearest enclosing loop
	Break struct {
		Base
	}

	// Continue advances the nearest enclosing loop to its next iteration
	Continue struct {
		Base
	}

	// Raise raises a user fault carrying the evaluated value's text
	Raise struct {
		Base
		Value Expr `json:"value,omitempty"`
	}

	// FuncDef defines a named function with an imperative body
	FuncDef struct {
		Base
		Name       string  `json:"name"`
		Params     []Param `json:"params,omitempty"`
		ReturnType string  `json:"return_type,omitempty"`
		Body       []Stmt  `json:"body"`
	}

	// DeclFuncDef defines a declarative function whose body is a single
	// composition expression
	DeclFuncDef struct {
		Base
		Name       string   `json:"name"`
		Params     []Param  `json:"params,omitempty"`
		ReturnType string   `json:"return_type,omitempty"`
		Pipeline   *Compose `json:"pipeline"`
	}

	// Param declares one function parameter. Default carries the default
	// value as JSON source text, decoded at bind time
	Param struct {
		Name    string `json:"name"`
		Type    string `json:"type,omitempty"`
		Default string `json:"default,omitempty"`
	}
)

func (b Base) At() api.Location { return b.Loc }

func (*Literal) expr()       {}
func (*Identifier) expr()    {}
func (*Unary) expr()         {}
func (*Binary) expr()        {}
func (*Call) expr()          {}
func (*List) expr()          {}
func (*Index) expr()         {}
func (*Attribute) expr()     {}
func (*StructLiteral) expr() {}
func (*Placeholder) expr()   {}
func (*Compose) expr()       {}

func (*Assign) stmt()      {}
func (*ExprStmt) stmt()    {}
func (*If) stmt()          {}
func (*While) stmt()       {}
func (*ForIn) stmt()       {}
func (*Try) stmt()         {}
func (*Return) stmt()      {}
func (*Deliver) stmt()     {}
func (*Break) stmt()       {}
func (*Continue) stmt()    {}
func (*Raise) stmt()       {}
func (*FuncDef) stmt()     {}
func (*DeclFuncDef) stmt() {}
