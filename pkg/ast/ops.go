package ast

// Op names a unary or binary operator
type Op string

const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
	OpMod Op = "%"

	OpEq Op = "=="
	OpNe Op = "!="
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="

	OpAnd Op = "and"
	OpOr  Op = "or"
	OpNot Op = "not"
	OpNeg Op = "neg"

	// OpPipe only appears when a parser emits a raw binary pipe instead of
	// a Compose node; the engine normalizes it during evaluation
	OpPipe Op = "|"
)

// Arithmetic reports whether the operator is one of the arithmetic forms
func (o Op) Arithmetic() bool {
	switch o {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return true
	}
	return false
}

// Comparison reports whether the operator is one of the comparison forms
func (o Op) Comparison() bool {
	switch o {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// Logical reports whether the operator short-circuits
func (o Op) Logical() bool {
	return o == OpAnd || o == OpOr
}
