package ast

// Simple reports whether an expression is cheap enough that deferring it to
// the worker pool cannot pay for itself: a literal, a bare reference, a unary
// over a simple operand, or binary arithmetic/comparison over two simple
// operands. A call expression is never simple
func Simple(e Expr) bool {
	switch n := e.(type) {
	case *Literal, *Identifier:
		return true
	case *Unary:
		return Simple(n.Operand)
	case *Binary:
		if !n.Op.Arithmetic() && !n.Op.Comparison() {
			return false
		}
		return Simple(n.Left) && Simple(n.Right)
	default:
		return false
	}
}
