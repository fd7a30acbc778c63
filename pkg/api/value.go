package api

type (
	// Scope names one of the four namespaces composing an execution context
	Scope string

	absent struct{}
)

const (
	ScopeLocal   Scope = "local"
	ScopePrivate Scope = "private"
	ScopePublic  Scope = "public"
	ScopeSystem  Scope = "system"
)

// LastValueKey is the well-known system-scope key holding the most recent
// non-absent statement result of the executing function body
const LastValueKey = "system.__last_value__"

// Absent is the sentinel produced by a lookup miss. It is a value, not a
// fault; consuming it in an operator, call, index, or iteration faults with
// ErrUndefinedReference
var Absent = absent{}

func (absent) String() string {
	return "<absent>"
}

// IsAbsent reports whether a value is the absent sentinel
func IsAbsent(v any) bool {
	_, ok := v.(absent)
	return ok
}

// Scopes returns the four context scope names in canonical order
func Scopes() []Scope {
	return []Scope{ScopeLocal, ScopePrivate, ScopePublic, ScopeSystem}
}

// ValidScope reports whether name is one of the four context scopes
func ValidScope(name Scope) bool {
	switch name {
	case ScopeLocal, ScopePrivate, ScopePublic, ScopeSystem:
		return true
	}
	return false
}
