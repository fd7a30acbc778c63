package api

type (
	// Callable is anything the engine can invoke: Dana functions, composed
	// pipelines, and registered host resources (LLM/agent implementations
	// are opaque Callables from this layer's point of view)
	Callable interface {
		Invoke(args []any, kwargs Args) (any, error)
	}

	// CallableFunc adapts a plain Go function to the Callable interface
	CallableFunc func(args []any, kwargs Args) (any, error)

	// TypeRegistry is the capability consumed from the type layer. The
	// engine routes struct-literal expressions to it; it validates field
	// types and constructs the typed record, or returns a validation fault
	TypeRegistry interface {
		Construct(name Name, fields Args) (any, error)
	}
)

func (f CallableFunc) Invoke(args []any, kwargs Args) (any, error) {
	return f(args, kwargs)
}
