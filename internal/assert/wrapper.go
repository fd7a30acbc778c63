package assert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/dana/pkg/api"
)

// Wrapper wraps testify assertions with Dana-specific helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
	Require *require.Assertions
}

// New creates a new test assertion wrapper with both assert and require
// from testify plus Dana-specific helpers
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
		Require:    require.New(t),
	}
}

// Absent asserts that a value is the absent sentinel
func (w *Wrapper) Absent(v any) {
	w.Helper()
	w.True(api.IsAbsent(v), "expected absent sentinel, got %v", v)
}

// NotAbsent asserts that a value is not the absent sentinel
func (w *Wrapper) NotAbsent(v any) {
	w.Helper()
	w.False(api.IsAbsent(v), "expected concrete value")
}

// Fault asserts that err is a non-signal fault wrapping the sentinel
func (w *Wrapper) Fault(err, sentinel error) {
	w.Helper()
	w.Require.Error(err)
	w.ErrorIs(err, sentinel)
}

// FaultContains asserts that err is a fault whose text mentions substr
func (w *Wrapper) FaultContains(err error, substr string) {
	w.Helper()
	w.Require.Error(err)
	w.Contains(err.Error(), substr)
}

// FaultAt asserts that err carries a location with the provided line
func (w *Wrapper) FaultAt(err error, line int) {
	w.Helper()
	loc, ok := api.FaultLocation(err)
	w.Require.True(ok, "fault should carry a location")
	w.Equal(line, loc.Line)
}
