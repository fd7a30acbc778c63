package api_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/dana/pkg/api"
)

func TestNewFault(t *testing.T) {
	loc := api.Location{File: "main.dana", Line: 3, Column: 7}
	err := api.NewFault(api.ErrNotCallable, loc, "main")

	var f *api.Fault
	assert.True(t, errors.As(err, &f))
	assert.ErrorIs(t, err, api.ErrNotCallable)
	assert.Equal(t, loc, f.Loc)
	assert.Equal(t, "main", f.Function)
	assert.Contains(t, err.Error(), "in main")
	assert.Contains(t, err.Error(), "main.dana:3:7")
}

func TestNewFaultInnermostWins(t *testing.T) {
	inner := api.Location{File: "lib.dana", Line: 10, Column: 1}
	outer := api.Location{File: "main.dana", Line: 2, Column: 5}

	err := api.NewFault(api.ErrInvalidOperands, inner, "helper")
	err = api.NewFault(err, outer, "main")
	err = api.NewFault(fmt.Errorf("calling helper: %w", err), outer, "main")

	loc, ok := api.FaultLocation(err)
	assert.True(t, ok)
	assert.Equal(t, inner, loc)
}

func TestNewFaultNil(t *testing.T) {
	assert.Nil(t, api.NewFault(nil, api.Location{}, ""))
}

func TestFaultLocationMissing(t *testing.T) {
	_, ok := api.FaultLocation(errors.New("plain"))
	assert.False(t, ok)
}

func TestAbsent(t *testing.T) {
	assert.True(t, api.IsAbsent(api.Absent))
	assert.False(t, api.IsAbsent(nil))
	assert.False(t, api.IsAbsent("absent"))
	assert.Equal(t, "<absent>", fmt.Sprintf("%s", api.Absent))
}

func TestScopes(t *testing.T) {
	scopes := api.Scopes()
	assert.Len(t, scopes, 4)
	for _, s := range scopes {
		assert.True(t, api.ValidScope(s))
	}
	assert.False(t, api.ValidScope("global"))
}
