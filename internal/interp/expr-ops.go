package interp

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/kode4food/dana/pkg/api"
	"github.com/kode4food/dana/pkg/ast"
)

// Operator semantics over resolved values. Deferred operands are already
// forced by the evaluator before arriving here, which is what makes the
// proxy transparent for arithmetic, comparison, truthiness, length,
// indexing, and attribute access

func applyUnary(op ast.Op, operand any) (any, error) {
	switch op {
	case ast.OpNot:
		return !truthy(operand), nil
	case ast.OpNeg:
		if api.IsAbsent(operand) {
			return nil, api.ErrUndefinedReference
		}
		if i, ok := asInt(operand); ok {
			return -i, nil
		}
		if f, ok := asFloat(operand); ok {
			return -f, nil
		}
		return nil, fmt.Errorf("%w: -%T", api.ErrInvalidOperands, operand)
	default:
		return nil, fmt.Errorf(
			"%w: unary %s", api.ErrInvalidOperands, op,
		)
	}
}

func applyBinary(op ast.Op, left, right any) (any, error) {
	switch {
	case op == ast.OpEq:
		return valueEqual(left, right), nil
	case op == ast.OpNe:
		return !valueEqual(left, right), nil
	case api.IsAbsent(left) || api.IsAbsent(right):
		return nil, api.ErrUndefinedReference
	case op.Arithmetic():
		return applyArithmetic(op, left, right)
	case op.Comparison():
		return applyOrdering(op, left, right)
	default:
		return nil, fmt.Errorf("%w: %s", api.ErrInvalidOperands, op)
	}
}

func applyArithmetic(op ast.Op, left, right any) (any, error) {
	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok && op == ast.OpAdd {
			return ls + rs, nil
		}
	}

	if li, ok := asInt(left); ok {
		if ri, ok := asInt(right); ok {
			return intArithmetic(op, li, ri)
		}
	}

	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, fmt.Errorf(
			"%w: %T %s %T", api.ErrInvalidOperands, left, op, right,
		)
	}
	return floatArithmetic(op, lf, rf)
}

func intArithmetic(op ast.Op, l, r int64) (any, error) {
	switch op {
	case ast.OpAdd:
		return l + r, nil
	case ast.OpSub:
		return l - r, nil
	case ast.OpMul:
		return l * r, nil
	case ast.OpDiv:
		if r == 0 {
			return nil, fmt.Errorf(
				"%w: division by zero", api.ErrInvalidOperands,
			)
		}
		if l%r == 0 {
			return l / r, nil
		}
		return float64(l) / float64(r), nil
	case ast.OpMod:
		if r == 0 {
			return nil, fmt.Errorf(
				"%w: modulo by zero", api.ErrInvalidOperands,
			)
		}
		return l % r, nil
	}
	return nil, fmt.Errorf("%w: %s", api.ErrInvalidOperands, op)
}

func floatArithmetic(op ast.Op, l, r float64) (any, error) {
	switch op {
	case ast.OpAdd:
		return l + r, nil
	case ast.OpSub:
		return l - r, nil
	case ast.OpMul:
		return l * r, nil
	case ast.OpDiv:
		if r == 0 {
			return nil, fmt.Errorf(
				"%w: division by zero", api.ErrInvalidOperands,
			)
		}
		return l / r, nil
	case ast.OpMod:
		return nil, fmt.Errorf(
			"%w: modulo of floats", api.ErrInvalidOperands,
		)
	}
	return nil, fmt.Errorf("%w: %s", api.ErrInvalidOperands, op)
}

func applyOrdering(op ast.Op, left, right any) (any, error) {
	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok {
			return orderingResult(op, strings.Compare(ls, rs)), nil
		}
	}

	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, fmt.Errorf(
			"%w: %T %s %T", api.ErrInvalidOperands, left, op, right,
		)
	}
	switch {
	case lf < rf:
		return orderingResult(op, -1), nil
	case lf > rf:
		return orderingResult(op, 1), nil
	default:
		return orderingResult(op, 0), nil
	}
}

func orderingResult(op ast.Op, cmp int) bool {
	switch op {
	case ast.OpLt:
		return cmp < 0
	case ast.OpLe:
		return cmp <= 0
	case ast.OpGt:
		return cmp > 0
	case ast.OpGe:
		return cmp >= 0
	}
	return false
}

// truthy applies Dana truthiness: nil, absent, false, zero, empty string,
// and empty containers are false; everything else is true
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	case api.Args:
		return len(val) > 0
	}
	if api.IsAbsent(v) {
		return false
	}
	if i, ok := asInt(v); ok {
		return i != 0
	}
	if f, ok := asFloat(v); ok {
		return f != 0
	}
	return true
}

func valueEqual(left, right any) bool {
	if api.IsAbsent(left) || api.IsAbsent(right) {
		return api.IsAbsent(left) && api.IsAbsent(right)
	}
	if lf, ok := asFloat(left); ok {
		if rf, ok := asFloat(right); ok {
			return lf == rf
		}
		return false
	}
	return reflect.DeepEqual(left, right)
}

func indexValue(target, key any) (any, error) {
	if api.IsAbsent(target) {
		return nil, api.ErrUndefinedReference
	}
	switch val := target.(type) {
	case []any:
		i, ok := asInt(key)
		if !ok {
			return nil, fmt.Errorf(
				"%w: index %T", api.ErrInvalidOperands, key,
			)
		}
		if i < 0 || int(i) >= len(val) {
			return nil, fmt.Errorf(
				"%w: index %d out of range", api.ErrNotIndexable, i,
			)
		}
		return val[i], nil
	case string:
		i, ok := asInt(key)
		if !ok {
			return nil, fmt.Errorf(
				"%w: index %T", api.ErrInvalidOperands, key,
			)
		}
		runes := []rune(val)
		if i < 0 || int(i) >= len(runes) {
			return nil, fmt.Errorf(
				"%w: index %d out of range", api.ErrNotIndexable, i,
			)
		}
		return string(runes[i]), nil
	case map[string]any:
		k, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf(
				"%w: key %T", api.ErrInvalidOperands, key,
			)
		}
		if v, ok := val[k]; ok {
			return v, nil
		}
		return api.Absent, nil
	case api.Args:
		k, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf(
				"%w: key %T", api.ErrInvalidOperands, key,
			)
		}
		if v, ok := val[api.Name(k)]; ok {
			return v, nil
		}
		return api.Absent, nil
	default:
		return nil, fmt.Errorf("%w: %T", api.ErrNotIndexable, target)
	}
}

// attributeValue reads a named field from maps or, via reflection, from
// typed records produced by the type registry
func attributeValue(target any, name string) (any, error) {
	if api.IsAbsent(target) {
		return nil, api.ErrUndefinedReference
	}
	switch val := target.(type) {
	case map[string]any:
		if v, ok := val[name]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("%w: %s", api.ErrNoAttribute, name)
	case api.Args:
		if v, ok := val[api.Name(name)]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("%w: %s", api.ErrNoAttribute, name)
	}

	rv := reflect.ValueOf(target)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		field := rv.FieldByName(name)
		if field.IsValid() && field.CanInterface() {
			return field.Interface(), nil
		}
	}
	return nil, fmt.Errorf(
		"%w: %s on %T", api.ErrNoAttribute, name, target,
	)
}

func lengthOf(v any) (int64, error) {
	switch val := v.(type) {
	case string:
		return int64(len([]rune(val))), nil
	case []any:
		return int64(len(val)), nil
	case map[string]any:
		return int64(len(val)), nil
	case api.Args:
		return int64(len(val)), nil
	default:
		return 0, fmt.Errorf("%w: len of %T", api.ErrInvalidOperands, v)
	}
}

// asInt normalizes every fixed-width integer kind a host callable might
// return. uint64 values above the int64 range are left to the float path
func asInt(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint:
		if uint64(val) <= math.MaxInt64 {
			return int64(val), true
		}
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint64:
		if val <= math.MaxInt64 {
			return int64(val), true
		}
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	}
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	return 0, false
}
