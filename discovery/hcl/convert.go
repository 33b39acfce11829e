package hcl

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// argsToGo converts a service block's args value into the plain Go map
// carried by a descriptor.
func argsToGo(v cty.Value) (map[string]any, error) {
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("args must be an object, got %s", ty.FriendlyName())
	}

	out := make(map[string]any, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		key, elem := it.Element()
		gv, err := ctyToGo(elem)
		if err != nil {
			return nil, fmt.Errorf("args[%s]: %w", key.AsString(), err)
		}
		out[key.AsString()] = gv
	}
	return out, nil
}

// ctyToGo converts a cty value into the dynamic Go shape descriptors
// and handlers work with: string, int64, float64, bool, []any,
// map[string]any, or nil.
func ctyToGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			n, _ := bf.Int64()
			return n, nil
		}
		f, _ := bf.Float64()
		return f, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			gv, err := ctyToGo(elem)
			if err != nil {
				return nil, err
			}
			out[key.AsString()] = gv
		}
		return out, nil

	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			gv, err := ctyToGo(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
