package value

import (
	"fmt"
	"math"

	"github.com/shy-lang/shy/shyerr"
)

// ToJSON converts v into a generic JSON-like tree (nil, bool, string, int64,
// float64, []any, map[string]any) suitable for encoding/json.Marshal. Integer
// (int64) and Rational (float64) both become a JSON number; FunctionRef has no
// JSON representation and is skipped, which is why ToJSON reports whether the
// caller should keep the result (false only for a FunctionRef, whose entries
// are dropped from a List or Object).
func ToJSON(v Value) (tree interface{}, keep bool) {
	switch v.Kind() {
	case KindNull:
		return nil, true

	case KindInteger:
		return v.i, true

	case KindRational:
		return v.r, true

	case KindString:
		return v.s, true

	case KindBool:
		return v.b, true

	case KindList:
		arr := make([]interface{}, 0, len(v.list))
		for _, item := range v.list {
			if j, ok := ToJSON(item); ok {
				arr = append(arr, j)
			}
		}
		return arr, true

	case KindObject:
		obj := make(map[string]interface{}, len(v.obj.Keys()))
		for _, k := range v.obj.Keys() {
			iv, ok := v.obj.Get(k)
			if !ok {
				continue
			}
			if j, ok := ToJSON(iv); ok {
				obj[k] = j
			}
		}
		return obj, true

	case KindFunctionRef:
		return nil, false

	case KindError:
		return map[string]interface{}{
			"error":   v.errKind.String(),
			"message": v.errMsg,
		}, true

	default:
		return nil, true
	}
}

// FromJSON converts a generic JSON-like tree (as produced by encoding/json.Unmarshal
// into interface{}) into a Value. JSON numbers that are whole become Integer;
// all others become Rational. A map with exactly the keys "error" and "message"
// round-trips back to an Error value; any other map becomes an Object backed by
// a MapAssociation.
func FromJSON(tree interface{}) (Value, error) {
	switch t := tree.(type) {
	case nil:
		return Null(), nil

	case bool:
		return Bool(t), nil

	case string:
		return Str(t), nil

	case int:
		return Int(int64(t)), nil

	case int64:
		return Int(t), nil

	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) && math.Abs(t) < 1<<53 {
			return Int(int64(t)), nil
		}
		return Rational(t), nil

	case []interface{}:
		items := make([]Value, len(t))
		for i, e := range t {
			v, err := FromJSON(e)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return List(items), nil

	case map[string]interface{}:
		if errKind, msg, ok := asErrorShape(t); ok {
			return Err(shyerr.ParseKind(errKind), msg), nil
		}

		assoc := NewMapAssociation()
		for _, k := range sortedKeys(t) {
			v, err := FromJSON(t[k])
			if err != nil {
				return Value{}, err
			}
			assoc.Set(k, v)
		}
		return Obj(assoc), nil

	default:
		return Value{}, fmt.Errorf("cannot convert %T to a Shy value", tree)
	}
}

func asErrorShape(m map[string]interface{}) (kind string, message string, ok bool) {
	if len(m) != 2 {
		return "", "", false
	}
	k, hasKind := m["error"].(string)
	msg, hasMsg := m["message"].(string)
	if !hasKind || !hasMsg {
		return "", "", false
	}
	return k, msg, true
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// insertion order isn't recoverable from a plain map; sort for determinism.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
