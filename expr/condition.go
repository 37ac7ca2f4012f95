package expr

import (
	"fmt"
	"strconv"
)

// Evaluate compares a dotted-path lookup against a literal. Equality is
// loose (numeric when both sides coerce, stringly otherwise); ordering
// operators coerce both sides to numbers and yield false when either
// side is not numeric. Unknown operators yield false so an authoring
// mistake degrades the branch instead of aborting the run.
func Evaluate(context map[string]any, left string, operator string, right any) bool {
	leftVal, _ := Lookup(context, left)
	switch operator {
	case "==":
		return looseEqual(leftVal, right)
	case "!=":
		return !looseEqual(leftVal, right)
	case ">":
		l, lok := toNumber(leftVal)
		r, rok := toNumber(right)
		return lok && rok && l > r
	case "<":
		l, lok := toNumber(leftVal)
		r, rok := toNumber(right)
		return lok && rok && l < r
	default:
		return false
	}
}

func looseEqual(left any, right any) bool {
	l, lok := toNumber(left)
	r, rok := toNumber(right)
	if lok && rok {
		return l == r
	}
	return fmt.Sprintf("%v", left) == fmt.Sprintf("%v", right)
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
