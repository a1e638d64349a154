package query

import "fmt"

// compare orders a against b. Numbers of any width compare numerically,
// strings lexically; booleans support equality only.
func compare(a, b interface{}) (int, error) {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, fmt.Errorf("cannot compare number with %T", b)
		}
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		}
		return 0, nil
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare string with %T", b)
		}
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		}
		return 0, nil
	case bool:
		bv, ok := b.(bool)
		if !ok || av != bv {
			return 1, nil
		}
		return 0, nil
	case nil:
		if b == nil {
			return 0, nil
		}
		return 1, nil
	}
	return 0, fmt.Errorf("unsupported value type %T", a)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// matches evaluates a validated query against an extracted value.
func matches(op string, value, want interface{}) bool {
	c, err := compare(value, want)
	if err != nil {
		return false
	}
	switch op {
	case "=":
		return c == 0
	case "!=":
		return c != 0
	}

	if _, isBool := value.(bool); isBool || value == nil {
		return false
	}
	switch op {
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	}
	return false
}
