package valueobjects

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ToFloat converts a numeric value of any representation the graph store or a
// decoded document may produce into a float64. The second result is false when
// the value is absent, not numeric, or not finite.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", ""), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case *big.Int:
		if n == nil {
			return 0, false
		}
		f, _ = new(big.Float).SetInt(n).Float64()
	case *big.Float:
		if n == nil {
			return 0, false
		}
		f, _ = n.Float64()
	case *big.Rat:
		if n == nil {
			return 0, false
		}
		f, _ = n.Float64()
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToFloatOrZero coerces a value for display purposes, falling back to zero
func ToFloatOrZero(v any) float64 {
	f, _ := ToFloat(v)
	return f
}
