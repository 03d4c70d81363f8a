package embedded

import (
	"github.com/adfharrison1/docgate/pkg/domain"
)

// MatchesPredicates checks a document against equality predicates whose
// values are taken from params.
func MatchesPredicates(doc domain.Document, where []domain.Predicate, params map[string]interface{}) bool {
	for _, p := range where {
		actual, exists := doc[p.Field]
		if !exists {
			return false
		}
		if !ValuesMatch(actual, params[p.Param]) {
			return false
		}
	}
	return true
}

// ValuesMatch compares two values for equality. Strings compare exactly and
// numbers compare by value regardless of their decoded width.
func ValuesMatch(actual, expected interface{}) bool {
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}

	if actualStr, ok := actual.(string); ok {
		expectedStr, ok := expected.(string)
		return ok && actualStr == expectedStr
	}

	if actualNum, ok1 := ToFloat64(actual); ok1 {
		if expectedNum, ok2 := ToFloat64(expected); ok2 {
			return actualNum == expectedNum
		}
		return false
	}

	if actualBool, ok := actual.(bool); ok {
		expectedBool, ok := expected.(bool)
		return ok && actualBool == expectedBool
	}
	return false
}

// ToFloat64 converts the numeric types produced by JSON and msgpack decoding
// to float64.
func ToFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
