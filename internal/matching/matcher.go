// Package matching implements the query predicate used by find and delete
// operations.
package matching

// Matches reports whether doc satisfies query: for every key present in the
// query, the document must hold that key with a strictly equal value. An
// empty (or nil) query matches every document.
//
// Equality is shallow. Composite values (arrays and nested objects) are
// compared by identity, and a document parsed from disk can never share
// identity with a caller-supplied value, so a query on an array or object
// field never matches. This mirrors the engine's documented contract; it is
// a limitation, not a bug to fix here.
//
// Numbers are the one place values are widened before comparison: documents
// read from JSON carry float64, so integer query values are converted to
// float64 first. No other coercion is applied.
func Matches(doc, query map[string]any) bool {
	for key, want := range query {
		got, ok := doc[key]
		if !ok {
			return false
		}
		if !equal(got, want) {
			return false
		}
	}
	return true
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if isComposite(a) || isComposite(b) {
		return false
	}
	af, aIsNum := asFloat(a)
	bf, bIsNum := asFloat(b)
	if aIsNum || bIsNum {
		return aIsNum && bIsNum && af == bf
	}
	return a == b
}

func isComposite(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

func asFloat(v any) (float64, bool) {
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
