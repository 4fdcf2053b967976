// Package schema names fields after Solr dynamic-field conventions and
// coerces string values into the types those fields expect.
package schema

import (
	"math"
	"strconv"
	"strings"
)

// Evaluator turns textual values into typed ones, keeping the text when no
// conversion applies.
type Evaluator struct{}

// CanEval reports whether v is a string or a list of strings.
func (Evaluator) CanEval(v interface{}) bool {
	switch val := v.(type) {
	case string, []string:
		return true
	case []interface{}:
		for _, item := range val {
			if _, ok := item.(string); !ok {
				return false
			}
		}
		return true
	}
	return false
}

// ValueOf converts s to int64, float64 or bool, in that order of preference.
func (Evaluator) ValueOf(s string) interface{} {
	t := strings.TrimSpace(s)
	if t == "" {
		return s
	}
	if n, err := strconv.ParseInt(t, 10, 64); err == nil {
		return n
	}
	if isDecimal(t) {
		if f, err := strconv.ParseFloat(t, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
	}
	if strings.EqualFold(t, "true") {
		return true
	}
	if strings.EqualFold(t, "false") {
		return false
	}
	return s
}

// Eval converts a string or each element of a string list. Other values
// are returned untouched.
func (e Evaluator) Eval(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return e.ValueOf(val)
	case []string:
		out := make([]interface{}, len(val))
		for i, s := range val {
			out[i] = e.ValueOf(s)
		}
		return out
	case []interface{}:
		if !e.CanEval(val) {
			return v
		}
		out := make([]interface{}, len(val))
		for i, s := range val {
			out[i] = e.ValueOf(s.(string))
		}
		return out
	}
	return v
}

// isDecimal rejects the hex, inf and nan spellings ParseFloat accepts.
func isDecimal(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == '+', r == '-', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}
