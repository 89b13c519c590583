package boards

import (
	"encoding/json"
	"strconv"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// jmesString evaluates expr against data and renders scalar results as a
// trimmed string; anything else is "". Board job ids arrive as JSON
// numbers, so numbers render without an exponent.
func jmesString(expr string, data any) string {
	v, err := jmespath.Search(expr, data)
	if err != nil || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func jmesSlice(expr string, data any) []any {
	v, err := jmespath.Search(expr, data)
	if err != nil {
		return nil
	}
	out, _ := v.([]any)
	return out
}
