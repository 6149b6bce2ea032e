package util

import (
	"encoding/json"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Substitute replaces every ${a.b.c} placeholder in text with the value found
// by following the dotted path into data. Maps, structs (through their JSON
// view) and slices (numeric segments) can be traversed. A placeholder whose
// path is missing or resolves to nil is left untouched. Object and array
// values are JSON encoded; everything else uses its natural string form.
// This lives in internal to avoid committing to public API stability prematurely.
func Substitute(text string, data any) string {
	if !strings.Contains(text, "${") { // fast path: no template markers
		return text
	}

	root := normalize(data)

	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])

		value, ok := lookup(root, path)
		if !ok || value == nil {
			return match
		}

		return ToText(value)
	})
}

// ToText renders a resolved value: strings verbatim, integral numbers without
// exponent, objects and arrays as compact JSON.
func ToText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return ToText(normalize(v))
	}
}

func lookup(root any, path string) (any, bool) {
	current := root

	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return nil, false
		}

		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}

	return current, true
}

// normalize converts arbitrary Go values into the generic JSON shape
// (map[string]any, []any, float64, string, bool, nil) so path lookup only has
// to deal with a closed set of types.
func normalize(data any) any {
	switch v := data.(type) {
	case nil, string, bool, float64:
		return v
	case map[string]any:
		return normalizeMap(v)
	case []any:
		return normalizeSlice(v)
	}

	rv := reflect.ValueOf(data)
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return nil
	}

	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}

	return out
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

func normalizeSlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = normalize(v)
	}
	return out
}
