package validation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/resume-studio/internal/types"
)

// Flatten converts a nested error object returned by the backing service into
// field errors with dotted paths. Maps are walked in sorted key order (numeric
// keys numerically), arrays by index. A list of strings under a key yields one
// error per message on that key.
func Flatten(nested any) []types.FieldError {
	var out []types.FieldError
	flatten("", nested, &out)
	return out
}

func flatten(path string, v any, out *[]types.FieldError) {
	switch t := v.(type) {
	case nil:
	case string:
		*out = append(*out, types.FieldError{Field: path, Message: t})
	case []string:
		for _, msg := range t {
			*out = append(*out, types.FieldError{Field: path, Message: msg})
		}
	case []any:
		for i, item := range t {
			if msg, ok := item.(string); ok {
				*out = append(*out, types.FieldError{Field: path, Message: msg})
				continue
			}
			flatten(join(path, strconv.Itoa(i)), item, out)
		}
	case map[string]any:
		for _, k := range sortedKeys(t) {
			flatten(join(path, k), t[k], out)
		}
	case map[string][]string:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sortKeys(keys)
		for _, k := range keys {
			flatten(join(path, k), t[k], out)
		}
	case map[string]string:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sortKeys(keys)
		for _, k := range keys {
			flatten(join(path, k), t[k], out)
		}
	default:
		*out = append(*out, types.FieldError{Field: path, Message: fmt.Sprint(t)})
	}
}

// Nest is the inverse of Flatten: it groups field errors into a nested object
// whose leaves are message lists. Flatten(Nest(errs)) yields the same errors.
func Nest(errs []types.FieldError) map[string]any {
	root := map[string]any{}
	for _, fe := range errs {
		node := root
		parts := strings.Split(fe.Field, ".")
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		leaf := parts[len(parts)-1]
		msgs, _ := node[leaf].([]any)
		node[leaf] = append(msgs, fe.Message)
	}
	return root
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func sortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
}
