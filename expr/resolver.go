package expr

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oliveagle/jsonpath"
)

var tokenPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Lookup walks a dotted path through the context document. Missing
// intermediate keys are a resolution failure, not an error.
func Lookup(context map[string]any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}
	value, err := jsonpath.JsonPathLookup(context, "$."+path)
	if err != nil {
		return nil, false
	}
	return value, true
}

// Resolve substitutes {{dotted.path}} tokens from the context. Tokens
// that do not resolve are left verbatim, so resolving an already
// resolved string is a no-op.
func Resolve(template string, context map[string]any) string {
	if template == "" {
		return template
	}
	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		key := token[2 : len(token)-2]
		value, ok := Lookup(context, key)
		if !ok || value == nil {
			return token
		}
		return fmt.Sprintf("%v", value)
	})
}
