package apiclient

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
)

// ErrMissingPathParam is returned when a {param} segment has no value
var ErrMissingPathParam = errors.New("apiclient: missing path parameter")

var pathParamPattern = regexp.MustCompile(`\{([^{}/]+)\}`)

// PathValue is a path parameter value. The zero value means "not set".
type PathValue struct {
	value string
	set   bool
}

// Param creates a PathValue from a string or a number
func Param[T ~string | ~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~float32 | ~float64](v T) PathValue {
	switch x := any(v).(type) {
	case float32:
		return PathValue{value: strconv.FormatFloat(float64(x), 'f', -1, 32), set: true}
	case float64:
		return PathValue{value: strconv.FormatFloat(x, 'f', -1, 64), set: true}
	}
	return PathValue{value: fmt.Sprint(v), set: true}
}

// IsSet reports whether the value was provided
func (p PathValue) IsSet() bool {
	return p.set
}

func (p PathValue) String() string {
	return p.value
}

// PathParams returns the parameter names of a path template in order
func PathParams(template string) []string {
	matches := pathParamPattern.FindAllStringSubmatch(template, -1)
	params := make([]string, 0, len(matches))
	for _, match := range matches {
		params = append(params, match[1])
	}
	return params
}

// FinalizePath substitutes every {name} segment with its percent-encoded value
func FinalizePath(template string, params map[string]PathValue) (string, error) {
	var missing string
	path := pathParamPattern.ReplaceAllStringFunc(template, func(segment string) string {
		name := segment[1 : len(segment)-1]
		value, ok := params[name]
		if !ok || !value.IsSet() {
			if missing == "" {
				missing = name
			}
			return segment
		}
		return url.PathEscape(value.String())
	})
	if missing != "" {
		return "", fmt.Errorf("%w: %s in %s", ErrMissingPathParam, missing, template)
	}
	return path, nil
}
