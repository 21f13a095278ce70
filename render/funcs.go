// Package render provides the function map available to emission templates.
package render

import (
	"reflect"
	"strings"
	"text/template"
)

// DefaultFuncMap returns the functions every template is parsed with.
// Callers may add to the returned map; each call returns a fresh copy.
func DefaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"snake":        toSnakeCase,
		"camel":        toCamelCase,
		"pascal":       toPascalCase,
		"kebab":        toKebabCase,
		"capitalize":   capitalize,
		"uncapitalize": uncapitalize,
		"lower":        strings.ToLower,
		"upper":        strings.ToUpper,
		"trim":         strings.TrimSpace,
		"replace":      strings.ReplaceAll,
		"split":        strings.Split,
		"join":         join,
		"contains":     strings.Contains,
		"hasPrefix":    strings.HasPrefix,
		"hasSuffix":    strings.HasSuffix,

		"indent":  indentLines,
		"quote":   quote,
		"comment": comment,
		"javaDoc": javaDoc,

		"default":    defaultValue,
		"isEmpty":    isEmpty,
		"isNotEmpty": isNotEmpty,
		"uuid":       generateUUID,
	}
}

func defaultValue(def any, given any) any {
	if given == nil {
		return def
	}

	if s, ok := given.(string); ok && s == "" {
		return def
	}

	return given
}

// isEmpty treats nil and zero-length collections and strings as empty.
// Any other value is empty only when it is its type's zero value.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Array, reflect.Slice, reflect.Map, reflect.String:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

func isNotEmpty(value any) bool {
	return !isEmpty(value)
}

// join accepts []string as well as the []any produced by YAML and JSON decoding.
func join(sep string, items any) string {
	switch v := items.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(v, sep)
	}

	rv := reflect.ValueOf(items)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return toString(items)
	}

	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = toString(rv.Index(i).Interface())
	}
	return strings.Join(parts, sep)
}
