package api

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// BuildURL resolves path against base and appends the non-nil query
// parameters. Trailing slashes on base and leading slashes on path are
// removed first, so "http://h/api/" + "/me" becomes "http://h/api/me".
// Nil values and typed nil pointers are left out of the query string.
func BuildURL(base, path string, query map[string]any) (string, error) {
	baseURL, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("invalid API URL: %w", err)
	}

	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}

	u := baseURL.ResolveReference(ref)

	values := u.Query()
	for k, v := range query {
		s, ok := queryValue(v)
		if !ok {
			continue
		}
		values.Set(k, s)
	}
	u.RawQuery = values.Encode()

	return u.String(), nil
}

// queryValue formats v for a query string, dereferencing pointers.
// It reports false for nil and nil pointers.
func queryValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	return fmt.Sprint(rv.Interface()), true
}
