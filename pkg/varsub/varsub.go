//nolint:revive // exported
package varsub

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/reqforge/reqforge/pkg/model/mrequest"
)

// ErrKeyNotFound marks an unresolved variable, file, or env reference.
var ErrKeyNotFound = errors.New("variable not found")

const (
	openDelim  = "{{"
	closeDelim = "}}"
	filePrefix = "#file:"
	envPrefix  = "#env:"
)

// Map holds substitution variables by key.
type Map map[string]string

// FromAnyMap flattens a nested structure into dotted keys; slices index as
// key[0], key[1], and so on. Scalars format with fmt.Sprint.
func FromAnyMap(input map[string]any) Map {
	out := make(Map)
	flattenInto(out, "", input)
	return out
}

func flattenInto(out Map, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		for key, inner := range v {
			name := key
			if prefix != "" {
				name = prefix + "." + key
			}
			flattenInto(out, name, inner)
		}
	case []any:
		for i, inner := range v {
			flattenInto(out, fmt.Sprintf("%s[%d]", prefix, i), inner)
		}
	default:
		if prefix != "" {
			out[prefix] = fmt.Sprint(v)
		}
	}
}

// Merge overlays override onto base without touching either input.
func Merge(base, override Map) Map {
	merged := make(Map, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

func (m Map) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Replace substitutes every {{key}} occurrence in s. Besides plain map
// keys, {{#file:path}} inlines a file and {{#env:NAME}} an environment
// variable. Unmatched braces pass through untouched.
func (m Map) Replace(s string) (string, error) {
	if !strings.Contains(s, openDelim) {
		return s, nil
	}
	var b strings.Builder
	rest := s
	for {
		start := strings.Index(rest, openDelim)
		if start < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.Index(rest[start:], closeDelim)
		if end < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		b.WriteString(rest[:start])
		key := strings.TrimSpace(rest[start+len(openDelim) : start+end])
		value, err := m.resolve(key)
		if err != nil {
			return "", err
		}
		b.WriteString(value)
		rest = rest[start+end+len(closeDelim):]
	}
}

func (m Map) resolve(key string) (string, error) {
	value, err := m.resolveDirect(key)
	if err != nil {
		return "", err
	}
	// a variable value may itself be a file or env reference
	if strings.HasPrefix(value, filePrefix) || strings.HasPrefix(value, envPrefix) {
		return m.resolveDirect(value)
	}
	return value, nil
}

func (m Map) resolveDirect(key string) (string, error) {
	switch {
	case strings.HasPrefix(key, filePrefix):
		data, err := os.ReadFile(strings.TrimPrefix(key, filePrefix))
		if err != nil {
			return "", fmt.Errorf("%q: %w", key, ErrKeyNotFound)
		}
		return string(data), nil
	case strings.HasPrefix(key, envPrefix):
		value, ok := os.LookupEnv(strings.TrimPrefix(key, envPrefix))
		if !ok {
			return "", fmt.Errorf("%q: %w", key, ErrKeyNotFound)
		}
		return value, nil
	default:
		value, ok := m[key]
		if !ok {
			return "", fmt.Errorf("%q: %w", key, ErrKeyNotFound)
		}
		return value, nil
	}
}

// Apply substitutes variables across every templatable field of a request:
// url, header and query values, cookies, body content, and credentials.
func Apply(req *mrequest.Request, vars Map) error {
	var err error
	if req.Url, err = vars.Replace(req.Url); err != nil {
		return fmt.Errorf("url: %w", err)
	}
	for i := range req.Headers {
		if req.Headers[i].Value, err = vars.Replace(req.Headers[i].Value); err != nil {
			return fmt.Errorf("header %s: %w", req.Headers[i].Key, err)
		}
	}
	for i := range req.QueryParams {
		if req.QueryParams[i].Value, err = vars.Replace(req.QueryParams[i].Value); err != nil {
			return fmt.Errorf("query param %s: %w", req.QueryParams[i].Key, err)
		}
	}
	for i := range req.Cookies {
		if req.Cookies[i].Value, err = vars.Replace(req.Cookies[i].Value); err != nil {
			return fmt.Errorf("cookie %s: %w", req.Cookies[i].Name, err)
		}
	}

	switch body := req.BodyOrNone().(type) {
	case mrequest.BodyRaw:
		if body.Content, err = vars.Replace(body.Content); err != nil {
			return fmt.Errorf("body: %w", err)
		}
		req.Body = body
	case mrequest.BodyForm:
		fields := make([]mrequest.FormField, len(body.Fields))
		copy(fields, body.Fields)
		for i := range fields {
			if fields[i].Value, err = vars.Replace(fields[i].Value); err != nil {
				return fmt.Errorf("form field %s: %w", fields[i].Key, err)
			}
		}
		req.Body = mrequest.BodyForm{Fields: fields}
	}

	switch auth := req.AuthOrNone().(type) {
	case mrequest.AuthBasic:
		if auth.Username, err = vars.Replace(auth.Username); err != nil {
			return fmt.Errorf("auth username: %w", err)
		}
		if auth.Password, err = vars.Replace(auth.Password); err != nil {
			return fmt.Errorf("auth password: %w", err)
		}
		req.Auth = auth
	case mrequest.AuthBearer:
		if auth.Token, err = vars.Replace(auth.Token); err != nil {
			return fmt.Errorf("auth token: %w", err)
		}
		req.Auth = auth
	}
	return nil
}
