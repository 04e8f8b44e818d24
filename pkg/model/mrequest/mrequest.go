//nolint:revive // exported
package mrequest

import (
	"encoding/base64"
	"strings"
)

type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
)

// ParseMethod uppercases s and reports whether it names a known method.
func ParseMethod(s string) (Method, bool) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	return m, m.IsValid()
}

func (m Method) IsValid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodHead, MethodOptions:
		return true
	}
	return false
}

const (
	DefaultTimeoutMillis int64 = 30000
	DefaultMaxRedirects        = 10
)

type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type QueryParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain,omitempty"`
	Path     string `json:"path,omitempty"`
	Expires  string `json:"expires,omitempty"`
	HttpOnly bool   `json:"http_only,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
}

type Proxy struct {
	Url      string `json:"url"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// ProtocolHint is an opaque transport preference. The executor may ignore it.
type ProtocolHint string

const (
	ProtocolTCP  ProtocolHint = "tcp"
	ProtocolQUIC ProtocolHint = "quic"
)

// Request is the canonical value every translator reads and the executor sends.
// Header, query param and form field order is insertion order; renders iterate
// them exactly as stored so repeated renders stay byte-identical.
type Request struct {
	Method          Method       `json:"method"`
	Url             string       `json:"url"`
	Headers         []Header     `json:"headers"`
	QueryParams     []QueryParam `json:"query_params"`
	Cookies         []Cookie     `json:"cookies"`
	TimeoutMillis   int64        `json:"timeout_ms"`
	FollowRedirects bool         `json:"follow_redirects"`
	MaxRedirects    int          `json:"max_redirects"`
	VerifySsl       bool         `json:"verify_ssl"`
	Proxy           *Proxy       `json:"proxy,omitempty"`
	Protocol        ProtocolHint `json:"protocol,omitempty"`
	Body            Body         `json:"body"`
	Auth            Auth         `json:"auth"`
}

// Default returns a Request with every scalar at its documented default.
func Default(url string, method Method) Request {
	return Request{
		Method:          method,
		Url:             url,
		TimeoutMillis:   DefaultTimeoutMillis,
		FollowRedirects: true,
		MaxRedirects:    DefaultMaxRedirects,
		VerifySsl:       true,
		Body:            BodyNone{},
		Auth:            AuthNone{},
	}
}

func (r Request) BodyOrNone() Body {
	if r.Body == nil {
		return BodyNone{}
	}
	return r.Body
}

func (r Request) AuthOrNone() Auth {
	if r.Auth == nil {
		return AuthNone{}
	}
	return r.Auth
}

// SetHeader overwrites the value of an existing header with the same exact
// name, keeping its position, or appends a new one. Mapping semantics.
func (r *Request) SetHeader(key, value string) {
	for i := range r.Headers {
		if r.Headers[i].Key == key {
			r.Headers[i].Value = value
			return
		}
	}
	r.Headers = append(r.Headers, Header{Key: key, Value: value})
}

// GetHeader returns the first header matching name case-insensitively.
func (r Request) GetHeader(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Key, name) {
			return h.Value, true
		}
	}
	return "", false
}

func (r Request) HasHeader(name string) bool {
	_, ok := r.GetHeader(name)
	return ok
}

func (r *Request) SetQueryParam(key, value string) {
	for i := range r.QueryParams {
		if r.QueryParams[i].Key == key {
			r.QueryParams[i].Value = value
			return
		}
	}
	r.QueryParams = append(r.QueryParams, QueryParam{Key: key, Value: value})
}

func (r *Request) AddCookie(name, value string) {
	r.Cookies = append(r.Cookies, Cookie{Name: name, Value: value})
}

// DerivedContentType returns the Content-Type a body implies, but only when
// the caller has not set that header explicitly. Caller headers always win.
func (r Request) DerivedContentType() (string, bool) {
	if r.HasHeader("Content-Type") {
		return "", false
	}
	switch b := r.BodyOrNone().(type) {
	case BodyRaw:
		if b.ContentType != "" {
			return b.ContentType, true
		}
	case BodyForm:
		return "application/x-www-form-urlencoded", true
	}
	return "", false
}

// CookieHeaderValue joins request cookies into a single Cookie header value,
// absent when there are no cookies or the caller already set one.
func (r Request) CookieHeaderValue() (string, bool) {
	if len(r.Cookies) == 0 || r.HasHeader("Cookie") {
		return "", false
	}
	parts := make([]string, 0, len(r.Cookies))
	for _, c := range r.Cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; "), true
}

// AuthorizationValue derives an Authorization header value from the auth
// variant, absent for AuthNone or when the caller already set the header.
func (r Request) AuthorizationValue() (string, bool) {
	if r.HasHeader("Authorization") {
		return "", false
	}
	switch a := r.AuthOrNone().(type) {
	case AuthBasic:
		cred := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
		return "Basic " + cred, true
	case AuthBearer:
		return "Bearer " + a.Token, true
	}
	return "", false
}

// SnippetHeaders is the final header list renderers emit and the executor
// transmits: caller headers in insertion order, then the derived
// Content-Type, Cookie and Authorization headers in that fixed order.
func (r Request) SnippetHeaders() []Header {
	out := make([]Header, 0, len(r.Headers)+3)
	out = append(out, r.Headers...)
	if ct, ok := r.DerivedContentType(); ok {
		out = append(out, Header{Key: "Content-Type", Value: ct})
	}
	if cv, ok := r.CookieHeaderValue(); ok {
		out = append(out, Header{Key: "Cookie", Value: cv})
	}
	if av, ok := r.AuthorizationValue(); ok {
		out = append(out, Header{Key: "Authorization", Value: av})
	}
	return out
}
