// Package treqfile defines the portable request document: the YAML/JSON shape
// requests travel in on disk, in history and over the API. Body and auth are
// explicit tagged unions so a document never needs sniffing to interpret.
package treqfile

import (
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reqforge/reqforge/pkg/model/mrequest"
	"github.com/reqforge/reqforge/pkg/model/mresponse"
)

const (
	BodyKindNone = "none"
	BodyKindRaw  = "raw"
	BodyKindForm = "form"

	AuthKindNone   = "none"
	AuthKindBasic  = "basic"
	AuthKindBearer = "bearer"
)

type PairDoc struct {
	Key   string `yaml:"key" json:"key"`
	Value string `yaml:"value" json:"value"`
}

type CookieDoc struct {
	Name     string `yaml:"name" json:"name"`
	Value    string `yaml:"value" json:"value"`
	Domain   string `yaml:"domain,omitempty" json:"domain,omitempty"`
	Path     string `yaml:"path,omitempty" json:"path,omitempty"`
	Expires  string `yaml:"expires,omitempty" json:"expires,omitempty"`
	HttpOnly bool   `yaml:"http_only,omitempty" json:"http_only,omitempty"`
	Secure   bool   `yaml:"secure,omitempty" json:"secure,omitempty"`
}

type ProxyDoc struct {
	URL      string `yaml:"url" json:"url"`
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
}

// BodyDoc is the body union. Type selects which of the remaining fields are
// meaningful: raw uses Content and ContentType, form uses Fields.
type BodyDoc struct {
	Type        string    `yaml:"type" json:"type"`
	Content     string    `yaml:"content,omitempty" json:"content,omitempty"`
	ContentType string    `yaml:"content_type,omitempty" json:"content_type,omitempty"`
	Fields      []PairDoc `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// AuthDoc is the auth union. Type selects basic (username/password) or
// bearer (token).
type AuthDoc struct {
	Type     string `yaml:"type" json:"type"`
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
	Token    string `yaml:"token,omitempty" json:"token,omitempty"`
}

// RequestDoc is the document form of a request. Scalar options are pointers
// so an absent key falls back to the model default instead of a zero value.
type RequestDoc struct {
	Method          string      `yaml:"method,omitempty" json:"method,omitempty"`
	URL             string      `yaml:"url" json:"url"`
	Headers         []PairDoc   `yaml:"headers,omitempty" json:"headers,omitempty"`
	QueryParams     []PairDoc   `yaml:"query_params,omitempty" json:"query_params,omitempty"`
	Cookies         []CookieDoc `yaml:"cookies,omitempty" json:"cookies,omitempty"`
	TimeoutMillis   *int64      `yaml:"timeout_ms,omitempty" json:"timeout_ms,omitempty"`
	FollowRedirects *bool       `yaml:"follow_redirects,omitempty" json:"follow_redirects,omitempty"`
	MaxRedirects    *int        `yaml:"max_redirects,omitempty" json:"max_redirects,omitempty"`
	VerifySsl       *bool       `yaml:"verify_ssl,omitempty" json:"verify_ssl,omitempty"`
	Proxy           *ProxyDoc   `yaml:"proxy,omitempty" json:"proxy,omitempty"`
	Protocol        string      `yaml:"protocol,omitempty" json:"protocol,omitempty"`
	Body            *BodyDoc    `yaml:"body,omitempty" json:"body,omitempty"`
	Auth            *AuthDoc    `yaml:"auth,omitempty" json:"auth,omitempty"`
}

// ReadYAML parses one request document from YAML.
func ReadYAML(data []byte) (RequestDoc, error) {
	var doc RequestDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RequestDoc{}, err
	}
	return doc, nil
}

// WriteYAML serializes one request document to YAML.
func WriteYAML(doc RequestDoc) ([]byte, error) {
	return yaml.Marshal(doc)
}

// ReadJSON parses one request document from JSON.
func ReadJSON(data []byte) (RequestDoc, error) {
	var doc RequestDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return RequestDoc{}, err
	}
	return doc, nil
}

// WriteJSON serializes one request document to JSON.
func WriteJSON(doc RequestDoc) ([]byte, error) {
	return json.Marshal(doc)
}

// ToModel converts a document into the canonical request. Absent scalars take
// the model defaults; unknown body and auth kinds degrade to none.
func ToModel(doc RequestDoc) mrequest.Request {
	method := mrequest.MethodGet
	if trimmed := strings.TrimSpace(doc.Method); trimmed != "" {
		method, _ = mrequest.ParseMethod(trimmed)
	}
	req := mrequest.Default(doc.URL, method)

	for _, h := range doc.Headers {
		req.Headers = append(req.Headers, mrequest.Header{Key: h.Key, Value: h.Value})
	}
	for _, q := range doc.QueryParams {
		req.QueryParams = append(req.QueryParams, mrequest.QueryParam{Key: q.Key, Value: q.Value})
	}
	for _, c := range doc.Cookies {
		req.Cookies = append(req.Cookies, mrequest.Cookie{
			Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path,
			Expires: c.Expires, HttpOnly: c.HttpOnly, Secure: c.Secure,
		})
	}
	if doc.TimeoutMillis != nil {
		req.TimeoutMillis = *doc.TimeoutMillis
	}
	if doc.FollowRedirects != nil {
		req.FollowRedirects = *doc.FollowRedirects
	}
	if doc.MaxRedirects != nil {
		req.MaxRedirects = *doc.MaxRedirects
	}
	if doc.VerifySsl != nil {
		req.VerifySsl = *doc.VerifySsl
	}
	if doc.Proxy != nil && doc.Proxy.URL != "" {
		req.Proxy = &mrequest.Proxy{Url: doc.Proxy.URL, Username: doc.Proxy.Username, Password: doc.Proxy.Password}
	}
	if doc.Protocol != "" {
		req.Protocol = mrequest.ProtocolHint(doc.Protocol)
	}
	req.Body = bodyToModel(doc.Body)
	req.Auth = authToModel(doc.Auth)
	return req
}

func bodyToModel(doc *BodyDoc) mrequest.Body {
	if doc == nil {
		return mrequest.BodyNone{}
	}
	switch doc.Type {
	case BodyKindRaw:
		return mrequest.BodyRaw{Content: doc.Content, ContentType: doc.ContentType}
	case BodyKindForm:
		fields := make([]mrequest.FormField, 0, len(doc.Fields))
		for _, f := range doc.Fields {
			fields = append(fields, mrequest.FormField{Key: f.Key, Value: f.Value})
		}
		return mrequest.BodyForm{Fields: fields}
	}
	return mrequest.BodyNone{}
}

func authToModel(doc *AuthDoc) mrequest.Auth {
	if doc == nil {
		return mrequest.AuthNone{}
	}
	switch doc.Type {
	case AuthKindBasic:
		return mrequest.AuthBasic{Username: doc.Username, Password: doc.Password}
	case AuthKindBearer:
		return mrequest.AuthBearer{Token: doc.Token}
	}
	return mrequest.AuthNone{}
}

// FromModel converts a request into its document form. Every field is written
// explicitly so ToModel(FromModel(req)) reproduces req.
func FromModel(req mrequest.Request) RequestDoc {
	doc := RequestDoc{
		Method:          string(req.Method),
		URL:             req.Url,
		TimeoutMillis:   ptr(req.TimeoutMillis),
		FollowRedirects: ptr(req.FollowRedirects),
		MaxRedirects:    ptr(req.MaxRedirects),
		VerifySsl:       ptr(req.VerifySsl),
		Protocol:        string(req.Protocol),
	}
	for _, h := range req.Headers {
		doc.Headers = append(doc.Headers, PairDoc{Key: h.Key, Value: h.Value})
	}
	for _, q := range req.QueryParams {
		doc.QueryParams = append(doc.QueryParams, PairDoc{Key: q.Key, Value: q.Value})
	}
	for _, c := range req.Cookies {
		doc.Cookies = append(doc.Cookies, CookieDoc{
			Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path,
			Expires: c.Expires, HttpOnly: c.HttpOnly, Secure: c.Secure,
		})
	}
	if req.Proxy != nil {
		doc.Proxy = &ProxyDoc{URL: req.Proxy.Url, Username: req.Proxy.Username, Password: req.Proxy.Password}
	}
	doc.Body = bodyFromModel(req.BodyOrNone())
	doc.Auth = authFromModel(req.AuthOrNone())
	return doc
}

func bodyFromModel(body mrequest.Body) *BodyDoc {
	switch b := body.(type) {
	case mrequest.BodyRaw:
		return &BodyDoc{Type: BodyKindRaw, Content: b.Content, ContentType: b.ContentType}
	case mrequest.BodyForm:
		doc := &BodyDoc{Type: BodyKindForm}
		for _, f := range b.Fields {
			doc.Fields = append(doc.Fields, PairDoc{Key: f.Key, Value: f.Value})
		}
		return doc
	}
	return &BodyDoc{Type: BodyKindNone}
}

func authFromModel(auth mrequest.Auth) *AuthDoc {
	switch a := auth.(type) {
	case mrequest.AuthBasic:
		return &AuthDoc{Type: AuthKindBasic, Username: a.Username, Password: a.Password}
	case mrequest.AuthBearer:
		return &AuthDoc{Type: AuthKindBearer, Token: a.Token}
	}
	return &AuthDoc{Type: AuthKindNone}
}

func ptr[T any](v T) *T { return &v }

type TimingDoc struct {
	TotalMillis           float64 `yaml:"total_ms" json:"total_ms"`
	DNSLookupMillis       float64 `yaml:"dns_lookup_ms" json:"dns_lookup_ms"`
	TCPHandshakeMillis    float64 `yaml:"tcp_handshake_ms" json:"tcp_handshake_ms"`
	TLSHandshakeMillis    float64 `yaml:"tls_handshake_ms" json:"tls_handshake_ms"`
	TransferStartMillis   float64 `yaml:"transfer_start_ms" json:"transfer_start_ms"`
	TTFBMillis            float64 `yaml:"ttfb_ms" json:"ttfb_ms"`
	ContentDownloadMillis float64 `yaml:"content_download_ms" json:"content_download_ms"`
}

type SizeDoc struct {
	HeadersBytes int64 `yaml:"headers_bytes" json:"headers_bytes"`
	BodyBytes    int64 `yaml:"body_bytes" json:"body_bytes"`
	TotalBytes   int64 `yaml:"total_bytes" json:"total_bytes"`
}

type RedirectDoc struct {
	URL    string `yaml:"url" json:"url"`
	Status int    `yaml:"status" json:"status"`
}

// ResponseDoc is the document form of a response. Text bodies go into Body;
// bodies that are not valid UTF-8 stay base64 in BodyBase64.
type ResponseDoc struct {
	Status       int           `yaml:"status" json:"status"`
	StatusText   string        `yaml:"status_text" json:"status_text"`
	Headers      []PairDoc     `yaml:"headers,omitempty" json:"headers,omitempty"`
	Cookies      []CookieDoc   `yaml:"cookies,omitempty" json:"cookies,omitempty"`
	Body         string        `yaml:"body,omitempty" json:"body,omitempty"`
	BodyBase64   string        `yaml:"body_base64,omitempty" json:"body_base64,omitempty"`
	Timing       TimingDoc     `yaml:"timing" json:"timing"`
	RequestSize  SizeDoc       `yaml:"request_size" json:"request_size"`
	ResponseSize SizeDoc       `yaml:"response_size" json:"response_size"`
	Redirects    []RedirectDoc `yaml:"redirects,omitempty" json:"redirects,omitempty"`
	RemoteAddr   string        `yaml:"remote_addr,omitempty" json:"remote_addr,omitempty"`
	HttpVersion  string        `yaml:"http_version,omitempty" json:"http_version,omitempty"`
	Renderers    []string      `yaml:"available_renderers,omitempty" json:"available_renderers,omitempty"`
	ContentType  string        `yaml:"detected_content_type,omitempty" json:"detected_content_type,omitempty"`
	Error        string        `yaml:"error,omitempty" json:"error,omitempty"`
}

// FromResponse converts an executed response into its document form.
func FromResponse(resp mresponse.Response) ResponseDoc {
	doc := ResponseDoc{
		Status:     resp.Status,
		StatusText: resp.StatusText,
		Timing: TimingDoc{
			TotalMillis:           resp.Timing.TotalMillis,
			DNSLookupMillis:       resp.Timing.DNSLookupMillis,
			TCPHandshakeMillis:    resp.Timing.TCPHandshakeMillis,
			TLSHandshakeMillis:    resp.Timing.TLSHandshakeMillis,
			TransferStartMillis:   resp.Timing.TransferStartMillis,
			TTFBMillis:            resp.Timing.TTFBMillis,
			ContentDownloadMillis: resp.Timing.ContentDownloadMillis,
		},
		RequestSize:  SizeDoc{HeadersBytes: resp.RequestSize.HeadersBytes, BodyBytes: resp.RequestSize.BodyBytes, TotalBytes: resp.RequestSize.TotalBytes},
		ResponseSize: SizeDoc{HeadersBytes: resp.ResponseSize.HeadersBytes, BodyBytes: resp.ResponseSize.BodyBytes, TotalBytes: resp.ResponseSize.TotalBytes},
		RemoteAddr:   resp.RemoteAddr,
		HttpVersion:  resp.HttpVersion,
		ContentType:  resp.ContentType,
		Error:        resp.Error,
	}
	for _, h := range resp.Headers {
		doc.Headers = append(doc.Headers, PairDoc{Key: h.Key, Value: h.Value})
	}
	for _, c := range resp.Cookies {
		doc.Cookies = append(doc.Cookies, CookieDoc{
			Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path,
			Expires: c.Expires, HttpOnly: c.HttpOnly, Secure: c.Secure,
		})
	}
	for _, r := range resp.Redirects {
		doc.Redirects = append(doc.Redirects, RedirectDoc{URL: r.Url, Status: r.Status})
	}
	for _, r := range resp.Renderers {
		doc.Renderers = append(doc.Renderers, string(r))
	}
	if body := mresponse.DecodeBody(resp); utf8.ValidString(body) {
		doc.Body = body
	} else {
		doc.BodyBase64 = resp.BodyBase64
	}
	return doc
}

// WriteResponseYAML serializes a response document to YAML.
func WriteResponseYAML(doc ResponseDoc) ([]byte, error) {
	return yaml.Marshal(doc)
}

// WriteResponseJSON serializes a response document to JSON.
func WriteResponseJSON(doc ResponseDoc) ([]byte, error) {
	return json.Marshal(doc)
}
