//nolint:revive // exported
package httpsender

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"io"
	"mime"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/reqforge/reqforge/pkg/compress"
	"github.com/reqforge/reqforge/pkg/errmap"
	"github.com/reqforge/reqforge/pkg/model/mrequest"
	"github.com/reqforge/reqforge/pkg/model/mresponse"
)

// DefaultMaxBodyBytes caps how much of a response body Send keeps.
const DefaultMaxBodyBytes int64 = 10 << 20

// Sender executes a request model and reports everything the wire exchange
// produced. Implementations must not mutate the request.
type Sender interface {
	Send(ctx context.Context, req mrequest.Request) (mresponse.Response, error)
}

type Options struct {
	// Transport overrides connection handling, mainly for tests. When set,
	// per-request TLS and proxy settings are ignored.
	Transport http.RoundTripper
	// MaxBodyBytes caps response body reads. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

type Client struct {
	opts Options
}

func New(opts Options) *Client {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Client{opts: opts}
}

// Send performs the exchange described by req. Transport failures come back
// as *errmap.Error values carrying the method and URL; a completed exchange
// never fails, whatever the status code.
func (c *Client) Send(ctx context.Context, req mrequest.Request) (mresponse.Response, error) {
	target, err := buildURL(req)
	if err != nil {
		return mresponse.Response{}, errmap.MapRequestError(string(req.Method), req.Url, err)
	}

	body := wireBody(req)
	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), target.String(), bytes.NewReader(body))
	if err != nil {
		return mresponse.Response{}, errmap.MapRequestError(string(req.Method), req.Url, err)
	}

	wireHeaders := req.SnippetHeaders()
	for _, h := range wireHeaders {
		// Go transmits the Host header through the request field, not the map.
		if strings.EqualFold(h.Key, "Host") {
			httpReq.Host = h.Value
			continue
		}
		httpReq.Header.Add(h.Key, h.Value)
	}

	trace := &phaseClock{}
	httpReq = httpReq.WithContext(httptrace.WithClientTrace(httpReq.Context(), trace.clientTrace()))

	maxRedirects := req.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = mrequest.DefaultMaxRedirects
	}
	var redirects []mresponse.Redirect
	client := &http.Client{
		Transport: c.transport(req),
		Timeout:   timeoutFor(req),
		CheckRedirect: func(next *http.Request, via []*http.Request) error {
			if !req.FollowRedirects {
				return http.ErrUseLastResponse
			}
			// Past the cap the pending 3xx becomes the final response.
			if len(via) > maxRedirects {
				return http.ErrUseLastResponse
			}
			if prev := next.Response; prev != nil && prev.Request != nil {
				redirects = append(redirects, mresponse.Redirect{
					Url:    prev.Request.URL.String(),
					Status: prev.StatusCode,
				})
			}
			return nil
		},
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		return mresponse.Response{}, errmap.MapRequestError(string(req.Method), req.Url, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodyBytes))
	if err != nil {
		return mresponse.Response{}, errmap.MapRequestError(string(req.Method), req.Url, err)
	}
	done := time.Now()

	decoded := rawBody
	if encoding := resp.Header.Get("Content-Encoding"); encoding != "" {
		if out, derr := compress.DecodeContentEncoding(rawBody, encoding); derr == nil {
			decoded = out
		}
	}
	contentType := resp.Header.Get("Content-Type")
	decoded = normalizeCharset(decoded, contentType)

	out := mresponse.Response{
		Status:       resp.StatusCode,
		StatusText:   mresponse.StatusText(resp.StatusCode),
		Headers:      convertHeaders(resp.Header),
		Cookies:      convertCookies(resp.Cookies()),
		BodyBase64:   base64.StdEncoding.EncodeToString(decoded),
		Timing:       trace.timing(start, done),
		RequestSize:  requestSize(req.Method, target, httpReq.Host, wireHeaders, len(body)),
		ResponseSize: responseSize(resp, len(rawBody)),
		Redirects:    redirects,
		RemoteAddr:   trace.remote(),
		HttpVersion:  resp.Proto,
		Renderers:    mresponse.DetectRenderers(contentType, decoded),
		ContentType:  detectedContentType(contentType, decoded),
	}
	return out, nil
}

// buildURL parses the request URL, defaulting scheme-less targets to http,
// and appends model query params after whatever the URL already carries.
func buildURL(req mrequest.Request) (*url.URL, error) {
	raw := strings.TrimSpace(req.Url)
	if raw != "" && !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	target, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if len(req.QueryParams) > 0 {
		var b strings.Builder
		b.WriteString(target.RawQuery)
		for _, p := range req.QueryParams {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(p.Key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(p.Value))
		}
		target.RawQuery = b.String()
	}
	return target, nil
}

func wireBody(req mrequest.Request) []byte {
	switch b := req.BodyOrNone().(type) {
	case mrequest.BodyRaw:
		return []byte(b.Content)
	case mrequest.BodyForm:
		var sb strings.Builder
		for i, f := range b.Fields {
			if i > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(f.Key))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(f.Value))
		}
		return []byte(sb.String())
	}
	return nil
}

func timeoutFor(req mrequest.Request) time.Duration {
	millis := req.TimeoutMillis
	if millis <= 0 {
		millis = mrequest.DefaultTimeoutMillis
	}
	return time.Duration(millis) * time.Millisecond
}

// transport builds a per-request transport so VerifySsl and Proxy apply to
// exactly one exchange. Automatic decompression stays off; the response
// pipeline decodes Content-Encoding itself.
func (c *Client) transport(req mrequest.Request) http.RoundTripper {
	if c.opts.Transport != nil {
		return c.opts.Transport
	}
	tr := &http.Transport{
		ForceAttemptHTTP2:  true,
		DisableCompression: true,
		TLSClientConfig:    &tls.Config{InsecureSkipVerify: !req.VerifySsl}, //nolint:gosec // user-controlled toggle
	}
	if req.Proxy != nil && req.Proxy.Url != "" {
		if proxyURL, err := url.Parse(req.Proxy.Url); err == nil {
			if req.Proxy.Username != "" {
				proxyURL.User = url.UserPassword(req.Proxy.Username, req.Proxy.Password)
			}
			tr.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return tr
}

// normalizeCharset converts declared non-UTF-8 text to UTF-8. Bodies without
// a charset declaration pass through untouched so binary stays intact.
func normalizeCharset(body []byte, contentType string) []byte {
	if !strings.Contains(strings.ToLower(contentType), "charset=") {
		return body
	}
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}
	converted, err := io.ReadAll(reader)
	if err != nil {
		return body
	}
	return converted
}

func convertHeaders(h http.Header) []mrequest.Header {
	out := make([]mrequest.Header, 0, len(h))
	for key, values := range h {
		for _, value := range values {
			out = append(out, mrequest.Header{Key: key, Value: value})
		}
	}
	return out
}

func convertCookies(cookies []*http.Cookie) []mrequest.Cookie {
	out := make([]mrequest.Cookie, 0, len(cookies))
	for _, c := range cookies {
		mc := mrequest.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HttpOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if !c.Expires.IsZero() {
			mc.Expires = c.Expires.UTC().Format(http.TimeFormat)
		}
		out = append(out, mc)
	}
	return out
}

func detectedContentType(declared string, body []byte) string {
	if declared != "" {
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
			return mediaType
		}
		return declared
	}
	if len(body) == 0 {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(body))
	if err != nil {
		return ""
	}
	return mediaType
}

// requestSize approximates the bytes the request put on the wire: request
// line, Host, the explicit header block, and the body.
func requestSize(method mrequest.Method, target *url.URL, hostOverride string, headers []mrequest.Header, bodyLen int) mresponse.Size {
	host := hostOverride
	if host == "" {
		host = target.Host
	}
	var head strings.Builder
	head.WriteString(string(method))
	head.WriteString(" ")
	head.WriteString(target.RequestURI())
	head.WriteString(" HTTP/1.1\r\n")
	head.WriteString("Host: ")
	head.WriteString(host)
	head.WriteString("\r\n")
	for _, h := range headers {
		if strings.EqualFold(h.Key, "Host") {
			continue
		}
		head.WriteString(h.Key)
		head.WriteString(": ")
		head.WriteString(h.Value)
		head.WriteString("\r\n")
	}
	head.WriteString("\r\n")
	headersBytes := int64(head.Len())
	return mresponse.Size{
		HeadersBytes: headersBytes,
		BodyBytes:    int64(bodyLen),
		TotalBytes:   headersBytes + int64(bodyLen),
	}
}

// responseSize counts the status line and header block plus the body as read
// off the wire, before any Content-Encoding decoding.
func responseSize(resp *http.Response, bodyLen int) mresponse.Size {
	headersBytes := int64(len(resp.Proto) + 1 + len(resp.Status) + 2)
	for key, values := range resp.Header {
		for _, value := range values {
			headersBytes += int64(len(key) + 2 + len(value) + 2)
		}
	}
	headersBytes += 2
	return mresponse.Size{
		HeadersBytes: headersBytes,
		BodyBytes:    int64(bodyLen),
		TotalBytes:   headersBytes + int64(bodyLen),
	}
}

// phaseClock collects httptrace marks across every hop of an exchange.
// Connection phases keep their first occurrence so a redirect over a reused
// connection does not erase the setup cost; first-byte marks keep the last
// occurrence so they describe the final response.
type phaseClock struct {
	mu           sync.Mutex
	dnsStart     time.Time
	dnsDone      time.Time
	connectStart time.Time
	connectDone  time.Time
	tlsStart     time.Time
	tlsDone      time.Time
	wroteRequest time.Time
	firstByte    time.Time
	remoteAddr   string
}

func (p *phaseClock) markFirst(field *time.Time) {
	p.mu.Lock()
	if field.IsZero() {
		*field = time.Now()
	}
	p.mu.Unlock()
}

func (p *phaseClock) markLast(field *time.Time) {
	p.mu.Lock()
	*field = time.Now()
	p.mu.Unlock()
}

func (p *phaseClock) remote() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remoteAddr
}

func (p *phaseClock) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		DNSStart:          func(httptrace.DNSStartInfo) { p.markFirst(&p.dnsStart) },
		DNSDone:           func(httptrace.DNSDoneInfo) { p.markFirst(&p.dnsDone) },
		ConnectStart:      func(string, string) { p.markFirst(&p.connectStart) },
		ConnectDone:       func(string, string, error) { p.markFirst(&p.connectDone) },
		TLSHandshakeStart: func() { p.markFirst(&p.tlsStart) },
		TLSHandshakeDone:  func(tls.ConnectionState, error) { p.markFirst(&p.tlsDone) },
		WroteRequest:      func(httptrace.WroteRequestInfo) { p.markLast(&p.wroteRequest) },
		GotFirstResponseByte: func() {
			p.markLast(&p.firstByte)
		},
		GotConn: func(info httptrace.GotConnInfo) {
			p.mu.Lock()
			if info.Conn != nil {
				p.remoteAddr = info.Conn.RemoteAddr().String()
			}
			p.mu.Unlock()
		},
	}
}

func (p *phaseClock) timing(start, done time.Time) mresponse.Timing {
	p.mu.Lock()
	defer p.mu.Unlock()
	ms := func(from, to time.Time) float64 {
		if from.IsZero() || to.IsZero() || to.Before(from) {
			return 0
		}
		return float64(to.Sub(from)) / float64(time.Millisecond)
	}
	return mresponse.Timing{
		TotalMillis:           ms(start, done),
		DNSLookupMillis:       ms(p.dnsStart, p.dnsDone),
		TCPHandshakeMillis:    ms(p.connectStart, p.connectDone),
		TLSHandshakeMillis:    ms(p.tlsStart, p.tlsDone),
		TransferStartMillis:   ms(start, p.wroteRequest),
		TTFBMillis:            ms(start, p.firstByte),
		ContentDownloadMillis: ms(p.firstByte, done),
	}
}
