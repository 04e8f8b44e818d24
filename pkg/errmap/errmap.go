package errmap

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
)

// Code classifies high-level error categories for user-facing messages.
type Code string

const (
	CodeCanceled            Code = "canceled"
	CodeTimeout             Code = "timeout"
	CodeDNSError            Code = "dns_error"
	CodeInvalidURL          Code = "invalid_url"
	CodeUnsupportedScheme   Code = "unsupported_scheme"
	CodeConnectionRefused   Code = "connection_refused"
	CodeConnectionReset     Code = "connection_reset"
	CodeNetworkUnreachable  Code = "network_unreachable"
	CodeTooManyRedirects    Code = "too_many_redirects"
	CodeProxy               Code = "proxy_error"
	CodeTLSUnknownAuthority Code = "tls_unknown_authority"
	CodeTLSHostnameMismatch Code = "tls_hostname_mismatch"
	CodeTLSHandshake        Code = "tls_handshake"
	CodeIO                  Code = "io_error"
	CodeBadRequest          Code = "bad_request"
	CodeUnexpected          Code = "unexpected"
	CodeExpressionSyntax    Code = "expression_syntax"
	CodeExpressionRuntime   Code = "expression_runtime"
)

// ErrTooManyRedirects is the sentinel a redirect policy returns when the
// hop limit is hit; Map turns it into CodeTooManyRedirects.
var ErrTooManyRedirects = errors.New("too many redirects")

// Error carries a code and request context while preserving the original
// cause via Unwrap.
type Error struct {
	Code      Code
	Message   string
	Method    string
	URL       string
	Temporary bool
	Retryable bool
	cause     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = humanize(e.Code, e.cause)
	}
	if e.Method != "" && e.URL != "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.URL, msg)
	}
	if e.URL != "" {
		return fmt.Sprintf("%s: %s", e.URL, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// humanize produces a friendly message for a given code + cause.
func humanize(code Code, cause error) string {
	switch code {
	case CodeCanceled:
		return "request was canceled"
	case CodeTimeout:
		return "request timed out"
	case CodeDNSError:
		var dn *net.DNSError
		if errors.As(cause, &dn) {
			if dn.Name != "" {
				return fmt.Sprintf("DNS lookup failed for %q: %s", dn.Name, dn.Err)
			}
			return fmt.Sprintf("DNS error: %s", dn.Err)
		}
		return "DNS error"
	case CodeInvalidURL:
		return "invalid URL"
	case CodeUnsupportedScheme:
		return "unsupported protocol scheme"
	case CodeConnectionRefused:
		return "connection refused by remote host"
	case CodeConnectionReset:
		return "connection reset by peer"
	case CodeNetworkUnreachable:
		return "network unreachable"
	case CodeTooManyRedirects:
		return "too many redirects"
	case CodeProxy:
		return "proxy connection failed"
	case CodeTLSUnknownAuthority:
		return "TLS: unknown certificate authority"
	case CodeTLSHostnameMismatch:
		return "TLS: certificate does not match host"
	case CodeTLSHandshake:
		return "TLS handshake failed"
	case CodeIO:
		return "I/O error"
	case CodeExpressionSyntax:
		if cause != nil {
			return fmt.Sprintf("expression syntax error: %s", cause.Error())
		}
		return "expression syntax error"
	case CodeExpressionRuntime:
		if cause != nil {
			return fmt.Sprintf("expression evaluation error: %s", cause.Error())
		}
		return "expression evaluation error"
	default:
		if cause != nil {
			return cause.Error()
		}
		return "unexpected error"
	}
}

// Map converts an arbitrary error into an *Error with a best-effort code.
// It keeps the original error as the cause.
func Map(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err // already mapped
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Code: CodeCanceled, Retryable: true, cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeTimeout, Retryable: true, cause: err}
	}
	if errors.Is(err, ErrTooManyRedirects) {
		return &Error{Code: CodeTooManyRedirects, cause: err}
	}

	// url.Error often wraps timeouts, invalid URLs, etc.
	var uerr *url.Error
	if errors.As(err, &uerr) {
		var t net.Error
		if errors.As(uerr.Err, &t) && t.Timeout() {
			return &Error{Code: CodeTimeout, Temporary: t.Temporary(), Retryable: true, cause: err}
		}
		lower := strings.ToLower(uerr.Error())
		if strings.Contains(lower, "proxyconnect") {
			return &Error{Code: CodeProxy, Retryable: true, cause: err}
		}
		if strings.Contains(lower, "unsupported protocol scheme") {
			return &Error{Code: CodeUnsupportedScheme, cause: err}
		}
		if strings.Contains(lower, "stopped after") && strings.Contains(lower, "redirects") {
			return &Error{Code: CodeTooManyRedirects, cause: err}
		}
		if isInvalidURLMessage(lower) {
			return &Error{Code: CodeInvalidURL, cause: err}
		}
		err = uerr.Err
	}

	var dnserr *net.DNSError
	if errors.As(err, &dnserr) {
		return &Error{Code: CodeDNSError, Temporary: dnserr.IsTemporary, Retryable: dnserr.IsTemporary, cause: dnserr}
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &Error{Code: CodeTimeout, Temporary: nerr.Temporary(), Retryable: true, cause: nerr}
	}

	var operr *net.OpError
	if errors.As(err, &operr) {
		switch {
		case errors.Is(operr.Err, syscall.ECONNREFUSED):
			return &Error{Code: CodeConnectionRefused, Retryable: true, cause: err}
		case errors.Is(operr.Err, syscall.ECONNRESET):
			return &Error{Code: CodeConnectionReset, Temporary: true, Retryable: true, cause: err}
		case errors.Is(operr.Err, syscall.ENETUNREACH), errors.Is(operr.Err, syscall.EHOSTUNREACH):
			return &Error{Code: CodeNetworkUnreachable, Temporary: true, Retryable: true, cause: err}
		}
	}

	var ua *x509.UnknownAuthorityError
	if errors.As(err, &ua) {
		return &Error{Code: CodeTLSUnknownAuthority, cause: err}
	}
	var hn *x509.HostnameError
	if errors.As(err, &hn) {
		return &Error{Code: CodeTLSHostnameMismatch, cause: err}
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "handshake failure"), strings.Contains(lower, "tls:"):
		return &Error{Code: CodeTLSHandshake, cause: err}
	case strings.Contains(lower, "proxyconnect"):
		return &Error{Code: CodeProxy, Retryable: true, cause: err}
	case strings.Contains(lower, "stopped after") && strings.Contains(lower, "redirects"):
		return &Error{Code: CodeTooManyRedirects, cause: err}
	case strings.Contains(lower, "timeout"):
		return &Error{Code: CodeTimeout, cause: err}
	case strings.Contains(lower, "unsupported protocol scheme"):
		return &Error{Code: CodeUnsupportedScheme, cause: err}
	case strings.Contains(lower, "refused"):
		return &Error{Code: CodeConnectionRefused, cause: err}
	case strings.Contains(lower, "reset"):
		return &Error{Code: CodeConnectionReset, cause: err}
	}

	return &Error{Code: CodeUnexpected, cause: err}
}

func isInvalidURLMessage(message string) bool {
	return strings.Contains(message, "invalid url") ||
		strings.Contains(message, "invalid uri") ||
		strings.Contains(message, "malformed url") ||
		strings.Contains(message, "missing protocol scheme") ||
		strings.Contains(message, "invalid control character in url")
}

// New constructs an Error with the supplied code, message, and underlying cause.
func New(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// MapRequestError annotates the mapped error with request context.
func MapRequestError(method, urlStr string, err error) error {
	if err == nil {
		return nil
	}
	m := Map(err)
	var me *Error
	if errors.As(m, &me) {
		me.Method = method
		me.URL = urlStr
		return me
	}
	return m
}

// ToJSON marshals an error into {"code":"...","message":"..."}.
// If err is not an *Error, code defaults to "unknown".
func ToJSON(err error) string {
	type payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	p := payload{Code: "unknown"}
	if err != nil {
		p.Message = err.Error()
		var me *Error
		if errors.As(err, &me) {
			p.Code = string(me.Code)
		}
	}
	out, merr := json.Marshal(p)
	if merr != nil {
		return `{"code":"unknown","message":""}`
	}
	return string(out)
}

// Friendly returns a user-facing, action-oriented message string. It uses
// request context (method/URL) when available, and produces clearer
// phrasing than the raw error text.
func Friendly(err error) string {
	if err == nil {
		return ""
	}
	var me *Error
	if !errors.As(err, &me) {
		return err.Error()
	}

	ctx := ""
	if me.Method != "" && me.URL != "" {
		ctx = fmt.Sprintf(" (%s %s)", me.Method, me.URL)
	} else if me.URL != "" {
		ctx = fmt.Sprintf(" (%s)", me.URL)
	}

	switch me.Code {
	case CodeUnsupportedScheme:
		scheme := ""
		if u, perr := url.Parse(me.URL); perr == nil {
			scheme = u.Scheme
		} else if i := strings.Index(me.URL, "://"); i > 0 {
			scheme = me.URL[:i]
		}
		suggest := schemeSuggestion(scheme)
		if scheme == "" {
			scheme = "<none>"
		}
		if suggest != "" {
			return fmt.Sprintf("Unsupported URL scheme '%s'%s. Did you mean '%s'?", scheme, ctx, suggest)
		}
		return fmt.Sprintf("Unsupported URL scheme '%s'%s.", scheme, ctx)
	case CodeInvalidURL:
		return fmt.Sprintf("The URL is invalid%s.", ctx)
	case CodeTimeout:
		return fmt.Sprintf("Request timed out%s.", ctx)
	case CodeCanceled:
		return "Request was canceled."
	case CodeDNSError:
		host := ""
		if u, perr := url.Parse(me.URL); perr == nil {
			host = u.Hostname()
		}
		if host != "" {
			return fmt.Sprintf("Could not resolve host '%s'%s.", host, ctx)
		}
		return fmt.Sprintf("Could not resolve hostname%s.", ctx)
	case CodeConnectionRefused:
		return fmt.Sprintf("Could not connect: connection refused%s.", ctx)
	case CodeConnectionReset:
		return fmt.Sprintf("Connection reset by peer%s.", ctx)
	case CodeNetworkUnreachable:
		return fmt.Sprintf("Network unreachable%s.", ctx)
	case CodeTooManyRedirects:
		return fmt.Sprintf("Too many redirects%s.", ctx)
	case CodeProxy:
		return fmt.Sprintf("Could not connect to the proxy%s.", ctx)
	case CodeTLSUnknownAuthority:
		return fmt.Sprintf("TLS certificate is not trusted by your system%s.", ctx)
	case CodeTLSHostnameMismatch:
		return fmt.Sprintf("TLS certificate does not match the requested host%s.", ctx)
	case CodeTLSHandshake:
		return fmt.Sprintf("TLS handshake failed%s.", ctx)
	case CodeIO:
		return fmt.Sprintf("I/O error%s.", ctx)
	default:
		if s := me.Error(); s != "" {
			return s
		}
		return "Unexpected error."
	}
}

// schemeSuggestion guesses the scheme the user meant for common typo
// families like htp/htps/httpss.
func schemeSuggestion(scheme string) string {
	if scheme == "" || !strings.HasPrefix(scheme, "ht") {
		return ""
	}
	if strings.Contains(scheme, "s") {
		return "https"
	}
	return "http"
}
