//nolint:revive // exported
package mresponse

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/reqforge/reqforge/pkg/model/mrequest"
)

// Renderer names a way the UI can present a response body.
type Renderer string

const (
	RendererRaw         Renderer = "raw"
	RendererJson        Renderer = "json"
	RendererXml         Renderer = "xml"
	RendererHtml        Renderer = "html"
	RendererHtmlPreview Renderer = "html_preview"
	RendererImage       Renderer = "image"
	RendererAudio       Renderer = "audio"
	RendererVideo       Renderer = "video"
	RendererPdf         Renderer = "pdf"
)

type Timing struct {
	TotalMillis           float64 `json:"total_ms"`
	DNSLookupMillis       float64 `json:"dns_lookup_ms"`
	TCPHandshakeMillis    float64 `json:"tcp_handshake_ms"`
	TLSHandshakeMillis    float64 `json:"tls_handshake_ms"`
	TransferStartMillis   float64 `json:"transfer_start_ms"`
	TTFBMillis            float64 `json:"ttfb_ms"`
	ContentDownloadMillis float64 `json:"content_download_ms"`
}

type Size struct {
	HeadersBytes int64 `json:"headers_bytes"`
	BodyBytes    int64 `json:"body_bytes"`
	TotalBytes   int64 `json:"total_bytes"`
}

type Redirect struct {
	Url    string `json:"url"`
	Status int    `json:"status"`
}

type Response struct {
	Status       int                `json:"status"`
	StatusText   string             `json:"status_text"`
	Headers      []mrequest.Header  `json:"headers"`
	Cookies      []mrequest.Cookie  `json:"cookies"`
	BodyBase64   string             `json:"body_base64"`
	Timing       Timing             `json:"timing"`
	RequestSize  Size               `json:"request_size"`
	ResponseSize Size               `json:"response_size"`
	Redirects    []Redirect         `json:"redirects"`
	RemoteAddr   string             `json:"remote_addr,omitempty"`
	HttpVersion  string             `json:"http_version"`
	Renderers    []Renderer         `json:"available_renderers"`
	ContentType  string             `json:"detected_content_type,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// DecodeBody decodes the base64 body. Invalid input fails soft to empty.
func DecodeBody(r Response) string {
	data, err := base64.StdEncoding.DecodeString(r.BodyBase64)
	if err != nil {
		return ""
	}
	return string(data)
}

func (r Response) GetHeader(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Key, name) {
			return h.Value, true
		}
	}
	return "", false
}

// StatusText resolves a human status line, with a plain fallback for codes
// the standard table does not know.
func StatusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("Status %d", code)
}

// DetectRenderers lists presentations that make sense for a body, by declared
// content type first and body sniffing second. Raw is always available.
func DetectRenderers(contentType string, body []byte) []Renderer {
	renderers := []Renderer{RendererRaw}
	ct := strings.ToLower(contentType)

	if strings.Contains(ct, "application/json") || strings.Contains(ct, "+json") {
		if json.Valid(body) {
			renderers = append(renderers, RendererJson)
		}
	} else if len(body) > 0 && (body[0] == '{' || body[0] == '[') {
		if json.Valid(body) {
			renderers = append(renderers, RendererJson)
		}
	}

	isHTML := strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
	isXML := strings.Contains(ct, "application/xml") || strings.Contains(ct, "text/xml") || strings.Contains(ct, "+xml")

	switch {
	case isHTML:
		renderers = append(renderers, RendererHtml, RendererHtmlPreview)
	case isXML:
		renderers = append(renderers, RendererXml)
	default:
		trimmed := strings.TrimSpace(string(body))
		if strings.HasPrefix(trimmed, "<?xml") {
			renderers = append(renderers, RendererXml)
		} else if strings.HasPrefix(trimmed, "<!DOCTYPE html") || strings.HasPrefix(trimmed, "<html") {
			renderers = append(renderers, RendererHtml, RendererHtmlPreview)
		}
	}

	for _, imageType := range []string{"image/png", "image/jpeg", "image/gif", "image/webp", "image/svg", "image/bmp", "image/ico"} {
		if strings.Contains(ct, imageType) {
			renderers = append(renderers, RendererImage)
			break
		}
	}

	if strings.Contains(ct, "application/pdf") {
		renderers = append(renderers, RendererPdf)
	}
	if strings.Contains(ct, "audio/") {
		renderers = append(renderers, RendererAudio)
	}
	if strings.Contains(ct, "video/") {
		renderers = append(renderers, RendererVideo)
	}

	return renderers
}
