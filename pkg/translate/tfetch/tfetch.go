//nolint:revive // exported
package tfetch

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/reqforge/reqforge/pkg/model/mrequest"
)

// Generate renders a JavaScript fetch snippet: a single fetch(url, options)
// call followed by a then/catch chain that logs the response text.
func Generate(req mrequest.Request) string {
	var b strings.Builder

	b.WriteString("fetch('")
	b.WriteString(escapeString(req.Url))
	b.WriteString("', {\n")
	b.WriteString("  method: '")
	b.WriteString(string(req.Method))
	b.WriteString("',\n")

	writeHeaders(&b, req.SnippetHeaders())

	if body, ok := bodyArgument(req.BodyOrNone()); ok {
		b.WriteString(",\n  body: ")
		b.WriteString(body)
	}
	b.WriteString("\n})\n")
	b.WriteString("  .then(response => response.text())\n")
	b.WriteString("  .then(data => console.log(data))\n")
	b.WriteString("  .catch(error => console.error(error));")

	return b.String()
}

func writeHeaders(b *strings.Builder, headers []mrequest.Header) {
	if len(headers) == 0 {
		b.WriteString("  headers: {}")
		return
	}
	b.WriteString("  headers: {\n")
	for i, header := range headers {
		b.WriteString("    '")
		b.WriteString(escapeString(header.Key))
		b.WriteString("': '")
		b.WriteString(escapeString(header.Value))
		b.WriteString("'")
		if i < len(headers)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("  }")
}

// bodyArgument renders the body option. Valid declared-JSON content embeds
// as JSON.stringify over an object literal; everything else embeds as a
// single-quoted string, form fields URL-encoded first.
func bodyArgument(body mrequest.Body) (string, bool) {
	switch b := body.(type) {
	case mrequest.BodyRaw:
		if strings.Contains(strings.ToLower(b.ContentType), "json") {
			if literal, ok := objectLiteral(b.Content); ok {
				return "JSON.stringify(" + literal + ")", true
			}
		}
		return "'" + escapeString(b.Content) + "'", true
	case mrequest.BodyForm:
		return "'" + encodeFormFields(b.Fields) + "'", true
	}
	return "", false
}

func objectLiteral(content string) (string, bool) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(content), "  ", "  "); err != nil {
		return "", false
	}
	return buf.String(), true
}

func encodeFormFields(fields []mrequest.FormField) string {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if field.Value == "" {
			continue
		}
		parts = append(parts, url.QueryEscape(field.Key)+"="+url.QueryEscape(field.Value))
	}
	return strings.Join(parts, "&")
}

func escapeString(value string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"'", "\\'",
		"\n", "\\n",
		"\r", "\\r",
	)
	return replacer.Replace(value)
}
