//nolint:revive // exported
package treqwest

import (
	"net/url"
	"strings"

	"github.com/reqforge/reqforge/pkg/model/mrequest"
)

// Generate renders an async Rust program using reqwest and tokio. Standard
// methods map to builder shortcuts, anything else goes through
// reqwest::Method so the verb survives verbatim. Bodies ride in raw string
// literals with however many hashes the content forces.
func Generate(req mrequest.Request) string {
	var b strings.Builder

	b.WriteString("#[tokio::main]\n")
	b.WriteString("async fn main() -> Result<(), reqwest::Error> {\n")
	b.WriteString("    let client = reqwest::Client::new();\n")
	b.WriteString("    let response = client\n")
	b.WriteString("        ")
	b.WriteString(methodCall(req))
	b.WriteString("\n")

	for _, header := range req.SnippetHeaders() {
		b.WriteString("        .header(")
		b.WriteString(rustString(header.Key))
		b.WriteString(", ")
		b.WriteString(rustString(header.Value))
		b.WriteString(")\n")
	}

	if body, ok := bodyLiteral(req.BodyOrNone()); ok {
		b.WriteString("        .body(")
		b.WriteString(body)
		b.WriteString(")\n")
	}

	b.WriteString("        .send()\n")
	b.WriteString("        .await?;\n\n")
	b.WriteString("    let body = response.text().await?;\n")
	b.WriteString("    println!(\"{}\", body);\n\n")
	b.WriteString("    Ok(())\n}")

	return b.String()
}

func methodCall(req mrequest.Request) string {
	target := rustString(req.Url)
	switch req.Method {
	case mrequest.MethodGet:
		return ".get(" + target + ")"
	case mrequest.MethodPost:
		return ".post(" + target + ")"
	case mrequest.MethodPut:
		return ".put(" + target + ")"
	case mrequest.MethodPatch:
		return ".patch(" + target + ")"
	case mrequest.MethodDelete:
		return ".delete(" + target + ")"
	case mrequest.MethodHead:
		return ".head(" + target + ")"
	case mrequest.MethodOptions:
		return ".request(reqwest::Method::OPTIONS, " + target + ")"
	default:
		verb := rustString(string(req.Method))
		return ".request(reqwest::Method::from_bytes(b" + verb + ").unwrap(), " + target + ")"
	}
}

func bodyLiteral(body mrequest.Body) (string, bool) {
	switch b := body.(type) {
	case mrequest.BodyRaw:
		return rawLiteral(b.Content), true
	case mrequest.BodyForm:
		return rawLiteral(encodeFormFields(b.Fields)), true
	}
	return "", false
}

// rawLiteral wraps content in a Rust raw string, growing the hash fence
// until no terminator sequence appears inside the content.
func rawLiteral(content string) string {
	hashes := "#"
	for strings.Contains(content, "\""+hashes) {
		hashes += "#"
	}
	return "r" + hashes + "\"" + content + "\"" + hashes
}

func rustString(value string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"\"", "\\\"",
		"\n", "\\n",
		"\r", "\\r",
		"\t", "\\t",
	)
	return "\"" + replacer.Replace(value) + "\""
}

func encodeFormFields(fields []mrequest.FormField) string {
	pairs := make([]string, 0, len(fields))
	for _, field := range fields {
		if field.Value == "" {
			continue
		}
		pairs = append(pairs, url.QueryEscape(field.Key)+"="+url.QueryEscape(field.Value))
	}
	return strings.Join(pairs, "&")
}
