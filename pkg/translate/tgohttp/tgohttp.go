//nolint:revive // exported
package tgohttp

import (
	"net/url"
	"strings"

	"github.com/reqforge/reqforge/pkg/model/mrequest"
)

// Generate renders a runnable package main program built on net/http. The
// body rides in a strings.NewReader and is written verbatim: a backquoted
// raw literal when possible, a double-quoted one when the content itself
// carries a backtick.
func Generate(req mrequest.Request) string {
	payload, hasBody := payloadLiteral(req.BodyOrNone())

	var b strings.Builder
	b.WriteString("package main\n\nimport (\n")
	b.WriteString("\t\"fmt\"\n")
	b.WriteString("\t\"io\"\n")
	b.WriteString("\t\"net/http\"\n")
	if hasBody {
		b.WriteString("\t\"strings\"\n")
	}
	b.WriteString(")\n\nfunc main() {\n\n")

	b.WriteString("\turl := ")
	b.WriteString(goString(req.Url))
	b.WriteString("\n")
	b.WriteString("\tmethod := ")
	b.WriteString(goString(string(req.Method)))
	b.WriteString("\n\n")

	reader := "nil"
	if hasBody {
		b.WriteString("\tpayload := strings.NewReader(")
		b.WriteString(payload)
		b.WriteString(")\n\n")
		reader = "payload"
	}

	b.WriteString("\tclient := &http.Client{}\n")
	b.WriteString("\treq, err := http.NewRequest(method, url, ")
	b.WriteString(reader)
	b.WriteString(")\n")
	b.WriteString("\tif err != nil {\n\t\tfmt.Println(err)\n\t\treturn\n\t}\n")

	for _, header := range req.SnippetHeaders() {
		b.WriteString("\treq.Header.Add(")
		b.WriteString(goString(header.Key))
		b.WriteString(", ")
		b.WriteString(goString(header.Value))
		b.WriteString(")\n")
	}

	b.WriteString("\n\tres, err := client.Do(req)\n")
	b.WriteString("\tif err != nil {\n\t\tfmt.Println(err)\n\t\treturn\n\t}\n")
	b.WriteString("\tdefer res.Body.Close()\n\n")
	b.WriteString("\tbody, err := io.ReadAll(res.Body)\n")
	b.WriteString("\tif err != nil {\n\t\tfmt.Println(err)\n\t\treturn\n\t}\n")
	b.WriteString("\tfmt.Println(string(body))\n}")

	return b.String()
}

func payloadLiteral(body mrequest.Body) (string, bool) {
	switch b := body.(type) {
	case mrequest.BodyRaw:
		return goLiteral(b.Content), true
	case mrequest.BodyForm:
		return goLiteral(encodeFormFields(b.Fields)), true
	}
	return "", false
}

// goLiteral prefers a raw string so the payload stays readable; a payload
// containing a backtick cannot be raw-quoted and falls back to escaping.
func goLiteral(content string) string {
	if !strings.Contains(content, "`") {
		return "`" + content + "`"
	}
	return goString(content)
}

func goString(value string) string {
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
