//nolint:revive // exported
package tguzzle

import (
	"strings"

	"github.com/reqforge/reqforge/pkg/model/mrequest"
)

// Generate renders a PHP snippet against GuzzleHttp\Client. Headers and
// body land in the request options array; form bodies use form_params so
// Guzzle handles the encoding. A request with no options at all keeps the
// two-argument call.
func Generate(req mrequest.Request) string {
	var b strings.Builder

	b.WriteString("<?php\n\n")
	b.WriteString("require 'vendor/autoload.php';\n\n")
	b.WriteString("$client = new GuzzleHttp\\Client();\n\n")
	b.WriteString("$response = $client->request(")
	b.WriteString(phpString(string(req.Method)))
	b.WriteString(", ")
	b.WriteString(phpString(req.Url))

	options := optionEntries(req)
	if len(options) == 0 {
		b.WriteString(");\n\n")
	} else {
		b.WriteString(", [\n")
		b.WriteString(strings.Join(options, ",\n"))
		b.WriteString("\n]);\n\n")
	}

	b.WriteString("echo $response->getBody();")
	return b.String()
}

func optionEntries(req mrequest.Request) []string {
	var entries []string
	if headers := req.SnippetHeaders(); len(headers) > 0 {
		var e strings.Builder
		e.WriteString("    'headers' => [\n")
		for i, header := range headers {
			e.WriteString("        ")
			e.WriteString(phpString(header.Key))
			e.WriteString(" => ")
			e.WriteString(phpString(header.Value))
			if i < len(headers)-1 {
				e.WriteString(",")
			}
			e.WriteString("\n")
		}
		e.WriteString("    ]")
		entries = append(entries, e.String())
	}

	switch body := req.BodyOrNone().(type) {
	case mrequest.BodyRaw:
		entries = append(entries, "    'body' => "+phpString(body.Content))
	case mrequest.BodyForm:
		kept := make([]mrequest.FormField, 0, len(body.Fields))
		for _, field := range body.Fields {
			if field.Value == "" {
				continue
			}
			kept = append(kept, field)
		}
		var e strings.Builder
		e.WriteString("    'form_params' => [")
		if len(kept) > 0 {
			e.WriteString("\n")
			for i, field := range kept {
				e.WriteString("        ")
				e.WriteString(phpString(field.Key))
				e.WriteString(" => ")
				e.WriteString(phpString(field.Value))
				if i < len(kept)-1 {
					e.WriteString(",")
				}
				e.WriteString("\n")
			}
			e.WriteString("    ")
		}
		e.WriteString("]")
		entries = append(entries, e.String())
	}
	return entries
}

// phpString single-quotes a value; only backslashes and quotes need
// escaping inside PHP single-quoted strings.
func phpString(value string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"'", "\\'",
	)
	return "'" + replacer.Replace(value) + "'"
}
