//nolint:revive // exported
package trequests

import (
	"strings"

	"github.com/goccy/go-json"

	"github.com/reqforge/reqforge/pkg/model/mrequest"
)

// Generate renders a Python requests snippet: headers and payload as
// pretty-printed 4-space literals, a single requests.request call and a
// print of the response text. Parseable declared-JSON payloads become
// Python literals passed via json=, everything else goes through data=.
func Generate(req mrequest.Request) string {
	var b strings.Builder

	b.WriteString("import requests\n\n")
	b.WriteString("url = ")
	b.WriteString(pyString(req.Url))
	b.WriteString("\n\n")

	b.WriteString("headers = ")
	writeHeaderDict(&b, req.SnippetHeaders())
	b.WriteString("\n")

	payload, kwarg := payloadLiteral(req.BodyOrNone())
	if kwarg != "" {
		b.WriteString("\npayload = ")
		b.WriteString(payload)
		b.WriteString("\n")
	}

	b.WriteString("\nresponse = requests.request(")
	b.WriteString(pyString(string(req.Method)))
	b.WriteString(", url, headers=headers")
	if kwarg != "" {
		b.WriteString(", ")
		b.WriteString(kwarg)
		b.WriteString("=payload")
	}
	b.WriteString(")\n\n")
	b.WriteString("print(response.text)")

	return b.String()
}

func writeHeaderDict(b *strings.Builder, headers []mrequest.Header) {
	if len(headers) == 0 {
		b.WriteString("{}")
		return
	}
	b.WriteString("{\n")
	for i, header := range headers {
		b.WriteString("    ")
		b.WriteString(pyString(header.Key))
		b.WriteString(": ")
		b.WriteString(pyString(header.Value))
		if i < len(headers)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
}

// payloadLiteral returns the payload literal and the request kwarg carrying
// it: json= for declared-JSON content that parses, data= otherwise. An
// empty kwarg means no payload block at all.
func payloadLiteral(body mrequest.Body) (string, string) {
	switch b := body.(type) {
	case mrequest.BodyRaw:
		if strings.Contains(strings.ToLower(b.ContentType), "json") {
			if literal, ok := pythonLiteral(b.Content); ok {
				return literal, "json"
			}
		}
		return pyString(b.Content), "data"
	case mrequest.BodyForm:
		return formDict(b.Fields), "data"
	}
	return "", ""
}

func formDict(fields []mrequest.FormField) string {
	kept := make([]mrequest.FormField, 0, len(fields))
	for _, field := range fields {
		if field.Value == "" {
			continue
		}
		kept = append(kept, field)
	}
	if len(kept) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{\n")
	for i, field := range kept {
		b.WriteString("    ")
		b.WriteString(pyString(field.Key))
		b.WriteString(": ")
		b.WriteString(pyString(field.Value))
		if i < len(kept)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// pythonLiteral converts a JSON document into an equivalent Python literal
// with 4-space indentation, preserving object key order. Reports false when
// the content is not valid JSON.
func pythonLiteral(content string) (string, bool) {
	if !json.Valid([]byte(content)) {
		return "", false
	}
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()
	value, err := decodeOrdered(dec)
	if err != nil {
		return "", false
	}
	var b strings.Builder
	writePython(&b, value, 0)
	return b.String(), true
}

// orderedObject keeps JSON object members in document order; Go maps would
// shuffle them and break byte-identical rendering.
type orderedObject struct {
	keys   []string
	values []any
}

func decodeOrdered(dec *json.Decoder) (any, error) {
	token, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := token.(json.Delim)
	if !ok {
		return token, nil
	}
	switch delim {
	case '{':
		obj := &orderedObject{}
		for dec.More() {
			keyToken, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyToken.(string)
			value, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			obj.keys = append(obj.keys, key)
			obj.values = append(obj.values, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	default: // '['
		arr := []any{}
		for dec.More() {
			value, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
}

func writePython(b *strings.Builder, value any, depth int) {
	closeIndent := strings.Repeat("    ", depth)
	itemIndent := strings.Repeat("    ", depth+1)

	switch v := value.(type) {
	case *orderedObject:
		if len(v.keys) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for i, key := range v.keys {
			b.WriteString(itemIndent)
			b.WriteString(pyString(key))
			b.WriteString(": ")
			writePython(b, v.values[i], depth+1)
			if i < len(v.keys)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(closeIndent)
		b.WriteString("}")
	case []any:
		if len(v) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, element := range v {
			b.WriteString(itemIndent)
			writePython(b, element, depth+1)
			if i < len(v)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(closeIndent)
		b.WriteString("]")
	case string:
		b.WriteString(pyString(v))
	case json.Number:
		b.WriteString(v.String())
	case bool:
		if v {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case nil:
		b.WriteString("None")
	}
}

func pyString(value string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"\"", "\\\"",
		"\n", "\\n",
		"\r", "\\r",
		"\t", "\\t",
	)
	return "\"" + replacer.Replace(value) + "\""
}
