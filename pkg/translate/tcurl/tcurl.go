//nolint:revive // exported
package tcurl

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/goccy/go-json"

	"github.com/reqforge/reqforge/pkg/model/mrequest"
)

// Regular expressions for the supported curl flag families. Value positions
// are ordered capture groups: single-quoted, double-quoted, then bare where
// a bare form is accepted.
var (
	// URL extraction rules, tried in order; the first hit wins.
	quotedURLPattern = regexp.MustCompile(`^curl\s+(?:'([^']+)'|"([^"]+)")`)
	bareURLPattern   = regexp.MustCompile(`^curl\s+([^\s'"]+)`)
	anyURLPattern    = regexp.MustCompile(`https?://[^\s'"]+`)

	methodPattern = regexp.MustCompile(`(?i)(?:-X|--request)\s+(?:'([A-Za-z]+)'|"([A-Za-z]+)"|([A-Za-z]+))`)

	headerPattern = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^']*)'|"([^"]*)")`)

	// Body flags in fixed priority order; only the first matching family
	// is honored, later ones are ignored.
	dataPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:^|\s)-d\s+(?:'([^']*)'|"([^"]*)")`),
		regexp.MustCompile(`(?:^|\s)--data\s+(?:'([^']*)'|"([^"]*)")`),
		regexp.MustCompile(`(?:^|\s)--data-raw\s+(?:'([^']*)'|"([^"]*)")`),
	}

	userPattern = regexp.MustCompile(`(?:^|\s)(?:-u|--user)\s+(?:'([^']*)'|"([^"]*)"|([^\s'"]+))`)
)

// Parse extracts whatever it can recognize from a curl command line into a
// Request. It never fails: fields the heuristics cannot find keep their
// defaults, so the result is always renderable. There is no shell-level
// tokenization; quoting inside quotes is not understood.
func Parse(command string) mrequest.Request {
	normalized := normalize(command)
	req := mrequest.Default("", mrequest.MethodGet)

	req.Url = extractURL(normalized)

	method, explicit := extractMethod(normalized)
	req.Method = method

	for _, header := range extractHeaders(normalized) {
		req.SetHeader(header.Key, header.Value)
	}

	if content, ok := extractData(normalized); ok {
		req.Body = mrequest.RawBody(content, "")
		if !explicit && req.Method == mrequest.MethodGet {
			req.Method = mrequest.MethodPost
		}
	}

	if username, password, ok := extractBasicAuth(normalized); ok {
		req.Auth = mrequest.BasicAuth(username, password)
	}

	for _, token := range strings.Fields(normalized) {
		switch token {
		case "-k", "--insecure":
			req.VerifySsl = false
		case "-L", "--location":
			req.FollowRedirects = true
		}
	}

	return req
}

// normalize joins backslash line continuations and collapses whitespace
// runs to single spaces.
func normalize(command string) string {
	command = strings.ReplaceAll(command, "\\\r\n", " ")
	command = strings.ReplaceAll(command, "\\\n", " ")
	return strings.Join(strings.Fields(command), " ")
}

func extractURL(curlStr string) string {
	if matches := quotedURLPattern.FindStringSubmatch(curlStr); matches != nil {
		if matches[1] != "" {
			return matches[1]
		}
		return matches[2]
	}

	if matches := bareURLPattern.FindStringSubmatch(curlStr); matches != nil {
		token := matches[1]
		if strings.HasPrefix(token, "http") || strings.HasPrefix(token, "/") {
			return token
		}
	}

	return anyURLPattern.FindString(curlStr)
}

func extractMethod(curlStr string) (mrequest.Method, bool) {
	matches := methodPattern.FindStringSubmatch(curlStr)
	if matches == nil {
		return mrequest.MethodGet, false
	}
	for _, group := range matches[1:] {
		if group != "" {
			// Keep the uppercased word even outside the known set.
			method, _ := mrequest.ParseMethod(group)
			return method, true
		}
	}
	return mrequest.MethodGet, false
}

func extractHeaders(curlStr string) []mrequest.Header {
	var headers []mrequest.Header
	for _, match := range headerPattern.FindAllStringSubmatch(curlStr, -1) {
		content := match[1]
		if content == "" {
			content = match[2]
		}
		name, value, found := strings.Cut(content, ":")
		if !found {
			continue
		}
		headers = append(headers, mrequest.Header{
			Key:   strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	return headers
}

func extractData(curlStr string) (string, bool) {
	for _, pattern := range dataPatterns {
		matches := pattern.FindStringSubmatch(curlStr)
		if matches == nil {
			continue
		}
		if matches[1] != "" {
			return matches[1], true
		}
		return matches[2], true
	}
	return "", false
}

func extractBasicAuth(curlStr string) (string, string, bool) {
	matches := userPattern.FindStringSubmatch(curlStr)
	if matches == nil {
		return "", "", false
	}
	var credentials string
	for _, group := range matches[1:] {
		if group != "" {
			credentials = group
			break
		}
	}
	username, password, _ := strings.Cut(credentials, ":")
	return username, password, true
}

// Build renders the curl snippet for a request: one --request, one --url,
// one --header per header and at most one --data line, joined with
// backslash-newline continuations. Output is deterministic.
func Build(req mrequest.Request) string {
	lines := []string{"curl --request " + string(req.Method)}
	lines = append(lines, "--url "+singleQuote(req.Url))

	for _, header := range req.SnippetHeaders() {
		lines = append(lines, "--header "+singleQuote(header.Key+": "+header.Value))
	}

	if data, ok := dataLine(req.BodyOrNone()); ok {
		lines = append(lines, "--data "+data)
	}

	return strings.Join(lines, " \\\n  ")
}

func dataLine(body mrequest.Body) (string, bool) {
	switch b := body.(type) {
	case mrequest.BodyRaw:
		content := b.Content
		if strings.Contains(strings.ToLower(b.ContentType), "json") {
			if pretty, err := indentJSON(content); err == nil {
				content = pretty
			}
		}
		return singleQuoteEscaped(content), true
	case mrequest.BodyForm:
		return singleQuote(encodeFormFields(b.Fields)), true
	}
	return "", false
}

func indentJSON(content string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(content), "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
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

func singleQuote(value string) string {
	return "'" + value + "'"
}

// singleQuoteEscaped wraps raw body content, replacing embedded single
// quotes with the shell-safe '\'' sequence.
func singleQuoteEscaped(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
