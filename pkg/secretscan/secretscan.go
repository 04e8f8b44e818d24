//nolint:revive // exported
package secretscan

import (
	"regexp"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/reqforge/reqforge/pkg/model/mrequest"
)

// Kind labels the family of a detected secret.
type Kind string

const (
	KindAuthorization    Kind = "authorization_header"
	KindBasicCredentials Kind = "basic_credentials"
	KindBearerToken      Kind = "bearer_token"
	KindJWT              Kind = "jwt"
	KindAWSAccessKey     Kind = "aws_access_key"
	KindGoogleAPIKey     Kind = "google_api_key"
	KindGitHubToken      Kind = "github_token"
	KindSlackToken       Kind = "slack_token"
	KindStripeKey        Kind = "stripe_key"
	KindPrivateKey       Kind = "private_key"
	KindGenericAPIKey    Kind = "generic_api_key"
)

// Finding is one detected secret with enough context to point at it
// without repeating the full value.
type Finding struct {
	Kind     Kind   `json:"kind"`
	Location string `json:"location"`
	Masked   string `json:"masked"`
}

var rules = []struct {
	kind    Kind
	pattern *regexp.Regexp
}{
	{KindAWSAccessKey, regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`)},
	{KindGoogleAPIKey, regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{35}\b`)},
	{KindGitHubToken, regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36,251}\b`)},
	{KindSlackToken, regexp.MustCompile(`\bxox[baprs]-[0-9A-Za-z-]{10,}\b`)},
	{KindStripeKey, regexp.MustCompile(`\b[sr]k_(?:live|test)_[0-9a-zA-Z]{16,}\b`)},
	{KindPrivateKey, regexp.MustCompile(`-----BEGIN (?:RSA |EC |OPENSSH |DSA |PGP )?PRIVATE KEY-----`)},
	{KindBasicCredentials, regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.-]*://[^/\s:@]+:[^/\s@]+@`)},
}

// jwtPattern is deliberately loose; candidates are confirmed by actually
// parsing the token before they count as findings.
var jwtPattern = regexp.MustCompile(`\beyJ[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]*`)

var jwtParser = jwt.NewParser()

func isJWT(candidate string) bool {
	_, _, err := jwtParser.ParseUnverified(candidate, jwt.MapClaims{})
	return err == nil
}

// Mask hides the middle of a secret, keeping just enough to recognize it.
func Mask(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "****" + value[len(value)-2:]
}

// ScanText finds secrets in an arbitrary string.
func ScanText(location, text string) []Finding {
	var findings []Finding
	for _, rule := range rules {
		for _, match := range rule.pattern.FindAllString(text, -1) {
			findings = append(findings, Finding{Kind: rule.kind, Location: location, Masked: Mask(match)})
		}
	}
	for _, candidate := range jwtPattern.FindAllString(text, -1) {
		if isJWT(candidate) {
			findings = append(findings, Finding{Kind: KindJWT, Location: location, Masked: Mask(candidate)})
		}
	}
	return findings
}

// ScanRequest checks the places a request can leak credentials: auth
// config, headers, url, and body.
func ScanRequest(req mrequest.Request) []Finding {
	var findings []Finding

	switch auth := req.AuthOrNone().(type) {
	case mrequest.AuthBasic:
		if auth.Username != "" || auth.Password != "" {
			findings = append(findings, Finding{Kind: KindBasicCredentials, Location: "auth", Masked: Mask(auth.Password)})
		}
	case mrequest.AuthBearer:
		if auth.Token != "" {
			kind := KindBearerToken
			if isJWT(auth.Token) {
				kind = KindJWT
			}
			findings = append(findings, Finding{Kind: kind, Location: "auth", Masked: Mask(auth.Token)})
		}
	}

	for _, header := range req.Headers {
		location := "header " + header.Key
		if strings.EqualFold(header.Key, "Authorization") && header.Value != "" {
			findings = append(findings, Finding{Kind: KindAuthorization, Location: location, Masked: Mask(header.Value)})
		} else if isAPIKeyHeader(header.Key) && header.Value != "" {
			findings = append(findings, Finding{Kind: KindGenericAPIKey, Location: location, Masked: Mask(header.Value)})
		}
		findings = append(findings, ScanText(location, header.Value)...)
	}

	findings = append(findings, ScanText("url", req.Url)...)

	switch body := req.BodyOrNone().(type) {
	case mrequest.BodyRaw:
		findings = append(findings, ScanText("body", body.Content)...)
	case mrequest.BodyForm:
		for _, field := range body.Fields {
			findings = append(findings, ScanText("form field "+field.Key, field.Value)...)
		}
	}

	return findings
}

func isAPIKeyHeader(name string) bool {
	switch strings.ToLower(name) {
	case "x-api-key", "api-key", "x-auth-token", "x-access-token":
		return true
	}
	return false
}

// Redact returns a copy of the request with credential material replaced
// by masked placeholders. The request keeps its shape so it still renders.
func Redact(req mrequest.Request) mrequest.Request {
	out := req
	out.Headers = make([]mrequest.Header, len(req.Headers))
	copy(out.Headers, req.Headers)
	for i := range out.Headers {
		if strings.EqualFold(out.Headers[i].Key, "Authorization") || isAPIKeyHeader(out.Headers[i].Key) {
			out.Headers[i].Value = Mask(out.Headers[i].Value)
		}
	}
	switch auth := req.AuthOrNone().(type) {
	case mrequest.AuthBasic:
		out.Auth = mrequest.AuthBasic{Username: auth.Username, Password: Mask(auth.Password)}
	case mrequest.AuthBearer:
		out.Auth = mrequest.AuthBearer{Token: Mask(auth.Token)}
	}
	return out
}
