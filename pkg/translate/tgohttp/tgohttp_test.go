package tgohttp_test

import (
	"strings"
	"testing"

	"github.com/reqforge/reqforge/pkg/model/mrequest"
	"github.com/reqforge/reqforge/pkg/translate/tgohttp"
)

func TestGenerateWithBody(t *testing.T) {
	req := mrequest.Default("https://api.example.com/items", mrequest.MethodPost)
	req.SetHeader("Accept", "application/json")
	req.Body = mrequest.RawBody(`{"a":1}`, "application/json")

	want := strings.Join([]string{
		"package main",
		"",
		"import (",
		"\t\"fmt\"",
		"\t\"io\"",
		"\t\"net/http\"",
		"\t\"strings\"",
		")",
		"",
		"func main() {",
		"",
		"\turl := \"https://api.example.com/items\"",
		"\tmethod := \"POST\"",
		"",
		"\tpayload := strings.NewReader(`{\"a\":1}`)",
		"",
		"\tclient := &http.Client{}",
		"\treq, err := http.NewRequest(method, url, payload)",
		"\tif err != nil {",
		"\t\tfmt.Println(err)",
		"\t\treturn",
		"\t}",
		"\treq.Header.Add(\"Accept\", \"application/json\")",
		"\treq.Header.Add(\"Content-Type\", \"application/json\")",
		"",
		"\tres, err := client.Do(req)",
		"\tif err != nil {",
		"\t\tfmt.Println(err)",
		"\t\treturn",
		"\t}",
		"\tdefer res.Body.Close()",
		"",
		"\tbody, err := io.ReadAll(res.Body)",
		"\tif err != nil {",
		"\t\tfmt.Println(err)",
		"\t\treturn",
		"\t}",
		"\tfmt.Println(string(body))",
		"}",
	}, "\n")

	got := tgohttp.Generate(req)
	if got != want {
		t.Errorf("snippet mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateNoBody(t *testing.T) {
	req := mrequest.Default("https://example.com", mrequest.MethodGet)

	got := tgohttp.Generate(req)
	if !strings.Contains(got, "http.NewRequest(method, url, nil)") {
		t.Errorf("bodyless request should pass nil, got:\n%s", got)
	}
	if strings.Contains(got, "\t\"strings\"") {
		t.Errorf("strings should not be imported without a payload, got:\n%s", got)
	}
	if strings.Contains(got, "payload") {
		t.Errorf("no payload variable expected, got:\n%s", got)
	}
}

func TestGenerateBacktickBodyFallsBackToQuoting(t *testing.T) {
	req := mrequest.Default("https://example.com", mrequest.MethodPost)
	req.Body = mrequest.RawBody("a `b`", "text/plain")

	got := tgohttp.Generate(req)
	if !strings.Contains(got, "strings.NewReader(\"a `b`\")") {
		t.Errorf("backtick content should be double-quoted, got:\n%s", got)
	}
}

func TestGenerateFormBody(t *testing.T) {
	req := mrequest.Default("https://example.com/login", mrequest.MethodPost)
	req.Body = mrequest.FormBody([]mrequest.FormField{
		{Key: "a", Value: "1"},
		{Key: "b", Value: ""},
		{Key: "c", Value: "x y"},
	})

	got := tgohttp.Generate(req)
	if !strings.Contains(got, "strings.NewReader(`a=1&c=x+y`)") {
		t.Errorf("form body should be urlencoded with empty values skipped, got:\n%s", got)
	}
	if !strings.Contains(got, "req.Header.Add(\"Content-Type\", \"application/x-www-form-urlencoded\")") {
		t.Errorf("form body should derive its content type header, got:\n%s", got)
	}
}

func TestGenerateHeaderPrecedence(t *testing.T) {
	req := mrequest.Default("https://example.com", mrequest.MethodPost)
	req.SetHeader("Content-Type", "text/plain")
	req.Body = mrequest.RawBody("{}", "application/json")

	got := tgohttp.Generate(req)
	if n := strings.Count(got, "Content-Type"); n != 1 {
		t.Errorf("want exactly one Content-Type header, got %d:\n%s", n, got)
	}
	if !strings.Contains(got, "req.Header.Add(\"Content-Type\", \"text/plain\")") {
		t.Errorf("caller header should win, got:\n%s", got)
	}
}
