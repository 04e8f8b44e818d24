package treqwest_test

import (
	"strings"
	"testing"

	"github.com/reqforge/reqforge/pkg/model/mrequest"
	"github.com/reqforge/reqforge/pkg/translate/treqwest"
)

func TestGenerateWithBody(t *testing.T) {
	req := mrequest.Default("https://api.example.com/items", mrequest.MethodPost)
	req.SetHeader("Accept", "application/json")
	req.Body = mrequest.RawBody(`{"a":1}`, "application/json")

	want := `#[tokio::main]
async fn main() -> Result<(), reqwest::Error> {
    let client = reqwest::Client::new();
    let response = client
        .post("https://api.example.com/items")
        .header("Accept", "application/json")
        .header("Content-Type", "application/json")
        .body(r#"{"a":1}"#)
        .send()
        .await?;

    let body = response.text().await?;
    println!("{}", body);

    Ok(())
}`

	got := treqwest.Generate(req)
	if got != want {
		t.Errorf("snippet mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateMethodMapping(t *testing.T) {
	tests := []struct {
		name   string
		method mrequest.Method
		want   string
	}{
		{"get shortcut", mrequest.MethodGet, `.get("https://example.com")`},
		{"delete shortcut", mrequest.MethodDelete, `.delete("https://example.com")`},
		{"options has no shortcut", mrequest.MethodOptions, `.request(reqwest::Method::OPTIONS, "https://example.com")`},
		{"custom verb survives", mrequest.Method("PURGE"), `.request(reqwest::Method::from_bytes(b"PURGE").unwrap(), "https://example.com")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mrequest.Default("https://example.com", tt.method)
			got := treqwest.Generate(req)
			if !strings.Contains(got, tt.want) {
				t.Errorf("want %q in snippet, got:\n%s", tt.want, got)
			}
		})
	}
}

func TestGenerateRawLiteralHashEscalation(t *testing.T) {
	req := mrequest.Default("https://example.com", mrequest.MethodPost)
	req.Body = mrequest.RawBody(`tricky "# content`, "text/plain")

	got := treqwest.Generate(req)
	if !strings.Contains(got, `.body(r##"tricky "# content"##)`) {
		t.Errorf("hash fence should grow past the embedded terminator, got:\n%s", got)
	}
}

func TestGenerateFormBody(t *testing.T) {
	req := mrequest.Default("https://example.com/login", mrequest.MethodPost)
	req.Body = mrequest.FormBody([]mrequest.FormField{
		{Key: "a", Value: "1"},
		{Key: "b", Value: ""},
		{Key: "c", Value: "x y"},
	})

	got := treqwest.Generate(req)
	if !strings.Contains(got, `.body(r#"a=1&c=x+y"#)`) {
		t.Errorf("form body should be urlencoded with empty values skipped, got:\n%s", got)
	}
	if !strings.Contains(got, `.header("Content-Type", "application/x-www-form-urlencoded")`) {
		t.Errorf("form body should derive its content type header, got:\n%s", got)
	}
}

func TestGenerateHeaderPrecedence(t *testing.T) {
	req := mrequest.Default("https://example.com", mrequest.MethodPost)
	req.SetHeader("Content-Type", "text/plain")
	req.Body = mrequest.RawBody("{}", "application/json")

	got := treqwest.Generate(req)
	if n := strings.Count(got, "Content-Type"); n != 1 {
		t.Errorf("want exactly one Content-Type header, got %d:\n%s", n, got)
	}
	if !strings.Contains(got, `.header("Content-Type", "text/plain")`) {
		t.Errorf("caller header should win, got:\n%s", got)
	}
}
