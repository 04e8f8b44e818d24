package tjavahttp_test

import (
	"strings"
	"testing"

	"github.com/reqforge/reqforge/pkg/model/mrequest"
	"github.com/reqforge/reqforge/pkg/translate/tjavahttp"
)

func TestGenerateWithBody(t *testing.T) {
	req := mrequest.Default("https://api.example.com/items", mrequest.MethodPost)
	req.SetHeader("Accept", "application/json")
	req.Body = mrequest.RawBody(`{"a":1}`, "application/json")

	want := `import java.net.URI;
import java.net.http.HttpClient;
import java.net.http.HttpRequest;
import java.net.http.HttpResponse;

public class Main {
    public static void main(String[] args) throws Exception {
        HttpClient client = HttpClient.newHttpClient();
        HttpRequest request = HttpRequest.newBuilder()
                .uri(URI.create("https://api.example.com/items"))
                .header("Accept", "application/json")
                .header("Content-Type", "application/json")
                .method("POST", HttpRequest.BodyPublishers.ofString("{\"a\":1}"))
                .build();
        HttpResponse<String> response = client.send(request, HttpResponse.BodyHandlers.ofString());
        System.out.println(response.body());
    }
}`

	got := tjavahttp.Generate(req)
	if got != want {
		t.Errorf("snippet mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateNoBody(t *testing.T) {
	req := mrequest.Default("https://example.com", mrequest.MethodGet)

	got := tjavahttp.Generate(req)
	if !strings.Contains(got, `.method("GET", HttpRequest.BodyPublishers.noBody())`) {
		t.Errorf("bodyless request should use noBody, got:\n%s", got)
	}
}

func TestGenerateCustomMethod(t *testing.T) {
	req := mrequest.Default("https://example.com", mrequest.Method("PURGE"))

	got := tjavahttp.Generate(req)
	if !strings.Contains(got, `.method("PURGE", HttpRequest.BodyPublishers.noBody())`) {
		t.Errorf("custom verb should pass through, got:\n%s", got)
	}
}

func TestGenerateFormBody(t *testing.T) {
	req := mrequest.Default("https://example.com/login", mrequest.MethodPost)
	req.Body = mrequest.FormBody([]mrequest.FormField{
		{Key: "a", Value: "1"},
		{Key: "b", Value: ""},
		{Key: "c", Value: "x y"},
	})

	got := tjavahttp.Generate(req)
	if !strings.Contains(got, `HttpRequest.BodyPublishers.ofString("a=1&c=x+y")`) {
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

	got := tjavahttp.Generate(req)
	if n := strings.Count(got, "Content-Type"); n != 1 {
		t.Errorf("want exactly one Content-Type header, got %d:\n%s", n, got)
	}
	if !strings.Contains(got, `.header("Content-Type", "text/plain")`) {
		t.Errorf("caller header should win, got:\n%s", got)
	}
}
