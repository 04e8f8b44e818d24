//nolint:revive // exported
package tjavahttp

import (
	"net/url"
	"strings"

	"github.com/reqforge/reqforge/pkg/model/mrequest"
)

// Generate renders a Java program on java.net.http.HttpClient. The verb
// always goes through Builder.method so custom tokens work the same as the
// standard ones; bodyless requests pass BodyPublishers.noBody().
func Generate(req mrequest.Request) string {
	var b strings.Builder

	b.WriteString("import java.net.URI;\n")
	b.WriteString("import java.net.http.HttpClient;\n")
	b.WriteString("import java.net.http.HttpRequest;\n")
	b.WriteString("import java.net.http.HttpResponse;\n\n")
	b.WriteString("public class Main {\n")
	b.WriteString("    public static void main(String[] args) throws Exception {\n")
	b.WriteString("        HttpClient client = HttpClient.newHttpClient();\n")
	b.WriteString("        HttpRequest request = HttpRequest.newBuilder()\n")
	b.WriteString("                .uri(URI.create(")
	b.WriteString(javaString(req.Url))
	b.WriteString("))\n")

	for _, header := range req.SnippetHeaders() {
		b.WriteString("                .header(")
		b.WriteString(javaString(header.Key))
		b.WriteString(", ")
		b.WriteString(javaString(header.Value))
		b.WriteString(")\n")
	}

	b.WriteString("                .method(")
	b.WriteString(javaString(string(req.Method)))
	b.WriteString(", ")
	b.WriteString(bodyPublisher(req.BodyOrNone()))
	b.WriteString(")\n")
	b.WriteString("                .build();\n")
	b.WriteString("        HttpResponse<String> response = client.send(request, HttpResponse.BodyHandlers.ofString());\n")
	b.WriteString("        System.out.println(response.body());\n")
	b.WriteString("    }\n}")

	return b.String()
}

func bodyPublisher(body mrequest.Body) string {
	switch b := body.(type) {
	case mrequest.BodyRaw:
		return "HttpRequest.BodyPublishers.ofString(" + javaString(b.Content) + ")"
	case mrequest.BodyForm:
		return "HttpRequest.BodyPublishers.ofString(" + javaString(encodeFormFields(b.Fields)) + ")"
	}
	return "HttpRequest.BodyPublishers.noBody()"
}

func javaString(value string) string {
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
