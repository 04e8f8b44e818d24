package mrequest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValues(t *testing.T) {
	r := Default("https://api.example.com", MethodGet)

	assert.Equal(t, MethodGet, r.Method)
	assert.Equal(t, "https://api.example.com", r.Url)
	assert.Equal(t, int64(30000), r.TimeoutMillis)
	assert.True(t, r.FollowRedirects)
	assert.Equal(t, 10, r.MaxRedirects)
	assert.True(t, r.VerifySsl)
	assert.Nil(t, r.Proxy)
	assert.Equal(t, BodyNone{}, r.Body)
	assert.Equal(t, AuthNone{}, r.Auth)
	assert.Empty(t, r.Headers)
	assert.Empty(t, r.Cookies)
}

func TestParseMethod(t *testing.T) {
	t.Run("known methods normalize to upper case", func(t *testing.T) {
		m, ok := ParseMethod("post")
		assert.True(t, ok)
		assert.Equal(t, MethodPost, m)

		m, ok = ParseMethod(" Delete ")
		assert.True(t, ok)
		assert.Equal(t, MethodDelete, m)
	})

	t.Run("unknown word is kept but reported invalid", func(t *testing.T) {
		m, ok := ParseMethod("trace")
		assert.False(t, ok)
		assert.Equal(t, Method("TRACE"), m)
		assert.False(t, m.IsValid())
	})
}

func TestSetHeaderMappingSemantics(t *testing.T) {
	r := Default("https://x.com", MethodGet)
	r.SetHeader("Accept", "text/html")
	r.SetHeader("X-Trace", "1")
	r.SetHeader("Accept", "application/json")

	require.Len(t, r.Headers, 2, "same exact name must overwrite, not append")
	assert.Equal(t, Header{Key: "Accept", Value: "application/json"}, r.Headers[0], "overwrite keeps the original position")
	assert.Equal(t, Header{Key: "X-Trace", Value: "1"}, r.Headers[1])
}

func TestGetHeaderCaseInsensitive(t *testing.T) {
	r := Default("https://x.com", MethodGet)
	r.SetHeader("Content-Type", "text/plain")

	v, ok := r.GetHeader("content-type")
	assert.True(t, ok)
	assert.Equal(t, "text/plain", v)
	assert.True(t, r.HasHeader("CONTENT-TYPE"))
	assert.False(t, r.HasHeader("Authorization"))
}

func TestJSONBody(t *testing.T) {
	t.Run("pretty prints with two space indent", func(t *testing.T) {
		body := JSONBody(struct {
			Name string `json:"name"`
			Age  int    `json:"age"`
		}{Name: "ada", Age: 36})

		raw, ok := body.(BodyRaw)
		require.True(t, ok)
		assert.Equal(t, "application/json", raw.ContentType)
		assert.Equal(t, "{\n  \"name\": \"ada\",\n  \"age\": 36\n}", raw.Content)
	})

	t.Run("unmarshalable value degrades to empty object", func(t *testing.T) {
		body := JSONBody(make(chan int))

		raw, ok := body.(BodyRaw)
		require.True(t, ok)
		assert.Equal(t, "{}", raw.Content)
	})
}

func TestDerivedContentType(t *testing.T) {
	t.Run("raw body declares its content type", func(t *testing.T) {
		r := Default("https://x.com", MethodPost)
		r.Body = RawBody("<x/>", "application/xml")

		ct, ok := r.DerivedContentType()
		assert.True(t, ok)
		assert.Equal(t, "application/xml", ct)
	})

	t.Run("caller header wins over body declaration", func(t *testing.T) {
		r := Default("https://x.com", MethodPost)
		r.SetHeader("Content-Type", "text/plain")
		r.Body = RawBody("{}", "application/json")

		_, ok := r.DerivedContentType()
		assert.False(t, ok)
	})

	t.Run("caller header wins case-insensitively", func(t *testing.T) {
		r := Default("https://x.com", MethodPost)
		r.SetHeader("content-type", "text/plain")
		r.Body = RawBody("{}", "application/json")

		_, ok := r.DerivedContentType()
		assert.False(t, ok)
	})

	t.Run("form body implies urlencoded", func(t *testing.T) {
		r := Default("https://x.com", MethodPost)
		r.Body = FormBody([]FormField{{Key: "a", Value: "1"}})

		ct, ok := r.DerivedContentType()
		assert.True(t, ok)
		assert.Equal(t, "application/x-www-form-urlencoded", ct)
	})

	t.Run("undeclared raw body implies nothing", func(t *testing.T) {
		r := Default("https://x.com", MethodPost)
		r.Body = RawBody("plain", "")

		_, ok := r.DerivedContentType()
		assert.False(t, ok)
	})
}

func TestAuthorizationValue(t *testing.T) {
	t.Run("basic encodes user colon password", func(t *testing.T) {
		r := Default("https://x.com", MethodGet)
		r.Auth = BasicAuth("user", "pass")

		v, ok := r.AuthorizationValue()
		assert.True(t, ok)
		assert.Equal(t, "Basic dXNlcjpwYXNz", v)
	})

	t.Run("bearer prefixes the token", func(t *testing.T) {
		r := Default("https://x.com", MethodGet)
		r.Auth = BearerAuth("tok-123")

		v, ok := r.AuthorizationValue()
		assert.True(t, ok)
		assert.Equal(t, "Bearer tok-123", v)
	})

	t.Run("caller authorization header wins", func(t *testing.T) {
		r := Default("https://x.com", MethodGet)
		r.SetHeader("Authorization", "Bearer mine")
		r.Auth = BearerAuth("other")

		_, ok := r.AuthorizationValue()
		assert.False(t, ok)
	})
}

func TestCookieHeaderValue(t *testing.T) {
	r := Default("https://x.com", MethodGet)
	r.AddCookie("sid", "abc")
	r.AddCookie("theme", "dark")

	v, ok := r.CookieHeaderValue()
	assert.True(t, ok)
	assert.Equal(t, "sid=abc; theme=dark", v)

	r.SetHeader("Cookie", "sid=manual")
	_, ok = r.CookieHeaderValue()
	assert.False(t, ok, "caller Cookie header suppresses the derived one")
}

func TestSnippetHeadersOrder(t *testing.T) {
	r := Default("https://x.com", MethodPost)
	r.SetHeader("Accept", "application/json")
	r.Body = RawBody("{}", "application/json")
	r.AddCookie("sid", "abc")
	r.Auth = BearerAuth("tok")

	headers := r.SnippetHeaders()
	require.Len(t, headers, 4)
	assert.Equal(t, "Accept", headers[0].Key)
	assert.Equal(t, "Content-Type", headers[1].Key)
	assert.Equal(t, "Cookie", headers[2].Key)
	assert.Equal(t, "Authorization", headers[3].Key)
}

func TestSnippetHeadersDoesNotMutate(t *testing.T) {
	r := Default("https://x.com", MethodPost)
	r.Body = FormBody([]FormField{{Key: "a", Value: "1"}})

	_ = r.SnippetHeaders()
	_ = r.SnippetHeaders()
	assert.Empty(t, r.Headers, "derived headers are computed, never stored")
}

func TestFormSetField(t *testing.T) {
	form := BodyForm{}
	form.SetField("a", "1")
	form.SetField("b", "2")
	form.SetField("a", "3")

	require.Len(t, form.Fields, 2)
	assert.Equal(t, FormField{Key: "a", Value: "3"}, form.Fields[0])
	assert.Equal(t, FormField{Key: "b", Value: "2"}, form.Fields[1])
}
