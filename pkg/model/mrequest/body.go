package mrequest

import (
	"github.com/goccy/go-json"
)

// Body is a closed sum: BodyNone, BodyRaw or BodyForm. The unexported method
// keeps the set sealed so exactly one shape is active by construction.
type Body interface {
	isBody()
}

type BodyNone struct{}

// BodyRaw holds an already-serialized payload. ContentType is the declared
// media type, empty when undeclared; the model never re-encodes Content.
type BodyRaw struct {
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`
}

type BodyForm struct {
	Fields []FormField `json:"fields"`
}

type FormField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (BodyNone) isBody() {}
func (BodyRaw) isBody()  {}
func (BodyForm) isBody() {}

func RawBody(content, contentType string) Body {
	return BodyRaw{Content: content, ContentType: contentType}
}

// JSONBody serializes v as 2-space indented JSON and declares
// application/json. A value that cannot marshal degrades to an empty object;
// the constructor never reports an error.
func JSONBody(v any) Body {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		data = []byte("{}")
	}
	return BodyRaw{Content: string(data), ContentType: "application/json"}
}

func FormBody(fields []FormField) Body {
	return BodyForm{Fields: fields}
}

// SetField overwrites an existing field with the same exact key, keeping its
// position, or appends. Same mapping semantics as Request.SetHeader.
func (b *BodyForm) SetField(key, value string) {
	for i := range b.Fields {
		if b.Fields[i].Key == key {
			b.Fields[i].Value = value
			return
		}
	}
	b.Fields = append(b.Fields, FormField{Key: key, Value: value})
}

// Auth is a closed sum: AuthNone, AuthBasic or AuthBearer.
type Auth interface {
	isAuth()
}

type AuthNone struct{}

type AuthBasic struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthBearer struct {
	Token string `json:"token"`
}

func (AuthNone) isAuth()   {}
func (AuthBasic) isAuth()  {}
func (AuthBearer) isAuth() {}

func BasicAuth(username, password string) Auth {
	return AuthBasic{Username: username, Password: password}
}

func BearerAuth(token string) Auth {
	return AuthBearer{Token: token}
}
