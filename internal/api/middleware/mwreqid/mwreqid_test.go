package mwreqid_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/reqforge/reqforge/internal/api/middleware/mwreqid"
)

func TestWrapAssignsRequestID(t *testing.T) {
	var seen string
	handler := mwreqid.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = mwreqid.FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	echoed := rec.Header().Get(mwreqid.Header)
	if echoed == "" || echoed != seen {
		t.Fatalf("header id %q, context id %q", echoed, seen)
	}
	if _, err := uuid.Parse(echoed); err != nil {
		t.Errorf("id %q is not a uuid: %v", echoed, err)
	}
}

func TestWrapKeepsCallerID(t *testing.T) {
	handler := mwreqid.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(mwreqid.Header, "caller-chose-this")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(mwreqid.Header); got != "caller-chose-this" {
		t.Fatalf("header id = %q", got)
	}
}
