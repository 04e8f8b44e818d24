package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/reqforge/reqforge/pkg/errmap"
)

const maxRequestBody = 4 << 20

// ReadJSON decodes a request body into v, capped at maxRequestBody.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errmap.New(errmap.CodeBadRequest, "invalid JSON body", err)
	}
	return nil
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the errmap envelope with a status inferred from the code.
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorStatus(w, statusFor(err), err)
}

// WriteErrorStatus writes the errmap envelope with an explicit status.
func WriteErrorStatus(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(errmap.ToJSON(err)))
}

func statusFor(err error) int {
	var e *errmap.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case errmap.CodeBadRequest, errmap.CodeInvalidURL, errmap.CodeUnsupportedScheme,
		errmap.CodeExpressionSyntax, errmap.CodeExpressionRuntime:
		return http.StatusBadRequest
	case errmap.CodeTimeout, errmap.CodeCanceled:
		return http.StatusGatewayTimeout
	case errmap.CodeDNSError, errmap.CodeConnectionRefused, errmap.CodeConnectionReset,
		errmap.CodeNetworkUnreachable, errmap.CodeProxy, errmap.CodeTooManyRedirects,
		errmap.CodeTLSUnknownAuthority, errmap.CodeTLSHostnameMismatch, errmap.CodeTLSHandshake:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
