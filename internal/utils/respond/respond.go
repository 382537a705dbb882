// Package respond writes JSON responses for the HTTP transport.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	svcErr "github.com/oggyb/devmatch/internal/errors"
	"github.com/oggyb/devmatch/internal/logger"
)

const maxBodyBytes = 1 << 20

// JSON sends payload with the given status code.
func JSON(w http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Error marshaling JSON"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

// Error maps err to a status and a caller-safe {"error": msg} body.
// Internal failures are logged with their full chain.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	code := svcErr.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "err", err)
	}
	JSON(w, code, map[string]string{"error": svcErr.PublicMessage(err)})
}

// Decode reads a JSON body into dst. A malformed body is a validation error.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return svcErr.Validation("request body is required")
		}
		return svcErr.Validation("invalid JSON body")
	}
	return nil
}
