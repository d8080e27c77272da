package httputil

import (
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
)

// DecompressPayload swaps in a decompressing body reader when the client
// uploaded a compressed payload. Trace files compress well, so clients
// usually do.
func DecompressPayload(next http.Handler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		if r.Header.Get("Content-Encoding") == "br" {
			r.Body = io.NopCloser(brotli.NewReader(r.Body))
		}

		next.ServeHTTP(w, r)
	})
}
