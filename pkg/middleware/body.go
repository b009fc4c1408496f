package middleware

import (
	"mime"
	"net/http"
)

// MaxJSONBody returns middleware that caps JSON and URL-encoded request bodies at limit bytes.
// Multipart uploads are left to the handler, which enforces its own limit.
func MaxJSONBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil && capped(r.Header.Get("Content-Type")) {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func capped(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "application/json", "application/x-www-form-urlencoded":
		return true
	}
	return false
}
