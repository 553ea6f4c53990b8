package middleware

import (
	"net/http"
)

// MaxBytes caps request bodies at limit bytes. Requests that declare a
// larger Content-Length are rejected with 413 before the handler runs;
// undeclared bodies fail on read once the cap is passed.
func MaxBytes(limit int64) Func {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
