package middleware

import "net/http"

// maxBodyBytes caps request bodies at 1 MiB. Every payload this server
// accepts (heartbeats, reports, subscriptions, broadcasts) fits well under it.
const maxBodyBytes int64 = 1 << 20

// BodyLimit rejects oversized requests up front when Content-Length is
// declared and wraps the body so chunked uploads are cut off at the same cap.
func BodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > maxBodyBytes {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": "Request body too large",
			})
			return
		}
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}
