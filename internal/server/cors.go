package server

import "net/http"

// CORS header values advertised on every response, independent of origin.
const (
	allowedMethods = "GET, POST, OPTIONS"
	allowedHeaders = "Content-Type"
)

// applyCORS sets the cross-origin policy headers. A request from an origin
// on the allow-list gets that origin echoed back (plus Vary: Origin so
// caches keep per-origin copies); any other origin gets no allow header,
// which makes the browser block the response without the server refusing
// to process the request.
func applyCORS(w http.ResponseWriter, r *http.Request, allowed []string) {
	h := w.Header()
	h.Set("Access-Control-Allow-Methods", allowedMethods)
	h.Set("Access-Control-Allow-Headers", allowedHeaders)

	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	for _, a := range allowed {
		if a == origin {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			return
		}
	}
}
