package http

import (
	stdhttp "net/http"
)

// corsHandler applies the cross-origin policy for the API: only configured
// origins are echoed back, preflight requests are answered without reaching
// the router, and everything else passes through untouched.
type corsHandler struct {
	allowed map[string]struct{}
	next    stdhttp.Handler
}

func newCORSHandler(origins []string, next stdhttp.Handler) stdhttp.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		allowed[origin] = struct{}{}
	}
	return &corsHandler{allowed: allowed, next: next}
}

func (h *corsHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	origin := r.Header.Get("Origin")
	if origin != "" {
		if _, ok := h.allowed[origin]; ok {
			header := w.Header()
			header.Set("Access-Control-Allow-Origin", origin)
			header.Add("Vary", "Origin")
			header.Set("Access-Control-Allow-Credentials", "true")
			header.Set("Access-Control-Expose-Headers", "Content-Type")

			if r.Method == stdhttp.MethodOptions {
				header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				header.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(stdhttp.StatusNoContent)
				return
			}
		}
	}

	h.next.ServeHTTP(w, r)
}
