package main

import "net/http"

// cacheablePaths are served without no-store so load balancers and uptime
// probes may cache them.
var cacheablePaths = map[string]bool{
	"/api/healthz": true,
}

// noStoreMiddleware marks API responses as uncacheable. Aspect ratio
// results change when a video is reclassified and presigned URLs expire.
func noStoreMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !cacheablePaths[r.URL.Path] {
			w.Header().Set("Cache-Control", "no-store")
		}
		next.ServeHTTP(w, r)
	})
}
