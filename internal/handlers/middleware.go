package handlers

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/time/rate"
)

type Middleware func(http.HandlerFunc) http.HandlerFunc

func WithMidWare(finalHandler http.HandlerFunc, middlwares ...Middleware) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := finalHandler
		for _, m := range middlwares {
			f = m(f)
		}
		f(w, r)
	}
}

// ApiAuthCheck guards the internal API: the X-API-Key header must match the
// shared secret. Mismatch or absence is a 403 with no detail leaked. The
// public checkout routes never pass through this middleware.
func ApiAuthCheck(apiKey string) Middleware {
	return func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			providedKey := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
				http.Error(w, "Invalid API Key", http.StatusForbidden)
				return
			}
			h.ServeHTTP(w, r)
		}
	}
}

// RateLimit applies a process-wide token bucket to the public checkout routes.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			h.ServeHTTP(w, r)
		}
	}
}
