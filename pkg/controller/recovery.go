package controller

import (
	"detector/pkg/logger"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// WithRecovery returns a middleware that recovers from handler panics, logs
// them with a stack trace and answers 500 with a JSON error body.
func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler { //nolint: errorlint
				panic(rec)
			}

			ctx := r.Context()
			logger.Error(ctx, "panic recovered",
				zap.String("panic", fmt.Sprint(rec)),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.ByteString("stack", debug.Stack()))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":      "INTERNAL",
				"message":   "internal error",
				"requestId": RequestID(ctx),
			})
		}()

		next.ServeHTTP(w, r)
	})
}

// WithBodyLimit caps request bodies at maxBytes. Reads beyond the limit fail
// with *http.MaxBytesError.
func WithBodyLimit(next http.Handler, maxBytes int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if maxBytes > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}

		next.ServeHTTP(w, r)
	})
}
