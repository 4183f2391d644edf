package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/Nzyazin/paycapture/internal/core/logger"
)

type panicResponse struct {
	Error string `json:"error"`
	Stack string `json:"stack,omitempty"`
}

// Recovery turns a panic into a JSON 500. The stack is always logged and is
// only written to the client when exposeStack is set.
func Recovery(log logger.Logger, exposeStack bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					stack := string(debug.Stack())
					log.Error("panic recovered",
						logger.StringField("method", r.Method),
						logger.StringField("path", r.URL.Path),
						logger.AnyField("error", rec),
						logger.StringField("stack", stack),
					)

					resp := panicResponse{Error: "internal server error"}
					if exposeStack {
						resp.Stack = stack
					}
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(resp)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
