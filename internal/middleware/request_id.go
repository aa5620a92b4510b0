package middleware

import (
	"context"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type ctxKey string

const loggerKey ctxKey = "logger"

// RequestLogger deja en el contexto un logger con el request_id que puso
// chimw.RequestID. Va después de RequestID en la cadena.
func RequestLogger(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := base
			if id := chimw.GetReqID(r.Context()); id != "" {
				l = base.With(zap.String("request_id", id))
			}
			ctx := context.WithValue(r.Context(), loggerKey, l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Logger devuelve el logger del request o uno nop si no hay.
func Logger(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}
