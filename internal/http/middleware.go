package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionCookie = "tienda_sid"

// sessionMaxAge keeps the cookie alive well past the cart's 30-day TTL.
const sessionMaxAge = 180 * 24 * 60 * 60

// SessionMiddleware assigns every browser a storefront session id. All
// tab-scoped state (cart, credentials, favorites mirror) is keyed by it.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sid string
		if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
			sid = c.Value
		} else {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sid,
				Path:     "/",
				MaxAge:   sessionMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), "session_id", sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getSessionIDFromContext(ctx context.Context) string {
	if sid, ok := ctx.Value("session_id").(string); ok {
		return sid
	}
	return ""
}

// RequestLogger logs one structured line per request.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
