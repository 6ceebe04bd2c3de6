package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"adboard/backend/internal/domain"
	authdomain "adboard/backend/internal/domain/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "token"

type ctxKeyPrincipal struct{}

// observe records access logs and request metrics once routing has resolved
// the route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		route := routePattern(r)

		s.metrics.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		s.metrics.RequestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())

		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", route).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", duration).
			Msg("http request")
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// withSession pins one pooled connection to the request and releases it
// when the handler returns.
func (s *Server) withSession(next http.Handler) http.Handler {
	if s.sessions == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, release, err := s.sessions.Session(r.Context())
		if err != nil {
			respondError(w, r, err)
			return
		}
		defer release()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authMiddleware rejects requests without a live token and stores the
// resolved principal in the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := s.authService.Authenticate(r.Context(), r.Header.Get(TokenHeader))
		if err != nil {
			if errors.Is(err, domain.ErrForbidden) {
				s.metrics.AuthChecksTotal.WithLabelValues("rejected").Inc()
			} else {
				s.metrics.AuthChecksTotal.WithLabelValues("error").Inc()
			}
			respondError(w, r, err)
			return
		}
		s.metrics.AuthChecksTotal.WithLabelValues("accepted").Inc()

		ctx := context.WithValue(r.Context(), ctxKeyPrincipal{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principalFromContext(ctx context.Context) *authdomain.Principal {
	principal, _ := ctx.Value(ctxKeyPrincipal{}).(*authdomain.Principal)
	return principal
}
