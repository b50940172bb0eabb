package platform

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jacobpanov/compiler-explorer/internal/shortener"
)

// HTTPServerConfig holds HTTP server tunables.
type HTTPServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	EnableTLS    bool   // whether to use HTTPS
	CertFile     string // path to TLS certificate
	KeyFile      string // path to TLS private key
	CookieKey    string // cookie store authentication key
}

// SessionMiddleware assigns/loads a client session ID and sets it in the
// request context. The id only tags short-link creation events; nothing
// behavioural hangs off it.
func SessionMiddleware(store *sessions.CookieStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := store.Get(r, "explorer")
			id, ok := sess.Values["id"].(string)
			if !ok || id == "" {
				id = uuid.NewString()
				sess.Values["id"] = id
				sess.Options = &sessions.Options{
					Path:     "/",
					MaxAge:   60 * 60 * 24 * 7, // 1 week
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				}
				_ = sess.Save(r, w)
			}
			ctx := context.WithValue(r.Context(), sessionCtxKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type sessionCtxKey struct{}

// SessionID returns the client session ID from the request context.
func SessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionCtxKey{}).(string)
	return id
}

// RunHTTPServer starts an HTTP server and returns a channel that will
// receive an error when the server exits (gracefully or not).
func RunHTTPServer(ctx context.Context, nc *nats.Conn, cfg HTTPServerConfig) <-chan error {
	errCh := make(chan error, 1)

	js, err := jetstream.New(nc)
	if err != nil {
		errCh <- err
		return errCh
	}
	links, err := shortener.NewStore(ctx, js)
	if err != nil {
		errCh <- err
		return errCh
	}

	r := chi.NewRouter()
	r.Use(SessionMiddleware(sessions.NewCookieStore([]byte(cfg.CookieKey))))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(chiLogger)
	r.Use(middleware.Recoverer)

	// metrics endpoint
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// application routes
	r.Get("/healthz", Health)
	r.Get("/", DocsPage)
	r.Route("/api", func(r chi.Router) {
		r.Get("/languages", ListLanguages)
		r.Get("/compilers", ListCompilers)
		r.Get("/compilers/{lang}", ListCompilersForLanguage)
		r.Post("/state/encode", EncodeState)
		r.Post("/state/decode", DecodeState)
		r.Post("/shortener", CreateShortLink(links))
	})
	r.Get("/z/{id}", ResolveShortLink(links))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		// wait for context cancellation then shutdown
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errCh <- err
			return
		}
		errCh <- ctx.Err()
	}()

	go func() {
		var err error
		if cfg.EnableTLS {
			err = srv.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	return errCh
}

// chiLogger is a lightweight slog adapter for chi middleware.
func chiLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		duration := time.Since(t0)
		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		HTTPRequestsTotal.WithLabelValues(r.Method, routePattern, fmt.Sprint(ww.Status())).Inc()
		HTTPDuration.WithLabelValues(r.Method, routePattern).Observe(duration.Seconds())
		slog.Info("http", "method", r.Method, "path", r.URL.Path, "route", routePattern, "status", ww.Status(), "duration", duration)
	})
}
