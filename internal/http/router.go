package http

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-contacts-service/internal/http/handlers"
	"github.com/pribylovaa/go-contacts-service/internal/http/middleware"
)

// Service - всё, что нужно роутеру от бизнес-слоя.
type Service interface {
	handlers.AuthService
	handlers.ContactService
	middleware.Resolver
}

// Options - параметры сборки HTTP-роутера.
type Options struct {
	Logger *slog.Logger
	// Timeout - лимит обработки для REST-маршрутов; пробы и /metrics без лимита.
	Timeout          time.Duration
	AllowedOrigins   []string
	AllowCredentials bool
	Version          string
	// Registry - реестр метрик; nil отключает метрики и /metrics.
	Registry *prometheus.Registry
	// Ready - проверка готовности для /healthz; nil означает "всегда готов".
	Ready func(ctx context.Context) error
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc Service, opts Options) http.Handler {
	root := chi.NewRouter()

	if opts.Registry != nil {
		root.Use(middleware.NewMetrics(opts.Registry).Middleware())
	}
	root.Use(corsHandler(opts.AllowedOrigins, opts.AllowCredentials))

	h := handlers.New(svc, svc, opts.Version)

	registerProbes(root, opts)
	root.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(opts.Timeout))
		registerRoutes(r, h, svc)
	})

	// Внешний слой (внешний -> внутренний) оборачивает и 404/405 роутера.
	return middleware.Chain(root,
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
}

// registerRoutes - единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, res middleware.Resolver) {
	r.Get("/", h.Root)

	// auth
	r.Post("/register", h.RegisterUser)
	r.Post("/login", h.LoginUser)

	// contacts: только после успешного резолвинга личности.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(res))

		r.Get("/contacts", h.ListContacts)
		r.Post("/contacts", h.CreateContact)
		r.Put("/contacts/{id}", h.UpdateContact)
		r.Delete("/contacts/{id}", h.DeleteContact)
	})
}

func registerProbes(r chi.Router, opts Options) {
	r.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil {
			if err := opts.Ready(r.Context()); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
}

// corsHandler разрешает все методы и заголовки. Браузер отвергает "*"
// вместе с credentials, поэтому в этом режиме Origin запроса отражается.
func corsHandler(origins []string, credentials bool) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	opts := cors.Options{
		AllowedMethods: []string{
			http.MethodHead, http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.HeaderRequestID},
		AllowCredentials: credentials,
		MaxAge:           300,
	}

	if credentials && slices.Contains(origins, "*") {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
	} else {
		opts.AllowedOrigins = origins
	}

	return cors.Handler(opts)
}
