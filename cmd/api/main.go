package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-salon/internal/analytics"
	"github.com/noah-isme/backend-salon/internal/auth"
	"github.com/noah-isme/backend-salon/internal/booking"
	"github.com/noah-isme/backend-salon/internal/cart"
	"github.com/noah-isme/backend-salon/internal/catalog"
	"github.com/noah-isme/backend-salon/internal/checkout"
	"github.com/noah-isme/backend-salon/internal/config"
	"github.com/noah-isme/backend-salon/internal/health"
	"github.com/noah-isme/backend-salon/internal/member"
	"github.com/noah-isme/backend-salon/internal/obs"
	"github.com/noah-isme/backend-salon/internal/ratelimit"
	"github.com/noah-isme/backend-salon/internal/schedule"
	"github.com/noah-isme/backend-salon/internal/security"
	"github.com/noah-isme/backend-salon/internal/staff"
	"github.com/noah-isme/backend-salon/internal/store"
)

const maxBodyBytes = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := obs.NewLogger(cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Obs.EnablePrometheus {
		obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, nil)
	}
	tracingEnabled := cfg.Obs.EnableTracing
	if tracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   "salon-api",
			Endpoint:      cfg.Obs.OTLPEndpoint,
			SamplingRatio: cfg.Obs.SamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	deps, err := openBackends(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open backends")
	}
	defer deps.Close()

	tiers := member.DefaultTiers()
	roster := staff.DefaultRoster()
	salon, err := store.Open(ctx, deps.Persister, store.Options{
		Tiers:       tiers,
		WalkInLabel: cfg.WalkInLabel,
		Logger:      logger.With().Str("component", "store").Logger(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("load salon state")
	}
	logger.Info().Str("backend", cfg.StoreBackend).Int64("revision", salon.Revision()).Msg("salon state loaded")

	authService, err := auth.NewService(auth.Config{
		Secret:         cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
		Issuer:         cfg.JWTIssuer,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}
	authHandler := &auth.Handler{Service: authService, Logger: logger}
	authMiddleware := auth.Middleware{Service: authService}
	loginLimit := ratelimit.Handler{
		Limiter: deps.LoginLimiter,
		Config: ratelimit.Config{
			Key:    ratelimit.ByClientIP("login"),
			Window: cfg.LoginRateWindow,
			Max:    cfg.LoginRateLimit,
		},
		OnError: func(err error) { logger.Warn().Err(err).Msg("login rate limiter unavailable") },
	}

	carts := cart.NewRegistry(tiers)
	carts.IdleTTL = cfg.CartIdleTTL
	staffHandler := staff.Handler{Roster: roster}
	memberHandler := &member.Handler{Repo: salon, Tiers: tiers}
	catalogHandler := &catalog.Handler{Repo: salon}
	bookingHandler := &booking.Handler{Repo: salon, Roster: roster, Tiers: tiers, Location: cfg.Location}
	scheduleHandler := &schedule.Handler{Repo: salon, Roster: roster, Location: cfg.Location}
	cartHandler := &cart.Handler{Carts: carts, Source: salon, Roster: roster, DefaultStaff: cfg.DefaultStaffID, Logger: logger}
	checkoutHandler := &checkout.Handler{Carts: carts, Settler: salon, History: salon, Logger: logger}
	analyticsHandler := &analytics.Handler{Svc: &analytics.Service{
		Source: salon,
		Roster: roster,
		R:      deps.Redis,
		TTL:    cfg.ReportCacheTTL,
		Prefix: cfg.StoreKeyPrefix,
		Logger: logger,
	}}
	adminHandler := &store.Handler{Store: salon, Logger: logger}

	var httpMetrics *obs.HTTPMetrics
	if cfg.Obs.EnablePrometheus {
		httpMetrics = obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, obs.ParseBucketsCSV(cfg.Obs.MetricsBuckets), nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(maxBodyBytes))
	r.Use(security.Headers{HSTS: cfg.AppEnv == "production"}.Middleware)
	r.Use(obs.RouteMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Obs.EnablePrometheus {
		r.Handle("/metrics", promhttp.Handler())
	}
	healthHandler := health.Handler{Checks: deps.Checks}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.With(loginLimit.Middleware).Post("/auth/login", authHandler.Login)

		v.Group(func(p chi.Router) {
			p.Use(authMiddleware.RequireAuth)
			p.Get("/auth/me", authHandler.Me)

			p.Get("/staff", staffHandler.List)
			p.Get("/tiers", memberHandler.ListTiers)

			p.Route("/members", func(m chi.Router) {
				m.Get("/", memberHandler.List)
				m.Post("/", memberHandler.Create)
				m.Get("/{id}", memberHandler.Get)
				m.Patch("/{id}", memberHandler.Update)
			})

			p.Route("/services", func(s chi.Router) {
				s.Get("/", catalogHandler.ListServices)
				s.Post("/", catalogHandler.CreateService)
				s.Patch("/{id}", catalogHandler.UpdateService)
				s.Delete("/{id}", catalogHandler.DeleteService)
			})
			p.Route("/products", func(s chi.Router) {
				s.Get("/", catalogHandler.ListProducts)
				s.Post("/", catalogHandler.CreateProduct)
				s.Patch("/{id}", catalogHandler.UpdateProduct)
				s.Delete("/{id}", catalogHandler.DeleteProduct)
			})

			p.Route("/bookings", func(b chi.Router) {
				b.Get("/", bookingHandler.List)
				b.Post("/", bookingHandler.Create)
				b.Delete("/{id}", bookingHandler.Delete)
			})

			p.Route("/shifts", func(s chi.Router) {
				s.Get("/", scheduleHandler.List)
				s.Put("/", scheduleHandler.Set)
				s.Post("/cycle", scheduleHandler.Cycle)
			})

			p.Route("/carts", func(c chi.Router) {
				c.Post("/", cartHandler.Create)
				c.Route("/{id}", func(one chi.Router) {
					one.Get("/", cartHandler.Get)
					one.Delete("/", cartHandler.Discard)
					one.Post("/services", cartHandler.AddService)
					one.Post("/products", cartHandler.AddProduct)
					one.Post("/topups", cartHandler.AddTopUp)
					one.Delete("/lines/{index}", cartHandler.RemoveLine)
					one.Patch("/lines/{index}", cartHandler.AssignStaff)
					one.Put("/member", cartHandler.SetMember)
					one.Delete("/member", cartHandler.ClearMember)
					one.Post("/checkout", checkoutHandler.Checkout)
				})
			})
			p.Get("/transactions", checkoutHandler.ListTransactions)

			p.Group(func(admin chi.Router) {
				admin.Use(auth.RequireRole(auth.RoleAdmin))
				admin.Get("/analytics/dashboard", analyticsHandler.Dashboard)
				admin.Get("/analytics/commissions", analyticsHandler.Commissions)
				admin.Get("/analytics/commissions.xlsx", analyticsHandler.CommissionsXLSX)
				admin.Post("/admin/reset", adminHandler.Reset)
			})
		})
	})

	var handler http.Handler = r
	if tracingEnabled {
		handler = otelhttp.NewHandler(r, "salon-api")
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	<-ctx.Done()
	drain(srv, logger)
}

func drain(srv *http.Server, logger zerolog.Logger) {
	health.SetReady(false)
	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
