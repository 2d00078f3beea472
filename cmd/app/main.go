package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	_ "time/tzdata"

	"selectclass/internal/auth"
	"selectclass/internal/config"
	agendaGet "selectclass/internal/http-server/handlers/agenda/get"
	analyticsGet "selectclass/internal/http-server/handlers/analytics/get"
	authCredentials "selectclass/internal/http-server/handlers/auth/credentials"
	authLogin "selectclass/internal/http-server/handlers/auth/login"
	bookingCost "selectclass/internal/http-server/handlers/bookings/cost"
	bookingCreate "selectclass/internal/http-server/handlers/bookings/create"
	bookingDelete "selectclass/internal/http-server/handlers/bookings/delete"
	bookingGet "selectclass/internal/http-server/handlers/bookings/get"
	bookingPayment "selectclass/internal/http-server/handlers/bookings/payment"
	bookingReceipt "selectclass/internal/http-server/handlers/bookings/receipt"
	bookingSearch "selectclass/internal/http-server/handlers/bookings/search"
	bookingShare "selectclass/internal/http-server/handlers/bookings/share"
	bookingToggle "selectclass/internal/http-server/handlers/bookings/toggle"
	bookingUpdate "selectclass/internal/http-server/handlers/bookings/update"
	calendarGet "selectclass/internal/http-server/handlers/calendar/get"
	courseCreate "selectclass/internal/http-server/handlers/courses/create"
	courseDelete "selectclass/internal/http-server/handlers/courses/delete"
	courseGet "selectclass/internal/http-server/handlers/courses/get"
	courseUpdate "selectclass/internal/http-server/handlers/courses/update"
	dashboardGet "selectclass/internal/http-server/handlers/dashboard/get"
	expenseCreate "selectclass/internal/http-server/handlers/expenses/create"
	expenseDelete "selectclass/internal/http-server/handlers/expenses/delete"
	expenseGet "selectclass/internal/http-server/handlers/expenses/get"
	financialGet "selectclass/internal/http-server/handlers/financial/get"
	lectureCreate "selectclass/internal/http-server/handlers/lectures/create"
	lectureDelete "selectclass/internal/http-server/handlers/lectures/delete"
	lectureGet "selectclass/internal/http-server/handlers/lectures/get"
	lectureReorder "selectclass/internal/http-server/handlers/lectures/reorder"
	settingsGet "selectclass/internal/http-server/handlers/settings/get"
	settingsUpdate "selectclass/internal/http-server/handlers/settings/update"
	studentDelete "selectclass/internal/http-server/handlers/students/delete"
	studentGet "selectclass/internal/http-server/handlers/students/get"
	studentSave "selectclass/internal/http-server/handlers/students/save"
	syncTrigger "selectclass/internal/http-server/handlers/sync/trigger"
	"selectclass/internal/lock"
	"selectclass/internal/outbox"
	"selectclass/internal/refresh"
	svc "selectclass/internal/service"
	"selectclass/internal/state"
	"selectclass/internal/storage/postgres"
	"selectclass/internal/storage/remote"
	slogpretty "selectclass/pkg/handlers/slogPretty"
	"selectclass/pkg/middleware/mwAuth"
	"selectclass/pkg/middleware/mwLogger"
	"selectclass/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type closingLocker interface {
	lock.Locker
	Close() error
}

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env), slog.String("timezone", cfg.Timezone))
	log.Debug("Debug messages are enabled")

	store, err := remote.New(cfg.Store.BaseURL, cfg.Store.Auth, cfg.Store.Timeout)
	if err != nil {
		log.Error("Failed to init remote store", sl.Err(err))
		os.Exit(1)
	}

	var locker closingLocker
	if cfg.RedisAddr != "" {
		locker, err = lock.NewRedisLock(cfg.RedisAddr)
		if err != nil {
			log.Error("Failed to init redis lock", sl.Err(err))
			os.Exit(1)
		}
	} else {
		log.Warn("redis_addr is empty, booking locks are process-local")
		locker = lock.NewMemoryLock()
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	var (
		ob      outbox.Repository
		storage *postgres.Storage
	)
	if cfg.Outbox.DSN != "" {
		storage, err = postgres.New(cfg.Outbox.DSN)
		if err != nil {
			log.Error("Failed to init outbox storage", sl.Err(err))
			os.Exit(1)
		}
		if err := storage.Migrate(bgCtx); err != nil {
			log.Error("Failed to migrate outbox storage", sl.Err(err))
			os.Exit(1)
		}
		ob = storage
	} else {
		log.Warn("outbox.dsn is empty, parked writes are lost on restart")
		ob = outbox.NewMemory()
	}

	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Error("Failed to init tokens", sl.Err(err))
		os.Exit(1)
	}

	snapshot := state.New()
	refresher := refresh.New(log, store, snapshot, cfg.Refresh.Interval, cfg.Refresh.FetchTimeout)
	replayer := outbox.NewReplayer(log, ob, store, cfg.Outbox.Interval, cfg.Outbox.Batch)

	service := svc.NewService(log, store, locker, ob, snapshot, refresher, tokens, svc.Options{
		Location:        cfg.Location(),
		AlertWindowDays: cfg.Billing.AlertWindowDays,
		DefaultAddress:  cfg.Share.DefaultAddress,
		DefaultUser:     cfg.Auth.DefaultUser,
		DefaultPass:     cfg.Auth.DefaultPass,
		LockTTL:         cfg.LockTTL,
	})

	var background sync.WaitGroup
	background.Add(2)
	go func() {
		defer background.Done()
		refresher.Run(bgCtx)
	}()
	go func() {
		defer background.Done()
		replayer.Run(bgCtx)
	}()

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	router.Post("/auth/login", authLogin.New(log, service))

	router.Group(func(r chi.Router) {
		r.Use(mwAuth.New(log, tokens))

		r.Put("/auth/credentials", authCredentials.New(log, service))

		// Bookings
		r.Get("/bookings", bookingGet.New(log, service))
		r.Get("/bookings/search", bookingSearch.New(log, service))
		r.Post("/bookings", bookingCreate.New(log, service))
		r.Get("/bookings/{id}", bookingGet.New(log, service))
		r.Put("/bookings/{id}", bookingUpdate.New(log, service))
		r.Delete("/bookings/{id}", bookingDelete.New(log, service))
		r.Post("/bookings/{id}/payments", bookingPayment.New(log, service))
		r.Post("/bookings/{id}/materials/{materialId}/toggle", bookingToggle.New(log, service))
		r.Put("/bookings/{id}/materials/{materialId}/cost", bookingCost.New(log, service))
		r.Get("/bookings/{id}/share", bookingShare.New(log, service))
		r.Get("/bookings/{id}/receipt", bookingReceipt.New(log, service))

		// Views
		r.Get("/agenda", agendaGet.New(log, service))
		r.Get("/calendar", calendarGet.New(log, service))
		r.Get("/dashboard", dashboardGet.New(log, service))
		r.Get("/analytics", analyticsGet.New(log, service))
		r.Get("/financial", financialGet.New(log, service))

		// Expenses
		r.Get("/expenses", expenseGet.New(log, service))
		r.Post("/expenses", expenseCreate.New(log, service))
		r.Delete("/expenses/{id}", expenseDelete.New(log, service))

		// Students
		r.Get("/students", studentGet.New(log, service))
		r.Post("/students", studentSave.New(log, service))
		r.Put("/students/{id}", studentSave.New(log, service))
		r.Delete("/students/{id}", studentDelete.New(log, service))

		// Course types
		r.Get("/courses", courseGet.New(log, service))
		r.Post("/courses", courseCreate.New(log, service))
		r.Put("/courses/{id}", courseUpdate.New(log, service))
		r.Delete("/courses/{id}", courseDelete.New(log, service))

		// Lecture models
		r.Get("/lectures", lectureGet.New(log, service))
		r.Post("/lectures", lectureCreate.New(log, service))
		r.Put("/lectures/order", lectureReorder.New(log, service))
		r.Delete("/lectures/{id}", lectureDelete.New(log, service))

		// Settings
		r.Get("/settings", settingsGet.New(log, service))
		r.Put("/settings", settingsUpdate.New(log, service))

		r.Post("/sync", syncTrigger.New(log, service))
	})

	serv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.HTTPServer.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	stopBackground()
	background.Wait()
	log.Info("Background loops stopped")

	if storage != nil {
		if err := storage.Close(); err != nil {
			log.Error("Failed to close outbox storage", sl.Err(err))
		} else {
			log.Info("Outbox storage closed")
		}
	}

	if err := locker.Close(); err != nil {
		log.Error("Failed to close locker", sl.Err(err))
	} else {
		log.Info("Locker closed")
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
