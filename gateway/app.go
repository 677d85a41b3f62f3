package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lazarofl/payment-gateway/internal/acquirer"
	"github.com/lazarofl/payment-gateway/internal/expiry"
	"github.com/lazarofl/payment-gateway/internal/middleware"
	"golang.org/x/exp/slog"

	_ "github.com/lib/pq"
)

// App is the main application, it contains all the components of the
// gateway service and is responsible for starting and stopping them.
type App struct {
	srv    *http.Server
	wg     *sync.WaitGroup
	Addr   string
	logger *slog.Logger
	config *Config
	closer func() error
}

func NewApp(logger *slog.Logger, config *Config) *App {
	logger = logger.With(slog.String("app", "gateway"))

	if config == nil {
		config = DefaultConfig()
	}

	return &App{
		wg:     &sync.WaitGroup{},
		logger: logger,
		config: config,
	}
}

func (a *App) Start() error {
	a.logger.Info("starting app...")

	router := chi.NewRouter()
	router.Use(middleware.NewStructuredLogger(a.logger))

	ledger, err := a.openLedger()
	if err != nil {
		return err
	}

	if a.config.ExpiryTZ != "" {
		if loc, err := time.LoadLocation(a.config.ExpiryTZ); err == nil {
			expiry.SetDefaultLocation(loc)
		} else {
			a.logger.Info("invalid EXPIRY_TZ; using default UTC", slog.String("tz", a.config.ExpiryTZ), slog.Any("err", err))
		}
	}

	bank := acquirer.New(a.config.BankURL, nil, acquirer.SingleAttempt())
	svc := NewService(ledger, bank, a.logger)

	api := NewAPI(svc)
	api.AppendRoutes(router)

	router.Get("/-/live", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	router.Get("/-/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := ledger.Ping(ctx); err != nil {
			http.Error(w, "ledger not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	l, err := net.Listen("tcp", a.config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening tcp port: %w", err)
	}

	a.Addr = l.Addr().String()

	a.srv = &http.Server{
		Handler: router,
	}

	a.wg.Add(1)
	go func() {
		a.logger.Info("http server started", slog.String("addr", a.Addr))

		if err := a.srv.Serve(l); err != nil {
			if err != http.ErrServerClosed {
				a.logger.Error("starting http server", "err", err)
			}

			a.logger.Info("http server stopped")
		}

		a.wg.Done()
	}()

	return nil
}

func (a *App) openLedger() (Ledger, error) {
	switch a.config.LedgerBackend {
	case "mem":
		return NewRepository(), nil
	case "pg":
		if a.config.PostgresDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required for pg backend")
		}
		db, err := sql.Open("postgres", a.config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxIdleConns(5)
		db.SetMaxOpenConns(10)
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		a.closer = db.Close
		return NewPGRepository(db), nil
	case "redis":
		if a.config.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required for redis backend")
		}
		ledger := NewRedisLedger(a.config.RedisAddr)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ledger.Ping(ctx); err != nil {
			return nil, err
		}
		a.closer = ledger.Close
		return ledger, nil
	default:
		return nil, fmt.Errorf("unsupported LEDGER_BACKEND=%s", a.config.LedgerBackend)
	}
}

func (a *App) Shutdown() {
	a.logger.Info("shutting down app...")

	a.srv.Shutdown(context.Background())

	if a.closer != nil {
		if err := a.closer(); err != nil {
			a.logger.Error("closing ledger", "err", err)
		}
	}

	a.wg.Wait()

	a.logger.Info("app stopped")
}
