package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vibast-solutions/ms-go-iranpay/app/controller"
	"github.com/vibast-solutions/ms-go-iranpay/app/gateway"
	"github.com/vibast-solutions/ms-go-iranpay/app/gateway/soap"
	"github.com/vibast-solutions/ms-go-iranpay/app/repository"
	"github.com/vibast-solutions/ms-go-iranpay/app/service"
	"github.com/vibast-solutions/ms-go-iranpay/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP (Echo) server for the iranpay service.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, paymentService, cleanup := mustCreatePaymentService()
	defer cleanup()

	paymentController := controller.NewPaymentController(paymentService)
	e := setupHTTPServer(paymentController)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(paymentController *controller.PaymentController) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.GET("/health", paymentController.Health)

	payments := e.Group("/payments")
	payments.POST("", paymentController.CreatePayment)
	payments.POST("/callback/:gateway", paymentController.HandleGatewayCallback)
	payments.GET("/:transaction_id", paymentController.GetPayment)
	payments.POST("/:transaction_id/settle", paymentController.SettlePayment)
	payments.POST("/:transaction_id/reverse", paymentController.ReversePayment)

	return e
}

func mustCreatePaymentService() (*config.Config, *service.PaymentService, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	paymentRepo := repository.NewPaymentRepository(db)
	registry := newGatewayRegistry(cfg, paymentRepo)
	paymentService := service.NewPaymentService(registry, paymentRepo, cfg.Iranpay)

	cleanup := func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, paymentService, cleanup
}

func newGatewayRegistry(cfg *config.Config, paymentRepo *repository.PaymentRepository) *gateway.Registry {
	registry := gateway.NewRegistry(cfg.App.DefaultGateway, gateway.Options{
		Store: service.NewRecordStore(paymentRepo),
		Clock: gateway.SystemClock(),
		Settings: gateway.Settings{
			Currency: cfg.App.Currency,
			BaseURL:  cfg.App.BaseURL,
		},
	})

	soapClient := soap.NewHTTPClient(soap.Config{Timeout: cfg.Soap.HTTPTimeout})
	behpardakhtCfg := gateway.BehpardakhtConfig{
		TerminalID:             cfg.Behpardakht.TerminalID,
		Username:               cfg.Behpardakht.Username,
		Password:               cfg.Behpardakht.Password,
		CallbackURL:            cfg.Behpardakht.CallbackURL,
		RefererURL:             cfg.App.BaseURL,
		UseSandbox:             cfg.Iranpay.UseSandbox,
		NoCallbackReverseFails: cfg.Iranpay.NoCallbackReverseFails,
	}

	registry.Register("behpardakht", gateway.ScopePerCall, func() (gateway.Driver, error) {
		return gateway.NewBehpardakht(behpardakhtCfg, soapClient, gateway.SystemClock()), nil
	})

	return registry
}

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	return nil
}
