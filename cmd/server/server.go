package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/crumbline/bakeshop/api"
	"github.com/crumbline/bakeshop/api/background"
	"github.com/crumbline/bakeshop/config"
	"github.com/crumbline/bakeshop/database"
	"github.com/crumbline/bakeshop/email"
	"github.com/crumbline/bakeshop/payment"
	"github.com/crumbline/bakeshop/rate"
	"github.com/crumbline/bakeshop/worker"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server")
	defer logger.Info("shutdown complete")

	const prefix = "BAKERY"
	var cfg config.Config
	if _, err := conf.Parse(prefix, &cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}

	if err := database.StatusCheck(context.Background(), db); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	if cfg.DB.Migrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Auth.SessionLifetime

	mail := email.New(cfg.Email.Address, cfg.Email.Password, cfg.Email.Host, cfg.Email.Port, cfg.Email.From)

	bg := background.New(logger)

	gw := payment.NewRazorpay(cfg.Razorpay.KeyID, cfg.Razorpay.Secret)

	loginLimiter := rate.NewLimiter(cfg.Auth.LoginBurst, cfg.Auth.LoginExpiry, cfg.Auth.LoginRPS)

	mux := api.APIMux(api.APIConfig{
		CorsOrigin:     cfg.Cors.Origin,
		CSRFSecret:     cfg.CSRF.Secret,
		Log:            logger,
		DB:             db,
		Session:        sessionManager,
		Background:     bg,
		Gateway:        gw,
		RazorpayKeyID:  cfg.Razorpay.KeyID,
		RazorpaySecret: cfg.Razorpay.Secret,
		OrderMailer:    mail,
		BookingMailer:  mail,
		LoginLimiter:   loginLimiter,
	})

	rcCtx, rcCancel := context.WithCancel(context.Background())
	defer rcCancel()
	rc := worker.NewReconciler(logger, db, gw, cfg.Reconcile.Interval, cfg.Reconcile.Cutoff, cfg.Reconcile.Abandon)
	go rc.Run(rcCtx)

	api := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		rcCancel()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}

		if err := bg.Shutdown(ctx); err != nil {
			return fmt.Errorf("could not complete all background tasks: %w", err)
		}
	}
	return nil
}
