package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/homebase/internal/backup"
	"github.com/dukerupert/homebase/internal/config"
	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/email"
	"github.com/dukerupert/homebase/internal/logging"
	"github.com/dukerupert/homebase/internal/push"
	"github.com/dukerupert/homebase/internal/reminder"
	"github.com/dukerupert/homebase/internal/server"
	"github.com/dukerupert/homebase/internal/service"
	"github.com/dukerupert/homebase/internal/sms"
	ws "github.com/dukerupert/homebase/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	hub := ws.NewHub(logger)

	svcOpts := []service.Option{service.WithPublisher(hub)}
	if cfg.S3.Configured() {
		archiver, err := backup.NewArchiver(cfg.S3, logger)
		if err != nil {
			logger.Error("failed to configure export storage", "error", err)
			os.Exit(1)
		}
		svcOpts = append(svcOpts, service.WithArchiver(archiver))
		logger.Info("family exports enabled", "bucket", cfg.S3.Bucket)
	}
	svc := service.New(db, logger, svcOpts...)

	pushSvc := push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, push.WithSubscriber(cfg.VAPIDSubscriber))

	dispatchOpts := []reminder.Option{
		reminder.WithPublisher(hub),
		reminder.WithInterval(cfg.DispatchInterval),
	}
	if pushSvc.Configured() {
		dispatchOpts = append(dispatchOpts, reminder.WithPush(pushSvc))
	} else {
		logger.Warn("push reminders disabled", "reason", "VAPID keys not set")
	}
	switch {
	case cfg.PostmarkToken != "":
		dispatchOpts = append(dispatchOpts, reminder.WithEmail(email.NewClient(cfg.PostmarkToken, cfg.EmailFrom)))
	case cfg.SMTPHost != "":
		dispatchOpts = append(dispatchOpts, reminder.WithEmail(email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)))
	default:
		logger.Warn("email reminders disabled", "reason", "no Postmark token or SMTP host")
	}
	if smsClient := sms.NewClient(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom); smsClient.Configured() {
		dispatchOpts = append(dispatchOpts, reminder.WithSMS(smsClient))
	} else {
		logger.Warn("sms reminders disabled", "reason", "Twilio credentials not set")
	}

	dispatcher := reminder.NewDispatcher(db, logger, dispatchOpts...)

	srv := server.New(db, svc, hub, server.Config{
		JWTSecret:     cfg.JWTSecret,
		SessionCookie: cfg.SessionCookie,
		CORSOrigins:   cfg.CORSOrigins,
		RateLimit:     cfg.RateLimit,
		VAPID:         pushSvc,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher.Start(ctx)
	go pruneRateLimits(ctx, srv)

	// No read/write timeouts: /ws connections stay open.
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("homebase listening", "addr", httpServer.Addr, "driver", cfg.DBDriver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	// Shutdown does not wait for hijacked connections.
	hub.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	dispatcher.Stop()
}

// pruneRateLimits drops elapsed rate limit windows until ctx ends.
func pruneRateLimits(ctx context.Context, srv *server.Server) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			srv.RateLimiter().Cleanup()
		}
	}
}
