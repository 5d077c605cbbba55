package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"syscall"
	"time"

	"pizzadelivery/internal/cart"
	"pizzadelivery/internal/catalog"
	"pizzadelivery/internal/httpapi"
	"pizzadelivery/internal/identity"
	"pizzadelivery/internal/notify"
	"pizzadelivery/internal/order"
	"pizzadelivery/internal/payment"
	"pizzadelivery/internal/store"
	"pizzadelivery/pkg/config"
	"pizzadelivery/pkg/logger"
	"pizzadelivery/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "pizzadelivery",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	root := context.Background()
	ctx, cancel := shutdown.WithSignals(root, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.New(cfg.DataDir)
	if err != nil {
		log.Error("store init failed", slog.Any("err", err))
		os.Exit(1)
	}

	menu := catalog.Default()
	if cfg.MenuFile != "" {
		menu, err = catalog.Load(cfg.MenuFile)
		if err != nil {
			log.Error("menu load failed", slog.String("file", cfg.MenuFile), slog.Any("err", err))
			os.Exit(1)
		}
	}

	users := identity.NewService(st, cfg.HashingSecret)
	carts := cart.NewService(st, menu, users)

	charger := payment.NewClient(cfg.Stripe.BaseURL, cfg.Stripe.APIKey, cfg.UpstreamTimeout)
	mailer := notify.NewClient(cfg.Mailgun.BaseURL, cfg.Mailgun.APIKey, cfg.MailFrom, cfg.UpstreamTimeout)
	orders := order.NewService(st, menu, users, charger, mailer, cfg.PaymentSource)

	api := httpapi.NewServer(httpapi.Options{
		Log:               log,
		Menu:              menu,
		Users:             users,
		Carts:             carts,
		Orders:            orders,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr), slog.Int("menu_items", len(menu.List())))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}
