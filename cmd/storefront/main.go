package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/cache"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/cart"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/catalog"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/config"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/domain"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/httpapi"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/metrics"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/notify"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/order"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/payment"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/store"
)

func main() {
	app := &cli.App{
		Name:   "storefront",
		Usage:  "Atlas Arrow order-processing service",
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("storefront failed")
	}
}

type collections struct {
	products      store.Collection[domain.Product]
	carts         store.Collection[domain.Cart]
	orders        store.Collection[domain.Order]
	notifications store.Collection[domain.Notification]
}

func openStore(ctx context.Context, cfg *config.Config) (*collections, error) {
	if cfg.StoreBackend == config.BackendMemory {
		mem := store.NewMemoryStore()
		return &collections{
			products:      store.NewMemory[domain.Product](mem, "products"),
			carts:         store.NewMemory[domain.Cart](mem, "carts"),
			orders:        store.NewMemory[domain.Order](mem, "orders"),
			notifications: store.NewMemory[domain.Notification](mem, "notifications"),
		}, nil
	}

	db, err := store.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}
	return &collections{
		products:      store.NewMongo[domain.Product](db, "products"),
		carts:         store.NewMongo[domain.Cart](db, "carts"),
		orders:        store.NewMongo[domain.Order](db, "orders"),
		notifications: store.NewMongo[domain.Notification](db, "notifications"),
	}, nil
}

func run(_ *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	colls, err := openStore(startCtx, cfg)
	if err != nil {
		return err
	}
	log.WithField("backend", cfg.StoreBackend).Info("store connected")

	var cartCache cache.CartCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(startCtx).Err(); err != nil {
			return err
		}
		defer rdb.Close()
		cartCache = cache.NewRedisCache(rdb)
		log.Info("cart cache enabled")
	}

	m := metrics.New()

	var mailer notify.Mailer
	if cfg.SMTPAddr != "" {
		mailer = &notify.SMTPMailer{Addr: cfg.SMTPAddr, From: cfg.SMTPFrom}
	}
	dispatcher := notify.NewDispatcher(mailer, colls.notifications, log, cfg.NotifyQueueSize, m.NotificationsDropped.Inc)
	defer dispatcher.Close()

	catalogSvc := catalog.NewService(colls.products)
	cartSvc := cart.NewService(colls.carts, catalogSvc, cartCache, log)
	orderSvc := order.NewService(colls.orders, catalogSvc, cartSvc, dispatcher, m, log)
	gateway := payment.NewGateway(payment.Config{
		BaseURL:   cfg.PaymentGatewayURL,
		KeyID:     cfg.PaymentKeyID,
		KeySecret: cfg.PaymentKeySecret,
		Timeout:   cfg.PaymentRequestTimeout,
	}, log)

	router := httpapi.NewRouter(httpapi.Handlers{
		Cart:    httpapi.NewCartHandler(cartSvc),
		Order:   httpapi.NewOrderHandler(orderSvc),
		Payment: httpapi.NewPaymentHandler(gateway, m),
		Admin:   httpapi.NewAdminHandler(orderSvc),
		Catalog: httpapi.NewCatalogHandler(catalogSvc),
		Metrics: m,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("storefront listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}
