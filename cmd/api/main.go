package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-rental-booking.git/internal/booking"
	"github.com/ariefcatur/go-rental-booking.git/internal/cart"
	"github.com/ariefcatur/go-rental-booking.git/internal/config"
	"github.com/ariefcatur/go-rental-booking.git/internal/httpx"
	"github.com/ariefcatur/go-rental-booking.git/internal/logx"
	"github.com/ariefcatur/go-rental-booking.git/internal/notify"
	"github.com/ariefcatur/go-rental-booking.git/internal/payment"
	"github.com/ariefcatur/go-rental-booking.git/internal/postgres"
	"github.com/ariefcatur/go-rental-booking.git/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logx.New(cfg.AppEnv, cfg.ServiceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer untuk notifikasi
	prod := notify.NewProducer(cfg.KafkaBrokers, notify.TopicNotify, 1024, logger)
	prod.Start(ctx)
	notifier := &notify.KafkaNotifier{Producer: prod, Service: cfg.ServiceName}

	// Repo
	catalogRepo := &postgres.CatalogRepo{DB: db}
	cartRepo := &postgres.CartRepo{DB: db}
	userRepo := &postgres.UserRepo{DB: db}
	bookingRepo := &postgres.BookingRepo{DB: db}
	paymentRepo := &postgres.PaymentRepo{DB: db}

	// Service
	cartSvc := cart.NewService(cartRepo, catalogRepo)
	bookingSvc := booking.NewService(bookingRepo, cartRepo, userRepo, notifier, logger)
	gateway := payment.NewMidtransGateway(cfg.MidtransServerKey, cfg.MidtransIsProduction, cfg.FrontendURL)
	paymentSvc := payment.NewService(paymentRepo, bookingRepo, userRepo, gateway, notifier, logger, cfg.GatewayTimeout)

	// Router & handler
	router := httpx.NewRouter()
	ph := &httpx.PaymentHandler{Payments: paymentSvc, Redis: rdb, Log: logger}
	ph.RegisterPublic(router)
	(&httpx.CatalogHandler{Catalog: catalogRepo}).Register(router)

	router.Group(func(r chi.Router) {
		r.Use(httpx.RequireIdentity)
		(&httpx.CartHandler{Carts: cartSvc}).Register(r)
		(&httpx.BookingHandler{Bookings: bookingSvc, Redis: rdb}).Register(r)
		ph.Register(r)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	prod.WaitClosed() // drain
}
