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

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/swapnil12348/gocart/internal/handlers"
	"github.com/swapnil12348/gocart/internal/payments"
	"github.com/swapnil12348/gocart/internal/platform/auth"
	"github.com/swapnil12348/gocart/internal/platform/cache"
	"github.com/swapnil12348/gocart/internal/platform/config"
	pfirestore "github.com/swapnil12348/gocart/internal/platform/firestore"
	"github.com/swapnil12348/gocart/internal/platform/jobs"
	"github.com/swapnil12348/gocart/internal/platform/observability"
	"github.com/swapnil12348/gocart/internal/platform/secrets"
	firestoreRepo "github.com/swapnil12348/gocart/internal/repositories/firestore"
	"github.com/swapnil12348/gocart/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	fetcher, err := secrets.NewFetcher(ctx, secrets.WithLogger(logger.Named("secrets")))
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx, config.WithSecretResolver(fetcher))
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		if err := firestoreProvider.Close(); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(firebaseVerifier)

	storeCache := cache.NewCache(cfg.Redis, logger.Named("cache"))
	defer func() {
		if err := storeCache.Close(); err != nil {
			logger.Warn("cache close error", zap.Error(err))
		}
	}()

	eventPublisher, pubsubClient := newOrderEventPublisher(ctx, logger, cfg)
	if pubsubClient != nil {
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()
	}

	userRepo, err := firestoreRepo.NewUserRepository(firestoreProvider, time.Now)
	if err != nil {
		logger.Fatal("failed to initialise user repository", zap.Error(err))
	}
	addressRepo, err := firestoreRepo.NewAddressRepository(firestoreProvider, time.Now)
	if err != nil {
		logger.Fatal("failed to initialise address repository", zap.Error(err))
	}
	couponRepo, err := firestoreRepo.NewCouponRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise coupon repository", zap.Error(err))
	}
	productRepo, err := firestoreRepo.NewProductRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise product repository", zap.Error(err))
	}
	storeRepo, err := firestoreRepo.NewStoreRepository(firestoreProvider, time.Now)
	if err != nil {
		logger.Fatal("failed to initialise store repository", zap.Error(err))
	}
	orderRepo, err := firestoreRepo.NewOrderRepository(firestoreProvider, time.Now)
	if err != nil {
		logger.Fatal("failed to initialise order repository", zap.Error(err))
	}
	ratingRepo, err := firestoreRepo.NewRatingRepository(firestoreProvider, time.Now)
	if err != nil {
		logger.Fatal("failed to initialise rating repository", zap.Error(err))
	}

	stripeProvider, err := payments.NewStripeProvider(payments.StripeProviderConfig{
		APIKey: cfg.Stripe.APIKey,
		Logger: payments.Logger(observability.NewEventLogger(logger.Named("payments"))),
		Clock:  time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise stripe provider", zap.Error(err))
	}
	webhookVerifier, err := payments.NewWebhookVerifier(cfg.Stripe.WebhookSecret)
	if err != nil {
		logger.Fatal("failed to initialise webhook verifier", zap.Error(err))
	}

	idGen := func() string { return ulid.Make().String() }

	cartService, err := services.NewCartService(services.CartServiceDeps{
		Users:    userRepo,
		Products: productRepo,
		Clock:    time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise cart service", zap.Error(err))
	}

	couponService, err := services.NewCouponService(services.CouponServiceDeps{
		Coupons: couponRepo,
		Orders:  orderRepo,
		Clock:   time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise coupon service", zap.Error(err))
	}

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:    orderRepo,
		Users:     userRepo,
		Products:  productRepo,
		Addresses: addressRepo,
		Coupons:   couponService,
		Payments:  stripeProvider,
		Events:    eventPublisher,
		Logger:    observability.NewEventLogger(logger.Named("orders")),
		Clock:     time.Now,
		IDGen:     idGen,
		Settings: services.CheckoutSettings{
			Currency:         cfg.Checkout.Currency,
			ShippingFeeMinor: cfg.Checkout.ShippingFeeMinor,
			MemberPlan:       cfg.Checkout.MemberPlan,
			AppID:            cfg.Checkout.AppID,
			SessionTTL:       cfg.Checkout.SessionTTL,
			SuccessURL:       cfg.Checkout.SuccessURL,
			CancelURL:        cfg.Checkout.CancelURL,
		},
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	ratingService, err := services.NewRatingService(services.RatingServiceDeps{
		Ratings: ratingRepo,
		Orders:  orderRepo,
		Clock:   time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise rating service", zap.Error(err))
	}

	storeService, err := services.NewStoreService(services.StoreServiceDeps{
		Stores:   storeRepo,
		Products: productRepo,
		Ratings:  ratingRepo,
		Cache:    storeCache,
		Clock:    time.Now,
		IDGen:    idGen,
	})
	if err != nil {
		logger.Fatal("failed to initialise store service", zap.Error(err))
	}

	addressService, err := services.NewAddressService(services.AddressServiceDeps{
		Addresses: addressRepo,
		Clock:     time.Now,
		IDGen:     idGen,
	})
	if err != nil {
		logger.Fatal("failed to initialise address service", zap.Error(err))
	}

	healthHandlers := handlers.NewHealthHandlers(handlers.WithReadinessChecks(
		firestoreReadinessCheck(firestoreClient),
	))

	projectID := cfg.Firestore.ProjectID
	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger.Named("http")),
			observability.TraceMiddleware(projectID),
			observability.RecoveryMiddleware(logger.Named("http")),
			observability.RequestLoggerMiddleware(projectID),
		),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithCartRoutes(handlers.NewCartHandlers(authenticator, cartService).Routes),
		handlers.WithCouponRoutes(handlers.NewCouponHandlers(authenticator, couponService).Routes),
		handlers.WithOrderRoutes(handlers.NewOrderHandlers(authenticator, orderService).Routes),
		handlers.WithRatingRoutes(handlers.NewRatingHandlers(authenticator, ratingService).Routes),
		handlers.WithStoreRoutes(handlers.NewStoreHandlers(authenticator, storeService).Routes),
		handlers.WithAddressRoutes(handlers.NewAddressHandlers(authenticator, addressService).Routes),
		handlers.WithWebhookRoutes(handlers.NewWebhookHandlers(webhookVerifier, orderService, cfg.Checkout.AppID).Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("gocart api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newOrderEventPublisher connects the Pub/Sub order event topic when one is
// configured, falling back to a no-op publisher otherwise.
func newOrderEventPublisher(ctx context.Context, logger *zap.Logger, cfg config.Config) (jobs.OrderEventPublisher, *pubsub.Client) {
	if cfg.PubSub.OrderEventsTopic == "" || cfg.PubSub.ProjectID == "" {
		logger.Info("order event topic not configured; events disabled")
		return jobs.NopOrderEventPublisher{}, nil
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		logger.Warn("failed to initialise pubsub client; events disabled", zap.Error(err))
		return jobs.NopOrderEventPublisher{}, nil
	}

	publisher, err := jobs.NewPubSubOrderEventPublisher(client.Topic(cfg.PubSub.OrderEventsTopic))
	if err != nil {
		logger.Warn("failed to initialise order event publisher; events disabled", zap.Error(err))
		_ = client.Close()
		return jobs.NopOrderEventPublisher{}, nil
	}
	return publisher, client
}

func firestoreReadinessCheck(client *firestore.Client) handlers.ReadinessCheck {
	return handlers.ReadinessCheck{
		Name:    "firestore",
		Timeout: 1500 * time.Millisecond,
		Check: func(ctx context.Context) error {
			iter := client.Collections(ctx)
			if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
				return err
			}
			return nil
		},
	}
}
