package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	appInventory "github.com/vendora/marketplace/internal/application/inventory"
	appNotification "github.com/vendora/marketplace/internal/application/notification"
	appOrder "github.com/vendora/marketplace/internal/application/order"
	appProduct "github.com/vendora/marketplace/internal/application/product"
	appRating "github.com/vendora/marketplace/internal/application/rating"
	domainInventory "github.com/vendora/marketplace/internal/domain/inventory"
	domainNotification "github.com/vendora/marketplace/internal/domain/notification"
	domainOrder "github.com/vendora/marketplace/internal/domain/order"
	domainProduct "github.com/vendora/marketplace/internal/domain/product"
	domainRating "github.com/vendora/marketplace/internal/domain/rating"
	domainUser "github.com/vendora/marketplace/internal/domain/user"
	"github.com/vendora/marketplace/internal/infrastructure/id"
	"github.com/vendora/marketplace/internal/infrastructure/memory"
	"github.com/vendora/marketplace/internal/infrastructure/mongodb"
	obsinfra "github.com/vendora/marketplace/internal/infrastructure/observability"
	"github.com/vendora/marketplace/internal/infrastructure/observability/oteltrace"
	"github.com/vendora/marketplace/internal/infrastructure/observability/prometrics"
	"github.com/vendora/marketplace/internal/infrastructure/observability/zaplogger"
	"github.com/vendora/marketplace/internal/observability"
	httppresentation "github.com/vendora/marketplace/internal/presentation/http"
)

type repositories struct {
	orders        domainOrder.Repository
	inventory     domainInventory.Repository
	products      domainProduct.Repository
	users         domainUser.Repository
	notifications domainNotification.Repository
	ratings       domainRating.Repository
}

func main() {
	serviceName := getenvDefault("SERVICE_NAME", "marketplace")
	env := getenvDefault("ENV", "dev")
	addr := getenvDefault("ADDR", ":8080")

	logger := zaplogger.New(
		observability.F("service", serviceName),
		observability.F("env", env),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometrics.New(serviceName, "")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MHTTPRequests: reg.Counter(
			string(observability.MHTTPRequests),
			"Total number of HTTP requests.",
			"method", "route", "status"),
		observability.MOrdersPlaced: reg.Counter(
			string(observability.MOrdersPlaced),
			"Total number of orders placed."),
		observability.MOrdersDispatched: reg.Counter(
			string(observability.MOrdersDispatched),
			"Total number of orders dispatched."),
		observability.MDispatchConflicts: reg.Counter(
			string(observability.MDispatchConflicts),
			"Dispatch attempts refused for stock or state conflicts."),
		observability.MLowStockAlerts: reg.Counter(
			string(observability.MLowStockAlerts),
			"Low stock alerts raised to vendors."),
		observability.MNotificationsSent: reg.Counter(
			string(observability.MNotificationsSent),
			"Notifications delivered to users."),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MHTTPRequestDuration: reg.Histogram(
			string(observability.MHTTPRequestDuration),
			"HTTP request duration in seconds.",
			nil,
			"method", "route", "status"),
	}

	tel := obsinfra.New(oteltrace.New(serviceName), logger, counters, histograms)

	repos, cleanup, err := buildRepositories(ctx, logger)
	if err != nil {
		logger.Error("store_init_failed", observability.F("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	idGen := id.NewUUIDGenerator()
	codeGen := id.NewOrderCodeGenerator()

	notificationService := appNotification.NewService(repos.notifications, idGen, tel)
	inventoryService := appInventory.NewService(
		repos.inventory, repos.products, repos.orders, notificationService, idGen, tel)
	orderService := appOrder.NewService(
		repos.orders, repos.products, inventoryService, repos.users, notificationService,
		idGen, codeGen, tel)
	productService := appProduct.NewService(repos.products, inventoryService, idGen, tel)
	ratingService := appRating.NewService(repos.ratings, orderService, idGen, tel)

	handler := httppresentation.NewHandler(
		orderService, inventoryService, productService, notificationService, ratingService, tel)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("http_server_start", observability.F("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", observability.F("error", err.Error()))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", observability.F("error", err.Error()))
	} else {
		logger.Info("http_server_stopped")
	}
}

// buildRepositories connects to the document store when MONGO_URI is set
// and falls back to the in-memory store otherwise (local runs, tests).
func buildRepositories(ctx context.Context, logger observability.Logger) (repositories, func(), error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		logger.Info("store_memory")
		return repositories{
			orders:        memory.NewOrderRepository(),
			inventory:     memory.NewInventoryRepository(),
			products:      memory.NewProductRepository(),
			users:         memory.NewUserRepository(),
			notifications: memory.NewNotificationRepository(),
			ratings:       memory.NewRatingRepository(),
		}, func() {}, nil
	}

	client, err := mongodb.Connect(ctx, uri)
	if err != nil {
		return repositories{}, nil, err
	}
	db := client.Database(getenvDefault("MONGO_DB", "marketplace"))
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return repositories{}, nil, err
	}
	logger.Info("store_mongodb", observability.F("database", db.Name()))

	cleanup := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}
	return repositories{
		orders:        mongodb.NewOrderRepository(db),
		inventory:     mongodb.NewInventoryRepository(db),
		products:      mongodb.NewProductRepository(db),
		users:         mongodb.NewUserRepository(db),
		notifications: mongodb.NewNotificationRepository(db),
		ratings:       mongodb.NewRatingRepository(db),
	}, cleanup, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
