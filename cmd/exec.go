package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ticket-exchange/config"
	"ticket-exchange/internal/handlers"
	"ticket-exchange/internal/ledger"
	"ticket-exchange/internal/services"
	"ticket-exchange/internal/services/bank"
	"ticket-exchange/internal/status"
	"ticket-exchange/internal/store"
	"ticket-exchange/monitoring"
	"ticket-exchange/security"
	"ticket-exchange/utils"

	_ "ticket-exchange/migrations"

	"github.com/labstack/echo/v5"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bank gateway is optional; without it only direct top-ups work.
	var gateway bank.Gateway
	if cfg.JDBConfig.BaseURL != "" {
		jdbGateway, err := bank.NewJDBGateway(ctx, &cfg.JDBConfig)
		if err != nil {
			return err
		}
		gateway = jdbGateway
		defer jdbGateway.Close(context.Background())
	}

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		db := app.DB()

		// Storage
		ticketStore := store.NewTicketStore(db)
		accountLedger := ledger.New(db)

		// Services
		cache := services.NewListingCache(redisClient, cfg.ListingCacheTTL)
		notifier := services.NewNotifier(pn)
		resolver := services.NewLineageResolver(ticketStore)
		marketService := services.NewMarketService(ticketStore, accountLedger, cache, notifier)
		resaleService := services.NewResaleService(ticketStore, resolver, cache, notifier)
		purchaseService := services.NewPurchaseService(ticketStore, accountLedger, cache, notifier)
		editService := services.NewEditService(ticketStore, cache)
		accountService := services.NewAccountService(accountLedger, redisClient, gateway, notifier, cfg.StartingBalance, cfg.TopUpSessionTTL)

		if gateway != nil {
			tranChannel := make(chan *status.Transaction, 1)
			gateway.SetTransactionChannel(tranChannel)
			go func() {
				for {
					select {
					case t := <-tranChannel:
						slog.Info("bank transaction settled", "bill", t.UUID, "amount", t.Amount)
						if err := accountService.ConfirmTopUp(ctx, t); err != nil {
							slog.Error("failed to confirm top-up", "bill", t.UUID, "error", err)
						}
					case <-ctx.Done():
						return
					}
				}
			}()
		}

		// Handlers
		accountHandler := handlers.NewAccountHandler(accountService)
		marketHandler := handlers.NewMarketHandler(marketService, resaleService, purchaseService, editService)

		// Account endpoints
		e.Router.POST("/api/v1/register", accountHandler.Register)
		e.Router.POST("/api/v1/login", accountHandler.Login)
		e.Router.GET("/api/v1/balance", accountHandler.Balance)
		e.Router.POST("/api/v1/topup", accountHandler.TopUp)
		e.Router.POST("/api/v1/topup/qr", accountHandler.GenTopUpQr)

		// Marketplace endpoints
		e.Router.GET("/api/v1/tickets", marketHandler.ListTickets)
		e.Router.GET("/api/v1/mytickets", marketHandler.MyTickets)
		e.Router.POST("/api/v1/tickets", marketHandler.CreateTicket)
		e.Router.POST("/api/v1/tickets/{ticketId}/resale", marketHandler.ResaleTicket)
		e.Router.POST("/api/v1/tickets/{ticketId}/buy", marketHandler.BuyTicket)
		e.Router.PUT("/api/v1/tickets/{ticketId}", marketHandler.UpdateTicket)
		e.Router.DELETE("/api/v1/tickets/{ticketId}", marketHandler.DeleteTicket)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		if cfg.EnableMetrics {
			monitoring.NewMonitor(redisClient)
			go startOpsServer(cfg, redisClient)
		}

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

// startOpsServer exposes metrics and a liveness probe on a separate port,
// rate limited so the scrape surface cannot be hammered.
func startOpsServer(cfg *config.Config, redisClient *redis.Client) {
	ops := echo.New()

	limiter := security.NewRateLimiter(redisClient)
	ops.Use(limiter.AntiBotMiddleware())
	ops.Use(limiter.OpsRateLimit())

	metricsHandler := promhttp.Handler()
	ops.GET("/metrics", func(c echo.Context) error {
		metricsHandler.ServeHTTP(c.Response(), c.Request())
		return nil
	})
	ops.GET("/healthz", func(c echo.Context) error {
		if err := utils.RedisHealthCheck(redisClient); err != nil {
			return c.JSON(503, map[string]string{"status": "unhealthy"})
		}
		return c.JSON(200, map[string]string{"status": "healthy"})
	})

	server := http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: ops,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("ops server stopped", "error", err)
	}
}

func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down...")
	cancel()
}
