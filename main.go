// File: prepbook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prepbook/config"
	"prepbook/cron"
	"prepbook/database"
	"prepbook/database/repository"
	bookingRepo "prepbook/database/repository/booking"
	memoryRepo "prepbook/database/repository/memory"
	slotRuleRepo "prepbook/database/repository/slotrule"
	userRepo "prepbook/database/repository/user"
	walletRepo "prepbook/database/repository/wallet"
	"prepbook/handlers"
	"prepbook/middleware"
	"prepbook/models"
	"prepbook/routes"
	"prepbook/services/availability"
	"prepbook/services/booking"
	"prepbook/services/notification"
	"prepbook/services/payment"
	"prepbook/services/wallet"
	"prepbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type stores struct {
	bookings bookingRepo.BookingRepository
	rules    slotRuleRepo.SlotRuleRepository
	wallets  walletRepo.WalletRepository
	users    userRepo.UserRepository
	tx       repository.TxRunner
	mongo    *mongo.Client
}

func openStores(logger *zap.Logger) stores {
	if config.UsesMemoryStore() {
		logger.Warn("main: using the in-memory store; data is lost on restart")
		store := memoryRepo.NewStore()
		store.PutUser(models.User{ID: "platform", Name: "Platform", Role: models.RoleAdmin, Approved: true})
		for _, u := range config.AppConfig.SeedUsers {
			store.PutUser(models.User{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Approved: u.Approved})
		}
		return stores{
			bookings: store.Bookings(),
			rules:    store.SlotRules(),
			wallets:  store.Wallets(),
			users:    store.Users(),
			tx:       store,
		}
	}

	database.InitDB()
	db := database.DB()
	return stores{
		bookings: bookingRepo.NewMongoBookingRepo(db),
		rules:    slotRuleRepo.NewMongoSlotRuleRepo(db),
		wallets:  walletRepo.NewMongoWalletRepo(db),
		users:    userRepo.NewMongoUserRepo(db),
		tx:       repository.NewMongoTxRunner(database.MongoClient),
		mongo:    database.MongoClient,
	}
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	st := openStores(logger)

	if err := utils.InitCache(); err != nil {
		logger.Warn("main: redis cache unavailable, slot rules are read uncached", zap.Error(err))
	} else {
		st.rules = slotRuleRepo.NewCachedSlotRuleRepo(st.rules, utils.GetCacheClient(), utils.SlotRuleCacheTTL)
	}

	loc := utils.LoadLocation(cfg.Timezone)
	interval := time.Duration(cfg.SchedulerIntervalSeconds) * time.Second

	// Payments. Proofs are signed by the payment webhook relay with PAYMENT_KEY_SECRET;
	// the gateway is asked for the order's status and amount before money moves.
	verifier := payment.NewHMACVerifier(cfg.PaymentKeySecret)
	var gateway payment.OrderGateway = &payment.LocalGateway{Currency: cfg.PaymentCurrency}
	if cfg.StripeKey != "" {
		stripe.Key = cfg.StripeKey
		gateway = payment.NewStripeGateway(cfg.PaymentCurrency, logger)
	}

	// Notifications: bookings enqueue, the worker delivers.
	queueOpts := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
	queue := asynq.NewClient(queueOpts)
	defer queue.Close()
	notifier := notification.NewQueueNotifier(queue, logger)

	deliverer := &notification.Deliverer{Users: st.users, Logger: logger}
	if cfg.SMTPHost != "" {
		deliverer.Mailer = &notification.SMTPMailer{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPUser,
		}
	}
	if cfg.FirebaseCredentialsFile != "" {
		if err := utils.FirebaseInit(ctx); err != nil {
			logger.Warn("main: push notifications disabled", zap.Error(err))
		} else {
			deliverer.Push = &notification.FCMSender{Client: utils.FCMClient}
		}
	}
	worker := cron.StartNotificationWorker(queueOpts, deliverer, logger)

	// Services.
	walletService := &wallet.DefaultWalletService{
		Repo:     st.wallets,
		Tx:       st.tx,
		Verifier: verifier,
		Orders:   gateway,
		Logger:   logger,
	}
	availabilityService := &availability.DefaultAvailabilityService{
		Rules:      st.rules,
		Bookings:   st.bookings,
		SlotLength: time.Duration(cfg.SlotLengthMinutes) * time.Minute,
		Location:   loc,
		Logger:     logger,
	}
	bookingService := &booking.DefaultBookingService{
		Bookings:           st.bookings,
		Users:              st.users,
		Wallet:             walletService,
		Tx:                 st.tx,
		Verifier:           verifier,
		Orders:             gateway,
		Notifier:           notifier,
		FeePercent:         cfg.PlatformFeePercent,
		CancellationCutoff: time.Duration(cfg.CancellationCutoffHours) * time.Hour,
		Location:           loc,
		Logger:             logger,
	}

	// Background jobs.
	reaper := &cron.Reaper{
		Bookings: st.bookings,
		Expirer:  bookingService,
		Timeout:  time.Duration(cfg.PaymentTimeoutMinutes) * time.Minute,
		Interval: interval,
		Logger:   logger,
	}
	reminders := &cron.ReminderDispatcher{
		Bookings: st.bookings,
		Notifier: notifier,
		Location: loc,
		Interval: interval,
		Logger:   logger,
	}
	go reaper.Run(ctx)
	go reminders.Run(ctx)
	utils.StartHealthMonitor(ctx, utils.GetCacheClient(), st.mongo)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewBookingHandler(bookingService, logger),
		handlers.NewAvailabilityHandler(availabilityService, logger),
		handlers.NewWalletHandler(walletService, logger),
		handlers.NewPaymentHandler(gateway, logger),
		handlers.NewAdminHandler(walletService),
	)
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	worker.Shutdown()
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: mongo disconnect failed: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
