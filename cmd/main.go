package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/cancel_booking"
	courtsHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/courts"
	createBookingHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/create_booking"
	createManualBookingHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/create_manual_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_booking"
	getOrderHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_order"
	getUserBookingsHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_user_bookings"
	getVenueBookingsHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_venue_bookings"
	paymentWebhookHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/payment_webhook"
	pricingHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/pricing"
	updateBookingStatusHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/update_booking_status"
	usersHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/users"
	venueDashboardHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/venue_dashboard"
	venuesHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/venues"
	"github.com/m04kA/SMC-CourtBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBooking/internal/config"
	"github.com/m04kA/SMC-CourtBooking/internal/infra/cache/idempotency"
	"github.com/m04kA/SMC-CourtBooking/internal/infra/migrator"
	bookingRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/booking"
	courtRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/court"
	orderRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/order"
	pricingRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/pricing"
	userRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/user"
	venueRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/venue"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/fieldsync"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/mailer"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/stripegateway"
	"github.com/m04kA/SMC-CourtBooking/internal/jobs"
	bookingsService "github.com/m04kA/SMC-CourtBooking/internal/service/bookings"
	dashboardService "github.com/m04kA/SMC-CourtBooking/internal/service/dashboard"
	ordersService "github.com/m04kA/SMC-CourtBooking/internal/service/orders"
	pricingService "github.com/m04kA/SMC-CourtBooking/internal/service/pricing"
	usersService "github.com/m04kA/SMC-CourtBooking/internal/service/users"
	venuesService "github.com/m04kA/SMC-CourtBooking/internal/service/venues"
	createBookingUC "github.com/m04kA/SMC-CourtBooking/internal/usecase/create_booking"
	createManualBookingUC "github.com/m04kA/SMC-CourtBooking/internal/usecase/create_manual_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-CourtBooking/internal/usecase/get_available_slots"
	syncExternalBlocksUC "github.com/m04kA/SMC-CourtBooking/internal/usecase/sync_external_blocks"
	"github.com/m04kA/SMC-CourtBooking/pkg/auth"
	"github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/logger"
	"github.com/m04kA/SMC-CourtBooking/pkg/metrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/txmanager"
)

const (
	jobTimeout             = 2 * time.Minute
	limiterCleanupSchedule = "@every 5m"
)

func main() {
	configPath := flag.String("config", "config.toml", "путь к файлу конфигурации")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-CourtBooking...")
	log.Info("Configuration loaded from %s", *configPath)

	location, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		log.Fatal("Failed to load timezone %s: %v", cfg.Server.Timezone, err)
	}

	// Метрики: nil коллектор отключает запись, обёртки остаются рабочими
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrator.Up(db, cfg.Database.DBName, log); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
	}

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Redis хранит отметки об обработанных событиях вебхука
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
	}
	pingCancel()
	idempotencyStore := idempotency.NewStore(redisClient, idempotency.DefaultTTL)
	log.Info("Connected to redis (addr=%s, db=%d)", cfg.Redis.Addr, cfg.Redis.DB)

	// Инициализируем интеграционных клиентов
	producer, err := events.NewProducer(
		cfg.Kafka.Brokers,
		events.Topics{Booking: cfg.Kafka.BookingTopic, Order: cfg.Kafka.OrderTopic},
		cfg.Kafka.MockMode,
		log,
	)
	if err != nil {
		log.Fatal("Failed to create event producer: %v", err)
	}
	defer producer.Close()

	gateway := stripegateway.NewClient(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, log)
	mail := mailer.New(mailer.Config{
		Enabled:  cfg.Mail.Enabled,
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}, log)

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	if err != nil {
		log.Fatal("Failed to create token manager: %v", err)
	}
	log.Info("Integration clients initialized (kafka mock=%t, mail enabled=%t, fieldsync enabled=%t)",
		cfg.Kafka.MockMode, cfg.Mail.Enabled, cfg.FieldSync.Enabled)

	// Инициализируем репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	orderRepository := orderRepo.NewRepository(wrappedDB)
	courtRepository := courtRepo.NewRepository(wrappedDB)
	venueRepository := venueRepo.NewRepository(wrappedDB)
	pricingRepository := pricingRepo.NewRepository(wrappedDB)
	userRepository := userRepo.NewRepository(wrappedDB)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		orderRepository,
		venueRepository,
		courtRepository,
		userRepository,
		gateway,
		producer,
		mail,
		txMgr,
		bookingsService.Settings{
			CancelNoticeMinutes: cfg.Booking.CancelNoticeMinutes,
			Location:            location,
		},
		log,
	)
	orderSvc := ordersService.NewService(ordersService.Deps{
		OrderRepo:   orderRepository,
		BookingRepo: bookingRepository,
		CourtRepo:   courtRepository,
		VenueRepo:   venueRepository,
		UserRepo:    userRepository,
		Gateway:     gateway,
		Idempotency: idempotencyStore,
		Publisher:   producer,
		Mailer:      mail,
		Metrics:     metricsCollector,
		TxManager:   txMgr,
		Location:    location,
		Logger:      log,
	})
	userSvc := usersService.NewService(
		userRepository,
		tokens,
		mail,
		txMgr,
		usersService.Settings{
			PublicURL:    cfg.Server.PublicURL,
			MagicLinkTTL: time.Duration(cfg.Auth.MagicLinkTTLMinutes) * time.Minute,
		},
		log,
	)
	venueSvc := venuesService.NewService(venueRepository, courtRepository, bookingRepository, txMgr, location, log)
	pricingSvc := pricingService.NewService(pricingRepository, courtRepository, venueRepository, location, log)
	dashboardSvc := dashboardService.NewService(bookingRepository, courtRepository, venueRepository, location, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		createBookingUC.Deps{
			BookingRepo: bookingRepository,
			OrderRepo:   orderRepository,
			CourtRepo:   courtRepository,
			VenueRepo:   venueRepository,
			PriceRepo:   pricingRepository,
			UserRepo:    userRepository,
			Gateway:     gateway,
			Publisher:   producer,
			Metrics:     metricsCollector,
			TxManager:   txMgr,
			Logger:      log,
		},
		createBookingUC.Settings{
			AdvanceDays:      cfg.Booking.AdvanceDays,
			MinNoticeMinutes: cfg.Booking.MinNoticeMinutes,
			MaxSlotsPerItem:  cfg.Booking.MaxSlotsPerItem,
			OrderTTLMinutes:  cfg.Payment.OrderTTLMinutes,
			Currency:         cfg.Payment.Currency,
			Location:         location,
		},
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		courtRepository,
		venueRepository,
		pricingRepository,
		getAvailableSlotsUC.Settings{
			AdvanceDays:      cfg.Booking.AdvanceDays,
			MinNoticeMinutes: cfg.Booking.MinNoticeMinutes,
			Location:         location,
		},
		log,
	)

	createManualBookingUseCase := createManualBookingUC.NewUseCase(
		bookingRepository,
		orderRepository,
		courtRepository,
		venueRepository,
		pricingRepository,
		producer,
		metricsCollector,
		txMgr,
		createManualBookingUC.Settings{
			AdvanceDays:     cfg.Booking.AdvanceDays,
			MaxSlotsPerItem: cfg.Booking.MaxSlotsPerItem,
			Currency:        cfg.Payment.Currency,
			Location:        location,
		},
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	createManualBooking := createManualBookingHandler.NewHandler(createManualBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getVenueBookings := getVenueBookingsHandler.NewHandler(bookingSvc, log)
	getOrder := getOrderHandler.NewHandler(orderSvc, log)
	paymentWebhook := paymentWebhookHandler.NewHandler(orderSvc, log)
	users := usersHandler.NewHandler(userSvc, log)
	venues := venuesHandler.NewHandler(venueSvc, log)
	courts := courtsHandler.NewHandler(venueSvc, log)
	prices := pricingHandler.NewHandler(pricingSvc, log)
	dashboard := venueDashboardHandler.NewHandler(dashboardSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.Recovery(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
		r.Use(limiter.Handler)
		log.Info("Rate limiting enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// --- Аутентификация ---
	api.HandleFunc("/auth/register", users.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", users.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/magic-link", users.RequestMagicLink).Methods(http.MethodPost)
	api.HandleFunc("/auth/magic-link/verify", users.VerifyMagicLink).Methods(http.MethodPost)

	// --- Каталог ---
	api.HandleFunc("/venues", venues.List).Methods(http.MethodGet)
	api.HandleFunc("/venues/{venueId}", venues.Get).Methods(http.MethodGet)
	api.HandleFunc("/venues/{venueId}/courts", courts.List).Methods(http.MethodGet)
	api.HandleFunc("/courts/{courtId}/slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/courts/{courtId}/blocks", courts.ListBlocks).Methods(http.MethodGet)
	api.HandleFunc("/courts/{courtId}/prices", prices.List).Methods(http.MethodGet)

	// Вебхук платёжного провайдера, подлинность проверяется подписью
	api.HandleFunc("/payments/webhook", paymentWebhook.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют Bearer токен)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.NewAuth(tokens, log).Handler)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/manual", createManualBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// --- Заказы ---
	protected.HandleFunc("/orders/{orderId}", getOrder.Handle).Methods(http.MethodGet)

	// --- Профиль ---
	protected.HandleFunc("/users/me", users.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/users/me", users.UpdateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/users/me/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Управление площадкой (для менеджеров) ---
	protected.HandleFunc("/venues", venues.Create).Methods(http.MethodPost)
	protected.HandleFunc("/venues/{venueId}", venues.Update).Methods(http.MethodPut)
	protected.HandleFunc("/venues/{venueId}/managers", venues.AddManager).Methods(http.MethodPost)
	protected.HandleFunc("/venues/{venueId}/bookings", getVenueBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/venues/{venueId}/bookings/export", dashboard.Export).Methods(http.MethodGet)
	protected.HandleFunc("/venues/{venueId}/dashboard", dashboard.Dashboard).Methods(http.MethodGet)
	protected.HandleFunc("/venues/{venueId}/courts", courts.Create).Methods(http.MethodPost)
	protected.HandleFunc("/courts/{courtId}", courts.Update).Methods(http.MethodPut)
	protected.HandleFunc("/courts/{courtId}/blocks", courts.CreateBlock).Methods(http.MethodPost)
	protected.HandleFunc("/blocks/{blockId}", courts.DeleteBlock).Methods(http.MethodDelete)
	protected.HandleFunc("/courts/{courtId}/prices", prices.Create).Methods(http.MethodPost)
	protected.HandleFunc("/prices/{priceId}", prices.Delete).Methods(http.MethodDelete)

	// Фоновые задачи
	scheduler := jobs.NewScheduler(jobTimeout, metricsCollector, log)

	if err := scheduler.Add(jobs.JobExpireOrders, cfg.Payment.ExpirySchedule, jobs.ExpireOrders(orderSvc, log)); err != nil {
		log.Fatal("Failed to schedule %s: %v", jobs.JobExpireOrders, err)
	}

	if cfg.FieldSync.Enabled {
		syncClient := fieldsync.NewClient(cfg.FieldSync.URL, time.Duration(cfg.FieldSync.Timeout)*time.Second, log)
		syncUseCase := syncExternalBlocksUC.NewUseCase(
			courtRepository,
			syncClient,
			txMgr,
			syncExternalBlocksUC.Settings{DaysAhead: cfg.FieldSync.DaysAhead, Location: location},
			log,
		)
		if err := scheduler.Add(jobs.JobSyncBlocks, cfg.FieldSync.Schedule, jobs.SyncExternalBlocks(syncUseCase, log)); err != nil {
			log.Fatal("Failed to schedule %s: %v", jobs.JobSyncBlocks, err)
		}
	}

	if limiter != nil {
		if err := scheduler.Add(jobs.JobLimiterGC, limiterCleanupSchedule, jobs.CleanupLimiters(limiter, log)); err != nil {
			log.Fatal("Failed to schedule %s: %v", jobs.JobLimiterGC, err)
		}
	}

	scheduler.Start()

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Error("Background jobs did not stop in time: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
