package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	absencesHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/absences"
	changeBookingStatusHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/change_booking_status"
	createBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_booking"
	deleteBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_booking"
	getAvailableEmployeesHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_available_employees"
	getBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_booking"
	getEmployeeScheduleHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_employee_schedule"
	getUpcomingBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_upcoming_bookings"
	invitationsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/invitations"
	listBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_bookings"
	parametersHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/parameters"
	servicesHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/services"
	workingHoursHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/working_hours"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	absenceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/absence"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	invitationRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/invitation"
	parametersRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/parameters"
	userRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/user"
	workingHoursRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/workinghours"
	"github.com/m04kA/SMC-AppointmentService/internal/notifications"
	bookingsService "github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	catalogService "github.com/m04kA/SMC-AppointmentService/internal/service/catalog"
	invitationsService "github.com/m04kA/SMC-AppointmentService/internal/service/invitations"
	parametersService "github.com/m04kA/SMC-AppointmentService/internal/service/parameters"
	scheduleService "github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
	createBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	getAvailableEmployeesUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_employees"
	"github.com/m04kA/SMC-AppointmentService/migrations"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/migrate"
	"github.com/m04kA/SMC-AppointmentService/pkg/tracing"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// eventPublisher общий интерфейс для Kafka и заглушки
type eventPublisher interface {
	PublishBookingCreated(ctx context.Context, b *domain.Booking) error
	PublishStatusChanged(ctx context.Context, b *domain.Booking, previous domain.BookingStatus) error
	Close() error
}

func main() {
	// Загружаем конфигурацию
	configPath := config.Path()
	cfg, err := config.Load(configPath)
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

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from %s", configPath)

	ctx := context.Background()

	// Трейсинг
	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Tracing.ServiceName,
		OTLPEndpoint: cfg.Tracing.Endpoint,
		SampleRatio:  cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal("Failed to setup tracing: %v", err)
	}
	if cfg.Tracing.Enabled {
		log.Info("Tracing enabled, exporting to %s", cfg.Tracing.Endpoint)
	}

	// Инициализируем метрики (если включены)
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
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrate.Up(ctx, db, migrations.FS, log); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
	}

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.New(db, nil)
	}

	// Репозитории
	userRepository := userRepo.NewRepository(wrappedDB)
	catalogRepository := catalogRepo.NewRepository(wrappedDB)
	workingHoursRepository := workingHoursRepo.NewRepository(wrappedDB)
	absenceRepository := absenceRepo.NewRepository(wrappedDB)
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	parametersRepository := parametersRepo.NewRepository(wrappedDB)
	invitationRepository := invitationRepo.NewRepository(wrappedDB)

	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// События бронирований
	var publisher eventPublisher = notifications.NoopPublisher{}
	if cfg.Kafka.Enabled {
		writer := notifications.NewWriter(notifications.Config{
			Brokers:      notifications.SplitBrokers(cfg.Kafka.Brokers),
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: time.Duration(cfg.Kafka.WriteTimeout) * time.Second,
		})
		publisher = notifications.NewKafkaPublisher(writer, metricsCollector, log)
		log.Info("Kafka publisher enabled (brokers=%s, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	// Проверка доступности слотов
	evaluator := availability.NewEvaluator(
		workingHoursRepository,
		absenceRepository,
		bookingRepository,
		metricsCollector,
		log,
	)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(bookingRepository, publisher, txMgr, log)
	catalogSvc := catalogService.NewService(catalogRepository, userRepository, txMgr, log)
	scheduleSvc := scheduleService.NewService(
		workingHoursRepository,
		absenceRepository,
		userRepository,
		evaluator,
		log,
	)
	parametersSvc := parametersService.NewService(parametersRepository, log)
	invitationsSvc := invitationsService.NewService(
		invitationRepository,
		userRepository,
		catalogRepository,
		txMgr,
		log,
	).WithPasswordCost(cfg.Security.BcryptCost)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		catalogRepository,
		userRepository,
		parametersRepository,
		evaluator,
		publisher,
		metricsCollector,
		txMgr,
		log,
	).WithPasswordCost(cfg.Security.BcryptCost)

	getAvailableEmployeesUseCase := getAvailableEmployeesUC.NewUseCase(
		catalogRepository,
		evaluator,
		cfg.Availability.MaxParallel,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableEmployees := getAvailableEmployeesHandler.NewHandler(getAvailableEmployeesUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	getUpcomingBookings := getUpcomingBookingsHandler.NewHandler(bookingSvc, log)
	changeBookingStatus := changeBookingStatusHandler.NewHandler(bookingSvc, log)
	deleteBooking := deleteBookingHandler.NewHandler(bookingSvc, log)
	services := servicesHandler.NewHandler(catalogSvc, log)
	workingHours := workingHoursHandler.NewHandler(scheduleSvc, log)
	absences := absencesHandler.NewHandler(scheduleSvc, log)
	employeeSchedule := getEmployeeScheduleHandler.NewHandler(scheduleSvc, log)
	parameters := parametersHandler.NewHandler(parametersSvc, log)
	invitations := invitationsHandler.NewHandler(invitationsSvc, log)

	auth := middleware.NewAuthenticator(userRepository, cfg.Security.UserIDHeader, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		pingCtx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := wrappedDB.PingContext(pingCtx); err != nil {
			log.Warn("GET /health - Database unavailable: %v", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные сотрудники на слот
	api.HandleFunc("/users/available-employees", getAvailableEmployees.Handle).Methods(http.MethodGet)

	// Параметры заведения
	api.HandleFunc("/parameters", parameters.Get).Methods(http.MethodGet)

	// Рабочие часы сотрудника
	api.HandleFunc("/working-hours", workingHours.List).Methods(http.MethodGet)

	// Ответ на приглашение по токену
	api.HandleFunc("/invitations/accept", invitations.Accept).Methods(http.MethodPost)
	api.HandleFunc("/invitations/decline", invitations.Decline).Methods(http.MethodPost)

	// ============================================================
	// OPTIONAL AUTH ROUTES (гость или пользователь)
	// ============================================================

	optional := api.PathPrefix("").Subrouter()
	optional.Use(auth.Optional)

	createBookingRoute := http.Handler(http.HandlerFunc(createBooking.Handle))
	if cfg.RateLimit.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
			DB:       cfg.RateLimit.RedisDB,
		})
		defer rdb.Close()

		limiter := middleware.NewRateLimiter(
			rdb,
			cfg.RateLimit.Limit,
			time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
			cfg.RateLimit.Prefix,
			cfg.RateLimit.FailOpen,
			log,
		)
		createBookingRoute = limiter.Middleware(createBookingRoute)
		log.Info("Rate limit on POST /bookings: %d per %ds (redis=%s)",
			cfg.RateLimit.Limit, cfg.RateLimit.WindowSeconds, cfg.RateLimit.RedisAddr)
	}
	optional.Handle("/bookings", createBookingRoute).Methods(http.MethodPost)

	optional.HandleFunc("/services", services.List).Methods(http.MethodGet)
	optional.HandleFunc("/services/{serviceId}", services.Get).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(auth.Required)

	// --- Бронирования ---
	// upcoming регистрируется раньше {bookingId}
	protected.HandleFunc("/bookings/upcoming", getUpcomingBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/{action}", changeBookingStatus.Handle).Methods(http.MethodPatch)
	protected.Handle("/bookings",
		middleware.RequireCapability(domain.CapViewAllBookings)(http.HandlerFunc(listBookings.Handle)),
	).Methods(http.MethodGet)
	protected.Handle("/bookings/{bookingId}",
		middleware.RequireCapability(domain.CapDeleteBookings)(http.HandlerFunc(deleteBooking.Handle)),
	).Methods(http.MethodDelete)

	// --- Услуги (администратор) ---
	manageServices := middleware.RequireCapability(domain.CapManageServices)
	protected.Handle("/services", manageServices(http.HandlerFunc(services.Create))).Methods(http.MethodPost)
	protected.Handle("/services/{serviceId}", manageServices(http.HandlerFunc(services.Update))).Methods(http.MethodPut)
	protected.Handle("/services/{serviceId}", manageServices(http.HandlerFunc(services.Delete))).Methods(http.MethodDelete)
	protected.Handle("/services/{serviceId}/toggle", manageServices(http.HandlerFunc(services.Toggle))).Methods(http.MethodPatch)
	protected.Handle("/services/{serviceId}/employees", manageServices(http.HandlerFunc(services.SetEmployees))).Methods(http.MethodPut)

	// --- Расписание (свое или администратор) ---
	manageSchedule := middleware.RequireCapability(domain.CapManageOwnSchedule)
	protected.Handle("/working-hours", manageSchedule(http.HandlerFunc(workingHours.Create))).Methods(http.MethodPost)
	protected.Handle("/working-hours/{ruleId}", manageSchedule(http.HandlerFunc(workingHours.Update))).Methods(http.MethodPut)
	protected.Handle("/working-hours/{ruleId}", manageSchedule(http.HandlerFunc(workingHours.Delete))).Methods(http.MethodDelete)

	protected.Handle("/absences", manageSchedule(http.HandlerFunc(absences.List))).Methods(http.MethodGet)
	protected.Handle("/absences", manageSchedule(http.HandlerFunc(absences.Create))).Methods(http.MethodPost)
	protected.Handle("/absences/{absenceId}", manageSchedule(http.HandlerFunc(absences.Update))).Methods(http.MethodPut)
	protected.Handle("/absences/{absenceId}",
		middleware.RequireCapability(domain.CapDeleteAbsences)(http.HandlerFunc(absences.Delete)),
	).Methods(http.MethodDelete)

	protected.HandleFunc("/employees/{employeeId}/schedule", employeeSchedule.Handle).Methods(http.MethodGet)

	// --- Параметры (администратор) ---
	protected.Handle("/parameters",
		middleware.RequireCapability(domain.CapManageParameters)(http.HandlerFunc(parameters.Update)),
	).Methods(http.MethodPut)

	// --- Приглашения персонала (администратор) ---
	manageInvitations := middleware.RequireCapability(domain.CapManageInvitations)
	protected.Handle("/invitations", manageInvitations(http.HandlerFunc(invitations.List))).Methods(http.MethodGet)
	protected.Handle("/invitations", manageInvitations(http.HandlerFunc(invitations.Create))).Methods(http.MethodPost)
	protected.Handle("/invitations/{invitationId}", manageInvitations(http.HandlerFunc(invitations.Get))).Methods(http.MethodGet)
	protected.Handle("/invitations/{invitationId}", manageInvitations(http.HandlerFunc(invitations.UpdateStatus))).Methods(http.MethodPut)
	protected.Handle("/invitations/{invitationId}", manageInvitations(http.HandlerFunc(invitations.Delete))).Methods(http.MethodDelete)

	// CORS и восстановление после паники
	var handler http.Handler = r
	handler = gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(cfg.Server.CORSOrigins),
		gorillaHandlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", cfg.Security.UserIDHeader, middleware.RequestIDHeader}),
	)(handler)
	handler = gorillaHandlers.RecoveryHandler(gorillaHandlers.PrintRecoveryStack(true))(handler)
	handler = otelhttp.NewHandler(handler, cfg.Tracing.ServiceName)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
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

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if err := publisher.Close(); err != nil {
		log.Error("Failed to close event publisher: %v", err)
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to shutdown tracing: %v", err)
	}

	log.Info("Server stopped gracefully")
}
