package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libdb "voltshare/backend/libs/db"
	libredis "voltshare/backend/libs/redis"
	"voltshare/backend/services/booking-service/internal/clients"
	"voltshare/backend/services/booking-service/internal/config"
	httpserver "voltshare/backend/services/booking-service/internal/http"
	"voltshare/backend/services/booking-service/internal/http/handlers"
	"voltshare/backend/services/booking-service/internal/otp"
	"voltshare/backend/services/booking-service/internal/repository"
	"voltshare/backend/services/booking-service/internal/service"
)

// App wires booking-service dependencies.
type App struct {
	server      *httpserver.Server
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph. Without a database DSN the service
// runs on in-memory repositories; without a redis addr the OTP store is
// in-process.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	var (
		sqlDB       *sql.DB
		chargerRepo service.ChargerRepository
		bookingRepo service.BookingRepository
		err         error
	)
	if cfg.Database.DSN != "" {
		sqlDB, err = libdb.NewPostgresDB(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		chargerRepo = repository.NewChargerRepository(sqlDB)
		bookingRepo = repository.NewBookingRepository(sqlDB)
	} else {
		logger.Warn("no database dsn configured, using in-memory repositories")
		chargerRepo = repository.NewMemoryChargerRepository()
		bookingRepo = repository.NewMemoryBookingRepository()
	}

	var (
		redisClient *redis.Client
		otpStore    otp.Store
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			if sqlDB != nil {
				sqlDB.Close()
			}
			return nil, err
		}
		otpStore = otp.NewRedisStore(redisClient, cfg.Redis.OTPTTL)
	} else {
		logger.Warn("no redis addr configured, using in-memory otp store")
		otpStore = otp.NewMemoryStore()
	}

	cmsClient := clients.NewCMSClient(cfg.CMS.BaseURL, logger)

	chargerService := service.NewChargerService(chargerRepo, cmsClient, logger)
	bookingService := service.NewBookingService(bookingRepo, chargerRepo, cmsClient, logger)
	otpService := otp.NewService(otpStore)

	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	chargerHandler := handlers.NewChargerHandler(chargerService, bookingService, logger)
	otpHandler := handlers.NewOTPHandler(otpService, logger)
	liveHandler := handlers.NewLiveHandler(bookingService, logger)

	routes := httpserver.Routes{
		BookingCreate:   bookingHandler.HandleCreate,
		BookingStart:    bookingHandler.HandleStart,
		BookingGet:      bookingHandler.HandleGet,
		BookingExtend:   bookingHandler.HandleExtend,
		BookingStop:     bookingHandler.HandleStop,
		BookingComplete: bookingHandler.HandleComplete,
		BookingLive:     liveHandler.HandleLive,

		ChargerCreate:         chargerHandler.HandleCreate,
		ChargerList:           chargerHandler.HandleList,
		ChargerGet:            chargerHandler.HandleGet,
		ChargerByHost:         chargerHandler.HandleByHost,
		ChargerBook:           chargerHandler.HandleBook,
		ChargerManualBlock:    chargerHandler.HandleManualBlock,
		ChargerConfirmUnblock: chargerHandler.HandleConfirmUnblock,
		ChargerConfirmBlock:   chargerHandler.HandleConfirmBlock,

		OTPGenerate: otpHandler.HandleGenerate,
		OTPVerify:   otpHandler.HandleVerify,

		Health: handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
