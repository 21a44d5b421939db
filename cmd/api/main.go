package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chat-demo/internal/config"
	"chat-demo/internal/db"
	"chat-demo/internal/domain"
	apihttp "chat-demo/internal/http"
	"chat-demo/internal/repository"
	"chat-demo/internal/service"
)

type stores struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	contacts repository.ContactRepository
	messages repository.MessageRepository
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	st, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer closeStores()

	if !cfg.ReadOnly {
		if err := seedUser(ctx, st.users, cfg.SeedUserPhone, cfg.SeedUserCountry); err != nil {
			logger.Warn("seed user failed", zap.Error(err))
		}
	}

	limiter := service.NewLoginRateLimiter(cfg.LoginRateWindow, cfg.LoginRateMax)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, keeping sessions in the primary store", zap.Error(err))
		} else {
			retention := 2 * time.Duration(cfg.SessionTTLHours) * time.Hour
			st.sessions = repository.NewRedisSessionRepository(redisClient, retention)
			limiter = service.NewRedisLoginRateLimiter(redisClient, logger, cfg.LoginRateWindow, cfg.LoginRateMax)
			logger.Info("sessions stored in redis", zap.String("addr", cfg.RedisAddr))
		}
		cancel()
		defer redisClient.Close()
	}
	if cfg.ReadOnly {
		st.sessions = repository.ReadOnlySessions(st.sessions)
		logger.Info("read-only mode enabled")
	}

	authSvc := service.NewAuthenticator(logger, st.users, st.sessions, service.AuthOptions{
		ReadOnly: cfg.ReadOnly,
		Limiter:  limiter,
	})
	guard := service.NewSessionGuard(logger, st.sessions, cfg.SessionTTLHours, nil)
	contactSvc := service.NewContactService(st.contacts)
	messageSvc := service.NewMessageService(st.messages)

	authHandler := apihttp.NewAuthHandler(logger, authSvc)
	storeHandler := apihttp.NewStoreHandler(logger, st.users, st.sessions, contactSvc, messageSvc)
	sessionMW := apihttp.SessionMiddleware(logger, guard, apihttp.Redirect{Path: cfg.LoginPath, Delay: cfg.RedirectDelay})
	router := apihttp.NewRouter(logger, apihttp.RouterOptions{
		ReadOnly:       cfg.ReadOnly,
		RequireSession: cfg.RequireSession,
		CORSOrigins:    cfg.CORSOrigins,
	}, authHandler, storeHandler, sessionMW)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	eg, egCtx := errgroup.WithContext(sigCtx)

	eg.Go(func() error {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.Bool("read_only", cfg.ReadOnly))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// openStores elige Postgres si hay DATABASE_URL y el archivo JSON si no.
func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (stores, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := db.Open(ctx, cfg.DatabaseURL, cfg.ReadOnly)
		if err != nil {
			return stores{}, nil, err
		}
		logger.Info("using postgres store")
		return stores{
			users:    repository.NewPgUserRepository(pool),
			sessions: repository.NewPgSessionRepository(pool),
			contacts: repository.NewPgContactRepository(pool),
			messages: repository.NewPgMessageRepository(pool),
		}, pool.Close, nil
	}

	fs, err := repository.NewFileStore(cfg.DataFile, cfg.ReadOnly)
	if err != nil {
		return stores{}, nil, err
	}
	logger.Info("using file store", zap.String("path", cfg.DataFile))
	return stores{
		users:    fs.Users(),
		sessions: fs.Sessions(),
		contacts: fs.Contacts(),
		messages: fs.Messages(),
	}, func() {}, nil
}

// seedUser crea el usuario demo si no existe ninguno con ese phone y country.
func seedUser(ctx context.Context, users repository.UserRepository, phone, country string) error {
	if phone == "" || country == "" {
		return nil
	}
	existing, err := users.FindByPhone(ctx, phone, country)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	return users.Create(ctx, domain.User{
		ID:        uuid.NewString(),
		Phone:     phone,
		Country:   country,
		Name:      "Demo User",
		CreatedAt: time.Now().UTC(),
	})
}
