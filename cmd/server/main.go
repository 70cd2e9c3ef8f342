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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/chiclink/api/internal/config"
	"github.com/chiclink/api/internal/directory"
	"github.com/chiclink/api/internal/es"
	"github.com/chiclink/api/internal/handlers"
	"github.com/chiclink/api/internal/logging"
	loggingmw "github.com/chiclink/api/internal/middleware/logging"
	"github.com/chiclink/api/internal/mykafka"
	"github.com/chiclink/api/internal/service"
	httpserver "github.com/chiclink/api/internal/transport/http"
)

const profileIndex = "profiles"

func main() {
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	jwtSecret := []byte(configuration.JWT_SECRET)

	brokers := []string{configuration.KAFKA_ADDRESS}
	prod, err := mykafka.NewProducer(brokers)
	if err != nil {
		log.Fatal(err)
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	dir := directory.New(db)
	authSvc := service.NewAuthService(dir, service.TokenConfig{
		Secret:   jwtSecret,
		Issuer:   configuration.JWT_ISSUER,
		Audience: configuration.JWT_AUDIENCE,
	})

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:             db,
		JWTSecret:      jwtSecret,
		AuthHandler:    &handlers.AuthHandler{Svc: authSvc, Producer: prod},
		UserHandler:    &handlers.UserHandler{DB: db},
		ProfileHandler: &handlers.ProfileHandler{DB: db, ES: esClient, Index: profileIndex, UploadDir: configuration.UPLOAD_DIR},
		LikeHandler:    &handlers.LikeHandler{DB: db, Producer: prod},
		MessageHandler: &handlers.MessageHandler{DB: db, Producer: prod},
		SearchHandler:  &handlers.SearchHandler{ES: esClient, Index: profileIndex},
		UploadDir:      configuration.UPLOAD_DIR,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
