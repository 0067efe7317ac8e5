package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/biosecret/go-tasks/config"
	"github.com/biosecret/go-tasks/database"
	"github.com/biosecret/go-tasks/events"
	"github.com/biosecret/go-tasks/handlers"
	"github.com/biosecret/go-tasks/router"
	"github.com/biosecret/go-tasks/services"
	"github.com/biosecret/go-tasks/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps là các thành phần bên ngoài mà ứng dụng cần
type Deps struct {
	Store     database.Store
	Publisher events.Publisher
}

// New tạo ứng dụng Fiber với đầy đủ middleware và route
func New(cfg config.Config, deps Deps) (*fiber.App, error) {
	tokens, err := utils.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	authSvc := services.NewAuthService(deps.Store, tokens, cfg.BcryptCost)
	taskSvc := services.NewTaskService(deps.Store, deps.Publisher)

	// Tạo ứng dụng Fiber
	app := fiber.New(fiber.Config{
		AppName:      "go-tasks",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Đính kèm middleware để xử lý lỗi và ghi log
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${ip}]:${port} ${status} - ${method} ${path} ${latency}\n",
	}))

	// Thiết lập route cho ứng dụng
	router.SetupRoutes(app, cfg.APIPrefix, router.Handlers{
		Auth:     handlers.NewAuthHandler(authSvc),
		Tasks:    handlers.NewTaskHandler(taskSvc),
		Verifier: authSvc,
	})

	// Đính kèm Swagger
	config.AddSwaggerRoutes(app)

	return app, nil
}

// SetupAndRunApp khởi động ứng dụng Fiber
func SetupAndRunApp() error {
	// Load biến môi trường từ file .env
	if err := config.LoadENV(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	store, err := database.Open(ctx, database.Options{
		Driver:        cfg.DBDriver,
		PostgresURI:   cfg.PostgresURI,
		SQLitePath:    cfg.SQLitePath,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	})
	if err != nil {
		return err
	}

	// Đảm bảo kết nối với cơ sở dữ liệu được đóng sau khi ứng dụng kết thúc
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close database: %v", err)
			return
		}
		log.Println("Database connection closed")
	}()

	if cfg.MigrateLegacyVocabulary {
		n, err := store.NormalizeLegacyTasks(ctx)
		if err != nil {
			return fmt.Errorf("normalize legacy tasks: %w", err)
		}
		log.Printf("Normalized %d legacy status/priority values", n)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.MQTTURL != "" {
		mqttPub, err := events.NewMQTTPublisher(cfg.MQTTURL, cfg.MQTTClientID)
		if err != nil {
			return err
		}
		defer mqttPub.Close()
		publisher = mqttPub
	}

	app, err := New(cfg, Deps{Store: store, Publisher: publisher})
	if err != nil {
		return err
	}

	// Lắng nghe trên cổng chỉ định
	return app.Listen(":" + cfg.Port)
}
