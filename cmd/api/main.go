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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/mls-exam-api/internal/config"
	"github.com/yourusername/mls-exam-api/internal/handler"
	"github.com/yourusername/mls-exam-api/internal/middleware"
	pgRepo "github.com/yourusername/mls-exam-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/mls-exam-api/internal/repository/redis"
	"github.com/yourusername/mls-exam-api/internal/service"
	"github.com/yourusername/mls-exam-api/internal/service/examengine"
	"github.com/yourusername/mls-exam-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	questionRepo := pgRepo.NewQuestionRepo(db)
	sessionRepo := pgRepo.NewSessionRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем адаптивный движок экзамена
	engineConfig := examengine.DefaultConfig()
	blueprints := examengine.NewBlueprintGenerator(nil) // nil → seed от текущего времени
	selector := examengine.NewItemSelector(&examengine.Dependencies{
		QuestionRepo: questionRepo,
		Config:       engineConfig,
	})

	// Инициализируем сервисы
	sessionService := service.NewSessionService(sessionRepo, questionRepo, cacheRepo, blueprints, selector, engineConfig)
	questionService := service.NewQuestionService(questionRepo, cacheRepo, engineConfig)

	// Инициализируем обработчики
	sessionHandler := handler.NewSessionHandler(sessionService)
	questionHandler := handler.NewQuestionHandler(questionService)

	// Инициализируем middleware
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	// В production (GIN_MODE=release): не доверяем прокси (защита от IP spoofing)
	// В development: доверяем localhost
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		sessions := api.Group("/session")
		sessions.Use(rateLimiter.Limit(middleware.DefaultExamRateLimitConfig()))
		{
			sessions.POST("/start",
				rateLimiter.Limit(middleware.SessionStartRateLimitConfig(cfg.Exam.StartRateLimitPerMin)),
				sessionHandler.StartSession)

			// Группа маршрутов, требующих идентификатор сессии
			sessionWithID := sessions.Group("/:id")
			sessionWithID.Use(middleware.ExtractSessionID("id", "sessionID"))
			{
				sessionWithID.GET("/question", sessionHandler.GetNextQuestion)
				sessionWithID.POST("/answer", sessionHandler.SubmitAnswer)
				sessionWithID.GET("/status", sessionHandler.GetStatus)
			}
		}

		// Управление банком вопросов (операционные эндпоинты)
		questions := api.Group("/questions")
		{
			questions.POST("/import", questionHandler.Import)
			questions.GET("/coverage", questionHandler.Coverage)
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	// Ждём сигнала остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
