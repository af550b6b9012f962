package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/loopforge/api/internal/audio"
	"github.com/loopforge/api/internal/catalog"
	"github.com/loopforge/api/internal/config"
	"github.com/loopforge/api/internal/ffmpeg"
	"github.com/loopforge/api/internal/handler"
	"github.com/loopforge/api/internal/jobs"
	"github.com/loopforge/api/internal/model"
	"github.com/loopforge/api/internal/service"
	"github.com/loopforge/api/internal/storage"
	"github.com/loopforge/api/internal/video"
	"github.com/loopforge/api/internal/worker"
	ws "github.com/loopforge/api/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.Media.OutputDir, 0o755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}
	if err := os.MkdirAll(cfg.Media.TempDir, 0o755); err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Pick the execution mode up front: queued when Redis answers,
	// inline otherwise.
	ctx := context.Background()
	mode := jobs.DetectMode(ctx, cfg.Queue.Enabled, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Media catalog and ffmpeg tooling
	cat := catalog.New(cfg.Media.StemsDir, cfg.Media.VideosDir, cfg.Media.CatalogFile)
	encoder := ffmpeg.NewRunner(cfg.Media.FFmpegBin)
	prober := ffmpeg.NewProber(cfg.Media.FFprobeBin)

	mixEngine := audio.NewMixEngine(cat, encoder, cfg.Media.OutputDir)
	assemblyEngine := video.NewAssemblyEngine(cat, encoder, prober, cfg.Media.OutputDir, cfg.Media.TempDir)

	// Initialize R2 client (optional - continues if not configured)
	var uploader storage.Uploader
	if cfg.R2.AccessKeyID != "" && cfg.R2.SecretAccessKey != "" {
		r2Client, err := storage.NewR2Client(&cfg.R2)
		if err != nil {
			log.Printf("Warning: R2 client not initialized: %v", err)
		} else {
			uploader = r2Client
		}
	} else {
		log.Println("Info: R2 storage not configured, results stay local")
	}

	audioProc := worker.AudioProcessor(mixEngine, uploader)
	videoProc := worker.VideoProcessor(assemblyEngine, uploader)

	// Job runner and store
	store := jobs.NewStore(redisClient)
	runner := jobs.NewRunner(mode, store, asynqClient, hub)
	runner.Register(model.JobKindAudio, audioProc)
	runner.Register(model.JobKindVideo, videoProc)

	// Initialize services
	mediaService := service.NewMediaService(runner, cat)

	// Initialize handlers
	mixHandler := handler.NewMixHandler(mediaService, validate)
	assemblyHandler := handler.NewAssemblyHandler(mediaService, validate)
	jobHandler := handler.NewJobHandler(mediaService)
	catalogHandler := handler.NewCatalogHandler(mediaService)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	isDebug := strings.EqualFold(cfg.Server.LogLevel, "debug")
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if isDebug {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"mode":   string(runner.Mode()),
			"services": fiber.Map{
				"redis": redisClient.Ping(c.Context()).Err() == nil,
				"r2":    uploader != nil,
			},
		})
	})

	// API routes
	api := app.Group("/api")

	mix := api.Group("/mix")
	mix.Post("/generate", mixHandler.Generate)

	vid := api.Group("/video")
	vid.Post("/assemble", assemblyHandler.Assemble)

	jobsGroup := api.Group("/jobs")
	jobsGroup.Get("/:jobId/result", jobHandler.Result)
	jobsGroup.Get("/:kind/:jobId", jobHandler.Status)

	api.Get("/stems", catalogHandler.Stems)
	api.Get("/videos", catalogHandler.Videos)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		jobID := c.Params("jobId")
		hub.HandleConnection(c, jobID)
	}))

	// Start Asynq worker servers, one per job kind so a long video
	// assembly never starves the audio queue.
	if mode == jobs.ModeQueued {
		w := worker.New(store, hub)
		w.Register(model.JobKindAudio, audioProc)
		w.Register(model.JobKindVideo, videoProc)

		go startWorkerServer(cfg, model.JobKindAudio, jobs.TaskTypeAudioMix, cfg.Queue.AudioConcurrency, w)
		go startWorkerServer(cfg, model.JobKindVideo, jobs.TaskTypeVideoAssembly, cfg.Queue.VideoConcurrency, w)
	} else {
		log.Println("Info: running in inline mode, queue workers not started")
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s (mode=%s)", addr, runner.Mode())
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, kind model.JobKind, taskType string, concurrency int, w *worker.Worker) {
	asynqLogLevel := asynq.InfoLevel
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		asynqLogLevel = asynq.DebugLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "warn") {
		asynqLogLevel = asynq.WarnLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "error") {
		asynqLogLevel = asynq.ErrorLevel
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				string(kind): 1,
			},
			RetryDelayFunc: jobs.RetryDelay,
			LogLevel:       asynqLogLevel,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(taskType, w.HandleTask(kind))

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error (%s): %v", kind, err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
